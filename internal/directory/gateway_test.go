package directory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	naebak_errors "naebak-messaging/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func directoryServer(t *testing.T, known map[uuid.UUID]Representative, hits *int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			*hits++
		}
		id, err := uuid.Parse(r.URL.Path[len("/api/representatives/"):])
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		rep, ok := known[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(rep)
	}))
}

func TestGatewayFetchMetadata(t *testing.T) {
	repID := uuid.New()
	known := map[uuid.UUID]Representative{
		repID: {ID: repID, Name: "Ahmed Hassan", Party: "Independent", Governorate: "Giza", IsActive: true},
	}
	srv := directoryServer(t, known, nil)
	defer srv.Close()

	g := NewGateway(srv.URL, time.Second, time.Minute, nil, nil)

	rep, err := g.FetchMetadata(context.Background(), repID)
	require.NoError(t, err)
	require.Equal(t, "Ahmed Hassan", rep.Name)
	require.Equal(t, "Giza", rep.Governorate)

	_, err = g.FetchMetadata(context.Background(), uuid.New())
	require.ErrorIs(t, err, naebak_errors.ErrNotFound)
}

func TestGatewayExists(t *testing.T) {
	repID := uuid.New()
	srv := directoryServer(t, map[uuid.UUID]Representative{repID: {ID: repID}}, nil)
	defer srv.Close()

	g := NewGateway(srv.URL, time.Second, time.Minute, nil, nil)

	ok, err := g.Exists(context.Background(), repID)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = g.Exists(context.Background(), uuid.New())
	require.NoError(t, err)
	require.False(t, ok)
}

func TestGatewayUnavailable(t *testing.T) {
	t.Run("timeout maps to ErrDirectoryUnavailable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer srv.Close()

		g := NewGateway(srv.URL, 20*time.Millisecond, time.Minute, nil, nil)
		_, err := g.FetchMetadata(context.Background(), uuid.New())
		require.ErrorIs(t, err, naebak_errors.ErrDirectoryUnavailable)
	})

	t.Run("connection refused maps to ErrDirectoryUnavailable", func(t *testing.T) {
		g := NewGateway("http://127.0.0.1:1", 100*time.Millisecond, time.Minute, nil, nil)
		ok, err := g.Exists(context.Background(), uuid.New())
		require.ErrorIs(t, err, naebak_errors.ErrDirectoryUnavailable)
		require.False(t, ok)
	})

	t.Run("server error maps to ErrDirectoryUnavailable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		g := NewGateway(srv.URL, time.Second, time.Minute, nil, nil)
		_, err := g.FetchMetadata(context.Background(), uuid.New())
		require.ErrorIs(t, err, naebak_errors.ErrDirectoryUnavailable)
	})
}

func TestGatewayCache(t *testing.T) {
	repID := uuid.New()
	hits := 0
	srv := directoryServer(t, map[uuid.UUID]Representative{repID: {ID: repID, Name: "Cached Rep"}}, &hits)
	defer srv.Close()

	g := NewGateway(srv.URL, time.Second, time.Minute, NewMemoryCache(), nil)

	for i := 0; i < 3; i++ {
		rep, err := g.FetchMetadata(context.Background(), repID)
		require.NoError(t, err)
		require.Equal(t, "Cached Rep", rep.Name)
	}
	require.Equal(t, 1, hits)
}

func TestMemoryCacheExpiry(t *testing.T) {
	cache := NewMemoryCache()
	now := time.Now()
	cache.now = func() time.Time { return now }

	require.NoError(t, cache.Set(context.Background(), "k", []byte("v"), time.Minute))

	got, err := cache.Get(context.Background(), "k")
	require.NoError(t, err)
	require.Equal(t, []byte("v"), got)

	now = now.Add(2 * time.Minute)
	got, err = cache.Get(context.Background(), "k")
	require.NoError(t, err)
	require.Nil(t, got)
}
