package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	naebak_errors "naebak-messaging/pkg/errors"
	"naebak-messaging/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Representative is the slice of the directory record the messaging core needs.
type Representative struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Party       string    `json:"party"`
	Council     string    `json:"council"`
	Governorate string    `json:"governorate"`
	IsActive    bool      `json:"is_active"`
}

// Cache is the read-through cache in front of the directory service. Get
// returns (nil, nil) on a miss.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Gateway talks to the external representative directory. Directory outages
// must never corrupt local state: callers only consult it before creating a
// conversation, and every failure maps to ErrDirectoryUnavailable so the
// caller can reject cleanly.
type Gateway struct {
	baseURL string
	client  *http.Client
	cache   Cache
	ttl     time.Duration
	logger  *logger.Logger
}

func NewGateway(baseURL string, timeout, cacheTTL time.Duration, cache Cache, log *logger.Logger) *Gateway {
	return &Gateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		cache:   cache,
		ttl:     cacheTTL,
		logger:  log,
	}
}

// Exists reports whether the representative is known to the directory.
func (g *Gateway) Exists(ctx context.Context, representativeID uuid.UUID) (bool, error) {
	_, err := g.FetchMetadata(ctx, representativeID)
	if err == nil {
		return true, nil
	}
	if err == naebak_errors.ErrNotFound {
		return false, nil
	}
	return false, err
}

// FetchMetadata returns the directory record for a representative, consulting
// the cache first. A cached record is served without touching the directory.
func (g *Gateway) FetchMetadata(ctx context.Context, representativeID uuid.UUID) (*Representative, error) {
	key := cacheKey(representativeID)

	if g.cache != nil {
		raw, err := g.cache.Get(ctx, key)
		if err != nil && g.logger != nil {
			g.logger.WithContext(ctx).Warn("directory cache read failed", zap.Error(err))
		}
		if raw != nil {
			var rep Representative
			if err := json.Unmarshal(raw, &rep); err == nil {
				return &rep, nil
			}
		}
	}

	rep, err := g.fetch(ctx, representativeID)
	if err != nil {
		return nil, err
	}

	if g.cache != nil {
		if raw, err := json.Marshal(rep); err == nil {
			if err := g.cache.Set(ctx, key, raw, g.ttl); err != nil && g.logger != nil {
				g.logger.WithContext(ctx).Warn("directory cache write failed", zap.Error(err))
			}
		}
	}
	return rep, nil
}

func (g *Gateway) fetch(ctx context.Context, representativeID uuid.UUID) (*Representative, error) {
	url := fmt.Sprintf("%s/api/representatives/%s", g.baseURL, representativeID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		if g.logger != nil {
			g.logger.WithContext(ctx).Warn("directory unreachable", zap.Error(err))
		}
		return nil, naebak_errors.ErrDirectoryUnavailable
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, naebak_errors.ErrNotFound
	case resp.StatusCode != http.StatusOK:
		if g.logger != nil {
			g.logger.WithContext(ctx).Warn("directory returned unexpected status", zap.Int("status", resp.StatusCode))
		}
		return nil, naebak_errors.ErrDirectoryUnavailable
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, naebak_errors.ErrDirectoryUnavailable
	}
	var rep Representative
	if err := json.Unmarshal(body, &rep); err != nil {
		return nil, naebak_errors.ErrDirectoryUnavailable
	}
	return &rep, nil
}

func cacheKey(representativeID uuid.UUID) string {
	return "directory:representative:" + representativeID.String()
}
