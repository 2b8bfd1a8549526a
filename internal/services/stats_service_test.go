package services

import (
	"context"
	"testing"
	"time"

	"naebak-messaging/internal/repository"
	naebak_errors "naebak-messaging/pkg/errors"
	"naebak-messaging/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type StatsServiceSuite struct {
	suite.Suite
	f   *fixture
	ctx context.Context
}

func (s *StatsServiceSuite) SetupTest() {
	s.f = newFixture()
	s.ctx = context.Background()
}

func TestStatsServiceSuite(t *testing.T) {
	suite.Run(t, new(StatsServiceSuite))
}

func (s *StatsServiceSuite) TestUserStats() {
	s.Run("reflects conversations and messages", func() {
		citizen := s.f.seedCitizen()
		rep := s.f.seedRepresentative()

		conv, err := s.f.conversationSvc.Create(s.ctx, citizen, rep, "Subject", "Hello")
		s.Require().NoError(err)
		_, err = s.f.messageSvc.Append(s.ctx, conv.ID, rep, "On it.", uuid.NullUUID{})
		s.Require().NoError(err)

		citizenStats, err := s.f.statsSvc.UserStats(s.ctx, citizen)
		s.Require().NoError(err)
		s.Equal(int64(1), citizenStats.TotalConversations)
		s.Equal(int64(1), citizenStats.ActiveConversations)
		s.Equal(int64(1), citizenStats.TotalMessagesSent)
		s.Equal(int64(1), citizenStats.TotalMessagesReceived)
		s.Equal(int64(1), citizenStats.UnreadMessages)
		s.Equal(int64(1), citizenStats.ConversationsThisMonth)

		repStats, err := s.f.statsSvc.UserStats(s.ctx, rep)
		s.Require().NoError(err)
		s.Equal(int64(1), repStats.TotalMessagesSent)
		s.Equal(int64(1), repStats.TotalMessagesReceived)
	})
}

func (s *StatsServiceSuite) TestConversationStats() {
	s.Run("buckets and averages", func() {
		citizen := s.f.seedCitizen()
		rep := s.f.seedRepresentative()

		first, err := s.f.conversationSvc.Create(s.ctx, citizen, rep, "First", "Hello")
		s.Require().NoError(err)
		_, err = s.f.conversationSvc.Create(s.ctx, citizen, rep, "Second", "Hello again")
		s.Require().NoError(err)

		_, err = s.f.conversationSvc.Close(s.ctx, first.ID, citizen)
		s.Require().NoError(err)
		s.Require().NoError(s.f.conversationSvc.Rate(s.ctx, first.ID, citizen, 4, ""))

		got, err := s.f.statsSvc.ConversationStats(s.ctx, citizen)
		s.Require().NoError(err)
		s.Equal(int64(2), got.TotalConversations)
		s.Equal(int64(1), got.ActiveConversations)
		s.Equal(int64(1), got.ClosedConversations)
		s.Equal(int64(2), got.ConversationsToday)
		s.Equal(int64(2), got.ConversationsThisWeek)
		// First has opener + system message, second only the opener.
		s.InDelta(1.5, got.AvgMessagesPerConversation, 0.001)
		s.InDelta(4.0, got.AvgCitizenRating, 0.001)
	})
}

func (s *StatsServiceSuite) TestDailyProjector() {
	s.Run("increments counters per event", func() {
		citizen := uuid.New()
		rep := uuid.New()
		now := time.Now().UTC()

		created := envelope(events.TypeConversationCreated, ConversationCreatedPayload{
			ConversationID:   uuid.New(),
			CitizenID:        citizen,
			RepresentativeID: rep,
			CreatedAt:        now,
		})
		s.Require().NoError(s.f.statsSvc.HandleEvent(s.ctx, created))

		appended := envelope(events.TypeMessageAppended, MessageAppendedPayload{
			MessageID:      uuid.New(),
			ConversationID: uuid.New(),
			SenderID:       citizen,
			RecipientID:    rep,
			CreatedAt:      now,
		})
		s.Require().NoError(s.f.statsSvc.HandleEvent(s.ctx, appended))
		s.Require().NoError(s.f.statsSvc.HandleEvent(s.ctx, appended))

		closed := envelope(events.TypeConversationClosed, ConversationClosedPayload{
			ConversationID: uuid.New(),
			CitizenID:      citizen,
			ClosedBy:       citizen,
			ClosedAt:       now,
		})
		s.Require().NoError(s.f.statsSvc.HandleEvent(s.ctx, closed))

		citizenDay, err := s.f.statsSvc.Daily(s.ctx, citizen, now)
		s.Require().NoError(err)
		s.Equal(int64(1), citizenDay.ConversationsStarted)
		s.Equal(int64(2), citizenDay.MessagesSent)
		s.Equal(int64(1), citizenDay.ConversationsClosed)

		repDay, err := s.f.statsSvc.Daily(s.ctx, rep, now)
		s.Require().NoError(err)
		s.Equal(int64(2), repDay.MessagesReceived)
	})

	s.Run("system messages do not advance message counters", func() {
		sender := uuid.New()
		env := envelope(events.TypeMessageAppended, MessageAppendedPayload{
			MessageID:       uuid.New(),
			ConversationID:  uuid.New(),
			SenderID:        sender,
			RecipientID:     uuid.New(),
			IsSystemMessage: true,
			CreatedAt:       time.Now(),
		})
		s.Require().NoError(s.f.statsSvc.HandleEvent(s.ctx, env))

		_, err := s.f.statsSvc.Daily(s.ctx, sender, time.Now())
		s.Require().ErrorIs(err, naebak_errors.ErrNotFound)
	})

	s.Run("unknown field is rejected by the repository", func() {
		err := s.f.stats.IncrementDaily(s.ctx, uuid.New(), time.Now(), repository.DailyField("bogus"))
		s.Require().ErrorIs(err, naebak_errors.ErrInvalidInput)
	})
}
