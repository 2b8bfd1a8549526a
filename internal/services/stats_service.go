package services

import (
	"context"
	"encoding/json"
	"time"

	"naebak-messaging/internal/domain/stats"
	"naebak-messaging/internal/repository"
	"naebak-messaging/pkg/events"

	"github.com/google/uuid"
)

// StatsService serves the on-demand read models and runs the daily projector.
// Both sides are eventually consistent with the ledger.
type StatsService struct {
	conversationRepo repository.ConversationRepository
	messageRepo      repository.MessageRepository
	statsRepo        repository.StatsRepository
}

func NewStatsService(conversationRepo repository.ConversationRepository, messageRepo repository.MessageRepository, statsRepo repository.StatsRepository) *StatsService {
	return &StatsService{
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
		statsRepo:        statsRepo,
	}
}

func (s *StatsService) UserStats(ctx context.Context, userID uuid.UUID) (stats.UserStats, error) {
	var out stats.UserStats
	var err error

	monthAgo := time.Now().AddDate(0, 0, -30)

	if out.TotalConversations, err = s.conversationRepo.CountForUser(ctx, userID, nil); err != nil {
		return stats.UserStats{}, err
	}
	if out.ActiveConversations, err = s.conversationRepo.CountForUserByState(ctx, userID, false); err != nil {
		return stats.UserStats{}, err
	}
	if out.TotalMessagesSent, err = s.messageRepo.CountSentBy(ctx, userID, nil); err != nil {
		return stats.UserStats{}, err
	}
	if out.TotalMessagesReceived, err = s.messageRepo.CountReceivedBy(ctx, userID); err != nil {
		return stats.UserStats{}, err
	}
	if out.UnreadMessages, err = s.messageRepo.CountUnreadForUser(ctx, userID); err != nil {
		return stats.UserStats{}, err
	}
	if out.ConversationsThisMonth, err = s.conversationRepo.CountForUser(ctx, userID, &monthAgo); err != nil {
		return stats.UserStats{}, err
	}
	if out.MessagesThisMonth, err = s.messageRepo.CountSentBy(ctx, userID, &monthAgo); err != nil {
		return stats.UserStats{}, err
	}
	return out, nil
}

func (s *StatsService) ConversationStats(ctx context.Context, userID uuid.UUID) (stats.ConversationStats, error) {
	var out stats.ConversationStats
	var err error

	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	weekAgo := now.AddDate(0, 0, -7)
	monthAgo := now.AddDate(0, 0, -30)

	if out.TotalConversations, err = s.conversationRepo.CountForUser(ctx, userID, nil); err != nil {
		return stats.ConversationStats{}, err
	}
	if out.ActiveConversations, err = s.conversationRepo.CountForUserByState(ctx, userID, false); err != nil {
		return stats.ConversationStats{}, err
	}
	if out.ClosedConversations, err = s.conversationRepo.CountForUserByState(ctx, userID, true); err != nil {
		return stats.ConversationStats{}, err
	}
	if out.ConversationsToday, err = s.conversationRepo.CountForUser(ctx, userID, &today); err != nil {
		return stats.ConversationStats{}, err
	}
	if out.ConversationsThisWeek, err = s.conversationRepo.CountForUser(ctx, userID, &weekAgo); err != nil {
		return stats.ConversationStats{}, err
	}
	if out.ConversationsThisMonth, err = s.conversationRepo.CountForUser(ctx, userID, &monthAgo); err != nil {
		return stats.ConversationStats{}, err
	}
	if out.AvgMessagesPerConversation, err = s.conversationRepo.AvgMessagesForUser(ctx, userID); err != nil {
		return stats.ConversationStats{}, err
	}
	if out.AvgCitizenRating, err = s.conversationRepo.AvgRatingForUser(ctx, userID); err != nil {
		return stats.ConversationStats{}, err
	}
	return out, nil
}

func (s *StatsService) Daily(ctx context.Context, userID uuid.UUID, date time.Time) (stats.DailyStatistics, error) {
	return s.statsRepo.GetDaily(ctx, userID, date)
}

// HandleEvent advances the per-user daily counters for one published event.
func (s *StatsService) HandleEvent(ctx context.Context, env events.Envelope) error {
	switch env.EventType {
	case events.TypeConversationCreated:
		var p ConversationCreatedPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return err
		}
		return s.statsRepo.IncrementDaily(ctx, p.CitizenID, p.CreatedAt, repository.FieldConversationsStarted)
	case events.TypeMessageAppended:
		var p MessageAppendedPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return err
		}
		if p.IsSystemMessage {
			return nil
		}
		if err := s.statsRepo.IncrementDaily(ctx, p.SenderID, p.CreatedAt, repository.FieldMessagesSent); err != nil {
			return err
		}
		return s.statsRepo.IncrementDaily(ctx, p.RecipientID, p.CreatedAt, repository.FieldMessagesReceived)
	case events.TypeConversationClosed:
		var p ConversationClosedPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return err
		}
		return s.statsRepo.IncrementDaily(ctx, p.ClosedBy, p.ClosedAt, repository.FieldConversationsClosed)
	default:
		return nil
	}
}
