package services

import (
	"context"
	"encoding/json"
	"time"

	"naebak-messaging/internal/domain/notification"
	"naebak-messaging/internal/repository"
	"naebak-messaging/pkg/events"
	"naebak-messaging/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NotificationService is the read side of the notification projection plus the
// projector that builds it from published events. Notifications are derived
// state: losing one is acceptable, corrupting the ledger is not.
type NotificationService struct {
	notificationRepo repository.NotificationRepository
	logger           *logger.Logger
}

func NewNotificationService(notificationRepo repository.NotificationRepository, log *logger.Logger) *NotificationService {
	return &NotificationService{notificationRepo: notificationRepo, logger: log}
}

// HandleEvent projects one published envelope into notification rows. Unknown
// event types are ignored so the projector tolerates additive producers.
func (s *NotificationService) HandleEvent(ctx context.Context, env events.Envelope) error {
	switch env.EventType {
	case events.TypeMessageAppended:
		var p MessageAppendedPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return err
		}
		// System messages ride along with a close; the closed event covers them.
		if p.IsSystemMessage {
			return nil
		}
		return s.notificationRepo.Create(ctx, &notification.Notification{
			ID:              uuid.New(),
			UserID:          p.RecipientID,
			Type:            notification.TypeNewMessage,
			Title:           "New message",
			Body:            p.Preview,
			RelatedObjectID: uuid.NullUUID{UUID: p.ConversationID, Valid: true},
			CreatedAt:       time.Now(),
		})
	case events.TypeConversationClosed:
		var p ConversationClosedPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return err
		}
		recipient := p.CitizenID
		if p.ClosedBy == p.CitizenID {
			recipient = p.RepresentativeID
		}
		return s.notificationRepo.Create(ctx, &notification.Notification{
			ID:              uuid.New(),
			UserID:          recipient,
			Type:            notification.TypeConversationClosed,
			Title:           "Conversation closed",
			Body:            "The other participant closed the conversation.",
			RelatedObjectID: uuid.NullUUID{UUID: p.ConversationID, Valid: true},
			CreatedAt:       time.Now(),
		})
	default:
		if s.logger != nil {
			s.logger.WithContext(ctx).Debug("notification projector skipping event", zap.String("event_type", env.EventType))
		}
		return nil
	}
}

func (s *NotificationService) ListForUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]notification.Notification, int64, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.notificationRepo.ListForUser(ctx, userID, page, limit)
}

func (s *NotificationService) MarkRead(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.notificationRepo.MarkRead(ctx, id, time.Now())
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.notificationRepo.MarkAllRead(ctx, userID, time.Now())
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.notificationRepo.CountUnread(ctx, userID)
}
