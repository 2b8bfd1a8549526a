package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"naebak-messaging/internal/domain/conversation"
	"naebak-messaging/internal/domain/message"
	"naebak-messaging/internal/domain/notification"
	"naebak-messaging/internal/domain/outbox"
	"naebak-messaging/internal/domain/profile"
	"naebak-messaging/internal/domain/report"
	"naebak-messaging/internal/domain/stats"
)

type ProfileRepository interface {
	Create(ctx context.Context, p *profile.Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (profile.Profile, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (profile.Profile, error)
	Update(ctx context.Context, p profile.Profile) error
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type ConversationRepository interface {
	Create(ctx context.Context, c *conversation.Conversation) error
	GetByID(ctx context.Context, id uuid.UUID) (conversation.Conversation, error)
	// GetByIDForUpdate locks the conversation row for the duration of the
	// surrounding transaction; it is the serialization point for appends.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (conversation.Conversation, error)
	Update(ctx context.Context, c conversation.Conversation) error

	// ApplyMessageRollup increments the message count and advances the
	// last-message pointer. The pointer only moves forward: a message with an
	// older timestamp never overwrites a newer one, and on equal timestamps
	// the later insert wins.
	ApplyMessageRollup(ctx context.Context, conversationID uuid.UUID, at time.Time, senderID uuid.UUID) error
	SetRating(ctx context.Context, conversationID uuid.UUID, rating int16, feedback string) error

	ListForUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]conversation.Conversation, int64, error)
	ListForUserByState(ctx context.Context, userID uuid.UUID, closed bool, page, limit int) ([]conversation.Conversation, int64, error)

	CountForUser(ctx context.Context, userID uuid.UUID, since *time.Time) (int64, error)
	CountForUserByState(ctx context.Context, userID uuid.UUID, closed bool) (int64, error)
	AvgMessagesForUser(ctx context.Context, userID uuid.UUID) (float64, error)
	AvgRatingForUser(ctx context.Context, userID uuid.UUID) (float64, error)
}

type MessageRepository interface {
	Create(ctx context.Context, m *message.Message) error
	GetByID(ctx context.Context, id uuid.UUID) (message.Message, error)
	ListByConversation(ctx context.Context, conversationID uuid.UUID, page, limit int) ([]message.Message, int64, error)

	// MarkRead flips a single message to read; returns false when the message
	// was already read (idempotent no-op, read_at untouched).
	MarkRead(ctx context.Context, messageID uuid.UUID, at time.Time) (bool, error)
	// MarkConversationRead is one set-based update over all unread messages in
	// the conversation not sent by excludeSender; returns rows transitioned.
	MarkConversationRead(ctx context.Context, conversationID, excludeSender uuid.UUID, at time.Time) (int64, error)

	CountUnreadFromSender(ctx context.Context, conversationID, senderID uuid.UUID) (int64, error)
	CountUnreadForUser(ctx context.Context, userID uuid.UUID) (int64, error)
	CountSentBy(ctx context.Context, userID uuid.UUID, since *time.Time) (int64, error)
	CountReceivedBy(ctx context.Context, userID uuid.UUID) (int64, error)
}

type ReportRepository interface {
	Create(ctx context.Context, r *report.Report) error
	GetByID(ctx context.Context, id uuid.UUID) (report.Report, error)
	MarkReviewed(ctx context.Context, id, reviewerID uuid.UUID, actionTaken string, at time.Time) error
	ListPending(ctx context.Context, page, limit int) ([]report.Report, int64, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n *notification.Notification) error
	ListForUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]notification.Notification, int64, error)
	MarkRead(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
}

// DailyField names a counter column on daily_statistics.
type DailyField string

const (
	FieldMessagesSent         DailyField = "messages_sent"
	FieldMessagesReceived     DailyField = "messages_received"
	FieldConversationsStarted DailyField = "conversations_started"
	FieldConversationsClosed  DailyField = "conversations_closed"
)

type StatsRepository interface {
	// IncrementDaily upserts the (user, date) row and bumps the named counter
	// atomically.
	IncrementDaily(ctx context.Context, userID uuid.UUID, date time.Time, field DailyField) error
	GetDaily(ctx context.Context, userID uuid.UUID, date time.Time) (stats.DailyStatistics, error)
}

type OutboxRepository interface {
	CreateEvent(ctx context.Context, e *outbox.OutboxEvent) error
	GetPendingEvents(ctx context.Context, limit int) ([]outbox.OutboxEvent, error)
	MarkEventProcessed(ctx context.Context, id uuid.UUID) error
	MarkEventFailed(ctx context.Context, id uuid.UUID, nextRetryAt time.Time, errorMessage string) error
}
