package services

import (
	"context"
	"encoding/json"
	"time"

	"naebak-messaging/internal/domain/outbox"
	"naebak-messaging/internal/repository"

	"github.com/google/uuid"
)

// Outbox payloads. Projectors (notifications, daily stats) decode these, so the
// shapes are part of the internal contract and only grow additively.

type ConversationCreatedPayload struct {
	ConversationID   uuid.UUID `json:"conversation_id"`
	CitizenID        uuid.UUID `json:"citizen_id"`
	RepresentativeID uuid.UUID `json:"representative_id"`
	Subject          string    `json:"subject"`
	CreatedAt        time.Time `json:"created_at"`
}

type MessageAppendedPayload struct {
	MessageID       uuid.UUID `json:"message_id"`
	ConversationID  uuid.UUID `json:"conversation_id"`
	SenderID        uuid.UUID `json:"sender_id"`
	RecipientID     uuid.UUID `json:"recipient_id"`
	Preview         string    `json:"preview"`
	IsSystemMessage bool      `json:"is_system_message"`
	CreatedAt       time.Time `json:"created_at"`
}

type ConversationClosedPayload struct {
	ConversationID   uuid.UUID `json:"conversation_id"`
	CitizenID        uuid.UUID `json:"citizen_id"`
	RepresentativeID uuid.UUID `json:"representative_id"`
	ClosedBy         uuid.UUID `json:"closed_by"`
	ClosedAt         time.Time `json:"closed_at"`
}

type ReportFiledPayload struct {
	ReportID   uuid.UUID `json:"report_id"`
	MessageID  uuid.UUID `json:"message_id"`
	ReporterID uuid.UUID `json:"reporter_id"`
	Reason     string    `json:"reason"`
	CreatedAt  time.Time `json:"created_at"`
}

func writeOutbox(ctx context.Context, repo repository.OutboxRepository, eventType, aggregateType string, aggregateID uuid.UUID, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return repo.CreateEvent(ctx, &outbox.OutboxEvent{
		ID:            uuid.New(),
		EventType:     eventType,
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		Payload:       raw,
		CreatedAt:     time.Now(),
	})
}

const previewLength = 100

func preview(content string) string {
	runes := []rune(content)
	if len(runes) <= previewLength {
		return content
	}
	return string(runes[:previewLength])
}
