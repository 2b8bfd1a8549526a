package events

import (
	"context"
	"encoding/json"
	"time"
)

// Event types emitted by the core. The notification layer subscribes to these;
// the core never waits for delivery.
const (
	TypeConversationCreated = "conversation.created"
	TypeMessageAppended     = "message.appended"
	TypeConversationClosed  = "conversation.closed"
	TypeReportFiled         = "report.filed"
)

// Envelope is the wire format published to the broker.
type Envelope struct {
	EventType     string          `json:"event_type"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Payload       json.RawMessage `json:"payload"`
}

type Handler func(ctx context.Context, env Envelope) error

type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, channel string, handler Handler) error
	// SubscribePattern delivers every envelope published on channels matching
	// a glob pattern, e.g. "channel:*" for projector fan-in.
	SubscribePattern(ctx context.Context, pattern string, handler Handler) error
}

type Broker interface {
	Publisher
	Subscriber
}
