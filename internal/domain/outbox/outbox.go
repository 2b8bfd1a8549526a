package outbox

import (
	"time"

	"github.com/google/uuid"
)

// OutboxEvent stores domain events waiting to be published to Redis. Rows are
// written in the same transaction as the mutation that produced them.
type OutboxEvent struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	EventType     string    `gorm:"type:varchar(50);not null"`
	AggregateType string    `gorm:"type:varchar(50);not null"`
	AggregateID   uuid.UUID `gorm:"type:uuid;not null"`
	Payload       []byte    `gorm:"type:jsonb;not null"`

	RetryCount   int `gorm:"not null;default:0"`
	NextRetryAt  *time.Time
	ErrorMessage string `gorm:"type:text"`

	CreatedAt   time.Time `gorm:"not null;index"`
	ProcessedAt *time.Time
}

func (OutboxEvent) TableName() string {
	return "outbox_events"
}
