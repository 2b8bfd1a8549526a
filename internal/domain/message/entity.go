package message

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Message represents the messages table. Content is immutable after creation;
// only the read state ever changes, and Unread -> Read is one-way.
type Message struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	ConversationID uuid.UUID `gorm:"type:uuid;not null;index:idx_messages_conversation_created"`
	SenderID       uuid.UUID `gorm:"type:uuid;not null;index"`

	Content string `gorm:"type:varchar(500);not null"`

	IsRead bool `gorm:"not null;default:false"`
	ReadAt sql.NullTime

	// System messages are generated by the core itself (e.g. on close) and are
	// the only messages allowed into a closed conversation.
	IsSystemMessage bool `gorm:"not null;default:false"`

	ReplyToID uuid.NullUUID `gorm:"type:uuid"`

	CreatedAt time.Time `gorm:"not null;index:idx_messages_conversation_created"`
}

func (Message) TableName() string {
	return "messages"
}
