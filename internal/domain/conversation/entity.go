package conversation

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Conversation represents the conversations table. The row is the serialization
// point for its own messages: the rollup fields (TotalMessages, LastMessageAt,
// LastMessageBy) are updated in the same transaction as every message insert.
type Conversation struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	CitizenID        uuid.UUID `gorm:"type:uuid;not null;index:idx_conversations_pair"`
	RepresentativeID uuid.UUID `gorm:"type:uuid;not null;index:idx_conversations_pair"`

	Subject string `gorm:"type:varchar(200);not null"`

	TotalMessages int64     `gorm:"not null;default:0"`
	LastMessageAt time.Time `gorm:"not null;index"`
	LastMessageBy uuid.NullUUID

	IsClosed bool `gorm:"not null;default:false;index"`
	ClosedAt sql.NullTime
	ClosedBy uuid.NullUUID

	// Re-rating replaces the previous value.
	CitizenRating   sql.NullInt16
	CitizenFeedback sql.NullString

	IsActive  bool `gorm:"default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsParticipant reports whether userID is one of the two fixed participants.
func (c Conversation) IsParticipant(userID uuid.UUID) bool {
	return userID == c.CitizenID || userID == c.RepresentativeID
}

// OtherParticipant returns the counterpart of userID. The caller must have
// checked IsParticipant first.
func (c Conversation) OtherParticipant(userID uuid.UUID) uuid.UUID {
	if userID == c.CitizenID {
		return c.RepresentativeID
	}
	return c.CitizenID
}

func (Conversation) TableName() string {
	return "conversations"
}
