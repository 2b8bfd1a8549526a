package notification

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeNewMessage         Type = "new_message"
	TypeConversationClosed Type = "conversation_closed"
	TypeSystemUpdate       Type = "system_update"
	TypeMaintenance        Type = "maintenance"
)

// Notification is a derived projection rebuilt from the event stream; it is
// never the source of truth. Delivery (email/SMS) is handled outside the core.
type Notification struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index:idx_notifications_user_read"`

	Type  Type   `gorm:"type:varchar(30);not null;index"`
	Title string `gorm:"type:varchar(200);not null"`
	Body  string `gorm:"type:text;not null"`

	RelatedObjectID uuid.NullUUID `gorm:"type:uuid"`

	IsRead bool `gorm:"not null;default:false;index:idx_notifications_user_read"`
	ReadAt sql.NullTime

	CreatedAt time.Time `gorm:"not null;index"`
}

func (Notification) TableName() string {
	return "notifications"
}
