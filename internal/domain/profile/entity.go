package profile

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Role is fixed at profile creation and never changes afterwards.
type Role string

const (
	RoleCitizen        Role = "citizen"
	RoleRepresentative Role = "representative"
	RoleAdmin          Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCitizen, RoleRepresentative, RoleAdmin:
		return true
	}
	return false
}

// Profile represents the profiles table. One profile per user; soft-deactivated
// via IsActive, never hard-deleted.
type Profile struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	Role   Role      `gorm:"type:varchar(20);not null;index"`
	Phone  sql.NullString

	Governorate sql.NullString
	District    sql.NullString

	// RepresentativeID links a representative profile to the external directory.
	RepresentativeID uuid.NullUUID `gorm:"type:uuid;index"`

	EmailNotifications bool `gorm:"default:true"`
	SmsNotifications   bool `gorm:"default:false"`

	IsActive  bool `gorm:"default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Profile) TableName() string {
	return "profiles"
}
