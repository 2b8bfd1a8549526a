package report

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type Reason string

const (
	ReasonSpam          Reason = "spam"
	ReasonInappropriate Reason = "inappropriate"
	ReasonHarassment    Reason = "harassment"
	ReasonFake          Reason = "fake"
	ReasonOther         Reason = "other"
)

func (r Reason) Valid() bool {
	switch r {
	case ReasonSpam, ReasonInappropriate, ReasonHarassment, ReasonFake, ReasonOther:
		return true
	}
	return false
}

// Report represents the message_reports table. At most one report per
// (message, reporter) pair; the review transition is one-way.
type Report struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	MessageID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reports_message_reporter"`
	ReporterID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reports_message_reporter"`

	Reason      Reason `gorm:"type:varchar(20);not null;index"`
	Description sql.NullString

	IsReviewed  bool `gorm:"not null;default:false;index"`
	ReviewedAt  sql.NullTime
	ReviewedBy  uuid.NullUUID
	ActionTaken sql.NullString

	CreatedAt time.Time `gorm:"not null;index"`
}

func (Report) TableName() string {
	return "message_reports"
}
