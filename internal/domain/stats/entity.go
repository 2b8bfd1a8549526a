package stats

import (
	"time"

	"github.com/google/uuid"
)

// DailyStatistics is an eventually-consistent per-user, per-day projection.
// One row per (user, date); counters advance with atomic increments.
type DailyStatistics struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_daily_stats_user_date"`
	Date   time.Time `gorm:"type:date;not null;uniqueIndex:idx_daily_stats_user_date"`

	MessagesSent         int64 `gorm:"not null;default:0"`
	MessagesReceived     int64 `gorm:"not null;default:0"`
	ConversationsStarted int64 `gorm:"not null;default:0"`
	ConversationsClosed  int64 `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (DailyStatistics) TableName() string {
	return "daily_statistics"
}

// UserStats is the on-demand read model for a single user.
type UserStats struct {
	TotalConversations     int64   `json:"total_conversations"`
	ActiveConversations    int64   `json:"active_conversations"`
	TotalMessagesSent      int64   `json:"total_messages_sent"`
	TotalMessagesReceived  int64   `json:"total_messages_received"`
	UnreadMessages         int64   `json:"unread_messages"`
	ConversationsThisMonth int64 `json:"conversations_this_month"`
	MessagesThisMonth      int64 `json:"messages_this_month"`
}

// ConversationStats aggregates a user's conversations over time buckets.
type ConversationStats struct {
	TotalConversations         int64   `json:"total_conversations"`
	ActiveConversations        int64   `json:"active_conversations"`
	ClosedConversations        int64   `json:"closed_conversations"`
	ConversationsToday         int64   `json:"conversations_today"`
	ConversationsThisWeek      int64   `json:"conversations_this_week"`
	ConversationsThisMonth     int64   `json:"conversations_this_month"`
	AvgMessagesPerConversation float64 `json:"avg_messages_per_conversation"`
	AvgCitizenRating           float64 `json:"avg_citizen_rating"`
}
