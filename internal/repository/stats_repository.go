package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"naebak-messaging/internal/domain/stats"
	naebak_errors "naebak-messaging/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresStatsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &PostgresStatsRepository{db: db}
}

func (r *PostgresStatsRepository) IncrementDaily(ctx context.Context, userID uuid.UUID, date time.Time, field DailyField) error {
	switch field {
	case FieldMessagesSent, FieldMessagesReceived, FieldConversationsStarted, FieldConversationsClosed:
	default:
		return naebak_errors.ErrInvalidInput
	}

	day := date.UTC().Truncate(24 * time.Hour)
	row := stats.DailyStatistics{
		ID:        uuid.New(),
		UserID:    userID,
		Date:      day,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	switch field {
	case FieldMessagesSent:
		row.MessagesSent = 1
	case FieldMessagesReceived:
		row.MessagesReceived = 1
	case FieldConversationsStarted:
		row.ConversationsStarted = 1
	case FieldConversationsClosed:
		row.ConversationsClosed = 1
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "date"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				string(field): gorm.Expr(fmt.Sprintf("%s.%s + 1", stats.DailyStatistics{}.TableName(), field)),
				"updated_at":  time.Now(),
			}),
		}).
		Create(&row).Error
}

func (r *PostgresStatsRepository) GetDaily(ctx context.Context, userID uuid.UUID, date time.Time) (stats.DailyStatistics, error) {
	day := date.UTC().Truncate(24 * time.Hour)
	var row stats.DailyStatistics
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, day).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return stats.DailyStatistics{}, naebak_errors.ErrNotFound
		}
		return stats.DailyStatistics{}, err
	}
	return row, nil
}
