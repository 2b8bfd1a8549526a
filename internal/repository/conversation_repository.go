package repository

import (
	"context"
	"errors"
	"time"

	"naebak-messaging/internal/domain/conversation"
	naebak_errors "naebak-messaging/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &PostgresConversationRepository{db: db}
}

func (r *PostgresConversationRepository) Create(ctx context.Context, c *conversation.Conversation) error {
	res := r.db.WithContext(ctx).Create(c)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return naebak_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresConversationRepository) GetByID(ctx context.Context, id uuid.UUID) (conversation.Conversation, error) {
	var c conversation.Conversation
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return conversation.Conversation{}, naebak_errors.ErrNotFound
		}
		return conversation.Conversation{}, err
	}
	return c, nil
}

func (r *PostgresConversationRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (conversation.Conversation, error) {
	var c conversation.Conversation
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return conversation.Conversation{}, naebak_errors.ErrNotFound
		}
		return conversation.Conversation{}, err
	}
	return c, nil
}

func (r *PostgresConversationRepository) Update(ctx context.Context, c conversation.Conversation) error {
	res := r.db.WithContext(ctx).Save(&c)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return naebak_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresConversationRepository) ApplyMessageRollup(ctx context.Context, conversationID uuid.UUID, at time.Time, senderID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&conversation.Conversation{}).
		Where("id = ?", conversationID).
		Updates(map[string]interface{}{
			"total_messages": gorm.Expr("total_messages + 1"),
			"updated_at":     time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return naebak_errors.ErrNotFound
	}

	// Last-writer-by-timestamp; equal timestamps resolve toward the later
	// insert, so the pointer never moves backwards.
	res = r.db.WithContext(ctx).
		Model(&conversation.Conversation{}).
		Where("id = ? AND last_message_at <= ?", conversationID, at).
		Updates(map[string]interface{}{
			"last_message_at": at,
			"last_message_by": senderID,
		})
	return res.Error
}

func (r *PostgresConversationRepository) SetRating(ctx context.Context, conversationID uuid.UUID, rating int16, feedback string) error {
	res := r.db.WithContext(ctx).
		Model(&conversation.Conversation{}).
		Where("id = ?", conversationID).
		Updates(map[string]interface{}{
			"citizen_rating":   rating,
			"citizen_feedback": feedback,
			"updated_at":       time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return naebak_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresConversationRepository) ListForUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]conversation.Conversation, int64, error) {
	var conversations []conversation.Conversation
	var total int64

	q := r.db.WithContext(ctx).
		Model(&conversation.Conversation{}).
		Where("citizen_id = ? OR representative_id = ?", userID, userID)

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := q.
		Order("last_message_at DESC, created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&conversations).Error; err != nil {
		return nil, 0, err
	}

	return conversations, total, nil
}

func (r *PostgresConversationRepository) ListForUserByState(ctx context.Context, userID uuid.UUID, closed bool, page, limit int) ([]conversation.Conversation, int64, error) {
	var conversations []conversation.Conversation
	var total int64

	q := r.db.WithContext(ctx).
		Model(&conversation.Conversation{}).
		Where("(citizen_id = ? OR representative_id = ?) AND is_closed = ?", userID, userID, closed)

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := q.
		Order("last_message_at DESC, created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&conversations).Error; err != nil {
		return nil, 0, err
	}

	return conversations, total, nil
}

func (r *PostgresConversationRepository) CountForUser(ctx context.Context, userID uuid.UUID, since *time.Time) (int64, error) {
	var count int64
	q := r.db.WithContext(ctx).
		Model(&conversation.Conversation{}).
		Where("citizen_id = ? OR representative_id = ?", userID, userID)
	if since != nil {
		q = q.Where("created_at >= ?", *since)
	}
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PostgresConversationRepository) CountForUserByState(ctx context.Context, userID uuid.UUID, closed bool) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&conversation.Conversation{}).
		Where("(citizen_id = ? OR representative_id = ?) AND is_closed = ?", userID, userID, closed).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PostgresConversationRepository) AvgMessagesForUser(ctx context.Context, userID uuid.UUID) (float64, error) {
	var avg *float64
	err := r.db.WithContext(ctx).
		Model(&conversation.Conversation{}).
		Where("citizen_id = ? OR representative_id = ?", userID, userID).
		Select("AVG(total_messages)").
		Scan(&avg).Error
	if err != nil {
		return 0, err
	}
	if avg == nil {
		return 0, nil
	}
	return *avg, nil
}

func (r *PostgresConversationRepository) AvgRatingForUser(ctx context.Context, userID uuid.UUID) (float64, error) {
	var avg *float64
	err := r.db.WithContext(ctx).
		Model(&conversation.Conversation{}).
		Where("(citizen_id = ? OR representative_id = ?) AND citizen_rating IS NOT NULL", userID, userID).
		Select("AVG(citizen_rating)").
		Scan(&avg).Error
	if err != nil {
		return 0, err
	}
	if avg == nil {
		return 0, nil
	}
	return *avg, nil
}
