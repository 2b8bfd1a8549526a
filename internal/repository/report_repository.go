package repository

import (
	"context"
	"errors"
	"time"

	"naebak-messaging/internal/domain/report"
	naebak_errors "naebak-messaging/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &PostgresReportRepository{db: db}
}

func (r *PostgresReportRepository) Create(ctx context.Context, rep *report.Report) error {
	res := r.db.WithContext(ctx).Create(rep)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return naebak_errors.ErrDuplicateReport
		}
		return res.Error
	}
	return nil
}

func (r *PostgresReportRepository) GetByID(ctx context.Context, id uuid.UUID) (report.Report, error) {
	var rep report.Report
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&rep).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return report.Report{}, naebak_errors.ErrNotFound
		}
		return report.Report{}, err
	}
	return rep, nil
}

func (r *PostgresReportRepository) MarkReviewed(ctx context.Context, id, reviewerID uuid.UUID, actionTaken string, at time.Time) error {
	// One-way transition; the is_reviewed guard makes a second review a no-match.
	res := r.db.WithContext(ctx).
		Model(&report.Report{}).
		Where("id = ? AND is_reviewed = false", id).
		Updates(map[string]interface{}{
			"is_reviewed":  true,
			"reviewed_at":  at,
			"reviewed_by":  reviewerID,
			"action_taken": actionTaken,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return naebak_errors.ErrAlreadyReviewed
	}
	return nil
}

func (r *PostgresReportRepository) ListPending(ctx context.Context, page, limit int) ([]report.Report, int64, error) {
	var reports []report.Report
	var total int64

	q := r.db.WithContext(ctx).
		Model(&report.Report{}).
		Where("is_reviewed = false")

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := q.
		Order("created_at ASC").
		Offset(offset).
		Limit(limit).
		Find(&reports).Error; err != nil {
		return nil, 0, err
	}

	return reports, total, nil
}
