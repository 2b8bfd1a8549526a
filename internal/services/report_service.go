package services

import (
	"context"
	"time"

	"naebak-messaging/internal/domain/report"
	"naebak-messaging/internal/proxy"
	"naebak-messaging/internal/repository"
	naebak_errors "naebak-messaging/pkg/errors"
	"naebak-messaging/pkg/events"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReportService struct {
	db               *gorm.DB
	reportRepo       repository.ReportRepository
	messageRepo      repository.MessageRepository
	conversationRepo repository.ConversationRepository
	outboxRepo       repository.OutboxRepository
	access           *proxy.AccessControl
}

func NewReportService(db *gorm.DB, reportRepo repository.ReportRepository, messageRepo repository.MessageRepository, conversationRepo repository.ConversationRepository, outboxRepo repository.OutboxRepository, access *proxy.AccessControl) *ReportService {
	return &ReportService{
		db:               db,
		reportRepo:       reportRepo,
		messageRepo:      messageRepo,
		conversationRepo: conversationRepo,
		outboxRepo:       outboxRepo,
		access:           access,
	}
}

func (s *ReportService) withTx(tx *gorm.DB) *ReportService {
	return &ReportService{
		reportRepo:       repository.NewReportRepository(tx),
		messageRepo:      repository.NewMessageRepository(tx),
		conversationRepo: repository.NewConversationRepository(tx),
		outboxRepo:       repository.NewOutboxRepository(tx),
		access:           s.access,
	}
}

// File records a moderation report against a message. A participant may report
// any message in their conversation except their own, once.
func (s *ReportService) File(ctx context.Context, messageID, reporterID uuid.UUID, reason report.Reason, description string) (report.Report, error) {
	if !reason.Valid() {
		return report.Report{}, naebak_errors.ErrInvalidReason
	}
	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return report.Report{}, err
	}
	if msg.SenderID == reporterID {
		return report.Report{}, naebak_errors.ErrCannotReportSelf
	}
	conv, err := s.conversationRepo.GetByID(ctx, msg.ConversationID)
	if err != nil {
		return report.Report{}, err
	}
	if !conv.IsParticipant(reporterID) {
		return report.Report{}, naebak_errors.ErrNotParticipant
	}

	if s.db == nil {
		return s.fileDirect(ctx, messageID, reporterID, reason, description)
	}
	var out report.Report
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rep, err := s.withTx(tx).fileDirect(ctx, messageID, reporterID, reason, description)
		if err != nil {
			return err
		}
		out = rep
		return nil
	})
	if err != nil {
		return report.Report{}, err
	}
	return out, nil
}

func (s *ReportService) fileDirect(ctx context.Context, messageID, reporterID uuid.UUID, reason report.Reason, description string) (report.Report, error) {
	rep := report.Report{
		ID:         uuid.New(),
		MessageID:  messageID,
		ReporterID: reporterID,
		Reason:     reason,
		CreatedAt:  time.Now(),
	}
	if description != "" {
		rep.Description.String = description
		rep.Description.Valid = true
	}
	if err := s.reportRepo.Create(ctx, &rep); err != nil {
		return report.Report{}, err
	}

	if err := writeOutbox(ctx, s.outboxRepo, events.TypeReportFiled, "report", rep.ID, ReportFiledPayload{
		ReportID:   rep.ID,
		MessageID:  messageID,
		ReporterID: reporterID,
		Reason:     string(reason),
		CreatedAt:  rep.CreatedAt,
	}); err != nil {
		return report.Report{}, err
	}
	return rep, nil
}

// Review marks a report reviewed. The transition is one-way; a second review
// attempt fails regardless of reviewer.
func (s *ReportService) Review(ctx context.Context, reportID, reviewerID uuid.UUID, actionTaken string) error {
	if s.access != nil {
		if _, err := s.access.EnsureAdmin(ctx, reviewerID); err != nil {
			return err
		}
	}
	return s.reportRepo.MarkReviewed(ctx, reportID, reviewerID, actionTaken, time.Now())
}

func (s *ReportService) ListPending(ctx context.Context, page, limit int) ([]report.Report, int64, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.reportRepo.ListPending(ctx, page, limit)
}
