package services

import (
	"context"
	"testing"

	"naebak-messaging/internal/domain/report"
	naebak_errors "naebak-messaging/pkg/errors"
	"naebak-messaging/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type ReportServiceSuite struct {
	suite.Suite
	f   *fixture
	ctx context.Context

	citizen uuid.UUID
	rep     uuid.UUID
	msgID   uuid.UUID
}

func (s *ReportServiceSuite) SetupTest() {
	s.f = newFixture()
	s.ctx = context.Background()

	s.citizen = s.f.seedCitizen()
	s.rep = s.f.seedRepresentative()
	conv, err := s.f.conversationSvc.Create(s.ctx, s.citizen, s.rep, "Subject", "Hello")
	s.Require().NoError(err)
	msg, err := s.f.messageSvc.Append(s.ctx, conv.ID, s.rep, "Something objectionable", uuid.NullUUID{})
	s.Require().NoError(err)
	s.msgID = msg.ID
}

func TestReportServiceSuite(t *testing.T) {
	suite.Run(t, new(ReportServiceSuite))
}

func (s *ReportServiceSuite) TestFile() {
	s.Run("files a report and emits the event", func() {
		rep, err := s.f.reportSvc.File(s.ctx, s.msgID, s.citizen, report.ReasonSpam, "unsolicited links")
		s.Require().NoError(err)
		s.Equal(s.msgID, rep.MessageID)
		s.False(rep.IsReviewed)

		pending, err := s.f.outbox.GetPendingEvents(s.ctx, 100)
		s.Require().NoError(err)
		last := pending[len(pending)-1]
		s.Equal(events.TypeReportFiled, last.EventType)
	})

	s.Run("rejects unknown reason", func() {
		_, err := s.f.reportSvc.File(s.ctx, s.msgID, s.citizen, report.Reason("rude"), "")
		s.Require().ErrorIs(err, naebak_errors.ErrInvalidReason)
	})

	s.Run("rejects reporting own message", func() {
		_, err := s.f.reportSvc.File(s.ctx, s.msgID, s.rep, report.ReasonSpam, "")
		s.Require().ErrorIs(err, naebak_errors.ErrCannotReportSelf)
	})

	s.Run("rejects outsider", func() {
		outsider := s.f.seedCitizen()
		_, err := s.f.reportSvc.File(s.ctx, s.msgID, outsider, report.ReasonSpam, "")
		s.Require().ErrorIs(err, naebak_errors.ErrNotParticipant)
	})

	s.Run("rejects second report for same message and reporter", func() {
		conv, err := s.f.conversationSvc.Create(s.ctx, s.citizen, s.rep, "Another", "Hello")
		s.Require().NoError(err)
		msg, err := s.f.messageSvc.Append(s.ctx, conv.ID, s.rep, "Spam again", uuid.NullUUID{})
		s.Require().NoError(err)

		_, err = s.f.reportSvc.File(s.ctx, msg.ID, s.citizen, report.ReasonSpam, "")
		s.Require().NoError(err)

		_, err = s.f.reportSvc.File(s.ctx, msg.ID, s.citizen, report.ReasonHarassment, "")
		s.Require().ErrorIs(err, naebak_errors.ErrDuplicateReport)
	})
}

func (s *ReportServiceSuite) TestReview() {
	s.Run("review is one-way", func() {
		admin := s.f.seedAdmin()
		rep, err := s.f.reportSvc.File(s.ctx, s.msgID, s.citizen, report.ReasonInappropriate, "")
		s.Require().NoError(err)

		s.Require().NoError(s.f.reportSvc.Review(s.ctx, rep.ID, admin, "message removed"))

		got, err := s.f.reports.GetByID(s.ctx, rep.ID)
		s.Require().NoError(err)
		s.True(got.IsReviewed)
		s.Equal(admin, got.ReviewedBy.UUID)
		s.Equal("message removed", got.ActionTaken.String)

		err = s.f.reportSvc.Review(s.ctx, rep.ID, admin, "again")
		s.Require().ErrorIs(err, naebak_errors.ErrAlreadyReviewed)
	})

	s.Run("rejects non-admin reviewer", func() {
		conv, err := s.f.conversationSvc.Create(s.ctx, s.citizen, s.rep, "Another", "Hello")
		s.Require().NoError(err)
		msg, err := s.f.messageSvc.Append(s.ctx, conv.ID, s.rep, "Still objectionable", uuid.NullUUID{})
		s.Require().NoError(err)

		rep, err := s.f.reportSvc.File(s.ctx, msg.ID, s.citizen, report.ReasonOther, "")
		s.Require().NoError(err)

		err = s.f.reportSvc.Review(s.ctx, rep.ID, s.citizen, "")
		s.Require().ErrorIs(err, naebak_errors.ErrInvalidRole)
	})
}

func (s *ReportServiceSuite) TestListPending() {
	s.Run("returns unreviewed reports oldest first", func() {
		admin := s.f.seedAdmin()
		first, err := s.f.reportSvc.File(s.ctx, s.msgID, s.citizen, report.ReasonSpam, "")
		s.Require().NoError(err)

		conv2, err := s.f.conversationSvc.Create(s.ctx, s.citizen, s.rep, "Second", "Hello again")
		s.Require().NoError(err)
		msg2, err := s.f.messageSvc.Append(s.ctx, conv2.ID, s.rep, "More spam", uuid.NullUUID{})
		s.Require().NoError(err)
		second, err := s.f.reportSvc.File(s.ctx, msg2.ID, s.citizen, report.ReasonSpam, "")
		s.Require().NoError(err)

		s.Require().NoError(s.f.reportSvc.Review(s.ctx, first.ID, admin, "dismissed"))

		pending, total, err := s.f.reportSvc.ListPending(s.ctx, 1, 50)
		s.Require().NoError(err)
		s.Equal(int64(1), total)
		s.Equal(second.ID, pending[0].ID)
	})
}
