package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	naebak_errors "naebak-messaging/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type MessageServiceSuite struct {
	suite.Suite
	f   *fixture
	ctx context.Context

	citizen uuid.UUID
	rep     uuid.UUID
	convID  uuid.UUID
}

func (s *MessageServiceSuite) SetupTest() {
	s.f = newFixture()
	s.ctx = context.Background()

	s.citizen = s.f.seedCitizen()
	s.rep = s.f.seedRepresentative()
	conv, err := s.f.conversationSvc.Create(s.ctx, s.citizen, s.rep, "Subject", "Hello")
	s.Require().NoError(err)
	s.convID = conv.ID
}

func TestMessageServiceSuite(t *testing.T) {
	suite.Run(t, new(MessageServiceSuite))
}

// newConv opens a fresh conversation so subtests do not share rollup state.
func (s *MessageServiceSuite) newConv() uuid.UUID {
	conv, err := s.f.conversationSvc.Create(s.ctx, s.citizen, s.rep, "Subject", "Hello")
	s.Require().NoError(err)
	return conv.ID
}

func (s *MessageServiceSuite) TestAppend() {
	s.Run("create plus append counts exactly two", func() {
		convID := s.newConv()
		_, err := s.f.messageSvc.Append(s.ctx, convID, s.rep, "On it.", uuid.NullUUID{})
		s.Require().NoError(err)

		conv, err := s.f.conversations.GetByID(s.ctx, convID)
		s.Require().NoError(err)
		s.Equal(int64(2), conv.TotalMessages)
		s.Equal(s.rep, conv.LastMessageBy.UUID)
	})

	s.Run("rollup stays exact over many appends", func() {
		convID := s.newConv()
		for i := 0; i < 10; i++ {
			_, err := s.f.messageSvc.Append(s.ctx, convID, s.citizen, fmt.Sprintf("update %d", i), uuid.NullUUID{})
			s.Require().NoError(err)
		}
		conv, err := s.f.conversations.GetByID(s.ctx, convID)
		s.Require().NoError(err)
		s.Equal(int64(11), conv.TotalMessages)
	})

	s.Run("concurrent appends are both recorded", func() {
		convID := s.newConv()
		var wg sync.WaitGroup
		errs := make([]error, 2)
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = s.f.messageSvc.Append(s.ctx, convID, s.citizen, fmt.Sprintf("concurrent %d", i), uuid.NullUUID{})
			}(i)
		}
		wg.Wait()
		s.Require().NoError(errs[0])
		s.Require().NoError(errs[1])

		conv, err := s.f.conversations.GetByID(s.ctx, convID)
		s.Require().NoError(err)
		s.Equal(int64(3), conv.TotalMessages)
		s.True(conv.LastMessageBy.Valid)
	})

	s.Run("rejects empty and oversized content", func() {
		_, err := s.f.messageSvc.Append(s.ctx, s.convID, s.rep, "   ", uuid.NullUUID{})
		s.Require().ErrorIs(err, naebak_errors.ErrEmptyContent)

		_, err = s.f.messageSvc.Append(s.ctx, s.convID, s.rep, strings.Repeat("x", 501), uuid.NullUUID{})
		s.Require().ErrorIs(err, naebak_errors.ErrContentTooLong)
	})

	s.Run("rejects outsider", func() {
		_, err := s.f.messageSvc.Append(s.ctx, s.convID, uuid.New(), "Hi", uuid.NullUUID{})
		s.Require().ErrorIs(err, naebak_errors.ErrNotParticipant)
	})

	s.Run("rejects append to closed conversation", func() {
		convID := s.newConv()
		_, err := s.f.conversationSvc.Close(s.ctx, convID, s.citizen)
		s.Require().NoError(err)

		_, err = s.f.messageSvc.Append(s.ctx, convID, s.rep, "Too late", uuid.NullUUID{})
		s.Require().ErrorIs(err, naebak_errors.ErrConversationClosed)
	})

	s.Run("rejects reply to message in another conversation", func() {
		otherConv, err := s.f.conversationSvc.Create(s.ctx, s.citizen, s.rep, "Other", "Different thread")
		s.Require().NoError(err)
		otherMsgs, _, err := s.f.messageSvc.ListConversationMessages(s.ctx, otherConv.ID, s.citizen, 1, 50)
		s.Require().NoError(err)

		_, err = s.f.messageSvc.Append(s.ctx, s.convID, s.rep, "Re: that", uuid.NullUUID{UUID: otherMsgs[0].ID, Valid: true})
		s.Require().ErrorIs(err, naebak_errors.ErrInvalidReply)
	})

	s.Run("accepts reply within the conversation", func() {
		msgs, _, err := s.f.messageSvc.ListConversationMessages(s.ctx, s.convID, s.citizen, 1, 50)
		s.Require().NoError(err)

		reply, err := s.f.messageSvc.Append(s.ctx, s.convID, s.rep, "Re: hello", uuid.NullUUID{UUID: msgs[0].ID, Valid: true})
		s.Require().NoError(err)
		s.Equal(msgs[0].ID, reply.ReplyToID.UUID)
	})
}

func (s *MessageServiceSuite) TestMarkRead() {
	s.Run("marks unread message read once", func() {
		msg, err := s.f.messageSvc.Append(s.ctx, s.convID, s.rep, "On it.", uuid.NullUUID{})
		s.Require().NoError(err)

		changed, err := s.f.messageSvc.MarkRead(s.ctx, msg.ID, s.citizen)
		s.Require().NoError(err)
		s.True(changed)

		got, err := s.f.messages.GetByID(s.ctx, msg.ID)
		s.Require().NoError(err)
		s.True(got.IsRead)
		s.True(got.ReadAt.Valid)
	})

	s.Run("second mark is a no-op and keeps read_at", func() {
		msg, err := s.f.messageSvc.Append(s.ctx, s.convID, s.rep, "On it.", uuid.NullUUID{})
		s.Require().NoError(err)

		changed, err := s.f.messageSvc.MarkRead(s.ctx, msg.ID, s.citizen)
		s.Require().NoError(err)
		s.True(changed)
		first, err := s.f.messages.GetByID(s.ctx, msg.ID)
		s.Require().NoError(err)

		changed, err = s.f.messageSvc.MarkRead(s.ctx, msg.ID, s.citizen)
		s.Require().NoError(err)
		s.False(changed)
		second, err := s.f.messages.GetByID(s.ctx, msg.ID)
		s.Require().NoError(err)
		s.Equal(first.ReadAt.Time, second.ReadAt.Time)
	})

	s.Run("sender cannot mark own unread message", func() {
		msg, err := s.f.messageSvc.Append(s.ctx, s.convID, s.rep, "On it.", uuid.NullUUID{})
		s.Require().NoError(err)

		_, err = s.f.messageSvc.MarkRead(s.ctx, msg.ID, s.rep)
		s.Require().ErrorIs(err, naebak_errors.ErrSelfMarkForbidden)
	})

	s.Run("sender repeat on already-read message is a no-op", func() {
		msg, err := s.f.messageSvc.Append(s.ctx, s.convID, s.rep, "On it.", uuid.NullUUID{})
		s.Require().NoError(err)

		changed, err := s.f.messageSvc.MarkRead(s.ctx, msg.ID, s.citizen)
		s.Require().NoError(err)
		s.True(changed)

		changed, err = s.f.messageSvc.MarkRead(s.ctx, msg.ID, s.rep)
		s.Require().NoError(err)
		s.False(changed)
	})
}

func (s *MessageServiceSuite) TestMarkConversationRead() {
	s.Run("flips all unread from the other participant", func() {
		for i := 0; i < 3; i++ {
			_, err := s.f.messageSvc.Append(s.ctx, s.convID, s.rep, fmt.Sprintf("reply %d", i), uuid.NullUUID{})
			s.Require().NoError(err)
		}

		count, err := s.f.messageSvc.MarkConversationRead(s.ctx, s.convID, s.citizen)
		s.Require().NoError(err)
		s.Equal(int64(3), count)

		unread, err := s.f.conversationSvc.UnreadCountFor(s.ctx, s.convID, s.citizen)
		s.Require().NoError(err)
		s.Equal(int64(0), unread)

		// The citizen's own first message stays untouched for the rep.
		unreadForRep, err := s.f.conversationSvc.UnreadCountFor(s.ctx, s.convID, s.rep)
		s.Require().NoError(err)
		s.Equal(int64(1), unreadForRep)
	})

	s.Run("messages appended afterwards stay unread", func() {
		_, err := s.f.messageSvc.MarkConversationRead(s.ctx, s.convID, s.citizen)
		s.Require().NoError(err)

		_, err = s.f.messageSvc.Append(s.ctx, s.convID, s.rep, "new after bulk", uuid.NullUUID{})
		s.Require().NoError(err)

		unread, err := s.f.conversationSvc.UnreadCountFor(s.ctx, s.convID, s.citizen)
		s.Require().NoError(err)
		s.Equal(int64(1), unread)
	})

	s.Run("rejects outsider", func() {
		_, err := s.f.messageSvc.MarkConversationRead(s.ctx, s.convID, uuid.New())
		s.Require().ErrorIs(err, naebak_errors.ErrNotParticipant)
	})
}

func (s *MessageServiceSuite) TestListConversationMessages() {
	s.Run("returns messages in creation order", func() {
		_, err := s.f.messageSvc.Append(s.ctx, s.convID, s.rep, "second", uuid.NullUUID{})
		s.Require().NoError(err)
		_, err = s.f.messageSvc.Append(s.ctx, s.convID, s.citizen, "third", uuid.NullUUID{})
		s.Require().NoError(err)

		msgs, total, err := s.f.messageSvc.ListConversationMessages(s.ctx, s.convID, s.citizen, 1, 50)
		s.Require().NoError(err)
		s.Equal(int64(3), total)
		s.Equal("Hello", msgs[0].Content)
		s.Equal("second", msgs[1].Content)
		s.Equal("third", msgs[2].Content)
	})

	s.Run("rejects non-participant viewer", func() {
		_, _, err := s.f.messageSvc.ListConversationMessages(s.ctx, s.convID, uuid.New(), 1, 50)
		s.Require().ErrorIs(err, naebak_errors.ErrNotParticipant)
	})
}

func (s *MessageServiceSuite) TestUnreadTotalFor() {
	s.Run("sums unread across conversations", func() {
		second, err := s.f.conversationSvc.Create(s.ctx, s.citizen, s.rep, "Second thread", "Another issue")
		s.Require().NoError(err)
		_, err = s.f.messageSvc.Append(s.ctx, s.convID, s.rep, "reply one", uuid.NullUUID{})
		s.Require().NoError(err)
		_, err = s.f.messageSvc.Append(s.ctx, second.ID, s.rep, "reply two", uuid.NullUUID{})
		s.Require().NoError(err)

		total, err := s.f.messageSvc.UnreadTotalFor(s.ctx, s.citizen)
		s.Require().NoError(err)
		s.Equal(int64(2), total)

		// Both citizen openers are unread for the representative.
		repTotal, err := s.f.messageSvc.UnreadTotalFor(s.ctx, s.rep)
		s.Require().NoError(err)
		s.Equal(int64(2), repTotal)
	})
}
