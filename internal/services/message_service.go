package services

import (
	"context"
	"time"

	"naebak-messaging/internal/domain/message"
	"naebak-messaging/internal/proxy"
	"naebak-messaging/internal/repository"
	naebak_errors "naebak-messaging/pkg/errors"
	"naebak-messaging/pkg/events"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MessageService struct {
	db               *gorm.DB
	conversationRepo repository.ConversationRepository
	messageRepo      repository.MessageRepository
	outboxRepo       repository.OutboxRepository
	access           *proxy.AccessControl
}

func NewMessageService(db *gorm.DB, conversationRepo repository.ConversationRepository, messageRepo repository.MessageRepository, outboxRepo repository.OutboxRepository, access *proxy.AccessControl) *MessageService {
	return &MessageService{
		db:               db,
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
		outboxRepo:       outboxRepo,
		access:           access,
	}
}

func (s *MessageService) withTx(tx *gorm.DB) *MessageService {
	return &MessageService{
		conversationRepo: repository.NewConversationRepository(tx),
		messageRepo:      repository.NewMessageRepository(tx),
		outboxRepo:       repository.NewOutboxRepository(tx),
		access:           s.access,
	}
}

// Append inserts a message and applies the conversation rollup as one atomic
// unit. The conversation row is locked for the duration, so concurrent appends
// serialize and the counter never undercounts.
func (s *MessageService) Append(ctx context.Context, conversationID, senderID uuid.UUID, content string, replyToID uuid.NullUUID) (message.Message, error) {
	content, err := validateContent(content)
	if err != nil {
		return message.Message{}, err
	}

	if s.db == nil {
		return s.appendDirect(ctx, conversationID, senderID, content, replyToID)
	}
	var out message.Message
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		msg, err := s.withTx(tx).appendDirect(ctx, conversationID, senderID, content, replyToID)
		if err != nil {
			return err
		}
		out = msg
		return nil
	})
	if err != nil {
		return message.Message{}, err
	}
	return out, nil
}

func (s *MessageService) appendDirect(ctx context.Context, conversationID, senderID uuid.UUID, content string, replyToID uuid.NullUUID) (message.Message, error) {
	conv, err := s.conversationRepo.GetByIDForUpdate(ctx, conversationID)
	if err != nil {
		return message.Message{}, err
	}
	if !conv.IsParticipant(senderID) {
		return message.Message{}, naebak_errors.ErrNotParticipant
	}
	if conv.IsClosed {
		return message.Message{}, naebak_errors.ErrConversationClosed
	}
	if replyToID.Valid {
		target, err := s.messageRepo.GetByID(ctx, replyToID.UUID)
		if err != nil {
			return message.Message{}, err
		}
		if target.ConversationID != conversationID {
			return message.Message{}, naebak_errors.ErrInvalidReply
		}
	}

	msg := message.Message{
		ID:             uuid.New(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
		ReplyToID:      replyToID,
		CreatedAt:      time.Now(),
	}
	if err := s.messageRepo.Create(ctx, &msg); err != nil {
		return message.Message{}, err
	}
	if err := s.conversationRepo.ApplyMessageRollup(ctx, conversationID, msg.CreatedAt, senderID); err != nil {
		return message.Message{}, err
	}

	if err := writeOutbox(ctx, s.outboxRepo, events.TypeMessageAppended, "conversation", conversationID, MessageAppendedPayload{
		MessageID:      msg.ID,
		ConversationID: conversationID,
		SenderID:       senderID,
		RecipientID:    conv.OtherParticipant(senderID),
		Preview:        preview(content),
		CreatedAt:      msg.CreatedAt,
	}); err != nil {
		return message.Message{}, err
	}
	return msg, nil
}

// MarkRead flips one message to read on behalf of its recipient. Returns false
// when the message was already read; read_at keeps its original value then.
func (s *MessageService) MarkRead(ctx context.Context, messageID, actorID uuid.UUID) (bool, error) {
	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return false, err
	}
	// Read is terminal, so a repeat call is a no-op for anyone, sender included.
	if msg.IsRead {
		return false, nil
	}
	if msg.SenderID == actorID {
		return false, naebak_errors.ErrSelfMarkForbidden
	}
	if s.access != nil {
		if _, err := s.access.EnsureParticipant(ctx, msg.ConversationID, actorID); err != nil {
			return false, err
		}
	}
	return s.messageRepo.MarkRead(ctx, messageID, time.Now())
}

// MarkConversationRead flips every unread message in the conversation that the
// actor did not send, in one set-based update. Returns the number flipped.
func (s *MessageService) MarkConversationRead(ctx context.Context, conversationID, actorID uuid.UUID) (int64, error) {
	if s.access != nil {
		if _, err := s.access.EnsureParticipant(ctx, conversationID, actorID); err != nil {
			return 0, err
		}
	}
	return s.messageRepo.MarkConversationRead(ctx, conversationID, actorID, time.Now())
}

func (s *MessageService) ListConversationMessages(ctx context.Context, conversationID, viewerID uuid.UUID, page, limit int) ([]message.Message, int64, error) {
	if s.access != nil {
		if _, err := s.access.EnsureParticipant(ctx, conversationID, viewerID); err != nil {
			return nil, 0, err
		}
	}
	if limit <= 0 {
		limit = 50
	}
	return s.messageRepo.ListByConversation(ctx, conversationID, page, limit)
}

// UnreadTotalFor counts the user's unread messages across every conversation
// they participate in.
func (s *MessageService) UnreadTotalFor(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.messageRepo.CountUnreadForUser(ctx, userID)
}
