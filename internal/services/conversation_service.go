package services

import (
	"context"
	"time"

	"naebak-messaging/internal/directory"
	"naebak-messaging/internal/domain/conversation"
	"naebak-messaging/internal/domain/message"
	"naebak-messaging/internal/proxy"
	"naebak-messaging/internal/repository"
	naebak_errors "naebak-messaging/pkg/errors"
	"naebak-messaging/pkg/events"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const closedSystemMessage = "This conversation has been closed."

type ConversationService struct {
	db               *gorm.DB
	conversationRepo repository.ConversationRepository
	messageRepo      repository.MessageRepository
	outboxRepo       repository.OutboxRepository
	access           *proxy.AccessControl
	directory        *directory.Gateway
}

func NewConversationService(db *gorm.DB, conversationRepo repository.ConversationRepository, messageRepo repository.MessageRepository, outboxRepo repository.OutboxRepository, access *proxy.AccessControl, gateway *directory.Gateway) *ConversationService {
	return &ConversationService{
		db:               db,
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
		outboxRepo:       outboxRepo,
		access:           access,
		directory:        gateway,
	}
}

// withTx rebinds the repositories to the transaction handle. The access checks
// intentionally stay on the service's own repos; they only read.
func (s *ConversationService) withTx(tx *gorm.DB) *ConversationService {
	return &ConversationService{
		conversationRepo: repository.NewConversationRepository(tx),
		messageRepo:      repository.NewMessageRepository(tx),
		outboxRepo:       repository.NewOutboxRepository(tx),
		access:           s.access,
		directory:        s.directory,
	}
}

// Create opens a conversation between a citizen and a representative with its
// first message. The conversation row, the message, the rollup and the outbox
// event commit together or not at all.
func (s *ConversationService) Create(ctx context.Context, citizenID, representativeID uuid.UUID, subject, firstMessage string) (conversation.Conversation, error) {
	subject, err := validateSubject(subject)
	if err != nil {
		return conversation.Conversation{}, err
	}
	firstMessage, err = validateContent(firstMessage)
	if err != nil {
		return conversation.Conversation{}, err
	}
	if citizenID == representativeID {
		return conversation.Conversation{}, naebak_errors.ErrInvalidParticipants
	}
	if s.access != nil {
		if _, err := s.access.EnsureCitizen(ctx, citizenID); err != nil {
			return conversation.Conversation{}, err
		}
	}
	if s.directory != nil {
		ok, err := s.directory.Exists(ctx, representativeID)
		if err != nil {
			return conversation.Conversation{}, err
		}
		if !ok {
			return conversation.Conversation{}, naebak_errors.ErrUnknownRepresentative
		}
	}

	if s.db == nil {
		return s.createDirect(ctx, citizenID, representativeID, subject, firstMessage)
	}
	var out conversation.Conversation
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		conv, err := s.withTx(tx).createDirect(ctx, citizenID, representativeID, subject, firstMessage)
		if err != nil {
			return err
		}
		out = conv
		return nil
	})
	if err != nil {
		return conversation.Conversation{}, err
	}
	return out, nil
}

func (s *ConversationService) createDirect(ctx context.Context, citizenID, representativeID uuid.UUID, subject, firstMessage string) (conversation.Conversation, error) {
	now := time.Now()
	conv := conversation.Conversation{
		ID:               uuid.New(),
		CitizenID:        citizenID,
		RepresentativeID: representativeID,
		Subject:          subject,
		TotalMessages:    0,
		LastMessageAt:    now,
		IsActive:         true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.conversationRepo.Create(ctx, &conv); err != nil {
		return conversation.Conversation{}, err
	}

	msg := message.Message{
		ID:             uuid.New(),
		ConversationID: conv.ID,
		SenderID:       citizenID,
		Content:        firstMessage,
		CreatedAt:      now,
	}
	if err := s.messageRepo.Create(ctx, &msg); err != nil {
		return conversation.Conversation{}, err
	}
	if err := s.conversationRepo.ApplyMessageRollup(ctx, conv.ID, msg.CreatedAt, msg.SenderID); err != nil {
		return conversation.Conversation{}, err
	}

	if err := writeOutbox(ctx, s.outboxRepo, events.TypeConversationCreated, "conversation", conv.ID, ConversationCreatedPayload{
		ConversationID:   conv.ID,
		CitizenID:        citizenID,
		RepresentativeID: representativeID,
		Subject:          subject,
		CreatedAt:        now,
	}); err != nil {
		return conversation.Conversation{}, err
	}
	if err := writeOutbox(ctx, s.outboxRepo, events.TypeMessageAppended, "conversation", conv.ID, MessageAppendedPayload{
		MessageID:      msg.ID,
		ConversationID: conv.ID,
		SenderID:       citizenID,
		RecipientID:    representativeID,
		Preview:        preview(firstMessage),
		CreatedAt:      msg.CreatedAt,
	}); err != nil {
		return conversation.Conversation{}, err
	}

	return s.conversationRepo.GetByID(ctx, conv.ID)
}

// Close transitions the conversation to closed and appends the system message
// recording it. Closing is allowed for either participant.
func (s *ConversationService) Close(ctx context.Context, conversationID, actorID uuid.UUID) (conversation.Conversation, error) {
	if s.db == nil {
		return s.closeDirect(ctx, conversationID, actorID)
	}
	var out conversation.Conversation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		conv, err := s.withTx(tx).closeDirect(ctx, conversationID, actorID)
		if err != nil {
			return err
		}
		out = conv
		return nil
	})
	if err != nil {
		return conversation.Conversation{}, err
	}
	return out, nil
}

func (s *ConversationService) closeDirect(ctx context.Context, conversationID, actorID uuid.UUID) (conversation.Conversation, error) {
	conv, err := s.conversationRepo.GetByIDForUpdate(ctx, conversationID)
	if err != nil {
		return conversation.Conversation{}, err
	}
	if !conv.IsParticipant(actorID) {
		return conversation.Conversation{}, naebak_errors.ErrNotParticipant
	}
	if conv.IsClosed {
		return conversation.Conversation{}, naebak_errors.ErrAlreadyClosed
	}

	now := time.Now()
	conv.IsClosed = true
	conv.ClosedAt.Time = now
	conv.ClosedAt.Valid = true
	conv.ClosedBy = uuid.NullUUID{UUID: actorID, Valid: true}
	conv.UpdatedAt = now
	if err := s.conversationRepo.Update(ctx, conv); err != nil {
		return conversation.Conversation{}, err
	}

	// The system message is the one append allowed into a closed conversation.
	msg := message.Message{
		ID:              uuid.New(),
		ConversationID:  conv.ID,
		SenderID:        actorID,
		Content:         closedSystemMessage,
		IsSystemMessage: true,
		CreatedAt:       now,
	}
	if err := s.messageRepo.Create(ctx, &msg); err != nil {
		return conversation.Conversation{}, err
	}
	if err := s.conversationRepo.ApplyMessageRollup(ctx, conv.ID, msg.CreatedAt, msg.SenderID); err != nil {
		return conversation.Conversation{}, err
	}

	if err := writeOutbox(ctx, s.outboxRepo, events.TypeConversationClosed, "conversation", conv.ID, ConversationClosedPayload{
		ConversationID:   conv.ID,
		CitizenID:        conv.CitizenID,
		RepresentativeID: conv.RepresentativeID,
		ClosedBy:         actorID,
		ClosedAt:         now,
	}); err != nil {
		return conversation.Conversation{}, err
	}

	return s.conversationRepo.GetByID(ctx, conv.ID)
}

// Rate records the citizen's rating of a closed conversation. Re-rating
// overwrites the previous value.
func (s *ConversationService) Rate(ctx context.Context, conversationID, actorID uuid.UUID, rating int16, feedback string) error {
	if rating < 1 || rating > 5 {
		return naebak_errors.ErrInvalidRating
	}
	conv, err := s.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return err
	}
	if conv.CitizenID != actorID {
		return naebak_errors.ErrNotCitizen
	}
	if !conv.IsClosed {
		return naebak_errors.ErrConversationNotClosed
	}
	return s.conversationRepo.SetRating(ctx, conversationID, rating, feedback)
}

func (s *ConversationService) GetByID(ctx context.Context, conversationID, viewerID uuid.UUID) (conversation.Conversation, error) {
	if s.access != nil {
		return s.access.EnsureParticipant(ctx, conversationID, viewerID)
	}
	return s.conversationRepo.GetByID(ctx, conversationID)
}

// UnreadCountFor counts the viewer's unread messages in one conversation, i.e.
// unread messages sent by the other participant.
func (s *ConversationService) UnreadCountFor(ctx context.Context, conversationID, viewerID uuid.UUID) (int64, error) {
	conv, err := s.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return 0, err
	}
	if !conv.IsParticipant(viewerID) {
		return 0, naebak_errors.ErrNotParticipant
	}
	return s.messageRepo.CountUnreadFromSender(ctx, conversationID, conv.OtherParticipant(viewerID))
}

func (s *ConversationService) ListForUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]conversation.Conversation, int64, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.conversationRepo.ListForUser(ctx, userID, page, limit)
}

func (s *ConversationService) ListForUserByState(ctx context.Context, userID uuid.UUID, closed bool, page, limit int) ([]conversation.Conversation, int64, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.conversationRepo.ListForUserByState(ctx, userID, closed, page, limit)
}
