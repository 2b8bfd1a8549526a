package proxy

import (
	"context"

	"naebak-messaging/internal/domain/conversation"
	"naebak-messaging/internal/domain/profile"
	"naebak-messaging/internal/repository"
	naebak_errors "naebak-messaging/pkg/errors"

	"github.com/google/uuid"
)

// AccessControl centralizes the participant and role checks the services share.
type AccessControl struct {
	profileRepo      repository.ProfileRepository
	conversationRepo repository.ConversationRepository
}

func NewAccessControl(profileRepo repository.ProfileRepository, conversationRepo repository.ConversationRepository) *AccessControl {
	return &AccessControl{profileRepo: profileRepo, conversationRepo: conversationRepo}
}

// EnsureParticipant returns the conversation when userID is one of its two
// participants, ErrNotParticipant otherwise.
func (a *AccessControl) EnsureParticipant(ctx context.Context, conversationID, userID uuid.UUID) (conversation.Conversation, error) {
	conv, err := a.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return conversation.Conversation{}, err
	}
	if !conv.IsParticipant(userID) {
		return conversation.Conversation{}, naebak_errors.ErrNotParticipant
	}
	return conv, nil
}

// EnsureCitizen resolves the profile for userID and rejects non-citizens.
func (a *AccessControl) EnsureCitizen(ctx context.Context, userID uuid.UUID) (profile.Profile, error) {
	p, err := a.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return profile.Profile{}, err
	}
	if p.Role != profile.RoleCitizen {
		return profile.Profile{}, naebak_errors.ErrNotCitizen
	}
	return p, nil
}

// EnsureAdmin rejects users whose profile role is not admin.
func (a *AccessControl) EnsureAdmin(ctx context.Context, userID uuid.UUID) (profile.Profile, error) {
	p, err := a.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return profile.Profile{}, err
	}
	if p.Role != profile.RoleAdmin {
		return profile.Profile{}, naebak_errors.ErrInvalidRole
	}
	return p, nil
}
