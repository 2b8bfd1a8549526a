package services

import (
	"context"
	"database/sql"
	"regexp"
	"time"

	"naebak-messaging/internal/domain/profile"
	"naebak-messaging/internal/repository"
	naebak_errors "naebak-messaging/pkg/errors"

	"github.com/google/uuid"
)

var phonePattern = regexp.MustCompile(`^\d{10,15}$`)

type ProfileService struct {
	profileRepo repository.ProfileRepository
}

func NewProfileService(profileRepo repository.ProfileRepository) *ProfileService {
	return &ProfileService{profileRepo: profileRepo}
}

type CreateProfileInput struct {
	UserID           uuid.UUID
	Role             profile.Role
	Phone            string
	Governorate      string
	District         string
	RepresentativeID uuid.NullUUID
}

func (s *ProfileService) Create(ctx context.Context, in CreateProfileInput) (profile.Profile, error) {
	if !in.Role.Valid() {
		return profile.Profile{}, naebak_errors.ErrInvalidRole
	}
	if in.Phone != "" && !phonePattern.MatchString(in.Phone) {
		return profile.Profile{}, naebak_errors.ErrInvalidPhone
	}
	if in.RepresentativeID.Valid && in.Role != profile.RoleRepresentative {
		return profile.Profile{}, naebak_errors.ErrInvalidInput
	}

	now := time.Now()
	p := profile.Profile{
		ID:                 uuid.New(),
		UserID:             in.UserID,
		Role:               in.Role,
		RepresentativeID:   in.RepresentativeID,
		EmailNotifications: true,
		SmsNotifications:   false,
		IsActive:           true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if in.Phone != "" {
		p.Phone = sql.NullString{String: in.Phone, Valid: true}
	}
	if in.Governorate != "" {
		p.Governorate = sql.NullString{String: in.Governorate, Valid: true}
	}
	if in.District != "" {
		p.District = sql.NullString{String: in.District, Valid: true}
	}
	if err := s.profileRepo.Create(ctx, &p); err != nil {
		return profile.Profile{}, err
	}
	return p, nil
}

func (s *ProfileService) GetByUserID(ctx context.Context, userID uuid.UUID) (profile.Profile, error) {
	return s.profileRepo.GetByUserID(ctx, userID)
}

func (s *ProfileService) GetByID(ctx context.Context, id uuid.UUID) (profile.Profile, error) {
	return s.profileRepo.GetByID(ctx, id)
}

// UpdatePreferences changes the notification toggles only; role is fixed for
// the lifetime of the profile.
func (s *ProfileService) UpdatePreferences(ctx context.Context, userID uuid.UUID, email, sms bool) (profile.Profile, error) {
	p, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return profile.Profile{}, err
	}
	p.EmailNotifications = email
	p.SmsNotifications = sms
	p.UpdatedAt = time.Now()
	if err := s.profileRepo.Update(ctx, p); err != nil {
		return profile.Profile{}, err
	}
	return p, nil
}

func (s *ProfileService) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.profileRepo.Deactivate(ctx, id)
}
