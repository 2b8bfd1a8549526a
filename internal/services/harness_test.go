package services

import (
	"context"
	"time"

	"naebak-messaging/internal/domain/profile"
	"naebak-messaging/internal/proxy"
	"naebak-messaging/internal/repository"

	"github.com/google/uuid"
)

// fixture wires every service over the in-memory repositories; with no db the
// services run their direct paths.
type fixture struct {
	profiles      *repository.MemoryProfileRepository
	conversations *repository.MemoryConversationRepository
	messages      *repository.MemoryMessageRepository
	reports       *repository.MemoryReportRepository
	notifications *repository.MemoryNotificationRepository
	stats         *repository.MemoryStatsRepository
	outbox        *repository.MemoryOutboxRepository

	access *proxy.AccessControl

	profileSvc      *ProfileService
	conversationSvc *ConversationService
	messageSvc      *MessageService
	reportSvc       *ReportService
	notificationSvc *NotificationService
	statsSvc        *StatsService
}

func newFixture() *fixture {
	f := &fixture{
		profiles:      repository.NewMemoryProfileRepository(),
		conversations: repository.NewMemoryConversationRepository(),
		reports:       repository.NewMemoryReportRepository(),
		notifications: repository.NewMemoryNotificationRepository(),
		stats:         repository.NewMemoryStatsRepository(),
		outbox:        repository.NewMemoryOutboxRepository(),
	}
	f.messages = repository.NewMemoryMessageRepository(f.conversations)
	f.access = proxy.NewAccessControl(f.profiles, f.conversations)

	f.profileSvc = NewProfileService(f.profiles)
	f.conversationSvc = NewConversationService(nil, f.conversations, f.messages, f.outbox, f.access, nil)
	f.messageSvc = NewMessageService(nil, f.conversations, f.messages, f.outbox, f.access)
	f.reportSvc = NewReportService(nil, f.reports, f.messages, f.conversations, f.outbox, f.access)
	f.notificationSvc = NewNotificationService(f.notifications, nil)
	f.statsSvc = NewStatsService(f.conversations, f.messages, f.stats)
	return f
}

func (f *fixture) seedProfile(role profile.Role) uuid.UUID {
	userID := uuid.New()
	now := time.Now()
	p := profile.Profile{
		ID:        uuid.New(),
		UserID:    userID,
		Role:      role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := f.profiles.Create(context.Background(), &p); err != nil {
		panic(err)
	}
	return userID
}

func (f *fixture) seedCitizen() uuid.UUID {
	return f.seedProfile(profile.RoleCitizen)
}

func (f *fixture) seedRepresentative() uuid.UUID {
	return f.seedProfile(profile.RoleRepresentative)
}

func (f *fixture) seedAdmin() uuid.UUID {
	return f.seedProfile(profile.RoleAdmin)
}
