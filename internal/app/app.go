package app

import (
	"context"
	"fmt"

	"naebak-messaging/config"
	"naebak-messaging/internal/directory"
	"naebak-messaging/internal/outbox"
	"naebak-messaging/internal/proxy"
	"naebak-messaging/internal/repository"
	"naebak-messaging/internal/services"
	"naebak-messaging/pkg/events"
	"naebak-messaging/pkg/logger"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// App wires repositories, services and background workers. The transport layer
// that embeds this service calls the services directly.
type App struct {
	Profiles      *services.ProfileService
	Conversations *services.ConversationService
	Messages      *services.MessageService
	Reports       *services.ReportService
	Notifications *services.NotificationService
	Stats         *services.StatsService

	Broker *events.RedisBroker
	Runner *outbox.Runner
}

func New(cfg *config.Config, db *gorm.DB, redisClient *goredis.Client, log *logger.Logger) *App {
	profileRepo := repository.NewProfileRepository(db)
	conversationRepo := repository.NewConversationRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	reportRepo := repository.NewReportRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	statsRepo := repository.NewStatsRepository(db)
	outboxRepo := repository.NewOutboxRepository(db)

	access := proxy.NewAccessControl(profileRepo, conversationRepo)
	gateway := directory.NewGateway(
		cfg.DirectoryBaseURL,
		cfg.DirectoryTimeout,
		cfg.DirectoryCacheTTL,
		directory.NewRedisCache(redisClient),
		log,
	)

	broker := events.NewRedisBroker(redisClient, log)

	return &App{
		Profiles:      services.NewProfileService(profileRepo),
		Conversations: services.NewConversationService(db, conversationRepo, messageRepo, outboxRepo, access, gateway),
		Messages:      services.NewMessageService(db, conversationRepo, messageRepo, outboxRepo, access),
		Reports:       services.NewReportService(db, reportRepo, messageRepo, conversationRepo, outboxRepo, access),
		Notifications: services.NewNotificationService(notificationRepo, log),
		Stats:         services.NewStatsService(conversationRepo, messageRepo, statsRepo),
		Broker:        broker,
		Runner:        outbox.NewRunner(outbox.NewProcessor(outboxRepo, broker, cfg.OutboxBatchSize, cfg.OutboxInterval, cfg.OutboxMaxRetries)),
	}
}

// Start launches the outbox processor and the notification and stats
// projectors. They stop when ctx is cancelled.
func (a *App) Start(ctx context.Context) error {
	if err := a.Broker.SubscribePattern(ctx, "channel:*", a.Notifications.HandleEvent); err != nil {
		return fmt.Errorf("start notification projector: %w", err)
	}
	if err := a.Broker.SubscribePattern(ctx, "channel:*", a.Stats.HandleEvent); err != nil {
		return fmt.Errorf("start stats projector: %w", err)
	}
	a.Runner.Start(ctx)
	return nil
}
