package database

import (
	"naebak-messaging/internal/domain/conversation"
	"naebak-messaging/internal/domain/message"
	"naebak-messaging/internal/domain/notification"
	"naebak-messaging/internal/domain/outbox"
	"naebak-messaging/internal/domain/profile"
	"naebak-messaging/internal/domain/report"
	"naebak-messaging/internal/domain/stats"
)

// Migrate applies the GORM auto-migrations for every table the service owns.
func Migrate() error {
	return DB.AutoMigrate(
		&profile.Profile{},
		&conversation.Conversation{},
		&message.Message{},
		&report.Report{},
		&notification.Notification{},
		&stats.DailyStatistics{},
		&outbox.OutboxEvent{},
	)
}

func Close() {
	if DB == nil {
		return
	}
	if sqlDB, err := DB.DB(); err == nil {
		sqlDB.Close()
	}
}

func Ping() error {
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func TableExists(name string) bool {
	return DB.Migrator().HasTable(name)
}

func TableCount(name string) (int64, error) {
	var count int64
	err := DB.Table(name).Count(&count).Error
	return count, err
}
