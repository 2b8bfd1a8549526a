package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"naebak-messaging/config"
	"naebak-messaging/internal/app"
	"naebak-messaging/pkg/database"
	"naebak-messaging/pkg/logger"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.LoadConfig()

	mode := logger.DevelopmentMode
	if cfg.AppMode == "release" {
		mode = logger.ProductionMode
		gin.SetMode(gin.ReleaseMode)
	}
	appLogger := logger.New(mode)
	logger.SetGlobalLogger(appLogger)

	database.Connect(cfg)
	defer database.Close()
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to apply GORM migrations: %v", err)
	}

	redisClient := goredis.NewClient(&goredis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	application := app.New(cfg, database.DB, redisClient, appLogger)
	if err := application.Start(ctx); err != nil {
		log.Fatalf("Failed to start background workers: %v", err)
	}

	r := gin.Default()
	r.GET("/health", func(c *gin.Context) {
		if err := database.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "down", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	appLogger.Infof("Starting server on port %s", cfg.AppPort)
	if err := r.Run(fmt.Sprintf(":%s", cfg.AppPort)); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
