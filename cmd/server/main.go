package main

import (
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/traindesk/assessment-engine/internal/cache"
	"github.com/traindesk/assessment-engine/internal/config"
	"github.com/traindesk/assessment-engine/internal/events"
	"github.com/traindesk/assessment-engine/internal/handlers"
	"github.com/traindesk/assessment-engine/internal/models"
	"github.com/traindesk/assessment-engine/internal/repositories/postgres"
	"github.com/traindesk/assessment-engine/internal/services"
	"github.com/traindesk/assessment-engine/internal/utils"
	"github.com/traindesk/assessment-engine/internal/validator"
	"github.com/traindesk/assessment-engine/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	var logger utils.Logger
	if cfg.Environment == "production" {
		logger = utils.NewDefaultLogger()
	} else {
		logger = utils.NewDevelopmentLogger()
	}
	slogLogger := utils.ToSlogLogger(logger)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.LogError(err, "Failed to connect to database")
		os.Exit(1)
	}
	if err := db.AutoMigrate(&models.Quiz{}, &models.Question{}, &models.Attempt{}, &models.Answer{}); err != nil {
		logger.LogError(err, "Failed to migrate database schema")
		os.Exit(1)
	}

	var progressCache cache.ProgressCache = cache.NoopProgressCache{}
	if cfg.RedisURL != "" {
		redisClient, err := pkg.NewRedisClient(cfg)
		if err != nil {
			logger.Warn("Redis unavailable, progress caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			progressCache = cache.NewRedisProgressCache(redisClient, slogLogger, 0)
		}
	}

	var publisher events.EventPublisher
	if cfg.Environment == "development" {
		publisher = events.NewMockEventPublisher(slogLogger)
	} else {
		kafkaPublisher, err := events.NewKafkaEventPublisher(events.PublisherConfig{
			KafkaBrokers: cfg.KafkaBrokers,
			TopicName:    cfg.EventTopic,
			Logger:       slogLogger,
		})
		if err != nil {
			logger.LogError(err, "Failed to create event publisher")
			os.Exit(1)
		}
		publisher = kafkaPublisher
	}
	defer publisher.Close()

	v := validator.New()
	repo := postgres.NewRepository(db)

	attemptService := services.NewAttemptService(repo, progressCache, publisher, slogLogger, v)
	gradingService := services.NewGradingService(repo, progressCache, publisher, slogLogger, v)
	exportService := services.NewExportService(repo, slogLogger)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))

	handlerManager := handlers.NewHandlerManager(attemptService, gradingService, exportService, logger)
	handlerManager.SetupRoutes(router)

	logger.Info("Starting assessment engine", "port", cfg.Port, "environment", cfg.Environment)
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.LogError(err, "Server stopped")
		os.Exit(1)
	}
}
