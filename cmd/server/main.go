package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/pickpost/backend/config"
	httpDelivery "github.com/pickpost/backend/internal/delivery/http"
	"github.com/pickpost/backend/internal/domain"
	"github.com/pickpost/backend/internal/infrastructure/copywriter"
	"github.com/pickpost/backend/internal/infrastructure/mailer"
	"github.com/pickpost/backend/internal/infrastructure/store"
	"github.com/pickpost/backend/internal/usecase"
)

func main() {
	// Local .env is optional; real deployments set env vars directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Server.Environment)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting pickpost backend",
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
		zap.String("store", cfg.Store.Type))

	// Draft persistence
	var repo domain.DraftRepository
	switch cfg.Store.Type {
	case "sqlite":
		sqliteStore, err := store.NewSQLiteStore(cfg.Store.Path)
		if err != nil {
			logger.Fatal("failed to open draft store", zap.Error(err))
		}
		defer sqliteStore.Close()
		repo = sqliteStore
		logger.Info("sqlite draft store ready", zap.String("path", cfg.Store.Path))
	default:
		repo = store.NewMemoryStore()
		logger.Info("in-memory draft store ready (drafts will not survive restarts)")
	}

	// Mail transport
	var sender domain.Sender
	if cfg.SMTP.Enabled {
		sender = mailer.NewSMTPSender(mailer.SMTPConfig{
			Host:           cfg.SMTP.Host,
			Port:           cfg.SMTP.Port,
			Username:       cfg.SMTP.Username,
			Password:       cfg.SMTP.Password,
			From:           cfg.SMTP.From,
			FromName:       cfg.SMTP.FromName,
			SendsPerMinute: cfg.SMTP.SendsPerMinute,
		})
		logger.Info("smtp transport configured",
			zap.String("host", cfg.SMTP.Host),
			zap.Int("port", cfg.SMTP.Port))
	} else {
		logger.Warn("smtp disabled: drafts can be generated and exported but not sent")
	}

	// Optional AI copywriter
	var writer domain.CopyWriter
	if cfg.OpenAI.Enabled {
		writer = copywriter.NewOpenAIWriter(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
		logger.Info("ai copywriter enabled", zap.String("model", cfg.OpenAI.Model))
	}

	matcher := usecase.NewMatcherService(usecase.MatcherConfig{
		MaxRecommendations: cfg.Limits.DefaultMaxRecs,
		Logger:             logger,
	})
	drafts := usecase.NewDraftService(matcher, repo, sender, writer, logger)

	handler := httpDelivery.NewHandler(drafts, cfg.Limits.DefaultMaxRecs, cfg.Limits.MaxUploadBytes, logger)
	router := httpDelivery.SetupRouter(cfg, handler)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	logger.Info("server listening", zap.String("addr", addr))

	if err := router.Run(addr); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

// newLogger picks a zap profile by environment.
func newLogger(environment string) (*zap.Logger, error) {
	if environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
