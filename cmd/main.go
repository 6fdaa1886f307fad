package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/cafecanastra/conteudo/internal/api"
	"github.com/cafecanastra/conteudo/internal/cache"
	"github.com/cafecanastra/conteudo/internal/config"
	"github.com/cafecanastra/conteudo/internal/generator"
	"github.com/cafecanastra/conteudo/internal/ingest"
	"github.com/cafecanastra/conteudo/internal/logger"
	"github.com/cafecanastra/conteudo/internal/media"
	"github.com/cafecanastra/conteudo/internal/middleware"
	"github.com/cafecanastra/conteudo/internal/normalizer"
	"github.com/cafecanastra/conteudo/internal/schedule"
	"github.com/cafecanastra/conteudo/internal/storage"
)

func main() {
	cfg := config.Load()

	logger.Init(logger.Config{
		Level:  cfg.LogLevel,
		Output: "stdout",
		Pretty: cfg.Env == "development",
	})

	log := logger.Get()
	log.Info().Msg("Starting application...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Recent-posts cache, optional.
	var recent cache.RecentCache
	if cfg.RedisURL != "" {
		redisClient, err := cache.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, recent-posts cache disabled")
		} else {
			recent = redisClient
			defer redisClient.Close()
		}
	}

	// Durable store; runs degraded without DATABASE_URL.
	store, err := storage.NewPostgresStore(ctx, cfg.DatabaseURL, recent, cfg.RecentCacheTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Postgres")
	}
	defer store.Close()

	// Schedule gate with background reconciliation of its local cache.
	scheduleMgr := schedule.NewManager(store)
	scheduleMgr.StartReconciler(ctx, cfg.ConfigSyncInterval)

	genClient := generator.NewClient(cfg.GeneratorURL, cfg.GeneratorTestURL, cfg.GeneratorTimeout)
	norm := normalizer.New(cfg.SiteBaseURL)
	orch := ingest.NewOrchestrator(store, norm, genClient, scheduleMgr, cfg.CycleDelay)

	uploader, err := media.NewUploader(ctx, cfg.R2Endpoint, cfg.R2AccessKey, cfg.R2SecretKey, cfg.R2Bucket, cfg.R2PublicURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize media uploader")
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.HTTPTimeout,
		WriteTimeout: cfg.HTTPTimeout,
		IdleTimeout:  120 * time.Second,
		ErrorHandler: middleware.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(middleware.RequestLogger())

	handlers := api.NewHandlers(cfg, store, scheduleMgr, orch, uploader)
	api.SetupRoutes(app, handlers, cfg.AdminAPIKey)

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}
