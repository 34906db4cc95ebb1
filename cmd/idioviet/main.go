package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"idioviet/internal/catalog"
	"idioviet/internal/config"
	"idioviet/internal/handler"
	"idioviet/internal/httpapi"
	"idioviet/internal/metrics"
	"idioviet/internal/middleware"
	"idioviet/internal/recorder"
	"idioviet/internal/repository/postgres"
	"idioviet/internal/service"
	"idioviet/internal/speech"
	"idioviet/internal/speech/googletranslate"

	"github.com/golang-migrate/migrate/v4"
	postgresdb "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	tele "gopkg.in/telebot.v3"
)

const (
	sessionSweepInterval = time.Minute
	cleanupInterval      = 24 * time.Hour
	shutdownTimeout      = 15 * time.Second
)

func main() {
	// Initialize logger
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	logCfg := zap.NewProductionConfig()
	logCfg.Level = level
	logger, err := logCfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting idioViet")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	if lvl, err := zapcore.ParseLevel(cfg.LogLevel); err != nil {
		logger.Warn("Unknown log level, keeping info", zap.String("level", cfg.LogLevel))
	} else {
		level.SetLevel(lvl)
	}

	logger.Info("Configuration loaded successfully")

	idioms, err := catalog.Load()
	if err != nil {
		logger.Fatal("Failed to load idiom catalog", zap.Error(err))
	}

	logger.Info("Idiom catalog loaded", zap.Int("idioms", idioms.Len()))

	// Connect to database with retries
	db, err := connectDatabase(cfg.DSN(), logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connection established")

	// Run migrations
	if err := runMigrations(db, cfg.Database.MigrationsPath, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	logger.Info("Database migrations completed")

	m := metrics.NewMetrics()

	// Speech chain: cache -> circuit breaker -> upstream
	upstream := googletranslate.New(
		googletranslate.WithBaseURL(cfg.TTS.BaseURL),
		googletranslate.WithLanguage(cfg.TTS.Language),
		googletranslate.WithTimeout(cfg.TTS.Timeout),
		googletranslate.WithMetrics(m),
	)
	breaker := speech.NewBreaker(upstream, speech.BreakerConfig{}, logger)
	breaker.OnReject(m.RecordTTSCircuitOpen)
	tts := speech.NewCache(breaker, cfg.TTS.CacheSize, cfg.TTS.CacheTTL, m)

	// Initialize repositories
	learnerRepo := postgres.NewLearnerRepo(db)
	savedRepo := postgres.NewSavedIdiomRepo(db)
	recordingRepo := postgres.NewRecordingRepo(db, cfg.Recording.RetentionDays)

	// Initialize services
	var encourager service.Encourager = service.NewStaticEncourager()
	if cfg.OpenAI.APIKey != "" {
		encourager = service.NewOpenAIEncourager(cfg.OpenAI.APIKey, cfg.OpenAI.Model, encourager, logger)
		logger.Info("AI encouragement enabled", zap.String("model", cfg.OpenAI.Model))
	}

	rec := recorder.New(cfg.Recording.MaxBytes, m)
	learnerService := service.NewLearnerService(learnerRepo)
	savedService := service.NewSavedService(savedRepo, idioms)
	recordingService := service.NewRecordingService(recordingRepo, rec, idioms, encourager, m, logger)
	cleanupService := service.NewCleanupService(recordingRepo, rec, cfg.Recording.RetentionDays, cfg.Recording.MaxAge, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.TTS.Warmup {
		go func() {
			if _, err := speech.Warmup(ctx, tts, idioms.Texts(), cfg.TTS.WarmupWorkers, logger); err != nil {
				logger.Warn("TTS warm-up interrupted", zap.Error(err))
			}
		}()
	}

	// Start cleanup job in background
	go runCleanupJob(ctx, cleanupService, logger)

	router := httpapi.NewRouter(httpapi.Deps{
		Catalog:    idioms,
		TTS:        tts,
		Saved:      savedService,
		Recordings: recordingService,
		Learners:   learnerService,
		Sessions:   middleware.NewSessionStore(cfg.Session.Secret, cfg.Session.Secure),
		Metrics:    m,
		Logger:     logger,

		AllowedOrigins:    cfg.Session.AllowedOrigins,
		MaxRecordingBytes: cfg.Recording.MaxBytes,
	})
	server := httpapi.NewServer(cfg.HTTPAddr, router, logger)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	// Initialize Telegram bot
	var bot *tele.Bot
	if cfg.BotEnabled() {
		bot, err = tele.NewBot(tele.Settings{
			Token:  cfg.BotToken,
			Poller: &tele.LongPoller{Timeout: 10 * time.Second},
			OnError: func(err error, c tele.Context) {
				logger.Error("Telegram handler failed", zap.Error(err))
			},
		})
		if err != nil {
			logger.Fatal("Failed to create bot", zap.Error(err))
		}

		bot.Use(middleware.TelegramLearner(learnerService, logger))
		h := handler.NewHandler(bot, idioms, savedService, recordingService, tts, int64(cfg.Recording.MaxBytes), logger)
		h.RegisterHandlers()

		go func() {
			logger.Info("Bot started successfully")
			bot.Start()
		}()
	} else {
		logger.Info("BOT_TOKEN not set, Telegram bot disabled")
	}

	// Wait for interrupt signal or server failure
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		logger.Info("Shutdown signal received, stopping...")
	case err := <-serverErr:
		if err != nil {
			logger.Error("HTTP server failed", zap.Error(err))
		}
	}

	// Graceful shutdown
	if bot != nil {
		bot.Stop()
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shut down HTTP server", zap.Error(err))
	}

	logger.Info("Stopped gracefully")
}

// connectDatabase connects to PostgreSQL with retries
func connectDatabase(dsn string, logger *zap.Logger) (*sql.DB, error) {
	var db *sql.DB
	var err error

	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		db, err = sql.Open("postgres", dsn)
		if err != nil {
			logger.Warn("Failed to open database connection",
				zap.Int("attempt", i+1),
				zap.Error(err),
			)
			time.Sleep(retryDelay)
			continue
		}

		if err = db.Ping(); err != nil {
			logger.Warn("Failed to ping database",
				zap.Int("attempt", i+1),
				zap.Error(err),
			)
			db.Close()
			time.Sleep(retryDelay)
			continue
		}

		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		return db, nil
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
}

// runMigrations applies pending migrations from sourceURL
func runMigrations(db *sql.DB, sourceURL string, logger *zap.Logger) error {
	driver, err := postgresdb.WithInstance(db, &postgresdb.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(sourceURL, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	err = m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		logger.Info("No new migrations to apply")
	case err != nil:
		return fmt.Errorf("failed to run migrations: %w", err)
	default:
		logger.Info("Migrations applied successfully")
	}

	return nil
}

// runCleanupJob expires abandoned recording sessions and removes old attempts
func runCleanupJob(ctx context.Context, cleanupService *service.CleanupService, logger *zap.Logger) {
	// Run cleanup once at startup
	if err := cleanupService.CleanupOldData(); err != nil {
		logger.Error("Failed to run initial cleanup", zap.Error(err))
	}

	sweep := time.NewTicker(sessionSweepInterval)
	defer sweep.Stop()
	daily := time.NewTicker(cleanupInterval)
	defer daily.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Cleanup job stopped")
			return
		case <-sweep.C:
			cleanupService.ExpireSessions()
		case <-daily.C:
			logger.Info("Running scheduled cleanup")
			if err := cleanupService.CleanupOldData(); err != nil {
				logger.Error("Failed to run scheduled cleanup", zap.Error(err))
			}
		}
	}
}
