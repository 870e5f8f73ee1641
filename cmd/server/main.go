package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/custor/portal-api/internal/config"
	"github.com/custor/portal-api/internal/database"
	"github.com/custor/portal-api/internal/handlers"
	"github.com/custor/portal-api/internal/job"
	"github.com/custor/portal-api/internal/mailer"
	"github.com/custor/portal-api/internal/metrics"
	"github.com/custor/portal-api/internal/repository"
	"github.com/custor/portal-api/internal/router"
	"github.com/custor/portal-api/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	if err := handlers.RegisterValidators(); err != nil {
		return fmt.Errorf("failed to register validators: %w", err)
	}

	// Connect to database
	db, err := database.Open(cfg, logger)
	if err != nil {
		return err
	}

	// Run migrations
	if err := database.Migrate(db, logger); err != nil {
		return err
	}
	if err := database.SeedRoles(db); err != nil {
		return err
	}
	if err := database.SeedAdmin(db, cfg.Admin, logger); err != nil {
		return err
	}

	// Redis only caches unread counts, so the service runs without it.
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Warn("redis unavailable, unread counts will not be cached", zap.Error(err))
		} else {
			logger.Info("redis connected", zap.String("addr", cfg.Redis.Addr))
		}
	}

	blobs, err := storage.New(context.Background(), cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	appMetrics := metrics.New(logger)

	engine := router.Setup(router.Deps{
		Config:  cfg,
		DB:      db,
		Redis:   redisClient,
		Storage: blobs,
		Mailer:  mailer.New(cfg.Email, logger),
		Metrics: appMetrics,
		Logger:  logger,
	})

	scheduler := job.NewScheduler(logger)
	cleanup := job.NewNotificationCleanupJob(
		repository.NewStore(db).Notifications(),
		cfg.Cleanup.RetentionDays,
		appMetrics,
		logger,
	)
	if err := scheduler.Register(cfg.Cleanup.Schedule, cleanup); err != nil {
		return fmt.Errorf("failed to schedule notification cleanup: %w", err)
	}
	scheduler.Start()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
	case sig := <-quit:
		logger.Info("shutting down server", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	scheduler.Stop(ctx)
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server exited")
	return nil
}

func initLogger(level string) (*zap.Logger, error) {
	zapLevel, err := zapcore.ParseLevel(level)
	if err != nil {
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      zapLevel == zapcore.DebugLevel,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}
	return cfg.Build()
}
