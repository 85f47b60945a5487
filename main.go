package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"vidtube/internal/config"
	"vidtube/internal/handlers"
	"vidtube/internal/metrics"
	"vidtube/internal/middleware"
	"vidtube/internal/models"
	"vidtube/internal/repositories"
	"vidtube/internal/services"
	"vidtube/pkg/logger"
	"vidtube/pkg/rabbitmq"
	"vidtube/pkg/storage"
)

// application owns the Fiber app and every connection it depends on.
type application struct {
	app    *fiber.App
	db     *gorm.DB
	mq     *rabbitmq.Client
	redis  *redis.Client
	logger *zap.Logger
}

func main() {
	appLogger, err := logger.New(os.Getenv("APP_ENV"))
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()
	zap.ReplaceGlobals(appLogger)

	cfg, err := config.Load()
	if err != nil {
		appLogger.Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx := context.Background()
	a, err := newApplication(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize application", zap.Error(err))
	}
	defer a.Close()

	a.startEventConsumer()

	appLogger.Info("Starting server", zap.String("port", cfg.AppPort), zap.String("env", cfg.AppEnv))

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := a.app.Listen(cfg.AppPort); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	<-quit
	appLogger.Info("Shutting down server...")

	if err := a.app.ShutdownWithTimeout(10 * time.Second); err != nil {
		appLogger.Error("Error during Fiber shutdown", zap.Error(err))
	}
	appLogger.Info("Server gracefully stopped")
}

// newApplication connects to the database and optional brokers and wires the
// HTTP routes. RabbitMQ and Redis are skipped when their URLs are empty.
func newApplication(ctx context.Context, cfg *config.Config, appLogger *zap.Logger) (*application, error) {
	a := &application{logger: appLogger}

	db, err := openDatabase(cfg)
	if err != nil {
		return nil, err
	}
	a.db = db

	uploader, err := storage.New(ctx, storage.Config{
		Driver:              cfg.Upload.Driver,
		CloudinaryCloudName: cfg.Upload.CloudinaryCloudName,
		CloudinaryAPIKey:    cfg.Upload.CloudinaryAPIKey,
		CloudinaryAPISecret: cfg.Upload.CloudinaryAPISecret,
		CloudinaryFolder:    cfg.Upload.CloudinaryFolder,
		S3Region:            cfg.Upload.S3Region,
		S3Bucket:            cfg.Upload.S3Bucket,
		S3Endpoint:          cfg.Upload.S3Endpoint,
		S3AccessKey:         cfg.Upload.S3AccessKey,
		S3SecretKey:         cfg.Upload.S3SecretKey,
		S3PublicURL:         cfg.Upload.S3PublicURL,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize uploader: %w", err)
	}

	if cfg.RabbitMQURL != "" {
		mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, appLogger)
		if err != nil {
			appLogger.Warn("RabbitMQ unavailable, events will not be published", zap.Error(err))
		} else {
			a.mq = mq
		}
	}

	var limiter middleware.Limiter
	if cfg.RedisURL != "" {
		client, err := openRedis(ctx, cfg.RedisURL)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.redis = client
		limiter = middleware.NewRedisLimiter(client, cfg.AuthRateLimit, cfg.AuthRateWindow)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(db, cfg.StoreTimeout)
	subscriptionRepo := repositories.NewGORMSubscriptionRepository(db, cfg.StoreTimeout)

	// --- Services ---
	tokens, err := services.NewTokenService(services.TokenConfig{
		AccessSecret:  cfg.AccessTokenSecret,
		AccessExpiry:  cfg.AccessTokenExpiry,
		RefreshSecret: cfg.RefreshTokenSecret,
		RefreshExpiry: cfg.RefreshTokenExpiry,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	authService := services.NewAuthService(userRepo, services.NewPasswordHasher(cfg.BcryptCost), tokens, uploader).
		WithMetrics(collector).
		WithLogger(appLogger.Named("auth"))
	if a.mq != nil {
		authService.WithEvents(a.mq)
	}
	userService := services.NewUserService(userRepo, uploader).WithLogger(appLogger.Named("users"))
	channelService := services.NewChannelService(userRepo, subscriptionRepo).WithLogger(appLogger.Named("channels"))

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(authService, cfg.Upload.TempDir)
	if limiter != nil {
		authHandler.WithRateLimit(limiter, appLogger.Named("ratelimit"))
	}
	userHandler := handlers.NewUserHandler(userService, cfg.Upload.TempDir)
	channelHandler := handlers.NewChannelHandler(channelService)

	// --- Fiber App ---
	app := fiber.New(fiber.Config{
		AppName:      "vidtube",
		ErrorHandler: handlers.ErrorHandler(appLogger),
		BodyLimit:    16 * 1024 * 1024,
	})
	app.Use(recover.New())
	app.Use(middleware.RequestLogger(appLogger.Named("http"), collector))

	app.Get("/health", a.handleHealth)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	apiV1 := app.Group("/api/v1")
	authRequired := middleware.AuthRequired(authService)
	authHandler.RegisterRoutes(apiV1, authRequired)
	userHandler.RegisterRoutes(apiV1, authRequired)
	channelHandler.RegisterRoutes(apiV1, authRequired)

	a.app = app
	return a, nil
}

func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DatabaseDriver {
	case "postgres":
		dialector = postgres.Open(cfg.DatabaseDSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DatabaseDSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}

	logLevel := gormlogger.Warn
	if cfg.IsProduction() {
		logLevel = gormlogger.Error
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Subscription{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}
	return db, nil
}

func openRedis(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		// The limiter fails open, so a cold Redis only disables rate limiting.
		zap.L().Warn("Redis ping failed", zap.Error(err))
	}
	return client, nil
}

func (a *application) handleHealth(c *fiber.Ctx) error {
	status := fiber.StatusOK
	database := "connected"
	if sqlDB, err := a.db.DB(); err != nil || sqlDB.PingContext(c.UserContext()) != nil {
		status = fiber.StatusServiceUnavailable
		database = "unreachable"
	}

	rabbitMQ := "disabled"
	if a.mq != nil {
		rabbitMQ = "connected"
	}

	healthStatus := "healthy"
	if status != fiber.StatusOK {
		healthStatus = "unhealthy"
	}
	return c.Status(status).JSON(fiber.Map{
		"status":   healthStatus,
		"time":     time.Now().Format(time.RFC3339),
		"database": database,
		"rabbitMQ": rabbitMQ,
	})
}

// startEventConsumer logs every user event read back from RabbitMQ.
func (a *application) startEventConsumer() {
	if a.mq == nil {
		return
	}
	eventLogger := a.logger.Named("events")
	err := a.mq.ConsumeUserEvents(func(event rabbitmq.Event) error {
		eventLogger.Info("user event",
			zap.String("type", event.Type),
			zap.Time("occurredAt", event.OccurredAt),
			zap.Any("data", event.Data))
		return nil
	})
	if err != nil {
		a.logger.Error("Failed to start RabbitMQ consumer", zap.Error(err))
	}
}

// Close releases every connection held by the application.
func (a *application) Close() {
	if a.mq != nil {
		if err := a.mq.Close(); err != nil {
			a.logger.Warn("Error closing RabbitMQ client", zap.Error(err))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("Error closing Redis client", zap.Error(err))
		}
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			sqlDB.Close()
		}
	}
}
