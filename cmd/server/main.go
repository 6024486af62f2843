package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/anonto42/sparkmatch/backend/internal/jobs"
	"github.com/anonto42/sparkmatch/backend/internal/middleware"
	"github.com/anonto42/sparkmatch/backend/internal/repositories"
	"github.com/anonto42/sparkmatch/backend/internal/router"
	"github.com/anonto42/sparkmatch/backend/internal/services"
	"github.com/anonto42/sparkmatch/backend/internal/validators"
	"github.com/anonto42/sparkmatch/backend/pkg/cache"
	"github.com/anonto42/sparkmatch/backend/pkg/config"
	"github.com/anonto42/sparkmatch/backend/pkg/firebase"
	"github.com/anonto42/sparkmatch/backend/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log := logger.Must(cfg.Env)
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database connections
	db, err := config.InitDB(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize databases", zap.Error(err))
	}
	defer db.CloseDB() // Ensure database connections are closed when main exits

	if err := router.AutoMigrate(db.Postgres); err != nil {
		log.Fatal("Failed to auto migrate models", zap.Error(err))
	}
	log.Info("PostgreSQL auto-migrations completed.")

	mongoDB := db.Mongo.Database(cfg.MongoDatabase)
	messageRepo := repositories.NewMongoMessageRepository(mongoDB)
	if err := messageRepo.EnsureIndexes(ctx); err != nil {
		log.Warn("Failed to create message indexes", zap.Error(err))
	}

	var unread cache.UnreadCounter
	if db.Redis != nil {
		unread = cache.NewRedisUnreadCounter(db.Redis, cfg.UnreadCacheTTL)
		log.Info("Unread counts cached in Redis.")
	} else {
		unread = cache.NewMemoryUnreadCounter(cfg.UnreadCacheTTL)
		log.Info("Unread counts cached in process.")
	}

	var generator services.Generator
	if cfg.GenAIAPIKey != "" {
		gen, err := services.NewGenAIGenerator(ctx, cfg.GenAIAPIKey, cfg.GenAIModel)
		if err != nil {
			log.Fatal("Failed to initialize GenAI client", zap.Error(err))
		}
		generator = gen
		log.Info("Advice generator configured.", zap.String("model", cfg.GenAIModel))
	} else {
		log.Warn("GENAI_API_KEY not set, advice endpoint disabled.")
	}

	svc := router.NewServices(router.Dependencies{
		Postgres:  db.Postgres,
		Posts:     repositories.NewMongoPostRepository(mongoDB),
		Messages:  messageRepo,
		Unread:    unread,
		Generator: generator,
		Log:       log,
	})

	authMW, err := authMiddleware(ctx, cfg, svc.Users, log)
	if err != nil {
		log.Fatal("Failed to configure authentication", zap.Error(err))
	}

	cron := jobs.New(svc.Notifications, cfg.NotificationRetention, log)
	if err := cron.Start(); err != nil {
		log.Fatal("Failed to start cron jobs", zap.Error(err))
	}
	defer cron.Stop()

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()
	router.SetupMiddleware(e, log)
	router.SetupRoutes(e, svc, authMW, log)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server stopped", zap.Error(err))
		}
	}()
	log.Info("Server started.", zap.String("port", cfg.Port))

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", zap.Error(err))
	}
}

// authMiddleware picks the bearer verifier named by AUTH_PROVIDER.
func authMiddleware(ctx context.Context, cfg *config.Config, users repositories.UserRepository, log *zap.Logger) (echo.MiddlewareFunc, error) {
	switch cfg.AuthProvider {
	case "firebase":
		app, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			return nil, err
		}
		log.Info("Firebase authentication configured.")
		return middleware.FirebaseAuthMiddleware(app.AuthClient, users), nil
	case "jwt":
		log.Info("JWT authentication configured.")
		return middleware.JWTAuthMiddleware(cfg.JWTSecret), nil
	default:
		return nil, errors.New("unknown AUTH_PROVIDER " + cfg.AuthProvider)
	}
}
