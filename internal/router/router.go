package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/anonto42/sparkmatch/backend/internal/handlers"
	"github.com/anonto42/sparkmatch/backend/internal/models"
	"github.com/anonto42/sparkmatch/backend/internal/repositories"
	"github.com/anonto42/sparkmatch/backend/internal/services"
	"github.com/anonto42/sparkmatch/backend/pkg/cache"
)

// Dependencies are the stores and collaborators the services are built from.
// Generator may be nil, in which case the advice endpoint answers 503.
type Dependencies struct {
	Postgres  *gorm.DB
	Posts     repositories.PostRepository
	Messages  repositories.MessageRepository
	Unread    cache.UnreadCounter
	Generator services.Generator
	Log       *zap.Logger
}

// Services groups the application services shared by the routes and background jobs.
type Services struct {
	Users         repositories.UserRepository
	Posts         repositories.PostRepository
	Notifications *services.NotificationService
	Comments      *services.CommentService
	Likes         *services.LikeService
	Chat          *services.ChatService
	Advice        *services.AdviceService
}

func NewServices(deps Dependencies) *Services {
	userRepo := repositories.NewPostgresUserRepository(deps.Postgres)
	notificationRepo := repositories.NewPostgresNotificationRepository(deps.Postgres)
	commentRepo := repositories.NewPostgresCommentRepository(deps.Postgres)
	likeRepo := repositories.NewPostgresLikeRepository(deps.Postgres)

	notifications := services.NewNotificationService(notificationRepo, deps.Unread, deps.Log)
	return &Services{
		Users:         userRepo,
		Posts:         deps.Posts,
		Notifications: notifications,
		Comments:      services.NewCommentService(commentRepo, deps.Posts, notifications, deps.Log),
		Likes:         services.NewLikeService(likeRepo, deps.Posts, notifications, deps.Log),
		Chat:          services.NewChatService(deps.Messages, userRepo, notifications, deps.Log),
		Advice:        services.NewAdviceService(deps.Generator, deps.Messages, deps.Log),
	}
}

// AutoMigrate creates or updates the PostgreSQL tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Comment{},
		&models.Notification{},
		&models.Like{},
	)
}

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo, log *zap.Logger) {
	e.Use(eMiddleware.RequestLoggerWithConfig(eMiddleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v eMiddleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				log.Error("request failed", append(fields, zap.Error(v.Error))...)
				return nil
			}
			log.Info("request", fields...)
			return nil
		},
	}))
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Info("Global middleware configured.")
}

// SetupRoutes configures all application routes behind the given auth middleware
func SetupRoutes(e *echo.Echo, svc *Services, authMW echo.MiddlewareFunc, log *zap.Logger) {
	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"message": "sparkmatch api"})
	})

	api := e.Group("/api/v1")
	api.Use(authMW)
	log.Info("Authentication middleware applied to /api/v1 group.")

	handlers.NewNotificationHandler(svc.Notifications).RegisterNotificationRoutes(api)
	log.Info("Notification routes configured.")

	handlers.NewChatHandler(svc.Chat).RegisterChatRoutes(api)
	log.Info("Chat routes configured.")

	handlers.NewPostHandler(svc.Posts).RegisterPostRoutes(api)
	log.Info("Post routes configured.")

	handlers.NewCommentHandler(svc.Comments).RegisterCommentRoutes(api)
	log.Info("Comment routes configured.")

	handlers.NewLikeHandler(svc.Likes).RegisterLikeRoutes(api)
	log.Info("Like routes configured.")

	handlers.NewAdviceHandler(svc.Advice).RegisterAdviceRoutes(api)
	log.Info("Advice routes configured.")

	log.Info("All routes configured.")
}
