package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"gopherai-insight/internal/ai"
	appsvc "gopherai-insight/internal/app"
	"gopherai-insight/internal/bootstrap"
	"gopherai-insight/internal/cache"
	"gopherai-insight/internal/platform/rabbitmq"
	"gopherai-insight/internal/repository"
	"gopherai-insight/internal/transport/http/handler"
	"gopherai-insight/internal/transport/http/middleware"
)

// Services are the application services the API routes to.
type Services struct {
	Auth           *appsvc.AuthService
	Datasets       *appsvc.DatasetService
	Chat           *appsvc.ChatService
	MaxUploadBytes int64
}

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	cfg := app.Config

	userRepo := repository.NewUserRepository(app.MySQL)
	datasetRepo := repository.NewDatasetRepository(app.MySQL)
	messageRepo := repository.NewMessageRepository(app.MySQL)

	var publisher appsvc.MessagePublisher = messageRepo
	if app.MQConn != nil {
		publisher = rabbitmq.NewMessagePublisher(app.MQConn, cfg.RabbitMQ.MessagePersistQueue)
	}

	services := Services{
		Auth: appsvc.NewAuthService(
			userRepo,
			cache.NewTokenDenylist(app.Redis),
			cfg.Auth.JWTSecret,
			time.Duration(cfg.Auth.JWTExpireMinute)*time.Minute,
		),
		Datasets: appsvc.NewDatasetService(datasetRepo, app.Blobs, cfg.Upload.MaxBytes, app.Logger),
		Chat: appsvc.NewChatService(appsvc.ChatServiceDeps{
			Datasets:  datasetRepo,
			Messages:  messageRepo,
			Publisher: publisher,
			HistoryCache: cache.NewHistoryCache(
				app.Redis,
				time.Duration(cfg.Redis.HistoryTTLSeconds)*time.Second,
				time.Duration(cfg.Redis.HistoryDirtyTTLSeconds)*time.Second,
			),
			Turns:     cache.NewTurnTracker(app.Redis, time.Duration(cfg.Redis.TurnTTLSeconds)*time.Second),
			Completer: app.Completer,
			DefaultLLM: ai.ChatConfig{
				BaseURL:     cfg.LLM.BaseURL,
				APIKey:      cfg.LLM.APIKey,
				Model:       cfg.LLM.Model,
				MaxTokens:   cfg.LLM.MaxTokens,
				Temperature: cfg.LLM.Temperature,
			},
			Logger: app.Logger,
		}),
		MaxUploadBytes: cfg.Upload.MaxBytes,
	}

	router := NewAPIRouter(services, app)
	return router
}

// NewAPIRouter mounts the API on a fresh engine. app may be nil, in which
// case no health route is registered.
func NewAPIRouter(services Services, app *bootstrap.App) *gin.Engine {
	router := gin.New()
	if app != nil && app.Logger != nil {
		router.Use(middleware.Logger(app.Logger))
	}
	router.Use(gin.Recovery())
	if services.MaxUploadBytes > 0 {
		router.MaxMultipartMemory = services.MaxUploadBytes
	}

	if app != nil {
		healthHandler := handler.NewHealthHandler(app)
		router.GET("/healthz", healthHandler.Check)
	}

	authHandler := handler.NewAuthHandler(services.Auth)
	datasetHandler := handler.NewDatasetHandler(services.Datasets, services.MaxUploadBytes)
	chatHandler := handler.NewChatHandler(services.Chat)
	requireAuth := middleware.AuthJWT(services.Auth)

	v1 := router.Group("/api/v1")
	authGroup := v1.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/me", requireAuth, authHandler.Me)
	authGroup.POST("/logout", requireAuth, authHandler.Logout)

	datasetGroup := v1.Group("/datasets")
	datasetGroup.Use(requireAuth)
	datasetGroup.GET("", datasetHandler.List)
	datasetGroup.POST("", datasetHandler.Create)
	datasetGroup.GET("/:id", datasetHandler.Get)
	datasetGroup.PUT("/:id", datasetHandler.Update)
	datasetGroup.DELETE("/:id", datasetHandler.Delete)
	datasetGroup.GET("/:id/chart", datasetHandler.Chart)

	chatGroup := v1.Group("/chat")
	chatGroup.Use(requireAuth)
	chatGroup.POST("/messages", chatHandler.SendMessage)
	chatGroup.GET("/messages", chatHandler.GetHistory)
	chatGroup.GET("/turn", chatHandler.GetTurn)

	return router
}
