package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ShannonCanTech/aroundhere/internal/api"
	"github.com/ShannonCanTech/aroundhere/internal/avatar"
	"github.com/ShannonCanTech/aroundhere/internal/config"
	"github.com/ShannonCanTech/aroundhere/internal/kv"
	"github.com/ShannonCanTech/aroundhere/internal/middleware"
	"github.com/ShannonCanTech/aroundhere/internal/observ"
	"github.com/ShannonCanTech/aroundhere/internal/realtime"
	"github.com/ShannonCanTech/aroundhere/internal/repository/kvstore"
	"github.com/ShannonCanTech/aroundhere/internal/retention"
	"github.com/ShannonCanTech/aroundhere/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := observ.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	// Startup has no deadline; request contexts carry their own.
	store, err := kv.NewRedis(context.Background(), cfg.RedisURL, logger)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer store.Close()

	chatRepo := kvstore.NewChatStore(store)
	messageRepo := kvstore.NewMessageStore(store)
	indexRepo := kvstore.NewUserIndexStore(store)
	consentRepo := kvstore.NewConsentStore(store)

	policy := retention.NewPolicy()
	sweeper := retention.NewSweeper(chatRepo, messageRepo, indexRepo, policy, logger)

	avatars := avatar.NewService(store, avatar.NewHTTPProfileClient(cfg.ProfileAPIURL), logger)

	chatSvc := service.NewChatService(chatRepo, messageRepo, indexRepo, sweeper, avatars, logger)
	messageSvc := service.NewMessageService(chatRepo, messageRepo, sweeper, logger)
	consentSvc := service.NewConsentService(consentRepo)

	hub := realtime.NewHub()
	publisher := realtime.NewPublisher(store.Client())
	listener := realtime.NewListener(store.Client(), hub, logger)
	go func() {
		if err := listener.Run(context.Background()); err != nil && err != context.Canceled {
			logger.Error("realtime listener stopped", zap.Error(err))
		}
	}()

	chatHandler := api.NewChatHandler(chatSvc, logger)
	messageHandler := api.NewMessageHandler(messageSvc, publisher, logger)
	consentHandler := api.NewConsentHandler(consentSvc, logger)
	avatarHandler := api.NewAvatarHandler(avatars, logger)
	socketHandler := realtime.NewSocketHandler(hub, chatRepo, cfg.JWTSecret, logger)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := gin.New()
	srv.Use(gin.Recovery(), observ.HTTPMetricsMiddleware())

	// Public: health for load balancers, metrics for the scraper.
	srv.GET("/v1/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	srv.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authed := srv.Group("/api")
	authed.Use(middleware.AuthMiddleware(cfg.JWTSecret))

	authed.POST("/chats/create", chatHandler.Create)
	authed.GET("/chats", chatHandler.List)
	authed.GET("/chats/:chatId", chatHandler.Get)
	authed.DELETE("/chats/:chatId", chatHandler.Delete)
	authed.POST("/chats/:chatId/join", chatHandler.Join)
	authed.POST("/chats/:chatId/leave", chatHandler.Leave)

	authed.POST("/chats/:chatId/messages", messageHandler.Send)
	authed.GET("/chats/:chatId/messages", messageHandler.List)
	authed.PUT("/chats/:chatId/messages/:messageId", messageHandler.Edit)
	authed.DELETE("/chats/:chatId/messages/:messageId", messageHandler.Delete)

	authed.GET("/consent/check", consentHandler.Check)
	authed.POST("/consent/accept", consentHandler.Accept)
	authed.GET("/user/avatar", avatarHandler.Get)

	// Websocket endpoint authenticates inline; browser clients pass ?token=.
	srv.GET("/ws/chats/:chatId", socketHandler.Handle)

	logger.Info("starting aroundhere",
		zap.String("port", cfg.Port),
		zap.String("env", cfg.Env),
	)
	return srv.Run(":" + cfg.Port)
}
