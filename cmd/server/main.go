// Package main runs the gatherly HTTP server with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gatherly/backend/config"
	"github.com/gatherly/backend/internal/auth"
	"github.com/gatherly/backend/internal/events"
	"github.com/gatherly/backend/internal/middleware"
	"github.com/gatherly/backend/internal/organizations"
	"github.com/gatherly/backend/pkg/database"
	"github.com/gatherly/backend/pkg/redis"
	"github.com/gatherly/backend/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	db, err := database.NewMongo(ctx, cfg.Mongo.URI, cfg.Mongo.Database, logger)
	if err != nil {
		logger.Fatal("mongo", zap.Error(err))
	}
	defer db.Close(context.Background())

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	jwtService := auth.NewJWTService(
		cfg.JWT.Secret,
		time.Duration(cfg.JWT.AccessExpireSecs)*time.Second,
		time.Duration(cfg.JWT.RefreshExpireSecs)*time.Second,
	)
	refreshStore := auth.NewRedisRefreshStore(rdb.Client)

	// Auth
	authRepo := auth.NewRepository(db.DB)
	if err := authRepo.EnsureIndexes(ctx); err != nil {
		logger.Fatal("ensure indexes", zap.Error(err))
	}
	authHandler := auth.NewHandler(authRepo, jwtService, refreshStore, logger)

	// Organizations
	orgRepo := organizations.NewRepository(db.DB)
	orgHandler := organizations.NewHandler(orgRepo, logger)

	// Events
	eventRepo := events.NewRepository(db.DB)
	eventHandler := events.NewHandler(eventRepo, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Auth (public; refresh/logout carry their own token in the body)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/refresh", authHandler.Refresh)
		authGroup.POST("/logout", authHandler.Logout)
	}

	// Organizations
	orgGroup := router.Group("/org")
	{
		orgGroup.GET("/", orgHandler.List)
		orgGroup.GET("/user", middleware.JWT(jwtService), orgHandler.ListMine)
		orgGroup.POST("/create", middleware.JWT(jwtService), orgHandler.Create)
	}

	// Events
	eventGroup := router.Group("/event")
	{
		eventGroup.GET("/", eventHandler.List)
		eventGroup.POST("/create", middleware.JWT(jwtService), eventHandler.Create)
		eventGroup.POST("/attend", middleware.JWT(jwtService), eventHandler.Attend)
		eventGroup.GET("/attending", middleware.JWT(jwtService), eventHandler.Attending)
		eventGroup.GET("/status/:eventId", middleware.JWT(jwtService), eventHandler.Status)
	}

	// User
	userGroup := router.Group("/user")
	userGroup.Use(middleware.JWT(jwtService))
	{
		userGroup.GET("/events", eventHandler.Attending)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
