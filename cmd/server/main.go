// Package main runs the webinar platform HTTP server with graceful shutdown.
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

	"github.com/rahulxcodes/Demo-Webinars-sub000/config"
	"github.com/rahulxcodes/Demo-Webinars-sub000/internal/auth"
	"github.com/rahulxcodes/Demo-Webinars-sub000/internal/emaillogs"
	"github.com/rahulxcodes/Demo-Webinars-sub000/internal/middleware"
	"github.com/rahulxcodes/Demo-Webinars-sub000/internal/models"
	"github.com/rahulxcodes/Demo-Webinars-sub000/internal/registrations"
	"github.com/rahulxcodes/Demo-Webinars-sub000/internal/video"
	"github.com/rahulxcodes/Demo-Webinars-sub000/internal/webinars"
	"github.com/rahulxcodes/Demo-Webinars-sub000/pkg/database"
	"github.com/rahulxcodes/Demo-Webinars-sub000/pkg/queue"
	"github.com/rahulxcodes/Demo-Webinars-sub000/pkg/redis"
	"github.com/rahulxcodes/Demo-Webinars-sub000/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	callClient := video.NewClient(cfg.Video)
	jobQueue := queue.NewQueue(rdb.Client, logger)

	// Auth
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, logger)

	// Webinars
	webinarRepo := webinars.NewRepository(pool)
	webinarService := webinars.NewService(webinarRepo, callClient, logger)
	webinarHandler := webinars.NewHandler(webinarService, logger)

	// Registrations
	registrationRepo := registrations.NewRepository(pool)
	formRepo := registrations.NewFormRepository(pool)
	registrationService := registrations.NewService(registrationRepo, formRepo, webinarRepo, callClient, jobQueue, logger)
	registrationHandler := registrations.NewHandler(registrationService, logger)

	// Notification log
	emailLogsRepo := emaillogs.NewRepository(pool)
	emailLogsHandler := emaillogs.NewHandler(emailLogsRepo)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Public: webinar browsing, registration, join validation
	router.GET("/webinars", webinarHandler.List)
	router.GET("/webinars/:id", webinarHandler.GetByID)
	router.GET("/webinars/:id/registration", registrationHandler.GetForm)
	router.POST("/webinars/:id/register", registrationHandler.Register)
	router.GET("/join/validate/:token", registrationHandler.ValidateJoin)

	// Auth (public)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/register", authHandler.Register)
	}

	// Organizer API (JWT required)
	api := router.Group("")
	api.Use(middleware.JWT(jwtService))
	{
		api.GET("/users", middleware.RequireRole(string(models.RoleAdmin)), authHandler.List)

		api.POST("/webinars", webinarHandler.Create)
		api.PATCH("/webinars/:id", webinarHandler.Update)
		api.DELETE("/webinars/:id", webinarHandler.Delete)
		api.POST("/webinars/:id/start", webinarHandler.Start)
		api.POST("/webinars/:id/end", webinarHandler.End)

		api.POST("/webinars/:id/registration", registrationHandler.SaveForm)
		api.GET("/webinars/:id/registrations", registrationHandler.List)
		api.PATCH("/registrations/:id/approve", registrationHandler.Approve)
		api.PATCH("/registrations/:id/reject", registrationHandler.Reject)

		api.GET("/webinars/:id/emails", emailLogsHandler.ListByWebinar)
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
