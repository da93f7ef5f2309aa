// Package main runs the background notification worker.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rahulxcodes/Demo-Webinars-sub000/config"
	"github.com/rahulxcodes/Demo-Webinars-sub000/internal/emaillogs"
	"github.com/rahulxcodes/Demo-Webinars-sub000/internal/worker"
	"github.com/rahulxcodes/Demo-Webinars-sub000/pkg/database"
	"github.com/rahulxcodes/Demo-Webinars-sub000/pkg/mailer"
	"github.com/rahulxcodes/Demo-Webinars-sub000/pkg/queue"
	"github.com/rahulxcodes/Demo-Webinars-sub000/pkg/redis"
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

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	logsRepo := emaillogs.NewRepository(pool)
	jobQueue := queue.NewQueue(rdb.Client, logger)
	sender := mailer.NewSendgrid(cfg.Email.APIKey, cfg.Email.FromName, cfg.Email.FromAddress)
	processor := worker.NewEmailProcessor(logsRepo, sender, jobQueue, logger)

	workerCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go processor.Run(workerCtx)
	logger.Info("worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	time.Sleep(2 * time.Second)
	logger.Info("worker stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
