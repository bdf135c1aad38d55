package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/minitweet/minitweet/internal/app"
	"github.com/minitweet/minitweet/internal/config"
	"github.com/minitweet/minitweet/internal/repository"
	"github.com/minitweet/minitweet/internal/workers"
	"github.com/minitweet/minitweet/pkg/cache"
	"github.com/minitweet/minitweet/pkg/logger"
)

func main() {
	// 加载配置
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if !cfg.Kafka.Enabled {
		log.Fatal("Notification worker requires kafka.enabled=true")
	}

	container, err := app.BuildContainer(cfg)
	if err != nil {
		log.Fatalf("Failed to build container: %v", err)
	}

	err = container.Invoke(func(logger *logger.Logger, db *repository.Database, redisClient *cache.RedisClient, worker *workers.NotificationWorker) {
		run(logger, db, redisClient, worker)
	})
	if err != nil {
		log.Fatalf("Failed to start worker: %v", err)
	}
}

func run(logger *logger.Logger, db *repository.Database, redisClient *cache.RedisClient, worker *workers.NotificationWorker) {
	logger.Info("Starting minitweet notification worker...")
	defer db.Close()
	defer redisClient.Close()

	// 检查Redis连接
	if err := redisClient.Ping(context.Background()); err != nil {
		logger.WithError(err).Fatal("Failed to connect to Redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := worker.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.WithError(err).Error("Notification worker stopped with error")
		}
	}()

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-done:
	}

	logger.Info("Shutting down worker...")
	cancel()
	<-done

	if err := worker.Stop(); err != nil {
		logger.WithError(err).Error("Failed to stop notification worker")
	}

	logger.Info("Worker exited")
}
