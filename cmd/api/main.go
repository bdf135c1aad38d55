package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/minitweet/minitweet/internal/app"
	"github.com/minitweet/minitweet/internal/config"
	"github.com/minitweet/minitweet/internal/repository"
	"github.com/minitweet/minitweet/pkg/cache"
	"github.com/minitweet/minitweet/pkg/logger"
	"github.com/minitweet/minitweet/pkg/queue"
)

func main() {
	// 加载配置
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	container, err := app.BuildContainer(cfg)
	if err != nil {
		log.Fatalf("Failed to build container: %v", err)
	}

	err = container.Invoke(func(
		logger *logger.Logger,
		db *repository.Database,
		redisClient *cache.RedisClient,
		publisher queue.Publisher,
		router *gin.Engine,
	) {
		run(cfg, logger, db, redisClient, publisher, router)
	})
	if err != nil {
		log.Fatalf("Failed to start API server: %v", err)
	}
}

func run(cfg *config.Config, logger *logger.Logger, db *repository.Database, redisClient *cache.RedisClient, publisher queue.Publisher, router *gin.Engine) {
	logger.Info("Starting minitweet API server...")
	defer db.Close()
	defer redisClient.Close()
	defer publisher.Close()

	// 自动迁移数据库表
	if err := db.AutoMigrate(); err != nil {
		logger.WithError(err).Fatal("Failed to migrate database")
	}

	// 检查Redis连接
	if err := redisClient.Ping(context.Background()); err != nil {
		logger.WithError(err).Fatal("Failed to connect to Redis")
	}

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Failed to start HTTP server")
		}
	}()

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// 优雅关闭
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server exited")
}

func init() {
	if err := os.MkdirAll("configs", 0o755); err != nil {
		log.Printf("Failed to create configs directory: %v", err)
		return
	}

	// 创建默认配置文件（如果不存在）
	configPath := "configs/config.yaml"
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := createDefaultConfig(configPath); err != nil {
			log.Printf("Failed to create default config: %v", err)
		}
	}
}

func createDefaultConfig(path string) error {
	defaultConfig := `server:
  port: ":8080"
  mode: "debug"
  read_timeout: 30s
  write_timeout: 30s

database:
  driver: "postgres"
  host: "localhost"
  port: 5432
  user: "minitweet"
  password: "minitweet"
  dbname: "minitweet"
  sslmode: "disable"
  max_open_conns: 25
  max_idle_conns: 5

redis:
  host: "localhost"
  port: 6379
  password: ""
  db: 0

kafka:
  enabled: false
  brokers:
    - "localhost:9092"
  topics:
    events: "minitweet-events"
  group_id: "notification-worker-group"

jwt:
  secret: "change-me-in-production"
  expire_time: 24h

tweets:
  recent_limit: 10  # 0 表示首页返回全部推文

notifications:
  max_per_user: 100
  ttl: 168h

log:
  level: "info"
  format: "json"
`

	return os.WriteFile(path, []byte(defaultConfig), 0o644)
}
