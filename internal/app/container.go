// Package app 组装 API 服务和通知 worker 的依赖
package app

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/minitweet/minitweet/internal/auth"
	"github.com/minitweet/minitweet/internal/config"
	"github.com/minitweet/minitweet/internal/handlers"
	"github.com/minitweet/minitweet/internal/middleware"
	"github.com/minitweet/minitweet/internal/repository"
	"github.com/minitweet/minitweet/internal/services"
	"github.com/minitweet/minitweet/internal/workers"
	"github.com/minitweet/minitweet/pkg/cache"
	"github.com/minitweet/minitweet/pkg/logger"
	"github.com/minitweet/minitweet/pkg/queue"
	"go.uber.org/dig"
)

func ProvideLogger(cfg *config.Config) *logger.Logger {
	return logger.NewLogger(cfg.Log.Level, cfg.Log.Format)
}

func ProvideDatabase(cfg *config.Config) (*repository.Database, error) {
	return repository.NewDatabase(&cfg.Database)
}

func ProvideRedis(cfg *config.Config) *cache.RedisClient {
	return cache.NewRedisClient(&cfg.Redis)
}

// ProvidePublisher kafka 关闭时事件直接丢弃
func ProvidePublisher(cfg *config.Config, log *logger.Logger) queue.Publisher {
	if !cfg.Kafka.Enabled {
		log.Warn("Kafka disabled, domain events will not be published")
		return queue.NopPublisher{}
	}
	return queue.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics.Events)
}

func ProvideEventPublisher(publisher queue.Publisher) services.EventPublisher {
	return publisher
}

func ProvideKafkaConsumer(cfg *config.Config, log *logger.Logger) *queue.KafkaConsumer {
	return queue.NewKafkaConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topics.Events, cfg.Kafka.GroupID, log.Logger)
}

func ProvideUserRepository(db *repository.Database) *repository.UserRepository {
	return repository.NewUserRepository(db.DB)
}

func ProvideFollowRepository(db *repository.Database) *repository.FollowRepository {
	return repository.NewFollowRepository(db.DB)
}

func ProvideTweetRepository(db *repository.Database) *repository.TweetRepository {
	return repository.NewTweetRepository(db.DB)
}

func ProvideLikeRepository(db *repository.Database) *repository.LikeRepository {
	return repository.NewLikeRepository(db.DB)
}

func ProvideUserService(userRepo *repository.UserRepository, publisher services.EventPublisher, cfg *config.Config, log *logger.Logger) (*services.UserService, error) {
	return services.NewUserService(userRepo, publisher, &cfg.Auth, log)
}

func ProvideTimelineService(tweets *services.TweetService, likes *services.LikeService, cfg *config.Config) *services.TimelineService {
	return services.NewTimelineService(tweets, likes, &cfg.Tweets)
}

func ProvideNotificationService(redis *cache.RedisClient, cfg *config.Config, log *logger.Logger) *services.NotificationService {
	return services.NewNotificationService(redis, &cfg.Notifications, log)
}

func ProvideTokenManager(cfg *config.Config) *auth.TokenManager {
	return auth.NewTokenManager(&cfg.JWT)
}

func ProvideRevoker(redis *cache.RedisClient) *auth.Revoker {
	return auth.NewRevoker(redis)
}

func ProvideAccountHandler(accounts *services.AccountService, cfg *config.Config, log *logger.Logger) *handlers.AccountHandler {
	return handlers.NewAccountHandler(accounts, &cfg.JWT, &cfg.Server, log)
}

func ProvideHandlers(
	account *handlers.AccountHandler,
	profile *handlers.ProfileHandler,
	tweet *handlers.TweetHandler,
	notification *handlers.NotificationHandler,
) handlers.Handlers {
	return handlers.Handlers{
		Account:      account,
		Profile:      profile,
		Tweet:        tweet,
		Notification: notification,
	}
}

func ProvideRouter(cfg *config.Config, log *logger.Logger, tokens *auth.TokenManager, revoker *auth.Revoker, h handlers.Handlers) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	return handlers.NewRouter(log, middleware.NewJWTAuth(tokens, revoker, cfg.JWT.CookieName), h)
}

// BuildContainer 所有依赖都是惰性构造的, 只有 Invoke 用到时才会连接外部服务
func BuildContainer(cfg *config.Config) (*dig.Container, error) {
	container := dig.New()

	providers := []struct {
		name        string
		constructor interface{}
	}{
		{"config", func() *config.Config { return cfg }},
		{"logger", ProvideLogger},
		{"database", ProvideDatabase},
		{"redis", ProvideRedis},
		{"publisher", ProvidePublisher},
		{"event publisher", ProvideEventPublisher},
		{"kafka consumer", ProvideKafkaConsumer},
		{"user repository", ProvideUserRepository},
		{"follow repository", ProvideFollowRepository},
		{"tweet repository", ProvideTweetRepository},
		{"like repository", ProvideLikeRepository},
		{"user service", ProvideUserService},
		{"follow service", services.NewFollowService},
		{"tweet service", services.NewTweetService},
		{"like service", services.NewLikeService},
		{"timeline service", ProvideTimelineService},
		{"profile service", services.NewProfileService},
		{"notification service", ProvideNotificationService},
		{"token manager", ProvideTokenManager},
		{"revoker", ProvideRevoker},
		{"account service", services.NewAccountService},
		{"account handler", ProvideAccountHandler},
		{"profile handler", handlers.NewProfileHandler},
		{"tweet handler", handlers.NewTweetHandler},
		{"notification handler", handlers.NewNotificationHandler},
		{"handlers", ProvideHandlers},
		{"router", ProvideRouter},
		{"notification worker", workers.NewNotificationWorker},
	}

	for _, p := range providers {
		if err := container.Provide(p.constructor); err != nil {
			return nil, fmt.Errorf("failed to provide %s: %w", p.name, err)
		}
	}

	return container, nil
}
