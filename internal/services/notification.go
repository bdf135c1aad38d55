package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/minitweet/minitweet/internal/config"
	"github.com/minitweet/minitweet/internal/models"
	"github.com/minitweet/minitweet/pkg/logger"
)

type notificationStore interface {
	ZAdd(ctx context.Context, key string, members ...*redis.Z) error
	ZRevRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	ZRemRangeByRank(ctx context.Context, key string, start, stop int64) error
	Expire(ctx context.Context, key string, expiration time.Duration) error
}

// NotificationService 每个用户一个有序集合, 分数为通知时间(微秒, float64 可精确表示)
type NotificationService struct {
	store      notificationStore
	maxPerUser int
	ttl        time.Duration
	logger     *logger.Logger
}

func NewNotificationService(store notificationStore, cfg *config.NotificationsConfig, logger *logger.Logger) *NotificationService {
	return &NotificationService{
		store:      store,
		maxPerUser: cfg.MaxPerUser,
		ttl:        cfg.TTL,
		logger:     logger,
	}
}

func notificationKey(userID uuid.UUID) string {
	return fmt.Sprintf("notifications:%s", userID.String())
}

func (s *NotificationService) Notify(ctx context.Context, recipientID uuid.UUID, n *models.Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	key := notificationKey(recipientID)
	if err := s.store.ZAdd(ctx, key, &redis.Z{
		Score:  float64(n.CreatedAt.UnixMicro()),
		Member: string(data),
	}); err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}

	// 只保留最新的 maxPerUser 条
	if s.maxPerUser > 0 {
		if err := s.store.ZRemRangeByRank(ctx, key, 0, int64(-(s.maxPerUser + 1))); err != nil {
			s.logger.WithError(err).WithField("user_id", recipientID).Error("Failed to trim notifications")
		}
	}
	if s.ttl > 0 {
		if err := s.store.Expire(ctx, key, s.ttl); err != nil {
			s.logger.WithError(err).WithField("user_id", recipientID).Error("Failed to set notification ttl")
		}
	}

	return nil
}

// List 最新的在前, limit <= 0 返回全部
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Notification, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}

	members, err := s.store.ZRevRange(ctx, notificationKey(userID), 0, stop)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	notifications := make([]*models.Notification, 0, len(members))
	for _, member := range members {
		var n models.Notification
		if err := json.Unmarshal([]byte(member), &n); err != nil {
			s.logger.WithError(err).WithField("user_id", userID).Warn("Skipping malformed notification")
			continue
		}
		notifications = append(notifications, &n)
	}
	return notifications, nil
}
