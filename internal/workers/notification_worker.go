package workers

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/minitweet/minitweet/internal/models"
	"github.com/minitweet/minitweet/internal/repository"
	"github.com/minitweet/minitweet/internal/services"
	"github.com/minitweet/minitweet/pkg/logger"
	"github.com/minitweet/minitweet/pkg/queue"
	"github.com/sirupsen/logrus"
)

type NotificationWorker struct {
	notifications *services.NotificationService
	userRepo      *repository.UserRepository
	consumer      *queue.KafkaConsumer
	logger        *logger.Logger
}

func NewNotificationWorker(
	notifications *services.NotificationService,
	userRepo *repository.UserRepository,
	consumer *queue.KafkaConsumer,
	logger *logger.Logger,
) *NotificationWorker {
	return &NotificationWorker{
		notifications: notifications,
		userRepo:      userRepo,
		consumer:      consumer,
		logger:        logger,
	}
}

// Start 阻塞直到 ctx 取消
func (w *NotificationWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting notification worker...")
	return w.consumer.Subscribe(ctx, w.HandleMessage)
}

func (w *NotificationWorker) Stop() error {
	w.logger.Info("Stopping notification worker...")
	return w.consumer.Close()
}

// HandleMessage 只处理会产生通知的事件, 其余事件忽略
func (w *NotificationWorker) HandleMessage(ctx context.Context, msg queue.Message) error {
	event, err := queue.DecodeEvent(msg.Value)
	if err != nil {
		return err
	}

	w.logger.WithFields(logrus.Fields{
		"event_type": event.Type,
		"timestamp":  event.Timestamp,
	}).Debug("Processing event")

	switch event.Type {
	case queue.EventFollowCreated:
		data, ok := event.Data.(*queue.FollowEventData)
		if !ok {
			return errors.New("invalid follow created event data")
		}
		return w.handleFollowCreated(ctx, event, data)
	case queue.EventLikeCreated:
		data, ok := event.Data.(*queue.LikeEventData)
		if !ok {
			return errors.New("invalid like created event data")
		}
		return w.handleLikeCreated(ctx, event, data)
	default:
		return nil
	}
}

func (w *NotificationWorker) handleFollowCreated(ctx context.Context, event queue.Event, data *queue.FollowEventData) error {
	followerID, err := uuid.Parse(data.FollowerID)
	if err != nil {
		return fmt.Errorf("invalid follower ID: %w", err)
	}
	followeeID, err := uuid.Parse(data.FolloweeID)
	if err != nil {
		return fmt.Errorf("invalid followee ID: %w", err)
	}

	return w.notify(ctx, followeeID, &models.Notification{
		Type:      models.NotificationFollow,
		ActorID:   followerID,
		CreatedAt: event.Timestamp,
	})
}

func (w *NotificationWorker) handleLikeCreated(ctx context.Context, event queue.Event, data *queue.LikeEventData) error {
	userID, err := uuid.Parse(data.UserID)
	if err != nil {
		return fmt.Errorf("invalid user ID: %w", err)
	}
	authorID, err := uuid.Parse(data.AuthorID)
	if err != nil {
		return fmt.Errorf("invalid author ID: %w", err)
	}
	tweetID, err := uuid.Parse(data.TweetID)
	if err != nil {
		return fmt.Errorf("invalid tweet ID: %w", err)
	}

	// 给自己点赞不通知
	if userID == authorID {
		return nil
	}

	return w.notify(ctx, authorID, &models.Notification{
		Type:      models.NotificationLike,
		ActorID:   userID,
		TweetID:   &tweetID,
		CreatedAt: event.Timestamp,
	})
}

// notify 补全发起者用户名. 发起者已被删除时丢弃该通知
func (w *NotificationWorker) notify(ctx context.Context, recipientID uuid.UUID, n *models.Notification) error {
	actor, err := w.userRepo.GetByID(ctx, n.ActorID)
	if err != nil {
		return fmt.Errorf("failed to load actor: %w", err)
	}
	if actor == nil {
		w.logger.WithField("actor_id", n.ActorID).Warn("Actor no longer exists, dropping notification")
		return nil
	}
	n.ActorUsername = actor.Username

	if err := w.notifications.Notify(ctx, recipientID, n); err != nil {
		return err
	}

	w.logger.WithFields(logrus.Fields{
		"recipient_id": recipientID,
		"actor_id":     n.ActorID,
		"type":         n.Type,
	}).Info("Notification stored")

	return nil
}
