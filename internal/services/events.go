package services

import (
	"context"

	"github.com/minitweet/minitweet/pkg/logger"
	"github.com/minitweet/minitweet/pkg/queue"
)

// EventPublisher 由 queue.KafkaProducer 或 queue.NopPublisher 实现
type EventPublisher interface {
	Publish(ctx context.Context, key string, value interface{}) error
}

// publishEvent 发布失败只记录日志, 不影响已经完成的写入
func publishEvent(ctx context.Context, publisher EventPublisher, log *logger.Logger, key string, eventType queue.EventType, data interface{}) {
	if err := publisher.Publish(ctx, key, queue.NewEvent(eventType, data)); err != nil {
		log.WithError(err).WithField("event_type", eventType).Error("Failed to publish event")
	}
}
