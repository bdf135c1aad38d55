package models

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationFollow NotificationType = "follow"
	NotificationLike   NotificationType = "like"
)

// Notification 保存在 redis 中, 不落库
type Notification struct {
	ID            uuid.UUID        `json:"id"`
	Type          NotificationType `json:"type"`
	ActorID       uuid.UUID        `json:"actor_id"`
	ActorUsername string           `json:"actor_username"`
	TweetID       *uuid.UUID       `json:"tweet_id,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}
