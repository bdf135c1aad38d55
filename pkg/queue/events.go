package queue

import (
	"encoding/json"
	"fmt"
	"time"
)

type EventType string

const (
	EventUserCreated   EventType = "user_created"
	EventFollowCreated EventType = "follow_created"
	EventFollowDeleted EventType = "follow_deleted"
	EventTweetCreated  EventType = "tweet_created"
	EventTweetDeleted  EventType = "tweet_deleted"
	EventLikeCreated   EventType = "like_created"
	EventLikeDeleted   EventType = "like_deleted"
)

type Event struct {
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

func NewEvent(eventType EventType, data interface{}) Event {
	return Event{
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

type UserEventData struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

type FollowEventData struct {
	FollowerID string `json:"follower_id"`
	FolloweeID string `json:"followee_id"`
}

type TweetEventData struct {
	TweetID string `json:"tweet_id"`
	UserID  string `json:"user_id"`
	Content string `json:"content,omitempty"`
}

type LikeEventData struct {
	UserID   string `json:"user_id"`
	TweetID  string `json:"tweet_id"`
	AuthorID string `json:"author_id"`
}

// rawEvent 解码时先保留 data 原文, 按 type 再解一次
type rawEvent struct {
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// DecodeEvent 把消息体解码为 Event, Data 为对应类型的结构体指针.
// 未知类型保留 json.RawMessage.
func DecodeEvent(body []byte) (Event, error) {
	var raw rawEvent
	if err := json.Unmarshal(body, &raw); err != nil {
		return Event{}, fmt.Errorf("failed to unmarshal event: %w", err)
	}

	var data interface{}
	switch raw.Type {
	case EventUserCreated:
		data = &UserEventData{}
	case EventFollowCreated, EventFollowDeleted:
		data = &FollowEventData{}
	case EventTweetCreated, EventTweetDeleted:
		data = &TweetEventData{}
	case EventLikeCreated, EventLikeDeleted:
		data = &LikeEventData{}
	default:
		return Event{Type: raw.Type, Timestamp: raw.Timestamp, Data: raw.Data}, nil
	}

	if len(raw.Data) > 0 {
		if err := json.Unmarshal(raw.Data, data); err != nil {
			return Event{}, fmt.Errorf("failed to unmarshal %s data: %w", raw.Type, err)
		}
	}
	return Event{Type: raw.Type, Timestamp: raw.Timestamp, Data: data}, nil
}
