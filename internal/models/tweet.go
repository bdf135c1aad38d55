package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TweetMaxLength 按字符(rune)计算
const TweetMaxLength = 150

type Tweet struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	Content   string    `json:"content" gorm:"size:150;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`

	User User `json:"user" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

type Like struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_like_user_tweet"`
	TweetID   uuid.UUID `json:"tweet_id" gorm:"type:uuid;not null;uniqueIndex:idx_like_user_tweet;index"`
	CreatedAt time.Time `json:"created_at"`

	User  User  `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Tweet Tweet `json:"-" gorm:"foreignKey:TweetID;constraint:OnDelete:CASCADE"`
}

func (t *Tweet) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

func (l *Like) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

func (Tweet) TableName() string {
	return "tweets"
}

func (Like) TableName() string {
	return "likes"
}
