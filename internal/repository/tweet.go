package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/minitweet/minitweet/internal/models"
	"gorm.io/gorm"
)

type TweetRepository struct {
	db *gorm.DB
}

func NewTweetRepository(db *gorm.DB) *TweetRepository {
	return &TweetRepository{db: db}
}

func (r *TweetRepository) Create(ctx context.Context, tweet *models.Tweet) error {
	if err := r.db.WithContext(ctx).Create(tweet).Error; err != nil {
		return fmt.Errorf("failed to create tweet: %w", err)
	}
	return nil
}

func (r *TweetRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Tweet, error) {
	var tweet models.Tweet
	if err := r.db.WithContext(ctx).
		Preload("User").
		First(&tweet, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get tweet: %w", err)
	}
	return &tweet, nil
}

// ListRecent 按创建时间倒序, limit <= 0 返回全部
func (r *TweetRepository) ListRecent(ctx context.Context, limit int) ([]*models.Tweet, error) {
	var tweets []*models.Tweet
	db := r.db.WithContext(ctx).
		Preload("User").
		Order("created_at DESC")
	if err := paginate(db, 0, limit).Find(&tweets).Error; err != nil {
		return nil, fmt.Errorf("failed to list recent tweets: %w", err)
	}
	return tweets, nil
}

func (r *TweetRepository) GetByUserID(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*models.Tweet, error) {
	var tweets []*models.Tweet
	db := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if err := paginate(db, offset, limit).Find(&tweets).Error; err != nil {
		return nil, fmt.Errorf("failed to get tweets by user: %w", err)
	}
	return tweets, nil
}

func (r *TweetRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Tweet{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count tweets: %w", err)
	}
	return count, nil
}

// Delete 同一事务内先删除点赞再删除推文
func (r *TweetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tweet_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return fmt.Errorf("failed to delete likes: %w", err)
		}
		if err := tx.Delete(&models.Tweet{}, "id = ?", id).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete tweet: %w", err)
	}
	return nil
}
