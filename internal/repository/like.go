package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/minitweet/minitweet/internal/models"
	"gorm.io/gorm"
)

type LikeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) *LikeRepository {
	return &LikeRepository{db: db}
}

func (r *LikeRepository) Create(ctx context.Context, like *models.Like) error {
	if err := r.db.WithContext(ctx).Create(like).Error; err != nil {
		return fmt.Errorf("failed to create like: %w", err)
	}
	return nil
}

// Delete 返回实际删除的行数
func (r *LikeRepository) Delete(ctx context.Context, userID, tweetID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND tweet_id = ?", userID, tweetID).
		Delete(&models.Like{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete like: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *LikeRepository) Get(ctx context.Context, userID, tweetID uuid.UUID) (*models.Like, error) {
	var like models.Like
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND tweet_id = ?", userID, tweetID).
		First(&like).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get like: %w", err)
	}
	return &like, nil
}

func (r *LikeRepository) CountByTweetID(ctx context.Context, tweetID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("tweet_id = ?", tweetID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count likes: %w", err)
	}
	return count, nil
}

type tweetLikeCount struct {
	TweetID uuid.UUID
	Count   int64
}

// CountByTweetIDs 一次查询返回多条推文的点赞数, 没有点赞的推文不在结果中
func (r *LikeRepository) CountByTweetIDs(ctx context.Context, tweetIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(tweetIDs))
	if len(tweetIDs) == 0 {
		return counts, nil
	}

	var rows []tweetLikeCount
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Select("tweet_id, COUNT(*) AS count").
		Where("tweet_id IN ?", tweetIDs).
		Group("tweet_id").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count likes by tweets: %w", err)
	}

	for _, row := range rows {
		counts[row.TweetID] = row.Count
	}
	return counts, nil
}

// LikedTweetIDs userID 点赞过的推文; tweetIDs 非空时只在这些推文中查找
func (r *LikeRepository) LikedTweetIDs(ctx context.Context, userID uuid.UUID, tweetIDs []uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	db := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ?", userID)
	if len(tweetIDs) > 0 {
		db = db.Where("tweet_id IN ?", tweetIDs)
	}
	if err := db.Pluck("tweet_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to get liked tweets: %w", err)
	}
	return ids, nil
}
