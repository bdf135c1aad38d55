package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/minitweet/minitweet/internal/models"
	"github.com/minitweet/minitweet/internal/repository"
	"github.com/minitweet/minitweet/pkg/logger"
	"github.com/minitweet/minitweet/pkg/queue"
	"github.com/sirupsen/logrus"
)

type TweetService struct {
	userRepo  *repository.UserRepository
	tweetRepo *repository.TweetRepository
	producer  EventPublisher
	logger    *logger.Logger
}

func NewTweetService(userRepo *repository.UserRepository, tweetRepo *repository.TweetRepository, producer EventPublisher, logger *logger.Logger) *TweetService {
	return &TweetService{
		userRepo:  userRepo,
		tweetRepo: tweetRepo,
		producer:  producer,
		logger:    logger,
	}
}

// Create 内容去掉首尾空白后按字符计数, 必须在 1..TweetMaxLength 之间
func (s *TweetService) Create(ctx context.Context, authorID uuid.UUID, content string) (*models.Tweet, error) {
	content = strings.TrimSpace(content)
	if err := validateTweetContent(content); err != nil {
		return nil, err
	}

	author, err := s.userRepo.GetByID(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if author == nil {
		return nil, models.ErrUserNotFound
	}

	tweet := &models.Tweet{
		UserID:  authorID,
		Content: content,
	}
	if err := s.tweetRepo.Create(ctx, tweet); err != nil {
		return nil, err
	}
	tweet.User = *author

	publishEvent(ctx, s.producer, s.logger, authorID.String(), queue.EventTweetCreated, queue.TweetEventData{
		TweetID: tweet.ID.String(),
		UserID:  authorID.String(),
		Content: tweet.Content,
	})

	s.logger.WithFields(logrus.Fields{
		"tweet_id": tweet.ID,
		"user_id":  authorID,
	}).Info("Tweet created successfully")

	return tweet, nil
}

func validateTweetContent(content string) error {
	n := utf8.RuneCountInString(content)
	switch {
	case n == 0:
		return models.NewValidationError("content", "This field is required.")
	case n > models.TweetMaxLength:
		return models.NewValidationError("content",
			fmt.Sprintf("Ensure this value has at most %d characters (it has %d).", models.TweetMaxLength, n))
	}
	return nil
}

// Delete 只有作者本人可以删除
func (s *TweetService) Delete(ctx context.Context, tweetID, requesterID uuid.UUID) error {
	tweet, err := s.Get(ctx, tweetID)
	if err != nil {
		return err
	}
	if tweet.UserID != requesterID {
		return models.ErrForbidden
	}

	if err := s.tweetRepo.Delete(ctx, tweetID); err != nil {
		return err
	}

	publishEvent(ctx, s.producer, s.logger, requesterID.String(), queue.EventTweetDeleted, queue.TweetEventData{
		TweetID: tweetID.String(),
		UserID:  requesterID.String(),
	})

	s.logger.WithFields(logrus.Fields{
		"tweet_id": tweetID,
		"user_id":  requesterID,
	}).Info("Tweet deleted successfully")

	return nil
}

func (s *TweetService) Get(ctx context.Context, tweetID uuid.UUID) (*models.Tweet, error) {
	tweet, err := s.tweetRepo.GetByID(ctx, tweetID)
	if err != nil {
		return nil, err
	}
	if tweet == nil {
		return nil, models.ErrTweetNotFound
	}
	return tweet, nil
}

// ListRecent limit <= 0 返回全部
func (s *TweetService) ListRecent(ctx context.Context, limit int) ([]*models.Tweet, error) {
	return s.tweetRepo.ListRecent(ctx, limit)
}

func (s *TweetService) ListByAuthor(ctx context.Context, authorID uuid.UUID, offset, limit int) ([]*models.Tweet, error) {
	return s.tweetRepo.GetByUserID(ctx, authorID, offset, limit)
}
