package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/minitweet/minitweet/internal/models"
	"github.com/minitweet/minitweet/internal/repository"
	"github.com/minitweet/minitweet/pkg/logger"
	"github.com/minitweet/minitweet/pkg/queue"
	"github.com/sirupsen/logrus"
)

type LikeService struct {
	userRepo  *repository.UserRepository
	tweetRepo *repository.TweetRepository
	likeRepo  *repository.LikeRepository
	producer  EventPublisher
	logger    *logger.Logger
}

func NewLikeService(userRepo *repository.UserRepository, tweetRepo *repository.TweetRepository, likeRepo *repository.LikeRepository, producer EventPublisher, logger *logger.Logger) *LikeService {
	return &LikeService{
		userRepo:  userRepo,
		tweetRepo: tweetRepo,
		likeRepo:  likeRepo,
		producer:  producer,
		logger:    logger,
	}
}

// Like 已点赞时返回已有记录, created 为 false
func (s *LikeService) Like(ctx context.Context, userID, tweetID uuid.UUID) (*models.Like, bool, error) {
	tweet, err := s.getTweet(ctx, tweetID)
	if err != nil {
		return nil, false, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	if user == nil {
		return nil, false, models.ErrUserNotFound
	}

	existing, err := s.likeRepo.Get(ctx, userID, tweetID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	like := &models.Like{
		UserID:  userID,
		TweetID: tweetID,
	}
	if err := s.likeRepo.Create(ctx, like); err != nil {
		if !repository.IsDuplicateKey(err) {
			return nil, false, err
		}
		// 并发点赞, 另一个请求已经写入
		existing, err := s.likeRepo.Get(ctx, userID, tweetID)
		if err != nil {
			return nil, false, err
		}
		if existing == nil {
			return nil, false, models.ErrTweetNotFound
		}
		return existing, false, nil
	}

	publishEvent(ctx, s.producer, s.logger, userID.String(), queue.EventLikeCreated, queue.LikeEventData{
		UserID:   userID.String(),
		TweetID:  tweetID.String(),
		AuthorID: tweet.UserID.String(),
	})

	s.logger.WithFields(logrus.Fields{
		"user_id":  userID,
		"tweet_id": tweetID,
	}).Info("Tweet liked successfully")

	return like, true, nil
}

// Unlike 没有点赞记录时不报错, removed 为 false
func (s *LikeService) Unlike(ctx context.Context, userID, tweetID uuid.UUID) (bool, error) {
	tweet, err := s.getTweet(ctx, tweetID)
	if err != nil {
		return false, err
	}

	n, err := s.likeRepo.Delete(ctx, userID, tweetID)
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}

	publishEvent(ctx, s.producer, s.logger, userID.String(), queue.EventLikeDeleted, queue.LikeEventData{
		UserID:   userID.String(),
		TweetID:  tweetID.String(),
		AuthorID: tweet.UserID.String(),
	})

	s.logger.WithFields(logrus.Fields{
		"user_id":  userID,
		"tweet_id": tweetID,
	}).Info("Tweet unliked successfully")

	return true, nil
}

func (s *LikeService) CountLikes(ctx context.Context, tweetID uuid.UUID) (int64, error) {
	return s.likeRepo.CountByTweetID(ctx, tweetID)
}

func (s *LikeService) CountLikesFor(ctx context.Context, tweetIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	return s.likeRepo.CountByTweetIDs(ctx, tweetIDs)
}

// LikedTweetIDs 不传 tweetIDs 时返回用户点赞过的全部推文
func (s *LikeService) LikedTweetIDs(ctx context.Context, userID uuid.UUID, tweetIDs ...uuid.UUID) (map[uuid.UUID]bool, error) {
	ids, err := s.likeRepo.LikedTweetIDs(ctx, userID, tweetIDs)
	if err != nil {
		return nil, err
	}

	liked := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		liked[id] = true
	}
	return liked, nil
}

func (s *LikeService) getTweet(ctx context.Context, tweetID uuid.UUID) (*models.Tweet, error) {
	tweet, err := s.tweetRepo.GetByID(ctx, tweetID)
	if err != nil {
		return nil, err
	}
	if tweet == nil {
		return nil, models.ErrTweetNotFound
	}
	return tweet, nil
}
