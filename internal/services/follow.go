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

type FollowService struct {
	userRepo   *repository.UserRepository
	followRepo *repository.FollowRepository
	producer   EventPublisher
	logger     *logger.Logger
}

func NewFollowService(userRepo *repository.UserRepository, followRepo *repository.FollowRepository, producer EventPublisher, logger *logger.Logger) *FollowService {
	return &FollowService{
		userRepo:   userRepo,
		followRepo: followRepo,
		producer:   producer,
		logger:     logger,
	}
}

func (s *FollowService) Follow(ctx context.Context, followerID, followeeID uuid.UUID) (*models.Follow, error) {
	if followerID == followeeID {
		return nil, models.ErrSelfFollow
	}

	// 令牌有效但用户已被删除
	follower, err := s.userRepo.GetByID(ctx, followerID)
	if err != nil {
		return nil, err
	}
	if follower == nil {
		return nil, models.ErrUserNotFound
	}

	followee, err := s.userRepo.GetByID(ctx, followeeID)
	if err != nil {
		return nil, err
	}
	if followee == nil {
		return nil, models.ErrUserNotFound
	}

	existing, err := s.followRepo.Get(ctx, followerID, followeeID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.ErrAlreadyFollowing
	}

	follow := &models.Follow{
		FollowerID: followerID,
		FolloweeID: followeeID,
	}
	if err := s.followRepo.Create(ctx, follow); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, models.ErrAlreadyFollowing
		}
		return nil, err
	}

	publishEvent(ctx, s.producer, s.logger, followerID.String(), queue.EventFollowCreated, queue.FollowEventData{
		FollowerID: followerID.String(),
		FolloweeID: followeeID.String(),
	})

	s.logger.WithFields(logrus.Fields{
		"follower_id": followerID,
		"followee_id": followeeID,
	}).Info("User followed successfully")

	return follow, nil
}

func (s *FollowService) Unfollow(ctx context.Context, followerID, followeeID uuid.UUID) error {
	if followerID == followeeID {
		return models.ErrSelfFollow
	}

	removed, err := s.followRepo.Delete(ctx, followerID, followeeID)
	if err != nil {
		return err
	}
	if removed == 0 {
		return models.ErrNotFollowing
	}

	publishEvent(ctx, s.producer, s.logger, followerID.String(), queue.EventFollowDeleted, queue.FollowEventData{
		FollowerID: followerID.String(),
		FolloweeID: followeeID.String(),
	})

	s.logger.WithFields(logrus.Fields{
		"follower_id": followerID,
		"followee_id": followeeID,
	}).Info("User unfollowed successfully")

	return nil
}

func (s *FollowService) ListFollowers(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*models.User, error) {
	return s.followRepo.GetFollowers(ctx, userID, offset, limit)
}

func (s *FollowService) ListFollowing(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*models.User, error) {
	return s.followRepo.GetFollowing(ctx, userID, offset, limit)
}

func (s *FollowService) IsFollowing(ctx context.Context, followerID, followeeID uuid.UUID) (bool, error) {
	return s.followRepo.IsFollowing(ctx, followerID, followeeID)
}

func (s *FollowService) CountFollowers(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.followRepo.CountFollowers(ctx, userID)
}

func (s *FollowService) CountFollowing(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.followRepo.CountFollowing(ctx, userID)
}
