package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/minitweet/minitweet/internal/models"
)

type Profile struct {
	User           *models.User `json:"user"`
	Tweets         []TweetView  `json:"tweets"`
	FollowersCount int64        `json:"followers_count"`
	FollowingCount int64        `json:"following_count"`
	IsFollowing    bool         `json:"is_following"`
	IsSelf         bool         `json:"is_self"`
}

type ProfileService struct {
	users    *UserService
	follows  *FollowService
	tweets   *TweetService
	timeline *TimelineService
}

func NewProfileService(users *UserService, follows *FollowService, tweets *TweetService, timeline *TimelineService) *ProfileService {
	return &ProfileService{
		users:    users,
		follows:  follows,
		tweets:   tweets,
		timeline: timeline,
	}
}

// View 返回用户的全部推文和关注统计
func (s *ProfileService) View(ctx context.Context, viewerID uuid.UUID, username string) (*Profile, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	tweets, err := s.tweets.ListByAuthor(ctx, user.ID, 0, 0)
	if err != nil {
		return nil, err
	}
	views, err := s.timeline.decorate(ctx, viewerID, tweets)
	if err != nil {
		return nil, err
	}

	followers, err := s.follows.CountFollowers(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	following, err := s.follows.CountFollowing(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	profile := &Profile{
		User:           user,
		Tweets:         views,
		FollowersCount: followers,
		FollowingCount: following,
		IsSelf:         user.ID == viewerID,
	}
	if !profile.IsSelf {
		profile.IsFollowing, err = s.follows.IsFollowing(ctx, viewerID, user.ID)
		if err != nil {
			return nil, err
		}
	}
	return profile, nil
}

func (s *ProfileService) Follow(ctx context.Context, viewerID uuid.UUID, username string) (*models.Follow, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.follows.Follow(ctx, viewerID, user.ID)
}

func (s *ProfileService) Unfollow(ctx context.Context, viewerID uuid.UUID, username string) error {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return err
	}
	return s.follows.Unfollow(ctx, viewerID, user.ID)
}

func (s *ProfileService) Followers(ctx context.Context, username string, offset, limit int) ([]*models.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.follows.ListFollowers(ctx, user.ID, offset, limit)
}

func (s *ProfileService) Following(ctx context.Context, username string, offset, limit int) ([]*models.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.follows.ListFollowing(ctx, user.ID, offset, limit)
}
