package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/minitweet/minitweet/internal/config"
	"github.com/minitweet/minitweet/internal/models"
)

// MaxPageSize 请求参数 limit 的上限
const MaxPageSize = 100

// TweetView 附带点赞数和当前用户是否已点赞
type TweetView struct {
	*models.Tweet
	LikeCount int64 `json:"like_count"`
	Liked     bool  `json:"liked"`
}

type LikeResult struct {
	TweetID    uuid.UUID `json:"tweet_id"`
	LikedCount int64     `json:"liked_count"`
	IsLiked    bool      `json:"is_liked"`
}

type TimelineService struct {
	tweets      *TweetService
	likes       *LikeService
	recentLimit int
}

func NewTimelineService(tweets *TweetService, likes *LikeService, cfg *config.TweetsConfig) *TimelineService {
	return &TimelineService{
		tweets:      tweets,
		likes:       likes,
		recentLimit: cfg.RecentLimit,
	}
}

// Home 全站最新推文. limit <= 0 时使用配置的默认值, 配置值 <= 0 表示不限制
func (s *TimelineService) Home(ctx context.Context, viewerID uuid.UUID, limit int) ([]TweetView, error) {
	if limit <= 0 {
		limit = s.recentLimit
	} else if limit > MaxPageSize {
		limit = MaxPageSize
	}

	tweets, err := s.tweets.ListRecent(ctx, limit)
	if err != nil {
		return nil, err
	}
	return s.decorate(ctx, viewerID, tweets)
}

func (s *TimelineService) ViewTweet(ctx context.Context, viewerID, tweetID uuid.UUID) (*TweetView, error) {
	tweet, err := s.tweets.Get(ctx, tweetID)
	if err != nil {
		return nil, err
	}

	views, err := s.decorate(ctx, viewerID, []*models.Tweet{tweet})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *TimelineService) CreateTweet(ctx context.Context, viewerID uuid.UUID, content string) (*models.Tweet, error) {
	return s.tweets.Create(ctx, viewerID, content)
}

func (s *TimelineService) DeleteTweet(ctx context.Context, viewerID, tweetID uuid.UUID) error {
	return s.tweets.Delete(ctx, tweetID, viewerID)
}

func (s *TimelineService) Like(ctx context.Context, viewerID, tweetID uuid.UUID) (*LikeResult, error) {
	if _, _, err := s.likes.Like(ctx, viewerID, tweetID); err != nil {
		return nil, err
	}
	return s.likeResult(ctx, tweetID, true)
}

func (s *TimelineService) Unlike(ctx context.Context, viewerID, tweetID uuid.UUID) (*LikeResult, error) {
	if _, err := s.likes.Unlike(ctx, viewerID, tweetID); err != nil {
		return nil, err
	}
	return s.likeResult(ctx, tweetID, false)
}

func (s *TimelineService) likeResult(ctx context.Context, tweetID uuid.UUID, liked bool) (*LikeResult, error) {
	count, err := s.likes.CountLikes(ctx, tweetID)
	if err != nil {
		return nil, err
	}
	return &LikeResult{
		TweetID:    tweetID,
		LikedCount: count,
		IsLiked:    liked,
	}, nil
}

// decorate 两次批量查询补齐点赞数和点赞状态
func (s *TimelineService) decorate(ctx context.Context, viewerID uuid.UUID, tweets []*models.Tweet) ([]TweetView, error) {
	views := make([]TweetView, 0, len(tweets))
	if len(tweets) == 0 {
		return views, nil
	}

	ids := make([]uuid.UUID, len(tweets))
	for i, tweet := range tweets {
		ids[i] = tweet.ID
	}

	counts, err := s.likes.CountLikesFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	liked, err := s.likes.LikedTweetIDs(ctx, viewerID, ids...)
	if err != nil {
		return nil, err
	}

	for _, tweet := range tweets {
		views = append(views, TweetView{
			Tweet:     tweet,
			LikeCount: counts[tweet.ID],
			Liked:     liked[tweet.ID],
		})
	}
	return views, nil
}
