package services

import (
	"context"
	"testing"
	"time"

	"github.com/minitweet/minitweet/internal/models"
	"github.com/minitweet/minitweet/internal/repository/testhelper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileService_View(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := testhelper.CreateUser(t, env.db, "alice")
	bob := testhelper.CreateUser(t, env.db, "bob")
	testhelper.CreateTweet(t, env.db, bob, "older", time.Now().Add(-time.Minute))
	newer := testhelper.CreateTweet(t, env.db, bob, "newer", time.Now())
	testhelper.CreateTweet(t, env.db, alice, "not bob's", time.Now())

	_, _, err := env.likes.Like(ctx, alice.ID, newer.ID)
	require.NoError(t, err)

	profile, err := env.profiles.View(ctx, alice.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, bob.ID, profile.User.ID)
	require.Len(t, profile.Tweets, 2)
	assert.Equal(t, "newer", profile.Tweets[0].Content)
	assert.True(t, profile.Tweets[0].Liked)
	assert.False(t, profile.IsFollowing)
	assert.False(t, profile.IsSelf)

	_, err = env.profiles.Follow(ctx, alice.ID, "bob")
	require.NoError(t, err)

	profile, err = env.profiles.View(ctx, alice.ID, "bob")
	require.NoError(t, err)
	assert.True(t, profile.IsFollowing)
	assert.Equal(t, int64(1), profile.FollowersCount)
	assert.Zero(t, profile.FollowingCount)

	self, err := env.profiles.View(ctx, alice.ID, "alice")
	require.NoError(t, err)
	assert.True(t, self.IsSelf)
	assert.Equal(t, int64(1), self.FollowingCount)

	_, err = env.profiles.View(ctx, alice.ID, "nobody")
	assert.ErrorIs(t, err, models.ErrUserNotFound)
}

func TestProfileService_FollowByUsername(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := testhelper.CreateUser(t, env.db, "alice")
	testhelper.CreateUser(t, env.db, "bob")

	_, err := env.profiles.Follow(ctx, alice.ID, "alice")
	assert.ErrorIs(t, err, models.ErrSelfFollow)

	_, err = env.profiles.Follow(ctx, alice.ID, "nobody")
	assert.ErrorIs(t, err, models.ErrUserNotFound)

	_, err = env.profiles.Follow(ctx, alice.ID, "bob")
	require.NoError(t, err)

	followers, err := env.profiles.Followers(ctx, "bob", 0, 0)
	require.NoError(t, err)
	require.Len(t, followers, 1)
	assert.Equal(t, "alice", followers[0].Username)

	following, err := env.profiles.Following(ctx, "alice", 0, 0)
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, "bob", following[0].Username)

	require.NoError(t, env.profiles.Unfollow(ctx, alice.ID, "bob"))
	assert.ErrorIs(t, env.profiles.Unfollow(ctx, alice.ID, "bob"), models.ErrNotFollowing)

	_, err = env.profiles.Followers(ctx, "nobody", 0, 0)
	assert.ErrorIs(t, err, models.ErrUserNotFound)
}
