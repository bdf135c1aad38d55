package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/minitweet/minitweet/internal/models"
	"github.com/minitweet/minitweet/internal/repository"
	"github.com/minitweet/minitweet/internal/repository/testhelper"
	"github.com/minitweet/minitweet/pkg/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowService_FollowUnfollow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := testhelper.CreateUser(t, env.db, "alice")
	bob := testhelper.CreateUser(t, env.db, "bob")

	follow, err := env.follows.Follow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, follow.FollowerID)
	assert.Equal(t, bob.ID, follow.FolloweeID)

	following, err := env.follows.IsFollowing(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, following)

	followers, err := env.follows.CountFollowers(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), followers)

	t.Run("already following", func(t *testing.T) {
		_, err := env.follows.Follow(ctx, alice.ID, bob.ID)
		assert.ErrorIs(t, err, models.ErrAlreadyFollowing)

		followers, err := env.follows.CountFollowers(ctx, bob.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), followers)
	})

	require.NoError(t, env.follows.Unfollow(ctx, alice.ID, bob.ID))

	followers, err = env.follows.CountFollowers(ctx, bob.ID)
	require.NoError(t, err)
	assert.Zero(t, followers)

	t.Run("not following", func(t *testing.T) {
		err := env.follows.Unfollow(ctx, alice.ID, bob.ID)
		assert.ErrorIs(t, err, models.ErrNotFollowing)
		assert.ErrorIs(t, err, models.ErrConflict)
	})

	assert.Equal(t, []queue.EventType{queue.EventFollowCreated, queue.EventFollowDeleted}, env.publisher.types())
}

func TestFollowService_Rejects(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := testhelper.CreateUser(t, env.db, "alice")

	t.Run("self follow", func(t *testing.T) {
		_, err := env.follows.Follow(ctx, alice.ID, alice.ID)
		assert.ErrorIs(t, err, models.ErrSelfFollow)
		assert.ErrorIs(t, err, models.ErrValidation)

		count, err := env.follows.CountFollowing(ctx, alice.ID)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("self unfollow", func(t *testing.T) {
		assert.ErrorIs(t, env.follows.Unfollow(ctx, alice.ID, alice.ID), models.ErrSelfFollow)
	})

	t.Run("unknown followee", func(t *testing.T) {
		_, err := env.follows.Follow(ctx, alice.ID, uuid.New())
		assert.ErrorIs(t, err, models.ErrUserNotFound)
	})

	assert.Empty(t, env.publisher.types())
}

func TestFollowService_Lists(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := testhelper.CreateUser(t, env.db, "alice")
	bob := testhelper.CreateUser(t, env.db, "bob")
	carol := testhelper.CreateUser(t, env.db, "carol")

	_, err := env.follows.Follow(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	_, err = env.follows.Follow(ctx, carol.ID, alice.ID)
	require.NoError(t, err)

	followers, err := env.follows.ListFollowers(ctx, alice.ID, 0, 0)
	require.NoError(t, err)
	names := make([]string, 0, len(followers))
	for _, u := range followers {
		names = append(names, u.Username)
	}
	assert.ElementsMatch(t, []string{"bob", "carol"}, names)

	following, err := env.follows.ListFollowing(ctx, bob.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, "alice", following[0].Username)

	count, err := env.follows.CountFollowing(ctx, alice.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestFollowService_FollowLosesInsertRace(t *testing.T) {
	env := newRacingEnv(t)
	ctx := context.Background()

	alice := testhelper.CreateUser(t, env.db, "alice")
	bob := testhelper.CreateUser(t, env.db, "bob")
	insertBeforeCreate(t, env.db.DB, "follows", &models.Follow{FollowerID: alice.ID, FolloweeID: bob.ID})

	_, err := env.follows.Follow(ctx, alice.ID, bob.ID)
	assert.ErrorIs(t, err, models.ErrAlreadyFollowing)

	followers, err := env.follows.CountFollowers(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), followers)
	assert.Empty(t, env.publisher.types())
}

func TestFollowService_FollowConcurrent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	const n = 20

	alice := testhelper.CreateUser(t, env.db, "alice")
	bob := testhelper.CreateUser(t, env.db, "bob")

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.follows.Follow(ctx, alice.ID, bob.ID)
		}(i)
	}
	wg.Wait()

	ok, already := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, models.ErrAlreadyFollowing):
			already++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, already)

	followers, err := env.follows.CountFollowers(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), followers)
	assert.Equal(t, []queue.EventType{queue.EventFollowCreated}, env.publisher.types())
}

func TestFollowService_DeletedFollower(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := testhelper.CreateUser(t, env.db, "alice")
	bob := testhelper.CreateUser(t, env.db, "bob")
	require.NoError(t, repository.NewUserRepository(env.db.DB).Delete(ctx, alice.ID))

	_, err := env.follows.Follow(ctx, alice.ID, bob.ID)
	assert.ErrorIs(t, err, models.ErrUserNotFound)

	followers, err := env.follows.CountFollowers(ctx, bob.ID)
	require.NoError(t, err)
	assert.Zero(t, followers)
}
