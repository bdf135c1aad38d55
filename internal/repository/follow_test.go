package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/minitweet/minitweet/internal/models"
	"github.com/minitweet/minitweet/internal/repository"
	"github.com/minitweet/minitweet/internal/repository/testhelper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowRepository(t *testing.T) {
	db := testhelper.NewDatabase(t)
	repo := repository.NewFollowRepository(db.DB)
	ctx := context.Background()

	alice := testhelper.CreateUser(t, db, "alice")
	bob := testhelper.CreateUser(t, db, "bob")
	carol := testhelper.CreateUser(t, db, "carol")

	base := time.Now().Add(-time.Hour)

	t.Run("Create", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, &models.Follow{FollowerID: alice.ID, FolloweeID: bob.ID, CreatedAt: base}))
		require.NoError(t, repo.Create(ctx, &models.Follow{FollowerID: carol.ID, FolloweeID: bob.ID, CreatedAt: base.Add(time.Minute)}))
		require.NoError(t, repo.Create(ctx, &models.Follow{FollowerID: alice.ID, FolloweeID: carol.ID, CreatedAt: base.Add(2 * time.Minute)}))
	})

	t.Run("UniquePair", func(t *testing.T) {
		err := repo.Create(ctx, &models.Follow{FollowerID: alice.ID, FolloweeID: bob.ID})
		require.Error(t, err)
		assert.True(t, repository.IsDuplicateKey(err))

		count, err := repo.CountFollowers(ctx, bob.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("IsFollowing", func(t *testing.T) {
		ok, err := repo.IsFollowing(ctx, alice.ID, bob.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = repo.IsFollowing(ctx, bob.ID, alice.ID)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Lists", func(t *testing.T) {
		followers, err := repo.GetFollowers(ctx, bob.ID, 0, 0)
		require.NoError(t, err)
		require.Len(t, followers, 2)
		assert.Equal(t, "carol", followers[0].Username)
		assert.Equal(t, "alice", followers[1].Username)

		following, err := repo.GetFollowing(ctx, alice.ID, 0, 0)
		require.NoError(t, err)
		require.Len(t, following, 2)
		assert.Equal(t, "carol", following[0].Username)
		assert.Equal(t, "bob", following[1].Username)

		page, err := repo.GetFollowing(ctx, alice.ID, 1, 1)
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, "bob", page[0].Username)
	})

	t.Run("Delete", func(t *testing.T) {
		n, err := repo.Delete(ctx, alice.ID, bob.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		n, err = repo.Delete(ctx, alice.ID, bob.ID)
		require.NoError(t, err)
		assert.Zero(t, n)

		existing, err := repo.Get(ctx, alice.ID, bob.ID)
		require.NoError(t, err)
		assert.Nil(t, existing)

		// 取消关注后可以重新关注
		require.NoError(t, repo.Create(ctx, &models.Follow{FollowerID: alice.ID, FolloweeID: bob.ID}))
	})
}
