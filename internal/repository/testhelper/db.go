// Package testhelper 测试用的临时数据库
package testhelper

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/minitweet/minitweet/internal/config"
	"github.com/minitweet/minitweet/internal/models"
	"github.com/minitweet/minitweet/internal/repository"
	"github.com/stretchr/testify/require"
)

var dbSeq atomic.Int64

// NewDatabase 每次调用一个独立的、已迁移的内存 sqlite 库, 测试结束时关闭
func NewDatabase(t *testing.T) *repository.Database {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	cfg := &config.DatabaseConfig{
		Driver:   "sqlite",
		Path:     fmt.Sprintf("%s_%d?mode=memory&cache=shared", name, dbSeq.Add(1)),
		LogLevel: "silent",
	}

	db, err := repository.NewDatabase(cfg)
	require.NoError(t, err)

	// 内存库只在连接存活期间存在
	sqlDB, err := db.DB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate())

	t.Cleanup(func() {
		db.Close()
	})
	return db
}

// CreateUser 插入用户, 密码哈希为占位值
func CreateUser(t *testing.T, db *repository.Database, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "not-a-real-hash",
	}
	require.NoError(t, repository.NewUserRepository(db.DB).Create(context.Background(), user))
	return user
}

// CreateTweet 插入指定创建时间的推文
func CreateTweet(t *testing.T, db *repository.Database, author *models.User, content string, createdAt time.Time) *models.Tweet {
	t.Helper()
	tweet := &models.Tweet{
		UserID:    author.ID,
		Content:   content,
		CreatedAt: createdAt,
	}
	require.NoError(t, repository.NewTweetRepository(db.DB).Create(context.Background(), tweet))
	return tweet
}
