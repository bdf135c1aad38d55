package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/minitweet/minitweet/internal/auth"
	"github.com/minitweet/minitweet/internal/config"
	"github.com/minitweet/minitweet/internal/repository"
	"github.com/minitweet/minitweet/internal/repository/testhelper"
	"github.com/minitweet/minitweet/pkg/logger"
	"github.com/minitweet/minitweet/pkg/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type publishedEvent struct {
	key   string
	event queue.Event
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, key string, value interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, publishedEvent{key: key, event: value.(queue.Event)})
	return nil
}

func (p *recordingPublisher) types() []queue.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]queue.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.event.Type)
	}
	return out
}

func (p *recordingPublisher) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}

// memoryRedis 实现通知和令牌吊销用到的 redis 命令
type memoryRedis struct {
	mu      sync.Mutex
	strings map[string]interface{}
	zsets   map[string][]redis.Z
	ttls    map[string]time.Duration
	err     error
}

func newMemoryRedis() *memoryRedis {
	return &memoryRedis{
		strings: make(map[string]interface{}),
		zsets:   make(map[string][]redis.Z),
		ttls:    make(map[string]time.Duration),
	}
}

func (m *memoryRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.strings[key] = value
	m.ttls[key] = expiration
	return nil
}

func (m *memoryRedis) Exists(ctx context.Context, keys ...string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	var n int64
	for _, k := range keys {
		if _, ok := m.strings[k]; ok {
			n++
		}
	}
	return n, nil
}

func (m *memoryRedis) ZAdd(ctx context.Context, key string, members ...*redis.Z) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for _, z := range members {
		m.zsets[key] = append(m.zsets[key], *z)
	}
	sort.SliceStable(m.zsets[key], func(i, j int) bool {
		return m.zsets[key][i].Score < m.zsets[key][j].Score
	})
	return nil
}

func (m *memoryRedis) ZRevRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	set := m.zsets[key]
	n := int64(len(set))
	if stop < 0 {
		stop = n + stop
	}
	if stop >= n {
		stop = n - 1
	}
	var out []string
	for i := start; i <= stop; i++ {
		out = append(out, set[n-1-i].Member.(string))
	}
	return out, nil
}

func (m *memoryRedis) ZRemRangeByRank(ctx context.Context, key string, start, stop int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	set := m.zsets[key]
	n := int64(len(set))
	if stop < 0 {
		stop = n + stop
	}
	if stop < start {
		return nil
	}
	m.zsets[key] = append([]redis.Z{}, set[stop+1:]...)
	return nil
}

func (m *memoryRedis) Expire(ctx context.Context, key string, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ttls[key] = expiration
	return nil
}

var errRedisDown = errors.New("redis: connection refused")

type testEnv struct {
	db            *repository.Database
	publisher     *recordingPublisher
	redis         *memoryRedis
	users         *UserService
	follows       *FollowService
	tweets        *TweetService
	likes         *LikeService
	timeline      *TimelineService
	profiles      *ProfileService
	accounts      *AccountService
	notifications *NotificationService
	tokens        *auth.TokenManager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testhelper.NewDatabase(t)
	return buildTestEnv(t, db, db.DB)
}

// newRacingEnv 仓库不开默认事务, 插入失败时抢先写入的冲突行不会被一起回滚
func newRacingEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testhelper.NewDatabase(t)
	return buildTestEnv(t, db, db.DB.Session(&gorm.Session{SkipDefaultTransaction: true}))
}

// insertBeforeCreate 在 table 的下一次插入之前先写入 conflict, 相当于另一个请求抢先一步
func insertBeforeCreate(t *testing.T, db *gorm.DB, table string, conflict interface{}) {
	t.Helper()
	fired := false
	err := db.Callback().Create().Before("gorm:create").Register("test:insert_before_create", func(tx *gorm.DB) {
		if fired || tx.Statement.Schema == nil || tx.Statement.Schema.Table != table {
			return
		}
		fired = true
		assert.NoError(t, tx.Session(&gorm.Session{NewDB: true}).Create(conflict).Error)
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.True(t, fired, "no insert into %s happened", table)
	})
}

func buildTestEnv(t *testing.T, db *repository.Database, gdb *gorm.DB) *testEnv {
	t.Helper()

	log := logger.NewNopLogger()
	publisher := &recordingPublisher{}
	store := newMemoryRedis()

	userRepo := repository.NewUserRepository(gdb)
	followRepo := repository.NewFollowRepository(gdb)
	tweetRepo := repository.NewTweetRepository(gdb)
	likeRepo := repository.NewLikeRepository(gdb)

	users, err := NewUserService(userRepo, publisher, &config.AuthConfig{BcryptCost: bcrypt.MinCost}, log)
	require.NoError(t, err)

	follows := NewFollowService(userRepo, followRepo, publisher, log)
	tweets := NewTweetService(userRepo, tweetRepo, publisher, log)
	likes := NewLikeService(userRepo, tweetRepo, likeRepo, publisher, log)
	timeline := NewTimelineService(tweets, likes, &config.TweetsConfig{RecentLimit: 10})
	tokens := auth.NewTokenManager(&config.JWTConfig{Secret: "test-secret", Issuer: "minitweet", ExpireTime: time.Hour})

	return &testEnv{
		db:            db,
		publisher:     publisher,
		redis:         store,
		users:         users,
		follows:       follows,
		tweets:        tweets,
		likes:         likes,
		timeline:      timeline,
		profiles:      NewProfileService(users, follows, tweets, timeline),
		accounts:      NewAccountService(users, tokens, auth.NewRevoker(store), log),
		notifications: NewNotificationService(store, &config.NotificationsConfig{MaxPerUser: 3, TTL: time.Hour}, log),
		tokens:        tokens,
	}
}
