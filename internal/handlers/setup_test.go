package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/minitweet/minitweet/internal/auth"
	"github.com/minitweet/minitweet/internal/config"
	"github.com/minitweet/minitweet/internal/middleware"
	"github.com/minitweet/minitweet/internal/repository"
	"github.com/minitweet/minitweet/internal/repository/testhelper"
	"github.com/minitweet/minitweet/internal/services"
	"github.com/minitweet/minitweet/pkg/logger"
	"github.com/minitweet/minitweet/pkg/queue"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testCookieName = "minitweet_session"

type fakeRedis struct {
	mu    sync.Mutex
	keys  map[string]bool
	zsets map[string][]redis.Z
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{keys: make(map[string]bool), zsets: make(map[string][]redis.Z)}
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys[key] = true
	return nil
}

func (f *fakeRedis) Exists(ctx context.Context, keys ...string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, k := range keys {
		if f.keys[k] {
			n++
		}
	}
	return n, nil
}

func (f *fakeRedis) ZAdd(ctx context.Context, key string, members ...*redis.Z) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, z := range members {
		f.zsets[key] = append(f.zsets[key], *z)
	}
	sort.SliceStable(f.zsets[key], func(i, j int) bool { return f.zsets[key][i].Score > f.zsets[key][j].Score })
	return nil
}

func (f *fakeRedis) ZRevRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for i, z := range f.zsets[key] {
		if stop >= 0 && int64(i) > stop {
			break
		}
		out = append(out, z.Member.(string))
	}
	return out, nil
}

func (f *fakeRedis) ZRemRangeByRank(ctx context.Context, key string, start, stop int64) error {
	return nil
}

func (f *fakeRedis) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return nil
}

type testServer struct {
	router        *gin.Engine
	db            *repository.Database
	notifications *services.NotificationService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelper.NewDatabase(t)
	log := logger.NewNopLogger()
	publisher := queue.NopPublisher{}
	store := newFakeRedis()

	jwtCfg := &config.JWTConfig{Secret: "test-secret", Issuer: "minitweet", ExpireTime: time.Hour, CookieName: testCookieName}

	userRepo := repository.NewUserRepository(db.DB)
	followRepo := repository.NewFollowRepository(db.DB)
	tweetRepo := repository.NewTweetRepository(db.DB)
	likeRepo := repository.NewLikeRepository(db.DB)

	users, err := services.NewUserService(userRepo, publisher, &config.AuthConfig{BcryptCost: bcrypt.MinCost}, log)
	require.NoError(t, err)
	follows := services.NewFollowService(userRepo, followRepo, publisher, log)
	tweets := services.NewTweetService(userRepo, tweetRepo, publisher, log)
	likes := services.NewLikeService(userRepo, tweetRepo, likeRepo, publisher, log)
	timeline := services.NewTimelineService(tweets, likes, &config.TweetsConfig{RecentLimit: 10})
	profiles := services.NewProfileService(users, follows, tweets, timeline)
	notifications := services.NewNotificationService(store, &config.NotificationsConfig{MaxPerUser: 100, TTL: time.Hour}, log)

	tokens := auth.NewTokenManager(jwtCfg)
	revoker := auth.NewRevoker(store)
	accounts := services.NewAccountService(users, tokens, revoker, log)

	router := NewRouter(log, middleware.NewJWTAuth(tokens, revoker, jwtCfg.CookieName), Handlers{
		Account:      NewAccountHandler(accounts, jwtCfg, &config.ServerConfig{Mode: "test"}, log),
		Profile:      NewProfileHandler(profiles, log),
		Tweet:        NewTweetHandler(timeline, log),
		Notification: NewNotificationHandler(notifications, log),
	})

	return &testServer{router: router, db: db, notifications: notifications}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// signUp 注册并返回令牌
func (s *testServer) signUp(t *testing.T, username string) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/v1/accounts/signup", "", map[string]string{
		"username":              username,
		"email":                 username + "@example.com",
		"password":              "correct horse battery",
		"password_confirmation": "correct horse battery",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Token
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
