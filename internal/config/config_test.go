package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFile_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
jwt:
  secret: "test-secret"
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 10, cfg.Tweets.RecentLimit)
	assert.Equal(t, 24*time.Hour, cfg.JWT.ExpireTime)
	assert.Equal(t, "minitweet", cfg.JWT.Issuer)
	assert.Equal(t, 100, cfg.Notifications.MaxPerUser)
	assert.False(t, cfg.Kafka.Enabled)
}

func TestLoadFile_ReadsValues(t *testing.T) {
	path := writeConfig(t, `
server:
  port: ":9090"
  read_timeout: 5s
database:
  driver: sqlite
  path: /tmp/test.db
tweets:
  recent_limit: 0
jwt:
  secret: "s3cret"
  expire_time: 1h
kafka:
  enabled: true
  brokers: ["k1:9092", "k2:9092"]
  topics:
    events: "events"
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "file:/tmp/test.db?_foreign_keys=on", cfg.Database.DSN())
	assert.Equal(t, 0, cfg.Tweets.RecentLimit)
	assert.Equal(t, time.Hour, cfg.JWT.ExpireTime)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "events", cfg.Kafka.Topics.Events)
}

func TestLoadFile_EnvOverride(t *testing.T) {
	path := writeConfig(t, `
jwt:
  secret: "from-file"
`)
	t.Setenv("MINITWEET_JWT_SECRET", "from-env")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
}

func TestLoadFile_Invalid(t *testing.T) {
	t.Run("missing secret", func(t *testing.T) {
		_, err := LoadFile(writeConfig(t, "server:\n  port: \":1\"\n"))
		assert.Error(t, err)
	})

	t.Run("unknown driver", func(t *testing.T) {
		_, err := LoadFile(writeConfig(t, "jwt:\n  secret: x\ndatabase:\n  driver: mysql\n"))
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}

func TestDSN_Postgres(t *testing.T) {
	cfg := DatabaseConfig{Driver: "postgres", Host: "db", Port: 5432, User: "u", Password: "p", DBName: "n", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", cfg.DSN())
}
