package config

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "flipseven_actions", cfg.QueueName)
	assert.Equal(t, 20, cfg.BatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.FlushEvery)
	assert.Equal(t, 30*time.Minute, cfg.IdleTimeout)
	assert.Equal(t, time.Minute, cfg.SweepInterval)
	assert.Zero(t, cfg.TokenExpire)
	assert.False(t, cfg.Postgres.Enabled())
	assert.Empty(t, cfg.RedisAddr)
	assert.Nil(t, cfg.OriginPatterns())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("PG_HOST", "db")
	t.Setenv("POSTGRES_USER", "flip")
	t.Setenv("POSTGRES_PASSWORD", "seven")
	t.Setenv("PG_DATABASE", "games")
	t.Setenv("TOKEN_EXPIRE_TIME", "72h")
	t.Setenv("ALLOWED_ORIGINS", "example.com,*.example.org")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Addr())
	assert.True(t, cfg.Postgres.Enabled())
	assert.Equal(t, "postgres://flip:seven@db:5432/games", cfg.Postgres.URL())
	assert.Equal(t, 72*time.Hour, cfg.TokenExpire)
	assert.Equal(t, []string{"example.com", "*.example.org"}, cfg.OriginPatterns())
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"bad duration", "SESSION_IDLE_TIMEOUT", "soon"},
		{"bad int", "REDIS_DB", "zero"},
		{"zero batch", "HISTORIAN_BATCH_SIZE", "0"},
		{"zero flush", "HISTORIAN_FLUSH_INTERVAL", "0s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestNewLogger(t *testing.T) {
	cfg := Config{LogLevel: "debug", LogFormat: "json"}
	logger, err := cfg.NewLogger()
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)

	_, err = Config{LogLevel: "loud", LogFormat: "text"}.NewLogger()
	assert.Error(t, err)
	_, err = Config{LogLevel: "info", LogFormat: "xml"}.NewLogger()
	assert.Error(t, err)
}
