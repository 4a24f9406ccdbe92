// internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sirupsen/logrus"
)

// Config is the process configuration shared by cmd/server and cmd/historian.
type Config struct {
	Port      string `env:"PORT" envDefault:"8080"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	// RedisAddr left empty disables the action log.
	RedisAddr  string        `env:"REDIS_ADDR"`
	RedisDB    int           `env:"REDIS_DB" envDefault:"0"`
	QueueName  string        `env:"HISTORIAN_QUEUE_NAME" envDefault:"flipseven_actions"`
	BatchSize  int           `env:"HISTORIAN_BATCH_SIZE" envDefault:"20"`
	FlushEvery time.Duration `env:"HISTORIAN_FLUSH_INTERVAL" envDefault:"500ms"`

	Postgres Postgres

	TokenExpire   time.Duration `env:"TOKEN_EXPIRE_TIME" envDefault:"0"`
	IdleTimeout   time.Duration `env:"SESSION_IDLE_TIMEOUT" envDefault:"30m"`
	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" envDefault:"1m"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
}

// Postgres holds the connection settings. An empty Host disables persistence.
type Postgres struct {
	User     string `env:"POSTGRES_USER"`
	Password string `env:"POSTGRES_PASSWORD"`
	Host     string `env:"PG_HOST"`
	Port     int    `env:"PG_PORT" envDefault:"5432"`
	Database string `env:"PG_DATABASE"`
}

// Enabled reports whether a database host was configured.
func (p Postgres) Enabled() bool {
	return p.Host != ""
}

// URL builds the pgx connection string.
func (p Postgres) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s", p.User, p.Password, p.Host, p.Port, p.Database)
}

// Load parses Config from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.BatchSize < 1 {
		return Config{}, fmt.Errorf("HISTORIAN_BATCH_SIZE must be positive, got %d", cfg.BatchSize)
	}
	if cfg.FlushEvery <= 0 {
		return Config{}, fmt.Errorf("HISTORIAN_FLUSH_INTERVAL must be positive, got %s", cfg.FlushEvery)
	}
	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + strings.TrimPrefix(c.Port, ":")
}

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func (c Config) NewLogger() (*logrus.Logger, error) {
	logger := logrus.New()
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	logger.SetLevel(level)
	switch strings.ToLower(c.LogFormat) {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	return logger, nil
}

// OriginPatterns returns the websocket origin allowlist, nil meaning any origin.
func (c Config) OriginPatterns() []string {
	for _, o := range c.AllowedOrigins {
		if o == "*" {
			return nil
		}
	}
	return c.AllowedOrigins
}
