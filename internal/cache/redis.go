// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jason-s-yu/flipseven/internal/models"
	"github.com/redis/go-redis/v9"
)

// DefaultQueueName is the Redis list (queue) name for game action logs.
const DefaultQueueName = "flipseven_actions"

// Connect opens a Redis client and pings it before returning.
func Connect(ctx context.Context, addr string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// RedisSink pushes game actions onto a Redis list for the historian to drain.
type RedisSink struct {
	rdb   redis.Cmdable
	queue string
}

// NewRedisSink wraps rdb. An empty queue name falls back to DefaultQueueName.
func NewRedisSink(rdb redis.Cmdable, queue string) *RedisSink {
	if queue == "" {
		queue = DefaultQueueName
	}
	return &RedisSink{rdb: rdb, queue: queue}
}

// Queue is the list name records are pushed to.
func (s *RedisSink) Queue() string {
	return s.queue
}

// PublishGameAction serializes the given record to JSON, then pushes it to the Redis queue.
func (s *RedisSink) PublishGameAction(ctx context.Context, action models.GameAction) error {
	data, err := json.Marshal(action)
	if err != nil {
		return fmt.Errorf("failed to marshal GameAction: %w", err)
	}
	if err := s.rdb.RPush(ctx, s.queue, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", s.queue, err)
	}
	return nil
}
