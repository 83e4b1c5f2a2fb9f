package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/stress-monitor/esms/internal/model"
)

const (
	keyPrefix = "esms:reading:"
	recentKey = "esms:readings:recent"

	// recentLimit bounds the recent-readings list length in Redis.
	recentLimit = 100
)

// Mirror replicates recorded readings into Redis with a bounded TTL. It
// satisfies the sensor.Recorder interface; failures are logged, never
// propagated, because recording must not fail.
type Mirror struct {
	client *redis.Client
	ttl    time.Duration
	log    *slog.Logger
}

// NewMirror connects to Redis at addr and verifies the connection. The TTL
// should match the store's retention window.
func NewMirror(addr string, ttl time.Duration, log *slog.Logger) (*Mirror, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}

	if log == nil {
		log = slog.Default()
	}
	if ttl <= 0 {
		ttl = time.Hour
	}

	return &Mirror{client: client, ttl: ttl, log: log}, nil
}

// Record mirrors one reading: a keyed entry with TTL plus membership in the
// bounded recent list.
func (m *Mirror) Record(r model.Reading) {
	data, err := json.Marshal(r)
	if err != nil {
		m.log.Warn("failed to marshal reading for mirror", slog.Any("error", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	key := keyPrefix + r.ID.String()
	pipe := m.client.Pipeline()
	pipe.Set(ctx, key, data, m.ttl)
	pipe.LPush(ctx, recentKey, key)
	pipe.LTrim(ctx, recentKey, 0, recentLimit-1)
	pipe.Expire(ctx, recentKey, m.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		m.log.Warn("failed to mirror reading to Redis",
			slog.String("reading_id", r.ID.String()), slog.Any("error", err))
	}
}

// RecentKeys returns the most recent mirrored reading keys, newest first.
func (m *Mirror) RecentKeys(ctx context.Context, n int) ([]string, error) {
	if n <= 0 || n > recentLimit {
		n = recentLimit
	}
	return m.client.LRange(ctx, recentKey, 0, int64(n-1)).Result()
}

// Close releases the Redis connection pool.
func (m *Mirror) Close() error {
	return m.client.Close()
}
