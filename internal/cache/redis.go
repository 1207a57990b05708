package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/coursegate/internal/scorm"
	"github.com/redis/go-redis/v9"
)

// RedisSnapshotCache stores snapshots as JSON strings with a TTL.
type RedisSnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSnapshotCache connects to redisURL and verifies the connection.
func NewRedisSnapshotCache(ctx context.Context, redisURL string, ttl time.Duration) (*RedisSnapshotCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return NewRedisSnapshotCacheFromClient(client, ttl), nil
}

func NewRedisSnapshotCacheFromClient(client *redis.Client, ttl time.Duration) *RedisSnapshotCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisSnapshotCache{client: client, ttl: ttl}
}

func (c *RedisSnapshotCache) Put(ctx context.Context, t scorm.Target, snap scorm.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	return c.client.Set(ctx, Key(t), data, c.ttl).Err()
}

// Get returns nil, nil on a miss.
func (c *RedisSnapshotCache) Get(ctx context.Context, t scorm.Target) (*scorm.Snapshot, error) {
	val, err := c.client.Get(ctx, Key(t)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snap scorm.Snapshot
	if err := json.Unmarshal([]byte(val), &snap); err != nil {
		return nil, fmt.Errorf("decoding cached snapshot: %w", err)
	}
	return &snap, nil
}

func (c *RedisSnapshotCache) Delete(ctx context.Context, t scorm.Target) error {
	return c.client.Del(ctx, Key(t)).Err()
}

func (c *RedisSnapshotCache) Close() error {
	return c.client.Close()
}
