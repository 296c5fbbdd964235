package store

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Defrag-racing/DefragLive-WebSocket-Bridge-Server/internal/domain"
)

const redisKeyPrefix = "defrag_hub:"

// RedisStore keeps each record as a single Redis string value. Selected when
// REDIS_URL is configured; useful when the hub runs without a writable disk.
type RedisStore struct {
	rdb goredis.Cmdable
}

// NewRedisStore connects to Redis from a URL (e.g. "redis://localhost:6379")
// and verifies the connection.
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	rdb := goredis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &RedisStore{rdb: rdb}, nil
}

// NewRedisStoreFromClient wraps an existing client, mainly for tests.
func NewRedisStoreFromClient(rdb goredis.Cmdable) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Get(ctx context.Context, record string) ([]byte, error) {
	data, err := s.rdb.Get(ctx, redisKeyPrefix+record).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, domain.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read record %s: %w", record, err)
	}
	return data, nil
}

func (s *RedisStore) Set(ctx context.Context, record string, data []byte) error {
	if err := s.rdb.Set(ctx, redisKeyPrefix+record, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to write record %s: %w", record, err)
	}
	return nil
}

var _ domain.StateStore = (*RedisStore)(nil)
