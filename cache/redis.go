package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"portal-cms/config"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects to Redis and pings it once.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

type redisDraftCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisDraftCache stores drafts as JSON values that expire after ttl.
func NewRedisDraftCache(client *redis.Client, ttl time.Duration) DraftCache {
	if ttl <= 0 {
		ttl = DefaultDraftTTL
	}
	return &redisDraftCache{client: client, ttl: ttl}
}

func (c *redisDraftCache) Get(ctx context.Context, key string) (*Draft, error) {
	data, err := c.client.Get(ctx, draftKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrDraftNotFound
	}
	if err != nil {
		return nil, err
	}

	var draft Draft
	if err := json.Unmarshal(data, &draft); err != nil {
		return nil, fmt.Errorf("decode draft %s: %w", key, err)
	}
	return &draft, nil
}

func (c *redisDraftCache) Put(ctx context.Context, key string, draft *Draft) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("encode draft %s: %w", key, err)
	}
	return c.client.Set(ctx, draftKey(key), data, c.ttl).Err()
}

func (c *redisDraftCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, draftKey(key)).Err()
}
