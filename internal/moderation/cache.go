package moderation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/eima40x4c/CampusCard/internal/platform/redis"
)

// WordCache caches the banned word list between scans.
type WordCache interface {
	Get(ctx context.Context) (words []string, ok bool, err error)
	Set(ctx context.Context, words []string) error
	Invalidate(ctx context.Context) error
}

const (
	cacheKey = "moderation:banned_words"
	cacheTTL = 5 * time.Minute
)

// RedisWordCache stores the word list as a JSON array under a single key.
type RedisWordCache struct {
	client *redis.Client
}

func NewRedisWordCache(client *redis.Client) *RedisWordCache {
	return &RedisWordCache{client: client}
}

func (c *RedisWordCache) Get(ctx context.Context) ([]string, bool, error) {
	raw, err := c.client.Get(ctx, cacheKey).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get banned word cache: %w", err)
	}
	var words []string
	if err := json.Unmarshal(raw, &words); err != nil {
		return nil, false, fmt.Errorf("decode banned word cache: %w", err)
	}
	return words, true, nil
}

func (c *RedisWordCache) Set(ctx context.Context, words []string) error {
	raw, err := json.Marshal(words)
	if err != nil {
		return fmt.Errorf("encode banned word cache: %w", err)
	}
	if err := c.client.Set(ctx, cacheKey, raw, cacheTTL).Err(); err != nil {
		return fmt.Errorf("set banned word cache: %w", err)
	}
	return nil
}

func (c *RedisWordCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, cacheKey).Err(); err != nil {
		return fmt.Errorf("invalidate banned word cache: %w", err)
	}
	return nil
}
