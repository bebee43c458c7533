package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"foodgram/internal/models"
)

const (
	tagListKey         = "foodgram:tags:all"
	revokedTokenPrefix = "foodgram:tokens:revoked:"
)

// RedisTagCache is a Redis implementation of TagCache.
type RedisTagCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

// NewRedisTagCache creates a new RedisTagCache whose entries live for ttl.
func NewRedisTagCache(rdb redis.Cmdable, ttl time.Duration) *RedisTagCache {
	return &RedisTagCache{rdb: rdb, ttl: ttl}
}

// GetTags reads the cached tag list.
func (c *RedisTagCache) GetTags(ctx context.Context) ([]models.Tag, bool, error) {
	data, err := c.rdb.Get(ctx, tagListKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read tag cache: %w", err)
	}

	var tags []models.Tag
	if err := json.Unmarshal(data, &tags); err != nil {
		return nil, false, fmt.Errorf("failed to decode tag cache: %w", err)
	}
	return tags, true, nil
}

// SetTags stores the tag list.
func (c *RedisTagCache) SetTags(ctx context.Context, tags []models.Tag) error {
	data, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("failed to encode tag cache: %w", err)
	}
	if err := c.rdb.Set(ctx, tagListKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write tag cache: %w", err)
	}
	return nil
}

// Invalidate drops the cached tag list.
func (c *RedisTagCache) Invalidate(ctx context.Context) error {
	if err := c.rdb.Del(ctx, tagListKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate tag cache: %w", err)
	}
	return nil
}

// RedisTokenDenylist is a Redis implementation of TokenDenylist.
// Each revoked token is a key that expires together with the token.
type RedisTokenDenylist struct {
	rdb redis.Cmdable
}

// NewRedisTokenDenylist creates a new instance of RedisTokenDenylist.
func NewRedisTokenDenylist(rdb redis.Cmdable) *RedisTokenDenylist {
	return &RedisTokenDenylist{rdb: rdb}
}

// Revoke marks tokenID as revoked for ttl.
func (d *RedisTokenDenylist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := d.rdb.Set(ctx, revokedTokenPrefix+tokenID, 1, ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether tokenID is currently revoked.
func (d *RedisTokenDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := d.rdb.Exists(ctx, revokedTokenPrefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check revoked token: %w", err)
	}
	return n > 0, nil
}
