package authz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisPermissionCache stores permission sets as JSON arrays under "<prefix>:<admin id>".
type RedisPermissionCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisPermissionCache(client *redis.Client, prefix string, ttl time.Duration) *RedisPermissionCache {
	if prefix == "" {
		prefix = "drivelink:permissions"
	}
	return &RedisPermissionCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *RedisPermissionCache) Key(adminID int64) string {
	return fmt.Sprintf("%s:%d", c.prefix, adminID)
}

func (c *RedisPermissionCache) Get(ctx context.Context, adminID int64) ([]string, bool, error) {
	raw, err := c.client.Get(ctx, c.Key(adminID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get %s: %w", c.Key(adminID), err)
	}

	var perms []string
	if err := json.Unmarshal(raw, &perms); err != nil {
		return nil, false, fmt.Errorf("decode cached permissions: %w", err)
	}
	if perms == nil {
		perms = []string{}
	}
	return perms, true, nil
}

func (c *RedisPermissionCache) Set(ctx context.Context, adminID int64, perms []string, maxTTL time.Duration) error {
	data, err := json.Marshal(perms)
	if err != nil {
		return fmt.Errorf("marshal permissions: %w", err)
	}
	ttl := c.ttl
	if maxTTL > 0 && (ttl <= 0 || maxTTL < ttl) {
		ttl = maxTTL
	}
	return c.client.Set(ctx, c.Key(adminID), data, ttl).Err()
}

func (c *RedisPermissionCache) Invalidate(ctx context.Context, adminIDs ...int64) error {
	if len(adminIDs) == 0 {
		return nil
	}
	keys := make([]string, len(adminIDs))
	for i, id := range adminIDs {
		keys[i] = c.Key(id)
	}
	return c.client.Del(ctx, keys...).Err()
}
