package reports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache wraps Redis based report caching with per-corporation versioning.
// Invalidate bumps a corporation's version so every key built afterwards
// misses; stale entries age out via TTL.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache instantiates the cache helper. A nil client degrades to a
// pass-through that always calls the loader.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// ErrSkipCache is returned by a loader to serve its value without storing
// it, e.g. when the value was built from degraded sources and must not be
// pinned for the full TTL.
var ErrSkipCache = errors.New("cache: skip store")

func versionKey(corporationUUID string) string {
	return "reports:version:" + corporationUUID
}

// Version returns a corporation's current cache version, initialising when
// missing.
func (c *Cache) Version(ctx context.Context, corporationUUID string) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, versionKey(corporationUUID)).Int64()
	if err == redis.Nil {
		if err := c.client.Set(ctx, versionKey(corporationUUID), 1, 0).Err(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	if ver <= 0 {
		ver = 1
		if err := c.client.Set(ctx, versionKey(corporationUUID), ver, 0).Err(); err != nil {
			return 0, err
		}
	}
	return ver, nil
}

// BuildKey composes a cache key scoped to a corporation's current version.
func (c *Cache) BuildKey(ctx context.Context, corporationUUID string, parts ...string) (string, error) {
	joined := strings.Join(append([]string{"reports", corporationUUID}, parts...), ":")
	if c == nil || c.client == nil {
		return joined, nil
	}
	ver, err := c.Version(ctx, corporationUUID)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%d", joined, ver), nil
}

// FetchJSON loads a cached value or populates it using the loader.
func (c *Cache) FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error {
	if loader == nil {
		return errors.New("cache: loader required")
	}
	if c == nil || c.client == nil {
		value, err := loader(ctx)
		if err != nil && !errors.Is(err, ErrSkipCache) {
			return err
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return err
		}
		return json.Unmarshal(raw, dest)
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		return json.Unmarshal(payload, dest)
	}
	if err != redis.Nil {
		return err
	}
	value, err := loader(ctx)
	skipStore := errors.Is(err, ErrSkipCache)
	if err != nil && !skipStore {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if !skipStore {
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			return err
		}
	}
	return json.Unmarshal(raw, dest)
}

// Invalidate bumps the corporation's version, orphaning its cached reports.
func (c *Cache) Invalidate(ctx context.Context, corporationUUID string) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Incr(ctx, versionKey(corporationUUID)).Err()
}
