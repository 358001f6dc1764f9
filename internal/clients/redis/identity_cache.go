package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/majorcompass-backend/internal/platform/logger"
	"github.com/yungbote/majorcompass-backend/internal/services"
)

type identityCache struct {
	log    *logger.Logger
	rdb    *goredis.Client
	prefix string
}

// NewIdentityCache connects to addr and returns a services.IdentityCache.
// Keys are namespaced under prefix ("majorcompass" when empty).
func NewIdentityCache(log *logger.Logger, addr, prefix string) (services.IdentityCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	if prefix = strings.TrimSpace(prefix); prefix == "" {
		prefix = "majorcompass"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &identityCache{
		log:    log.With("service", "RedisIdentityCache"),
		rdb:    rdb,
		prefix: prefix,
	}, nil
}

func (c *identityCache) identityKey(key string) string { return c.prefix + ":identity:" + key }
func (c *identityCache) revokedKey(key string) string  { return c.prefix + ":revoked:" + key }

func (c *identityCache) Get(ctx context.Context, key string) (*services.Identity, bool, error) {
	raw, err := c.rdb.Get(ctx, c.identityKey(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var id services.Identity
	if err := json.Unmarshal(raw, &id); err != nil {
		c.log.Warn("Dropping undecodable identity entry", "error", err)
		_ = c.rdb.Del(ctx, c.identityKey(key)).Err()
		return nil, false, nil
	}
	return &id, true, nil
}

func (c *identityCache) Set(ctx context.Context, key string, id *services.Identity, ttl time.Duration) error {
	if id == nil || ttl <= 0 {
		return nil
	}
	raw, err := json.Marshal(id)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.identityKey(key), raw, ttl).Err()
}

func (c *identityCache) Invalidate(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, c.identityKey(key)).Err()
}

func (c *identityCache) Revoke(ctx context.Context, key string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return c.rdb.Set(ctx, c.revokedKey(key), "1", ttl).Err()
}

func (c *identityCache) IsRevoked(ctx context.Context, key string) (bool, error) {
	n, err := c.rdb.Exists(ctx, c.revokedKey(key)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Close releases the underlying connection pool.
func (c *identityCache) Close() error { return c.rdb.Close() }
