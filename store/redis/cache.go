/*
Package redis provides a Redis-backed guestcount.Cache for multi-node
deployments where the local cache layer must be shared between server
instances. Single-node setups keep the default in-process cache.

States are stored as JSON under a prefixed per-user key with a TTL;
expiry just means the next GetState reconciles from the remote record.
*/
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bloomday/pricing-engine/guestcount"
)

const defaultTTL = 12 * time.Hour

// Cache implements guestcount.Cache on a Redis client.
type Cache struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// Option configures a Cache.
type Option func(*Cache)

// WithPrefix overrides the key namespace (default "guestcount").
func WithPrefix(prefix string) Option {
	return func(c *Cache) { c.prefix = prefix }
}

// WithTTL overrides the entry lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) { c.ttl = ttl }
}

// NewCache wraps an existing client.
func NewCache(rdb *redis.Client, opts ...Option) *Cache {
	c := &Cache{rdb: rdb, prefix: "guestcount", ttl: defaultTTL}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewClient builds a Redis client from environment variables:
// REDIS_ADDR (host:port), REDIS_PASSWORD, REDIS_DB. Returns nil when
// REDIS_ADDR is unset or the server is unreachable; callers should then
// degrade to the in-process cache.
func NewClient(ctx context.Context) *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil
	}
	return client
}

func (c *Cache) key(userID string) string {
	return fmt.Sprintf("%s:%s", c.prefix, userID)
}

func (c *Cache) Get(ctx context.Context, userID string) (guestcount.State, bool, error) {
	raw, err := c.rdb.Get(ctx, c.key(userID)).Bytes()
	if err == redis.Nil {
		return guestcount.State{}, false, nil
	}
	if err != nil {
		return guestcount.State{}, false, err
	}
	var st guestcount.State
	if err := json.Unmarshal(raw, &st); err != nil {
		// A corrupt entry is a miss; the next write repairs it.
		return guestcount.State{}, false, nil
	}
	return st, true, nil
}

func (c *Cache) Put(ctx context.Context, userID string, state guestcount.State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.key(userID), raw, c.ttl).Err()
}

func (c *Cache) Drop(ctx context.Context, userID string) error {
	return c.rdb.Del(ctx, c.key(userID)).Err()
}
