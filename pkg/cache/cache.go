package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL bounds the staleness window of cached projections.
const DefaultTTL = 5 * time.Minute

// Key builders shared by the services. Values under these keys are JSON
// projections; the primary store stays the source of truth.
func UserKey(id string) string         { return "user:" + id }
func UserEmailKey(email string) string { return "user:email:" + email }
func AccountKey(userID string) string  { return "account:" + userID }

// NewClient initializes a redis client
func NewClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// Cache is a cache-aside layer over Redis with a fixed TTL. Entries are
// written on read-miss and deleted on writes, never updated in place.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func New(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{client: client, ttl: ttl}
}

// GetJSON reads key into dest. The first return is false on a miss.
func (c *Cache) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	b, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(b, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Cache) SetJSON(ctx context.Context, key string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, b, c.ttl).Err()
}

// Invalidate deletes keys. Write paths call this synchronously before
// returning, so a read immediately after a write never sees pre-write data.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
