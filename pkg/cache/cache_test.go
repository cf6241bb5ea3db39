package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type projection struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client, mr
}

func TestCacheSetAndGet(t *testing.T) {
	client, _ := setupTestRedis(t)
	c := New(client, 5*time.Minute)

	in := projection{ID: "u1", Email: "a@x.com"}
	require.NoError(t, c.SetJSON(context.Background(), UserKey("u1"), in))

	var out projection
	ok, err := c.GetJSON(context.Background(), UserKey("u1"), &out)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, in, out)
}

func TestCacheMiss(t *testing.T) {
	client, _ := setupTestRedis(t)
	c := New(client, 5*time.Minute)

	var out projection
	ok, err := c.GetJSON(context.Background(), UserKey("absent"), &out)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCacheEntryExpiresAfterTTL(t *testing.T) {
	client, mr := setupTestRedis(t)
	c := New(client, 2*time.Second)

	require.NoError(t, c.SetJSON(context.Background(), AccountKey("u1"), projection{ID: "a1"}))

	mr.FastForward(3 * time.Second)

	var out projection
	ok, err := c.GetJSON(context.Background(), AccountKey("u1"), &out)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCacheInvalidate(t *testing.T) {
	client, _ := setupTestRedis(t)
	c := New(client, 5*time.Minute)

	ctx := context.Background()
	require.NoError(t, c.SetJSON(ctx, UserKey("u1"), projection{ID: "u1"}))
	require.NoError(t, c.SetJSON(ctx, UserEmailKey("a@x.com"), projection{ID: "u1"}))

	require.NoError(t, c.Invalidate(ctx, UserKey("u1"), UserEmailKey("a@x.com")))

	var out projection
	ok, err := c.GetJSON(ctx, UserKey("u1"), &out)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = c.GetJSON(ctx, UserEmailKey("a@x.com"), &out)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCacheInvalidateNoKeys(t *testing.T) {
	client, _ := setupTestRedis(t)
	c := New(client, 5*time.Minute)

	require.NoError(t, c.Invalidate(context.Background()))
}

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, "user:u1", UserKey("u1"))
	assert.Equal(t, "user:email:a@x.com", UserEmailKey("a@x.com"))
	assert.Equal(t, "account:u1", AccountKey("u1"))
}
