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

func newRedisCache(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedis(client, nil), srv
}

func TestRedis_SetThenGet(t *testing.T) {
	c, _ := newRedisCache(t)
	ctx := context.Background()

	c.Set(ctx, "screentime:7", "45m", time.Minute)

	v, found := c.Get(ctx, "screentime:7")
	require.True(t, found)
	assert.Equal(t, "45m", v)
}

func TestRedis_MissOnAbsentKey(t *testing.T) {
	c, _ := newRedisCache(t)

	_, found := c.Get(context.Background(), "nope")
	assert.False(t, found)
}

func TestRedis_EntryExpires(t *testing.T) {
	c, srv := newRedisCache(t)
	ctx := context.Background()

	c.Set(ctx, "k", "v", time.Minute)
	srv.FastForward(2 * time.Minute)

	_, found := c.Get(ctx, "k")
	assert.False(t, found)
}

func TestRedis_ErrorsReportMiss(t *testing.T) {
	c, srv := newRedisCache(t)
	srv.Close()

	_, found := c.Get(context.Background(), "k")
	assert.False(t, found)
}
