package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestRedisLimiter_FixedWindow(t *testing.T) {
	mr, rdb := newTestRedis(t)
	l := NewRedisLimiter(rdb, 3, time.Hour)
	ctx := context.Background()

	for want := int64(2); want >= 0; want-- {
		res, err := l.Allow(ctx, "contact:1")
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, want, res.Remaining)
		assert.Zero(t, res.RetryAfter)
	}

	res, err := l.Allow(ctx, "contact:1")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Zero(t, res.Remaining)
	assert.Greater(t, res.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, res.RetryAfter, time.Hour)

	assert.True(t, mr.Exists("estatebot:rl:contact:1"))
	assert.Equal(t, time.Hour, mr.TTL("estatebot:rl:contact:1"))

	// other keys keep their own budget
	res, err = l.Allow(ctx, "rating:1")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, int64(2), res.Remaining)

	mr.FastForward(time.Hour + time.Second)

	res, err = l.Allow(ctx, "contact:1")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, int64(2), res.Remaining)
}

func TestRedisLimiter_FailsOpen(t *testing.T) {
	mr, rdb := newTestRedis(t)
	l := NewRedisLimiter(rdb, 1, time.Minute)
	mr.Close()

	res, err := l.Allow(context.Background(), "chat:1")
	require.Error(t, err)
	assert.True(t, res.Allowed)
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	client := NewRedisClient(ctx, mr.Addr(), "", 0)
	require.NotNil(t, client)
	require.NoError(t, client.Close())

	assert.Nil(t, NewRedisClient(ctx, "", "", 0))

	addr := mr.Addr()
	mr.Close()
	assert.Nil(t, NewRedisClient(ctx, addr, "", 0))
}
