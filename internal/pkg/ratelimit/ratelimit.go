// Package ratelimit counts user actions per fixed window in Redis.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Result of a single Allow call.
type Result struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
}

type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// INCR then set the TTL on the first hit of the window. Returns count and
// the remaining TTL in milliseconds.
var fixedWindow = redis.NewScript(`
	local count = redis.call('INCR', KEYS[1])
	if count == 1 then
		redis.call('PEXPIRE', KEYS[1], ARGV[1])
	end
	local ttl = redis.call('PTTL', KEYS[1])
	return { count, ttl }
`)

type RedisLimiter struct {
	rdb    *redis.Client
	limit  int64
	window time.Duration
	prefix string
}

func NewRedisLimiter(rdb *redis.Client, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		rdb:    rdb,
		limit:  int64(limit),
		window: window,
		prefix: "estatebot:rl:",
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	vals, err := fixedWindow.Run(ctx, l.rdb, []string{l.prefix + key}, l.window.Milliseconds()).Int64Slice()
	if err != nil {
		return Result{Allowed: true}, fmt.Errorf("rate limit script: %w", err)
	}
	if len(vals) != 2 {
		return Result{Allowed: true}, fmt.Errorf("rate limit script: unexpected result %v", vals)
	}

	count, ttlMs := vals[0], vals[1]
	res := Result{
		Allowed:   count <= l.limit,
		Remaining: max(l.limit-count, 0),
	}
	if !res.Allowed && ttlMs > 0 {
		res.RetryAfter = time.Duration(ttlMs) * time.Millisecond
	}
	return res, nil
}

// NewRedisClient pings the server and returns nil when it is unreachable, so
// callers can run without rate limiting.
func NewRedisClient(ctx context.Context, addr, password string, db int) *redis.Client {
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil
	}
	return client
}
