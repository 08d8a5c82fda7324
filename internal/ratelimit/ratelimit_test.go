package ratelimit

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiter_AllowReducesTokens(t *testing.T) {
	rdb := newMiniRedis(t)

	limiter := New(rdb, zerolog.Nop(), "test:", 10, 2)
	allowed, _, err := limiter.Allow(context.Background(), "basic")
	require.NoError(t, err)
	assert.True(t, allowed)

	tokensStr, err := rdb.HGet(context.Background(), "test:basic", "tokens").Result()
	require.NoError(t, err)
	tokens, err := strconv.ParseFloat(tokensStr, 64)
	require.NoError(t, err)
	assert.LessOrEqual(t, tokens, 1.1)
}

func TestLimiter_RejectsWhenEmpty(t *testing.T) {
	rdb := newMiniRedis(t)

	now := time.UnixMilli(1_700_000_000_000)
	limiter := New(rdb, zerolog.Nop(), "test:", 1, 2)
	limiter.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		allowed, _, err := limiter.Allow(context.Background(), "client")
		require.NoError(t, err)
		require.True(t, allowed)
	}

	allowed, wait, err := limiter.Allow(context.Background(), "client")
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, time.Second, wait)

	// other keys have their own bucket
	allowed, _, err = limiter.Allow(context.Background(), "other")
	require.NoError(t, err)
	assert.True(t, allowed)

	now = now.Add(time.Second)
	allowed, _, err = limiter.Allow(context.Background(), "client")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestLimiter_NilAndDisabled(t *testing.T) {
	var nilLimiter *Limiter
	allowed, _, err := nilLimiter.Allow(context.Background(), "x")
	require.NoError(t, err)
	assert.True(t, allowed)

	disabled := New(nil, zerolog.Nop(), "", 0, 5)
	allowed, _, err = disabled.Allow(context.Background(), "x")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestLimiter_RedisDown(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr(), MaxRetries: -1})
	t.Cleanup(func() { rdb.Close() })
	s.Close()

	limiter := New(rdb, zerolog.Nop(), "test:", 1, 1)
	_, _, err = limiter.Allow(context.Background(), "x")
	assert.Error(t, err)
}

func newMiniRedis(t *testing.T) *redis.Client {
	t.Helper()
	s, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(s.Close)
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return rdb
}
