//go:build integration

package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/dmitrymomot/masky/pkg/ratelimiter"
	"github.com/dmitrymomot/masky/pkg/redis"
)

func setupRedis(t *testing.T, ctx context.Context) redis.Config {
	t.Helper()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err, "failed to start redis container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate redis container: %v", err)
		}
	})

	url, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	return redis.Config{
		ConnectionURL:  url,
		RetryAttempts:  5,
		RetryInterval:  500 * time.Millisecond,
		ConnectTimeout: 30 * time.Second,
	}
}

func TestEventDeduper_Integration(t *testing.T) {
	ctx := context.Background()
	cfg := setupRedis(t, ctx)

	client, err := redis.Connect(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, redis.Healthcheck(client)(ctx))

	d := redis.NewEventDeduper(client, "it", time.Minute)

	seen, err := d.MarkProcessed(ctx, "evt_1")
	require.NoError(t, err)
	assert.False(t, seen)

	seen, err = d.MarkProcessed(ctx, "evt_1")
	require.NoError(t, err)
	assert.True(t, seen)

	ttl, err := client.TTL(ctx, "it:stripe:event:evt_1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 50*time.Second)

	require.NoError(t, d.Forget(ctx, "evt_1"))
	exists, err := client.Exists(ctx, "it:stripe:event:evt_1").Result()
	require.NoError(t, err)
	assert.Zero(t, exists)
}

func TestRateLimitStore_Integration(t *testing.T) {
	ctx := context.Background()
	cfg := setupRedis(t, ctx)

	client, err := redis.Connect(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	bucket, err := ratelimiter.NewBucket(redis.NewRateLimitStore(client, "it"), ratelimiter.Config{
		Capacity:       2,
		RefillRate:     1,
		RefillInterval: time.Hour,
	})
	require.NoError(t, err)

	for i := range 2 {
		res, err := bucket.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, res.Allowed(), "request %d", i)
		assert.Equal(t, 1-i, res.Remaining)
	}

	res, err := bucket.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, res.Allowed())
	assert.Greater(t, res.RetryAfter(), 59*time.Minute)

	other, err := bucket.Allow(ctx, "5.6.7.8")
	require.NoError(t, err)
	assert.True(t, other.Allowed())

	ttl, err := client.PTTL(ctx, "it:ratelimit:1.2.3.4").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Hour)

	require.NoError(t, bucket.Reset(ctx, "1.2.3.4"))
	res, err = bucket.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Remaining)
}
