// Package redis provides the Redis connection helpers, the Redis-backed
// webhook event deduplicator and a shared store for the rate limiter.
//
// Redis is optional. When REDIS_URL is empty the service runs without
// cross-instance deduplication, relies on webhook handlers being
// idempotent and keeps rate limit buckets per instance.
//
// # Usage
//
//	cfg := redis.Config{
//	    ConnectionURL:  "redis://localhost:6379/0",
//	    RetryAttempts:  3,
//	    RetryInterval:  5 * time.Second,
//	    ConnectTimeout: 30 * time.Second,
//	}
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	deduper := redis.NewEventDeduper(client, cfg.KeyPrefix, cfg.EventTTL)
//	svc := subscription.NewService(provider, store, subscription.WithDeduper(deduper))
//
// Share rate limit buckets across instances:
//
//	bucket, err := ratelimiter.NewBucket(redis.NewRateLimitStore(client, cfg.KeyPrefix), limits)
//
// Register a health-check in your readiness probe:
//
//	checker := redis.Healthcheck(client)
//	if err := checker(ctx); err != nil {
//	    // redis is not healthy
//	}
//
// # Errors
//
// Sentinel errors (ErrRedisNotReady, ErrDedupeFailed and friends) wrap the
// underlying go-redis errors using errors.Join.
package redis
