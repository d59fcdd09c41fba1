// Package ratelimiter provides token bucket rate limiting and HTTP middleware.
//
// A Bucket allows bursts up to Capacity and refills RefillRate tokens every
// RefillInterval. State lives in a Store: MemoryStore for a single instance,
// or redis.RateLimitStore when buckets must be shared.
//
//	store := ratelimiter.NewMemoryStore()
//	defer store.Close()
//
//	bucket, err := ratelimiter.NewBucket(store, ratelimiter.Config{
//		Capacity:       20,
//		RefillRate:     5,
//		RefillInterval: time.Minute,
//	})
//
//	r.With(ratelimiter.Middleware(bucket, ratelimiter.ClientIP)).Get("/twitch_oauth", h)
//
// The middleware sets X-RateLimit-Limit, X-RateLimit-Remaining and
// X-RateLimit-Reset on every limited response, and Retry-After when the
// request is denied. Use WithLimitHandler to render the 429 body.
package ratelimiter
