package ratelimiter

import (
	"context"
	"time"
)

// Store keeps bucket state. The memory store serves a single instance;
// redis.RateLimitStore shares buckets across instances.
type Store interface {
	// ConsumeTokens refills the bucket for key, then takes tokens from it.
	// A negative remaining count means the request must be denied.
	ConsumeTokens(ctx context.Context, key string, tokens int, config Config) (remaining int, resetAt time.Time, err error)

	// Reset clears the rate limit state for the given key.
	Reset(ctx context.Context, key string) error
}

// Refill applies the refill rule shared by all stores: whole elapsed
// intervals add RefillRate tokens each, capped at Capacity. It returns the new
// token count and whether the refill clock advanced.
func Refill(tokens int, elapsed time.Duration, config Config) (int, bool) {
	intervals := int64(elapsed / config.RefillInterval)
	if intervals <= 0 {
		return tokens, false
	}
	maxIntervals := int64(config.Capacity/config.RefillRate + 1)
	added := int(min(intervals, maxIntervals)) * config.RefillRate
	return min(tokens+added, config.Capacity), true
}
