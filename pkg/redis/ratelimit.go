package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/masky/pkg/ratelimiter"
)

// consumeScript refills and drains a token bucket stored as a hash with
// "tokens" and "last" (unix ms) fields. Refill mirrors ratelimiter.Refill.
// Returns {remaining, resetAtMs}.
var consumeScript = redis.NewScript(`
local capacity = tonumber(ARGV[1])
local rate = tonumber(ARGV[2])
local interval = tonumber(ARGV[3])
local cost = tonumber(ARGV[4])
local now = tonumber(ARGV[5])

local state = redis.call('HMGET', KEYS[1], 'tokens', 'last')
local tokens = tonumber(state[1])
local last = tonumber(state[2])
if tokens == nil or last == nil then
	tokens = capacity
	last = now
end

local intervals = math.floor((now - last) / interval)
if intervals > 0 then
	local cap = math.floor(capacity / rate) + 1
	tokens = math.min(capacity, tokens + math.min(intervals, cap) * rate)
	last = now
end

local remaining = tokens - cost
if remaining >= 0 then
	tokens = remaining
end

redis.call('HSET', KEYS[1], 'tokens', tokens, 'last', last)
redis.call('PEXPIRE', KEYS[1], (math.floor(capacity / rate) + 1) * interval)
return {remaining, last + interval}
`)

// scriptClient is the subset of go-redis commands the rate limit store needs.
type scriptClient interface {
	redis.Scripter
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RateLimitStore keeps token buckets in Redis so limits hold across
// instances. Each check is one atomic script call.
type RateLimitStore struct {
	client scriptClient
	prefix string
	now    func() time.Time
}

var _ ratelimiter.Store = (*RateLimitStore)(nil)

// NewRateLimitStore creates a store with keys "<prefix>:ratelimit:<key>".
func NewRateLimitStore(client scriptClient, prefix string) *RateLimitStore {
	if prefix == "" {
		prefix = "masky"
	}
	return &RateLimitStore{client: client, prefix: prefix, now: time.Now}
}

func (s *RateLimitStore) ConsumeTokens(ctx context.Context, key string, tokens int, cfg ratelimiter.Config) (int, time.Time, error) {
	vals, err := consumeScript.Run(ctx, s.client, []string{s.key(key)},
		cfg.Capacity,
		cfg.RefillRate,
		cfg.RefillInterval.Milliseconds(),
		tokens,
		s.now().UnixMilli(),
	).Int64Slice()
	if err != nil {
		return 0, time.Time{}, errors.Join(ratelimiter.ErrStoreUnavailable, err)
	}
	if len(vals) != 2 {
		return 0, time.Time{}, fmt.Errorf("%w: unexpected script reply %v", ratelimiter.ErrStoreUnavailable, vals)
	}
	return int(vals[0]), time.UnixMilli(vals[1]), nil
}

func (s *RateLimitStore) Reset(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return errors.Join(ratelimiter.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *RateLimitStore) key(k string) string {
	return s.prefix + ":ratelimit:" + k
}
