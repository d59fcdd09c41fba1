package ratelimiter

import "time"

// Result contains the result of a rate limit check.
type Result struct {
	Limit     int       // Maximum tokens (bucket capacity)
	Remaining int       // Tokens remaining, negative when denied
	ResetAt   time.Time // Time when tokens will be refilled
}

// Allowed returns whether the request is allowed based on remaining tokens.
func (r *Result) Allowed() bool {
	return r.Remaining >= 0
}

// RetryAfter returns how long to wait before the next request.
// Returns 0 if the request was allowed.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed() {
		return 0
	}
	return max(time.Until(r.ResetAt), 0)
}

// Config defines the token bucket configuration.
type Config struct {
	Capacity       int           `env:"RATE_LIMIT_CAPACITY" envDefault:"20"`        // burst size
	RefillRate     int           `env:"RATE_LIMIT_REFILL_RATE" envDefault:"5"`      // tokens added per interval
	RefillInterval time.Duration `env:"RATE_LIMIT_REFILL_INTERVAL" envDefault:"1m"` // how often tokens are added
}
