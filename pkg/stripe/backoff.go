package stripe

import (
	"math"
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"
)

const (
	defaultInitialDelay = 500 * time.Millisecond
	defaultMaxDelay     = 5 * time.Second

	// maxRetryAfter caps how long a server Retry-After hint may hold a call.
	maxRetryAfter = 60 * time.Second
)

// Backoff computes the wait before a retry.
// Zero fields fall back to 0.5s initial and 5s max delay.
type Backoff struct {
	InitialDelay time.Duration
	MaxDelay     time.Duration

	// Jitter returns a value in [0, 1). Nil uses math/rand.
	Jitter func() float64
}

// DefaultBackoff returns the client's standard retry schedule.
func DefaultBackoff() Backoff {
	return Backoff{InitialDelay: defaultInitialDelay, MaxDelay: defaultMaxDelay}
}

// NextInterval returns the delay before retry number attempt (1 for the first
// retry). The exponential delay is capped at MaxDelay, scaled by a jitter factor
// in [0.5, 1) and floored at InitialDelay. A usable retryAfter raises the result.
func (b Backoff) NextInterval(attempt int, retryAfter time.Duration) time.Duration {
	if attempt <= 0 {
		attempt = 1
	}

	initial := b.InitialDelay
	if initial <= 0 {
		initial = defaultInitialDelay
	}
	maxDelay := b.MaxDelay
	if maxDelay <= 0 {
		maxDelay = defaultMaxDelay
	}
	if maxDelay < initial {
		maxDelay = initial
	}

	jitter := rand.Float64
	if b.Jitter != nil {
		jitter = b.Jitter
	}

	delay := math.Min(float64(initial)*math.Pow(2, float64(attempt-1)), float64(maxDelay))
	delay *= 0.5 * (1 + jitter())
	delay = math.Max(float64(initial), delay)

	if retryAfter > 0 && retryAfter <= maxRetryAfter {
		delay = math.Max(delay, float64(retryAfter))
	}

	return time.Duration(delay)
}

// retryAfter reads an integer-seconds Retry-After header. Dates and garbage
// yield zero.
func retryAfter(h http.Header) time.Duration {
	v := h.Get("Retry-After")
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
