package stripe

import (
	"sync"
	"time"
)

// CircuitState represents the current state of the circuit breaker.
type CircuitState int

const (
	CircuitClosed CircuitState = iota
	CircuitOpen
	CircuitHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreaker stops logical calls from reaching the API after consecutive
// terminal failures (exhausted retries or 5xx). Once the cool-down elapses it
// admits one probe at a time until enough probes succeed. A probe that never
// reports back frees its slot after another cool-down. Client errors (4xx) do
// not trip it.
// Safe for concurrent use.
type CircuitBreaker struct {
	mu sync.Mutex

	failureThreshold int
	successThreshold int
	coolDown         time.Duration
	now              func() time.Time

	state        CircuitState
	failures     int
	successes    int
	lastFailedAt time.Time
	probing      bool
	probeAt      time.Time
}

// NewCircuitBreaker creates a breaker. Non-positive arguments default to
// 5 failures, 1 success and 30s cool-down.
func NewCircuitBreaker(failureThreshold, successThreshold int, coolDown time.Duration) *CircuitBreaker {
	if failureThreshold <= 0 {
		failureThreshold = 5
	}
	if successThreshold <= 0 {
		successThreshold = 1
	}
	if coolDown <= 0 {
		coolDown = 30 * time.Second
	}
	return &CircuitBreaker{
		failureThreshold: failureThreshold,
		successThreshold: successThreshold,
		coolDown:         coolDown,
		now:              time.Now,
	}
}

// Allow reports whether a call may proceed, moving open to half-open after the
// cool-down. In half-open only the caller holding the probe slot proceeds.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	now := cb.now()
	switch cb.state {
	case CircuitOpen:
		if now.Sub(cb.lastFailedAt) < cb.coolDown {
			return false
		}
		cb.state = CircuitHalfOpen
		cb.successes = 0
	case CircuitHalfOpen:
		if cb.probing && now.Sub(cb.probeAt) < cb.coolDown {
			return false
		}
	default:
		return true
	}
	cb.probing = true
	cb.probeAt = now
	return true
}

func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.probing = false

	switch cb.state {
	case CircuitClosed:
		cb.failures = 0
	case CircuitHalfOpen:
		cb.successes++
		if cb.successes >= cb.successThreshold {
			cb.state = CircuitClosed
			cb.failures = 0
			cb.successes = 0
		}
	}
}

func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.lastFailedAt = cb.now()
	cb.probing = false

	switch cb.state {
	case CircuitClosed:
		cb.failures++
		if cb.failures >= cb.failureThreshold {
			cb.state = CircuitOpen
		}
	case CircuitHalfOpen:
		cb.state = CircuitOpen
		cb.successes = 0
	}
}

// State returns the current state without triggering transitions.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}
