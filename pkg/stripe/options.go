package stripe

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/masky/pkg/transport"
)

// RequestEvent is emitted before every attempt.
type RequestEvent struct {
	Method         string
	Path           string
	IdempotencyKey string
	Attempt        int
}

// ResponseEvent is emitted once per attempt that produced a response. For
// streamed responses it fires when the stream is exhausted or closed.
type ResponseEvent struct {
	Method     string
	Path       string
	StatusCode int
	RequestID  string
	Elapsed    time.Duration
	Attempt    int
}

// RetryEvent is emitted when an attempt is going to be retried.
type RetryEvent struct {
	Method     string
	Path       string
	Attempt    int
	StatusCode int // zero when no response was obtained
	Delay      time.Duration
	Err        error
}

// Observer receives request lifecycle notifications for telemetry. Nil hooks
// are skipped; hooks must not block.
type Observer struct {
	OnRequest  func(ctx context.Context, ev RequestEvent)
	OnResponse func(ctx context.Context, ev ResponseEvent)
	OnRetry    func(ctx context.Context, ev RetryEvent)
}

// Option configures a Sender.
type Option func(*Sender)

// WithTransport replaces the net/http transport, mostly for tests.
func WithTransport(t transport.Transport) Option {
	return func(s *Sender) {
		if t != nil {
			s.transport = t
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Sender) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithObserver(o Observer) Option {
	return func(s *Sender) { s.observer = o }
}

// WithMaxRetries sets the default retry budget. Negative values are ignored.
func WithMaxRetries(n int) Option {
	return func(s *Sender) {
		if n >= 0 {
			s.maxRetries = n
		}
	}
}

// WithTimeout sets the default per-attempt timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Sender) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func WithBackoff(b Backoff) Option {
	return func(s *Sender) { s.backoff = b }
}

// WithCircuitBreaker fails calls fast with ErrCircuitOpen while the API keeps
// failing. Share one breaker per API host.
func WithCircuitBreaker(cb *CircuitBreaker) Option {
	return func(s *Sender) { s.breaker = cb }
}

// WithTelemetryBuffer overrides the metrics buffer capacity. Zero disables
// telemetry reporting.
func WithTelemetryBuffer(size int) Option {
	return func(s *Sender) {
		if size <= 0 {
			s.telemetry = nil
			return
		}
		s.telemetry = newTelemetryBuffer(size, s.logger)
	}
}

// WithIdempotencyKeyFunc replaces the idempotency key generator.
func WithIdempotencyKeyFunc(fn func() string) Option {
	return func(s *Sender) {
		if fn != nil {
			s.newIdempotencyKey = fn
		}
	}
}
