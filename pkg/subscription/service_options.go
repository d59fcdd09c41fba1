package subscription

import (
	"context"
	"log/slog"
)

// ServiceOption configures a Service instance.
type ServiceOption func(*service)

// WithLogger sets the logger used for billing events.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDeduper enables skipping of redelivered webhook events.
// Without a deduper every delivery is applied.
func WithDeduper(d EventDeduper) ServiceOption {
	return func(s *service) {
		s.deduper = d
	}
}

// WithReturnURL sets the portal return URL used when a request names none.
func WithReturnURL(u string) ServiceOption {
	return func(s *service) {
		if u != "" {
			s.returnURL = u
		}
	}
}

// WithEventRecorder registers fn to be called once per webhook delivery
// that passed verification.
func WithEventRecorder(fn func(ctx context.Context, t EventType, o EventOutcome)) ServiceOption {
	return func(s *service) {
		s.onEvent = fn
	}
}
