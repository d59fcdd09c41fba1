package logger

import (
	"log/slog"
	"strconv"
	"time"
)

// Group creates a slog group attribute from the provided attributes.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Errors groups multiple non-nil errors under the key "errors".
// If all errors are nil, it returns an empty Attr.
func Errors(errs ...error) slog.Attr {
	as := make([]slog.Attr, 0, len(errs))
	for i, err := range errs {
		if err != nil {
			as = append(as, slog.Any(strconv.Itoa(i), err))
		}
	}
	if len(as) == 0 {
		return slog.Attr{}
	}
	return slog.Attr{Key: "errors", Value: slog.GroupValue(as...)}
}

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// UserID records the account owner (the identity provider UID) under the key
// "user_id". Empty values yield an empty Attr.
func UserID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("user_id", id)
}

// CustomerID records a billing customer identifier under "customer_id".
func CustomerID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("customer_id", id)
}

// SubscriptionID records a billing subscription identifier under "subscription_id".
func SubscriptionID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("subscription_id", id)
}

// Tier records a subscription tier under "tier".
func Tier(tier string) slog.Attr {
	return slog.String("tier", tier)
}

// RequestID records the inbound request identifier under the key "request_id".
// If id is nil, it returns an empty Attr.
func RequestID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("request_id", id)
}

// StripeRequestID records the identifier the payment API assigned to a request.
func StripeRequestID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("stripe_request_id", id)
}

// IdempotencyKey records the idempotency key of an outbound call.
func IdempotencyKey(key string) slog.Attr {
	if key == "" {
		return slog.Attr{}
	}
	return slog.String("idempotency_key", key)
}

// EventType records the event type under the key "event_type".
func EventType(eventType string) slog.Attr {
	return slog.String("event_type", eventType)
}

// EventID records the webhook event identifier under the key "event_id".
func EventID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("event_id", id)
}

// Attempt records the 1-based attempt number of a retried call.
func Attempt(n int) slog.Attr {
	return slog.Int("attempt", n)
}

// StatusCode records an HTTP status. Zero (no response) yields an empty Attr.
func StatusCode(code int) slog.Attr {
	if code == 0 {
		return slog.Attr{}
	}
	return slog.Int("status_code", code)
}

func Method(m string) slog.Attr {
	return slog.String("method", m)
}

func Path(p string) slog.Attr {
	return slog.String("path", p)
}

// Duration records a duration under the key "duration".
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Provider records an identity or billing provider name.
func Provider(name string) slog.Attr {
	return slog.String("provider", name)
}
