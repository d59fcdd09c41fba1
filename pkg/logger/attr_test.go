package logger_test

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/masky/pkg/logger"
)

func TestGroup(t *testing.T) {
	attr := logger.Group("req", slog.String("id", "1"), slog.Int("n", 2))
	require.Equal(t, "req", attr.Key)
	require.Equal(t, slog.KindGroup, attr.Value.Kind())
	g := attr.Value.Group()
	require.Len(t, g, 2)
	assert.Equal(t, "id", g[0].Key)
	assert.Equal(t, "n", g[1].Key)
}

func TestErrors(t *testing.T) {
	err1 := errors.New("first")
	err2 := errors.New("second")

	attr := logger.Errors(err1, nil, err2)
	require.Equal(t, "errors", attr.Key)
	require.Equal(t, slog.KindGroup, attr.Value.Kind())
	g := attr.Value.Group()
	require.Len(t, g, 2)
	assert.Equal(t, err1, g[0].Value.Any())
	assert.Equal(t, err2, g[1].Value.Any())

	empty := logger.Errors(nil)
	assert.True(t, empty.Equal(slog.Attr{}))
}

func TestError(t *testing.T) {
	err := errors.New("boom")
	attr := logger.Error(err)
	require.Equal(t, "error", attr.Key)
	assert.Equal(t, err, attr.Value.Any())

	empty := logger.Error(nil)
	assert.True(t, empty.Equal(slog.Attr{}))
}

func TestStringAttrs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		attr    func(string) slog.Attr
		key     string
		omitsOn bool // empty input yields an empty Attr
	}{
		{"user id", logger.UserID, "user_id", true},
		{"customer id", logger.CustomerID, "customer_id", true},
		{"subscription id", logger.SubscriptionID, "subscription_id", true},
		{"stripe request id", logger.StripeRequestID, "stripe_request_id", true},
		{"idempotency key", logger.IdempotencyKey, "idempotency_key", true},
		{"event id", logger.EventID, "event_id", true},
		{"event type", logger.EventType, "event_type", false},
		{"tier", logger.Tier, "tier", false},
		{"method", logger.Method, "method", false},
		{"path", logger.Path, "path", false},
		{"component", logger.Component, "component", false},
		{"provider", logger.Provider, "provider", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			attr := tt.attr("value")
			assert.Equal(t, tt.key, attr.Key)
			assert.Equal(t, "value", attr.Value.String())

			if tt.omitsOn {
				assert.True(t, tt.attr("").Equal(slog.Attr{}))
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	attr := logger.RequestID("abc")
	require.Equal(t, "request_id", attr.Key)
	assert.Equal(t, "abc", attr.Value.Any())
	assert.True(t, logger.RequestID(nil).Equal(slog.Attr{}))
}

func TestNumericAttrs(t *testing.T) {
	assert.Equal(t, int64(3), logger.Attempt(3).Value.Int64())
	assert.Equal(t, int64(503), logger.StatusCode(503).Value.Int64())
	assert.True(t, logger.StatusCode(0).Equal(slog.Attr{}))
	assert.Equal(t, 2*time.Second, logger.Duration(2*time.Second).Value.Duration())
}
