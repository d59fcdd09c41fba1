package metrics_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/masky/pkg/metrics"
	"github.com/dmitrymomot/masky/pkg/stripe"
	"github.com/dmitrymomot/masky/pkg/subscription"
)

func scrape(t *testing.T, rec *metrics.Recorder) string {
	t.Helper()

	srv := httptest.NewServer(rec.Handler())
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestRecorder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("stripe observer", func(t *testing.T) {
		t.Parallel()

		rec, err := metrics.New()
		require.NoError(t, err)
		t.Cleanup(func() { _ = rec.Shutdown(context.Background()) })

		obs := rec.StripeObserver()
		assert.Nil(t, obs.OnRequest)
		require.NotNil(t, obs.OnResponse)
		require.NotNil(t, obs.OnRetry)

		obs.OnResponse(ctx, stripe.ResponseEvent{
			Method: http.MethodPost, Path: "/v1/customers", StatusCode: 200, Elapsed: 120 * time.Millisecond, Attempt: 1,
		})
		obs.OnRetry(ctx, stripe.RetryEvent{
			Method: http.MethodGet, Path: "/v1/subscriptions/sub_1Nx9", Attempt: 1, StatusCode: 503, Delay: time.Second, Err: errors.New("unavailable"),
		})

		body := scrape(t, rec)
		assert.Contains(t, body, "masky_stripe_requests")
		assert.Contains(t, body, `route="/v1/customers"`)
		assert.Contains(t, body, "masky_stripe_request_duration")
		assert.Contains(t, body, "masky_stripe_retries")
		assert.Contains(t, body, `route="/v1/subscriptions/:id"`)
		assert.Contains(t, body, `status="503"`)
		assert.Contains(t, body, "go_goroutines")
	})

	t.Run("webhook events", func(t *testing.T) {
		t.Parallel()

		rec, err := metrics.New()
		require.NoError(t, err)
		t.Cleanup(func() { _ = rec.Shutdown(context.Background()) })

		rec.RecordWebhook(ctx, subscription.EventCheckoutCompleted, subscription.OutcomeApplied)
		rec.RecordWebhook(ctx, subscription.EventPaymentFailed, subscription.OutcomeDuplicate)

		body := scrape(t, rec)
		assert.Contains(t, body, "masky_webhook_events")
		assert.Contains(t, body, `type="checkout_completed"`)
		assert.Contains(t, body, `outcome="duplicate"`)
	})

	t.Run("recorders are independent", func(t *testing.T) {
		t.Parallel()

		a, err := metrics.New()
		require.NoError(t, err)
		b, err := metrics.New()
		require.NoError(t, err)

		a.RecordWebhook(ctx, subscription.EventUnhandled, subscription.OutcomeIgnored)
		assert.NotContains(t, scrape(t, b), `outcome="ignored"`)
	})
}

func TestRoute(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want string
	}{
		{"", "/"},
		{"/v1/customers", "/v1/customers"},
		{"/v1/customers/cus_NffrFeUfNV2Hib", "/v1/customers/:id"},
		{"/v1/subscriptions/sub_1MowQVLkdIwHu7ixeRlqHVzs?expand=x", "/v1/subscriptions/:id"},
		{"/v1/billing_portal/sessions", "/v1/billing_portal/sessions"},
		{"/v1/checkout/sessions/cs_test_a1b2", "/v1/checkout/sessions/:id"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, metrics.Route(tt.path))
		})
	}
}
