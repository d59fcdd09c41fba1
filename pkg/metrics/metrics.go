package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/dmitrymomot/masky/pkg/stripe"
	"github.com/dmitrymomot/masky/pkg/subscription"
)

// ErrSetupFailed is returned when the exporter or an instrument cannot be created.
var ErrSetupFailed = errors.New("metrics: setup failed")

const meterName = "github.com/dmitrymomot/masky"

// Recorder owns the OpenTelemetry meter provider and the Prometheus registry
// it exports to.
type Recorder struct {
	provider *sdkmetric.MeterProvider
	registry *prometheus.Registry

	requests metric.Int64Counter
	duration metric.Float64Histogram
	retries  metric.Int64Counter
	webhooks metric.Int64Counter
}

// New creates a Recorder with a private registry. Go runtime and process
// collectors are registered alongside the billing instruments.
func New() (*Recorder, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	exporter, err := otelprom.New(
		otelprom.WithRegisterer(registry),
		otelprom.WithoutTargetInfo(),
		otelprom.WithoutScopeInfo(),
	)
	if err != nil {
		return nil, errors.Join(ErrSetupFailed, err)
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	meter := provider.Meter(meterName)

	r := &Recorder{provider: provider, registry: registry}
	if err := r.registerInstruments(meter); err != nil {
		_ = provider.Shutdown(context.Background())
		return nil, errors.Join(ErrSetupFailed, err)
	}
	return r, nil
}

func (r *Recorder) registerInstruments(meter metric.Meter) error {
	var err error

	r.requests, err = meter.Int64Counter(
		"masky.stripe.requests",
		metric.WithDescription("Stripe API responses by route and status code"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return err
	}

	r.duration, err = meter.Float64Histogram(
		"masky.stripe.request.duration",
		metric.WithDescription("Stripe API attempt latency"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 80),
	)
	if err != nil {
		return err
	}

	r.retries, err = meter.Int64Counter(
		"masky.stripe.retries",
		metric.WithDescription("Stripe API attempts scheduled for retry"),
		metric.WithUnit("{retry}"),
	)
	if err != nil {
		return err
	}

	r.webhooks, err = meter.Int64Counter(
		"masky.webhook.events",
		metric.WithDescription("Verified billing webhook deliveries by event type and outcome"),
		metric.WithUnit("{event}"),
	)
	return err
}

// StripeObserver returns hooks that feed Stripe API telemetry into the recorder.
func (r *Recorder) StripeObserver() stripe.Observer {
	return stripe.Observer{
		OnResponse: func(ctx context.Context, ev stripe.ResponseEvent) {
			attrs := metric.WithAttributes(
				attribute.String("method", ev.Method),
				attribute.String("route", Route(ev.Path)),
				attribute.String("status", strconv.Itoa(ev.StatusCode)),
			)
			r.requests.Add(ctx, 1, attrs)
			r.duration.Record(ctx, ev.Elapsed.Seconds(), attrs)
		},
		OnRetry: func(ctx context.Context, ev stripe.RetryEvent) {
			r.retries.Add(ctx, 1, metric.WithAttributes(
				attribute.String("method", ev.Method),
				attribute.String("route", Route(ev.Path)),
				attribute.String("status", strconv.Itoa(ev.StatusCode)),
			))
		},
	}
}

// RecordWebhook counts one verified webhook delivery. Its signature matches
// subscription.WithEventRecorder.
func (r *Recorder) RecordWebhook(ctx context.Context, t subscription.EventType, o subscription.EventOutcome) {
	r.webhooks.Add(ctx, 1, metric.WithAttributes(
		attribute.String("type", string(t)),
		attribute.String("outcome", string(o)),
	))
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{
		Registry:          r.registry,
		EnableOpenMetrics: false,
		Timeout:           10 * time.Second,
	})
}

// Shutdown flushes and stops the meter provider.
func (r *Recorder) Shutdown(ctx context.Context) error {
	return r.provider.Shutdown(ctx)
}

// Route collapses object IDs in a Stripe API path so it can be used as a
// low-cardinality label: "/v1/customers/cus_9x2" becomes "/v1/customers/:id".
func Route(path string) string {
	if path == "" {
		return "/"
	}
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	segs := strings.Split(path, "/")
	for i, s := range segs {
		if isObjectID(s) {
			segs[i] = ":id"
		}
	}
	return strings.Join(segs, "/")
}

// isObjectID reports whether s looks like "prefix_<random>" with at least
// one digit in the random part.
func isObjectID(s string) bool {
	i := strings.IndexByte(s, '_')
	if i <= 0 || i == len(s)-1 {
		return false
	}
	return strings.ContainsAny(s[i+1:], "0123456789")
}
