package stripe

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/dmitrymomot/masky/pkg/logger"
)

const (
	telemetryHeader         = "X-Stripe-Client-Telemetry"
	defaultTelemetryBufSize = 100
)

// RequestMetrics describes one completed request. Metrics are reported to the
// API on a later request for latency diagnostics.
type RequestMetrics struct {
	RequestID  string `json:"request_id"`
	DurationMS int64  `json:"request_duration_ms"`
}

// telemetryBuffer is a bounded queue shared by all calls of one client.
// Entries beyond capacity are dropped, never blocking the caller.
type telemetryBuffer struct {
	queue  chan RequestMetrics
	logger *slog.Logger
}

func newTelemetryBuffer(size int, log *slog.Logger) *telemetryBuffer {
	if size <= 0 {
		size = defaultTelemetryBufSize
	}
	return &telemetryBuffer{queue: make(chan RequestMetrics, size), logger: log}
}

// record queues m, dropping it with a warning when the buffer is full.
func (t *telemetryBuffer) record(ctx context.Context, requestID string, d time.Duration) {
	if requestID == "" {
		return
	}
	m := RequestMetrics{RequestID: requestID, DurationMS: d.Milliseconds()}
	select {
	case t.queue <- m:
	default:
		t.logger.WarnContext(ctx, "Request metrics buffer is full, dropping telemetry message",
			logger.StripeRequestID(requestID),
		)
	}
}

// header pops the oldest entry and renders the telemetry header value.
func (t *telemetryBuffer) header() (string, bool) {
	select {
	case m := <-t.queue:
		payload, err := json.Marshal(struct {
			LastRequestMetrics RequestMetrics `json:"last_request_metrics"`
		}{m})
		if err != nil {
			return "", false
		}
		return string(payload), true
	default:
		return "", false
	}
}

// Len reports the number of queued entries.
func (t *telemetryBuffer) Len() int { return len(t.queue) }
