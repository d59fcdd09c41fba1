package httpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/masky/pkg/logger"
)

// Check is a named dependency probe, e.g. mongo.Healthcheck(client).
type Check struct {
	Name string
	Fn   func(context.Context) error
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// HealthCheckHandler returns a handler usable for both liveness and readiness
// probes. With no checks it reports {"status":"alive"}. Otherwise every check
// runs against the request context bounded by timeout; all passing gives 200
// {"status":"ready"}, any failure gives 503 {"status":"not_ready"} with the
// per-check results.
func HealthCheckHandler(log *slog.Logger, timeout time.Duration, checks ...Check) http.HandlerFunc {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if len(checks) == 0 {
			writeHealth(w, http.StatusOK, healthResponse{Status: "alive"})
			return
		}

		ctx := r.Context()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		resp := healthResponse{Status: "ready", Checks: make(map[string]string, len(checks))}
		code := http.StatusOK
		for _, c := range checks {
			if err := c.Fn(ctx); err != nil {
				log.ErrorContext(ctx, "readiness check failed", logger.Component(c.Name), logger.Error(err))
				resp.Checks[c.Name] = "error"
				resp.Status = "not_ready"
				code = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[c.Name] = "ok"
		}
		writeHealth(w, code, resp)
	}
}

func writeHealth(w http.ResponseWriter, code int, body healthResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
