package api

import (
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/masky/handler"
	"github.com/dmitrymomot/masky/pkg/jwt"
	"github.com/dmitrymomot/masky/pkg/logger"
	"github.com/dmitrymomot/masky/pkg/ratelimiter"
)

// requestLogger logs one line per request. Health and metrics probes are
// logged at DEBUG.
func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			level := slog.LevelInfo
			switch {
			case status >= http.StatusInternalServerError:
				level = slog.LevelError
			case r.URL.Path == "/healthz" || r.URL.Path == "/livez" || r.URL.Path == "/metrics":
				level = slog.LevelDebug
			}

			log.LogAttrs(r.Context(), level, "http request",
				logger.RequestID(middleware.GetReqID(r.Context())),
				logger.Method(r.Method),
				logger.Path(r.URL.Path),
				logger.StatusCode(status),
				logger.Duration(time.Since(start)),
				slog.Int("bytes", ww.BytesWritten()),
			)
		})
	}
}

func unauthorized(w http.ResponseWriter, r *http.Request, err error) {
	msg := "Unauthorized - Invalid token"
	if r.Header.Get("Authorization") == "" {
		msg = "Unauthorized - No token provided"
	} else if errors.Is(err, jwt.ErrExpiredToken) {
		msg = "Unauthorized - Token expired"
	}
	writeError(w, r, http.StatusUnauthorized, msg)
}

func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	_ = handler.JSONError(handler.NewHTTPError(code, msg)).Render(w, r)
}

// limit applies the per-IP limiter under its own key namespace. Without a
// limiter it is a no-op.
func (a *api) limit(scope string) func(http.Handler) http.Handler {
	if a.limiter == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return ratelimiter.Middleware(a.limiter,
		ratelimiter.Prefixed(scope, ratelimiter.ClientIP),
		ratelimiter.WithLogger(a.log),
		ratelimiter.WithLimitHandler(func(w http.ResponseWriter, r *http.Request, _ *ratelimiter.Result) {
			writeError(w, r, http.StatusTooManyRequests, "Too many requests")
		}),
	)
}

// allowOrigin accepts origins from the list; "*" accepts any origin and the
// response echoes it back.
func allowOrigin(origins []string) func(*http.Request, string) bool {
	if slices.Contains(origins, "*") {
		return func(*http.Request, string) bool { return true }
	}
	return func(_ *http.Request, origin string) bool {
		return slices.Contains(origins, origin)
	}
}
