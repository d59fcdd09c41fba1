package ratelimiter

import (
	"hash/fnv"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
)

// maxKeyLength caps stored key size; longer composite keys are hashed.
const maxKeyLength = 64

// KeyFunc extracts a rate limit key from the request. An empty key skips
// limiting for that request.
type KeyFunc func(r *http.Request) string

// ClientIP keys requests by the host part of RemoteAddr. Put chi's RealIP
// middleware in front so proxied requests resolve to the caller.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if ip := net.ParseIP(strings.TrimSpace(host)); ip != nil {
		return ip.String()
	}
	return ""
}

// Prefixed namespaces a key so separate route groups keep separate buckets.
func Prefixed(prefix string, fn KeyFunc) KeyFunc {
	return func(r *http.Request) string {
		key := fn(r)
		if key == "" {
			return ""
		}
		return prefix + ":" + key
	}
}

// Composite combines multiple key functions into one.
// Long keys (>64 chars) are hashed using FNV-1a.
func Composite(keyFuncs ...KeyFunc) KeyFunc {
	return func(r *http.Request) string {
		parts := make([]string, 0, len(keyFuncs))
		for _, fn := range keyFuncs {
			if key := fn(r); key != "" {
				parts = append(parts, key)
			}
		}

		if len(parts) == 0 {
			return ""
		}
		if len(parts) == 1 && len(parts[0]) <= maxKeyLength {
			return parts[0]
		}

		combined := strings.Join(parts, ":")
		if len(combined) > maxKeyLength {
			h := fnv.New64a()
			h.Write([]byte(combined))
			return strconv.FormatUint(h.Sum64(), 36)
		}
		return combined
	}
}

// MiddlewareOption configures Middleware.
type MiddlewareOption func(*middlewareConfig)

type middlewareConfig struct {
	logger  *slog.Logger
	onLimit func(w http.ResponseWriter, r *http.Request, res *Result)
}

// WithLogger sets the logger used when the store fails.
func WithLogger(l *slog.Logger) MiddlewareOption {
	return func(c *middlewareConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithLimitHandler replaces the default plain-text 429 response.
func WithLimitHandler(fn func(w http.ResponseWriter, r *http.Request, res *Result)) MiddlewareOption {
	return func(c *middlewareConfig) {
		if fn != nil {
			c.onLimit = fn
		}
	}
}

// Middleware limits requests per key. Store failures are logged and the
// request is let through.
func Middleware(b *Bucket, keyFunc KeyFunc, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	cfg := &middlewareConfig{
		logger: slog.New(slog.DiscardHandler),
		onLimit: func(w http.ResponseWriter, _ *http.Request, _ *Result) {
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
		},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyFunc(r)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			result, err := b.Allow(r.Context(), key)
			if err != nil {
				cfg.logger.WarnContext(r.Context(), "rate limit check failed",
					slog.String("key", key),
					slog.Any("error", err))
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(max(0, result.Remaining)))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

			if !result.Allowed() {
				if retryAfter := int(result.RetryAfter().Seconds()); retryAfter > 0 {
					w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				}
				cfg.onLimit(w, r, result)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
