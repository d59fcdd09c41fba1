package ratelimiter_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/masky/pkg/ratelimiter"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newBucket(t *testing.T, cfg ratelimiter.Config) (*ratelimiter.Bucket, *clock) {
	t.Helper()
	clk := &clock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	store := ratelimiter.NewMemoryStore(
		ratelimiter.WithClock(clk.Now),
		ratelimiter.WithCleanupInterval(0),
	)
	t.Cleanup(store.Close)

	b, err := ratelimiter.NewBucket(store, cfg)
	require.NoError(t, err)
	return b, clk
}

func TestNewBucket_InvalidConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  ratelimiter.Config
	}{
		{"zero capacity", ratelimiter.Config{RefillRate: 1, RefillInterval: time.Second}},
		{"zero refill rate", ratelimiter.Config{Capacity: 1, RefillInterval: time.Second}},
		{"zero interval", ratelimiter.Config{Capacity: 1, RefillRate: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ratelimiter.NewBucket(ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(0)), tt.cfg)
			assert.ErrorIs(t, err, ratelimiter.ErrInvalidConfig)
		})
	}

	_, err := ratelimiter.NewBucket(nil, ratelimiter.Config{Capacity: 1, RefillRate: 1, RefillInterval: time.Second})
	assert.ErrorIs(t, err, ratelimiter.ErrInvalidConfig)
}

func TestBucket_AllowAndRefill(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	b, clk := newBucket(t, ratelimiter.Config{Capacity: 3, RefillRate: 1, RefillInterval: time.Minute})

	for i := range 3 {
		res, err := b.Allow(ctx, "k")
		require.NoError(t, err)
		assert.True(t, res.Allowed())
		assert.Equal(t, 2-i, res.Remaining)
	}

	res, err := b.Allow(ctx, "k")
	require.NoError(t, err)
	assert.False(t, res.Allowed())
	assert.Equal(t, 3, res.Limit)

	clk.Advance(time.Minute)
	res, err = b.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, res.Allowed())
	assert.Equal(t, 0, res.Remaining)

	clk.Advance(24 * time.Hour)
	res, err = b.Status(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 3, res.Remaining, "refill is capped at capacity")
}

func TestBucket_AllowN(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	b, _ := newBucket(t, ratelimiter.Config{Capacity: 5, RefillRate: 1, RefillInterval: time.Minute})

	_, err := b.AllowN(ctx, "k", 0)
	require.ErrorIs(t, err, ratelimiter.ErrInvalidTokenCount)

	res, err := b.AllowN(ctx, "k", 4)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Remaining)

	res, err = b.AllowN(ctx, "k", 2)
	require.NoError(t, err)
	assert.False(t, res.Allowed())

	res, err = b.Status(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Remaining, "denied request does not drain the bucket")

	require.NoError(t, b.Reset(ctx, "k"))
	res, err = b.Status(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 5, res.Remaining)
}

func TestComposite(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:5555"
	r.Header.Set("X-Api-Key", "abc")

	header := func(r *http.Request) string { return r.Header.Get("X-Api-Key") }
	empty := func(*http.Request) string { return "" }

	assert.Equal(t, "10.0.0.1", ratelimiter.Composite(ratelimiter.ClientIP)(r))
	assert.Equal(t, "abc:10.0.0.1", ratelimiter.Composite(header, empty, ratelimiter.ClientIP)(r))
	assert.Empty(t, ratelimiter.Composite(empty)(r))

	long := func(*http.Request) string { return string(make([]byte, 100)) }
	assert.LessOrEqual(t, len(ratelimiter.Composite(long)(r)), 13)

	assert.Equal(t, "login:10.0.0.1", ratelimiter.Prefixed("login", ratelimiter.ClientIP)(r))
}

type failingStore struct{}

func (failingStore) ConsumeTokens(context.Context, string, int, ratelimiter.Config) (int, time.Time, error) {
	return 0, time.Time{}, errors.Join(ratelimiter.ErrStoreUnavailable, errors.New("boom"))
}

func (failingStore) Reset(context.Context, string) error { return nil }

func TestMiddleware(t *testing.T) {
	t.Parallel()

	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("denies after capacity", func(t *testing.T) {
		t.Parallel()
		b, _ := newBucket(t, ratelimiter.Config{Capacity: 1, RefillRate: 1, RefillInterval: time.Minute})
		var limited bool
		h := ratelimiter.Middleware(b, ratelimiter.ClientIP, ratelimiter.WithLimitHandler(
			func(w http.ResponseWriter, _ *http.Request, res *ratelimiter.Result) {
				limited = true
				w.WriteHeader(http.StatusTooManyRequests)
			},
		))(ok)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.0.2.1:1234"

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.True(t, limited)
		assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

		other := httptest.NewRequest(http.MethodGet, "/", nil)
		other.RemoteAddr = "192.0.2.2:1234"
		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, other)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("store failure lets the request through", func(t *testing.T) {
		t.Parallel()
		b, err := ratelimiter.NewBucket(failingStore{}, ratelimiter.Config{Capacity: 1, RefillRate: 1, RefillInterval: time.Minute})
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		ratelimiter.Middleware(b, ratelimiter.ClientIP)(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
	})
}
