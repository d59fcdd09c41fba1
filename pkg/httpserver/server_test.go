package httpserver_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/masky/pkg/httpserver"
)

// start runs srv in the background and returns its bound address and the
// channel Run's result is delivered on.
func start(t *testing.T, srv *httpserver.Server, ctx context.Context, h http.Handler) (string, <-chan error) {
	t.Helper()

	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, h) }()

	require.Eventually(t, func() bool { return srv.Addr() != "" }, 2*time.Second, 10*time.Millisecond)
	return srv.Addr(), done
}

func wait(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(2 * time.Second):
		require.FailNow(t, "run did not finish")
		return nil
	}
}

func TestRunAndShutdown(t *testing.T) {
	t.Parallel()

	srv := httpserver.New(httpserver.WithAddr("127.0.0.1:0"), httpserver.WithShutdownTimeout(100*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addr, done := start(t, srv, ctx, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	resp, err := http.Get("http://" + addr)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	cancel()
	require.NoError(t, wait(t, done))
	require.NoError(t, srv.Shutdown(context.Background()), "repeated shutdown is a no-op")
}

func TestManualShutdown(t *testing.T) {
	t.Parallel()

	srv := httpserver.New(httpserver.WithAddr("127.0.0.1:0"), httpserver.WithShutdownTimeout(100*time.Millisecond))
	_, done := start(t, srv, context.Background(), http.NotFoundHandler())

	require.NoError(t, srv.Shutdown(context.Background()))
	require.NoError(t, srv.Shutdown(context.Background()))
	require.NoError(t, wait(t, done))

	err := srv.Run(context.Background(), nil)
	assert.ErrorIs(t, err, httpserver.ErrStart)
}

func TestStartError(t *testing.T) {
	t.Parallel()

	srv := httpserver.New(httpserver.WithAddr(":invalid"))
	err := srv.Run(context.Background(), http.NotFoundHandler())
	assert.ErrorIs(t, err, httpserver.ErrStart)
}

func TestAlreadyRunning(t *testing.T) {
	t.Parallel()

	srv := httpserver.New(httpserver.WithAddr("127.0.0.1:0"), httpserver.WithShutdownTimeout(50*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	_, done := start(t, srv, ctx, http.NewServeMux())

	err := srv.Run(context.Background(), http.NewServeMux())
	assert.ErrorIs(t, err, httpserver.ErrStart)

	cancel()
	require.NoError(t, wait(t, done))
}

func TestReadyHookAndClosers(t *testing.T) {
	t.Parallel()

	var (
		mu    sync.Mutex
		order []string
	)
	record := func(name string, err error) func(context.Context) error {
		return func(context.Context) error {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, name)
			return err
		}
	}

	ready := make(chan string, 1)
	srv := httpserver.New(
		httpserver.WithAddr("127.0.0.1:0"),
		httpserver.WithShutdownTimeout(100*time.Millisecond),
		httpserver.WithReadyHook(func(addr string) { ready <- addr }),
		httpserver.WithCloser("mongo", record("mongo", nil)),
		httpserver.WithCloser("redis", record("redis", errors.New("already closed"))),
		httpserver.WithCloser("metrics", record("metrics", nil)),
	)

	ctx, cancel := context.WithCancel(context.Background())
	addr, done := start(t, srv, ctx, http.NewServeMux())
	assert.Equal(t, addr, <-ready)

	cancel()
	err := wait(t, done)
	assert.ErrorIs(t, err, httpserver.ErrShutdown)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"metrics", "redis", "mongo"}, order)
}

func TestWithServer(t *testing.T) {
	t.Parallel()

	hs := &http.Server{ReadTimeout: time.Second}
	srv := httpserver.New(
		httpserver.WithServer(hs),
		httpserver.WithAddr("127.0.0.1:0"),
		httpserver.WithReadTimeout(5*time.Second),
		httpserver.WithWriteTimeout(2*time.Second),
		httpserver.WithIdleTimeout(3*time.Second),
		httpserver.WithReadHeaderTimeout(4*time.Second),
		httpserver.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	_, done := start(t, srv, context.Background(), nil)

	assert.Equal(t, time.Second, hs.ReadTimeout, "preset value wins")
	assert.Equal(t, 2*time.Second, hs.WriteTimeout)
	assert.Equal(t, 3*time.Second, hs.IdleTimeout)
	assert.Equal(t, 4*time.Second, hs.ReadHeaderTimeout)
	assert.NotNil(t, hs.Handler)

	require.NoError(t, srv.Shutdown(context.Background()))
	require.NoError(t, wait(t, done))
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()

	hs := &http.Server{}
	srv := httpserver.NewFromConfig(httpserver.Config{
		Addr:         "127.0.0.1:0",
		WriteTimeout: 7 * time.Second,
	}, httpserver.WithServer(hs))
	_, done := start(t, srv, context.Background(), nil)

	assert.Equal(t, 7*time.Second, hs.WriteTimeout)
	assert.Equal(t, 10*time.Second, hs.ReadHeaderTimeout, "default applies")

	require.NoError(t, srv.Shutdown(context.Background()))
	require.NoError(t, wait(t, done))
}

func TestSignalShutdown(t *testing.T) {
	// Sends SIGTERM to the test process; must not run in parallel with
	// other Run-based tests.
	srv := httpserver.New(httpserver.WithAddr("127.0.0.1:0"), httpserver.WithShutdownTimeout(50*time.Millisecond))
	addr, done := start(t, srv, context.Background(), http.NewServeMux())

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	_ = conn.Close()

	p, err := os.FindProcess(os.Getpid())
	require.NoError(t, err)
	require.NoError(t, p.Signal(syscall.SIGTERM))
	require.NoError(t, wait(t, done))
}

func TestOptionPanics(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		fn   func()
	}{
		{"addr", func() { httpserver.WithAddr("") }},
		{"read", func() { httpserver.WithReadTimeout(-time.Second) }},
		{"read header", func() { httpserver.WithReadHeaderTimeout(0) }},
		{"write", func() { httpserver.WithWriteTimeout(-time.Second) }},
		{"idle", func() { httpserver.WithIdleTimeout(-time.Second) }},
		{"shutdown", func() { httpserver.WithShutdownTimeout(-time.Second) }},
		{"server", func() { httpserver.WithServer(nil) }},
		{"ready hook", func() { httpserver.WithReadyHook(nil) }},
		{"closer", func() { httpserver.WithCloser("x", nil) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Panics(t, tt.fn)
		})
	}

	assert.NotPanics(t, func() { httpserver.WithLogger(nil) })
}
