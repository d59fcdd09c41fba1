package transport_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/masky/pkg/transport"
)

func requestFor(t *testing.T, serverURL string) *transport.Request {
	t.Helper()

	u, err := url.Parse(serverURL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)

	return &transport.Request{
		Method:   http.MethodGet,
		Host:     u.Hostname(),
		Port:     port,
		Path:     "/",
		Header:   http.Header{},
		Protocol: transport.ProtocolHTTP,
		Timeout:  5 * time.Second,
	}
}

func TestRequest_URL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		req     transport.Request
		want    string
		wantErr bool
	}{
		{
			name: "default protocol and port",
			req:  transport.Request{Host: "api.stripe.com", Path: "/v1/customers"},
			want: "https://api.stripe.com/v1/customers",
		},
		{
			name: "explicit port and query",
			req:  transport.Request{Host: "localhost", Port: 12111, Path: "/v1/subscriptions?limit=3", Protocol: transport.ProtocolHTTP},
			want: "http://localhost:12111/v1/subscriptions?limit=3",
		},
		{
			name:    "missing host",
			req:     transport.Request{Path: "/v1/customers"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			u, err := tt.req.URL()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, transport.ErrInvalidRequest)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, u.String())
		})
	}
}

func TestHTTPTransport_Do(t *testing.T) {
	t.Parallel()

	t.Run("forwards method headers and body", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/v1/customers", r.URL.Path)
			assert.Equal(t, "key_123", r.Header.Get("Idempotency-Key"))
			body, _ := io.ReadAll(r.Body)
			assert.Equal(t, "email=a%40b.c", string(body))

			w.Header().Set("Request-Id", "req_1")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"id":"cus_1"}`))
		}))
		defer server.Close()

		req := requestFor(t, server.URL)
		req.Method = http.MethodPost
		req.Path = "/v1/customers"
		req.Header.Set("Idempotency-Key", "key_123")
		req.Body = []byte("email=a%40b.c")

		resp, err := transport.NewHTTPTransport(nil).Do(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "req_1", resp.Header.Get("Request-Id"))

		var out struct {
			ID string `json:"id"`
		}
		require.NoError(t, resp.JSON(&out))
		assert.Equal(t, "cus_1", out.ID)
	})

	t.Run("timer wins the race", func(t *testing.T) {
		t.Parallel()

		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer server.Close()
		defer close(release)

		req := requestFor(t, server.URL)
		req.Timeout = 50 * time.Millisecond

		_, err := transport.NewHTTPTransport(nil).Do(context.Background(), req)
		require.Error(t, err)
		assert.ErrorIs(t, err, transport.ErrTimeout)
		assert.NotErrorIs(t, err, transport.ErrConnection)
	})

	t.Run("connection refused", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.NotFoundHandler())
		req := requestFor(t, server.URL)
		server.Close()

		_, err := transport.NewHTTPTransport(nil).Do(context.Background(), req)
		require.Error(t, err)
		assert.ErrorIs(t, err, transport.ErrConnection)
	})

	t.Run("caller cancellation is returned as is", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := transport.NewHTTPTransport(nil).Do(ctx, requestFor(t, server.URL))
		require.Error(t, err)
		assert.True(t, errors.Is(err, context.Canceled))
	})
}
