package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Protocol selects plaintext or TLS transport.
type Protocol string

const (
	ProtocolHTTP  Protocol = "http"
	ProtocolHTTPS Protocol = "https"
)

// Request describes one outbound HTTP exchange.
// It must not be mutated while Do is running.
type Request struct {
	Method   string
	Host     string
	Port     int    // zero means the protocol default
	Path     string // may carry a query string
	Header   http.Header
	Body     []byte
	Protocol Protocol
	Timeout  time.Duration
}

// URL assembles the absolute request URL.
func (r *Request) URL() (*url.URL, error) {
	if r.Host == "" {
		return nil, fmt.Errorf("%w: host is required", ErrInvalidRequest)
	}

	u, err := url.Parse(r.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	scheme := r.Protocol
	if scheme == "" {
		scheme = ProtocolHTTPS
	}
	u.Scheme = string(scheme)
	u.Host = r.Host
	if r.Port > 0 {
		u.Host = net.JoinHostPort(r.Host, strconv.Itoa(r.Port))
	}
	return u, nil
}

// Response is the result of a single exchange. Body is unread; the consumer
// either decodes it with JSON or hands it over as a stream, never both.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       io.ReadCloser
}

// JSON decodes the body into v and closes it.
func (r *Response) JSON(v any) error {
	defer func() { _ = r.Body.Close() }()
	return json.NewDecoder(r.Body).Decode(v)
}

// Transport performs one HTTP exchange.
type Transport interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// HTTPTransport implements Transport on top of net/http.
type HTTPTransport struct {
	client *http.Client
}

// NewHTTPTransport wraps client. A nil client gets a pooled default without a
// global timeout; per-request timeouts come from Request.Timeout.
func NewHTTPTransport(client *http.Client) *HTTPTransport {
	if client == nil {
		client = &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		}
	}
	return &HTTPTransport{client: client}
}

// Do races the exchange against req.Timeout. When the timer fires first the
// in-flight request is aborted and the error wraps ErrTimeout. The timer keeps
// running while the caller reads the body and is released on Body.Close.
func (t *HTTPTransport) Do(ctx context.Context, req *Request) (*Response, error) {
	u, err := req.URL()
	if err != nil {
		return nil, err
	}

	reqCtx, cancel := ctx, context.CancelFunc(func() {})
	if req.Timeout > 0 {
		reqCtx, cancel = context.WithTimeout(ctx, req.Timeout)
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(reqCtx, req.Method, u.String(), body)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		cancel()
		// Caller cancellation is not a transport failure.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s: %w", ErrTimeout, req.Timeout, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrConnection, err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       &cancelOnClose{ReadCloser: resp.Body, cancel: cancel},
	}, nil
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}
