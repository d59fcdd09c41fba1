package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/masky/pkg/logger"
	"github.com/dmitrymomot/masky/pkg/transport"
)

const (
	contentTypeForm = "application/x-www-form-urlencoded"
	contentTypeJSON = "application/json"

	requestIDHeader      = "Request-Id"
	idempotencyKeyHeader = "Idempotency-Key"
)

// Request describes one logical API call. Exactly one of Path (relative to
// the configured API host) and URL (fully qualified) must be set.
type Request struct {
	Method string
	Path   string
	URL    string

	// Body is sent as is. ContentType defaults to form encoding.
	Body        []byte
	ContentType string

	// Header overrides generated headers, matched case-insensitively.
	Header http.Header

	// IdempotencyKey is reused across retries. When empty, POST calls get a
	// generated key if retries are possible.
	IdempotencyKey string

	// Stream returns the raw body of successful responses without buffering.
	Stream bool

	// MaxRetries and Timeout override the sender defaults when set.
	MaxRetries *int
	Timeout    time.Duration
}

// Response is the final outcome of a successful logical call. Body holds the
// buffered JSON payload, or Stream the open body when streaming was requested.
type Response struct {
	StatusCode     int
	Header         http.Header
	RequestID      string
	IdempotencyKey string
	Attempts       int

	Body   []byte
	Stream io.ReadCloser
}

// Decode unmarshals the buffered body into v.
func (r *Response) Decode(v any) error {
	if r.Stream != nil {
		return fmt.Errorf("%w: response is a stream", ErrInvalidResponse)
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return errors.Join(ErrInvalidResponse, err)
	}
	return nil
}

// Sender executes logical calls against the API, retrying transient failures
// with jittered exponential backoff. Safe for concurrent use; calls share only
// the telemetry buffer and the optional circuit breaker.
type Sender struct {
	transport transport.Transport
	logger    *slog.Logger

	apiKey     string
	apiVersion string
	host       string
	port       int
	protocol   transport.Protocol

	maxRetries int
	timeout    time.Duration
	backoff    Backoff

	observer          Observer
	telemetry         *telemetryBuffer
	breaker           *CircuitBreaker
	newIdempotencyKey func() string
}

// NewSender builds a Sender from cfg. The API key is mandatory.
func NewSender(cfg Config, opts ...Option) (*Sender, error) {
	if cfg.SecretKey == "" {
		return nil, ErrMissingAPIKey
	}

	def := DefaultConfig()
	if cfg.Host == "" {
		cfg.Host = def.Host
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = def.APIVersion
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxNetworkRetries < 0 {
		cfg.MaxNetworkRetries = def.MaxNetworkRetries
	}

	protocol := transport.ProtocolHTTPS
	if cfg.Protocol == string(transport.ProtocolHTTP) {
		protocol = transport.ProtocolHTTP
	}

	s := &Sender{
		transport:  transport.NewHTTPTransport(nil),
		logger:     slog.New(slog.DiscardHandler),
		apiKey:     cfg.SecretKey,
		apiVersion: cfg.APIVersion,
		host:       cfg.Host,
		port:       cfg.Port,
		protocol:   protocol,
		maxRetries: cfg.MaxNetworkRetries,
		timeout:    cfg.Timeout,
		backoff: Backoff{
			InitialDelay: cfg.InitialRetryDelay,
			MaxDelay:     cfg.MaxRetryDelay,
		},
		newIdempotencyKey: func() string { return "masky-retry-" + uuid.NewString() },
	}
	if cfg.Telemetry {
		s.telemetry = newTelemetryBuffer(defaultTelemetryBufSize, nil)
	}

	for _, opt := range opts {
		opt(s)
	}
	if s.telemetry != nil {
		s.telemetry.logger = s.logger
	}

	return s, nil
}

// Send runs req to completion: success, a typed API error, or a
// ConnectionError after the retry budget is spent. Attempts are strictly
// sequential; waits between them respect ctx cancellation.
func (s *Sender) Send(ctx context.Context, req Request) (*Response, error) {
	target, err := s.target(req)
	if err != nil {
		return nil, err
	}

	if s.breaker != nil && !s.breaker.Allow() {
		return nil, ErrCircuitOpen
	}

	maxRetries := s.maxRetries
	if req.MaxRetries != nil && *req.MaxRetries >= 0 {
		maxRetries = *req.MaxRetries
	}
	timeout := s.timeout
	if req.Timeout > 0 {
		timeout = req.Timeout
	}

	header := s.baseHeader(req, maxRetries)
	idempotencyKey := header.Get(idempotencyKeyHeader)

	for retries := 0; ; retries++ {
		attempt := retries + 1

		attemptHeader := header.Clone()
		if s.telemetry != nil {
			if v, ok := s.telemetry.header(); ok {
				attemptHeader.Set(telemetryHeader, v)
			}
		}

		treq := &transport.Request{
			Method:   req.Method,
			Host:     target.host,
			Port:     target.port,
			Path:     target.path,
			Header:   attemptHeader,
			Body:     req.Body,
			Protocol: target.protocol,
			Timeout:  timeout,
		}

		s.notifyRequest(ctx, RequestEvent{
			Method:         req.Method,
			Path:           target.path,
			IdempotencyKey: idempotencyKey,
			Attempt:        attempt,
		})

		start := time.Now()
		resp, err := s.transport.Do(ctx, treq)

		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			if !shouldRetry(nil, err, retries, maxRetries) {
				s.recordOutcome(false)
				return nil, &ConnectionError{Attempts: attempt, Cause: err}
			}
			if err := s.wait(ctx, req.Method, target.path, retries+1, 0, err, 0); err != nil {
				return nil, err
			}
			continue
		}

		if shouldRetry(resp, nil, retries, maxRetries) {
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))
			_ = resp.Body.Close()
			s.finishAttempt(ctx, req.Method, target.path, resp, start, attempt)

			if err := s.wait(ctx, req.Method, target.path, retries+1, resp.StatusCode, nil, retryAfter(resp.Header)); err != nil {
				return nil, err
			}
			continue
		}

		return s.complete(ctx, req, target.path, resp, start, attempt, idempotencyKey)
	}
}

// complete turns the final transport response into the call result.
func (s *Sender) complete(ctx context.Context, req Request, path string, resp *transport.Response, start time.Time, attempt int, idempotencyKey string) (*Response, error) {
	out := &Response{
		StatusCode:     resp.StatusCode,
		Header:         resp.Header,
		RequestID:      resp.Header.Get(requestIDHeader),
		IdempotencyKey: idempotencyKey,
		Attempts:       attempt,
	}

	if req.Stream && resp.StatusCode < http.StatusBadRequest {
		s.recordOutcome(true)
		out.Stream = &streamBody{
			ReadCloser: resp.Body,
			done: func() {
				s.finishAttempt(ctx, req.Method, path, resp, start, attempt)
			},
		}
		return out, nil
	}

	body, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	s.finishAttempt(ctx, req.Method, path, resp, start, attempt)
	if readErr != nil {
		s.recordOutcome(false)
		return nil, &ConnectionError{Attempts: attempt, Cause: readErr}
	}

	if resp.StatusCode >= http.StatusBadRequest || resp.StatusCode < http.StatusOK {
		apiErr := decodeError(resp.StatusCode, resp.Header, body)
		s.recordOutcome(resp.StatusCode < http.StatusInternalServerError)
		return nil, apiErr
	}

	s.recordOutcome(true)
	out.Body = body
	return out, nil
}

// wait sleeps before retry number retry, returning early on cancellation.
func (s *Sender) wait(ctx context.Context, method, path string, retry, status int, cause error, hint time.Duration) error {
	delay := s.backoff.NextInterval(retry, hint)

	s.logger.WarnContext(ctx, "Retrying Stripe request",
		logger.Method(method),
		logger.Path(path),
		logger.Attempt(retry),
		logger.StatusCode(status),
		logger.Duration(delay),
		logger.Error(cause),
	)
	if s.observer.OnRetry != nil {
		s.observer.OnRetry(ctx, RetryEvent{
			Method:     method,
			Path:       path,
			Attempt:    retry,
			StatusCode: status,
			Delay:      delay,
			Err:        cause,
		})
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *Sender) finishAttempt(ctx context.Context, method, path string, resp *transport.Response, start time.Time, attempt int) {
	elapsed := time.Since(start)
	requestID := resp.Header.Get(requestIDHeader)

	if s.telemetry != nil {
		s.telemetry.record(ctx, requestID, elapsed)
	}
	if s.observer.OnResponse != nil {
		s.observer.OnResponse(ctx, ResponseEvent{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			RequestID:  requestID,
			Elapsed:    elapsed,
			Attempt:    attempt,
		})
	}
}

func (s *Sender) notifyRequest(ctx context.Context, ev RequestEvent) {
	if s.observer.OnRequest != nil {
		s.observer.OnRequest(ctx, ev)
	}
}

func (s *Sender) recordOutcome(ok bool) {
	if s.breaker == nil {
		return
	}
	if ok {
		s.breaker.RecordSuccess()
	} else {
		s.breaker.RecordFailure()
	}
}

// baseHeader builds the headers shared by every attempt of one call, the
// idempotency key included.
func (s *Sender) baseHeader(req Request, maxRetries int) http.Header {
	h := http.Header{}
	h.Set("Accept", contentTypeJSON)
	h.Set("Authorization", "Bearer "+s.apiKey)
	h.Set("User-Agent", userAgent)
	if s.apiVersion != "" {
		h.Set("Stripe-Version", s.apiVersion)
	}
	if req.Body != nil {
		ct := req.ContentType
		if ct == "" {
			ct = contentTypeForm
		}
		h.Set("Content-Type", ct)
	}

	switch {
	case req.IdempotencyKey != "":
		h.Set(idempotencyKeyHeader, req.IdempotencyKey)
	case req.Method == http.MethodPost && maxRetries > 0:
		h.Set(idempotencyKeyHeader, s.newIdempotencyKey())
	}

	// Caller values win; Set canonicalizes keys so case does not matter.
	for k, vs := range req.Header {
		if len(vs) == 0 {
			continue
		}
		h.Set(k, vs[len(vs)-1])
	}
	return h
}

type target struct {
	host     string
	port     int
	path     string
	protocol transport.Protocol
}

func (s *Sender) target(req Request) (target, error) {
	if (req.Path == "") == (req.URL == "") {
		return target{}, ErrAddressing
	}
	if req.Path != "" {
		return target{host: s.host, port: s.port, path: req.Path, protocol: s.protocol}, nil
	}

	u, err := url.Parse(req.URL)
	if err != nil || u.Host == "" {
		return target{}, fmt.Errorf("%w: invalid url %q", ErrAddressing, req.URL)
	}
	switch transport.Protocol(u.Scheme) {
	case transport.ProtocolHTTP, transport.ProtocolHTTPS:
	default:
		return target{}, fmt.Errorf("%w: unsupported scheme %q", ErrAddressing, u.Scheme)
	}
	t := target{
		host:     u.Hostname(),
		path:     u.RequestURI(),
		protocol: transport.Protocol(u.Scheme),
	}
	if p := u.Port(); p != "" {
		t.port, _ = strconv.Atoi(p)
	}
	return t, nil
}

// decodeError maps a non-2xx response body to *Error.
func decodeError(status int, header http.Header, body []byte) error {
	apiErr := &Error{
		StatusCode: status,
		RequestID:  header.Get(requestIDHeader),
		Header:     header,
	}

	var envelope apiErrorBody
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Error == nil {
		apiErr.kind = classify(status, "")
		apiErr.Message = fmt.Sprintf("unrecognized error response: %s", truncate(body, 200))
		return apiErr
	}

	e := envelope.Error
	apiErr.kind = classify(status, e.Type)
	apiErr.Type = e.Type
	apiErr.Code = e.Code
	apiErr.DeclineCode = e.DeclineCode
	apiErr.Param = e.Param
	apiErr.Message = e.Message
	apiErr.DocURL = e.DocURL
	return apiErr
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// streamBody fires done exactly once, at EOF or Close, whichever comes first.
type streamBody struct {
	io.ReadCloser
	once sync.Once
	done func()
}

func (b *streamBody) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)
	if errors.Is(err, io.EOF) {
		b.once.Do(b.done)
	}
	return n, err
}

func (b *streamBody) Close() error {
	err := b.ReadCloser.Close()
	b.once.Do(b.done)
	return err
}
