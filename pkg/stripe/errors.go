package stripe

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrymomot/masky/pkg/transport"
)

// Error kinds. A *Error unwraps to exactly one of these, so callers classify
// failures with errors.Is.
var (
	ErrAuthentication = errors.New("stripe: authentication failed")
	ErrPermission     = errors.New("stripe: permission denied")
	ErrRateLimit      = errors.New("stripe: rate limit exceeded")
	ErrConflict       = errors.New("stripe: conflicting request")
	ErrInvalidRequest = errors.New("stripe: invalid request")
	ErrCard           = errors.New("stripe: card declined")
	ErrIdempotency    = errors.New("stripe: idempotency key reused")
	ErrAPI            = errors.New("stripe: api error")
	ErrUnknown        = errors.New("stripe: unknown error")
)

var (
	ErrConnection = errors.New("stripe: connection error")

	// ErrTimeout marks connection errors caused by the per-request timer.
	ErrTimeout = transport.ErrTimeout

	ErrCircuitOpen     = errors.New("stripe: circuit breaker is open")
	ErrMissingAPIKey   = errors.New("stripe: api key is required")
	ErrAddressing      = errors.New("stripe: exactly one of path or url must be set")
	ErrInvalidResponse = errors.New("stripe: invalid JSON received from the API")
	ErrInvalidParams   = errors.New("stripe: invalid params")
)

// Error is a non-2xx API response decoded into the error taxonomy.
type Error struct {
	kind error

	StatusCode  int
	RequestID   string
	Type        string
	Code        string
	DeclineCode string
	Param       string
	Message     string
	DocURL      string
	Header      http.Header
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.RequestID != "" {
		return fmt.Sprintf("%s: %s (status %d, request %s)", e.kind, msg, e.StatusCode, e.RequestID)
	}
	return fmt.Sprintf("%s: %s (status %d)", e.kind, msg, e.StatusCode)
}

func (e *Error) Unwrap() error { return e.kind }

// Kind returns the sentinel this error is classified as.
func (e *Error) Kind() error { return e.kind }

// ConnectionError is returned when no usable response was obtained after all
// attempts. Timeouts are connection errors whose cause wraps ErrTimeout.
type ConnectionError struct {
	Attempts int
	Cause    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s after %d attempt(s): %v", ErrConnection, e.Attempts, e.Cause)
}

func (e *ConnectionError) Unwrap() []error { return []error{ErrConnection, e.Cause} }

// Timeout reports whether the last attempt was aborted by the request timer.
func (e *ConnectionError) Timeout() bool { return errors.Is(e.Cause, ErrTimeout) }

// apiErrorBody is the error envelope returned by the API.
type apiErrorBody struct {
	Error *struct {
		Type        string `json:"type"`
		Code        string `json:"code"`
		DeclineCode string `json:"decline_code"`
		Param       string `json:"param"`
		Message     string `json:"message"`
		DocURL      string `json:"doc_url"`
	} `json:"error"`
}

// classify picks the error kind. Status wins for 401, 403 and 429; otherwise the
// payload's type tag decides, with status-based fallbacks for untagged bodies.
func classify(status int, errType string) error {
	switch status {
	case http.StatusUnauthorized:
		return ErrAuthentication
	case http.StatusForbidden:
		return ErrPermission
	case http.StatusTooManyRequests:
		return ErrRateLimit
	}

	switch errType {
	case "card_error":
		return ErrCard
	case "invalid_request_error":
		return ErrInvalidRequest
	case "idempotency_error":
		return ErrIdempotency
	case "api_error":
		return ErrAPI
	case "authentication_error":
		return ErrAuthentication
	case "rate_limit_error":
		return ErrRateLimit
	}

	if errType == "" {
		switch {
		case status == http.StatusConflict:
			return ErrConflict
		case status >= 500:
			return ErrAPI
		}
	}
	return ErrUnknown
}
