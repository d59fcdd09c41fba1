package handler

import (
	"errors"
	"net/http"
)

var ErrNilResponse = errors.New("handler returned nil response")

// HTTPError is an error with the status code and client-facing message it
// should be rendered with.
type HTTPError struct {
	Code    int    // HTTP status code
	Message string // safe to show to API clients
}

// Error implements the error interface.
func (e HTTPError) Error() string {
	return e.Message
}

var (
	ErrBadRequest          = HTTPError{Code: http.StatusBadRequest, Message: "Bad request"}
	ErrUnauthorized        = HTTPError{Code: http.StatusUnauthorized, Message: "Unauthorized"}
	ErrNotFound            = HTTPError{Code: http.StatusNotFound, Message: "Not found"}
	ErrMethodNotAllowed    = HTTPError{Code: http.StatusMethodNotAllowed, Message: "Method not allowed"}
	ErrInternalServerError = HTTPError{Code: http.StatusInternalServerError, Message: "Internal server error"}
)

// NewHTTPError creates an HTTP error with the given status code and message.
func NewHTTPError(code int, message string) HTTPError {
	return HTTPError{Code: code, Message: message}
}
