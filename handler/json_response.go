package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrymomot/masky/pkg/environment"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type jsonResponse struct {
	status int
	body   any
}

// Render writes the body as JSON with the configured status.
func (j jsonResponse) Render(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(j.status)
	return json.NewEncoder(w).Encode(j.body)
}

// failureResponse carries internal error detail that is only shown outside
// production.
type failureResponse struct {
	summary string
	detail  string
}

func (f failureResponse) Render(w http.ResponseWriter, r *http.Request) error {
	body := ErrorBody{Error: f.summary}
	if !environment.IsProduction(r.Context()) {
		body.Message = f.detail
	}
	return jsonResponse{status: http.StatusInternalServerError, body: body}.Render(w, r)
}

// JSONOption configures a JSON response.
type JSONOption func(*jsonResponse)

// WithJSONStatus overrides the response status.
func WithJSONStatus(status int) JSONOption {
	return func(r *jsonResponse) {
		r.status = status
	}
}

// JSON renders v as the response body with 200 OK. The body is not wrapped
// in an envelope.
func JSON(v any, opts ...JSONOption) Response {
	r := &jsonResponse{status: http.StatusOK, body: v}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// JSONError renders err as an ErrorBody. HTTPError values keep their code and
// message; anything else becomes a 500 whose message does not leak err.
func JSONError(err error, opts ...JSONOption) Response {
	r := &jsonResponse{
		status: http.StatusInternalServerError,
		body:   ErrorBody{Error: ErrInternalServerError.Message},
	}

	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		r.status = httpErr.Code
		r.body = ErrorBody{Error: httpErr.Message}
	}

	for _, opt := range opts {
		opt(r)
	}
	return r
}

// JSONFailure renders a 500 with a summary. The underlying error message is
// added as "message" unless the request runs in production.
func JSONFailure(summary string, err error) Response {
	f := failureResponse{summary: summary}
	if err != nil {
		f.detail = err.Error()
	}
	return f
}
