package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/masky/pkg/binder"
	"github.com/dmitrymomot/masky/pkg/logger"
)

// ErrorInfo is the classified form of a handler error.
type ErrorInfo struct {
	StatusCode int
	Message    string
	LogLevel   slog.Level
}

func isClientError(statusCode int) bool {
	return statusCode >= http.StatusBadRequest && statusCode < http.StatusInternalServerError
}

func determineLogLevel(statusCode int) slog.Level {
	if isClientError(statusCode) {
		return slog.LevelWarn
	}
	return slog.LevelError
}

// ClassifyError maps err to a status code and client message.
// Binding failures are client errors.
func ClassifyError(err error) ErrorInfo {
	info := ErrorInfo{
		StatusCode: ErrInternalServerError.Code,
		Message:    ErrInternalServerError.Message,
	}

	var httpErr HTTPError
	switch {
	case errors.As(err, &httpErr):
		info.StatusCode = httpErr.Code
		info.Message = httpErr.Message
	case errors.Is(err, binder.ErrUnsupportedMediaType), errors.Is(err, binder.ErrMissingContentType):
		info.StatusCode = http.StatusUnsupportedMediaType
		info.Message = "Content-Type must be application/json"
	case errors.Is(err, binder.ErrFailedToParseJSON), errors.Is(err, binder.ErrFailedToParseQuery):
		info.StatusCode = http.StatusBadRequest
		info.Message = "Invalid request body"
	}

	info.LogLevel = determineLogLevel(info.StatusCode)
	return info
}

// NewErrorHandler returns an ErrorHandler that logs the failure and renders
// it as an ErrorBody.
func NewErrorHandler(log *slog.Logger) ErrorHandler[Context] {
	if log == nil {
		log = slog.Default()
	}

	return func(ctx Context, err error) {
		r := ctx.Request()
		info := ClassifyError(err)

		log.LogAttrs(r.Context(), info.LogLevel, "request error",
			logger.RequestID(middleware.GetReqID(r.Context())),
			logger.Error(err),
			logger.StatusCode(info.StatusCode),
			logger.Method(r.Method),
			logger.Path(r.URL.Path),
			logger.Component("error_handler"),
		)

		resp := JSONError(NewHTTPError(info.StatusCode, info.Message))
		if renderErr := resp.Render(ctx.ResponseWriter(), r); renderErr != nil {
			log.ErrorContext(r.Context(), "failed to render error response",
				logger.Error(renderErr),
				logger.Component("error_handler"),
			)
		}
	}
}
