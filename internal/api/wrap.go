package api

import (
	"net/http"

	"github.com/dmitrymomot/masky/handler"
)

// wrap adapts a typed handler with the API's error handler and the given
// binders.
func wrap[R any](a *api, h handler.HandlerFunc[handler.Context, R], binders ...handler.Bind) http.HandlerFunc {
	return handler.Wrap(h,
		handler.WithBinders[handler.Context, R](binders...),
		handler.WithErrorHandler[handler.Context, R](handler.NewErrorHandler(a.log)),
	)
}
