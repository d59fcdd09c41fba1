// Package handler provides typed HTTP handlers.
//
// A HandlerFunc receives a Context and a request struct populated by binders,
// and returns a Response that renders itself:
//
//	type PortalRequest struct {
//		ReturnURL string `json:"returnUrl"`
//	}
//
//	func portal(ctx handler.Context, req PortalRequest) handler.Response {
//		link, err := billing.Portal(ctx, userID, req.ReturnURL)
//		if err != nil {
//			return handler.JSONError(err)
//		}
//		return handler.JSON(map[string]string{"url": link.URL})
//	}
//
//	r.Post("/portal", handler.Wrap(portal,
//		handler.WithBinder[handler.Context, PortalRequest](binder.JSON()),
//		handler.WithErrorHandler[handler.Context, PortalRequest](handler.NewErrorHandler(log)),
//	))
//
// # Responses
//
// JSON renders any value without an envelope. JSONError renders an ErrorBody,
// taking the status and message from an HTTPError and falling back to a
// generic 500. JSONFailure adds the underlying error message outside
// production. HTML executes an html/template and Redirect sends the browser
// elsewhere.
//
// # Errors
//
// Bind and render failures go to the ErrorHandler. NewErrorHandler classifies
// them with ClassifyError, logs 4xx at WARN and 5xx at ERROR, and writes an
// ErrorBody.
package handler
