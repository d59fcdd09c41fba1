package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/dmitrymomot/masky/handler"
	"github.com/dmitrymomot/masky/pkg/logger"
	"github.com/dmitrymomot/masky/pkg/subscription"
)

// SignatureHeader carries the Stripe webhook signature.
const SignatureHeader = "Stripe-Signature"

type receivedResponse struct {
	Received bool `json:"received"`
}

// webhook reads the raw body, since the signature covers the exact bytes.
// Failures to apply a verified event return 500 so Stripe redelivers it.
func (a *api) webhook() http.HandlerFunc {
	return wrap(a, func(ctx handler.Context, _ struct{}) handler.Response {
		r := ctx.Request()
		signature := r.Header.Get(SignatureHeader)
		if signature == "" {
			return handler.JSONError(handler.NewHTTPError(http.StatusBadRequest, "No signature provided"))
		}

		payload, err := io.ReadAll(http.MaxBytesReader(ctx.ResponseWriter(), r.Body, a.cfg.MaxWebhookBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return handler.JSONError(handler.NewHTTPError(http.StatusRequestEntityTooLarge, "Payload too large"))
			}
			return handler.JSONError(handler.NewHTTPError(http.StatusBadRequest, "Unreadable payload"))
		}

		err = a.billing.HandleWebhook(ctx, payload, signature)
		switch {
		case err == nil:
			return handler.JSON(receivedResponse{Received: true})
		case errors.Is(err, subscription.ErrMissingSignature),
			errors.Is(err, subscription.ErrWebhookVerificationFailed):
			a.log.WarnContext(ctx, "stripe webhook rejected", logger.Error(err))
			return handler.JSONError(handler.NewHTTPError(http.StatusBadRequest, "Invalid signature"))
		case errors.Is(err, subscription.ErrMalformedEvent):
			a.log.WarnContext(ctx, "malformed stripe webhook", logger.Error(err))
			return handler.JSONError(handler.NewHTTPError(http.StatusBadRequest, "Malformed event"))
		default:
			a.log.ErrorContext(ctx, "stripe webhook failed", logger.Error(err))
			return handler.JSONFailure("Webhook handler failed", err)
		}
	})
}
