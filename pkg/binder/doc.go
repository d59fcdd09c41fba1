// Package binder decodes HTTP request data into Go structs for the handler
// package.
//
// JSON reads the request body; Query reads URL query parameters using
// `query` struct tags. Both return errors wrapping the sentinels in errors.go,
// which handler.ClassifyError maps to 4xx responses.
//
//	type CheckoutRequest struct {
//		Tier    string `json:"tier"`
//		PriceID string `json:"priceId"`
//	}
//
//	h := handler.Wrap(createCheckout,
//		handler.WithBinder[handler.Context, CheckoutRequest](binder.JSON()),
//	)
package binder
