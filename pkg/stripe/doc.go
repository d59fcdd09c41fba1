// Package stripe is a small client for the Stripe HTTP API.
//
// The core is Sender, which turns a logical call into one or more HTTP
// attempts. Transient failures (connection errors, 409, 5xx and responses
// carrying "Stripe-Should-Retry: true") are retried with jittered exponential
// backoff that honors integer Retry-After hints up to 60 seconds. POST calls
// get an idempotency key that is reused across all attempts of the call.
// Non-2xx responses are decoded into *Error, which unwraps to one of the kind
// sentinels:
//
//	_, err := client.Customers.Create(ctx, stripe.CustomerParams{Email: email})
//	switch {
//	case errors.Is(err, stripe.ErrCard):
//	    // show the decline reason
//	case errors.Is(err, stripe.ErrConnection):
//	    // the API was unreachable after every attempt
//	}
//
// When enabled, request metrics (request ID and duration) are kept in a
// bounded buffer and reported on the next request in the
// X-Stripe-Client-Telemetry header. A full buffer drops new entries.
//
// Client wraps a Sender with typed bindings for customers, checkout sessions,
// subscriptions and billing portal sessions. Parameters are form encoded
// using bracket notation for nested keys.
package stripe
