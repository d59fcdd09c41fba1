// Package webhook authenticates signed webhook deliveries from the payment
// provider.
//
// The sender signs every delivery with HMAC-SHA256 over "{timestamp}.{body}"
// and sends the result in the Stripe-Signature header:
//
//	t=1700000000,v1=<hex>[,v1=<hex>...]
//
// Several v1 entries appear while a secret is being rotated; a delivery is
// authentic when any of them matches. Signatures are compared in constant time
// and a failure never reveals which candidate came closest.
//
// # Usage
//
//	payload, _ := io.ReadAll(r.Body)
//	event, err := webhook.ConstructEvent[stripe.Event](payload,
//	    r.Header.Get(webhook.SignatureHeader), secret)
//	switch {
//	case errors.Is(err, webhook.ErrStaleTimestamp):
//	    // replayed or delayed delivery
//	case err != nil:
//	    // reject with 400
//	}
//
// Timestamps older than DefaultTolerance (five minutes) are rejected. Pass
// WithTolerance(0) to skip the freshness check. Verification is a pure
// function and safe for concurrent use.
package webhook
