package subscription

import "errors"

var (
	ErrAccountNotFound    = errors.New("subscription account not found")
	ErrMissingUserID      = errors.New("user ID is required")
	ErrInvalidTier        = errors.New("invalid subscription tier")
	ErrInvalidPriceID     = errors.New("invalid price ID")
	ErrNoSubscription     = errors.New("no active subscription found")
	ErrNoCustomer         = errors.New("no billing customer found")
	ErrMissingRedirectURL = errors.New("success and cancel URLs are required")

	ErrProviderError             = errors.New("subscription provider error")
	ErrWebhookVerificationFailed = errors.New("webhook signature verification failed")
	ErrMissingSignature          = errors.New("webhook signature is required")
	ErrMalformedEvent            = errors.New("malformed billing event")
	ErrStoreFailure              = errors.New("subscription store failure")

	// Provider-specific errors
	ErrMissingWebhookSecret = errors.New("billing provider webhook secret is required")
	ErrNoCheckoutURL        = errors.New("no checkout URL returned from provider")
	ErrNoPortalURL          = errors.New("no portal URL returned from provider")
)
