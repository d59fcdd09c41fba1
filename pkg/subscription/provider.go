package subscription

import (
	"context"
	"time"
)

// BillingProvider defines the minimal interface for payment provider integrations.
// The provider handles all payment complexity through hosted checkouts and
// customer portals, so no card data passes through this service.
type BillingProvider interface {
	// CreateCustomer registers a billing customer for userID.
	CreateCustomer(ctx context.Context, userID, email string) (customerID string, err error)

	// CreateCheckoutLink creates a hosted subscription checkout session.
	CreateCheckoutLink(ctx context.Context, req CheckoutRequest) (*CheckoutLink, error)

	// GetCustomerPortalLink returns a temporary link to the customer portal
	// where users can update payment methods, cancel, or change plans.
	GetCustomerPortalLink(ctx context.Context, customerID, returnURL string) (*PortalLink, error)

	// GetSubscription fetches the current state of a subscription.
	GetSubscription(ctx context.Context, subscriptionID string) (*ProviderSubscription, error)

	// CancelAtPeriodEnd schedules the subscription to end with its current period.
	CancelAtPeriodEnd(ctx context.Context, subscriptionID string) (*ProviderSubscription, error)

	// ParseWebhook validates and parses incoming webhook data.
	// Must validate signature to prevent webhook spoofing attacks.
	ParseWebhook(ctx context.Context, payload []byte, signature string) (*WebhookEvent, error)
}

// CheckoutRequest contains data needed to create a checkout session.
type CheckoutRequest struct {
	UserID     string
	CustomerID string // provider's customer ID
	Tier       Tier
	PriceID    string // provider's price identifier
	SuccessURL string // redirect after successful payment
	CancelURL  string // redirect if customer cancels
}

// CheckoutLink represents a hosted checkout session.
type CheckoutLink struct {
	URL       string
	SessionID string
	ExpiresAt time.Time
}

// PortalLink represents a customer portal session.
type PortalLink struct {
	URL string // pre-authenticated customer portal URL
}

// ProviderSubscription is the provider's view of a subscription.
type ProviderSubscription struct {
	ID                string
	CustomerID        string
	Status            Status
	Tier              Tier // from metadata, empty when absent
	CurrentPeriodEnd  time.Time
	CancelAtPeriodEnd bool
}

// WebhookEvent represents a normalized webhook event from the billing provider.
type WebhookEvent struct {
	ID             string    // provider's event ID, used for deduplication
	Type           EventType // normalized event type
	ProviderEvent  string    // original provider event name
	UserID         string    // from checkout metadata, empty otherwise
	CustomerID     string
	SubscriptionID string
	Tier           Tier // from metadata, empty when absent
	Status         Status
	PeriodEnd      time.Time
	CancelAtEnd    bool
}
