package subscription

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dmitrymomot/masky/pkg/stripe"
	"github.com/dmitrymomot/masky/pkg/webhook"
)

// Metadata keys written to checkout sessions and read back from events.
const (
	MetadataUserID = "firebaseUID"
	MetadataTier   = "tier"
)

// StripeProvider implements BillingProvider on top of the Stripe API client.
type StripeProvider struct {
	client         *stripe.Client
	webhookSecret  string
	webhookOptions []webhook.Option
}

// StripeProviderOption configures a StripeProvider.
type StripeProviderOption func(*StripeProvider)

// WithWebhookOptions adjusts signature verification (tolerance, clock).
func WithWebhookOptions(opts ...webhook.Option) StripeProviderOption {
	return func(p *StripeProvider) {
		p.webhookOptions = append(p.webhookOptions, opts...)
	}
}

// NewStripeProvider creates a provider using client for API calls and
// webhookSecret for verifying event signatures.
func NewStripeProvider(client *stripe.Client, webhookSecret string, opts ...StripeProviderOption) (*StripeProvider, error) {
	if client == nil {
		return nil, errors.Join(ErrProviderError, stripe.ErrMissingAPIKey)
	}
	if webhookSecret == "" {
		return nil, ErrMissingWebhookSecret
	}

	p := &StripeProvider{
		client:        client,
		webhookSecret: webhookSecret,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// CreateCustomer creates a customer tagged with the user ID. The idempotency
// key is derived from the user so concurrent first checkouts share one customer.
func (p *StripeProvider) CreateCustomer(ctx context.Context, userID, email string) (string, error) {
	cus, err := p.client.Customers.Create(ctx, stripe.CustomerParams{
		Email:    email,
		Metadata: map[string]string{MetadataUserID: userID},
	}, stripe.WithIdempotencyKey("customer-"+userID))
	if err != nil {
		return "", errors.Join(ErrProviderError, err)
	}
	return cus.ID, nil
}

func (p *StripeProvider) CreateCheckoutLink(ctx context.Context, req CheckoutRequest) (*CheckoutLink, error) {
	session, err := p.client.CheckoutSessions.Create(ctx, stripe.CheckoutSessionParams{
		Customer:           req.CustomerID,
		Mode:               "subscription",
		PaymentMethodTypes: []string{"card"},
		LineItems:          []stripe.LineItemParams{{Price: req.PriceID, Quantity: 1}},
		SuccessURL:         req.SuccessURL,
		CancelURL:          req.CancelURL,
		ClientReferenceID:  req.UserID,
		Metadata: map[string]string{
			MetadataUserID: req.UserID,
			MetadataTier:   string(req.Tier),
		},
	})
	if err != nil {
		return nil, errors.Join(ErrProviderError, err)
	}
	if session.URL == "" {
		return nil, ErrNoCheckoutURL
	}

	return &CheckoutLink{
		URL:       session.URL,
		SessionID: session.ID,
		ExpiresAt: unixTime(session.ExpiresAt),
	}, nil
}

func (p *StripeProvider) GetCustomerPortalLink(ctx context.Context, customerID, returnURL string) (*PortalLink, error) {
	session, err := p.client.BillingPortalSessions.Create(ctx, stripe.PortalSessionParams{
		Customer:  customerID,
		ReturnURL: returnURL,
	})
	if err != nil {
		return nil, errors.Join(ErrProviderError, err)
	}
	if session.URL == "" {
		return nil, ErrNoPortalURL
	}
	return &PortalLink{URL: session.URL}, nil
}

func (p *StripeProvider) GetSubscription(ctx context.Context, subscriptionID string) (*ProviderSubscription, error) {
	sub, err := p.client.Subscriptions.Get(ctx, subscriptionID)
	if err != nil {
		return nil, errors.Join(ErrProviderError, err)
	}
	return toProviderSubscription(sub), nil
}

func (p *StripeProvider) CancelAtPeriodEnd(ctx context.Context, subscriptionID string) (*ProviderSubscription, error) {
	cancel := true
	sub, err := p.client.Subscriptions.Update(ctx, subscriptionID, stripe.SubscriptionUpdateParams{
		CancelAtPeriodEnd: &cancel,
	})
	if err != nil {
		return nil, errors.Join(ErrProviderError, err)
	}
	return toProviderSubscription(sub), nil
}

// ParseWebhook verifies the Stripe-Signature header and normalizes the event.
// Event types the service does not act on come back as EventUnhandled.
func (p *StripeProvider) ParseWebhook(_ context.Context, payload []byte, signature string) (*WebhookEvent, error) {
	if strings.TrimSpace(signature) == "" {
		return nil, ErrMissingSignature
	}

	event, err := webhook.ConstructEvent[stripe.Event](payload, signature, p.webhookSecret, p.webhookOptions...)
	switch {
	case errors.Is(err, webhook.ErrInvalidPayloadEncoding):
		return nil, errors.Join(ErrMalformedEvent, err)
	case err != nil:
		return nil, errors.Join(ErrWebhookVerificationFailed, err)
	}

	out := &WebhookEvent{
		ID:            event.ID,
		Type:          EventUnhandled,
		ProviderEvent: event.Type,
	}

	switch event.Type {
	case stripe.EventCheckoutSessionCompleted:
		var session stripe.CheckoutSession
		if err := event.DecodeObject(&session); err != nil {
			return nil, errors.Join(ErrMalformedEvent, err)
		}
		out.Type = EventCheckoutCompleted
		out.UserID = session.Metadata[MetadataUserID]
		out.Tier = Tier(session.Metadata[MetadataTier])
		out.CustomerID = session.Customer
		out.SubscriptionID = session.Subscription

	case stripe.EventCustomerSubscriptionUpdated, stripe.EventCustomerSubscriptionDeleted:
		var sub stripe.Subscription
		if err := event.DecodeObject(&sub); err != nil {
			return nil, errors.Join(ErrMalformedEvent, err)
		}
		out.Type = EventSubscriptionUpdated
		if event.Type == stripe.EventCustomerSubscriptionDeleted {
			out.Type = EventSubscriptionDeleted
		}
		ps := toProviderSubscription(&sub)
		out.CustomerID = ps.CustomerID
		out.SubscriptionID = ps.ID
		out.Tier = ps.Tier
		out.Status = ps.Status
		out.PeriodEnd = ps.CurrentPeriodEnd
		out.CancelAtEnd = ps.CancelAtPeriodEnd

	case stripe.EventInvoicePaymentFailed:
		var inv stripe.Invoice
		if err := event.DecodeObject(&inv); err != nil {
			return nil, errors.Join(ErrMalformedEvent, err)
		}
		out.Type = EventPaymentFailed
		out.CustomerID = inv.Customer
		out.SubscriptionID = inv.Subscription
		out.Status = StatusPastDue
	}

	return out, nil
}

func toProviderSubscription(sub *stripe.Subscription) *ProviderSubscription {
	return &ProviderSubscription{
		ID:                sub.ID,
		CustomerID:        sub.Customer,
		Status:            Status(sub.Status),
		Tier:              Tier(sub.Metadata[MetadataTier]),
		CurrentPeriodEnd:  unixTime(sub.PeriodEnd()),
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
	}
}

func unixTime(sec int64) time.Time {
	if sec <= 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}
