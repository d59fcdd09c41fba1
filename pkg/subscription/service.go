package subscription

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/dmitrymomot/masky/pkg/logger"
)

// Service defines the public interface for subscription management.
type Service interface {
	// Limits and features
	CheckLimit(ctx context.Context, userID string, res Resource, current int64) (LimitCheck, error)
	HasFeature(ctx context.Context, userID string, feature Feature) bool

	// Account management
	Status(ctx context.Context, userID string) (*Account, error)
	Cancel(ctx context.Context, userID string) (*Account, error)

	// Billing provider interactions
	CreateCheckout(ctx context.Context, user User, params CheckoutParams) (*CheckoutLink, error)
	Portal(ctx context.Context, userID, returnURL string) (*PortalLink, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

// User identifies the authenticated caller.
type User struct {
	ID    string
	Email string
}

// CheckoutParams is the caller's checkout request.
type CheckoutParams struct {
	Tier       string
	PriceID    string
	SuccessURL string
	CancelURL  string
}

// DefaultReturnURL is where the customer portal sends users back when the
// request names no return URL.
const DefaultReturnURL = "https://masky.ai"

type service struct {
	provider  BillingProvider
	store     AccountStore
	deduper   EventDeduper
	logger    *slog.Logger
	returnURL string
	onEvent   func(context.Context, EventType, EventOutcome)
}

// NewService creates a new Service with the given dependencies.
// Panics if provider or store is nil to fail fast during initialization.
func NewService(provider BillingProvider, store AccountStore, opts ...ServiceOption) Service {
	if provider == nil {
		panic("subscription: BillingProvider is required")
	}
	if store == nil {
		panic("subscription: AccountStore is required")
	}

	s := &service{
		provider:  provider,
		store:     store,
		logger:    slog.New(slog.DiscardHandler),
		returnURL: DefaultReturnURL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CheckLimit checks whether the user may create one more instance of res.
func (s *service) CheckLimit(ctx context.Context, userID string, res Resource, current int64) (LimitCheck, error) {
	acc, err := s.account(ctx, userID)
	if err != nil {
		return LimitCheck{}, err
	}
	return CheckLimit(acc.EffectiveTier(), res, current), nil
}

// HasFeature checks if a feature is available on the user's tier.
// Returns false on any error to fail closed.
func (s *service) HasFeature(ctx context.Context, userID string, feature Feature) bool {
	acc, err := s.account(ctx, userID)
	if err != nil {
		return false
	}
	return HasFeature(acc.EffectiveTier(), feature)
}

// Status returns the user's account. When a subscription is on file its
// status is refreshed from the provider; refresh failures fall back to the
// stored snapshot.
func (s *service) Status(ctx context.Context, userID string) (*Account, error) {
	acc, err := s.account(ctx, userID)
	if err != nil {
		return nil, err
	}
	if acc.SubscriptionID == "" {
		return acc, nil
	}

	sub, err := s.provider.GetSubscription(ctx, acc.SubscriptionID)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to refresh subscription, using stored data",
			logger.UserID(userID),
			logger.SubscriptionID(acc.SubscriptionID),
			logger.Error(err),
		)
		return acc, nil
	}

	acc.Status = sub.Status
	acc.CancelAtPeriodEnd = sub.CancelAtPeriodEnd
	if !sub.CurrentPeriodEnd.IsZero() {
		acc.CurrentPeriodEnd = sub.CurrentPeriodEnd
	}
	if err := s.store.Save(ctx, acc); err != nil {
		s.logger.WarnContext(ctx, "failed to store refreshed subscription",
			logger.UserID(userID),
			logger.Error(err),
		)
	}
	return acc, nil
}

// Cancel schedules the user's subscription to end with the current period.
func (s *service) Cancel(ctx context.Context, userID string) (*Account, error) {
	acc, err := s.account(ctx, userID)
	if err != nil {
		return nil, err
	}
	if acc.SubscriptionID == "" {
		return nil, ErrNoSubscription
	}

	sub, err := s.provider.CancelAtPeriodEnd(ctx, acc.SubscriptionID)
	if err != nil {
		return nil, err
	}

	acc.CancelAtPeriodEnd = true
	if !sub.CurrentPeriodEnd.IsZero() {
		acc.CurrentPeriodEnd = sub.CurrentPeriodEnd
	}
	if err := s.store.Save(ctx, acc); err != nil {
		return nil, errors.Join(ErrStoreFailure, err)
	}

	s.logger.InfoContext(ctx, "subscription set to cancel at period end",
		logger.UserID(userID),
		logger.SubscriptionID(acc.SubscriptionID),
	)
	return acc, nil
}

// CreateCheckout starts a hosted checkout for a paid tier. The billing
// customer is created on first use and remembered on the account.
func (s *service) CreateCheckout(ctx context.Context, user User, params CheckoutParams) (*CheckoutLink, error) {
	if user.ID == "" {
		return nil, ErrMissingUserID
	}
	tier, ok := ParseTier(params.Tier)
	if !ok || !tier.IsPaid() {
		return nil, ErrInvalidTier
	}
	if !strings.HasPrefix(params.PriceID, "price_") {
		return nil, ErrInvalidPriceID
	}
	if params.SuccessURL == "" {
		return nil, ErrMissingRedirectURL
	}

	acc, err := s.account(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	if acc.CustomerID == "" {
		customerID, err := s.provider.CreateCustomer(ctx, user.ID, user.Email)
		if err != nil {
			return nil, err
		}
		acc.CustomerID = customerID
		if acc.Email == "" {
			acc.Email = user.Email
		}
		if err := s.store.Save(ctx, acc); err != nil {
			return nil, errors.Join(ErrStoreFailure, err)
		}
		s.logger.InfoContext(ctx, "billing customer created",
			logger.UserID(user.ID),
			logger.CustomerID(customerID),
		)
	}

	return s.provider.CreateCheckoutLink(ctx, CheckoutRequest{
		UserID:     user.ID,
		CustomerID: acc.CustomerID,
		Tier:       tier,
		PriceID:    params.PriceID,
		SuccessURL: params.SuccessURL,
		CancelURL:  params.CancelURL,
	})
}

// Portal returns a customer portal link for users with a billing customer.
func (s *service) Portal(ctx context.Context, userID, returnURL string) (*PortalLink, error) {
	acc, err := s.account(ctx, userID)
	if err != nil {
		return nil, err
	}
	if acc.CustomerID == "" {
		return nil, ErrNoCustomer
	}
	if returnURL == "" {
		returnURL = s.returnURL
	}
	return s.provider.GetCustomerPortalLink(ctx, acc.CustomerID, returnURL)
}

// HandleWebhook verifies and applies a billing event. Redelivered events are
// acknowledged without being applied again. If applying fails the event is
// forgotten so the provider's next delivery is processed.
func (s *service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.provider.ParseWebhook(ctx, payload, signature)
	if err != nil {
		return err
	}

	log := s.logger.With(
		logger.EventID(event.ID),
		logger.EventType(event.ProviderEvent),
	)

	if s.deduper != nil && event.ID != "" {
		seen, err := s.deduper.MarkProcessed(ctx, event.ID)
		switch {
		case err != nil:
			log.WarnContext(ctx, "event deduplication unavailable, processing anyway", logger.Error(err))
		case seen:
			log.InfoContext(ctx, "duplicate webhook event skipped")
			s.record(ctx, event.Type, OutcomeDuplicate)
			return nil
		}
	}

	if err := s.apply(ctx, log, event); err != nil {
		if s.deduper != nil && event.ID != "" {
			if ferr := s.deduper.Forget(ctx, event.ID); ferr != nil {
				log.WarnContext(ctx, "failed to release event for redelivery", logger.Error(ferr))
			}
		}
		s.record(ctx, event.Type, OutcomeFailed)
		return err
	}

	if event.Type == EventUnhandled {
		s.record(ctx, event.Type, OutcomeIgnored)
	} else {
		s.record(ctx, event.Type, OutcomeApplied)
	}
	return nil
}

func (s *service) record(ctx context.Context, t EventType, o EventOutcome) {
	if s.onEvent != nil {
		s.onEvent(ctx, t, o)
	}
}

func (s *service) apply(ctx context.Context, log *slog.Logger, event *WebhookEvent) error {
	switch event.Type {
	case EventCheckoutCompleted:
		return s.checkoutCompleted(ctx, log, event)
	case EventSubscriptionUpdated:
		return s.subscriptionUpdated(ctx, log, event)
	case EventSubscriptionDeleted:
		return s.subscriptionDeleted(ctx, log, event)
	case EventPaymentFailed:
		return s.paymentFailed(ctx, log, event)
	default:
		log.InfoContext(ctx, "unhandled webhook event type")
		return nil
	}
}

func (s *service) checkoutCompleted(ctx context.Context, log *slog.Logger, event *WebhookEvent) error {
	if event.UserID == "" || event.SubscriptionID == "" {
		return ErrMalformedEvent
	}
	tier, ok := ParseTier(string(event.Tier))
	if !ok {
		return errors.Join(ErrMalformedEvent, ErrInvalidTier)
	}

	sub, err := s.provider.GetSubscription(ctx, event.SubscriptionID)
	if err != nil {
		return err
	}

	acc, err := s.account(ctx, event.UserID)
	if err != nil {
		return err
	}
	acc.CustomerID = event.CustomerID
	acc.SubscriptionID = event.SubscriptionID
	acc.Tier = tier
	acc.Status = StatusActive
	acc.CurrentPeriodEnd = sub.CurrentPeriodEnd
	acc.CancelAtPeriodEnd = sub.CancelAtPeriodEnd

	if err := s.store.Save(ctx, acc); err != nil {
		return errors.Join(ErrStoreFailure, err)
	}

	log.InfoContext(ctx, "subscription created",
		logger.UserID(acc.UserID),
		logger.SubscriptionID(acc.SubscriptionID),
		logger.Tier(string(tier)),
	)
	return nil
}

func (s *service) subscriptionUpdated(ctx context.Context, log *slog.Logger, event *WebhookEvent) error {
	acc, ok, err := s.accountByCustomer(ctx, log, event.CustomerID)
	if err != nil || !ok {
		return err
	}

	previous := acc.EffectiveTier()
	if tier, valid := ParseTier(string(event.Tier)); valid {
		acc.Tier = tier
	}
	acc.SubscriptionID = event.SubscriptionID
	acc.Status = event.Status
	acc.CancelAtPeriodEnd = event.CancelAtEnd
	if !event.PeriodEnd.IsZero() {
		acc.CurrentPeriodEnd = event.PeriodEnd
	}

	if err := s.store.Save(ctx, acc); err != nil {
		return errors.Join(ErrStoreFailure, err)
	}

	attrs := []any{
		logger.UserID(acc.UserID),
		logger.Tier(string(acc.Tier)),
		slog.String("status", string(acc.Status)),
	}
	if previous != acc.EffectiveTier() {
		if cmp := ComparePlans(PlanFor(previous), PlanFor(acc.Tier)); cmp.IsDowngrade() {
			attrs = append(attrs, slog.Any("lost_features", cmp.LostFeatures))
		}
	}
	log.InfoContext(ctx, "subscription updated", attrs...)
	return nil
}

func (s *service) subscriptionDeleted(ctx context.Context, log *slog.Logger, event *WebhookEvent) error {
	acc, ok, err := s.accountByCustomer(ctx, log, event.CustomerID)
	if err != nil || !ok {
		return err
	}

	// A late deletion of a replaced subscription must not downgrade the newer one.
	if acc.SubscriptionID != "" && event.SubscriptionID != "" && acc.SubscriptionID != event.SubscriptionID {
		log.InfoContext(ctx, "deleted subscription is not the current one, ignoring",
			logger.UserID(acc.UserID),
			logger.SubscriptionID(event.SubscriptionID),
		)
		return nil
	}

	acc.Tier = TierFree
	acc.Status = StatusCanceled
	acc.SubscriptionID = ""
	acc.CancelAtPeriodEnd = false

	if err := s.store.Save(ctx, acc); err != nil {
		return errors.Join(ErrStoreFailure, err)
	}

	log.InfoContext(ctx, "subscription canceled, downgraded to free", logger.UserID(acc.UserID))
	return nil
}

func (s *service) paymentFailed(ctx context.Context, log *slog.Logger, event *WebhookEvent) error {
	acc, ok, err := s.accountByCustomer(ctx, log, event.CustomerID)
	if err != nil || !ok {
		return err
	}

	acc.Status = StatusPastDue
	if err := s.store.Save(ctx, acc); err != nil {
		return errors.Join(ErrStoreFailure, err)
	}

	log.WarnContext(ctx, "payment failed", logger.UserID(acc.UserID))
	return nil
}

// account loads the user's account, returning a fresh free-tier account when
// none is stored.
func (s *service) account(ctx context.Context, userID string) (*Account, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}

	acc, err := s.store.Get(ctx, userID)
	switch {
	case errors.Is(err, ErrAccountNotFound):
		return &Account{UserID: userID, Tier: TierFree, Status: StatusActive}, nil
	case err != nil:
		return nil, errors.Join(ErrStoreFailure, err)
	}
	if acc.Tier == "" {
		acc.Tier = TierFree
	}
	return acc, nil
}

// accountByCustomer reports ok=false without error when no account is linked
// to the customer; such events are acknowledged and dropped.
func (s *service) accountByCustomer(ctx context.Context, log *slog.Logger, customerID string) (*Account, bool, error) {
	if customerID == "" {
		return nil, false, ErrMalformedEvent
	}

	acc, err := s.store.FindByCustomerID(ctx, customerID)
	switch {
	case errors.Is(err, ErrAccountNotFound):
		log.InfoContext(ctx, "no account linked to customer", logger.CustomerID(customerID))
		return nil, false, nil
	case err != nil:
		return nil, false, errors.Join(ErrStoreFailure, err)
	}
	return acc, true, nil
}
