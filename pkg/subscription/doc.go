// Package subscription manages paid tiers: tier limits and features, hosted
// checkout and customer portal links, and the billing events that keep each
// user's account in sync with the payment provider.
//
// # Architecture
//
//   - Service: main interface providing all subscription operations
//   - Plan: a tier with its resource limits and features
//   - BillingProvider: abstracts payment provider interactions
//   - AccountStore: persists one Account per user
//   - EventDeduper: optional record of processed webhook events
//
// StripeProvider implements BillingProvider with the Stripe API client and
// verifies webhooks with package webhook. MemoryStore is an in-process
// AccountStore; package mongo provides a persistent one and package redis a
// deduper.
//
// # Tiers
//
// Three tiers exist: free, standard and pro. Unknown or empty tiers resolve to
// free, so a missing account behaves like a free one.
//
//	check := subscription.CheckLimit(subscription.TierStandard, subscription.ResourceAvatars, 5)
//	if !check.Allowed {
//		hint := subscription.SuggestUpgrade(subscription.TierStandard, subscription.ResourceAvatars)
//		fmt.Println(hint.Message) // Upgrade to Pro to get unlimited avatars!
//	}
//
// # Quick Start
//
//	client, _ := stripe.NewClient(stripeCfg)
//	provider, err := subscription.NewStripeProvider(client, webhookSecret)
//	if err != nil {
//		return err
//	}
//
//	svc := subscription.NewService(provider, subscription.NewMemoryStore(),
//		subscription.WithLogger(log),
//		subscription.WithDeduper(deduper),
//	)
//
//	link, err := svc.CreateCheckout(ctx, subscription.User{ID: uid, Email: email},
//		subscription.CheckoutParams{
//			Tier:       "pro",
//			PriceID:    "price_pro_monthly",
//			SuccessURL: "https://masky.ai/membership?success=1",
//			CancelURL:  "https://masky.ai/membership",
//		},
//	)
//
// # Webhook Processing
//
// HandleWebhook verifies the signature before anything else. Checkout
// completion activates the purchased tier; subscription updates copy status
// and period; deletion downgrades to free; failed payments mark the account
// past due. Other event types are acknowledged and ignored.
//
// # Error Handling
//
//	switch {
//	case errors.Is(err, subscription.ErrWebhookVerificationFailed),
//		errors.Is(err, subscription.ErrMissingSignature):
//		// reject with 400
//	case errors.Is(err, subscription.ErrNoSubscription):
//		// nothing to cancel
//	case errors.Is(err, subscription.ErrInvalidTier),
//		errors.Is(err, subscription.ErrInvalidPriceID):
//		// bad request
//	}
package subscription
