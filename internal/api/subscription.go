package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/dmitrymomot/masky/handler"
	"github.com/dmitrymomot/masky/pkg/binder"
	"github.com/dmitrymomot/masky/pkg/subscription"
	"github.com/dmitrymomot/masky/svc/auth"
)

type subscriptionView struct {
	Tier                 subscription.Tier   `json:"tier"`
	Status               subscription.Status `json:"status"`
	StripeCustomerID     string              `json:"stripeCustomerId,omitempty"`
	StripeSubscriptionID string              `json:"stripeSubscriptionId,omitempty"`
	CurrentPeriodEnd     *time.Time          `json:"currentPeriodEnd"`
	CancelAtPeriodEnd    bool                `json:"cancelAtPeriodEnd"`
	DaysRemaining        int                 `json:"daysRemaining"`
	Limits               map[string]int64    `json:"limits"`
}

type statusResponse struct {
	Subscription subscriptionView `json:"subscription"`
}

type checkoutRequest struct {
	Tier       string `json:"tier"`
	PriceID    string `json:"priceId"`
	SuccessURL string `json:"successUrl"`
	CancelURL  string `json:"cancelUrl"`
}

type portalRequest struct {
	ReturnURL string `json:"returnUrl"`
}

type urlResponse struct {
	URL string `json:"url"`
}

type cancelResponse struct {
	Message      string         `json:"message"`
	Subscription canceledDetail `json:"subscription"`
}

type canceledDetail struct {
	ID                string     `json:"id"`
	CancelAtPeriodEnd bool       `json:"cancelAtPeriodEnd"`
	CurrentPeriodEnd  *time.Time `json:"currentPeriodEnd"`
}

func newSubscriptionView(acc *subscription.Account, now time.Time) subscriptionView {
	tier := acc.EffectiveTier()
	status := acc.Status
	if status == "" {
		status = subscription.StatusActive
	}
	plan := subscription.PlanFor(tier)
	limits := make(map[string]int64, len(plan.Limits))
	for res, n := range plan.Limits {
		limits[string(res)] = n
	}
	return subscriptionView{
		Tier:                 tier,
		Status:               status,
		StripeCustomerID:     acc.CustomerID,
		StripeSubscriptionID: acc.SubscriptionID,
		CurrentPeriodEnd:     timePtr(acc.CurrentPeriodEnd),
		CancelAtPeriodEnd:    acc.CancelAtPeriodEnd,
		DaysRemaining:        acc.DaysRemainingAt(now),
		Limits:               limits,
	}
}

func (a *api) status() http.HandlerFunc {
	return wrap(a, func(ctx handler.Context, _ struct{}) handler.Response {
		user, ok := auth.UserFromContext(ctx)
		if !ok {
			return handler.JSONError(handler.ErrUnauthorized)
		}
		acc, err := a.billing.Status(ctx, user.ID)
		if err != nil {
			return billingError(err, "Failed to get subscription status")
		}
		return handler.JSON(statusResponse{Subscription: newSubscriptionView(acc, time.Now())})
	})
}

func (a *api) createCheckout() http.HandlerFunc {
	return wrap(a, func(ctx handler.Context, req checkoutRequest) handler.Response {
		user, ok := auth.UserFromContext(ctx)
		if !ok {
			return handler.JSONError(handler.ErrUnauthorized)
		}
		link, err := a.billing.CreateCheckout(ctx, user, subscription.CheckoutParams{
			Tier:       req.Tier,
			PriceID:    req.PriceID,
			SuccessURL: req.SuccessURL,
			CancelURL:  req.CancelURL,
		})
		if err != nil {
			return billingError(err, "Failed to create checkout session")
		}
		return handler.JSON(urlResponse{URL: link.URL})
	}, binder.JSON())
}

func (a *api) cancel() http.HandlerFunc {
	return wrap(a, func(ctx handler.Context, _ struct{}) handler.Response {
		user, ok := auth.UserFromContext(ctx)
		if !ok {
			return handler.JSONError(handler.ErrUnauthorized)
		}
		acc, err := a.billing.Cancel(ctx, user.ID)
		if err != nil {
			return billingError(err, "Failed to cancel subscription")
		}
		return handler.JSON(cancelResponse{
			Message: "Subscription canceled successfully",
			Subscription: canceledDetail{
				ID:                acc.SubscriptionID,
				CancelAtPeriodEnd: acc.CancelAtPeriodEnd,
				CurrentPeriodEnd:  timePtr(acc.CurrentPeriodEnd),
			},
		})
	})
}

func (a *api) portal() http.HandlerFunc {
	return wrap(a, func(ctx handler.Context, req portalRequest) handler.Response {
		user, ok := auth.UserFromContext(ctx)
		if !ok {
			return handler.JSONError(handler.ErrUnauthorized)
		}
		returnURL := req.ReturnURL
		if returnURL == "" {
			returnURL = ctx.Request().Header.Get("Origin")
		}
		link, err := a.billing.Portal(ctx, user.ID, returnURL)
		if err != nil {
			return billingError(err, "Failed to create portal session")
		}
		return handler.JSON(urlResponse{URL: link.URL})
	}, binder.JSON())
}

// billingError maps validation failures to 400 and everything else to a 500
// carrying summary.
func billingError(err error, summary string) handler.Response {
	var msg string
	switch {
	case errors.Is(err, subscription.ErrInvalidTier):
		msg = "Invalid tier specified"
	case errors.Is(err, subscription.ErrInvalidPriceID):
		msg = "Invalid price ID provided"
	case errors.Is(err, subscription.ErrMissingRedirectURL):
		msg = "Success URL is required"
	case errors.Is(err, subscription.ErrNoSubscription):
		msg = "No active subscription found"
	case errors.Is(err, subscription.ErrNoCustomer):
		msg = "No Stripe customer found"
	case errors.Is(err, subscription.ErrMissingUserID):
		return handler.JSONError(handler.ErrUnauthorized)
	default:
		return handler.JSONFailure(summary, err)
	}
	return handler.JSONError(handler.NewHTTPError(http.StatusBadRequest, msg))
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	t = t.UTC()
	return &t
}
