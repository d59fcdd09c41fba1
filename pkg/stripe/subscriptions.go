package stripe

import (
	"context"
	"iter"
	"net/http"
	"net/url"
	"strconv"
)

type Price struct {
	ID      string `json:"id"`
	Product string `json:"product"`
}

type SubscriptionItem struct {
	ID               string `json:"id"`
	Price            Price  `json:"price"`
	Quantity         int    `json:"quantity"`
	CurrentPeriodEnd int64  `json:"current_period_end"`
}

// Subscription is a recurring billing agreement.
type Subscription struct {
	ID                string                 `json:"id"`
	Object            string                 `json:"object"`
	Customer          string                 `json:"customer"`
	Status            string                 `json:"status"`
	CancelAtPeriodEnd bool                   `json:"cancel_at_period_end"`
	CurrentPeriodEnd  int64                  `json:"current_period_end"`
	Metadata          map[string]string      `json:"metadata"`
	Items             List[SubscriptionItem] `json:"items"`
}

// PeriodEnd returns the end of the current billing period. Newer API versions
// report it per item instead of on the subscription.
func (s *Subscription) PeriodEnd() int64 {
	if s.CurrentPeriodEnd > 0 {
		return s.CurrentPeriodEnd
	}
	for _, item := range s.Items.Data {
		if item.CurrentPeriodEnd > 0 {
			return item.CurrentPeriodEnd
		}
	}
	return 0
}

// PriceID returns the price of the first item.
func (s *Subscription) PriceID() string {
	if len(s.Items.Data) == 0 {
		return ""
	}
	return s.Items.Data[0].Price.ID
}

type SubscriptionUpdateParams struct {
	CancelAtPeriodEnd *bool
	Metadata          map[string]string
}

func (p SubscriptionUpdateParams) Values() url.Values {
	v := url.Values{}
	if p.CancelAtPeriodEnd != nil {
		v.Set("cancel_at_period_end", strconv.FormatBool(*p.CancelAtPeriodEnd))
	}
	setMetadata(v, p.Metadata)
	return v
}

type SubscriptionListParams struct {
	ListParams
	Customer string
	Price    string
	Status   string
	Expand   []string
}

func (p SubscriptionListParams) Values() url.Values {
	v := url.Values{}
	p.ListParams.apply(v)
	setString(v, "customer", p.Customer)
	setString(v, "price", p.Price)
	setString(v, "status", p.Status)
	setExpand(v, p.Expand)
	return v
}

type SubscriptionsClient struct {
	s *Sender
}

func (c *SubscriptionsClient) Get(ctx context.Context, id string, opts ...CallOption) (*Subscription, error) {
	return do[Subscription](ctx, c.s, http.MethodGet, "/v1/subscriptions/"+url.PathEscape(id), nil, opts...)
}

func (c *SubscriptionsClient) Update(ctx context.Context, id string, params SubscriptionUpdateParams, opts ...CallOption) (*Subscription, error) {
	return do[Subscription](ctx, c.s, http.MethodPost, "/v1/subscriptions/"+url.PathEscape(id), params, opts...)
}

// Cancel ends the subscription immediately.
func (c *SubscriptionsClient) Cancel(ctx context.Context, id string, opts ...CallOption) (*Subscription, error) {
	return do[Subscription](ctx, c.s, http.MethodDelete, "/v1/subscriptions/"+url.PathEscape(id), nil, opts...)
}

func (c *SubscriptionsClient) List(ctx context.Context, params SubscriptionListParams, opts ...CallOption) (*List[Subscription], error) {
	return do[List[Subscription]](ctx, c.s, http.MethodGet, "/v1/subscriptions", params, opts...)
}

// All iterates over every subscription matching params, fetching further pages
// on demand. Iteration stops at the first error.
func (c *SubscriptionsClient) All(ctx context.Context, params SubscriptionListParams, opts ...CallOption) iter.Seq2[*Subscription, error] {
	fetch := func(ctx context.Context, startingAfter string) (*List[Subscription], error) {
		p := params
		p.StartingAfter = startingAfter
		return c.List(ctx, p, opts...)
	}
	return paginate(ctx, fetch, func(s *Subscription) string { return s.ID }, params.StartingAfter)
}
