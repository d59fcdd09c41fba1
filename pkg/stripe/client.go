package stripe

import (
	"context"
	"iter"
	"net/http"
	"net/url"
	"strconv"
)

// Client groups the API resources used by the billing service. Resource
// clients are created once and share a single Sender.
type Client struct {
	Customers             *CustomersClient
	CheckoutSessions      *CheckoutSessionsClient
	Subscriptions         *SubscriptionsClient
	BillingPortalSessions *BillingPortalSessionsClient
}

// NewClient creates a client. See NewSender for the option semantics.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	s, err := NewSender(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{
		Customers:             &CustomersClient{s: s},
		CheckoutSessions:      &CheckoutSessionsClient{s: s},
		Subscriptions:         &SubscriptionsClient{s: s},
		BillingPortalSessions: &BillingPortalSessionsClient{s: s},
	}, nil
}

// CallOption adjusts a single resource call.
type CallOption func(*Request)

// WithIdempotencyKey pins the idempotency key instead of generating one.
func WithIdempotencyKey(key string) CallOption {
	return func(r *Request) { r.IdempotencyKey = key }
}

// WithStripeAccount performs the call on behalf of a connected account.
func WithStripeAccount(accountID string) CallOption {
	return func(r *Request) {
		if r.Header == nil {
			r.Header = http.Header{}
		}
		r.Header.Set("Stripe-Account", accountID)
	}
}

// WithCallRetries overrides the retry budget for one call.
func WithCallRetries(n int) CallOption {
	return func(r *Request) { r.MaxRetries = &n }
}

// do sends a form-encoded call and decodes the JSON result into T.
func do[T any](ctx context.Context, s *Sender, method, path string, params Params, opts ...CallOption) (*T, error) {
	req := Request{Method: method, Path: path}
	if params != nil {
		if method == http.MethodGet || method == http.MethodDelete {
			if q := params.Values().Encode(); q != "" {
				req.Path += "?" + q
			}
		} else {
			req.Body = encodeForm(params)
		}
	}
	for _, opt := range opts {
		opt(&req)
	}

	resp, err := s.Send(ctx, req)
	if err != nil {
		return nil, err
	}

	out := new(T)
	if err := resp.Decode(out); err != nil {
		return nil, err
	}
	return out, nil
}

// List is one page of a list endpoint.
type List[T any] struct {
	Object  string `json:"object"`
	Data    []T    `json:"data"`
	HasMore bool   `json:"has_more"`
	URL     string `json:"url"`
}

// ListParams carries cursor pagination fields shared by list endpoints.
type ListParams struct {
	Limit         int
	StartingAfter string
	EndingBefore  string
}

func (p ListParams) apply(v url.Values) {
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
	setString(v, "starting_after", p.StartingAfter)
	setString(v, "ending_before", p.EndingBefore)
}

// paginate walks pages forward using the last item's ID as cursor.
func paginate[T any](ctx context.Context, fetch func(ctx context.Context, startingAfter string) (*List[T], error), id func(*T) string, startingAfter string) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		cursor := startingAfter
		for {
			page, err := fetch(ctx, cursor)
			if err != nil {
				yield(nil, err)
				return
			}
			for i := range page.Data {
				if !yield(&page.Data[i], nil) {
					return
				}
			}
			if !page.HasMore || len(page.Data) == 0 {
				return
			}
			cursor = id(&page.Data[len(page.Data)-1])
		}
	}
}
