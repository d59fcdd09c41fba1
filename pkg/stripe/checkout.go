package stripe

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// CheckoutSession is a hosted checkout page.
type CheckoutSession struct {
	ID            string            `json:"id"`
	Object        string            `json:"object"`
	URL           string            `json:"url"`
	Mode          string            `json:"mode"`
	Status        string            `json:"status"`
	PaymentStatus string            `json:"payment_status"`
	Customer      string            `json:"customer"`
	Subscription  string            `json:"subscription"`
	Metadata      map[string]string `json:"metadata"`
	ExpiresAt     int64             `json:"expires_at"`
}

type LineItemParams struct {
	Price    string
	Quantity int
}

type CheckoutSessionParams struct {
	Customer           string
	CustomerEmail      string
	Mode               string // payment, setup or subscription
	PaymentMethodTypes []string
	LineItems          []LineItemParams
	SuccessURL         string
	CancelURL          string
	ClientReferenceID  string
	Metadata           map[string]string
	Expand             []string
}

func (p CheckoutSessionParams) Values() url.Values {
	v := url.Values{}
	setString(v, "customer", p.Customer)
	setString(v, "customer_email", p.CustomerEmail)
	setString(v, "mode", p.Mode)
	setString(v, "success_url", p.SuccessURL)
	setString(v, "cancel_url", p.CancelURL)
	setString(v, "client_reference_id", p.ClientReferenceID)
	for i, t := range p.PaymentMethodTypes {
		v.Set(indexKey("payment_method_types", i), t)
	}
	for i, item := range p.LineItems {
		prefix := indexKey("line_items", i)
		v.Set(childKey(prefix, "price"), item.Price)
		if item.Quantity > 0 {
			v.Set(childKey(prefix, "quantity"), strconv.Itoa(item.Quantity))
		}
	}
	setMetadata(v, p.Metadata)
	setExpand(v, p.Expand)
	return v
}

type CheckoutSessionsClient struct {
	s *Sender
}

func (c *CheckoutSessionsClient) Create(ctx context.Context, params CheckoutSessionParams, opts ...CallOption) (*CheckoutSession, error) {
	return do[CheckoutSession](ctx, c.s, http.MethodPost, "/v1/checkout/sessions", params, opts...)
}
