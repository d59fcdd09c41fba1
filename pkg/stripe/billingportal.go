package stripe

import (
	"context"
	"net/http"
	"net/url"
)

// PortalSession is a short-lived link to the hosted customer portal.
type PortalSession struct {
	ID        string `json:"id"`
	Object    string `json:"object"`
	URL       string `json:"url"`
	Customer  string `json:"customer"`
	ReturnURL string `json:"return_url"`
}

type PortalSessionParams struct {
	Customer  string
	ReturnURL string
}

func (p PortalSessionParams) Values() url.Values {
	v := url.Values{}
	setString(v, "customer", p.Customer)
	setString(v, "return_url", p.ReturnURL)
	return v
}

type BillingPortalSessionsClient struct {
	s *Sender
}

func (c *BillingPortalSessionsClient) Create(ctx context.Context, params PortalSessionParams, opts ...CallOption) (*PortalSession, error) {
	return do[PortalSession](ctx, c.s, http.MethodPost, "/v1/billing_portal/sessions", params, opts...)
}
