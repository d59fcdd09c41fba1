package stripe

import (
	"context"
	"net/http"
	"net/url"
)

// Customer is a billing customer.
type Customer struct {
	ID       string            `json:"id"`
	Object   string            `json:"object"`
	Email    string            `json:"email"`
	Name     string            `json:"name"`
	Metadata map[string]string `json:"metadata"`
	Created  int64             `json:"created"`
	Deleted  bool              `json:"deleted"`
}

type CustomerParams struct {
	Email       string
	Name        string
	Description string
	Metadata    map[string]string
}

func (p CustomerParams) Values() url.Values {
	v := url.Values{}
	setString(v, "email", p.Email)
	setString(v, "name", p.Name)
	setString(v, "description", p.Description)
	setMetadata(v, p.Metadata)
	return v
}

type CustomersClient struct {
	s *Sender
}

func (c *CustomersClient) Create(ctx context.Context, params CustomerParams, opts ...CallOption) (*Customer, error) {
	return do[Customer](ctx, c.s, http.MethodPost, "/v1/customers", params, opts...)
}

func (c *CustomersClient) Get(ctx context.Context, id string, opts ...CallOption) (*Customer, error) {
	return do[Customer](ctx, c.s, http.MethodGet, "/v1/customers/"+url.PathEscape(id), nil, opts...)
}
