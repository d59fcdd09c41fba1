package handler

import (
	"context"
	"net/http"
)

// Context is what typed handlers receive: the request's context plus the
// raw request and response writer.
type Context interface {
	context.Context
	Request() *http.Request
	ResponseWriter() http.ResponseWriter
}

// NewContext binds w and r. Deadline, cancellation and values come from
// r.Context() as it was at construction.
func NewContext(w http.ResponseWriter, r *http.Request) Context {
	return &requestContext{Context: r.Context(), w: w, r: r}
}

type requestContext struct {
	context.Context
	w http.ResponseWriter
	r *http.Request
}

func (c *requestContext) Request() *http.Request { return c.r }

func (c *requestContext) ResponseWriter() http.ResponseWriter { return c.w }
