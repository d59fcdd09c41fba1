package cookie

import (
	"net/http"
	"time"
)

// Options are the attributes written with a cookie. HttpOnly is always set:
// nothing this service stores in a cookie is meant for scripts.
type Options struct {
	Path     string
	Domain   string
	MaxAge   int // seconds; zero makes a session cookie
	Secure   bool
	SameSite http.SameSite
}

type Option func(*Options)

func WithPath(path string) Option { return func(o *Options) { o.Path = path } }

func WithDomain(domain string) Option { return func(o *Options) { o.Domain = domain } }

// WithMaxAge sets the lifetime in seconds.
func WithMaxAge(seconds int) Option { return func(o *Options) { o.MaxAge = seconds } }

func WithSecure(secure bool) Option { return func(o *Options) { o.Secure = secure } }

func WithSameSite(sameSite http.SameSite) Option {
	return func(o *Options) { o.SameSite = sameSite }
}

func (o Options) with(opts []Option) Options {
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o Options) cookie(name, value string) *http.Cookie {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     o.Path,
		Domain:   o.Domain,
		MaxAge:   o.MaxAge,
		Secure:   o.Secure,
		HttpOnly: true,
		SameSite: o.SameSite,
	}
	if o.MaxAge < 0 {
		c.Expires = time.Unix(0, 0)
	}
	return c
}
