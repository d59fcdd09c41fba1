package webhook

import "time"

const (
	// DefaultTolerance is how old a signed timestamp may be.
	DefaultTolerance = 300 * time.Second

	// DefaultScheme tags the signatures computed with HMAC-SHA256.
	DefaultScheme = "v1"

	// SignatureHeader is the HTTP header that carries the signature list.
	SignatureHeader = "Stripe-Signature"
)

type options struct {
	tolerance time.Duration
	scheme    string
	now       func() time.Time
}

// Option adjusts verification.
type Option func(*options)

// WithTolerance sets the maximum timestamp age. Zero or negative values turn
// the freshness check off.
func WithTolerance(d time.Duration) Option {
	return func(o *options) { o.tolerance = d }
}

// WithScheme selects which signature entries are compared.
func WithScheme(scheme string) Option {
	return func(o *options) {
		if scheme != "" {
			o.scheme = scheme
		}
	}
}

// WithNow replaces the clock, mostly for tests.
func WithNow(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func newOptions(opts []Option) options {
	o := options{
		tolerance: DefaultTolerance,
		scheme:    DefaultScheme,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
