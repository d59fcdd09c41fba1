package api

import "time"

// Config holds HTTP API settings.
type Config struct {
	AppOrigin       string        `env:"APP_ORIGIN" envDefault:"https://masky.ai"`
	StateCookieName string        `env:"OAUTH_STATE_COOKIE" envDefault:"masky_oauth_state"`
	StateTTL        time.Duration `env:"OAUTH_STATE_TTL" envDefault:"10m"`
	RequireState    bool          `env:"OAUTH_REQUIRE_STATE" envDefault:"false"`
	MaxWebhookBytes int64         `env:"STRIPE_WEBHOOK_MAX_BYTES" envDefault:"65536"`
	HandlerTimeout  time.Duration `env:"HTTP_HANDLER_TIMEOUT" envDefault:"30s"`
	HealthTimeout   time.Duration `env:"HEALTHCHECK_TIMEOUT" envDefault:"3s"`
	CORSOrigins     []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"` // "*" reflects any origin
}

// DefaultConfig returns the settings used when no environment is loaded.
func DefaultConfig() Config {
	return Config{
		AppOrigin:       "https://masky.ai",
		StateCookieName: "masky_oauth_state",
		StateTTL:        10 * time.Minute,
		MaxWebhookBytes: 64 << 10,
		HandlerTimeout:  30 * time.Second,
		HealthTimeout:   3 * time.Second,
		CORSOrigins:     []string{"*"},
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.AppOrigin == "" {
		c.AppOrigin = d.AppOrigin
	}
	if c.StateCookieName == "" {
		c.StateCookieName = d.StateCookieName
	}
	if c.StateTTL <= 0 {
		c.StateTTL = d.StateTTL
	}
	if c.MaxWebhookBytes <= 0 {
		c.MaxWebhookBytes = d.MaxWebhookBytes
	}
	if c.HandlerTimeout <= 0 {
		c.HandlerTimeout = d.HandlerTimeout
	}
	if c.HealthTimeout <= 0 {
		c.HealthTimeout = d.HealthTimeout
	}
	if len(c.CORSOrigins) == 0 {
		c.CORSOrigins = d.CORSOrigins
	}
	return c
}
