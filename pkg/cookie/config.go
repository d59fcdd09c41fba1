package cookie

import (
	"net/http"
	"strings"
)

// Config holds cookie manager configuration.
// Secrets is a comma-separated list; the first signs, all verify.
type Config struct {
	Secrets  string        `env:"COOKIE_SECRETS" envDefault:""`
	Path     string        `env:"COOKIE_PATH" envDefault:"/"`
	Domain   string        `env:"COOKIE_DOMAIN" envDefault:""`
	Secure   bool          `env:"COOKIE_SECURE" envDefault:"true"`
	SameSite http.SameSite `env:"COOKIE_SAME_SITE" envDefault:"2"` // 2 = SameSiteLaxMode
}

func (c Config) parseSecrets() []string {
	var secrets []string
	for s := range strings.SplitSeq(c.Secrets, ",") {
		if s = strings.TrimSpace(s); s != "" {
			secrets = append(secrets, s)
		}
	}
	return secrets
}

// NewFromConfig creates a Manager from cfg. Options in opts override it.
func NewFromConfig(cfg Config, opts ...Option) (*Manager, error) {
	configOpts := []Option{WithSecure(cfg.Secure)}
	if cfg.Path != "" {
		configOpts = append(configOpts, WithPath(cfg.Path))
	}
	if cfg.Domain != "" {
		configOpts = append(configOpts, WithDomain(cfg.Domain))
	}
	if cfg.SameSite != 0 {
		configOpts = append(configOpts, WithSameSite(cfg.SameSite))
	}
	return New(cfg.parseSecrets(), append(configOpts, opts...)...)
}
