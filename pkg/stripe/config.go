package stripe

import "time"

// Config holds client settings, usually parsed from the environment with
// config.Load. SecretKey may be empty when the key is fetched at startup from
// the credentials loader and passed to NewClient separately.
type Config struct {
	SecretKey         string        `env:"STRIPE_SECRET_KEY"`
	APIVersion        string        `env:"STRIPE_API_VERSION" envDefault:"2025-07-30.basil"`
	Host              string        `env:"STRIPE_API_HOST" envDefault:"api.stripe.com"`
	Port              int           `env:"STRIPE_API_PORT" envDefault:"443"`
	Protocol          string        `env:"STRIPE_API_PROTOCOL" envDefault:"https"`
	MaxNetworkRetries int           `env:"STRIPE_MAX_NETWORK_RETRIES" envDefault:"2"`
	Timeout           time.Duration `env:"STRIPE_TIMEOUT" envDefault:"80s"`
	InitialRetryDelay time.Duration `env:"STRIPE_INITIAL_RETRY_DELAY" envDefault:"500ms"`
	MaxRetryDelay     time.Duration `env:"STRIPE_MAX_RETRY_DELAY" envDefault:"5s"`
	Telemetry         bool          `env:"STRIPE_TELEMETRY" envDefault:"true"`
	CircuitFailures   int           `env:"STRIPE_CIRCUIT_FAILURES" envDefault:"5"` // consecutive failures that open the breaker; 0 disables it
	CircuitCoolDown   time.Duration `env:"STRIPE_CIRCUIT_COOLDOWN" envDefault:"30s"`
}

const (
	defaultHost       = "api.stripe.com"
	defaultAPIVersion = "2025-07-30.basil"
	defaultMaxRetries = 2
	defaultTimeout    = 80 * time.Second
	userAgent         = "masky-stripe/1.0"
)

// DefaultConfig mirrors the envDefault values above.
func DefaultConfig() Config {
	return Config{
		APIVersion:        defaultAPIVersion,
		Host:              defaultHost,
		Port:              443,
		Protocol:          "https",
		MaxNetworkRetries: defaultMaxRetries,
		Timeout:           defaultTimeout,
		InitialRetryDelay: defaultInitialDelay,
		MaxRetryDelay:     defaultMaxDelay,
		Telemetry:         true,
		CircuitFailures:   5,
		CircuitCoolDown:   30 * time.Second,
	}
}
