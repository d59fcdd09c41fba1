package redis

import "time"

// Config holds the Redis connection settings.
type Config struct {
	ConnectionURL  string        `env:"REDIS_URL"`                              // ConnectionURL is the URL of the database, e.g. "redis://:password@localhost:6379/0". Empty disables event deduplication.
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`    // RetryAttempts is the number of retry attempts to connect to the database.
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`   // RetryInterval is the interval between retry attempts. It should be in the format "5s" for 5
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"` // ConnectTimeout is the timeout for connecting to the database. It should be in the format "30s" for 30 seconds.
	EventTTL       time.Duration `env:"REDIS_EVENT_TTL" envDefault:"72h"`       // EventTTL is how long processed webhook event IDs are remembered.
	KeyPrefix      string        `env:"REDIS_KEY_PREFIX" envDefault:"masky"`    // KeyPrefix namespaces every key written by this service.
}
