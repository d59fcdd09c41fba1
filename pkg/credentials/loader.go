package credentials

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscredentials "github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/smithy-go"
	"golang.org/x/sync/singleflight"

	"github.com/dmitrymomot/masky/pkg/environment"
	"github.com/dmitrymomot/masky/pkg/logger"
)

// SSMClient is the subset of the SSM API used by Loader.
type SSMClient interface {
	GetParameters(ctx context.Context, params *ssm.GetParametersInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersOutput, error)
}

// Stripe holds the payment API secrets.
type Stripe struct {
	SecretKey      string
	WebhookSecret  string
	PublishableKey string
}

// Twitch holds the OAuth application credentials.
type Twitch struct {
	ClientID     string
	ClientSecret string
}

// secret maps one value to its SSM parameter name and local variable.
type secret struct {
	param    string
	env      string
	optional bool
}

var (
	stripeSecrets = []secret{
		{param: "stripe_secret_key", env: "STRIPE_SECRET_KEY"},
		{param: "stripe_webhook_secret", env: "STRIPE_WEBHOOK_SECRET"},
		{param: "stripe_publishable_key", env: "STRIPE_PUBLISHABLE_KEY", optional: true},
	}
	twitchSecrets = []secret{
		{param: "twitch_client_id", env: "TWITCH_CLIENT_ID"},
		{param: "twitch_client_secret", env: "TWITCH_CLIENT_SECRET"},
	}
)

// Loader fetches secret bundles once per process. The first successful fetch
// of a bundle is cached for the lifetime of the Loader and there is no way to
// reset it; failures are not cached, so the next call tries again. Concurrent
// first calls share a single fetch. Safe for concurrent use.
type Loader struct {
	cfg    Config
	client SSMClient
	getenv func(string) string
	logger *slog.Logger

	group singleflight.Group
	mu    sync.RWMutex
	cache map[string]map[string]string
}

// Option configures a Loader.
type Option func(*Loader)

// WithSSMClient injects the SSM client instead of building one from the
// default AWS configuration.
func WithSSMClient(c SSMClient) Option {
	return func(l *Loader) { l.client = c }
}

func WithLogger(log *slog.Logger) Option {
	return func(l *Loader) {
		if log != nil {
			l.logger = log
		}
	}
}

// WithGetenv replaces os.Getenv for local mode lookups.
func WithGetenv(fn func(string) string) Option {
	return func(l *Loader) {
		if fn != nil {
			l.getenv = fn
		}
	}
}

// NewLoader creates a loader. Outside local mode an SSM client is built from
// the default AWS configuration unless one was injected.
func NewLoader(ctx context.Context, cfg Config, opts ...Option) (*Loader, error) {
	l := &Loader{
		cfg:    cfg,
		getenv: os.Getenv,
		logger: slog.New(slog.DiscardHandler),
		cache:  make(map[string]map[string]string),
	}
	for _, opt := range opts {
		opt(l)
	}

	if l.Local() || l.client != nil {
		return l, nil
	}

	awsOptions := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		awsOptions = append(awsOptions,
			awsconfig.WithCredentialsProvider(awscredentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID,
				cfg.SecretAccessKey,
				"",
			)),
		)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsOptions...)
	if err != nil {
		return nil, errors.Join(ErrAWSConfig, err)
	}
	l.client = ssm.NewFromConfig(awsCfg, func(o *ssm.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return l, nil
}

// Local reports whether secrets come from the process environment.
func (l *Loader) Local() bool {
	return l.cfg.Offline || environment.Parse(l.cfg.Stage) == environment.Local
}

// Stripe returns the payment API secrets.
func (l *Loader) Stripe(ctx context.Context) (Stripe, error) {
	v, err := l.load(ctx, "stripe", stripeSecrets)
	if err != nil {
		return Stripe{}, err
	}
	return Stripe{
		SecretKey:      v["stripe_secret_key"],
		WebhookSecret:  v["stripe_webhook_secret"],
		PublishableKey: v["stripe_publishable_key"],
	}, nil
}

// Twitch returns the OAuth application credentials.
func (l *Loader) Twitch(ctx context.Context) (Twitch, error) {
	v, err := l.load(ctx, "twitch", twitchSecrets)
	if err != nil {
		return Twitch{}, err
	}
	return Twitch{
		ClientID:     v["twitch_client_id"],
		ClientSecret: v["twitch_client_secret"],
	}, nil
}

func (l *Loader) load(ctx context.Context, bundle string, secrets []secret) (map[string]string, error) {
	if v, ok := l.cached(bundle); ok {
		return v, nil
	}

	v, err, _ := l.group.Do(bundle, func() (any, error) {
		if v, ok := l.cached(bundle); ok {
			return v, nil
		}

		var (
			values map[string]string
			err    error
		)
		if l.Local() {
			values, err = l.fromEnv(secrets)
		} else {
			values, err = l.fromSSM(ctx, secrets)
		}
		if err != nil {
			l.logger.ErrorContext(ctx, "Failed to load secrets",
				logger.Component("credentials"),
				slog.String("bundle", bundle),
				logger.Error(err),
			)
			return nil, err
		}

		l.mu.Lock()
		l.cache[bundle] = values
		l.mu.Unlock()

		l.logger.InfoContext(ctx, "Secrets loaded",
			logger.Component("credentials"),
			slog.String("bundle", bundle),
			slog.Bool("local", l.Local()),
		)
		return values, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]string), nil
}

func (l *Loader) cached(bundle string) (map[string]string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	v, ok := l.cache[bundle]
	return v, ok
}

func (l *Loader) fromEnv(secrets []secret) (map[string]string, error) {
	values := make(map[string]string, len(secrets))
	for _, s := range secrets {
		v := l.getenv(s.env)
		if v == "" && !s.optional {
			return nil, fmt.Errorf("%w: %s", ErrMissingLocalSecret, s.env)
		}
		values[s.param] = v
	}
	return values, nil
}

// paramName builds /<prefix>/<stage>/<name>.
func (l *Loader) paramName(name string) string {
	stage := l.cfg.Stage
	if stage == "" {
		stage = string(environment.Production)
	}
	return path.Join("/", l.cfg.Prefix, stage, name)
}

func (l *Loader) fromSSM(ctx context.Context, secrets []secret) (map[string]string, error) {
	names := make([]string, 0, len(secrets))
	byName := make(map[string]secret, len(secrets))
	for _, s := range secrets {
		n := l.paramName(s.param)
		names = append(names, n)
		byName[n] = s
	}

	out, err := l.client.GetParameters(ctx, &ssm.GetParametersInput{
		Names:          names,
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return nil, classifySSMError(err)
	}

	values := make(map[string]string, len(secrets))
	for _, p := range out.Parameters {
		name := aws.ToString(p.Name)
		if s, ok := byName[name]; ok {
			values[s.param] = aws.ToString(p.Value)
		}
	}
	for name, s := range byName {
		if values[s.param] == "" && !s.optional {
			return nil, fmt.Errorf("%w: %s", ErrParameterNotFound, name)
		}
	}
	return values, nil
}

func classifySSMError(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "AccessDeniedException", "AccessDenied":
			return errors.Join(ErrAccessDenied, err)
		case "ParameterNotFound":
			return errors.Join(ErrParameterNotFound, err)
		}
	}
	return errors.Join(ErrFetchFailed, err)
}
