// Command api runs the masky billing and login service.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/masky/internal/api"
	"github.com/dmitrymomot/masky/pkg/config"
	"github.com/dmitrymomot/masky/pkg/cookie"
	"github.com/dmitrymomot/masky/pkg/credentials"
	"github.com/dmitrymomot/masky/pkg/environment"
	"github.com/dmitrymomot/masky/pkg/httpserver"
	"github.com/dmitrymomot/masky/pkg/jwt"
	"github.com/dmitrymomot/masky/pkg/logger"
	"github.com/dmitrymomot/masky/pkg/metrics"
	"github.com/dmitrymomot/masky/pkg/mongo"
	"github.com/dmitrymomot/masky/pkg/ratelimiter"
	"github.com/dmitrymomot/masky/pkg/redis"
	"github.com/dmitrymomot/masky/pkg/stripe"
	"github.com/dmitrymomot/masky/pkg/subscription"
	"github.com/dmitrymomot/masky/svc/auth"
)

type appConfig struct {
	Env           string        `env:"APP_ENV" envDefault:"production"`
	ServiceName   string        `env:"SERVICE_NAME" envDefault:"masky-api"`
	JWTSigningKey string        `env:"JWT_SIGNING_KEY,required"`
	JWTIssuer     string        `env:"JWT_ISSUER" envDefault:"masky"`
	JWTTTL        time.Duration `env:"JWT_TTL" envDefault:"24h"`
	ReturnURL     string        `env:"BILLING_RETURN_URL" envDefault:"https://masky.ai"`
}

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		return err
	}
	env := environment.Parse(cfg.Env)

	var logCfg logger.Config
	if err := config.Load(&logCfg); err != nil {
		return err
	}
	log := logger.New(
		logger.WithEnvironment(cfg.Env, cfg.ServiceName),
		logger.WithConfig(logCfg),
		logger.WithContextValue("request_id", middleware.RequestIDKey),
	)
	logger.SetAsDefault(log)

	var (
		credsCfg  credentials.Config
		stripeCfg stripe.Config
		mongoCfg  mongo.Config
		redisCfg  redis.Config
		serverCfg httpserver.Config
		apiCfg    api.Config
		cookieCfg cookie.Config
		twitchCfg auth.TwitchConfig
		limitCfg  ratelimiter.Config
	)
	for _, load := range []func() error{
		func() error { return config.Load(&credsCfg) },
		func() error { return config.Load(&stripeCfg) },
		func() error { return config.Load(&mongoCfg) },
		func() error { return config.Load(&redisCfg) },
		func() error { return config.Load(&serverCfg) },
		func() error { return config.Load(&apiCfg) },
		func() error { return config.Load(&cookieCfg) },
		func() error { return config.Load(&twitchCfg) },
		func() error { return config.Load(&limitCfg) },
	} {
		if err := load(); err != nil {
			return err
		}
	}

	var closers []httpserver.Option

	creds, err := credentials.NewLoader(ctx, credsCfg, credentials.WithLogger(log))
	if err != nil {
		return err
	}
	stripeCreds, err := creds.Stripe(ctx)
	if err != nil {
		return err
	}
	twitchCreds, err := creds.Twitch(ctx)
	if err != nil {
		return err
	}

	recorder, err := metrics.New()
	if err != nil {
		return err
	}
	closers = append(closers, httpserver.WithCloser("metrics", recorder.Shutdown))

	stripeCfg.SecretKey = stripeCreds.SecretKey
	stripeOpts := []stripe.Option{
		stripe.WithLogger(log.With(logger.Component("stripe"))),
		stripe.WithObserver(recorder.StripeObserver()),
	}
	if stripeCfg.CircuitFailures > 0 {
		stripeOpts = append(stripeOpts, stripe.WithCircuitBreaker(
			stripe.NewCircuitBreaker(stripeCfg.CircuitFailures, 1, stripeCfg.CircuitCoolDown),
		))
	}
	stripeClient, err := stripe.NewClient(stripeCfg, stripeOpts...)
	if err != nil {
		return err
	}
	provider, err := subscription.NewStripeProvider(stripeClient, stripeCreds.WebhookSecret)
	if err != nil {
		return err
	}

	var checks []httpserver.Check

	backend, err := accountStore(ctx, env, mongoCfg, log)
	if err != nil {
		return err
	}
	if backend.closer != nil {
		closers = append(closers, httpserver.WithCloser("mongo", backend.closer))
		checks = append(checks, backend.check)
	}

	billingOpts := []subscription.ServiceOption{
		subscription.WithLogger(log.With(logger.Component("billing"))),
		subscription.WithReturnURL(cfg.ReturnURL),
		subscription.WithEventRecorder(recorder.RecordWebhook),
	}
	var limitStore ratelimiter.Store
	if redisCfg.ConnectionURL != "" {
		client, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			return err
		}
		closers = append(closers, httpserver.WithCloser("redis", func(context.Context) error { return client.Close() }))
		checks = append(checks, httpserver.Check{Name: "redis", Fn: redis.Healthcheck(client)})
		billingOpts = append(billingOpts, subscription.WithDeduper(
			redis.NewEventDeduper(client, redisCfg.KeyPrefix, redisCfg.EventTTL),
		))
		limitStore = redis.NewRateLimitStore(client, redisCfg.KeyPrefix)
	} else {
		log.WarnContext(ctx, "REDIS_URL not set, webhook events are not deduplicated")
		mem := ratelimiter.NewMemoryStore()
		closers = append(closers, httpserver.WithCloser("ratelimiter", func(context.Context) error {
			mem.Close()
			return nil
		}))
		limitStore = mem
	}
	limiter, err := ratelimiter.NewBucket(limitStore, limitCfg)
	if err != nil {
		return err
	}
	billing := subscription.NewService(provider, backend.store, billingOpts...)

	tokens, err := jwt.NewFromString(cfg.JWTSigningKey, jwt.WithIssuer(cfg.JWTIssuer), jwt.WithTTL(cfg.JWTTTL))
	if err != nil {
		return err
	}
	twitch, err := auth.NewTwitchAdapter(twitchCreds, twitchCfg)
	if err != nil {
		return err
	}
	login := auth.NewLoginService(twitch, backend.store, tokens,
		auth.WithLogger(log.With(logger.Component("auth"))),
	)

	if cookieCfg.Secrets == "" {
		cookieCfg.Secrets = cfg.JWTSigningKey
	}
	cookies, err := cookie.NewFromConfig(cookieCfg)
	if err != nil {
		return err
	}

	router := api.NewRouter(apiCfg, api.Deps{
		Billing:      billing,
		Login:        login,
		Tokens:       tokens,
		Cookies:      cookies,
		HealthChecks: checks,
		Metrics:      recorder.Handler(),
		Limiter:      limiter,
		Logger:       log,
		Env:          env,
	})

	srv := httpserver.NewFromConfig(serverCfg,
		append(closers, httpserver.WithLogger(log.With(logger.Component("http"))))...,
	)
	return srv.Run(ctx, router)
}

type accountBackend struct {
	store  subscription.AccountStore
	check  httpserver.Check
	closer func(context.Context) error
}

// accountStore connects to MongoDB. Without MONGODB_URL, non-production
// stages fall back to an in-memory store.
func accountStore(ctx context.Context, env environment.Environment, cfg mongo.Config, log *slog.Logger) (accountBackend, error) {
	if cfg.ConnectionURL == "" {
		if env == environment.Production {
			return accountBackend{}, errors.New("MONGODB_URL is required in production")
		}
		log.WarnContext(ctx, "MONGODB_URL not set, using in-memory account store")
		return accountBackend{store: subscription.NewMemoryStore()}, nil
	}

	db, err := mongo.NewWithDatabase(ctx, cfg)
	if err != nil {
		return accountBackend{}, err
	}
	store := mongo.NewAccountStore(db, cfg.AccountsCollection)
	if err := store.EnsureIndexes(ctx); err != nil {
		return accountBackend{}, err
	}
	return accountBackend{
		store:  store,
		check:  httpserver.Check{Name: "mongo", Fn: mongo.Healthcheck(db.Client())},
		closer: db.Client().Disconnect,
	}, nil
}
