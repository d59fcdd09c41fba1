package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/dmitrymomot/masky/pkg/cookie"
	"github.com/dmitrymomot/masky/pkg/environment"
	"github.com/dmitrymomot/masky/pkg/httpserver"
	"github.com/dmitrymomot/masky/pkg/jwt"
	"github.com/dmitrymomot/masky/pkg/ratelimiter"
	"github.com/dmitrymomot/masky/pkg/subscription"
	"github.com/dmitrymomot/masky/svc/auth"
)

// LoginFlow is the provider login used by the OAuth routes.
// *auth.LoginService implements it.
type LoginFlow interface {
	AuthURL() (authURL, state string, err error)
	Callback(ctx context.Context, code, redirectURL string) (*auth.Session, error)
}

// Deps are the services behind the routes. Billing, Login, Tokens and
// Cookies are required.
type Deps struct {
	Billing      subscription.Service
	Login        LoginFlow
	Tokens       *jwt.Service
	Cookies      *cookie.Manager
	HealthChecks []httpserver.Check
	Metrics      http.Handler        // served at /metrics when set
	Limiter      *ratelimiter.Bucket // per-IP limit on login and checkout when set
	Logger       *slog.Logger
	Env          environment.Environment
}

type api struct {
	cfg     Config
	billing subscription.Service
	login   LoginFlow
	cookies *cookie.Manager
	limiter *ratelimiter.Bucket
	log     *slog.Logger
}

// NewRouter builds the HTTP API. Every route is served both at the root and
// under /api, so the service works behind a gateway that strips the prefix
// and one that does not.
func NewRouter(cfg Config, d Deps) http.Handler {
	if d.Billing == nil || d.Login == nil || d.Tokens == nil || d.Cookies == nil {
		panic("api: billing, login, tokens and cookies are required")
	}
	if d.Logger == nil {
		d.Logger = slog.New(slog.DiscardHandler)
	}
	cfg = cfg.withDefaults()

	a := &api{
		cfg:     cfg,
		billing: d.Billing,
		login:   d.Login,
		cookies: d.Cookies,
		limiter: d.Limiter,
		log:     d.Logger,
	}
	authn := jwt.MiddlewareWithConfig(jwt.MiddlewareConfig{
		Service:      d.Tokens,
		ErrorHandler: unauthorized,
	})

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		requestLogger(d.Logger),
		middleware.Recoverer,
		cors.Handler(cors.Options{
			AllowOriginFunc:  allowOrigin(cfg.CORSOrigins),
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"*"},
			AllowCredentials: true,
			MaxAge:           86400,
		}),
		environment.Middleware(d.Env),
	)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/healthz", httpserver.HealthCheckHandler(d.Logger, cfg.HealthTimeout, d.HealthChecks...))
	r.Get("/livez", httpserver.HealthCheckHandler(d.Logger, cfg.HealthTimeout))
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}

	routes := func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(cfg.HandlerTimeout))

			r.Post("/stripe/webhook", a.webhook())
			r.With(a.limit("login")).Get("/twitch_oauth", a.twitchOAuth())
			r.With(a.limit("login")).Post("/twitch_oauth_callback", a.twitchCallback())

			r.Route("/subscription", func(r chi.Router) {
				r.Use(authn)
				r.Get("/status", a.status())
				r.With(a.limit("checkout")).Post("/create-checkout", a.createCheckout())
				r.Post("/cancel", a.cancel())
				r.Post("/portal", a.portal())
			})
		})
	}
	r.Group(routes)
	r.Route("/api", routes)

	return r
}
