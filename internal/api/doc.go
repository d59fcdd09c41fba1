// Package api is the HTTP surface of the billing service.
//
// Routes are served at the root and again under /api:
//
//	GET  /subscription/status           bearer auth
//	POST /subscription/create-checkout  bearer auth, rate limited
//	POST /subscription/cancel           bearer auth
//	POST /subscription/portal           bearer auth
//	POST /stripe/webhook                Stripe-Signature
//	GET  /twitch_oauth                  OAuth redirect URI, rate limited
//	POST /twitch_oauth_callback         code exchange, rate limited
//
// plus /healthz, /livez and, when configured, /metrics at the root.
// Errors are JSON objects with an "error" field and, for upstream failures
// outside production, a "message" field. CORS headers are added for the
// origins in CORS_ALLOWED_ORIGINS.
package api
