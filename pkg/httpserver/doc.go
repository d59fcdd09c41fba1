// Package httpserver runs the API's net/http server with graceful shutdown,
// configurable timeouts, readiness probes and ordered release of the
// service's dependencies.
//
// Run binds the listener synchronously, so a bad address fails fast with
// ErrStart, and then serves until the context is cancelled, SIGINT or SIGTERM
// arrives, or Shutdown is called. Shutdown drains in-flight requests and then
// runs the closers registered with WithCloser in reverse order, all within
// the shutdown timeout.
//
// # Usage
//
//	srv := httpserver.NewFromConfig(cfg.HTTP,
//		httpserver.WithLogger(log),
//		httpserver.WithCloser("mongo", db.Client().Disconnect),
//		httpserver.WithCloser("metrics", rec.Shutdown),
//	)
//
//	r.Get("/healthz", httpserver.HealthCheckHandler(log, 2*time.Second,
//		httpserver.Check{Name: "mongo", Fn: mongo.Healthcheck(db.Client())},
//	))
//
//	if err := srv.Run(ctx, r); err != nil {
//		log.Error("server stopped", logger.Error(err))
//	}
//
// # Errors
//
// Listen and serve failures are wrapped with ErrStart; drain and closer
// failures with ErrShutdown. Use errors.Is to distinguish them.
package httpserver
