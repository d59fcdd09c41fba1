// Package logger builds the service's *slog.Logger and keeps attribute names
// consistent across packages.
//
// New applies stage defaults with WithEnvironment (JSON at INFO in
// production and staging, text at DEBUG elsewhere), operator overrides from
// LOG_LEVEL and LOG_FORMAT with WithConfig, and context extractors that stamp
// request-scoped values on every line:
//
//	log := logger.New(
//		logger.WithEnvironment(cfg.Env, "masky-api"),
//		logger.WithConfig(logCfg),
//		logger.WithContextValue("request_id", middleware.RequestIDKey),
//	)
//	log.InfoContext(ctx, "checkout created", logger.UserID(uid), logger.Tier("pro"))
//
// Attribute helpers such as Error and UserID return an empty Attr for empty
// input, which slog drops, so callers never need a nil check.
package logger
