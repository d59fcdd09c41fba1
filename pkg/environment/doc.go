// Package environment propagates the current deployment stage (local,
// development, staging or production) through context.Context.
//
// Stage names coming from configuration are normalized with Parse, which also
// accepts the short aliases dev, stage and prod. Middleware attaches the stage
// to every request so responses can tell production apart:
//
//	env := environment.Parse(cfg.Env)
//	r.Use(environment.Middleware(env))
//
//	if environment.IsProduction(r.Context()) {
//		// hide internal error detail
//	}
package environment
