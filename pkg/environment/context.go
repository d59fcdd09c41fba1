package environment

import (
	"context"
	"strings"
)

// Environment represents the deployment stage the application runs in.
type Environment string

const (
	// Local is a developer machine, usually with offline emulators.
	Local Environment = "local"
	// Development for development environment.
	Development Environment = "development"
	// Staging for staging environment.
	Staging Environment = "staging"
	// Production for production environment.
	Production Environment = "production"
)

// Parse normalizes a stage name, accepting the short aliases used by
// deployment tooling (dev, stage, prod). Unknown names are returned as is.
func Parse(s string) Environment {
	switch v := strings.ToLower(strings.TrimSpace(s)); v {
	case "local", "offline":
		return Local
	case "dev", "development":
		return Development
	case "stage", "staging":
		return Staging
	case "prod", "production":
		return Production
	default:
		return Environment(v)
	}
}

type contextKey struct{}

// WithContext adds environment to context
func WithContext(ctx context.Context, env Environment) context.Context {
	return context.WithValue(ctx, contextKey{}, env)
}

// FromContext retrieves environment from context
func FromContext(ctx context.Context) Environment {
	if ctx == nil {
		return ""
	}
	env, _ := ctx.Value(contextKey{}).(Environment)
	return env
}

func IsProduction(ctx context.Context) bool {
	return FromContext(ctx) == Production
}

func IsStaging(ctx context.Context) bool {
	return FromContext(ctx) == Staging
}

func IsDevelopment(ctx context.Context) bool {
	return FromContext(ctx) == Development
}

// IsLocal reports whether the request runs against local emulators.
func IsLocal(ctx context.Context) bool {
	return FromContext(ctx) == Local
}
