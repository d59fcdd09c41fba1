package auth

import (
	"context"

	"github.com/dmitrymomot/masky/pkg/jwt"
	"github.com/dmitrymomot/masky/pkg/subscription"
)

// UserFromContext returns the caller authenticated by jwt.Middleware.
func UserFromContext(ctx context.Context) (subscription.User, bool) {
	claims, ok := jwt.GetClaims(ctx)
	if !ok || claims.Subject == "" {
		return subscription.User{}, false
	}
	return subscription.User{ID: claims.Subject, Email: claims.Email}, true
}
