package auth

import (
	"context"

	"golang.org/x/oauth2"
)

// OAuth provider identifiers used across the auth system.
const (
	OAuthProviderTwitch = "twitch"
)

// ProviderAdapter abstracts provider-specific OAuth behavior behind a minimal,
// provider-agnostic interface. Implementations encapsulate all protocol
// details (oauth2.Config, token exchange, API calls) and expose only the
// primitives the login flow needs.
type ProviderAdapter interface {
	// ProviderID returns a stable provider identifier used for user IDs and logging.
	ProviderID() string

	// AuthURL builds the provider authorization URL for the given state token.
	AuthURL(state string) (string, error)

	// ResolveProfile exchanges an authorization code for a token and loads the
	// user's profile. redirectURL overrides the configured redirect URI when
	// the code was issued for a different one; empty keeps the default.
	//
	// On invalid code or token exchange failures it returns ErrInvalidCode.
	ResolveProfile(ctx context.Context, code, redirectURL string) (ProviderProfile, error)
}

// ProviderProfile represents the normalized user profile returned by a provider.
type ProviderProfile struct {
	// ProviderUserID is the provider's stable user identifier.
	ProviderUserID string

	// Login is the provider username (optional).
	Login string

	// Email is the raw email returned by the provider, empty when the
	// email scope was not granted.
	Email string

	// EmailVerified indicates whether the provider asserts the email is verified.
	EmailVerified bool

	// Name is the display name from the provider (optional).
	Name string

	// AvatarURL is the URL to the user's avatar image (optional).
	AvatarURL string

	// Token is the provider token obtained during the exchange.
	Token *oauth2.Token
}
