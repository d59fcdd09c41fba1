package jwt

import (
	"errors"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Signing algorithm accepted by Parse. Tokens signed with anything else are
// rejected before the signature is checked.
const HeaderAlgorithm = "HS256"

// DefaultTTL is the lifetime of issued session tokens.
const DefaultTTL = 24 * time.Hour

// Claims are the session claims carried by tokens issued after a Twitch login.
// Subject is the user ID ("twitch:<id>").
type Claims struct {
	gojwt.RegisteredClaims
	Email        string `json:"email,omitempty"`
	Provider     string `json:"provider,omitempty"`
	TwitchID     string `json:"twitch_id,omitempty"`
	DisplayName  string `json:"display_name,omitempty"`
	ProfileImage string `json:"profile_image,omitempty"`
}

// Service issues and validates HS256 session tokens.
// The signing key is kept in memory only and should be cryptographically secure.
type Service struct {
	signingKey []byte
	issuer     string
	ttl        time.Duration
	now        func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithIssuer sets the iss claim written on issue and required on parse.
func WithIssuer(iss string) Option {
	return func(s *Service) { s.issuer = iss }
}

// WithTTL sets the lifetime of issued tokens. Non-positive values are ignored.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a new JWT service with the provided signing key.
// The key should be at least 32 bytes for adequate security with HMAC-SHA256.
func New(signingKey []byte, opts ...Option) (*Service, error) {
	if len(signingKey) == 0 {
		return nil, ErrMissingSigningKey
	}

	s := &Service{
		signingKey: signingKey,
		ttl:        DefaultTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// NewFromString creates a new JWT service from a string signing key.
func NewFromString(signingKey string, opts ...Option) (*Service, error) {
	if signingKey == "" {
		return nil, ErrMissingSigningKey
	}
	return New([]byte(signingKey), opts...)
}

// Issue signs claims. Subject is required; ID, issuer and the temporal claims
// are filled in by the service. It returns the token and its expiry.
func (s *Service) Issue(claims Claims) (string, time.Time, error) {
	if claims.Subject == "" {
		return "", time.Time{}, ErrMissingClaims
	}

	now := s.now().Truncate(time.Second)
	expiresAt := now.Add(s.ttl)

	claims.ID = uuid.NewString()
	claims.Issuer = s.issuer
	claims.IssuedAt = gojwt.NewNumericDate(now)
	claims.NotBefore = gojwt.NewNumericDate(now)
	claims.ExpiresAt = gojwt.NewNumericDate(expiresAt)

	token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return "", time.Time{}, errors.Join(ErrInvalidSigningKey, err)
	}
	return token, expiresAt, nil
}

// Parse validates a token and returns its claims. Signature, algorithm,
// expiry, not-before and (when configured) issuer are all checked.
func (s *Service) Parse(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	opts := []gojwt.ParserOption{
		gojwt.WithExpirationRequired(),
		gojwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, gojwt.WithIssuer(s.issuer))
	}

	claims := &Claims{}
	_, err := gojwt.ParseWithClaims(tokenString, claims, func(t *gojwt.Token) (any, error) {
		// Algorithm confusion guard.
		if t.Method.Alg() != HeaderAlgorithm {
			return nil, ErrUnexpectedSigningMethod
		}
		return s.signingKey, nil
	}, opts...)
	if err != nil {
		return nil, classify(err)
	}
	if claims.Subject == "" {
		return nil, ErrInvalidClaims
	}
	return claims, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, gojwt.ErrTokenExpired):
		return errors.Join(ErrExpiredToken, err)
	case errors.Is(err, gojwt.ErrTokenSignatureInvalid):
		return errors.Join(ErrInvalidSignature, err)
	case errors.Is(err, gojwt.ErrTokenUnverifiable):
		return errors.Join(ErrUnexpectedSigningMethod, err)
	case errors.Is(err, gojwt.ErrTokenInvalidIssuer), errors.Is(err, gojwt.ErrTokenRequiredClaimMissing):
		return errors.Join(ErrInvalidClaims, err)
	default:
		return errors.Join(ErrInvalidToken, err)
	}
}
