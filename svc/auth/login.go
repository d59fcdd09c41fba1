package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log/slog"
	"strings"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/dmitrymomot/masky/pkg/jwt"
	"github.com/dmitrymomot/masky/pkg/logger"
	"github.com/dmitrymomot/masky/pkg/subscription"
)

// TokenIssuer signs session tokens. *jwt.Service implements it.
type TokenIssuer interface {
	Issue(claims jwt.Claims) (string, time.Time, error)
}

// Session is the result of a successful login.
type Session struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      SessionUser `json:"user"`
}

// SessionUser is the public part of the logged-in profile.
type SessionUser struct {
	UID         string `json:"uid"`
	DisplayName string `json:"displayName,omitempty"`
	PhotoURL    string `json:"photoURL,omitempty"`
	Email       string `json:"email,omitempty"`
	TwitchID    string `json:"twitchId"`
}

// LoginService turns a provider authorization code into a session token and
// makes sure the user has an account record.
type LoginService struct {
	adapter  ProviderAdapter
	accounts subscription.AccountStore
	tokens   TokenIssuer
	logger   *slog.Logger
}

// LoginOption configures a LoginService.
type LoginOption func(*LoginService)

// WithLogger sets the logger used for login events.
func WithLogger(l *slog.Logger) LoginOption {
	return func(s *LoginService) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewLoginService creates a login service.
// Panics if any dependency is nil to fail fast during initialization.
func NewLoginService(adapter ProviderAdapter, accounts subscription.AccountStore, tokens TokenIssuer, opts ...LoginOption) *LoginService {
	if adapter == nil || accounts == nil || tokens == nil {
		panic("auth: adapter, account store and token issuer are required")
	}
	s := &LoginService{
		adapter:  adapter,
		accounts: accounts,
		tokens:   tokens,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AuthURL returns the provider authorization URL and the state embedded in it.
// Callers keep the state (typically in a cookie) and compare it on callback.
func (s *LoginService) AuthURL() (authURL, state string, err error) {
	state, err = generateState()
	if err != nil {
		return "", "", err
	}
	authURL, err = s.adapter.AuthURL(state)
	if err != nil {
		return "", "", err
	}
	return authURL, state, nil
}

// Callback completes the login for an authorization code.
func (s *LoginService) Callback(ctx context.Context, code, redirectURL string) (*Session, error) {
	if strings.TrimSpace(code) == "" {
		return nil, ErrMissingCode
	}

	profile, err := s.adapter.ResolveProfile(ctx, code, redirectURL)
	if err != nil {
		return nil, err
	}

	provider := s.adapter.ProviderID()
	uid := provider + ":" + profile.ProviderUserID
	email := strings.ToLower(strings.TrimSpace(profile.Email))
	log := s.logger.With(logger.UserID(uid), logger.Provider(provider))

	s.ensureAccount(ctx, log, uid, email)

	claims := jwt.Claims{
		RegisteredClaims: gojwt.RegisteredClaims{Subject: uid},
		Email:            email,
		Provider:         provider,
		TwitchID:         profile.ProviderUserID,
		DisplayName:      profile.Name,
		ProfileImage:     profile.AvatarURL,
	}
	token, expiresAt, err := s.tokens.Issue(claims)
	if err != nil {
		return nil, errors.Join(ErrSessionIssue, err)
	}

	log.InfoContext(ctx, "user logged in")

	return &Session{
		Token:     token,
		ExpiresAt: expiresAt,
		User: SessionUser{
			UID:         uid,
			DisplayName: profile.Name,
			PhotoURL:    profile.AvatarURL,
			Email:       email,
			TwitchID:    profile.ProviderUserID,
		},
	}, nil
}

// ensureAccount creates the account on first login and keeps the email
// current. Failures are logged only: a missing account reads as free.
func (s *LoginService) ensureAccount(ctx context.Context, log *slog.Logger, uid, email string) {
	acc, err := s.accounts.Get(ctx, uid)
	switch {
	case errors.Is(err, subscription.ErrAccountNotFound):
		acc = &subscription.Account{
			UserID: uid,
			Email:  email,
			Tier:   subscription.TierFree,
			Status: subscription.StatusActive,
		}
	case err != nil:
		log.WarnContext(ctx, "failed to load account on login", logger.Error(err))
		return
	case email == "" || acc.Email == email:
		return
	default:
		acc.Email = email
	}

	if err := s.accounts.Save(ctx, acc); err != nil {
		log.WarnContext(ctx, "failed to save account on login", logger.Error(err))
	}
}

func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
