package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/twitch"

	"github.com/dmitrymomot/masky/pkg/credentials"
)

// DefaultHelixURL is the base URL of the Twitch Helix API.
const DefaultHelixURL = "https://api.twitch.tv/helix"

// TwitchConfig holds the non-secret Twitch OAuth settings. Client credentials
// come from the credentials loader.
type TwitchConfig struct {
	RedirectURL string   `env:"TWITCH_REDIRECT_URL" envDefault:"https://masky.ai/api/twitch_oauth"`
	Scopes      []string `env:"TWITCH_SCOPES" envSeparator:"," envDefault:"user:read:email"`
}

// TwitchOption customizes the Twitch adapter.
type TwitchOption func(*twitchAdapter)

// WithTwitchEndpoint overrides the OAuth endpoints.
func WithTwitchEndpoint(e oauth2.Endpoint) TwitchOption {
	return func(a *twitchAdapter) { a.conf.Endpoint = e }
}

// WithHelixURL overrides the Helix API base URL.
func WithHelixURL(u string) TwitchOption {
	return func(a *twitchAdapter) {
		if u != "" {
			a.helixURL = strings.TrimRight(u, "/")
		}
	}
}

// WithHTTPClient sets the client used for the token exchange and Helix calls.
func WithHTTPClient(c *http.Client) TwitchOption {
	return func(a *twitchAdapter) {
		if c != nil {
			a.httpClient = c
		}
	}
}

type twitchAdapter struct {
	conf       *oauth2.Config
	helixURL   string
	httpClient *http.Client
}

// NewTwitchAdapter creates the Twitch OAuth provider adapter.
func NewTwitchAdapter(creds credentials.Twitch, cfg TwitchConfig, opts ...TwitchOption) (ProviderAdapter, error) {
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return nil, ErrMissingCredentials
	}

	a := &twitchAdapter{
		conf: &oauth2.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint:     twitch.Endpoint,
		},
		helixURL:   DefaultHelixURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// ProviderID returns the Twitch provider identifier.
func (a *twitchAdapter) ProviderID() string {
	return OAuthProviderTwitch
}

// AuthURL builds the Twitch authorization URL with the given state token.
func (a *twitchAdapter) AuthURL(state string) (string, error) {
	if state == "" {
		return "", ErrInvalidState
	}
	return a.conf.AuthCodeURL(state), nil
}

// ResolveProfile exchanges the authorization code and loads the user from Helix.
func (a *twitchAdapter) ResolveProfile(ctx context.Context, code, redirectURL string) (ProviderProfile, error) {
	if code == "" {
		return ProviderProfile{}, ErrMissingCode
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)

	var opts []oauth2.AuthCodeOption
	if redirectURL != "" {
		opts = append(opts, oauth2.SetAuthURLParam("redirect_uri", redirectURL))
	}

	tok, err := a.conf.Exchange(ctx, code, opts...)
	if err != nil {
		return ProviderProfile{}, errors.Join(ErrInvalidCode, err)
	}

	u, err := a.fetchUser(ctx, tok.AccessToken)
	if err != nil {
		return ProviderProfile{}, errors.Join(ErrProfileUnavailable, err)
	}

	return ProviderProfile{
		ProviderUserID: u.ID,
		Login:          u.Login,
		Email:          u.Email,
		// Helix only returns the email when it is verified.
		EmailVerified: u.Email != "",
		Name:          u.DisplayName,
		AvatarURL:     u.ProfileImageURL,
		Token:         tok,
	}, nil
}

func (a *twitchAdapter) fetchUser(ctx context.Context, accessToken string) (*helixUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.helixURL+"/users", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Client-Id", a.conf.ClientID)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("twitch api returned status %d", resp.StatusCode)
	}

	var body struct {
		Data []helixUser `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	if len(body.Data) == 0 || body.Data[0].ID == "" {
		return nil, errors.New("twitch api returned no user")
	}
	return &body.Data[0], nil
}

type helixUser struct {
	ID              string `json:"id"`
	Login           string `json:"login"`
	DisplayName     string `json:"display_name"`
	Email           string `json:"email"`
	ProfileImageURL string `json:"profile_image_url"`
}

// Compile-time interface assertion
var _ ProviderAdapter = (*twitchAdapter)(nil)
