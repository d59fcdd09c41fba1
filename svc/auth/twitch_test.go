package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/dmitrymomot/masky/pkg/credentials"
	"github.com/dmitrymomot/masky/svc/auth"
)

var testCreds = credentials.Twitch{ClientID: "client-id", ClientSecret: "client-secret"}

// twitchServer fakes id.twitch.tv/oauth2/token and api.twitch.tv/helix/users.
func twitchServer(t *testing.T, users []map[string]string) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.PostForm.Get("code") != "good-code" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"status":400,"message":"Invalid authorization code"}`))
			return
		}
		assert.Equal(t, "client-id", r.PostForm.Get("client_id"))
		assert.Equal(t, "client-secret", r.PostForm.Get("client_secret"))
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "user-token",
			"refresh_token": "refresh",
			"expires_in":    3600,
			"token_type":    "bearer",
			"redirect_uri":  r.PostForm.Get("redirect_uri"),
		})
	})
	mux.HandleFunc("GET /helix/users", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))
		assert.Equal(t, "client-id", r.Header.Get("Client-Id"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"data": users})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestAdapter(t *testing.T, srv *httptest.Server) auth.ProviderAdapter {
	t.Helper()

	adapter, err := auth.NewTwitchAdapter(testCreds, auth.TwitchConfig{
		RedirectURL: "https://masky.ai/api/twitch_oauth",
		Scopes:      []string{"user:read:email"},
	},
		auth.WithTwitchEndpoint(oauth2.Endpoint{
			AuthURL:   srv.URL + "/oauth2/authorize",
			TokenURL:  srv.URL + "/oauth2/token",
			AuthStyle: oauth2.AuthStyleInParams,
		}),
		auth.WithHelixURL(srv.URL+"/helix/"),
		auth.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return adapter
}

func TestNewTwitchAdapter(t *testing.T) {
	t.Parallel()

	_, err := auth.NewTwitchAdapter(credentials.Twitch{ClientID: "id"}, auth.TwitchConfig{})
	assert.ErrorIs(t, err, auth.ErrMissingCredentials)

	adapter, err := auth.NewTwitchAdapter(testCreds, auth.TwitchConfig{RedirectURL: "https://masky.ai/api/twitch_oauth"})
	require.NoError(t, err)
	assert.Equal(t, auth.OAuthProviderTwitch, adapter.ProviderID())
}

func TestTwitchAdapter_AuthURL(t *testing.T) {
	t.Parallel()

	adapter, err := auth.NewTwitchAdapter(testCreds, auth.TwitchConfig{
		RedirectURL: "https://masky.ai/api/twitch_oauth",
		Scopes:      []string{"user:read:email", "user:read:chat"},
	})
	require.NoError(t, err)

	_, err = adapter.AuthURL("")
	assert.ErrorIs(t, err, auth.ErrInvalidState)

	raw, err := adapter.AuthURL("state-123")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "id.twitch.tv", u.Host)
	assert.Equal(t, "/oauth2/authorize", u.Path)

	q := u.Query()
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "state-123", q.Get("state"))
	assert.Equal(t, "https://masky.ai/api/twitch_oauth", q.Get("redirect_uri"))
	assert.Equal(t, "user:read:email user:read:chat", q.Get("scope"))
}

func TestTwitchAdapter_ResolveProfile(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	user := map[string]string{
		"id":                "141981764",
		"login":             "twitchdev",
		"display_name":      "TwitchDev",
		"email":             "dev@example.com",
		"profile_image_url": "https://static-cdn.jtvnw.net/avatar.png",
	}

	t.Run("resolves profile", func(t *testing.T) {
		t.Parallel()

		adapter := newTestAdapter(t, twitchServer(t, []map[string]string{user}))
		profile, err := adapter.ResolveProfile(ctx, "good-code", "")
		require.NoError(t, err)

		assert.Equal(t, "141981764", profile.ProviderUserID)
		assert.Equal(t, "twitchdev", profile.Login)
		assert.Equal(t, "TwitchDev", profile.Name)
		assert.Equal(t, "dev@example.com", profile.Email)
		assert.True(t, profile.EmailVerified)
		assert.Equal(t, "https://static-cdn.jtvnw.net/avatar.png", profile.AvatarURL)
		require.NotNil(t, profile.Token)
		assert.Equal(t, "user-token", profile.Token.AccessToken)
		assert.Equal(t, "refresh", profile.Token.RefreshToken)
	})

	t.Run("no email scope", func(t *testing.T) {
		t.Parallel()

		adapter := newTestAdapter(t, twitchServer(t, []map[string]string{{"id": "1", "login": "x"}}))
		profile, err := adapter.ResolveProfile(ctx, "good-code", "https://localhost:3000/callback")
		require.NoError(t, err)
		assert.Empty(t, profile.Email)
		assert.False(t, profile.EmailVerified)
	})

	t.Run("missing code", func(t *testing.T) {
		t.Parallel()

		adapter := newTestAdapter(t, twitchServer(t, nil))
		_, err := adapter.ResolveProfile(ctx, "", "")
		assert.ErrorIs(t, err, auth.ErrMissingCode)
	})

	t.Run("rejected code", func(t *testing.T) {
		t.Parallel()

		adapter := newTestAdapter(t, twitchServer(t, nil))
		_, err := adapter.ResolveProfile(ctx, "bad-code", "")
		assert.ErrorIs(t, err, auth.ErrInvalidCode)
	})

	t.Run("empty user list", func(t *testing.T) {
		t.Parallel()

		adapter := newTestAdapter(t, twitchServer(t, []map[string]string{}))
		_, err := adapter.ResolveProfile(ctx, "good-code", "")
		assert.ErrorIs(t, err, auth.ErrProfileUnavailable)
	})
}
