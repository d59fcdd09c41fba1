package api

import (
	_ "embed"
	"errors"
	"html/template"
	"net/http"

	"github.com/dmitrymomot/masky/handler"
	"github.com/dmitrymomot/masky/pkg/binder"
	"github.com/dmitrymomot/masky/pkg/cookie"
	"github.com/dmitrymomot/masky/pkg/logger"
	"github.com/dmitrymomot/masky/svc/auth"
)

// Popup message types posted to window.opener.
const (
	MessageOAuthSuccess = "TWITCH_OAUTH_SUCCESS"
	MessageOAuthError   = "TWITCH_OAUTH_ERROR"
)

//go:embed popup.html
var popupHTML string

var popupTemplate = template.Must(template.New("popup").Parse(popupHTML))

type oauthQuery struct {
	Code             string `query:"code"`
	State            string `query:"state"`
	Error            string `query:"error"`
	ErrorDescription string `query:"error_description"`
}

type oauthErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"errorDescription,omitempty"`
	State            string `json:"state,omitempty"`
}

type callbackRequest struct {
	Code        string `json:"code"`
	RedirectURI string `json:"redirectUri"`
}

type popupMessage struct {
	Type  string        `json:"type"`
	User  *auth.Session `json:"user,omitempty"`
	Error string        `json:"error,omitempty"`
}

type popupData struct {
	Message      popupMessage
	TargetOrigin string
}

// twitchOAuth serves the provider redirect URI. Without parameters it starts
// the flow: a signed state cookie is set and the browser is sent to Twitch.
// With an authorization code it completes the login and renders a popup page
// that hands the session to the opener window.
func (a *api) twitchOAuth() http.HandlerFunc {
	return wrap(a, func(ctx handler.Context, q oauthQuery) handler.Response {
		w, r := ctx.ResponseWriter(), ctx.Request()

		switch {
		case q.Error != "":
			a.log.WarnContext(ctx, "twitch authorization denied",
				logger.Provider(auth.OAuthProviderTwitch),
				logger.Error(errors.New(q.Error)),
			)
			return handler.JSON(oauthErrorResponse{
				Error:            q.Error,
				ErrorDescription: q.ErrorDescription,
				State:            q.State,
			}, handler.WithJSONStatus(http.StatusBadRequest))

		case q.Code != "":
			if err := a.checkState(w, r, q.State); err != nil {
				a.log.WarnContext(ctx, "oauth state rejected", logger.Error(err))
				return a.popup(popupMessage{Type: MessageOAuthError, Error: "Invalid or expired login attempt"})
			}
			session, err := a.login.Callback(ctx, q.Code, "")
			if err != nil {
				info := loginError(err)
				a.log.LogAttrs(ctx, handler.ClassifyError(info).LogLevel, "twitch login failed", logger.Error(err))
				return a.popup(popupMessage{Type: MessageOAuthError, Error: info.Message})
			}
			return a.popup(popupMessage{Type: MessageOAuthSuccess, User: session})

		default:
			authURL, state, err := a.login.AuthURL()
			if err != nil {
				a.log.ErrorContext(ctx, "failed to build authorization URL", logger.Error(err))
				return handler.JSONError(handler.ErrInternalServerError)
			}
			a.cookies.SetSigned(w, a.cfg.StateCookieName, state,
				cookie.WithMaxAge(int(a.cfg.StateTTL.Seconds())),
			)
			return handler.RedirectWithCode(authURL, http.StatusFound)
		}
	}, binder.Query())
}

// twitchCallback exchanges a code obtained by the browser for a session.
func (a *api) twitchCallback() http.HandlerFunc {
	return wrap(a, func(ctx handler.Context, req callbackRequest) handler.Response {
		session, err := a.login.Callback(ctx, req.Code, req.RedirectURI)
		if err != nil {
			info := loginError(err)
			a.log.LogAttrs(ctx, handler.ClassifyError(info).LogLevel, "twitch login failed", logger.Error(err))
			return handler.JSONError(info)
		}
		return handler.JSON(session)
	}, binder.JSON())
}

// checkState compares the returned state with the cookie set when the flow
// started. Flows started by the browser itself carry no cookie; they are
// accepted unless RequireState is set.
func (a *api) checkState(w http.ResponseWriter, r *http.Request, state string) error {
	expected, err := a.cookies.Pop(w, r, a.cfg.StateCookieName)
	switch {
	case errors.Is(err, cookie.ErrCookieNotFound):
		if a.cfg.RequireState {
			return auth.ErrInvalidState
		}
		return nil
	case err != nil:
		return errors.Join(auth.ErrInvalidState, err)
	case expected != state:
		return auth.ErrInvalidState
	}
	return nil
}

func (a *api) popup(msg popupMessage) handler.Response {
	status := http.StatusOK
	if msg.Type == MessageOAuthError {
		status = http.StatusBadRequest
	}
	return handler.HTMLWithStatus(popupTemplate, popupData{
		Message:      msg,
		TargetOrigin: a.cfg.AppOrigin,
	}, status)
}

func loginError(err error) handler.HTTPError {
	switch {
	case errors.Is(err, auth.ErrMissingCode):
		return handler.NewHTTPError(http.StatusBadRequest, "Authorization code is required")
	case errors.Is(err, auth.ErrInvalidCode), errors.Is(err, auth.ErrInvalidState):
		return handler.NewHTTPError(http.StatusBadRequest, "Invalid or expired authorization code")
	case errors.Is(err, auth.ErrProfileUnavailable):
		return handler.NewHTTPError(http.StatusBadGateway, "Twitch profile unavailable")
	default:
		return handler.NewHTTPError(http.StatusInternalServerError, "Failed to complete Twitch login")
	}
}
