package handler_test

import (
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/masky/handler"
	"github.com/dmitrymomot/masky/pkg/binder"
	"github.com/dmitrymomot/masky/pkg/environment"
)

type greetRequest struct {
	Name string `json:"name"`
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) handler.ErrorBody {
	t.Helper()
	var body handler.ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestWrap(t *testing.T) {
	t.Parallel()

	greet := func(ctx handler.Context, req greetRequest) handler.Response {
		if req.Name == "" {
			return handler.JSONError(handler.NewHTTPError(http.StatusBadRequest, "Name is required"))
		}
		return handler.JSON(map[string]string{"greeting": "hello " + req.Name})
	}
	h := handler.Wrap(greet,
		handler.WithBinder[handler.Context, greetRequest](binder.JSON()),
		handler.WithErrorHandler[handler.Context, greetRequest](handler.NewErrorHandler(slog.New(slog.DiscardHandler))),
	)

	tests := []struct {
		name       string
		body       string
		ct         string
		wantStatus int
		wantBody   string
	}{
		{name: "bound request", body: `{"name":"jenny"}`, ct: "application/json", wantStatus: http.StatusOK, wantBody: `{"greeting":"hello jenny"}`},
		{name: "handler error", body: `{}`, ct: "application/json", wantStatus: http.StatusBadRequest, wantBody: `{"error":"Name is required"}`},
		{name: "bind error", body: `{"name":`, ct: "application/json", wantStatus: http.StatusBadRequest, wantBody: `{"error":"Invalid request body"}`},
		{name: "media type error", body: `name=jenny`, ct: "application/x-www-form-urlencoded", wantStatus: http.StatusUnsupportedMediaType, wantBody: `{"error":"Content-Type must be application/json"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.ct)
			w := httptest.NewRecorder()
			h(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
			assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
		})
	}
}

func TestWrap_Decorators(t *testing.T) {
	t.Parallel()

	var order []string
	mark := func(name string) handler.Decorator[handler.Context, struct{}] {
		return func(next handler.HandlerFunc[handler.Context, struct{}]) handler.HandlerFunc[handler.Context, struct{}] {
			return func(ctx handler.Context, req struct{}) handler.Response {
				order = append(order, name)
				return next(ctx, req)
			}
		}
	}

	h := handler.Wrap(func(handler.Context, struct{}) handler.Response {
		order = append(order, "handler")
		return handler.JSON(map[string]bool{"received": true}, handler.WithJSONStatus(http.StatusAccepted))
	}, handler.WithDecorators(mark("outer"), mark("inner")))

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
}

func TestWrap_NilResponse(t *testing.T) {
	t.Parallel()

	var got error
	h := handler.Wrap(func(handler.Context, struct{}) handler.Response { return nil },
		handler.WithErrorHandler[handler.Context, struct{}](func(ctx handler.Context, err error) {
			got = err
			ctx.ResponseWriter().WriteHeader(http.StatusTeapot)
		}),
	)

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.ErrorIs(t, got, handler.ErrNilResponse)
	assert.Equal(t, http.StatusTeapot, w.Code)
}

func TestJSONError(t *testing.T) {
	t.Parallel()

	t.Run("http error keeps code and message", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		err := errors.Join(errors.New("db down"), handler.ErrUnauthorized)
		require.NoError(t, handler.JSONError(err).Render(w, httptest.NewRequest(http.MethodGet, "/", nil)))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Unauthorized", decodeError(t, w).Error)
	})

	t.Run("plain error does not leak", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		require.NoError(t, handler.JSONError(errors.New("password=hunter2")).Render(w, httptest.NewRequest(http.MethodGet, "/", nil)))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "hunter2")
	})

	t.Run("failure carries message", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		require.NoError(t, handler.JSONFailure("Failed to cancel subscription", errors.New("stripe timeout")).Render(w, httptest.NewRequest(http.MethodGet, "/", nil)))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, handler.ErrorBody{Error: "Failed to cancel subscription", Message: "stripe timeout"}, decodeError(t, w))
	})

	t.Run("failure hides detail in production", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r = r.WithContext(environment.WithContext(r.Context(), environment.Production))
		w := httptest.NewRecorder()
		require.NoError(t, handler.JSONFailure("Failed to cancel subscription", errors.New("stripe timeout")).Render(w, r))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, handler.ErrorBody{Error: "Failed to cancel subscription"}, decodeError(t, w))
	})
}

func TestHTML(t *testing.T) {
	t.Parallel()

	tmpl := template.Must(template.New("page").Parse(`<p>{{.}}</p>`))

	w := httptest.NewRecorder()
	require.NoError(t, handler.HTMLWithStatus(tmpl, "<b>hi</b>", http.StatusCreated).Render(w, httptest.NewRequest(http.MethodGet, "/", nil)))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "<p>&lt;b&gt;hi&lt;/b&gt;</p>", w.Body.String())

	broken := template.Must(template.New("broken").Parse(`{{.Missing.Field}}`))
	w = httptest.NewRecorder()
	assert.Error(t, handler.HTML(broken, struct{}{}).Render(w, httptest.NewRequest(http.MethodGet, "/", nil)))
	assert.Empty(t, w.Body.String())
}

func TestRedirect(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	require.NoError(t, handler.RedirectWithCode("https://id.twitch.tv/oauth2/authorize", http.StatusFound).Render(w, httptest.NewRequest(http.MethodGet, "/", nil)))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://id.twitch.tv/oauth2/authorize", w.Header().Get("Location"))
}
