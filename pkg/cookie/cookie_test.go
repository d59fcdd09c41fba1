package cookie_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/masky/pkg/cookie"
)

const (
	secretA = "0123456789abcdef0123456789abcdef"
	secretB = "fedcba9876543210fedcba9876543210"
)

// roundTrip copies the cookies written to w onto a fresh request.
func roundTrip(w *httptest.ResponseRecorder) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w.Result().Cookies() {
		r.AddCookie(c)
	}
	return r
}

func TestNew(t *testing.T) {
	t.Parallel()

	_, err := cookie.New(nil)
	assert.ErrorIs(t, err, cookie.ErrNoSecret)

	_, err = cookie.New([]string{"", ""})
	assert.ErrorIs(t, err, cookie.ErrNoSecret)

	_, err = cookie.New([]string{"short"})
	assert.ErrorIs(t, err, cookie.ErrSecretTooShort)

	_, err = cookie.NewFromConfig(cookie.Config{Secrets: " " + secretA + " , " + secretB})
	assert.NoError(t, err)
}

func TestManager_Signed(t *testing.T) {
	t.Parallel()

	m, err := cookie.New([]string{secretA}, cookie.WithMaxAge(600))
	require.NoError(t, err)

	w := httptest.NewRecorder()
	m.SetSigned(w, "state", "abc|def")

	res := w.Result().Cookies()
	require.Len(t, res, 1)
	assert.True(t, res[0].HttpOnly)
	assert.True(t, res[0].Secure)
	assert.Equal(t, 600, res[0].MaxAge)
	assert.NotContains(t, res[0].Value, "abc|def")

	got, err := m.GetSigned(roundTrip(w), "state")
	require.NoError(t, err)
	assert.Equal(t, "abc|def", got)

	_, err = m.GetSigned(httptest.NewRequest(http.MethodGet, "/", nil), "state")
	assert.ErrorIs(t, err, cookie.ErrCookieNotFound)
}

func TestManager_Tampering(t *testing.T) {
	t.Parallel()

	m, err := cookie.New([]string{secretA})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	m.SetSigned(w, "state", "abc")
	value := w.Result().Cookies()[0].Value
	encoded, sig, _ := strings.Cut(value, ".")

	tests := []struct {
		name    string
		value   string
		wantErr error
	}{
		{name: "no separator", value: encoded + sig, wantErr: cookie.ErrInvalidFormat},
		{name: "bad encoding", value: "!!!." + sig, wantErr: cookie.ErrInvalidFormat},
		{name: "swapped value", value: "eHl6." + sig, wantErr: cookie.ErrInvalidSignature},
		{name: "forged signature", value: encoded + ".AAAA", wantErr: cookie.ErrInvalidSignature},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.AddCookie(&http.Cookie{Name: "state", Value: tt.value})
			_, err := m.GetSigned(r, "state")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestManager_Rotation(t *testing.T) {
	t.Parallel()

	old, err := cookie.New([]string{secretA})
	require.NoError(t, err)
	rotated, err := cookie.New([]string{secretB, secretA})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	old.SetSigned(w, "state", "abc")

	got, err := rotated.GetSigned(roundTrip(w), "state")
	require.NoError(t, err)
	assert.Equal(t, "abc", got)

	w = httptest.NewRecorder()
	rotated.SetSigned(w, "state", "abc")
	_, err = old.GetSigned(roundTrip(w), "state")
	assert.ErrorIs(t, err, cookie.ErrInvalidSignature)
}

func TestManager_Pop(t *testing.T) {
	t.Parallel()

	m, err := cookie.New([]string{secretA})
	require.NoError(t, err)

	set := httptest.NewRecorder()
	m.SetSigned(set, "state", "abc")

	w := httptest.NewRecorder()
	got, err := m.Pop(w, roundTrip(set), "state")
	require.NoError(t, err)
	assert.Equal(t, "abc", got)

	cleared := w.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Equal(t, -1, cleared[0].MaxAge)

	w = httptest.NewRecorder()
	_, err = m.Pop(w, httptest.NewRequest(http.MethodGet, "/", nil), "state")
	assert.ErrorIs(t, err, cookie.ErrCookieNotFound)
	assert.Empty(t, w.Result().Cookies())
}
