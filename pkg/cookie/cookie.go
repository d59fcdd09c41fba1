package cookie

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
)

const minSecretLength = 32

// Manager writes and reads HMAC-signed cookies.
type Manager struct {
	secrets  []string
	defaults Options
}

// New creates a Manager. The first secret signs new cookies; every secret is
// accepted when verifying so keys can be rotated without logging users out
// mid-flow.
func New(secrets []string, opts ...Option) (*Manager, error) {
	secrets = slices.DeleteFunc(slices.Clone(secrets), func(s string) bool { return s == "" })
	if len(secrets) == 0 {
		return nil, ErrNoSecret
	}
	for i, s := range secrets {
		if len(s) < minSecretLength {
			return nil, fmt.Errorf("%w: secret %d has %d chars, need at least %d", ErrSecretTooShort, i, len(s), minSecretLength)
		}
	}

	defaults := Options{
		Path:     "/",
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}.with(opts)

	return &Manager{secrets: secrets, defaults: defaults}, nil
}

// SetSigned writes value with an HMAC-SHA256 signature.
func (m *Manager) SetSigned(w http.ResponseWriter, name, value string, opts ...Option) {
	http.SetCookie(w, m.defaults.with(opts).cookie(name, m.sign(value)))
}

// GetSigned returns the verified value of the named cookie.
func (m *Manager) GetSigned(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", ErrCookieNotFound
		}
		return "", err
	}
	return m.verify(c.Value)
}

// Pop returns the verified value and deletes the cookie, so the value can be
// used once.
func (m *Manager) Pop(w http.ResponseWriter, r *http.Request, name string) (string, error) {
	value, err := m.GetSigned(r, name)
	if errors.Is(err, ErrCookieNotFound) {
		return "", err
	}
	m.Delete(w, name)
	return value, err
}

// Delete expires the named cookie.
func (m *Manager) Delete(w http.ResponseWriter, name string) {
	http.SetCookie(w, m.defaults.with([]Option{WithMaxAge(-1)}).cookie(name, ""))
}

func (m *Manager) sign(value string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(value)) + "." + mac(m.secrets[0], value)
}

func (m *Manager) verify(signed string) (string, error) {
	encoded, signature, ok := strings.Cut(signed, ".")
	if !ok {
		return "", ErrInvalidFormat
	}
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrInvalidFormat
	}

	value := string(raw)
	for _, secret := range m.secrets {
		if hmac.Equal([]byte(signature), []byte(mac(secret, value))) {
			return value, nil
		}
	}
	return "", ErrInvalidSignature
}

func mac(secret, value string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(value))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}
