package cookie

import "errors"

var (
	ErrNoSecret         = errors.New("cookie: signing secret is required")
	ErrSecretTooShort   = errors.New("cookie: signing secret is too short")
	ErrInvalidSignature = errors.New("cookie: invalid signature")
	ErrCookieNotFound   = errors.New("cookie: not found")
	ErrInvalidFormat    = errors.New("cookie: invalid format")
)
