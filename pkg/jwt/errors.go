package jwt

import "errors"

// Issue errors.
var (
	ErrMissingSigningKey = errors.New("jwt: missing signing key")
	ErrInvalidSigningKey = errors.New("jwt: signing failed")
	ErrMissingClaims     = errors.New("jwt: subject is required")
)

// Parse errors. The middleware answers all of them with 401; only
// ErrExpiredToken gets its own message.
var (
	ErrInvalidToken            = errors.New("jwt: invalid token")
	ErrExpiredToken            = errors.New("jwt: token expired")
	ErrInvalidClaims           = errors.New("jwt: invalid claims")
	ErrInvalidSignature        = errors.New("jwt: signature mismatch")
	ErrUnexpectedSigningMethod = errors.New("jwt: unexpected signing method")
)
