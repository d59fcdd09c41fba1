package auth

import "errors"

var (
	ErrMissingCode        = errors.New("oauth: missing authorization code")
	ErrInvalidCode        = errors.New("oauth: invalid authorization code")
	ErrInvalidState       = errors.New("oauth: invalid or expired state")
	ErrProfileUnavailable = errors.New("oauth: provider profile unavailable")
	ErrSessionIssue       = errors.New("auth: failed to issue session token")
	ErrMissingCredentials = errors.New("auth: missing provider client credentials")
)
