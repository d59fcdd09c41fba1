package binder

import "errors"

var (
	// ErrBinderNotApplicable lets a binder opt out so the next one runs.
	ErrBinderNotApplicable = errors.New("binder: not applicable")

	ErrUnsupportedMediaType = errors.New("binder: unsupported media type")
	ErrMissingContentType   = errors.New("binder: missing content type")
	ErrFailedToParseJSON    = errors.New("binder: invalid JSON body")
	ErrFailedToParseQuery   = errors.New("binder: invalid query parameters")
)
