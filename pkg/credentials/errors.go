package credentials

import "errors"

var (
	ErrMissingLocalSecret = errors.New("credentials: secret not set in local environment")
	ErrParameterNotFound  = errors.New("credentials: parameter not found")
	ErrAccessDenied       = errors.New("credentials: access to parameter denied")
	ErrFetchFailed        = errors.New("credentials: failed to fetch parameters")
	ErrAWSConfig          = errors.New("credentials: failed to load aws config")
)
