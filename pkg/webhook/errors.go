package webhook

import (
	"errors"
	"fmt"
)

// Verification failures. None of them is retryable and none reveals how close
// a candidate signature came to the expected one.
var (
	ErrMalformedHeader        = errors.New("webhook: unable to extract timestamp and signatures from header")
	ErrNoMatchingSignature    = errors.New("webhook: no signatures found matching the expected signature for payload")
	ErrStaleTimestamp         = errors.New("webhook: timestamp outside the tolerance zone")
	ErrInvalidPayloadEncoding = errors.New("webhook: signed payload is not valid JSON")
	ErrMissingSecret          = errors.New("webhook: signing secret is required")
)

// VerificationError carries a failure together with an optional hint for the
// integrator. Hints never contain secret material.
type VerificationError struct {
	Err  error
	Hint string
}

func (e *VerificationError) Error() string {
	if e.Hint == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s (%s)", e.Err, e.Hint)
}

func (e *VerificationError) Unwrap() error { return e.Err }
