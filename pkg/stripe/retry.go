package stripe

import (
	"net/http"

	"github.com/dmitrymomot/masky/pkg/transport"
)

const shouldRetryHeader = "Stripe-Should-Retry"

// shouldRetry decides whether another attempt follows. retries is the number of
// retries already made for this call (zero during the first attempt). Exactly
// one of resp and err is non-nil.
func shouldRetry(resp *transport.Response, err error, retries, maxRetries int) bool {
	// A reset or broken pipe on the first attempt usually means a stale pooled
	// connection, so it is retried even when retries are disabled.
	if err != nil && retries == 0 && transport.IsConnectionReset(err) {
		return true
	}

	if retries >= maxRetries {
		return false
	}

	if resp == nil {
		return true
	}

	switch resp.Header.Get(shouldRetryHeader) {
	case "false":
		return false
	case "true":
		return true
	}

	if resp.StatusCode == http.StatusConflict {
		return true
	}

	return resp.StatusCode >= http.StatusInternalServerError
}
