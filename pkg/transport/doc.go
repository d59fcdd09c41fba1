// Package transport performs single HTTP exchanges for API clients.
//
// A Transport receives a fully described Request (host, port, path, method,
// headers, body, protocol and timeout) and returns a Response exposing the
// status code, headers and an unread body. Retries, authentication and error
// decoding belong to the caller; a Transport performs exactly one exchange.
//
// # Usage
//
//	t := transport.NewHTTPTransport(nil)
//	resp, err := t.Do(ctx, &transport.Request{
//		Method:   http.MethodGet,
//		Host:     "api.stripe.com",
//		Path:     "/v1/customers/cus_123",
//		Protocol: transport.ProtocolHTTPS,
//		Timeout:  30 * time.Second,
//	})
//	if err != nil {
//		if errors.Is(err, transport.ErrTimeout) {
//			// the timer won the race against the exchange
//		}
//		return err
//	}
//	defer resp.Body.Close()
//
// # Errors
//
// Failures are wrapped with ErrTimeout when the per-request timeout fired
// first, and with ErrConnection for any other transport-level failure.
// IsConnectionReset reports whether the peer reset the connection or the pipe
// broke, which API clients treat as safe to retry once.
package transport
