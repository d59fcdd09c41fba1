package binder

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
)

// DefaultMaxJSONSize is the default maximum size for JSON request bodies (1MB).
const DefaultMaxJSONSize = 1 << 20 // 1 MB

// JSON creates a JSON body binder.
//
// An empty body leaves v untouched, so endpoints whose fields are all optional
// accept bare POSTs. A non-empty body must be a single JSON value of at most
// DefaultMaxJSONSize bytes. A Content-Type other than application/json is
// rejected; a missing one is tolerated because browser fetch calls often omit it.
//
// Example:
//
//	type PortalRequest struct {
//		ReturnURL string `json:"returnUrl"`
//	}
//
//	http.HandleFunc("/portal", handler.Wrap(portal,
//		handler.WithBinder[handler.Context, PortalRequest](binder.JSON()),
//	))
func JSON() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		select {
		case <-r.Context().Done():
			return fmt.Errorf("%w: %v", ErrFailedToParseJSON, r.Context().Err())
		default:
		}

		if ct := r.Header.Get("Content-Type"); ct != "" {
			mediaType, _, err := mime.ParseMediaType(ct)
			if err != nil || mediaType != "application/json" {
				return fmt.Errorf("%w: got %s, expected application/json", ErrUnsupportedMediaType, ct)
			}
		}

		if r.Body == nil {
			return nil
		}
		body, err := io.ReadAll(io.LimitReader(r.Body, DefaultMaxJSONSize+1))
		if err != nil {
			return fmt.Errorf("%w: failed to read request body: %v", ErrFailedToParseJSON, err)
		}
		if len(body) > DefaultMaxJSONSize {
			return fmt.Errorf("%w: request body too large (max %d bytes)", ErrFailedToParseJSON, DefaultMaxJSONSize)
		}
		if len(bytes.TrimSpace(body)) == 0 {
			return nil
		}

		decoder := json.NewDecoder(bytes.NewReader(body))
		if err := decoder.Decode(v); err != nil {
			return fmt.Errorf("%w: %v", ErrFailedToParseJSON, err)
		}

		var extra json.RawMessage
		if err := decoder.Decode(&extra); err != io.EOF {
			return fmt.Errorf("%w: unexpected data after JSON object", ErrFailedToParseJSON)
		}
		return nil
	}
}
