package binder

import "net/http"

// Query creates a query parameter binder.
//
// Struct tags:
//   - `query:"name"` binds to query parameter "name"
//   - `query:"-"` skips the field
//
// Fields may be strings, ints, bools, pointers to them, or slices of them.
//
// Example:
//
//	type CallbackQuery struct {
//		Code  string `query:"code"`
//		State string `query:"state"`
//	}
func Query() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		return bindToStruct(v, "query", r.URL.Query(), ErrFailedToParseQuery)
	}
}
