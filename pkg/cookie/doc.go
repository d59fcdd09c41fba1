// Package cookie writes HMAC-signed, HttpOnly cookies.
//
// The API uses it to carry the OAuth state between the authorization
// redirect and the provider's callback:
//
//	cookies, err := cookie.NewFromConfig(cfg)
//	if err != nil {
//		return err
//	}
//	cookies.SetSigned(w, "masky_oauth_state", state, cookie.WithMaxAge(600))
//
//	// on callback
//	state, err := cookies.Pop(w, r, "masky_oauth_state")
//
// Secrets must be at least 32 characters. Several secrets may be configured
// for rotation: the first one signs, any of them verifies.
package cookie
