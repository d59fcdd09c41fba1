// Package jwt issues and validates the HS256 session tokens handed out after
// a Twitch login, and provides the HTTP middleware and context helpers that
// authenticate API requests with them.
//
// Signing and verification are delegated to github.com/golang-jwt/jwt/v5.
// The package pins the algorithm to HS256, requires an expiry and (when an
// issuer is configured) checks it.
//
// # Usage
//
//	svc, err := jwt.NewFromString(cfg.SigningKey, jwt.WithIssuer("masky"), jwt.WithTTL(24*time.Hour))
//	if err != nil {
//	    return err
//	}
//
//	token, expiresAt, err := svc.Issue(jwt.Claims{
//	    RegisteredClaims: gojwt.RegisteredClaims{Subject: "twitch:12345"},
//	    Provider:         "twitch",
//	})
//
//	claims, err := svc.Parse(token)
//
//	r.With(jwt.Middleware(svc)).Get("/subscription/status", handler)
//
// # Error Handling
//
// Errors such as ErrExpiredToken or ErrInvalidSignature are sentinel values
// joined with the underlying parser error and can be compared using errors.Is.
package jwt
