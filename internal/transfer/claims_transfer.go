package transfer

import "github.com/golang-jwt/jwt/v5"

// SessionClaims back the admin session cookie.
type SessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// StateClaims bind a PKCE code verifier to the authorization state it was
// issued with.
type StateClaims struct {
	State        string `json:"state"`
	CodeVerifier string `json:"cv"`
	jwt.RegisteredClaims
}
