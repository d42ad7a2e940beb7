package parkgate

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpiry peeks at the exp claim of a bearer token without verifying its
// signature. The client holds no verification keys; the server remains the
// authority on validity. The observed expiry only lets bootstrap skip a probe
// that is guaranteed to fail.
func TokenExpiry(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}

	claims := jwt.RegisteredClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}

	return claims.ExpiresAt.Time, true
}

// NewBearerCredential builds a token-mode Credential from a raw bearer token,
// recording the expiry observed from the token's own claims when present.
func NewBearerCredential(token string) Credential {
	cred := Credential{Token: token}
	if exp, ok := TokenExpiry(token); ok {
		cred.ExpiresAt = exp
	}
	return cred
}
