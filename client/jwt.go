package client

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpiry extracts the expiry instant from a JWT access token
// without verifying its signature. Verification is the server's job;
// the client only needs the expiry for display and bookkeeping. Opaque
// or malformed tokens yield the zero time, which the session layer
// treats as unknown rather than expired.
func TokenExpiry(token string) time.Time {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time.UTC()
}
