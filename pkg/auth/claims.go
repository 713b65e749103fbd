package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	clierrors "github.com/blogdeck/blogdeck/cli/pkg/errors"
)

// Claims is what can be read from the bearer token without its signing key
type Claims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token's expiry is before now. Tokens without
// an expiry never report expired.
func (c *Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// ParseClaims decodes a JWT without verifying its signature. The result is
// for display only and is never trusted for authorization.
func ParseClaims(token string) (*Claims, error) {
	mapClaims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mapClaims); err != nil {
		return nil, fmt.Errorf("token is not a readable JWT: %w", err)
	}

	claims := &Claims{}
	if sub, err := mapClaims.GetSubject(); err == nil && sub != "" {
		claims.Subject = sub
	} else if id, ok := mapClaims["id"].(string); ok {
		claims.Subject = id
	}
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	if iat, err := mapClaims.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Time
	}
	return claims, nil
}

// TokenClaims decodes the held token
func (h *Holder) TokenClaims() (*Claims, error) {
	token := h.Token()
	if token == "" {
		return nil, clierrors.NotLoggedInError()
	}
	return ParseClaims(token)
}
