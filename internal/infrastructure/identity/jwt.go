// Package identity implements ports.IdentityProvider against Supabase Auth
// and against a self-contained credential store for local development.
package identity

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nomadhire/marketplace/internal/core/ports"
)

// parseHS256 verifies an HMAC-SHA256 token and returns the identity carried in
// its sub and email claims.
func parseHS256(token string, secret []byte) (*ports.Identity, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("jwt parse: %w", err)
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("jwt invalid")
	}

	sub, _ := claims.GetSubject()
	if sub == "" {
		return nil, fmt.Errorf("jwt missing subject")
	}
	email, _ := claims["email"].(string)
	return &ports.Identity{UserID: sub, Email: email}, nil
}
