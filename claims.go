package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token types carried in the "typ" claim so an access token can never be
// replayed against the refresh endpoint and vice versa.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// TokenClaims is the claim set minted for both token kinds. Access tokens
// leave the ID claim empty; refresh tokens carry a fresh jti in it.
type TokenClaims struct {
	jwt.RegisteredClaims
	TokenType string `json:"typ,omitempty"`
}

// UserID returns the subject claim.
func (c *TokenClaims) UserID() string {
	return c.RegisteredClaims.Subject
}

// TokenID returns the jti claim.
func (c *TokenClaims) TokenID() string {
	return c.RegisteredClaims.ID
}

// IsRefresh reports whether the claims belong to a refresh token.
func (c *TokenClaims) IsRefresh() bool {
	return c.TokenType == TokenTypeRefresh
}

// Expires returns the expiration time
func (c *TokenClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// Issued returns the issued at time
func (c *TokenClaims) Issued() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
