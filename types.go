package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Logger is the minimal slog-style surface this package logs through.
// Arguments are key value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// TokenVerifier validates raw tokens and extracts claims without tying
// callers to a specific signing implementation.
type TokenVerifier interface {
	Verify(tokenString string) (*TokenClaims, error)
}

// UserFinder resolves the user a validated token points at.
type UserFinder interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
}

// PasswordAuthenticator authenticates passwords
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

// PasswordValidator enforces a password strength policy on signup.
type PasswordValidator func(password string) error

// Revoker persists revoked refresh-token identifiers. Entries outlive the
// token they block, never the other way around.
type Revoker interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type defLogger struct{}

func (d defLogger) Error(msg string, args ...any) { d.log("ERR", msg, args...) }
func (d defLogger) Warn(msg string, args ...any)  { d.log("WRN", msg, args...) }
func (d defLogger) Info(msg string, args ...any)  { d.log("INF", msg, args...) }
func (d defLogger) Debug(msg string, args ...any) { d.log("DBG", msg, args...) }

func (d defLogger) log(level, msg string, args ...any) {
	if len(args) == 0 {
		fmt.Printf("[%s] AUTH %s\n", level, msg)
		return
	}
	fmt.Printf("[%s] AUTH %s %v\n", level, msg, args)
}
