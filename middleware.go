package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// AuthState is the outcome of authenticating a single request.
type AuthState int

const (
	// StateAnonymous means no credentials were presented. Not an error;
	// route-level guards decide whether that is acceptable.
	StateAnonymous AuthState = iota
	// StateAuthenticated means a valid token resolved to a live user.
	StateAuthenticated
	// StateRejected means credentials were presented and failed.
	StateRejected
)

// AuthResult carries the authenticated user and claims for the rest of the
// request, or the rejection error.
type AuthResult struct {
	State  AuthState
	User   *User
	Claims *TokenClaims
	Err    error
}

// Authenticate runs the per-request state machine: verify the presented
// token, then resolve the subject to a user. An empty token is anonymous; a
// presented-but-bad token is rejected, never silently downgraded to
// anonymous. A subject that no longer resolves to a user (deleted after
// issuance) is treated exactly like a bad token.
func Authenticate(ctx context.Context, token string, verifier TokenVerifier, users UserFinder) AuthResult {
	if token == "" {
		return AuthResult{State: StateAnonymous}
	}

	claims, err := verifier.Verify(token)
	if err != nil {
		return AuthResult{State: StateRejected, Err: err}
	}

	if claims.IsRefresh() {
		// refresh tokens only buy new tokens, never direct access
		return AuthResult{State: StateRejected, Err: ErrInvalidToken}
	}

	uid, err := uuid.Parse(claims.UserID())
	if err != nil {
		return AuthResult{State: StateRejected, Err: ErrInvalidToken}
	}

	user, err := users.GetByID(ctx, uid)
	if err != nil {
		return AuthResult{State: StateRejected, Err: ErrInvalidToken}
	}

	return AuthResult{
		State:  StateAuthenticated,
		User:   user,
		Claims: claims,
	}
}

// NewMiddleware returns the cookie authentication middleware. Install it
// once on the app; protected routes add RequireAuthenticated on top.
func NewMiddleware(cfg *Config, verifier TokenVerifier, users UserFinder, logger Logger) fiber.Handler {
	if logger == nil {
		logger = defLogger{}
	}

	return func(c *fiber.Ctx) error {
		token := c.Cookies(cfg.AccessCookieName)
		if token == "" {
			return c.Next()
		}

		result := Authenticate(c.UserContext(), token, verifier, users)
		if result.State == StateRejected {
			reason := ""
			if result.Err != nil {
				reason = result.Err.Error()
			}

			logger.Debug("request rejected with invalid access token", "path", c.Path())

			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": ErrInvalidToken.Message,
				"error":   reason,
			})
		}

		c.Locals(cfg.ContextKey, result)

		ctx := WithContext(c.UserContext(), result.User)
		ctx = WithClaimsContext(ctx, result.Claims)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// RequireAuthenticated guards a route: anonymous requests get a 401.
func RequireAuthenticated(cfg *Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := UserFromRequest(c, cfg.ContextKey); !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": ErrUnauthenticated.Message,
			})
		}
		return c.Next()
	}
}

// ResultFromRequest retrieves the AuthResult stored by the middleware.
func ResultFromRequest(c *fiber.Ctx, key string) (AuthResult, bool) {
	if key == "" {
		key = DefaultContextKey
	}
	result, ok := c.Locals(key).(AuthResult)
	return result, ok
}

// UserFromRequest retrieves the authenticated user, if any.
func UserFromRequest(c *fiber.Ctx, key string) (*User, bool) {
	result, ok := ResultFromRequest(c, key)
	if !ok || result.State != StateAuthenticated {
		return nil, false
	}
	return result.User, true
}

// ClaimsFromRequest retrieves the authenticated claims, if any.
func ClaimsFromRequest(c *fiber.Ctx, key string) (*TokenClaims, bool) {
	result, ok := ResultFromRequest(c, key)
	if !ok || result.State != StateAuthenticated {
		return nil, false
	}
	return result.Claims, true
}
