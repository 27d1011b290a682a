package auth

import (
	"context"
	stderrors "errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/uptrace/bun"
)

// AuthControllerRoutes holds the endpoint paths.
type AuthControllerRoutes struct {
	Signup  string
	Signin  string
	Signout string
	Refresh string
	Me      string
}

// AuthController composes issuer, accounts, cookies, and the revocation
// store into the five auth endpoints.
type AuthController struct {
	Debug    bool
	Logger   Logger
	Routes   *AuthControllerRoutes
	cfg      *Config
	repo     RepositoryManager
	issuer   *TokenIssuer
	accounts *AccountService
	cookies  *CookieCodec
}

type AuthControllerOption func(*AuthController) *AuthController

// NewAuthController builds a controller. Config and repository manager are
// mandatory; issuer, accounts, and cookie codec default to implementations
// derived from them.
func NewAuthController(cfg *Config, repo RepositoryManager, opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger: defLogger{},
		cfg:    cfg,
		repo:   repo,
		Routes: &AuthControllerRoutes{
			Signup:  "/signup",
			Signin:  "/signin",
			Signout: "/signout",
			Refresh: "/refresh",
			Me:      "/me",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.cfg == nil {
		panic("Missing Config in auth controller...")
	}

	if c.repo == nil {
		panic("Missing RepositoryManager in auth controller...")
	}

	if c.issuer == nil {
		c.issuer = NewTokenIssuer(c.cfg, c.Logger)
	}

	if c.accounts == nil {
		c.accounts = NewAccountService(c.repo).WithLogger(c.Logger)
	}

	if c.cookies == nil {
		c.cookies = NewCookieCodec(c.cfg)
	}

	return c
}

// WithAuthLogger overrides the controller logger.
func WithAuthLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Logger = logger
		return c
	}
}

// WithTokenIssuer overrides the token issuer.
func WithTokenIssuer(issuer *TokenIssuer) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.issuer = issuer
		return c
	}
}

// WithAccountService overrides the account service.
func WithAccountService(accounts *AccountService) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.accounts = accounts
		return c
	}
}

// TokenIssuer exposes the issuer so hosts can install the middleware with
// the same verifier the controller signs with.
func (a *AuthController) TokenIssuer() *TokenIssuer {
	return a.issuer
}

// RegisterAuthRoutes mounts the auth endpoints. The cookie authentication
// middleware from NewMiddleware must be installed on the app (or group)
// before these routes for the protected ones to see the auth result.
func RegisterAuthRoutes(app fiber.Router, controller *AuthController) {
	app.Post(controller.Routes.Signup, controller.Signup)
	app.Post(controller.Routes.Signin, controller.Signin)
	app.Post(controller.Routes.Signout, RequireAuthenticated(controller.cfg), controller.Signout)
	app.Post(controller.Routes.Refresh, controller.Refresh)
	app.Get(controller.Routes.Me, RequireAuthenticated(controller.cfg), controller.Me)
}

// SigninMessage is the signin payload
type SigninMessage struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r SigninMessage) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Password, validation.Required),
	)
}

// Signup creates an account: 201 with the public user view on success, 400
// with field errors on validation failure.
func (a *AuthController) Signup(c *fiber.Ctx) error {
	payload := SignupMessage{}

	if err := c.BodyParser(&payload); err != nil {
		a.Logger.Error("signup parse payload", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "failed to parse request body",
		})
	}

	user, err := a.accounts.Signup(c.UserContext(), payload)
	if err != nil {
		a.Logger.Error("signup error", "error", err)
		return a.errorResponse(c, err)
	}

	if a.Debug {
		fmt.Println("======= AUTH SIGNUP ======")
		fmt.Println(print.MaybePrettyJSON(user.Public()))
		fmt.Println("==========================")
	}

	return c.Status(fiber.StatusCreated).JSON(user.Public())
}

// Signin verifies credentials and sets both auth cookies.
func (a *AuthController) Signin(c *fiber.Ctx) error {
	payload := SigninMessage{}

	if err := c.BodyParser(&payload); err != nil {
		a.Logger.Error("signin parse payload", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "failed to parse request body",
		})
	}

	if err := payload.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"errors": FormatValidationErrorToMap(err),
		})
	}

	user, err := a.accounts.VerifyCredentials(c.UserContext(), payload.Username, payload.Password)
	if err != nil {
		if goerrors.Is(err, ErrBadCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": ErrBadCredentials.Message,
			})
		}
		a.Logger.Error("signin verify credentials", "error", err)
		return a.errorResponse(c, err)
	}

	accessToken, accessExp, err := a.issuer.IssueAccessToken(user.ID.String())
	if err != nil {
		a.Logger.Error("signin issue access token", "error", err)
		return a.errorResponse(c, err)
	}

	refreshToken, _, refreshExp, err := a.issuer.IssueRefreshToken(user.ID.String())
	if err != nil {
		a.Logger.Error("signin issue refresh token", "error", err)
		return a.errorResponse(c, err)
	}

	a.cookies.WriteAccess(c, accessToken, accessExp)
	a.cookies.WriteRefresh(c, refreshToken, refreshExp)

	return c.JSON(user.Public())
}

// Signout revokes the presented refresh token best-effort and clears both
// cookies. A refresh cookie that no longer verifies is ignored, the user is
// signing out either way.
func (a *AuthController) Signout(c *fiber.Ctx) error {
	if raw := a.cookies.ReadRefresh(c); raw != "" {
		claims, err := a.issuer.Verify(raw)
		if err == nil && claims.IsRefresh() && claims.TokenID() != "" {
			if err := a.repo.Revocations().Revoke(c.UserContext(), claims.TokenID(), claims.Expires()); err != nil {
				a.Logger.Warn("signout revoke refresh token", "error", err)
			}
		}
	}

	a.cookies.Clear(c)

	return c.JSON(fiber.Map{
		"message": "signed out",
	})
}

// Refresh exchanges a live refresh token for a new access token and, with
// rotation always on, a new refresh token. The old jti is revoked in the
// same transaction that the rotation decision depends on.
func (a *AuthController) Refresh(c *fiber.Ctx) error {
	raw := a.cookies.ReadRefresh(c)
	if raw == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "missing refresh token",
		})
	}

	claims, err := a.issuer.Verify(raw)
	if err != nil || !claims.IsRefresh() || claims.TokenID() == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": ErrInvalidToken.Message,
		})
	}

	revoked, err := a.repo.Revocations().IsRevoked(c.UserContext(), claims.TokenID())
	if err != nil {
		a.Logger.Error("refresh revocation check", "error", err)
		return a.errorResponse(c, err)
	}

	if revoked {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": ErrInvalidToken.Message,
		})
	}

	accessToken, accessExp, err := a.issuer.IssueAccessToken(claims.UserID())
	if err != nil {
		a.Logger.Error("refresh issue access token", "error", err)
		return a.errorResponse(c, err)
	}

	refreshToken, _, refreshExp, err := a.issuer.IssueRefreshToken(claims.UserID())
	if err != nil {
		a.Logger.Error("refresh issue refresh token", "error", err)
		return a.errorResponse(c, err)
	}

	err = a.repo.RunInTx(c.UserContext(), nil, func(ctx context.Context, tx bun.Tx) error {
		return a.repo.Revocations().RevokeTx(ctx, tx, claims.TokenID(), claims.Expires())
	})
	if err != nil {
		a.Logger.Error("refresh revoke rotated token", "error", err)
		return a.errorResponse(c, err)
	}

	a.cookies.WriteAccess(c, accessToken, accessExp)
	a.cookies.WriteRefresh(c, refreshToken, refreshExp)

	return c.JSON(fiber.Map{
		"message": "token refreshed",
	})
}

// Me returns the public view of the authenticated user.
func (a *AuthController) Me(c *fiber.Ctx) error {
	user, ok := UserFromRequest(c, a.cfg.ContextKey)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": ErrUnauthenticated.Message,
		})
	}

	return c.JSON(fiber.Map{
		"user": user.Public(),
	})
}

// errorResponse maps a rich error to an HTTP response. Validation errors
// carry their field map; everything else gets the category's status and
// message.
func (a *AuthController) errorResponse(c *fiber.Ctx, err error) error {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		richErr = goerrors.Wrap(err, goerrors.CategoryInternal, "An unexpected server error occurred").
			WithCode(goerrors.CodeInternal)
	}

	status := richErr.Code
	if status == 0 {
		status = fiber.StatusInternalServerError
	}

	if richErr.Category == goerrors.CategoryValidation {
		if status == 0 || status >= fiber.StatusInternalServerError {
			status = fiber.StatusBadRequest
		}
		return c.Status(status).JSON(fiber.Map{
			"errors": FormatValidationErrorToMap(richErr),
		})
	}

	return c.Status(status).JSON(fiber.Map{
		"error": richErr.Message,
	})
}

// FormatValidationErrorToMap flattens an ozzo validation error into a
// field -> message map. Non-field errors fold into a single "error" key.
func FormatValidationErrorToMap(err error) map[string]string {
	out := map[string]string{}
	if err == nil {
		return out
	}

	var verrs validation.Errors
	if stderrors.As(err, &verrs) {
		for field, ferr := range verrs {
			if ferr != nil {
				out[field] = ferr.Error()
			}
		}
		return out
	}

	var richErr *goerrors.Error
	if stderrors.As(err, &richErr) {
		out["error"] = richErr.Message
		return out
	}

	out["error"] = err.Error()
	return out
}
