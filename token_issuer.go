package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// TokenIssuer mints and verifies the HS256 tokens this package runs on.
// Access tokens are short lived and stateless; refresh tokens are long
// lived and carry a jti the revocation store can pin down later.
type TokenIssuer struct {
	signingKey []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	issuer     string
	audience   jwt.ClaimStrings
	logger     Logger
	now        func() time.Time
}

// NewTokenIssuer creates a TokenIssuer from the given config. The config is
// expected to be validated already; an empty signing key will sign garbage.
func NewTokenIssuer(cfg *Config, logger Logger) *TokenIssuer {
	if logger == nil {
		logger = defLogger{}
	}

	var aud jwt.ClaimStrings
	if len(cfg.Audience) > 0 {
		aud = make(jwt.ClaimStrings, len(cfg.Audience))
		copy(aud, cfg.Audience)
	}

	return &TokenIssuer{
		signingKey: []byte(cfg.SigningKey),
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
		issuer:     cfg.Issuer,
		audience:   aud,
		logger:     logger,
		now:        time.Now,
	}
}

// IssueAccessToken mints a stateless access token for the given user.
func (ts *TokenIssuer) IssueAccessToken(userID string) (string, time.Time, error) {
	now := ts.now()
	expiresAt := now.Add(ts.accessTTL)

	claims := &TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   userID,
			Audience:  ts.audience,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		TokenType: TokenTypeAccess,
	}

	token, err := ts.SignClaims(claims)
	if err != nil {
		return "", time.Time{}, err
	}

	return token, expiresAt, nil
}

// IssueRefreshToken mints a refresh token with a fresh jti and returns the
// token, the jti, and the expiry.
func (ts *TokenIssuer) IssueRefreshToken(userID string) (string, string, time.Time, error) {
	now := ts.now()
	expiresAt := now.Add(ts.refreshTTL)
	jti := uuid.NewString()

	claims := &TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    ts.issuer,
			Subject:   userID,
			Audience:  ts.audience,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		TokenType: TokenTypeRefresh,
	}

	token, err := ts.SignClaims(claims)
	if err != nil {
		return "", "", time.Time{}, err
	}

	return token, jti, expiresAt, nil
}

// SignClaims signs arbitrary claims using the configured signing key.
func (ts *TokenIssuer) SignClaims(claims *TokenClaims) (string, error) {
	if claims == nil {
		return "", errors.New("claims must not be nil", errors.CategoryInternal)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign JWT")
	}

	return signedString, nil
}

// Verify parses and validates a token string. Every failure mode, bad
// signature, malformed payload, or expiry, comes back as the same generic
// ErrInvalidToken so callers cannot be used as an oracle.
func (ts *TokenIssuer) Verify(tokenString string) (*TokenClaims, error) {
	parserOptions := make([]jwt.ParserOption, 0, 2)
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}
	if len(ts.audience) > 0 {
		parserOptions = append(parserOptions, jwt.WithAudience(ts.audience...))
	}

	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("TokenIssuer verify encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, errors.New("unexpected signing method", errors.CategoryAuth)
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		return nil, errors.Wrap(err, ErrInvalidToken.Category, ErrInvalidToken.Message).
			WithTextCode(ErrInvalidToken.TextCode).
			WithCode(errors.CodeUnauthorized)
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		ts.logger.Error("TokenIssuer verify could not decode claims")
		return nil, ErrInvalidToken
	}

	return claims, nil
}
