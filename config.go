package auth

import (
	"os"
	"strconv"
	"time"

	"github.com/goliatone/go-errors"
)

const (
	// DefaultAccessTokenTTL is the access token lifetime.
	DefaultAccessTokenTTL = 15 * time.Minute
	// DefaultRefreshTokenTTL is the refresh token lifetime.
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
	// DefaultAccessCookieName is the cookie carrying the access token.
	DefaultAccessCookieName = "access_token"
	// DefaultRefreshCookieName is the cookie carrying the refresh token.
	DefaultRefreshCookieName = "refresh_token"
	// DefaultCookiePath is applied to both auth cookies.
	DefaultCookiePath = "/"
	// DefaultContextKey is where middleware stores the auth result.
	DefaultContextKey = "auth"
)

// Config holds every runtime knob of the auth layer. Build it once at process
// start and pass it by reference; nothing mutates it after construction.
type Config struct {
	// SigningKey is the symmetric HS256 key. Required.
	SigningKey string
	// AccessTokenTTL bounds access token validity.
	AccessTokenTTL time.Duration
	// RefreshTokenTTL bounds refresh token validity.
	RefreshTokenTTL time.Duration
	// AccessCookieName and RefreshCookieName override the cookie names.
	AccessCookieName  string
	RefreshCookieName string
	// CookiePath is applied to both cookies.
	CookiePath string
	// DevMode drops the Secure attribute so cookies work without TLS.
	DevMode bool
	// Issuer and Audience are embedded in and enforced on every token
	// when set.
	Issuer   string
	Audience []string
	// ContextKey is the locals key middleware stores its result under.
	ContextKey string
}

// NewConfig returns a Config with production defaults for the given key.
func NewConfig(signingKey string) *Config {
	return &Config{
		SigningKey:        signingKey,
		AccessTokenTTL:    DefaultAccessTokenTTL,
		RefreshTokenTTL:   DefaultRefreshTokenTTL,
		AccessCookieName:  DefaultAccessCookieName,
		RefreshCookieName: DefaultRefreshCookieName,
		CookiePath:        DefaultCookiePath,
		ContextKey:        DefaultContextKey,
	}
}

// ConfigFromEnv builds a Config from the process environment. The signing
// key is mandatory; a missing key is a startup error, not a runtime one.
func ConfigFromEnv() (*Config, error) {
	cfg := NewConfig(os.Getenv("AUTH_SIGNING_KEY"))

	if v := os.Getenv("AUTH_DEV_MODE"); v != "" {
		devMode, err := strconv.ParseBool(v)
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryBadInput, "invalid AUTH_DEV_MODE value")
		}
		cfg.DevMode = devMode
	}

	if v := os.Getenv("AUTH_ACCESS_TOKEN_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryBadInput, "invalid AUTH_ACCESS_TOKEN_TTL value")
		}
		cfg.AccessTokenTTL = ttl
	}

	if v := os.Getenv("AUTH_REFRESH_TOKEN_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryBadInput, "invalid AUTH_REFRESH_TOKEN_TTL value")
		}
		cfg.RefreshTokenTTL = ttl
	}

	if v := os.Getenv("AUTH_ACCESS_COOKIE"); v != "" {
		cfg.AccessCookieName = v
	}

	if v := os.Getenv("AUTH_REFRESH_COOKIE"); v != "" {
		cfg.RefreshCookieName = v
	}

	if v := os.Getenv("AUTH_COOKIE_PATH"); v != "" {
		cfg.CookiePath = v
	}

	if v := os.Getenv("AUTH_ISSUER"); v != "" {
		cfg.Issuer = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the invariants a Config must hold before anything signs
// or verifies a token with it.
func (c *Config) Validate() error {
	if c.SigningKey == "" {
		return errors.New("auth signing key is required", errors.CategoryBadInput).
			WithTextCode(TextCodeMissingSigningKey)
	}

	if c.AccessTokenTTL <= 0 {
		return errors.New("access token TTL must be positive", errors.CategoryBadInput)
	}

	if c.RefreshTokenTTL <= 0 {
		return errors.New("refresh token TTL must be positive", errors.CategoryBadInput)
	}

	return nil
}

// SecureCookies reports whether cookies should carry the Secure attribute.
func (c *Config) SecureCookies() bool {
	return !c.DevMode
}
