package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// CookieCodec writes and reads the auth cookies. Both cookies are HttpOnly,
// SameSite=Lax, scoped to the configured path, and Secure outside dev mode;
// max-age always matches the token lifetime.
type CookieCodec struct {
	cfg *Config
}

// NewCookieCodec builds a codec bound to cfg.
func NewCookieCodec(cfg *Config) *CookieCodec {
	return &CookieCodec{cfg: cfg}
}

// WriteAccess sets the access-token cookie.
func (cc *CookieCodec) WriteAccess(c *fiber.Ctx, token string, expiresAt time.Time) {
	cc.write(c, cc.cfg.AccessCookieName, token, expiresAt)
}

// WriteRefresh sets the refresh-token cookie.
func (cc *CookieCodec) WriteRefresh(c *fiber.Ctx, token string, expiresAt time.Time) {
	cc.write(c, cc.cfg.RefreshCookieName, token, expiresAt)
}

// ReadAccess returns the raw access token, empty when the cookie is absent.
func (cc *CookieCodec) ReadAccess(c *fiber.Ctx) string {
	return c.Cookies(cc.cfg.AccessCookieName)
}

// ReadRefresh returns the raw refresh token, empty when the cookie is absent.
func (cc *CookieCodec) ReadRefresh(c *fiber.Ctx) string {
	return c.Cookies(cc.cfg.RefreshCookieName)
}

// Clear expires both auth cookies.
func (cc *CookieCodec) Clear(c *fiber.Ctx) {
	cc.del(c, cc.cfg.AccessCookieName)
	cc.del(c, cc.cfg.RefreshCookieName)
}

func (cc *CookieCodec) write(c *fiber.Ctx, name, val string, expiresAt time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    val,
		Path:     cc.cfg.CookiePath,
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		HTTPOnly: true,
		Secure:   cc.cfg.SecureCookies(),
		SameSite: "Lax",
	})
}

func (cc *CookieCodec) del(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Path:     cc.cfg.CookiePath,
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   cc.cfg.SecureCookies(),
		SameSite: "Lax",
	})
}
