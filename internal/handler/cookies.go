package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/user-account-service/internal/config"
)

// Cookie names carried on every authenticated response.  Both cookies are
// HTTP-only with Lax same-site policy; Secure is set when running in a
// production-like environment so local development over plain HTTP works.
const (
	accessCookieName  = "accessToken"
	refreshCookieName = "refreshToken"
)

func authCookie(cfg config.Config, name, value string, ttl time.Duration) *http.Cookie {
	ck := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.Env == "prod",
		SameSite: http.SameSiteLaxMode,
	}
	if ttl > 0 {
		ck.MaxAge = int(ttl / time.Second)
		ck.Expires = time.Now().UTC().Add(ttl)
	} else {
		ck.MaxAge = -1 // expire immediately
	}
	return ck
}

// setSessionCookies attaches both tokens to the response, each living as
// long as the token it carries.
func setSessionCookies(c echo.Context, cfg config.Config, access, refresh string) {
	c.SetCookie(authCookie(cfg, accessCookieName, access, time.Duration(cfg.AccessTTLMin)*time.Minute))
	c.SetCookie(authCookie(cfg, refreshCookieName, refresh, time.Duration(cfg.RefreshTTLDays)*24*time.Hour))
}

// clearSessionCookies expires both cookies on the client.
func clearSessionCookies(c echo.Context, cfg config.Config) {
	c.SetCookie(authCookie(cfg, accessCookieName, "", 0))
	c.SetCookie(authCookie(cfg, refreshCookieName, "", 0))
}
