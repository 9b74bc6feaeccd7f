package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"net/http" // HTTP status codes for responses
	"strings"  // string utilities for prefix checking and trimming

	"github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

	"github.com/iliyamo/user-account-service/internal/utils" // token verification helpers
)

// accessCookieName matches the cookie set by the auth handlers.  Browser
// clients authenticate through it; API clients use the Bearer header.
const accessCookieName = "accessToken"

// AccessAuth returns an Echo middleware that validates an access token and
// injects its subject (the user id) into the request context.  The token is
// read from the accessToken cookie first, falling back to an Authorization
// Bearer header, so both browser and non-cookie clients are served.  The
// provided secret must match the one used when issuing access tokens.
// Failures surface as echo HTTP errors, which the central error handler
// wraps into the uniform error envelope.
func AccessAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// Prefer the session cookie.  An absent cookie is not an error
			// yet; the Authorization header may still carry the token.
			raw := ""
			if ck, err := c.Cookie(accessCookieName); err == nil {
				raw = ck.Value
			}
			if raw == "" {
				auth := c.Request().Header.Get("Authorization")
				if strings.HasPrefix(auth, "Bearer ") {
					raw = strings.TrimPrefix(auth, "Bearer ")
				}
			}
			if raw == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized request")
			}

			// Verify signature and expiry and recover the subject id.
			subject, err := utils.VerifySubject(raw, secret)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
			}

			// Store the user id in the context for handlers downstream.
			c.Set("user_id", subject)
			return next(c)
		}
	}
}
