package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // Echo web framework used for routing

	"github.com/iliyamo/user-account-service/internal/config"     // runtime configuration
	"github.com/iliyamo/user-account-service/internal/handler"    // handlers that implement business logic
	"github.com/iliyamo/user-account-service/internal/middleware" // access-token middleware
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check, which
// load balancers and monitoring systems use to verify the service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the session and user routes.  Unauthenticated
// session operations live under /v1/auth; logout and the user endpoints
// require a valid access token.  The rate limiter, when non-nil, guards
// the whole auth group against brute-force traffic.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, u *handler.UserHandler, cfg config.Config, limiter echo.MiddlewareFunc) {
	protect := middleware.AccessAuth(cfg.AccessSecret)

	g := e.Group("/v1/auth")
	if limiter != nil {
		g.Use(limiter)
	}
	// Register a POST endpoint to handle user registration at /v1/auth/register.
	g.POST("/register", a.Register)
	// Register a POST endpoint to handle user login at /v1/auth/login.
	g.POST("/login", a.Login)
	// Register a POST endpoint to rotate the token pair at /v1/auth/refresh.
	// The refresh token arrives via cookie or JSON body.
	g.POST("/refresh", a.Refresh)
	// Logout is protected: the access token identifies whose session slot to
	// clear.  Clearing an already empty slot still succeeds.
	g.POST("/logout", a.Logout, protect)

	// Protected user endpoints live under /v1/users and all run the
	// access-token middleware before the handler.
	users := e.Group("/v1/users", protect)
	users.GET("/me", u.Me)
	users.PATCH("/me/avatar", u.UpdateAvatar)
	users.PATCH("/me/cover", u.UpdateCover)
}
