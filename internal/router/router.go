// Package router wires URL paths to handlers and applies the
// authentication and role middleware per group.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/tablebook/cafe-reservation/internal/handler"
	"github.com/tablebook/cafe-reservation/internal/middleware"
)

// RegisterRoutes registers routes that require no authentication.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the auth endpoints.  Register, login, refresh
// and logout live under /v1/auth without a session; /v1/me requires a
// valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)

	// Logout also works outside the group: a refresh token in the body is
	// enough to end a session.
	e.POST("/v1/logout", a.Logout)
}
