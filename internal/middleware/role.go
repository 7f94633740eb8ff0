package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tablebook/cafe-reservation/internal/model"
)

// RequireRole enforces a minimum privilege level on a route group.
// Roles are ordered (USER < MANAGER < ADMIN), so a single threshold
// replaces per-route allow lists.  Must run after JWTAuth.
func RequireRole(min model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(CtxRole).(model.Role)
			if !ok || !role.AtLeast(min) {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
