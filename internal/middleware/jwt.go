// Package middleware contains the reusable Echo middleware: JWT
// authentication, role gating, the Redis response cache and the Redis
// token-bucket rate limiter.
package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/tablebook/cafe-reservation/internal/model"
)

// Context keys set by JWTAuth and read by handlers and the rate
// limiter.
const (
	CtxUserID = "user_id" // uint64
	CtxRole   = "role"    // model.Role
)

// JWTAuth returns middleware that validates a Bearer access token and
// stores the typed subject id and role in the request context.  The
// role claim travels as a number; anything that does not parse into a
// known role is rejected here so downstream code never sees an
// unchecked value.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(header, "Bearer ")

			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}
			sub, ok := claims["sub"].(float64)
			if !ok || sub < 1 {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid subject"})
			}
			roleNum, ok := claims["role"].(float64)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid role claim"})
			}
			role, err := model.ParseRole(int(roleNum))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid role claim"})
			}

			c.Set(CtxUserID, uint64(sub))
			c.Set(CtxRole, role)
			return next(c)
		}
	}
}
