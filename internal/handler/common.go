// Package handler contains the HTTP layer: request DTOs, the error to
// status mapping and thin glue around the services.  Handlers never
// enforce business rules themselves; they translate between JSON and
// the service inputs.
package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/tablebook/cafe-reservation/internal/auth"
	"github.com/tablebook/cafe-reservation/internal/domain"
	"github.com/tablebook/cafe-reservation/internal/middleware"
	"github.com/tablebook/cafe-reservation/internal/repository"
)

// respondError maps a domain error to an HTTP response.  Unknown errors
// are logged and rendered as a generic 500 so internals never leak.
func respondError(c echo.Context, err error) error {
	de, ok := domain.AsError(err)
	if !ok {
		c.Logger().Errorf("internal error: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "INTERNAL", "message": "internal server error"})
	}
	body := echo.Map{"error": de.Code, "message": de.Message}
	if len(de.TableIDs) > 0 {
		body["conflicting_tables"] = de.TableIDs
	}
	if len(de.SlotIDs) > 0 {
		body["conflicting_slots"] = de.SlotIDs
	}
	switch de.Kind {
	case domain.KindNotFound:
		return c.JSON(http.StatusNotFound, body)
	case domain.KindForbidden:
		return c.JSON(http.StatusForbidden, body)
	case domain.KindConflict:
		return c.JSON(http.StatusConflict, body)
	case domain.KindValidation:
		return c.JSON(http.StatusUnprocessableEntity, body)
	default:
		c.Logger().Errorf("internal error: %s", de.Message)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "INTERNAL", "message": "internal server error"})
	}
}

// subject rebuilds the caller from the JWT claims plus a fresh user
// row, so deactivations and role changes bite before the token expires.
func subject(c echo.Context, users *repository.UserRepo) (auth.Subject, error) {
	id, ok := c.Get(middleware.CtxUserID).(uint64)
	if !ok || id == 0 {
		return auth.Subject{}, domain.Forbidden("UNAUTHENTICATED", "missing authentication")
	}
	u, err := users.GetByID(c.Request().Context(), id)
	if err != nil {
		return auth.Subject{}, err
	}
	return auth.Subject{ID: u.ID, Role: u.Role, Active: u.IsActive}, nil
}

// parseID reads a positive uint64 path parameter.
func parseID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, domain.Validation("INVALID_ID", "invalid %s", name)
	}
	return id, nil
}

// showAll reads the show_all query flag; the services decide whether
// the caller may actually use it.
func showAll(c echo.Context) bool {
	return queryFlag(c, "show_all")
}

func queryFlag(c echo.Context, name string) bool {
	v := c.QueryParam(name)
	return v == "1" || v == "true"
}
