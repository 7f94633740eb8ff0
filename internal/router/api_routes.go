package router

import (
	"github.com/labstack/echo/v4"

	"github.com/tablebook/cafe-reservation/internal/handler"
	"github.com/tablebook/cafe-reservation/internal/middleware"
	"github.com/tablebook/cafe-reservation/internal/model"
)

// APIHandlers bundles the domain handlers registered under /v1.
type APIHandlers struct {
	Users      *handler.UserHandler
	Cafes      *handler.CafeHandler
	Tables     *handler.TableHandler
	Slots      *handler.SlotHandler
	Bookings   *handler.BookingHandler
	Promotions *handler.PromotionHandler
}

// RegisterAPI registers the domain routes.  Everything requires a valid
// access token; route-level minimum roles are coarse gates, the
// services enforce the fine-grained ownership rules (e.g. "manager of
// THIS cafe").
func RegisterAPI(e *echo.Echo, h APIHandlers, jwtSecret string) {
	v1 := e.Group("/v1")
	v1.Use(middleware.JWTAuth(jwtSecret))

	manager := middleware.RequireRole(model.RoleManager)
	admin := middleware.RequireRole(model.RoleAdmin)

	// Users
	v1.GET("/users", h.Users.List, manager)
	v1.GET("/users/:id", h.Users.Get)
	v1.PATCH("/users/me", h.Users.UpdateMe)
	v1.PATCH("/users/:id", h.Users.Update, manager)
	v1.DELETE("/users/:id", h.Users.Delete, admin)

	// Cafes
	v1.POST("/cafes", h.Cafes.Create, manager)
	v1.GET("/cafes", h.Cafes.List)
	v1.GET("/cafes/:id", h.Cafes.Get)
	v1.PATCH("/cafes/:id", h.Cafes.Update, manager)
	v1.DELETE("/cafes/:id", h.Cafes.Delete, admin)
	v1.GET("/cafes/:id/managers", h.Cafes.Managers)

	// Tables
	v1.POST("/cafes/:cafe_id/tables", h.Tables.Create, manager)
	v1.GET("/cafes/:cafe_id/tables", h.Tables.ListByCafe)
	v1.GET("/tables/:id", h.Tables.Get)
	v1.PATCH("/tables/:id", h.Tables.Update, manager)
	v1.DELETE("/tables/:id", h.Tables.Delete, manager)

	// Slots
	v1.POST("/cafes/:cafe_id/slots", h.Slots.Create, manager)
	v1.GET("/cafes/:cafe_id/slots", h.Slots.ListByCafe)
	v1.GET("/slots/:id", h.Slots.Get)
	v1.PATCH("/slots/:id", h.Slots.Update, manager)
	v1.DELETE("/slots/:id", h.Slots.Delete, manager)

	// Bookings
	v1.POST("/bookings", h.Bookings.Create)
	v1.GET("/bookings", h.Bookings.List)
	v1.GET("/bookings/:id", h.Bookings.Get)
	v1.PATCH("/bookings/:id", h.Bookings.Update)
	v1.DELETE("/bookings/:id", h.Bookings.Cancel)

	// Promotions
	v1.POST("/promotions", h.Promotions.Create, manager)
	v1.GET("/promotions", h.Promotions.List)
	v1.GET("/promotions/:id", h.Promotions.Get)
	v1.PATCH("/promotions/:id", h.Promotions.Update, manager)
	v1.DELETE("/promotions/:id", h.Promotions.Delete, manager)
}
