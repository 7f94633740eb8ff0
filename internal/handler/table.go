package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tablebook/cafe-reservation/internal/model"
	"github.com/tablebook/cafe-reservation/internal/repository"
	"github.com/tablebook/cafe-reservation/internal/service"
)

// TableHandler serves the table endpoints.
type TableHandler struct {
	Svc   *service.TableService
	Users *repository.UserRepo
}

func NewTableHandler(svc *service.TableService, users *repository.UserRepo) *TableHandler {
	return &TableHandler{Svc: svc, Users: users}
}

type tableDTO struct {
	ID          uint64    `json:"id"`
	CafeID      uint64    `json:"cafe_id"`
	Description string    `json:"description"`
	SeatNumber  uint32    `json:"seat_number"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func tableResp(t *model.Table) tableDTO {
	return tableDTO{
		ID:          t.ID,
		CafeID:      t.CafeID,
		Description: t.Description,
		SeatNumber:  t.SeatNumber,
		IsActive:    t.IsActive,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

type createTableReq struct {
	Description string `json:"description"`
	SeatNumber  uint32 `json:"seat_number"`
}

type updateTableReq struct {
	Description *string `json:"description"`
	SeatNumber  *uint32 `json:"seat_number"`
	IsActive    *bool   `json:"is_active"`
}

// Create adds a table under /cafes/:cafe_id/tables.
func (h *TableHandler) Create(c echo.Context) error {
	sub, err := subject(c, h.Users)
	if err != nil {
		return respondError(c, err)
	}
	cafeID, err := parseID(c, "cafe_id")
	if err != nil {
		return respondError(c, err)
	}
	var req createTableReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	t, err := h.Svc.Create(c.Request().Context(), sub, service.CreateTableInput{
		CafeID:      cafeID,
		Description: req.Description,
		SeatNumber:  req.SeatNumber,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, tableResp(t))
}

// ListByCafe returns a cafe's tables.
func (h *TableHandler) ListByCafe(c echo.Context) error {
	sub, err := subject(c, h.Users)
	if err != nil {
		return respondError(c, err)
	}
	cafeID, err := parseID(c, "cafe_id")
	if err != nil {
		return respondError(c, err)
	}
	ts, err := h.Svc.ListByCafe(c.Request().Context(), sub, cafeID, showAll(c))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]tableDTO, len(ts))
	for i := range ts {
		out[i] = tableResp(&ts[i])
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns one table.
func (h *TableHandler) Get(c echo.Context) error {
	sub, err := subject(c, h.Users)
	if err != nil {
		return respondError(c, err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	t, err := h.Svc.Get(c.Request().Context(), sub, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, tableResp(t))
}

// Update modifies a table.
func (h *TableHandler) Update(c echo.Context) error {
	sub, err := subject(c, h.Users)
	if err != nil {
		return respondError(c, err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req updateTableReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	t, err := h.Svc.Update(c.Request().Context(), sub, id, service.UpdateTableInput{
		Description: req.Description,
		SeatNumber:  req.SeatNumber,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, tableResp(t))
}

// Delete soft-deletes a table.
func (h *TableHandler) Delete(c echo.Context) error {
	sub, err := subject(c, h.Users)
	if err != nil {
		return respondError(c, err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	t, err := h.Svc.Delete(c.Request().Context(), sub, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, tableResp(t))
}
