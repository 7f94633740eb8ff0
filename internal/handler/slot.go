package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tablebook/cafe-reservation/internal/model"
	"github.com/tablebook/cafe-reservation/internal/repository"
	"github.com/tablebook/cafe-reservation/internal/service"
)

// SlotHandler serves the slot endpoints.
type SlotHandler struct {
	Svc   *service.SlotService
	Users *repository.UserRepo
}

func NewSlotHandler(svc *service.SlotService, users *repository.UserRepo) *SlotHandler {
	return &SlotHandler{Svc: svc, Users: users}
}

type slotDTO struct {
	ID          uint64    `json:"id"`
	CafeID      uint64    `json:"cafe_id"`
	StartTime   string    `json:"start_time"`
	EndTime     string    `json:"end_time"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func slotResp(s *model.Slot) slotDTO {
	return slotDTO{
		ID:          s.ID,
		CafeID:      s.CafeID,
		StartTime:   s.StartTime,
		EndTime:     s.EndTime,
		Description: s.Description,
		IsActive:    s.IsActive,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

type createSlotReq struct {
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Description string `json:"description"`
}

type updateSlotReq struct {
	StartTime   *string `json:"start_time"`
	EndTime     *string `json:"end_time"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

// Create adds a slot under /cafes/:cafe_id/slots.
func (h *SlotHandler) Create(c echo.Context) error {
	sub, err := subject(c, h.Users)
	if err != nil {
		return respondError(c, err)
	}
	cafeID, err := parseID(c, "cafe_id")
	if err != nil {
		return respondError(c, err)
	}
	var req createSlotReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	s, err := h.Svc.Create(c.Request().Context(), sub, service.CreateSlotInput{
		CafeID:      cafeID,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Description: req.Description,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, slotResp(s))
}

// ListByCafe returns a cafe's slots.
func (h *SlotHandler) ListByCafe(c echo.Context) error {
	sub, err := subject(c, h.Users)
	if err != nil {
		return respondError(c, err)
	}
	cafeID, err := parseID(c, "cafe_id")
	if err != nil {
		return respondError(c, err)
	}
	ss, err := h.Svc.ListByCafe(c.Request().Context(), sub, cafeID, showAll(c))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]slotDTO, len(ss))
	for i := range ss {
		out[i] = slotResp(&ss[i])
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns one slot.
func (h *SlotHandler) Get(c echo.Context) error {
	sub, err := subject(c, h.Users)
	if err != nil {
		return respondError(c, err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	s, err := h.Svc.Get(c.Request().Context(), sub, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, slotResp(s))
}

// Update modifies a slot.
func (h *SlotHandler) Update(c echo.Context) error {
	sub, err := subject(c, h.Users)
	if err != nil {
		return respondError(c, err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req updateSlotReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	s, err := h.Svc.Update(c.Request().Context(), sub, id, service.UpdateSlotInput{
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Description: req.Description,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, slotResp(s))
}

// Delete deactivates a slot.
func (h *SlotHandler) Delete(c echo.Context) error {
	sub, err := subject(c, h.Users)
	if err != nil {
		return respondError(c, err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	s, err := h.Svc.Delete(c.Request().Context(), sub, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, slotResp(s))
}
