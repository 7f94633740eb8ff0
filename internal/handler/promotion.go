package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tablebook/cafe-reservation/internal/model"
	"github.com/tablebook/cafe-reservation/internal/repository"
	"github.com/tablebook/cafe-reservation/internal/service"
)

// PromotionHandler serves the promotion endpoints.
type PromotionHandler struct {
	Svc   *service.PromotionService
	Users *repository.UserRepo
}

func NewPromotionHandler(svc *service.PromotionService, users *repository.UserRepo) *PromotionHandler {
	return &PromotionHandler{Svc: svc, Users: users}
}

type promotionDTO struct {
	ID          uint64    `json:"id"`
	Description string    `json:"description"`
	CafeIDs     []uint64  `json:"cafe_ids"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func promotionResp(p *model.Promotion) promotionDTO {
	return promotionDTO{
		ID:          p.ID,
		Description: p.Description,
		CafeIDs:     p.CafeIDs,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

type createPromotionReq struct {
	Description string   `json:"description"`
	CafeIDs     []uint64 `json:"cafe_ids"`
}

type updatePromotionReq struct {
	Description *string  `json:"description"`
	IsActive    *bool    `json:"is_active"`
	CafeIDs     []uint64 `json:"cafe_ids"`
}

// Create registers a promotion and broadcasts it.
func (h *PromotionHandler) Create(c echo.Context) error {
	sub, err := subject(c, h.Users)
	if err != nil {
		return respondError(c, err)
	}
	var req createPromotionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	p, err := h.Svc.Create(c.Request().Context(), sub, service.CreatePromotionInput{
		Description: req.Description,
		CafeIDs:     req.CafeIDs,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, promotionResp(p))
}

// List returns promotions.
func (h *PromotionHandler) List(c echo.Context) error {
	sub, err := subject(c, h.Users)
	if err != nil {
		return respondError(c, err)
	}
	ps, err := h.Svc.List(c.Request().Context(), sub, showAll(c))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]promotionDTO, len(ps))
	for i := range ps {
		out[i] = promotionResp(&ps[i])
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns one promotion.
func (h *PromotionHandler) Get(c echo.Context) error {
	sub, err := subject(c, h.Users)
	if err != nil {
		return respondError(c, err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	p, err := h.Svc.Get(c.Request().Context(), sub, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, promotionResp(p))
}

// Update modifies a promotion.
func (h *PromotionHandler) Update(c echo.Context) error {
	sub, err := subject(c, h.Users)
	if err != nil {
		return respondError(c, err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req updatePromotionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	p, err := h.Svc.Update(c.Request().Context(), sub, id, service.UpdatePromotionInput{
		Description: req.Description,
		IsActive:    req.IsActive,
		CafeIDs:     req.CafeIDs,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, promotionResp(p))
}

// Delete soft-deletes a promotion.
func (h *PromotionHandler) Delete(c echo.Context) error {
	sub, err := subject(c, h.Users)
	if err != nil {
		return respondError(c, err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	p, err := h.Svc.Delete(c.Request().Context(), sub, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, promotionResp(p))
}
