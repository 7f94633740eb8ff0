package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tablebook/cafe-reservation/internal/model"
	"github.com/tablebook/cafe-reservation/internal/repository"
	"github.com/tablebook/cafe-reservation/internal/service"
)

// CafeHandler serves the cafe endpoints.
type CafeHandler struct {
	Svc   *service.CafeService
	Users *repository.UserRepo
}

func NewCafeHandler(svc *service.CafeService, users *repository.UserRepo) *CafeHandler {
	return &CafeHandler{Svc: svc, Users: users}
}

type cafeDTO struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func cafeResp(cf *model.Cafe) cafeDTO {
	return cafeDTO{
		ID:        cf.ID,
		Name:      cf.Name,
		Address:   cf.Address,
		IsActive:  cf.IsActive,
		CreatedAt: cf.CreatedAt,
		UpdatedAt: cf.UpdatedAt,
	}
}

func cafeList(cs []model.Cafe) []cafeDTO {
	out := make([]cafeDTO, len(cs))
	for i := range cs {
		out[i] = cafeResp(&cs[i])
	}
	return out
}

type createCafeReq struct {
	Name       string   `json:"name"`
	Address    string   `json:"address"`
	ManagerIDs []uint64 `json:"manager_ids"`
}

type updateCafeReq struct {
	Name       *string  `json:"name"`
	Address    *string  `json:"address"`
	IsActive   *bool    `json:"is_active"`
	ManagerIDs []uint64 `json:"manager_ids"`
}

// Create registers a cafe with its initial managers.
func (h *CafeHandler) Create(c echo.Context) error {
	sub, err := subject(c, h.Users)
	if err != nil {
		return respondError(c, err)
	}
	var req createCafeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	cf, err := h.Svc.Create(c.Request().Context(), sub, service.CreateCafeInput{
		Name:       req.Name,
		Address:    req.Address,
		ManagerIDs: req.ManagerIDs,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, cafeResp(cf))
}

// List returns cafes visible to the caller.  The mine flag restricts
// the result to cafes the caller manages.
func (h *CafeHandler) List(c echo.Context) error {
	sub, err := subject(c, h.Users)
	if err != nil {
		return respondError(c, err)
	}
	cs, err := h.Svc.List(c.Request().Context(), sub, showAll(c), queryFlag(c, "mine"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, cafeList(cs))
}

// Get returns one cafe.
func (h *CafeHandler) Get(c echo.Context) error {
	sub, err := subject(c, h.Users)
	if err != nil {
		return respondError(c, err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	cf, err := h.Svc.Get(c.Request().Context(), sub, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, cafeResp(cf))
}

// Update modifies a cafe and optionally replaces its manager set.
func (h *CafeHandler) Update(c echo.Context) error {
	sub, err := subject(c, h.Users)
	if err != nil {
		return respondError(c, err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req updateCafeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	cf, err := h.Svc.Update(c.Request().Context(), sub, id, service.UpdateCafeInput{
		Name:       req.Name,
		Address:    req.Address,
		IsActive:   req.IsActive,
		ManagerIDs: req.ManagerIDs,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, cafeResp(cf))
}

// Delete soft-deletes a cafe; admin only.
func (h *CafeHandler) Delete(c echo.Context) error {
	sub, err := subject(c, h.Users)
	if err != nil {
		return respondError(c, err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	cf, err := h.Svc.Delete(c.Request().Context(), sub, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, cafeResp(cf))
}

// Managers lists the cafe's manager users.
func (h *CafeHandler) Managers(c echo.Context) error {
	sub, err := subject(c, h.Users)
	if err != nil {
		return respondError(c, err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	us, err := h.Svc.Managers(c.Request().Context(), sub, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, userList(us))
}
