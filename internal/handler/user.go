package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tablebook/cafe-reservation/internal/model"
	"github.com/tablebook/cafe-reservation/internal/repository"
	"github.com/tablebook/cafe-reservation/internal/service"
)

// UserHandler serves the user administration endpoints.
type UserHandler struct {
	Svc   *service.UserService
	Users *repository.UserRepo
}

func NewUserHandler(svc *service.UserService, users *repository.UserRepo) *UserHandler {
	return &UserHandler{Svc: svc, Users: users}
}

type userDTO struct {
	ID        uint64    `json:"id"`
	Username  string    `json:"username"`
	Email     *string   `json:"email,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	TgID      *string   `json:"tg_id,omitempty"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func userResp(u *model.User) userDTO {
	return userDTO{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Phone:     u.Phone,
		TgID:      u.TgID,
		Role:      u.Role.String(),
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func userList(us []model.User) []userDTO {
	out := make([]userDTO, len(us))
	for i := range us {
		out[i] = userResp(&us[i])
	}
	return out
}

type updateUserReq struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	TgID     *string `json:"tg_id"`
	Password *string `json:"password"`
	Role     *int    `json:"role"`
	IsActive *bool   `json:"is_active"`
}

// List returns users; managers and admins only.
func (h *UserHandler) List(c echo.Context) error {
	sub, err := subject(c, h.Users)
	if err != nil {
		return respondError(c, err)
	}
	us, err := h.Svc.List(c.Request().Context(), sub, showAll(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, userList(us))
}

// Get returns one user.
func (h *UserHandler) Get(c echo.Context) error {
	sub, err := subject(c, h.Users)
	if err != nil {
		return respondError(c, err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	u, err := h.Svc.Get(c.Request().Context(), sub, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, userResp(u))
}

// UpdateMe lets the caller edit their own profile.
func (h *UserHandler) UpdateMe(c echo.Context) error {
	sub, err := subject(c, h.Users)
	if err != nil {
		return respondError(c, err)
	}
	var req updateUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	u, err := h.Svc.UpdateProfile(c.Request().Context(), sub, service.UpdateProfileInput{
		Username: req.Username,
		Email:    req.Email,
		Phone:    req.Phone,
		TgID:     req.TgID,
		Password: req.Password,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, userResp(u))
}

// Update modifies a user by id, role and activation included.
func (h *UserHandler) Update(c echo.Context) error {
	sub, err := subject(c, h.Users)
	if err != nil {
		return respondError(c, err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req updateUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	in := service.UpdateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Phone:    req.Phone,
		TgID:     req.TgID,
		Password: req.Password,
		IsActive: req.IsActive,
	}
	if req.Role != nil {
		r := model.Role(*req.Role)
		in.Role = &r
	}
	u, err := h.Svc.Update(c.Request().Context(), sub, id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, userResp(u))
}

// Delete deactivates an account; admin only.
func (h *UserHandler) Delete(c echo.Context) error {
	sub, err := subject(c, h.Users)
	if err != nil {
		return respondError(c, err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	u, err := h.Svc.Deactivate(c.Request().Context(), sub, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, userResp(u))
}
