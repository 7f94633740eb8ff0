package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tablebook/cafe-reservation/internal/domain"
	"github.com/tablebook/cafe-reservation/internal/model"
	"github.com/tablebook/cafe-reservation/internal/repository"
	"github.com/tablebook/cafe-reservation/internal/service"
)

// BookingHandler serves the reservation endpoints.
type BookingHandler struct {
	Svc   *service.BookingService
	Users *repository.UserRepo
}

func NewBookingHandler(svc *service.BookingService, users *repository.UserRepo) *BookingHandler {
	return &BookingHandler{Svc: svc, Users: users}
}

type bookingDTO struct {
	ID          uint64    `json:"id"`
	UserID      uint64    `json:"user_id"`
	CafeID      uint64    `json:"cafe_id"`
	Date        string    `json:"booking_date"`
	TableIDs    []uint64  `json:"table_ids"`
	SlotIDs     []uint64  `json:"slot_ids"`
	GuestNumber uint32    `json:"guest_number"`
	Note        *string   `json:"note,omitempty"`
	Status      string    `json:"status"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func bookingResp(b *model.Booking) bookingDTO {
	return bookingDTO{
		ID:          b.ID,
		UserID:      b.UserID,
		CafeID:      b.CafeID,
		Date:        b.Date.Format(model.DateOnly),
		TableIDs:    b.TableIDs,
		SlotIDs:     b.SlotIDs,
		GuestNumber: b.GuestNumber,
		Note:        b.Note,
		Status:      b.Status.String(),
		IsActive:    b.IsActive,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

type createBookingReq struct {
	CafeID      uint64   `json:"cafe_id"`
	Date        string   `json:"booking_date"`
	TableIDs    []uint64 `json:"table_ids"`
	SlotIDs     []uint64 `json:"slot_ids"`
	GuestNumber uint32   `json:"guest_number"`
	Note        *string  `json:"note"`
}

type updateBookingReq struct {
	Date        *string  `json:"booking_date"`
	TableIDs    []uint64 `json:"table_ids"`
	SlotIDs     []uint64 `json:"slot_ids"`
	GuestNumber *uint32  `json:"guest_number"`
	Note        *string  `json:"note"`
	Status      *int     `json:"status"`
}

func parseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(model.DateOnly, s, time.UTC)
	if err != nil {
		return time.Time{}, domain.Validation("INVALID_DATE", "booking_date %q is not a valid YYYY-MM-DD date", s)
	}
	return d, nil
}

// Create reserves tables and slots for the caller.
func (h *BookingHandler) Create(c echo.Context) error {
	sub, err := subject(c, h.Users)
	if err != nil {
		return respondError(c, err)
	}
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return respondError(c, err)
	}
	b, err := h.Svc.Create(c.Request().Context(), sub, service.CreateBookingInput{
		CafeID:      req.CafeID,
		Date:        date,
		TableIDs:    req.TableIDs,
		SlotIDs:     req.SlotIDs,
		GuestNumber: req.GuestNumber,
		Note:        req.Note,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, bookingResp(b))
}

// List returns bookings visible to the caller.  Optional filters:
// cafe_id, user_id (managers and admins only), show_all.
func (h *BookingHandler) List(c echo.Context) error {
	sub, err := subject(c, h.Users)
	if err != nil {
		return respondError(c, err)
	}
	in := service.ListBookingsInput{ShowAll: showAll(c)}
	if v := c.QueryParam("cafe_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil || id == 0 {
			return respondError(c, domain.Validation("INVALID_ID", "invalid cafe_id"))
		}
		in.CafeID = &id
	}
	if v := c.QueryParam("user_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil || id == 0 {
			return respondError(c, domain.Validation("INVALID_ID", "invalid user_id"))
		}
		in.UserID = &id
	}
	bs, err := h.Svc.List(c.Request().Context(), sub, in)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]bookingDTO, len(bs))
	for i := range bs {
		out[i] = bookingResp(&bs[i])
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns one booking.
func (h *BookingHandler) Get(c echo.Context) error {
	sub, err := subject(c, h.Users)
	if err != nil {
		return respondError(c, err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	b, err := h.Svc.Get(c.Request().Context(), sub, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, bookingResp(b))
}

// Update modifies a booking.
func (h *BookingHandler) Update(c echo.Context) error {
	sub, err := subject(c, h.Users)
	if err != nil {
		return respondError(c, err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req updateBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	in := service.UpdateBookingInput{
		TableIDs:    req.TableIDs,
		SlotIDs:     req.SlotIDs,
		GuestNumber: req.GuestNumber,
		Note:        req.Note,
	}
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			return respondError(c, err)
		}
		in.Date = &date
	}
	if req.Status != nil {
		st := model.BookingStatus(*req.Status)
		in.Status = &st
	}
	b, err := h.Svc.Update(c.Request().Context(), sub, id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, bookingResp(b))
}

// Cancel soft-cancels a booking.
func (h *BookingHandler) Cancel(c echo.Context) error {
	sub, err := subject(c, h.Users)
	if err != nil {
		return respondError(c, err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	b, err := h.Svc.Cancel(c.Request().Context(), sub, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, bookingResp(b))
}
