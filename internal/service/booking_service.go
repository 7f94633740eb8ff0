package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tablebook/cafe-reservation/internal/auth"
	"github.com/tablebook/cafe-reservation/internal/domain"
	"github.com/tablebook/cafe-reservation/internal/model"
	"github.com/tablebook/cafe-reservation/internal/outbox"
	"github.com/tablebook/cafe-reservation/internal/repository"
)

// BookingService is the reservation orchestrator.  Every mutation runs
// the authorization policy, then the domain validators (date guard,
// existence checks, conflict detection), then persists and finally
// notifies the outbox.  The advisory conflict check produces the
// detailed rejection report; the occupancy unique key inside the store
// is the authoritative guard against concurrent writers.
type BookingService struct {
	bookings BookingStore
	cafes    CafeStore
	tables   TableStore
	slots    SlotStore
	out      Outbox
	now      Clock
}

// NewBookingService wires the orchestrator.  A nil clock defaults to
// time.Now.
func NewBookingService(b BookingStore, c CafeStore, t TableStore, s SlotStore, out Outbox, now Clock) *BookingService {
	if now == nil {
		now = time.Now
	}
	return &BookingService{bookings: b, cafes: c, tables: t, slots: s, out: out, now: now}
}

// CreateBookingInput carries a new reservation request.
type CreateBookingInput struct {
	CafeID      uint64
	Date        time.Time
	TableIDs    []uint64
	SlotIDs     []uint64
	GuestNumber uint32
	Note        *string
}

// Create reserves tables and slots for the subject on the given date.
func (s *BookingService) Create(ctx context.Context, sub auth.Subject, in CreateBookingInput) (*model.Booking, error) {
	if err := auth.RequireActive(sub); err != nil {
		return nil, err
	}
	if in.GuestNumber == 0 {
		return nil, domain.Validation("INVALID_GUEST_NUMBER", "guest_number must be positive")
	}
	if len(in.TableIDs) == 0 {
		return nil, domain.Validation("EMPTY_TABLES", "at least one table is required")
	}
	if len(in.SlotIDs) == 0 {
		return nil, domain.Validation("EMPTY_SLOTS", "at least one slot is required")
	}
	if err := validateBookingDate(in.Date, s.now()); err != nil {
		return nil, err
	}
	tableIDs := repository.SortIDs(append([]uint64(nil), in.TableIDs...))
	slotIDs := repository.SortIDs(append([]uint64(nil), in.SlotIDs...))

	cafe, err := s.activeCafe(ctx, in.CafeID)
	if err != nil {
		return nil, err
	}
	if err := s.checkEntities(ctx, cafe.ID, tableIDs, slotIDs); err != nil {
		return nil, err
	}
	occ, err := s.bookings.ActiveOccupancies(ctx, cafe.ID, in.Date, tableIDs, slotIDs, 0)
	if err != nil {
		return nil, err
	}
	if err := conflictReport(occ); err != nil {
		return nil, err
	}

	b := &model.Booking{
		UserID:      sub.ID,
		CafeID:      cafe.ID,
		Date:        in.Date,
		TableIDs:    tableIDs,
		SlotIDs:     slotIDs,
		GuestNumber: in.GuestNumber,
		Note:        in.Note,
		Status:      model.BookingActive,
		IsActive:    true,
	}
	if err := s.bookings.Create(ctx, b); err != nil {
		return nil, err
	}
	s.out.Notify(ctx, outbox.Notification{
		RecipientKind: outbox.RecipientUser,
		RecipientID:   b.UserID,
		Template:      outbox.TemplateBookingCreated,
		Params: map[string]string{
			"cafe":   cafe.Name,
			"date":   b.Date.Format(model.DateOnly),
			"tables": joinIDs(b.TableIDs),
			"slots":  joinIDs(b.SlotIDs),
		},
	})
	return b, nil
}

// Get returns a single booking under the visibility rules: owners see
// their own, managers and admins see all.
func (s *BookingService) Get(ctx context.Context, sub auth.Subject, id uint64) (*model.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.CanViewBooking(sub, b.UserID); err != nil {
		return nil, err
	}
	return b, nil
}

// ListBookingsInput narrows a booking listing.  CafeID and UserID are
// honored for managers and admins only; plain users always get their
// own active bookings.
type ListBookingsInput struct {
	CafeID  *uint64
	UserID  *uint64
	ShowAll bool
}

// List returns bookings visible to the subject.
func (s *BookingService) List(ctx context.Context, sub auth.Subject, in ListBookingsInput) ([]model.Booking, error) {
	if in.CafeID != nil {
		if _, err := s.cafes.GetByID(ctx, *in.CafeID); err != nil {
			return nil, err
		}
	}
	f := repository.BookingFilter{CafeID: in.CafeID}
	if sub.Role.AtLeast(model.RoleManager) {
		f.UserID = in.UserID
		f.ShowAll = auth.CanSeeInactive(sub, in.ShowAll)
	} else {
		uid := sub.ID
		f.UserID = &uid
	}
	return s.bookings.List(ctx, f)
}

// UpdateBookingInput is a partial booking update.  Nil fields are left
// unchanged; a nil slice keeps the current relation.
type UpdateBookingInput struct {
	Date        *time.Time
	TableIDs    []uint64
	SlotIDs     []uint64
	GuestNumber *uint32
	Note        *string
	Status      *model.BookingStatus
}

// Update modifies a booking.  Ownership rules: the owner, a manager of
// the booking's cafe, or an admin.  Status changes run through the
// lifecycle guard; date/table/slot changes re-run the conflict check
// against the merged result, excluding the booking itself.
func (s *BookingService) Update(ctx context.Context, sub auth.Subject, id uint64, in UpdateBookingInput) (*model.Booking, error) {
	if err := auth.RequireActive(sub); err != nil {
		return nil, err
	}
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	managerIDs, err := s.cafes.ManagerIDs(ctx, b.CafeID)
	if err != nil {
		return nil, err
	}
	if err := auth.CanModifyBooking(sub, b.UserID, managerIDs); err != nil {
		return nil, err
	}
	if err := guardStatusChange(b, in.Status, s.now()); err != nil {
		return nil, err
	}
	if in.GuestNumber != nil && *in.GuestNumber == 0 {
		return nil, domain.Validation("INVALID_GUEST_NUMBER", "guest_number must be positive")
	}

	date := b.Date
	if in.Date != nil {
		date = *in.Date
		if err := validateBookingDate(date, s.now()); err != nil {
			return nil, err
		}
	}
	tableIDs := b.TableIDs
	if in.TableIDs != nil {
		if len(in.TableIDs) == 0 {
			return nil, domain.Validation("EMPTY_TABLES", "at least one table is required")
		}
		tableIDs = repository.SortIDs(append([]uint64(nil), in.TableIDs...))
		in.TableIDs = tableIDs
	}
	slotIDs := b.SlotIDs
	if in.SlotIDs != nil {
		if len(in.SlotIDs) == 0 {
			return nil, domain.Validation("EMPTY_SLOTS", "at least one slot is required")
		}
		slotIDs = repository.SortIDs(append([]uint64(nil), in.SlotIDs...))
		in.SlotIDs = slotIDs
	}
	if err := s.checkEntities(ctx, b.CafeID, tableIDs, slotIDs); err != nil {
		return nil, err
	}
	// Re-check occupancy whenever the claimed (table, slot, date) cells
	// could change, excluding this booking from the comparison.
	if in.Date != nil || in.TableIDs != nil || in.SlotIDs != nil {
		occ, err := s.bookings.ActiveOccupancies(ctx, b.CafeID, date, tableIDs, slotIDs, b.ID)
		if err != nil {
			return nil, err
		}
		if err := conflictReport(occ); err != nil {
			return nil, err
		}
	}

	updated, err := s.bookings.Update(ctx, b, repository.BookingPatch{
		Date:        in.Date,
		TableIDs:    in.TableIDs,
		SlotIDs:     in.SlotIDs,
		GuestNumber: in.GuestNumber,
		Note:        in.Note,
		Status:      in.Status,
	})
	if err != nil {
		return nil, err
	}
	if in.Status != nil && *in.Status == model.BookingCancelled && b.Status == model.BookingActive {
		s.notifyCancelled(ctx, updated)
	}
	return updated, nil
}

// Cancel soft-cancels a booking and frees its (table, slot) cells.
// Cancelling an already finalized booking is a no-op.
func (s *BookingService) Cancel(ctx context.Context, sub auth.Subject, id uint64) (*model.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	managerIDs, err := s.cafes.ManagerIDs(ctx, b.CafeID)
	if err != nil {
		return nil, err
	}
	if err := auth.CanModifyBooking(sub, b.UserID, managerIDs); err != nil {
		return nil, err
	}
	wasActive := b.Status == model.BookingActive && b.IsActive
	cancelled, err := s.bookings.Cancel(ctx, id)
	if err != nil {
		return nil, err
	}
	if wasActive {
		s.notifyCancelled(ctx, cancelled)
	}
	return cancelled, nil
}

// activeCafe loads a cafe and hides inactive ones behind NotFound.
func (s *BookingService) activeCafe(ctx context.Context, id uint64) (*model.Cafe, error) {
	cafe, err := s.cafes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !cafe.IsActive {
		return nil, domain.NotFound("CAFE_NOT_FOUND", "no cafe with id %d", id)
	}
	return cafe, nil
}

// checkEntities verifies that every requested table and slot id exists
// and belongs to the cafe, naming the offending ids otherwise.
func (s *BookingService) checkEntities(ctx context.Context, cafeID uint64, tableIDs, slotIDs []uint64) error {
	tables, err := s.tables.ListByIDs(ctx, cafeID, tableIDs)
	if err != nil {
		return err
	}
	if missing := missingIDs(tableIDs, tableKeys(tables)); len(missing) > 0 {
		return domain.NotFound("TABLE_NOT_FOUND", "no tables with ids %v in cafe %d", missing, cafeID)
	}
	slots, err := s.slots.ListByIDs(ctx, cafeID, slotIDs)
	if err != nil {
		return err
	}
	if missing := missingIDs(slotIDs, slotKeys(slots)); len(missing) > 0 {
		return domain.NotFound("SLOT_NOT_FOUND", "no slots with ids %v in cafe %d", missing, cafeID)
	}
	return nil
}

func (s *BookingService) notifyCancelled(ctx context.Context, b *model.Booking) {
	params := map[string]string{"date": b.Date.Format(model.DateOnly)}
	if cafe, err := s.cafes.GetByID(ctx, b.CafeID); err == nil {
		params["cafe"] = cafe.Name
	}
	s.out.Notify(ctx, outbox.Notification{
		RecipientKind: outbox.RecipientUser,
		RecipientID:   b.UserID,
		Template:      outbox.TemplateBookingCancelled,
		Params:        params,
	})
}

func tableKeys(ts []model.Table) map[uint64]struct{} {
	out := make(map[uint64]struct{}, len(ts))
	for _, t := range ts {
		out[t.ID] = struct{}{}
	}
	return out
}

func slotKeys(ss []model.Slot) map[uint64]struct{} {
	out := make(map[uint64]struct{}, len(ss))
	for _, s := range ss {
		out[s.ID] = struct{}{}
	}
	return out
}

func missingIDs(want []uint64, have map[uint64]struct{}) []uint64 {
	missing := make([]uint64, 0)
	for _, id := range want {
		if _, ok := have[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

func joinIDs(ids []uint64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, ",")
}
