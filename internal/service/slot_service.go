package service

import (
	"context"

	"github.com/tablebook/cafe-reservation/internal/auth"
	"github.com/tablebook/cafe-reservation/internal/domain"
	"github.com/tablebook/cafe-reservation/internal/model"
	"github.com/tablebook/cafe-reservation/internal/repository"
)

// SlotService manages the bookable time slots of a cafe.  The active
// slots of one cafe must never overlap; the overlap validator runs on
// every create and on any update that touches the time range.
type SlotService struct {
	slots SlotStore
	cafes CafeStore
}

func NewSlotService(slots SlotStore, cafes CafeStore) *SlotService {
	return &SlotService{slots: slots, cafes: cafes}
}

// CreateSlotInput carries a new slot for a cafe.  Times are zero-padded
// "HH:MM".
type CreateSlotInput struct {
	CafeID      uint64
	StartTime   string
	EndTime     string
	Description string
}

// Create adds a slot to a cafe the subject manages, rejecting malformed
// ranges and overlaps with the cafe's active slots.
func (s *SlotService) Create(ctx context.Context, sub auth.Subject, in CreateSlotInput) (*model.Slot, error) {
	if err := s.requireManage(ctx, sub, in.CafeID); err != nil {
		return nil, err
	}
	if err := ValidateSlotTimes(in.StartTime, in.EndTime); err != nil {
		return nil, err
	}
	existing, err := s.slots.ListByCafe(ctx, in.CafeID, false)
	if err != nil {
		return nil, err
	}
	if err := ValidateNoOverlap(existing, in.StartTime, in.EndTime, 0); err != nil {
		return nil, err
	}
	slot := &model.Slot{
		CafeID:      in.CafeID,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		Description: in.Description,
		IsActive:    true,
	}
	if err := s.slots.Create(ctx, slot); err != nil {
		return nil, err
	}
	return slot, nil
}

// Get returns a single slot; inactive slots are hidden from plain
// users.
func (s *SlotService) Get(ctx context.Context, sub auth.Subject, id uint64) (*model.Slot, error) {
	slot, err := s.slots.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !slot.IsActive && !sub.Role.AtLeast(model.RoleManager) {
		return nil, domain.NotFound("SLOT_NOT_FOUND", "no slot with id %d", id)
	}
	return slot, nil
}

// ListByCafe returns a cafe's slots; show_all includes inactive ones
// for managers and admins.
func (s *SlotService) ListByCafe(ctx context.Context, sub auth.Subject, cafeID uint64, showAll bool) ([]model.Slot, error) {
	if _, err := s.cafes.GetByID(ctx, cafeID); err != nil {
		return nil, err
	}
	return s.slots.ListByCafe(ctx, cafeID, !auth.CanSeeInactive(sub, showAll))
}

// UpdateSlotInput is a partial slot update.  Start and end times must
// be changed together so the pair can be validated as one range.
type UpdateSlotInput struct {
	StartTime   *string
	EndTime     *string
	Description *string
	IsActive    *bool
}

// Update modifies a slot of a cafe the subject manages.  A changed or
// reactivated range is re-checked against the cafe's other active
// slots, excluding the slot itself.
func (s *SlotService) Update(ctx context.Context, sub auth.Subject, id uint64, in UpdateSlotInput) (*model.Slot, error) {
	slot, err := s.slots.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireManage(ctx, sub, slot.CafeID); err != nil {
		return nil, err
	}
	if (in.StartTime == nil) != (in.EndTime == nil) {
		return nil, domain.Validation("INVALID_TIME_RANGE", "start_time and end_time must be updated together")
	}
	start, end := slot.StartTime, slot.EndTime
	if in.StartTime != nil {
		start, end = *in.StartTime, *in.EndTime
		if err := ValidateSlotTimes(start, end); err != nil {
			return nil, err
		}
	}
	rangeChanged := in.StartTime != nil && (start != slot.StartTime || end != slot.EndTime)
	reactivated := in.IsActive != nil && *in.IsActive && !slot.IsActive
	if rangeChanged || reactivated {
		existing, err := s.slots.ListByCafe(ctx, slot.CafeID, false)
		if err != nil {
			return nil, err
		}
		if err := ValidateNoOverlap(existing, start, end, slot.ID); err != nil {
			return nil, err
		}
	}
	return s.slots.Update(ctx, id, repository.SlotPatch{
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		Description: in.Description,
		IsActive:    in.IsActive,
	})
}

// Delete deactivates a slot, freeing its time range for reuse.
// Idempotent; existing bookings keep their rows.
func (s *SlotService) Delete(ctx context.Context, sub auth.Subject, id uint64) (*model.Slot, error) {
	slot, err := s.slots.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireManage(ctx, sub, slot.CafeID); err != nil {
		return nil, err
	}
	return s.slots.Deactivate(ctx, id)
}

func (s *SlotService) requireManage(ctx context.Context, sub auth.Subject, cafeID uint64) error {
	if err := auth.RequireActive(sub); err != nil {
		return err
	}
	if _, err := s.cafes.GetByID(ctx, cafeID); err != nil {
		return err
	}
	managerIDs, err := s.cafes.ManagerIDs(ctx, cafeID)
	if err != nil {
		return err
	}
	return auth.CanManageCafe(sub, managerIDs)
}
