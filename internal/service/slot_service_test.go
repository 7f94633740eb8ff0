package service

import (
	"context"
	"testing"

	"github.com/tablebook/cafe-reservation/internal/auth"
	"github.com/tablebook/cafe-reservation/internal/domain"
	"github.com/tablebook/cafe-reservation/internal/model"
)

func newSlotFixture() (*SlotService, *fakeSlots, *fakeCafes) {
	cafes := newFakeCafes(&model.Cafe{ID: 1, Name: "Corner Cafe", Address: "Main St 1", IsActive: true})
	cafes.setManagers(1, 2)
	slots := newFakeSlots(
		&model.Slot{ID: 1, CafeID: 1, StartTime: "10:00", EndTime: "11:00", IsActive: true},
		&model.Slot{ID: 2, CafeID: 1, StartTime: "12:00", EndTime: "13:00", IsActive: false},
	)
	return NewSlotService(slots, cafes), slots, cafes
}

func TestSlotCreate(t *testing.T) {
	svc, _, _ := newSlotFixture()
	ctx := context.Background()

	s, err := svc.Create(ctx, managerSub, CreateSlotInput{
		CafeID: 1, StartTime: "11:00", EndTime: "12:00", Description: "lunch",
	})
	if err != nil {
		t.Fatalf("create abutting slot: %v", err)
	}
	if !s.IsActive || s.ID == 0 {
		t.Fatalf("unexpected slot state: %+v", s)
	}

	_, err = svc.Create(ctx, managerSub, CreateSlotInput{CafeID: 1, StartTime: "10:30", EndTime: "11:30"})
	wantCode(t, err, domain.KindConflict, "SLOT_OVERLAP")

	// The deactivated slot's range is free for reuse.
	if _, err := svc.Create(ctx, managerSub, CreateSlotInput{CafeID: 1, StartTime: "12:00", EndTime: "13:00"}); err != nil {
		t.Fatalf("reuse of deactivated range: %v", err)
	}

	_, err = svc.Create(ctx, managerSub, CreateSlotInput{CafeID: 1, StartTime: "14:00", EndTime: "13:00"})
	wantCode(t, err, domain.KindValidation, "INVALID_TIME_RANGE")

	foreign := auth.Subject{ID: 9, Role: model.RoleManager, Active: true}
	_, err = svc.Create(ctx, foreign, CreateSlotInput{CafeID: 1, StartTime: "15:00", EndTime: "16:00"})
	wantCode(t, err, domain.KindForbidden, "NOT_CAFE_MANAGER")
}

func TestSlotUpdate(t *testing.T) {
	svc, _, _ := newSlotFixture()
	ctx := context.Background()

	// Start and end must travel together.
	start := "09:00"
	_, err := svc.Update(ctx, managerSub, 1, UpdateSlotInput{StartTime: &start})
	wantCode(t, err, domain.KindValidation, "INVALID_TIME_RANGE")

	// Moving a slot onto itself is allowed (it is excluded from the
	// overlap check).
	end := "11:00"
	start2 := "09:30"
	if _, err := svc.Update(ctx, managerSub, 1, UpdateSlotInput{StartTime: &start2, EndTime: &end}); err != nil {
		t.Fatalf("self-overlapping move: %v", err)
	}

	// Reactivating a slot re-checks its range against active slots.
	overlapStart, overlapEnd := "09:30", "10:30"
	active := true
	if _, err := svc.Update(ctx, managerSub, 2, UpdateSlotInput{StartTime: &overlapStart, EndTime: &overlapEnd, IsActive: &active}); err == nil {
		t.Fatal("reactivation into an occupied range must fail")
	}
}

func TestSlotDelete(t *testing.T) {
	svc, slots, _ := newSlotFixture()
	ctx := context.Background()

	s, err := svc.Delete(ctx, managerSub, 1)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if s.IsActive {
		t.Fatal("slot still active")
	}
	// Idempotent.
	if _, err := svc.Delete(ctx, managerSub, 1); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if slots.slots[1].IsActive {
		t.Fatal("store not updated")
	}
}
