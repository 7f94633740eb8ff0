package service

import (
	"testing"

	"github.com/tablebook/cafe-reservation/internal/domain"
	"github.com/tablebook/cafe-reservation/internal/model"
)

func wantCode(t *testing.T, err error, kind domain.Kind, code string) {
	t.Helper()
	de, ok := domain.AsError(err)
	if !ok {
		t.Fatalf("expected *domain.Error, got %v", err)
	}
	if de.Kind != kind || de.Code != code {
		t.Fatalf("got kind=%d code=%s, want kind=%d code=%s", de.Kind, de.Code, kind, code)
	}
}

func TestValidateSlotTimes(t *testing.T) {
	if err := ValidateSlotTimes("09:00", "10:30"); err != nil {
		t.Fatalf("valid range rejected: %v", err)
	}
	wantCode(t, ValidateSlotTimes("9:00", "10:00"), domain.KindValidation, "INVALID_TIME")
	wantCode(t, ValidateSlotTimes("09:00", "25:00"), domain.KindValidation, "INVALID_TIME")
	wantCode(t, ValidateSlotTimes("abcde", "10:00"), domain.KindValidation, "INVALID_TIME")
	wantCode(t, ValidateSlotTimes("10:00", "10:00"), domain.KindValidation, "INVALID_TIME_RANGE")
	wantCode(t, ValidateSlotTimes("11:00", "10:00"), domain.KindValidation, "INVALID_TIME_RANGE")
}

func TestValidateNoOverlap(t *testing.T) {
	slots := []model.Slot{
		{ID: 1, StartTime: "10:00", EndTime: "11:00", IsActive: true},
		{ID: 2, StartTime: "12:00", EndTime: "13:00", IsActive: false},
	}

	// Abutting ranges share an endpoint but not a minute.
	if err := ValidateNoOverlap(slots, "11:00", "12:00", 0); err != nil {
		t.Fatalf("abutting range rejected: %v", err)
	}
	if err := ValidateNoOverlap(slots, "09:00", "10:00", 0); err != nil {
		t.Fatalf("abutting range rejected: %v", err)
	}

	wantCode(t, ValidateNoOverlap(slots, "10:30", "11:30", 0), domain.KindConflict, "SLOT_OVERLAP")
	wantCode(t, ValidateNoOverlap(slots, "09:30", "10:30", 0), domain.KindConflict, "SLOT_OVERLAP")
	wantCode(t, ValidateNoOverlap(slots, "09:00", "14:00", 0), domain.KindConflict, "SLOT_OVERLAP")

	// Inactive slots never block.
	if err := ValidateNoOverlap(slots, "12:00", "13:00", 0); err != nil {
		t.Fatalf("inactive slot should not block: %v", err)
	}
	// A slot is not compared against itself on update.
	if err := ValidateNoOverlap(slots, "10:00", "11:30", 1); err != nil {
		t.Fatalf("excluded slot should not block: %v", err)
	}
}
