package service

import (
	"testing"
	"time"

	"github.com/tablebook/cafe-reservation/internal/domain"
	"github.com/tablebook/cafe-reservation/internal/model"
)

var testNow = time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)

func date(s string) time.Time {
	d, err := time.ParseInLocation(model.DateOnly, s, time.UTC)
	if err != nil {
		panic(err)
	}
	return d
}

func TestValidateBookingDate(t *testing.T) {
	if err := validateBookingDate(date("2025-06-15"), testNow); err != nil {
		t.Fatalf("today must be bookable: %v", err)
	}
	if err := validateBookingDate(date("2025-06-16"), testNow); err != nil {
		t.Fatalf("future date must be bookable: %v", err)
	}
	wantCode(t, validateBookingDate(date("2025-06-14"), testNow), domain.KindValidation, "PAST_DATE")
}

func TestGuardStatusChange(t *testing.T) {
	cancelled := model.BookingCancelled
	completed := model.BookingCompleted
	active := model.BookingActive
	bogus := model.BookingStatus(9)

	base := &model.Booking{
		Status:   model.BookingActive,
		IsActive: true,
		Date:     date("2025-06-20"),
	}

	if err := guardStatusChange(base, nil, testNow); err != nil {
		t.Fatalf("nil status change must pass: %v", err)
	}
	if err := guardStatusChange(base, &active, testNow); err != nil {
		t.Fatalf("no-op status change must pass: %v", err)
	}
	if err := guardStatusChange(base, &cancelled, testNow); err != nil {
		t.Fatalf("cancelling a future active booking must pass: %v", err)
	}
	wantCode(t, guardStatusChange(base, &bogus, testNow), domain.KindValidation, "INVALID_STATUS")

	past := &model.Booking{Status: model.BookingActive, IsActive: true, Date: date("2025-06-10")}
	wantCode(t, guardStatusChange(past, &completed, testNow), domain.KindForbidden, "BOOKING_FINALIZED")

	done := &model.Booking{Status: model.BookingCompleted, IsActive: true, Date: date("2025-06-20")}
	wantCode(t, guardStatusChange(done, &active, testNow), domain.KindForbidden, "BOOKING_FINALIZED")

	deleted := &model.Booking{Status: model.BookingActive, IsActive: false, Date: date("2025-06-20")}
	wantCode(t, guardStatusChange(deleted, &cancelled, testNow), domain.KindForbidden, "BOOKING_FINALIZED")
}
