package service

import (
	"time"

	"github.com/tablebook/cafe-reservation/internal/domain"
	"github.com/tablebook/cafe-reservation/internal/model"
)

// today truncates now to a calendar date in UTC.  Booking dates carry
// no time component, so all past/future comparisons happen at date
// granularity.
func today(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// validateBookingDate rejects creation (or rescheduling) onto a date
// strictly before today.
func validateBookingDate(date time.Time, now time.Time) error {
	if date.Before(today(now)) {
		return domain.Validation("PAST_DATE", "cannot book a past date %s", date.Format(model.DateOnly))
	}
	return nil
}

// guardStatusChange enforces the booking lifecycle: once a booking is
// finalized (cancelled or completed), soft-deleted, or its date has
// passed, its status can no longer change.  Only the status field is
// governed here; note, guest count and table/slot changes are covered
// by the ownership and conflict checks instead.
func guardStatusChange(b *model.Booking, requested *model.BookingStatus, now time.Time) error {
	if requested == nil || *requested == b.Status {
		return nil
	}
	if !requested.Valid() {
		return domain.Validation("INVALID_STATUS", "unknown booking status %d", int(*requested))
	}
	if !b.IsActive || b.Status != model.BookingActive || b.Date.Before(today(now)) {
		return domain.Forbidden("BOOKING_FINALIZED", "cannot modify a past or already finalized booking")
	}
	return nil
}
