package service

import (
	"time"

	"github.com/tablebook/cafe-reservation/internal/domain"
	"github.com/tablebook/cafe-reservation/internal/model"
)

// ValidateSlotTimes checks the format and ordering of a slot range.
// Times must be zero-padded "HH:MM" and start must precede end; the
// overlap validator below relies on both properties.
func ValidateSlotTimes(start, end string) error {
	if _, err := time.Parse("15:04", start); err != nil || len(start) != 5 {
		return domain.Validation("INVALID_TIME", "start_time %q is not a valid HH:MM time", start)
	}
	if _, err := time.Parse("15:04", end); err != nil || len(end) != 5 {
		return domain.Validation("INVALID_TIME", "end_time %q is not a valid HH:MM time", end)
	}
	if start >= end {
		return domain.Validation("INVALID_TIME_RANGE", "start_time %s must be before end_time %s", start, end)
	}
	return nil
}

// ValidateNoOverlap rejects a proposed [start, end) range that
// intersects any active slot of the cafe.  slots is the cafe's full
// slot list; inactive slots never participate, so a deactivated slot's
// range can be reused.  excludeID skips the slot being updated so it is
// not compared against itself.  Ranges are half-open: end == other's
// start is not a conflict.  Callers run ValidateSlotTimes first; with
// zero-padded HH:MM strings the lexicographic comparisons below match
// chronological order.
func ValidateNoOverlap(slots []model.Slot, start, end string, excludeID uint64) error {
	for _, s := range slots {
		if !s.IsActive || s.ID == excludeID {
			continue
		}
		if end <= s.StartTime || start >= s.EndTime {
			continue
		}
		return domain.Conflict("SLOT_OVERLAP",
			"range %s-%s overlaps slot %d (%s-%s)", start, end, s.ID, s.StartTime, s.EndTime)
	}
	return nil
}
