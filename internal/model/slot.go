package model

import "time"

// Slot is a cafe-scoped time-of-day interval that bookings are made
// against, e.g. "10:00"–"11:00".  Times are stored as zero-padded HH:MM
// strings; with that fixed width a plain string comparison orders them
// correctly, which the overlap validator relies on.  Among the active
// slots of one cafe no two intervals may overlap; a deactivated slot
// frees its range for reuse.
//
// Fields:
//  ID          – primary key identifier.
//  CafeID      – owning cafe.
//  StartTime   – inclusive start of the interval ("HH:MM").
//  EndTime     – exclusive end of the interval ("HH:MM"), after StartTime.
//  Description – free-form label for the slot.
//  IsActive    – soft-delete flag; inactive slots never block bookings.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Slot struct {
	ID          uint64    // slots.id
	CafeID      uint64    // slots.cafe_id
	StartTime   string    // slots.start_time ("HH:MM")
	EndTime     string    // slots.end_time ("HH:MM")
	Description string    // slots.description
	IsActive    bool      // slots.is_active
	CreatedAt   time.Time // slots.created_at
	UpdatedAt   time.Time // slots.updated_at
}
