package model

import "time"

// BookingStatus enumerates the lifecycle states of a booking.  ACTIVE is
// the only state that occupies (table, slot) capacity; CANCELLED and
// COMPLETED are terminal.
type BookingStatus int

const (
	BookingActive    BookingStatus = 0 // bookings.status = 0
	BookingCancelled BookingStatus = 1 // bookings.status = 1
	BookingCompleted BookingStatus = 2 // bookings.status = 2
)

// Valid reports whether s is one of the known status values.
func (s BookingStatus) Valid() bool {
	return s == BookingActive || s == BookingCancelled || s == BookingCompleted
}

// String returns the canonical name of the status.
func (s BookingStatus) String() string {
	switch s {
	case BookingActive:
		return "ACTIVE"
	case BookingCancelled:
		return "CANCELLED"
	case BookingCompleted:
		return "COMPLETED"
	}
	return "UNKNOWN"
}

// Booking reserves one or more tables for one or more slots on a single
// date, by one user, in one cafe.  Tables and slots are weak references
// held in the booking_tables / booking_slots join tables; the booking
// occupies the full cross product of its table set and slot set on its
// date.  Bookings are never hard-deleted, only cancelled.
//
// Fields:
//  ID          – primary key identifier.
//  UserID      – user who owns the booking.
//  CafeID      – cafe the booking is made in.
//  Date        – calendar date of the visit (time component always zero).
//  TableIDs    – tables reserved by this booking.
//  SlotIDs     – slots reserved by this booking.
//  GuestNumber – number of guests, > 0.
//  Note        – optional free-form note (nullable).
//  Status      – lifecycle status (ACTIVE, CANCELLED, COMPLETED).
//  IsActive    – soft-delete flag; cleared when the booking is cancelled.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Booking struct {
	ID          uint64        // bookings.id
	UserID      uint64        // bookings.user_id
	CafeID      uint64        // bookings.cafe_id
	Date        time.Time     // bookings.booking_date (DATE)
	TableIDs    []uint64      // booking_tables.table_id
	SlotIDs     []uint64      // booking_slots.slot_id
	GuestNumber uint32        // bookings.guest_number
	Note        *string       // bookings.note (nullable)
	Status      BookingStatus // bookings.status
	IsActive    bool          // bookings.is_active
	CreatedAt   time.Time     // bookings.created_at
	UpdatedAt   time.Time     // bookings.updated_at
}

// DateOnly is the wire and storage format of booking dates.
const DateOnly = "2006-01-02"
