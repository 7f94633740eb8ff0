package model

import "time"

// Table describes a physical table inside a cafe.  A table belongs to
// exactly one cafe for its whole lifetime; the cafe_id is fixed at
// creation.
//
// Fields:
//  ID          – primary key identifier.
//  CafeID      – owning cafe.
//  Description – free-form description shown to customers.
//  SeatNumber  – number of seats at the table.
//  IsActive    – soft-delete flag.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Table struct {
	ID          uint64    // tables.id
	CafeID      uint64    // tables.cafe_id
	Description string    // tables.description
	SeatNumber  uint32    // tables.seat_number
	IsActive    bool      // tables.is_active
	CreatedAt   time.Time // tables.created_at
	UpdatedAt   time.Time // tables.updated_at
}
