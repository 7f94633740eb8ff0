package model

import "time"

// Cafe represents a venue that owns tables and time slots and is
// administered by zero or more managers.  The manager relation lives in
// the `cafe_managers` join table and is loaded separately as a set of
// user ids; the struct deliberately carries no live object graph.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – cafe name; (name, address) pairs are unique.
//  Address   – street address of the cafe.
//  IsActive  – soft-delete flag; inactive cafes are hidden from users.
//  CreatedAt – timestamp when the cafe was created.
//  UpdatedAt – timestamp of last update.
type Cafe struct {
	ID        uint64    // cafes.id
	Name      string    // cafes.name
	Address   string    // cafes.address
	IsActive  bool      // cafes.is_active
	CreatedAt time.Time // cafes.created_at
	UpdatedAt time.Time // cafes.updated_at
}
