package model

import "time"

// Promotion is a marketing action that runs in one or more cafes.  The
// cafe relation lives in the promotion_cafes join table.  Creating a
// promotion triggers a broadcast notification to active users.
//
// Fields:
//  ID          – primary key identifier.
//  Description – promotion text sent to customers.
//  CafeIDs     – cafes the promotion applies to.
//  IsActive    – soft-delete flag.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Promotion struct {
	ID          uint64    // promotions.id
	Description string    // promotions.description
	CafeIDs     []uint64  // promotion_cafes.cafe_id
	IsActive    bool      // promotions.is_active
	CreatedAt   time.Time // promotions.created_at
	UpdatedAt   time.Time // promotions.updated_at
}
