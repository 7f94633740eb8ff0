// Package service orchestrates the domain: it runs the authorization
// policy, the date/overlap/conflict validators and the persistence
// calls for every mutating operation.  Dependencies are narrow
// interfaces satisfied by the repository types, passed in explicitly so
// tests can substitute in-memory fakes.
package service

import (
	"context"
	"time"

	"github.com/tablebook/cafe-reservation/internal/model"
	"github.com/tablebook/cafe-reservation/internal/outbox"
	"github.com/tablebook/cafe-reservation/internal/repository"
)

// UserStore is the slice of UserRepo the services depend on.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id uint64) (*model.User, error)
	List(ctx context.Context, onlyActive bool) ([]model.User, error)
	ListByIDs(ctx context.Context, ids []uint64) ([]model.User, error)
	Update(ctx context.Context, id uint64, p repository.UserPatch) (*model.User, error)
}

// CafeStore is the slice of CafeRepo the services depend on.
type CafeStore interface {
	Create(ctx context.Context, c *model.Cafe, managerIDs []uint64) error
	GetByID(ctx context.Context, id uint64) (*model.Cafe, error)
	GetByNameAndAddress(ctx context.Context, name, address string) (*model.Cafe, error)
	List(ctx context.Context, onlyActive bool) ([]model.Cafe, error)
	Update(ctx context.Context, id uint64, p repository.CafePatch) (*model.Cafe, error)
	SoftDelete(ctx context.Context, id uint64) (*model.Cafe, error)
	ManagerIDs(ctx context.Context, cafeID uint64) (map[uint64]struct{}, error)
	ManagedCafeIDs(ctx context.Context, userID uint64) ([]uint64, error)
	ReplaceManagers(ctx context.Context, cafeID uint64, managerIDs []uint64) error
}

// TableStore is the slice of TableRepo the services depend on.
type TableStore interface {
	Create(ctx context.Context, t *model.Table) error
	GetByID(ctx context.Context, id uint64) (*model.Table, error)
	ListByCafe(ctx context.Context, cafeID uint64, onlyActive bool) ([]model.Table, error)
	ListByIDs(ctx context.Context, cafeID uint64, ids []uint64) ([]model.Table, error)
	Update(ctx context.Context, id uint64, p repository.TablePatch) (*model.Table, error)
	SoftDelete(ctx context.Context, id uint64) (*model.Table, error)
}

// SlotStore is the slice of SlotRepo the services depend on.
type SlotStore interface {
	Create(ctx context.Context, s *model.Slot) error
	GetByID(ctx context.Context, id uint64) (*model.Slot, error)
	ListByCafe(ctx context.Context, cafeID uint64, onlyActive bool) ([]model.Slot, error)
	ListByIDs(ctx context.Context, cafeID uint64, ids []uint64) ([]model.Slot, error)
	Update(ctx context.Context, id uint64, p repository.SlotPatch) (*model.Slot, error)
	Deactivate(ctx context.Context, id uint64) (*model.Slot, error)
}

// BookingStore is the slice of BookingRepo the services depend on.
type BookingStore interface {
	Create(ctx context.Context, b *model.Booking) error
	GetByID(ctx context.Context, id uint64) (*model.Booking, error)
	List(ctx context.Context, f repository.BookingFilter) ([]model.Booking, error)
	Update(ctx context.Context, b *model.Booking, p repository.BookingPatch) (*model.Booking, error)
	Cancel(ctx context.Context, id uint64) (*model.Booking, error)
	ActiveOccupancies(ctx context.Context, cafeID uint64, date time.Time, tableIDs, slotIDs []uint64, excludeBookingID uint64) ([]repository.Occupancy, error)
}

// PromotionStore is the slice of PromotionRepo the services depend on.
type PromotionStore interface {
	Create(ctx context.Context, p *model.Promotion) error
	GetByID(ctx context.Context, id uint64) (*model.Promotion, error)
	List(ctx context.Context, onlyActive bool) ([]model.Promotion, error)
	Update(ctx context.Context, id uint64, p repository.PromotionPatch) (*model.Promotion, error)
	SoftDelete(ctx context.Context, id uint64) (*model.Promotion, error)
}

// Outbox accepts fire-and-forget notification requests after successful
// commits.  Implementations must never return control-flow errors to
// the caller.
type Outbox interface {
	Notify(ctx context.Context, n outbox.Notification)
}

// Clock supplies the current time; injected so date-based rules are
// deterministic under test.
type Clock func() time.Time
