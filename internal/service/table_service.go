package service

import (
	"context"

	"github.com/tablebook/cafe-reservation/internal/auth"
	"github.com/tablebook/cafe-reservation/internal/domain"
	"github.com/tablebook/cafe-reservation/internal/model"
	"github.com/tablebook/cafe-reservation/internal/repository"
)

// TableService manages the tables of a cafe.  All mutations are gated
// on CanManageCafe; reads are public apart from inactive rows.
type TableService struct {
	tables TableStore
	cafes  CafeStore
}

func NewTableService(tables TableStore, cafes CafeStore) *TableService {
	return &TableService{tables: tables, cafes: cafes}
}

// CreateTableInput carries a new table for a cafe.
type CreateTableInput struct {
	CafeID      uint64
	Description string
	SeatNumber  uint32
}

// Create adds a table to a cafe the subject manages.
func (s *TableService) Create(ctx context.Context, sub auth.Subject, in CreateTableInput) (*model.Table, error) {
	if err := s.requireManage(ctx, sub, in.CafeID); err != nil {
		return nil, err
	}
	if in.SeatNumber == 0 {
		return nil, domain.Validation("INVALID_SEAT_NUMBER", "seat_number must be positive")
	}
	t := &model.Table{
		CafeID:      in.CafeID,
		Description: in.Description,
		SeatNumber:  in.SeatNumber,
		IsActive:    true,
	}
	if err := s.tables.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Get returns a single table; inactive tables are hidden from plain
// users.
func (s *TableService) Get(ctx context.Context, sub auth.Subject, id uint64) (*model.Table, error) {
	t, err := s.tables.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !t.IsActive && !sub.Role.AtLeast(model.RoleManager) {
		return nil, domain.NotFound("TABLE_NOT_FOUND", "no table with id %d", id)
	}
	return t, nil
}

// ListByCafe returns a cafe's tables; show_all includes inactive ones
// for managers and admins.
func (s *TableService) ListByCafe(ctx context.Context, sub auth.Subject, cafeID uint64, showAll bool) ([]model.Table, error) {
	if _, err := s.cafes.GetByID(ctx, cafeID); err != nil {
		return nil, err
	}
	return s.tables.ListByCafe(ctx, cafeID, !auth.CanSeeInactive(sub, showAll))
}

// UpdateTableInput is a partial table update.
type UpdateTableInput struct {
	Description *string
	SeatNumber  *uint32
	IsActive    *bool
}

// Update modifies a table of a cafe the subject manages.
func (s *TableService) Update(ctx context.Context, sub auth.Subject, id uint64, in UpdateTableInput) (*model.Table, error) {
	t, err := s.tables.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireManage(ctx, sub, t.CafeID); err != nil {
		return nil, err
	}
	if in.SeatNumber != nil && *in.SeatNumber == 0 {
		return nil, domain.Validation("INVALID_SEAT_NUMBER", "seat_number must be positive")
	}
	return s.tables.Update(ctx, id, repository.TablePatch{
		Description: in.Description,
		SeatNumber:  in.SeatNumber,
		IsActive:    in.IsActive,
	})
}

// Delete soft-deletes a table.  Idempotent; existing bookings keep
// their rows, the table just stops accepting new ones.
func (s *TableService) Delete(ctx context.Context, sub auth.Subject, id uint64) (*model.Table, error) {
	t, err := s.tables.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireManage(ctx, sub, t.CafeID); err != nil {
		return nil, err
	}
	return s.tables.SoftDelete(ctx, id)
}

func (s *TableService) requireManage(ctx context.Context, sub auth.Subject, cafeID uint64) error {
	if err := auth.RequireActive(sub); err != nil {
		return err
	}
	if _, err := s.cafes.GetByID(ctx, cafeID); err != nil {
		return err
	}
	managerIDs, err := s.cafes.ManagerIDs(ctx, cafeID)
	if err != nil {
		return err
	}
	return auth.CanManageCafe(sub, managerIDs)
}
