package service

import (
	"context"

	"github.com/tablebook/cafe-reservation/internal/auth"
	"github.com/tablebook/cafe-reservation/internal/domain"
	"github.com/tablebook/cafe-reservation/internal/model"
	"github.com/tablebook/cafe-reservation/internal/repository"
)

// CafeService manages venues and their manager assignments.
type CafeService struct {
	cafes CafeStore
	users UserStore
}

func NewCafeService(cafes CafeStore, users UserStore) *CafeService {
	return &CafeService{cafes: cafes, users: users}
}

// CreateCafeInput carries a new venue with its initial manager set.
type CreateCafeInput struct {
	Name       string
	Address    string
	ManagerIDs []uint64
}

// Create registers a cafe.  Only managers and admins may create cafes;
// the (name, address) pair must be unique among active cafes, and the
// appointed managers go through the appointment policy.
func (s *CafeService) Create(ctx context.Context, sub auth.Subject, in CreateCafeInput) (*model.Cafe, error) {
	if err := auth.RequireActive(sub); err != nil {
		return nil, err
	}
	if !sub.Role.AtLeast(model.RoleManager) {
		return nil, domain.Forbidden("NOT_MANAGER", "only managers and admins can create cafes")
	}
	if in.Name == "" || in.Address == "" {
		return nil, domain.Validation("INVALID_CAFE", "name and address are required")
	}
	existing, err := s.cafes.GetByNameAndAddress(ctx, in.Name, in.Address)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.IsActive {
		return nil, domain.Conflict("CAFE_EXISTS", "cafe %q at %q already exists", in.Name, in.Address)
	}
	managerIDs := repository.SortIDs(append([]uint64(nil), in.ManagerIDs...))
	if err := s.checkManagers(ctx, sub, managerIDs); err != nil {
		return nil, err
	}
	cafe := &model.Cafe{Name: in.Name, Address: in.Address, IsActive: true}
	if err := s.cafes.Create(ctx, cafe, managerIDs); err != nil {
		return nil, err
	}
	return cafe, nil
}

// Get returns a single cafe.  Inactive cafes are visible only to
// managers and admins.
func (s *CafeService) Get(ctx context.Context, sub auth.Subject, id uint64) (*model.Cafe, error) {
	cafe, err := s.cafes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !cafe.IsActive && !sub.Role.AtLeast(model.RoleManager) {
		return nil, domain.NotFound("CAFE_NOT_FOUND", "no cafe with id %d", id)
	}
	return cafe, nil
}

// List returns cafes; show_all includes inactive ones for managers and
// admins.  With mineOnly the result is restricted to cafes the caller
// is assigned to manage, so a manager can list their own venues without
// scanning the whole catalog.
func (s *CafeService) List(ctx context.Context, sub auth.Subject, showAll, mineOnly bool) ([]model.Cafe, error) {
	cafes, err := s.cafes.List(ctx, !auth.CanSeeInactive(sub, showAll))
	if err != nil || !mineOnly {
		return cafes, err
	}
	ids, err := s.cafes.ManagedCafeIDs(ctx, sub.ID)
	if err != nil {
		return nil, err
	}
	mine := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		mine[id] = struct{}{}
	}
	out := make([]model.Cafe, 0, len(ids))
	for _, cafe := range cafes {
		if _, ok := mine[cafe.ID]; ok {
			out = append(out, cafe)
		}
	}
	return out, nil
}

// UpdateCafeInput is a partial cafe update.  A non-nil ManagerIDs
// replaces the whole manager set.
type UpdateCafeInput struct {
	Name       *string
	Address    *string
	IsActive   *bool
	ManagerIDs []uint64
}

// Update modifies a cafe.  Admins may update any cafe; managers only
// cafes they manage, and only admins may flip is_active.
func (s *CafeService) Update(ctx context.Context, sub auth.Subject, id uint64, in UpdateCafeInput) (*model.Cafe, error) {
	if err := auth.RequireActive(sub); err != nil {
		return nil, err
	}
	cafe, err := s.cafes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	managerIDs, err := s.cafes.ManagerIDs(ctx, cafe.ID)
	if err != nil {
		return nil, err
	}
	if err := auth.CanManageCafe(sub, managerIDs); err != nil {
		return nil, err
	}
	if in.IsActive != nil && !sub.Role.AtLeast(model.RoleAdmin) {
		return nil, domain.Forbidden("NOT_ADMIN", "only admins can activate or deactivate cafes")
	}
	name := cafe.Name
	if in.Name != nil {
		name = *in.Name
	}
	address := cafe.Address
	if in.Address != nil {
		address = *in.Address
	}
	if name == "" || address == "" {
		return nil, domain.Validation("INVALID_CAFE", "name and address are required")
	}
	if in.Name != nil || in.Address != nil {
		other, err := s.cafes.GetByNameAndAddress(ctx, name, address)
		if err != nil {
			return nil, err
		}
		if other != nil && other.ID != cafe.ID && other.IsActive {
			return nil, domain.Conflict("CAFE_EXISTS", "cafe %q at %q already exists", name, address)
		}
	}
	if in.ManagerIDs != nil {
		ids := repository.SortIDs(append([]uint64(nil), in.ManagerIDs...))
		if err := s.checkManagers(ctx, sub, ids); err != nil {
			return nil, err
		}
		if err := s.cafes.ReplaceManagers(ctx, cafe.ID, ids); err != nil {
			return nil, err
		}
	}
	return s.cafes.Update(ctx, id, repository.CafePatch{
		Name:     in.Name,
		Address:  in.Address,
		IsActive: in.IsActive,
	})
}

// Delete soft-deletes a cafe.  Admin only; deleting an already inactive
// cafe is a no-op.
func (s *CafeService) Delete(ctx context.Context, sub auth.Subject, id uint64) (*model.Cafe, error) {
	if !sub.Role.AtLeast(model.RoleAdmin) {
		return nil, domain.Forbidden("NOT_ADMIN", "only admins can delete cafes")
	}
	return s.cafes.SoftDelete(ctx, id)
}

// Managers returns the cafe's manager users.
func (s *CafeService) Managers(ctx context.Context, sub auth.Subject, cafeID uint64) ([]model.User, error) {
	if _, err := s.Get(ctx, sub, cafeID); err != nil {
		return nil, err
	}
	set, err := s.cafes.ManagerIDs(ctx, cafeID)
	if err != nil {
		return nil, err
	}
	ids := make([]uint64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return []model.User{}, nil
	}
	return s.users.ListByIDs(ctx, repository.SortIDs(ids))
}

// checkManagers resolves the requested manager ids and runs the
// appointment policy against them.
func (s *CafeService) checkManagers(ctx context.Context, sub auth.Subject, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	candidates, err := s.users.ListByIDs(ctx, ids)
	if err != nil {
		return err
	}
	return auth.CheckAppointManagers(sub, ids, candidates)
}
