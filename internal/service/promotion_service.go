package service

import (
	"context"
	"strings"

	"github.com/tablebook/cafe-reservation/internal/auth"
	"github.com/tablebook/cafe-reservation/internal/domain"
	"github.com/tablebook/cafe-reservation/internal/model"
	"github.com/tablebook/cafe-reservation/internal/outbox"
	"github.com/tablebook/cafe-reservation/internal/repository"
)

// PromotionService manages marketing promotions.  Creating one fires a
// broadcast notification to every active user.
type PromotionService struct {
	promotions PromotionStore
	cafes      CafeStore
	out        Outbox
}

func NewPromotionService(promotions PromotionStore, cafes CafeStore, out Outbox) *PromotionService {
	return &PromotionService{promotions: promotions, cafes: cafes, out: out}
}

// CreatePromotionInput carries a new promotion and the cafes it runs in.
type CreatePromotionInput struct {
	Description string
	CafeIDs     []uint64
}

// Create registers a promotion.  The subject must manage every cafe the
// promotion names (admins manage all).
func (s *PromotionService) Create(ctx context.Context, sub auth.Subject, in CreatePromotionInput) (*model.Promotion, error) {
	if err := auth.RequireActive(sub); err != nil {
		return nil, err
	}
	if !sub.Role.AtLeast(model.RoleManager) {
		return nil, domain.Forbidden("NOT_MANAGER", "only managers and admins can create promotions")
	}
	if in.Description == "" {
		return nil, domain.Validation("INVALID_PROMOTION", "description is required")
	}
	if len(in.CafeIDs) == 0 {
		return nil, domain.Validation("EMPTY_CAFES", "at least one cafe is required")
	}
	cafeIDs := repository.SortIDs(append([]uint64(nil), in.CafeIDs...))
	names, err := s.requireManageAll(ctx, sub, cafeIDs)
	if err != nil {
		return nil, err
	}
	p := &model.Promotion{Description: in.Description, CafeIDs: cafeIDs, IsActive: true}
	if err := s.promotions.Create(ctx, p); err != nil {
		return nil, err
	}
	s.out.Notify(ctx, outbox.Notification{
		RecipientKind: outbox.RecipientBroadcast,
		Template:      outbox.TemplatePromotionCreated,
		Params: map[string]string{
			"description": p.Description,
			"cafes":       strings.Join(names, ", "),
		},
	})
	return p, nil
}

// Get returns a single promotion; inactive ones are hidden from plain
// users.
func (s *PromotionService) Get(ctx context.Context, sub auth.Subject, id uint64) (*model.Promotion, error) {
	p, err := s.promotions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsActive && !sub.Role.AtLeast(model.RoleManager) {
		return nil, domain.NotFound("PROMOTION_NOT_FOUND", "no promotion with id %d", id)
	}
	return p, nil
}

// List returns promotions; show_all includes inactive ones for managers
// and admins.
func (s *PromotionService) List(ctx context.Context, sub auth.Subject, showAll bool) ([]model.Promotion, error) {
	return s.promotions.List(ctx, !auth.CanSeeInactive(sub, showAll))
}

// UpdatePromotionInput is a partial promotion update.  A non-nil
// CafeIDs replaces the full cafe set.
type UpdatePromotionInput struct {
	Description *string
	IsActive    *bool
	CafeIDs     []uint64
}

// Update modifies a promotion.  The subject must manage both the cafes
// currently attached and any newly requested set.
func (s *PromotionService) Update(ctx context.Context, sub auth.Subject, id uint64, in UpdatePromotionInput) (*model.Promotion, error) {
	if err := auth.RequireActive(sub); err != nil {
		return nil, err
	}
	p, err := s.promotions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireManageAll(ctx, sub, p.CafeIDs); err != nil {
		return nil, err
	}
	if in.Description != nil && *in.Description == "" {
		return nil, domain.Validation("INVALID_PROMOTION", "description cannot be empty")
	}
	if in.CafeIDs != nil {
		if len(in.CafeIDs) == 0 {
			return nil, domain.Validation("EMPTY_CAFES", "at least one cafe is required")
		}
		in.CafeIDs = repository.SortIDs(append([]uint64(nil), in.CafeIDs...))
		if _, err := s.requireManageAll(ctx, sub, in.CafeIDs); err != nil {
			return nil, err
		}
	}
	return s.promotions.Update(ctx, id, repository.PromotionPatch{
		Description: in.Description,
		IsActive:    in.IsActive,
		CafeIDs:     in.CafeIDs,
	})
}

// Delete soft-deletes a promotion.  Idempotent.
func (s *PromotionService) Delete(ctx context.Context, sub auth.Subject, id uint64) (*model.Promotion, error) {
	if err := auth.RequireActive(sub); err != nil {
		return nil, err
	}
	p, err := s.promotions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireManageAll(ctx, sub, p.CafeIDs); err != nil {
		return nil, err
	}
	return s.promotions.SoftDelete(ctx, id)
}

// requireManageAll checks CanManageCafe for each cafe id and returns
// the cafe names for the broadcast payload.
func (s *PromotionService) requireManageAll(ctx context.Context, sub auth.Subject, cafeIDs []uint64) ([]string, error) {
	names := make([]string, 0, len(cafeIDs))
	for _, id := range cafeIDs {
		cafe, err := s.cafes.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		managerIDs, err := s.cafes.ManagerIDs(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := auth.CanManageCafe(sub, managerIDs); err != nil {
			return nil, err
		}
		names = append(names, cafe.Name)
	}
	return names, nil
}
