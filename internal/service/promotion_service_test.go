package service

import (
	"context"
	"testing"

	"github.com/tablebook/cafe-reservation/internal/domain"
	"github.com/tablebook/cafe-reservation/internal/model"
	"github.com/tablebook/cafe-reservation/internal/outbox"
	"github.com/tablebook/cafe-reservation/internal/repository"
)

type fakePromotions struct {
	promotions map[uint64]*model.Promotion
	nextID     uint64
}

func newFakePromotions(ps ...*model.Promotion) *fakePromotions {
	f := &fakePromotions{promotions: map[uint64]*model.Promotion{}, nextID: 1}
	for _, p := range ps {
		f.promotions[p.ID] = p
		if p.ID >= f.nextID {
			f.nextID = p.ID + 1
		}
	}
	return f
}

func (f *fakePromotions) Create(_ context.Context, p *model.Promotion) error {
	p.ID = f.nextID
	f.nextID++
	f.promotions[p.ID] = p
	return nil
}

func (f *fakePromotions) GetByID(_ context.Context, id uint64) (*model.Promotion, error) {
	p, ok := f.promotions[id]
	if !ok {
		return nil, domain.NotFound("PROMOTION_NOT_FOUND", "no promotion with id %d", id)
	}
	cp := *p
	return &cp, nil
}

func (f *fakePromotions) List(_ context.Context, onlyActive bool) ([]model.Promotion, error) {
	out := []model.Promotion{}
	for _, p := range f.promotions {
		if onlyActive && !p.IsActive {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakePromotions) Update(_ context.Context, id uint64, patch repository.PromotionPatch) (*model.Promotion, error) {
	p, ok := f.promotions[id]
	if !ok {
		return nil, domain.NotFound("PROMOTION_NOT_FOUND", "no promotion with id %d", id)
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.IsActive != nil {
		p.IsActive = *patch.IsActive
	}
	if patch.CafeIDs != nil {
		p.CafeIDs = patch.CafeIDs
	}
	cp := *p
	return &cp, nil
}

func (f *fakePromotions) SoftDelete(_ context.Context, id uint64) (*model.Promotion, error) {
	p, ok := f.promotions[id]
	if !ok {
		return nil, domain.NotFound("PROMOTION_NOT_FOUND", "no promotion with id %d", id)
	}
	p.IsActive = false
	cp := *p
	return &cp, nil
}

func newPromotionFixture() (*PromotionService, *fakePromotions, *fakeOutbox) {
	cafes := newFakeCafes(
		&model.Cafe{ID: 1, Name: "Corner Cafe", Address: "Main St 1", IsActive: true},
		&model.Cafe{ID: 2, Name: "Harbor Cafe", Address: "Pier 3", IsActive: true},
	)
	cafes.setManagers(1, 2)
	cafes.setManagers(2, 4)
	promotions := newFakePromotions()
	out := &fakeOutbox{}
	return NewPromotionService(promotions, cafes, out), promotions, out
}

func TestPromotionCreateBroadcast(t *testing.T) {
	svc, _, out := newPromotionFixture()
	ctx := context.Background()

	p, err := svc.Create(ctx, managerSub, CreatePromotionInput{
		Description: "two for one espresso", CafeIDs: []uint64{1},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.ID == 0 || !p.IsActive {
		t.Fatalf("unexpected promotion state: %+v", p)
	}
	if len(out.sent) != 1 {
		t.Fatalf("expected one broadcast, got %d", len(out.sent))
	}
	n := out.sent[0]
	if n.RecipientKind != outbox.RecipientBroadcast || n.Template != outbox.TemplatePromotionCreated {
		t.Fatalf("unexpected notification: %+v", n)
	}
	if n.Params["cafes"] != "Corner Cafe" {
		t.Fatalf("cafe names missing from payload: %+v", n.Params)
	}
}

func TestPromotionManageAllCafes(t *testing.T) {
	svc, _, out := newPromotionFixture()
	ctx := context.Background()

	// Manager 2 runs cafe 1 but not cafe 2.
	_, err := svc.Create(ctx, managerSub, CreatePromotionInput{
		Description: "chain-wide", CafeIDs: []uint64{1, 2},
	})
	wantCode(t, err, domain.KindForbidden, "NOT_CAFE_MANAGER")
	if len(out.sent) != 0 {
		t.Fatal("rejected promotion must not broadcast")
	}

	if _, err := svc.Create(ctx, adminSub, CreatePromotionInput{
		Description: "chain-wide", CafeIDs: []uint64{1, 2},
	}); err != nil {
		t.Fatalf("admin create across cafes: %v", err)
	}

	_, err = svc.Create(ctx, userSub, CreatePromotionInput{Description: "x", CafeIDs: []uint64{1}})
	wantCode(t, err, domain.KindForbidden, "NOT_MANAGER")

	_, err = svc.Create(ctx, managerSub, CreatePromotionInput{Description: "", CafeIDs: []uint64{1}})
	wantCode(t, err, domain.KindValidation, "INVALID_PROMOTION")

	_, err = svc.Create(ctx, managerSub, CreatePromotionInput{Description: "x"})
	wantCode(t, err, domain.KindValidation, "EMPTY_CAFES")
}

func TestPromotionDelete(t *testing.T) {
	svc, promotions, _ := newPromotionFixture()
	ctx := context.Background()

	p, err := svc.Create(ctx, managerSub, CreatePromotionInput{Description: "x", CafeIDs: []uint64{1}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := svc.Delete(ctx, managerSub, p.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got.IsActive {
		t.Fatal("promotion still active")
	}
	if promotions.promotions[p.ID].IsActive {
		t.Fatal("store not updated")
	}
}
