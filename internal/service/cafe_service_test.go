package service

import (
	"context"
	"testing"

	"github.com/tablebook/cafe-reservation/internal/auth"
	"github.com/tablebook/cafe-reservation/internal/domain"
	"github.com/tablebook/cafe-reservation/internal/model"
)

func newCafeFixture() (*CafeService, *fakeCafes, *fakeUsers) {
	users := newFakeUsers(
		&model.User{ID: 1, Username: "root", Role: model.RoleAdmin, IsActive: true},
		&model.User{ID: 2, Username: "mona", Role: model.RoleManager, IsActive: true},
		&model.User{ID: 3, Username: "pete", Role: model.RoleUser, IsActive: true},
	)
	cafes := newFakeCafes(&model.Cafe{ID: 1, Name: "Corner Cafe", Address: "Main St 1", IsActive: true})
	cafes.setManagers(1, 2)
	return NewCafeService(cafes, users), cafes, users
}

var (
	adminSub   = auth.Subject{ID: 1, Role: model.RoleAdmin, Active: true}
	managerSub = auth.Subject{ID: 2, Role: model.RoleManager, Active: true}
	userSub    = auth.Subject{ID: 3, Role: model.RoleUser, Active: true}
)

func TestCafeCreate(t *testing.T) {
	svc, cafes, _ := newCafeFixture()
	ctx := context.Background()

	cf, err := svc.Create(ctx, managerSub, CreateCafeInput{
		Name: "Harbor Cafe", Address: "Pier 3", ManagerIDs: []uint64{2},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if cf.ID == 0 || !cf.IsActive {
		t.Fatalf("unexpected cafe state: %+v", cf)
	}
	set, _ := cafes.ManagerIDs(ctx, cf.ID)
	if _, ok := set[2]; !ok {
		t.Fatalf("manager 2 not assigned: %v", set)
	}

	_, err = svc.Create(ctx, userSub, CreateCafeInput{Name: "X", Address: "Y"})
	wantCode(t, err, domain.KindForbidden, "NOT_MANAGER")

	_, err = svc.Create(ctx, managerSub, CreateCafeInput{Name: "Corner Cafe", Address: "Main St 1"})
	wantCode(t, err, domain.KindConflict, "CAFE_EXISTS")

	_, err = svc.Create(ctx, managerSub, CreateCafeInput{Name: "", Address: "Z"})
	wantCode(t, err, domain.KindValidation, "INVALID_CAFE")
}

func TestCafeCreateAppointmentRules(t *testing.T) {
	svc, _, users := newCafeFixture()
	ctx := context.Background()

	// A plain user cannot be appointed manager.
	_, err := svc.Create(ctx, managerSub, CreateCafeInput{
		Name: "A", Address: "B", ManagerIDs: []uint64{3},
	})
	wantCode(t, err, domain.KindValidation, "INVALID_ROLE")

	// Unknown ids are named.
	_, err = svc.Create(ctx, managerSub, CreateCafeInput{
		Name: "A", Address: "B", ManagerIDs: []uint64{99},
	})
	wantCode(t, err, domain.KindValidation, "INVALID_MANAGER_ID")

	// A manager cannot appoint an admin; an admin can.
	_, err = svc.Create(ctx, managerSub, CreateCafeInput{
		Name: "A", Address: "B", ManagerIDs: []uint64{1},
	})
	wantCode(t, err, domain.KindForbidden, "CANNOT_APPOINT_ADMIN")

	if _, err := svc.Create(ctx, adminSub, CreateCafeInput{
		Name: "A", Address: "B", ManagerIDs: []uint64{1},
	}); err != nil {
		t.Fatalf("admin appointing admin: %v", err)
	}
	_ = users
}

func TestCafeUpdateOwnership(t *testing.T) {
	svc, cafes, _ := newCafeFixture()
	ctx := context.Background()
	name := "Renamed"

	if _, err := svc.Update(ctx, managerSub, 1, UpdateCafeInput{Name: &name}); err != nil {
		t.Fatalf("assigned manager update: %v", err)
	}

	foreign := auth.Subject{ID: 9, Role: model.RoleManager, Active: true}
	_, err := svc.Update(ctx, foreign, 1, UpdateCafeInput{Name: &name})
	wantCode(t, err, domain.KindForbidden, "NOT_CAFE_MANAGER")

	// Only admins flip is_active.
	inactive := false
	_, err = svc.Update(ctx, managerSub, 1, UpdateCafeInput{IsActive: &inactive})
	wantCode(t, err, domain.KindForbidden, "NOT_ADMIN")
	if _, err := svc.Update(ctx, adminSub, 1, UpdateCafeInput{IsActive: &inactive}); err != nil {
		t.Fatalf("admin deactivate: %v", err)
	}

	// Replacing the manager set goes through the appointment policy.
	_, err = svc.Update(ctx, adminSub, 1, UpdateCafeInput{ManagerIDs: []uint64{3}})
	wantCode(t, err, domain.KindValidation, "INVALID_ROLE")
	if _, err := svc.Update(ctx, adminSub, 1, UpdateCafeInput{ManagerIDs: []uint64{2}}); err != nil {
		t.Fatalf("manager replacement: %v", err)
	}
	if got := cafes.replacedManagers[1]; len(got) != 1 || got[0] != 2 {
		t.Fatalf("manager set not replaced: %v", got)
	}
}

func TestCafeListMine(t *testing.T) {
	svc, cafes, _ := newCafeFixture()
	ctx := context.Background()

	cafes.cafes[2] = &model.Cafe{ID: 2, Name: "Harbor Cafe", Address: "Pier 3", IsActive: true}
	cafes.setManagers(2, 9)

	cs, err := svc.List(ctx, managerSub, false, true)
	if err != nil {
		t.Fatalf("list mine: %v", err)
	}
	if len(cs) != 1 || cs[0].ID != 1 {
		t.Fatalf("manager 2 runs only cafe 1, got %v", cs)
	}

	// A caller with no assignments gets an empty result, not an error.
	cs, err = svc.List(ctx, userSub, false, true)
	if err != nil {
		t.Fatalf("list mine: %v", err)
	}
	if len(cs) != 0 {
		t.Fatalf("unassigned caller should see no cafes, got %v", cs)
	}
}

func TestCafeDeleteAndVisibility(t *testing.T) {
	svc, _, _ := newCafeFixture()
	ctx := context.Background()

	_, err := svc.Delete(ctx, managerSub, 1)
	wantCode(t, err, domain.KindForbidden, "NOT_ADMIN")

	cf, err := svc.Delete(ctx, adminSub, 1)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if cf.IsActive {
		t.Fatal("cafe still active after delete")
	}
	// Idempotent.
	if _, err := svc.Delete(ctx, adminSub, 1); err != nil {
		t.Fatalf("second delete: %v", err)
	}

	// Inactive cafes are hidden from plain users but visible to managers.
	_, err = svc.Get(ctx, userSub, 1)
	wantCode(t, err, domain.KindNotFound, "CAFE_NOT_FOUND")
	if _, err := svc.Get(ctx, managerSub, 1); err != nil {
		t.Fatalf("manager get inactive cafe: %v", err)
	}

	cs, err := svc.List(ctx, userSub, true, false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(cs) != 0 {
		t.Fatalf("plain user must not list inactive cafes, got %d", len(cs))
	}
	cs, err = svc.List(ctx, adminSub, true, false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(cs) != 1 {
		t.Fatalf("admin show_all should include inactive cafes, got %d", len(cs))
	}
}
