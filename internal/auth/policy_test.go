package auth

import (
	"testing"

	"github.com/tablebook/cafe-reservation/internal/domain"
	"github.com/tablebook/cafe-reservation/internal/model"
)

func set(ids ...uint64) map[uint64]struct{} {
	m := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return m
}

func wantKind(t *testing.T, err error, kind domain.Kind, code string) {
	t.Helper()
	de, ok := domain.AsError(err)
	if !ok {
		t.Fatalf("expected *domain.Error, got %v", err)
	}
	if de.Kind != kind || de.Code != code {
		t.Fatalf("got kind=%d code=%s, want kind=%d code=%s", de.Kind, de.Code, kind, code)
	}
}

func TestCanManageCafe(t *testing.T) {
	managers := set(7)

	if err := CanManageCafe(Subject{ID: 1, Role: model.RoleAdmin, Active: true}, managers); err != nil {
		t.Fatalf("admin should manage any cafe: %v", err)
	}
	if err := CanManageCafe(Subject{ID: 7, Role: model.RoleManager, Active: true}, managers); err != nil {
		t.Fatalf("assigned manager should manage the cafe: %v", err)
	}
	err := CanManageCafe(Subject{ID: 8, Role: model.RoleManager, Active: true}, managers)
	wantKind(t, err, domain.KindForbidden, "NOT_CAFE_MANAGER")

	err = CanManageCafe(Subject{ID: 7, Role: model.RoleUser, Active: true}, managers)
	wantKind(t, err, domain.KindForbidden, "NOT_CAFE_MANAGER")
}

func TestCheckAppointManagers(t *testing.T) {
	manager := Subject{ID: 1, Role: model.RoleManager, Active: true}
	admin := Subject{ID: 2, Role: model.RoleAdmin, Active: true}

	candidates := []model.User{
		{ID: 10, Role: model.RoleManager},
		{ID: 11, Role: model.RoleAdmin},
	}

	err := CheckAppointManagers(Subject{ID: 3, Role: model.RoleUser}, []uint64{10}, candidates[:1])
	wantKind(t, err, domain.KindForbidden, "NOT_MANAGER")

	err = CheckAppointManagers(manager, []uint64{10, 99}, candidates[:1])
	wantKind(t, err, domain.KindValidation, "INVALID_MANAGER_ID")

	err = CheckAppointManagers(manager, []uint64{10}, []model.User{{ID: 10, Role: model.RoleUser}})
	wantKind(t, err, domain.KindValidation, "INVALID_ROLE")

	err = CheckAppointManagers(manager, []uint64{10, 11}, candidates)
	wantKind(t, err, domain.KindForbidden, "CANNOT_APPOINT_ADMIN")

	if err := CheckAppointManagers(admin, []uint64{10, 11}, candidates); err != nil {
		t.Fatalf("admin may appoint another admin: %v", err)
	}
}

func TestCanViewBooking(t *testing.T) {
	if err := CanViewBooking(Subject{ID: 5, Role: model.RoleUser}, 5); err != nil {
		t.Fatalf("owner should view own booking: %v", err)
	}
	if err := CanViewBooking(Subject{ID: 6, Role: model.RoleManager}, 5); err != nil {
		t.Fatalf("manager should view any booking: %v", err)
	}
	// A stranger must not learn the booking exists.
	err := CanViewBooking(Subject{ID: 6, Role: model.RoleUser}, 5)
	wantKind(t, err, domain.KindNotFound, "BOOKING_NOT_FOUND")
}

func TestCanModifyBooking(t *testing.T) {
	managers := set(7)

	if err := CanModifyBooking(Subject{ID: 5, Role: model.RoleUser}, 5, managers); err != nil {
		t.Fatalf("owner may modify own booking: %v", err)
	}
	if err := CanModifyBooking(Subject{ID: 1, Role: model.RoleAdmin}, 5, managers); err != nil {
		t.Fatalf("admin may modify any booking: %v", err)
	}
	if err := CanModifyBooking(Subject{ID: 7, Role: model.RoleManager}, 5, managers); err != nil {
		t.Fatalf("cafe manager may modify bookings of their cafe: %v", err)
	}
	// Manager of another cafe is told "forbidden", plain user "not found".
	err := CanModifyBooking(Subject{ID: 8, Role: model.RoleManager}, 5, managers)
	wantKind(t, err, domain.KindForbidden, "NOT_CAFE_MANAGER")

	err = CanModifyBooking(Subject{ID: 8, Role: model.RoleUser}, 5, managers)
	wantKind(t, err, domain.KindNotFound, "BOOKING_NOT_FOUND")
}

func TestCheckRoleChange(t *testing.T) {
	admin := Subject{ID: 1, Role: model.RoleAdmin, Active: true}
	manager := Subject{ID: 2, Role: model.RoleManager, Active: true}

	// Nobody changes their own role, admins included.
	err := CheckRoleChange(admin, model.User{ID: 1, Role: model.RoleAdmin}, model.RoleUser)
	wantKind(t, err, domain.KindForbidden, "OWN_ROLE_CHANGE")

	if err := CheckRoleChange(admin, model.User{ID: 3, Role: model.RoleUser}, model.RoleAdmin); err != nil {
		t.Fatalf("admin may grant any role: %v", err)
	}

	err = CheckRoleChange(Subject{ID: 4, Role: model.RoleUser}, model.User{ID: 3}, model.RoleManager)
	wantKind(t, err, domain.KindForbidden, "NOT_MANAGER")

	err = CheckRoleChange(manager, model.User{ID: 5, Role: model.RoleAdmin}, model.RoleUser)
	wantKind(t, err, domain.KindForbidden, "ADMIN_ROLE_PROTECTED")

	err = CheckRoleChange(manager, model.User{ID: 5, Role: model.RoleUser}, model.RoleAdmin)
	wantKind(t, err, domain.KindForbidden, "CANNOT_GRANT_ADMIN")

	if err := CheckRoleChange(manager, model.User{ID: 5, Role: model.RoleUser}, model.RoleManager); err != nil {
		t.Fatalf("manager may promote a user to manager: %v", err)
	}
}

func TestCanSeeInactive(t *testing.T) {
	if CanSeeInactive(Subject{Role: model.RoleUser}, true) {
		t.Fatal("plain user must not see inactive resources")
	}
	if CanSeeInactive(Subject{Role: model.RoleManager}, false) {
		t.Fatal("show_all not requested")
	}
	if !CanSeeInactive(Subject{Role: model.RoleManager}, true) {
		t.Fatal("manager with show_all should see inactive resources")
	}
}

func TestRequireActive(t *testing.T) {
	if err := RequireActive(Subject{ID: 1, Active: true}); err != nil {
		t.Fatalf("active subject: %v", err)
	}
	err := RequireActive(Subject{ID: 1})
	wantKind(t, err, domain.KindForbidden, "INACTIVE_USER")
}
