package service

import (
	"context"
	"testing"

	"github.com/tablebook/cafe-reservation/internal/auth"
	"github.com/tablebook/cafe-reservation/internal/domain"
	"github.com/tablebook/cafe-reservation/internal/model"
)

func strp(s string) *string { return &s }

func newUserFixture() (*UserService, *fakeUsers) {
	users := newFakeUsers(
		&model.User{ID: 1, Username: "root", Email: strp("root@example.com"), Role: model.RoleAdmin, IsActive: true},
		&model.User{ID: 2, Username: "mona", Email: strp("mona@example.com"), Role: model.RoleManager, IsActive: true},
		&model.User{ID: 3, Username: "pete", Email: strp("pete@example.com"), Role: model.RoleUser, IsActive: true},
	)
	// Low bcrypt cost keeps the tests fast.
	return NewUserService(users, 4), users
}

func TestRegister(t *testing.T) {
	svc, _ := newUserFixture()
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterInput{
		Username: "nina", Email: strp("nina@example.com"), Password: "supersecret",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.Role != model.RoleUser || !u.IsActive {
		t.Fatalf("new users must be plain and active: %+v", u)
	}
	if u.PasswordHash == "" || u.PasswordHash == "supersecret" {
		t.Fatal("password must be stored hashed")
	}

	_, err = svc.Register(ctx, RegisterInput{Username: "", Email: strp("a@b.c"), Password: "supersecret"})
	wantCode(t, err, domain.KindValidation, "INVALID_USERNAME")

	_, err = svc.Register(ctx, RegisterInput{Username: "x", Email: strp("a@b.c"), Password: "short"})
	wantCode(t, err, domain.KindValidation, "WEAK_PASSWORD")

	// At least one contact channel is required; empty strings count as
	// unset.
	_, err = svc.Register(ctx, RegisterInput{Username: "x", Email: strp(""), Password: "supersecret"})
	wantCode(t, err, domain.KindValidation, "NO_CONTACT")

	if _, err := svc.Register(ctx, RegisterInput{Username: "y", Phone: strp("+123456"), Password: "supersecret"}); err != nil {
		t.Fatalf("phone-only registration: %v", err)
	}
}

func TestUpdateProfileContactInvariant(t *testing.T) {
	svc, _ := newUserFixture()
	ctx := context.Background()
	sub := auth.Subject{ID: 3, Role: model.RoleUser, Active: true}

	// Clearing the only contact channel is rejected.
	_, err := svc.UpdateProfile(ctx, sub, UpdateProfileInput{Email: strp("")})
	wantCode(t, err, domain.KindValidation, "NO_CONTACT")

	// Swapping email for phone in one patch is fine.
	u, err := svc.UpdateProfile(ctx, sub, UpdateProfileInput{Email: strp(""), Phone: strp("+999")})
	if err != nil {
		t.Fatalf("profile update: %v", err)
	}
	if u.Phone == nil || *u.Phone != "+999" {
		t.Fatalf("phone not updated: %+v", u)
	}
}

func TestRoleChangeRules(t *testing.T) {
	svc, _ := newUserFixture()
	ctx := context.Background()
	admin := auth.Subject{ID: 1, Role: model.RoleAdmin, Active: true}
	manager := auth.Subject{ID: 2, Role: model.RoleManager, Active: true}
	managerRole := model.RoleManager
	adminRole := model.RoleAdmin
	userRole := model.RoleUser

	// Nobody changes their own role, not even an admin.
	_, err := svc.Update(ctx, admin, 1, UpdateUserInput{Role: &userRole})
	wantCode(t, err, domain.KindForbidden, "OWN_ROLE_CHANGE")

	// Managers cannot touch admins or mint them.
	_, err = svc.Update(ctx, manager, 1, UpdateUserInput{Role: &userRole})
	wantCode(t, err, domain.KindForbidden, "ADMIN_ROLE_PROTECTED")
	_, err = svc.Update(ctx, manager, 3, UpdateUserInput{Role: &adminRole})
	wantCode(t, err, domain.KindForbidden, "CANNOT_GRANT_ADMIN")

	// Manager promotes a user to manager.
	u, err := svc.Update(ctx, manager, 3, UpdateUserInput{Role: &managerRole})
	if err != nil {
		t.Fatalf("promote: %v", err)
	}
	if u.Role != model.RoleManager {
		t.Fatalf("role = %v, want MANAGER", u.Role)
	}

	bogus := model.Role(9)
	_, err = svc.Update(ctx, admin, 3, UpdateUserInput{Role: &bogus})
	wantCode(t, err, domain.KindValidation, "INVALID_ROLE")
}

func TestDeactivate(t *testing.T) {
	svc, users := newUserFixture()
	ctx := context.Background()
	admin := auth.Subject{ID: 1, Role: model.RoleAdmin, Active: true}
	manager := auth.Subject{ID: 2, Role: model.RoleManager, Active: true}

	_, err := svc.Deactivate(ctx, manager, 3)
	wantCode(t, err, domain.KindForbidden, "NOT_ADMIN")

	_, err = svc.Deactivate(ctx, admin, 1)
	wantCode(t, err, domain.KindForbidden, "OWN_DEACTIVATE")

	u, err := svc.Deactivate(ctx, admin, 3)
	if err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if u.IsActive {
		t.Fatal("user still active")
	}
	// Idempotent.
	if _, err := svc.Deactivate(ctx, admin, 3); err != nil {
		t.Fatalf("second deactivate: %v", err)
	}
	if users.users[3].IsActive {
		t.Fatal("store not updated")
	}

	// Activation changes by managers are refused.
	active := true
	_, err = svc.Update(ctx, manager, 3, UpdateUserInput{IsActive: &active})
	wantCode(t, err, domain.KindForbidden, "NOT_ADMIN")
}

func TestGetVisibility(t *testing.T) {
	svc, _ := newUserFixture()
	ctx := context.Background()
	user := auth.Subject{ID: 3, Role: model.RoleUser, Active: true}

	if _, err := svc.Get(ctx, user, 3); err != nil {
		t.Fatalf("self get: %v", err)
	}
	_, err := svc.Get(ctx, user, 2)
	wantCode(t, err, domain.KindNotFound, "USER_NOT_FOUND")

	manager := auth.Subject{ID: 2, Role: model.RoleManager, Active: true}
	if _, err := svc.Get(ctx, manager, 3); err != nil {
		t.Fatalf("manager get: %v", err)
	}

	_, err = svc.List(ctx, user, false)
	wantCode(t, err, domain.KindForbidden, "NOT_MANAGER")
}
