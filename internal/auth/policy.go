// Package auth implements the authorization policy engine.  Every
// decision is a pure function over an authenticated Subject and entity
// state the caller has already loaded; the engine itself never touches
// the database.  Manager/cafe ownership arrives as a plain id set
// (loaded from the cafe_managers join table), so "is U a manager of C"
// is a set-membership test rather than object-graph traversal.
package auth

import (
	"github.com/tablebook/cafe-reservation/internal/domain"
	"github.com/tablebook/cafe-reservation/internal/model"
)

// Subject is the authenticated caller as established by the JWT
// middleware: id, role and active flag, nothing more.
type Subject struct {
	ID     uint64
	Role   model.Role
	Active bool
}

// IsManagerOf reports whether the subject is one of the cafe's managers.
func (s Subject) IsManagerOf(managerIDs map[uint64]struct{}) bool {
	_, ok := managerIDs[s.ID]
	return ok
}

// CanManageCafe decides whether the subject may administer a cafe
// (update its fields, create or modify its tables and slots, view all
// of its bookings).  Admins always may; managers only when they belong
// to the cafe's manager set.
func CanManageCafe(sub Subject, managerIDs map[uint64]struct{}) error {
	if sub.Role.AtLeast(model.RoleAdmin) {
		return nil
	}
	if sub.Role.AtLeast(model.RoleManager) && sub.IsManagerOf(managerIDs) {
		return nil
	}
	return domain.Forbidden("NOT_CAFE_MANAGER", "you do not manage this cafe")
}

// CheckAppointManagers validates a manager assignment request.
// candidates are the users resolved from the requested ids; ids that
// did not resolve must be rejected naming them.  A plain user cannot be
// appointed, and a manager (not admin) cannot appoint an admin.
func CheckAppointManagers(sub Subject, requested []uint64, candidates []model.User) error {
	if !sub.Role.AtLeast(model.RoleManager) {
		return domain.Forbidden("NOT_MANAGER", "only managers and admins can assign cafe managers")
	}
	found := make(map[uint64]struct{}, len(candidates))
	for _, u := range candidates {
		found[u.ID] = struct{}{}
	}
	missing := make([]uint64, 0)
	for _, id := range requested {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return domain.Validation("INVALID_MANAGER_ID", "no users with ids %v", missing)
	}
	for _, u := range candidates {
		if !u.Role.AtLeast(model.RoleManager) {
			return domain.Validation("INVALID_ROLE",
				"user %d is a plain user and cannot be appointed cafe manager", u.ID)
		}
		if !sub.Role.AtLeast(model.RoleAdmin) && u.Role.AtLeast(model.RoleAdmin) {
			return domain.Forbidden("CANNOT_APPOINT_ADMIN",
				"a manager cannot appoint an admin as cafe manager")
		}
	}
	return nil
}

// CanViewBooking decides read access to a single booking.  Owners see
// their own; managers and admins see all.
func CanViewBooking(sub Subject, ownerID uint64) error {
	if sub.Role.AtLeast(model.RoleManager) || sub.ID == ownerID {
		return nil
	}
	// Hidden rather than forbidden: plain users must not learn that the
	// booking exists at all.
	return domain.NotFound("BOOKING_NOT_FOUND", "no booking found")
}

// CanModifyBooking decides write access to a booking.  The owner may
// modify their own booking; an admin any booking; a manager only
// bookings of a cafe they manage.
func CanModifyBooking(sub Subject, ownerID uint64, cafeManagerIDs map[uint64]struct{}) error {
	if sub.ID == ownerID || sub.Role.AtLeast(model.RoleAdmin) {
		return nil
	}
	if sub.Role.AtLeast(model.RoleManager) && sub.IsManagerOf(cafeManagerIDs) {
		return nil
	}
	if sub.Role.AtLeast(model.RoleManager) {
		return domain.Forbidden("NOT_CAFE_MANAGER", "you do not manage this cafe")
	}
	return domain.NotFound("BOOKING_NOT_FOUND", "no booking found")
}

// CheckRoleChange validates a requested role change on target.  No
// subject may change their own role, admins included.  A manager may
// not touch an admin's role nor grant the admin role; admins are
// otherwise unrestricted.
func CheckRoleChange(sub Subject, target model.User, newRole model.Role) error {
	if sub.ID == target.ID {
		return domain.Forbidden("OWN_ROLE_CHANGE", "changing your own role is forbidden")
	}
	if sub.Role.AtLeast(model.RoleAdmin) {
		return nil
	}
	if !sub.Role.AtLeast(model.RoleManager) {
		return domain.Forbidden("NOT_MANAGER", "only managers and admins can change roles")
	}
	if target.Role.AtLeast(model.RoleAdmin) {
		return domain.Forbidden("ADMIN_ROLE_PROTECTED", "a manager cannot change an admin's role")
	}
	if newRole.AtLeast(model.RoleAdmin) {
		return domain.Forbidden("CANNOT_GRANT_ADMIN", "a manager cannot grant the admin role")
	}
	return nil
}

// CanSeeInactive reports whether the subject's show_all request is
// honored: inactive resources are visible only to managers and admins
// that explicitly ask for them.
func CanSeeInactive(sub Subject, showAll bool) bool {
	return showAll && sub.Role.AtLeast(model.RoleManager)
}

// RequireActive rejects subjects whose account has been deactivated.
func RequireActive(sub Subject) error {
	if !sub.Active {
		return domain.Forbidden("INACTIVE_USER", "your account is deactivated")
	}
	return nil
}
