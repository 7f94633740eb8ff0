package model

import "fmt"

// Role is the ordered privilege level of a user.  The numeric values are
// stored as-is in the users.role column and embedded in JWT claims, so
// they must never be renumbered.  All privilege comparisons in the code
// base go through AtLeast rather than raw integer comparisons.
type Role uint8

const (
	RoleUser    Role = 0 // regular customer, may only act on own resources
	RoleManager Role = 1 // manages the cafes they are explicitly assigned to
	RoleAdmin   Role = 2 // unrestricted administration
)

// AtLeast reports whether r carries at least the privileges of threshold.
func (r Role) AtLeast(threshold Role) bool { return r >= threshold }

// Valid reports whether r is one of the known role values.
func (r Role) Valid() bool { return r <= RoleAdmin }

// String returns the canonical name of the role for logs and responses.
func (r Role) String() string {
	switch r {
	case RoleUser:
		return "USER"
	case RoleManager:
		return "MANAGER"
	case RoleAdmin:
		return "ADMIN"
	}
	return fmt.Sprintf("ROLE(%d)", uint8(r))
}

// ParseRole converts a raw integer (request payload, JWT claim) into a Role.
func ParseRole(n int) (Role, error) {
	r := Role(n)
	if !r.Valid() {
		return 0, fmt.Errorf("unknown role %d", n)
	}
	return r, nil
}
