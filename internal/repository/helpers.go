// Package repository contains data access logic separated from HTTP
// handlers and services.  Repositories are thin structs over *sql.DB
// issuing raw SQL; they translate sql.ErrNoRows into domain NotFound
// errors and MySQL duplicate-key violations (error 1062) into domain
// Conflict errors.  Any other failure is returned as-is and treated as
// internal by the callers.
package repository

import (
	"database/sql"
	"strings"
)

// isDuplicateKey reports whether err is a MySQL duplicate-key violation.
// The driver does not expose a typed error for this, so the numeric
// error code is matched in the message.
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}

// placeholders returns a "?,?,?" string with n markers for IN clauses.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}

// nullStr converts a nullable column into a *string.
func nullStr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// strArg converts a *string into a driver argument (NULL when nil).
func strArg(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
