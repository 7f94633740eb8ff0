// Package domain defines the error taxonomy shared by repositories,
// services and handlers.  Every domain failure is an *Error carrying a
// Kind (mapped to an HTTP status by the handler layer), a stable
// machine-readable Code and a human-readable Message.  Conflict errors
// additionally name the table and slot ids that caused the rejection so
// clients can retry with different choices.
package domain

import (
	"errors"
	"fmt"
)

// Kind classifies a domain error.  The handler layer owns the mapping
// from Kind to HTTP status; nothing below the handlers imports net/http.
type Kind int

const (
	KindInternal   Kind = iota // unexpected failure (DB down, bug)
	KindNotFound               // referenced id missing or hidden by visibility rules
	KindForbidden              // authenticated but not authorized
	KindConflict               // booking or slot overlap
	KindValidation             // malformed or semantically invalid input
)

// Error is the single error type produced by the core.  TableIDs and
// SlotIDs are populated only for booking conflicts.
type Error struct {
	Kind     Kind
	Code     string
	Message  string
	TableIDs []uint64
	SlotIDs  []uint64
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Message) }

// NotFound builds a KindNotFound error.
func NotFound(code, format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Forbidden builds a KindForbidden error.
func Forbidden(code, format string, args ...any) *Error {
	return &Error{Kind: KindForbidden, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Conflict builds a KindConflict error without id details.
func Conflict(code, format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: fmt.Sprintf(format, args...)}
}

// BookingConflict builds the conflict report for a rejected booking,
// naming the (already sorted, de-duplicated) table and slot ids that are
// taken on the requested date.
func BookingConflict(tableIDs, slotIDs []uint64) *Error {
	return &Error{
		Kind:     KindConflict,
		Code:     "BOOKING_CONFLICT",
		Message:  fmt.Sprintf("tables %v and slots %v are already booked on this date", tableIDs, slotIDs),
		TableIDs: tableIDs,
		SlotIDs:  slotIDs,
	}
}

// Validation builds a KindValidation error.
func Validation(code, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Internal wraps an unexpected failure.  The original error text is kept
// in the message for server logs; handlers render a generic body.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Code: "INTERNAL", Message: err.Error()}
}

// AsError extracts the *Error from err, if any.
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// KindOf reports the Kind of err; unknown errors count as internal.
func KindOf(err error) Kind {
	if de, ok := AsError(err); ok {
		return de.Kind
	}
	return KindInternal
}
