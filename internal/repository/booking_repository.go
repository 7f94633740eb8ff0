package repository

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/tablebook/cafe-reservation/internal/domain"
	"github.com/tablebook/cafe-reservation/internal/model"
)

// BookingRepo persists bookings together with their booking_tables /
// booking_slots join rows and the booking_occupancy rows that back the
// concurrency guarantee.
//
// booking_occupancy carries one row per (table, slot) cell a booking
// occupies on its date, with UNIQUE (cafe_id, booking_date, table_id,
// slot_id).  The advisory conflict check in the service layer produces
// the detailed rejection report, but the unique key is the authoritative
// guard: when two requests race past the check, the second occupancy
// INSERT fails with a duplicate key and the whole transaction rolls
// back.  A duplicate key here is always surfaced as a Conflict, never
// retried as success.
type BookingRepo struct{ db *sql.DB }

func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// Occupancy is one (table, slot) cell held by an active booking on a
// date.  Rows are only ever produced for cells where the same booking
// covers both the table and the slot.
type Occupancy struct {
	BookingID uint64
	TableID   uint64
	SlotID    uint64
}

// BookingFilter narrows List results.  Nil fields are ignored.  ShowAll
// additionally includes soft-deleted bookings.
type BookingFilter struct {
	UserID  *uint64
	CafeID  *uint64
	ShowAll bool
}

const bookingCols = "id, user_id, cafe_id, booking_date, guest_number, note, status, is_active, created_at, updated_at"

func scanBooking(row interface{ Scan(...any) error }) (*model.Booking, error) {
	var (
		b      model.Booking
		note   sql.NullString
		status int
	)
	if err := row.Scan(&b.ID, &b.UserID, &b.CafeID, &b.Date, &b.GuestNumber,
		&note, &status, &b.IsActive, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	b.Note = nullStr(note)
	b.Status = model.BookingStatus(status)
	return &b, nil
}

// Create inserts the booking, its join rows and its occupancy rows in a
// single transaction.  A duplicate occupancy key from a concurrent
// writer is returned as a Conflict.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	res, err := tx.ExecContext(ctx,
		"INSERT INTO bookings (user_id, cafe_id, booking_date, guest_number, note, status, is_active) VALUES (?,?,?,?,?,?,1)",
		b.UserID, b.CafeID, b.Date.Format(model.DateOnly), b.GuestNumber,
		strArg(b.Note), int(b.Status))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	if err := insertBookingRelations(ctx, tx, b); err != nil {
		return err
	}
	if b.Status == model.BookingActive {
		if err := insertOccupancy(ctx, tx, b); err != nil {
			if isDuplicateKey(err) {
				return domain.Conflict("BOOKING_CONFLICT",
					"a concurrent booking took one of the requested tables and slots")
			}
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	created, err := r.GetByID(ctx, b.ID)
	if err != nil {
		return err
	}
	*b = *created
	return nil
}

func insertBookingRelations(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	if len(b.TableIDs) > 0 {
		q := "INSERT INTO booking_tables (booking_id, table_id) VALUES "
		args := make([]any, 0, len(b.TableIDs)*2)
		for i, tid := range b.TableIDs {
			if i > 0 {
				q += ","
			}
			q += "(?,?)"
			args = append(args, b.ID, tid)
		}
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	if len(b.SlotIDs) > 0 {
		q := "INSERT INTO booking_slots (booking_id, slot_id) VALUES "
		args := make([]any, 0, len(b.SlotIDs)*2)
		for i, sid := range b.SlotIDs {
			if i > 0 {
				q += ","
			}
			q += "(?,?)"
			args = append(args, b.ID, sid)
		}
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	return nil
}

// insertOccupancy writes one row per (table, slot) cell of the booking's
// cross product.  The UNIQUE key on (cafe_id, booking_date, table_id,
// slot_id) is what makes check-then-write safe against races.
func insertOccupancy(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	if len(b.TableIDs) == 0 || len(b.SlotIDs) == 0 {
		return nil
	}
	q := "INSERT INTO booking_occupancy (cafe_id, booking_date, table_id, slot_id, booking_id) VALUES "
	args := make([]any, 0, len(b.TableIDs)*len(b.SlotIDs)*5)
	first := true
	date := b.Date.Format(model.DateOnly)
	for _, tid := range b.TableIDs {
		for _, sid := range b.SlotIDs {
			if !first {
				q += ","
			}
			first = false
			q += "(?,?,?,?,?)"
			args = append(args, b.CafeID, date, tid, sid, b.ID)
		}
	}
	_, err := tx.ExecContext(ctx, q, args...)
	return err
}

// GetByID fetches a booking with its table and slot id sets.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	b, err := scanBooking(r.db.QueryRowContext(ctx,
		"SELECT "+bookingCols+" FROM bookings WHERE id=? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("BOOKING_NOT_FOUND", "no booking with id %d", id)
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadRelations(ctx, []*model.Booking{b}); err != nil {
		return nil, err
	}
	return b, nil
}

// List returns bookings matching the filter, newest first, with their
// table and slot id sets loaded.
func (r *BookingRepo) List(ctx context.Context, f BookingFilter) ([]model.Booking, error) {
	q := "SELECT " + bookingCols + " FROM bookings"
	where := make([]string, 0, 3)
	args := make([]any, 0, 3)
	if !f.ShowAll {
		where = append(where, "is_active=1")
	}
	if f.UserID != nil {
		where, args = append(where, "user_id=?"), append(args, *f.UserID)
	}
	if f.CafeID != nil {
		where, args = append(where, "cafe_id=?"), append(args, *f.CafeID)
	}
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at DESC, id DESC"
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Booking, 0)
	refs := make([]*model.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
		refs = append(refs, &out[len(out)-1])
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadRelations(ctx, refs); err != nil {
		return nil, err
	}
	return out, nil
}

// loadRelations populates TableIDs and SlotIDs for the given bookings
// with one query per join table.
func (r *BookingRepo) loadRelations(ctx context.Context, bookings []*model.Booking) error {
	if len(bookings) == 0 {
		return nil
	}
	index := make(map[uint64]*model.Booking, len(bookings))
	args := make([]any, 0, len(bookings))
	for _, b := range bookings {
		b.TableIDs = make([]uint64, 0, 2)
		b.SlotIDs = make([]uint64, 0, 2)
		index[b.ID] = b
		args = append(args, b.ID)
	}
	in := placeholders(len(bookings))
	rows, err := r.db.QueryContext(ctx,
		"SELECT booking_id, table_id FROM booking_tables WHERE booking_id IN ("+in+") ORDER BY table_id", args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var bid, tid uint64
		if err := rows.Scan(&bid, &tid); err != nil {
			return err
		}
		if b := index[bid]; b != nil {
			b.TableIDs = append(b.TableIDs, tid)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	srows, err := r.db.QueryContext(ctx,
		"SELECT booking_id, slot_id FROM booking_slots WHERE booking_id IN ("+in+") ORDER BY slot_id", args...)
	if err != nil {
		return err
	}
	defer srows.Close()
	for srows.Next() {
		var bid, sid uint64
		if err := srows.Scan(&bid, &sid); err != nil {
			return err
		}
		if b := index[bid]; b != nil {
			b.SlotIDs = append(b.SlotIDs, sid)
		}
	}
	return srows.Err()
}

// ActiveOccupancies returns every (table, slot) cell taken by an ACTIVE
// booking of the cafe on the date, restricted to the requested table and
// slot ids.  The join goes through the same booking row for both
// relations, so a cell only matches when one booking covers the table
// AND the slot; tables and slots of different bookings never combine.
func (r *BookingRepo) ActiveOccupancies(ctx context.Context, cafeID uint64, date time.Time, tableIDs, slotIDs []uint64, excludeBookingID uint64) ([]Occupancy, error) {
	if len(tableIDs) == 0 || len(slotIDs) == 0 {
		return nil, nil
	}
	q := `SELECT b.id, bt.table_id, bs.slot_id
	      FROM bookings b
	      JOIN booking_tables bt ON bt.booking_id = b.id
	      JOIN booking_slots  bs ON bs.booking_id = b.id
	      WHERE b.cafe_id = ? AND b.booking_date = ? AND b.status = ? AND b.is_active = 1
	        AND bt.table_id IN (` + placeholders(len(tableIDs)) + `)
	        AND bs.slot_id  IN (` + placeholders(len(slotIDs)) + `)`
	args := make([]any, 0, len(tableIDs)+len(slotIDs)+4)
	args = append(args, cafeID, date.Format(model.DateOnly), int(model.BookingActive))
	for _, id := range tableIDs {
		args = append(args, id)
	}
	for _, id := range slotIDs {
		args = append(args, id)
	}
	if excludeBookingID != 0 {
		q += " AND b.id <> ?"
		args = append(args, excludeBookingID)
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Occupancy, 0)
	for rows.Next() {
		var o Occupancy
		if err := rows.Scan(&o.BookingID, &o.TableID, &o.SlotID); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// BookingPatch lists the updatable fields of a booking.  Nil slices
// leave the relation unchanged.
type BookingPatch struct {
	Date        *time.Time
	TableIDs    []uint64
	SlotIDs     []uint64
	GuestNumber *uint32
	Note        *string
	Status      *model.BookingStatus
}

// Update applies the patch in one transaction.  Whenever the date, the
// relations or the status change, the occupancy rows are rebuilt from
// the post-update state: an ACTIVE booking re-inserts its cross
// product, any other status frees the grain entirely.  b must be the
// current row; the patched result is returned.
func (r *BookingRepo) Update(ctx context.Context, b *model.Booking, p BookingPatch) (*model.Booking, error) {
	next := *b
	if p.Date != nil {
		next.Date = *p.Date
	}
	if p.TableIDs != nil {
		next.TableIDs = p.TableIDs
	}
	if p.SlotIDs != nil {
		next.SlotIDs = p.SlotIDs
	}
	if p.GuestNumber != nil {
		next.GuestNumber = *p.GuestNumber
	}
	if p.Note != nil {
		next.Note = p.Note
	}
	if p.Status != nil {
		next.Status = *p.Status
		if *p.Status != model.BookingActive {
			next.IsActive = false
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx,
		"UPDATE bookings SET booking_date=?, guest_number=?, note=?, status=?, is_active=?, updated_at=CURRENT_TIMESTAMP WHERE id=?",
		next.Date.Format(model.DateOnly), next.GuestNumber, strArg(next.Note),
		int(next.Status), next.IsActive, next.ID); err != nil {
		return nil, err
	}
	if p.TableIDs != nil {
		if _, err := tx.ExecContext(ctx, "DELETE FROM booking_tables WHERE booking_id=?", next.ID); err != nil {
			return nil, err
		}
	}
	if p.SlotIDs != nil {
		if _, err := tx.ExecContext(ctx, "DELETE FROM booking_slots WHERE booking_id=?", next.ID); err != nil {
			return nil, err
		}
	}
	if p.TableIDs != nil || p.SlotIDs != nil {
		rel := next
		if p.TableIDs == nil {
			rel.TableIDs = nil // rows still present, keep them
		}
		if p.SlotIDs == nil {
			rel.SlotIDs = nil
		}
		if err := insertBookingRelations(ctx, tx, &rel); err != nil {
			return nil, err
		}
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM booking_occupancy WHERE booking_id=?", next.ID); err != nil {
		return nil, err
	}
	if next.Status == model.BookingActive {
		if err := insertOccupancy(ctx, tx, &next); err != nil {
			if isDuplicateKey(err) {
				return nil, domain.Conflict("BOOKING_CONFLICT",
					"a concurrent booking took one of the requested tables and slots")
			}
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return r.GetByID(ctx, next.ID)
}

// Cancel marks the booking cancelled, clears its active flag and frees
// its occupancy.  Cancelling an already finalized or inactive booking is
// a no-op; the current row is returned either way.
func (r *BookingRepo) Cancel(ctx context.Context, id uint64) (*model.Booking, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	res, err := tx.ExecContext(ctx,
		"UPDATE bookings SET status=?, is_active=0, updated_at=CURRENT_TIMESTAMP WHERE id=? AND status=? AND is_active=1",
		int(model.BookingCancelled), id, int(model.BookingActive))
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		if _, err := tx.ExecContext(ctx, "DELETE FROM booking_occupancy WHERE booking_id=?", id); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return r.GetByID(ctx, id)
}

// SortIDs sorts and de-duplicates an id slice in place and returns it.
// Conflict reports and join inserts use it for deterministic output.
func SortIDs(ids []uint64) []uint64 {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := ids[:0]
	var last uint64
	for i, id := range ids {
		if i == 0 || id != last {
			out = append(out, id)
		}
		last = id
	}
	return out
}
