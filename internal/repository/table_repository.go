package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/tablebook/cafe-reservation/internal/domain"
	"github.com/tablebook/cafe-reservation/internal/model"
)

// TableRepo encapsulates queries against the tables table.
type TableRepo struct{ db *sql.DB }

func NewTableRepo(db *sql.DB) *TableRepo { return &TableRepo{db: db} }

const tableCols = "id, cafe_id, description, seat_number, is_active, created_at, updated_at"

func scanTable(row interface{ Scan(...any) error }) (*model.Table, error) {
	var t model.Table
	if err := row.Scan(&t.ID, &t.CafeID, &t.Description, &t.SeatNumber,
		&t.IsActive, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts a new table and populates ID and timestamps.
func (r *TableRepo) Create(ctx context.Context, t *model.Table) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO tables (cafe_id, description, seat_number, is_active) VALUES (?,?,?,1)",
		t.CafeID, t.Description, t.SeatNumber)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	created, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*t = *created
	return nil
}

// GetByID fetches a table by id regardless of its active flag.
func (r *TableRepo) GetByID(ctx context.Context, id uint64) (*model.Table, error) {
	t, err := scanTable(r.db.QueryRowContext(ctx,
		"SELECT "+tableCols+" FROM tables WHERE id=? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("TABLE_NOT_FOUND", "no table with id %d", id)
	}
	return t, err
}

// ListByCafe returns the tables of a cafe ordered by id.
func (r *TableRepo) ListByCafe(ctx context.Context, cafeID uint64, onlyActive bool) ([]model.Table, error) {
	q := "SELECT " + tableCols + " FROM tables WHERE cafe_id=?"
	if onlyActive {
		q += " AND is_active=1"
	}
	q += " ORDER BY id"
	rows, err := r.db.QueryContext(ctx, q, cafeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Table, 0)
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// ListByIDs returns the tables of one cafe matching the given ids.
// Ids that do not exist or belong to another cafe are absent from the
// result; the existence validator compares against the request.
func (r *TableRepo) ListByIDs(ctx context.Context, cafeID uint64, ids []uint64) ([]model.Table, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	args := make([]any, 0, len(ids)+1)
	args = append(args, cafeID)
	for _, id := range ids {
		args = append(args, id)
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+tableCols+" FROM tables WHERE cafe_id=? AND id IN ("+placeholders(len(ids))+")", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Table, 0, len(ids))
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// TablePatch lists the updatable columns of a table.  CafeID is fixed
// at creation and deliberately absent.
type TablePatch struct {
	Description *string
	SeatNumber  *uint32
	IsActive    *bool
}

// Update applies a partial update and returns the fresh row.
func (r *TableRepo) Update(ctx context.Context, id uint64, p TablePatch) (*model.Table, error) {
	set := make([]string, 0, 3)
	args := make([]any, 0, 4)
	if p.Description != nil {
		set, args = append(set, "description=?"), append(args, *p.Description)
	}
	if p.SeatNumber != nil {
		set, args = append(set, "seat_number=?"), append(args, *p.SeatNumber)
	}
	if p.IsActive != nil {
		set, args = append(set, "is_active=?"), append(args, *p.IsActive)
	}
	if len(set) > 0 {
		args = append(args, id)
		q := "UPDATE tables SET " + strings.Join(set, ", ") + ", updated_at=CURRENT_TIMESTAMP WHERE id=?"
		if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
			return nil, err
		}
	}
	return r.GetByID(ctx, id)
}

// SoftDelete clears the active flag; a no-op when already inactive.
func (r *TableRepo) SoftDelete(ctx context.Context, id uint64) (*model.Table, error) {
	if _, err := r.db.ExecContext(ctx,
		"UPDATE tables SET is_active=0, updated_at=CURRENT_TIMESTAMP WHERE id=? AND is_active=1", id); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}
