package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/tablebook/cafe-reservation/internal/domain"
	"github.com/tablebook/cafe-reservation/internal/model"
)

// SlotRepo encapsulates queries against the slots table.  Slot times
// are stored as zero-padded "HH:MM" strings (CHAR(5)).
type SlotRepo struct{ db *sql.DB }

func NewSlotRepo(db *sql.DB) *SlotRepo { return &SlotRepo{db: db} }

const slotCols = "id, cafe_id, start_time, end_time, description, is_active, created_at, updated_at"

func scanSlot(row interface{ Scan(...any) error }) (*model.Slot, error) {
	var s model.Slot
	if err := row.Scan(&s.ID, &s.CafeID, &s.StartTime, &s.EndTime,
		&s.Description, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserts a new slot and populates ID and timestamps.
func (r *SlotRepo) Create(ctx context.Context, s *model.Slot) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO slots (cafe_id, start_time, end_time, description, is_active) VALUES (?,?,?,?,1)",
		s.CafeID, s.StartTime, s.EndTime, s.Description)
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
	*s = *created
	return nil
}

// GetByID fetches a slot by id regardless of its active flag.
func (r *SlotRepo) GetByID(ctx context.Context, id uint64) (*model.Slot, error) {
	s, err := scanSlot(r.db.QueryRowContext(ctx,
		"SELECT "+slotCols+" FROM slots WHERE id=? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("SLOT_NOT_FOUND", "no slot with id %d", id)
	}
	return s, err
}

// ListByCafe returns the slots of a cafe ordered by start time.  The
// overlap validator always loads the full slot list of the cafe (active
// and inactive) and filters on the active flag itself.
func (r *SlotRepo) ListByCafe(ctx context.Context, cafeID uint64, onlyActive bool) ([]model.Slot, error) {
	q := "SELECT " + slotCols + " FROM slots WHERE cafe_id=?"
	if onlyActive {
		q += " AND is_active=1"
	}
	q += " ORDER BY start_time, id"
	rows, err := r.db.QueryContext(ctx, q, cafeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Slot, 0)
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// ListByIDs returns the slots of one cafe matching the given ids, for
// existence validation on booking requests.
func (r *SlotRepo) ListByIDs(ctx context.Context, cafeID uint64, ids []uint64) ([]model.Slot, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	args := make([]any, 0, len(ids)+1)
	args = append(args, cafeID)
	for _, id := range ids {
		args = append(args, id)
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+slotCols+" FROM slots WHERE cafe_id=? AND id IN ("+placeholders(len(ids))+")", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Slot, 0, len(ids))
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// SlotPatch lists the updatable columns of a slot.
type SlotPatch struct {
	StartTime   *string
	EndTime     *string
	Description *string
	IsActive    *bool
}

// Update applies a partial update and returns the fresh row.
func (r *SlotRepo) Update(ctx context.Context, id uint64, p SlotPatch) (*model.Slot, error) {
	set := make([]string, 0, 4)
	args := make([]any, 0, 5)
	if p.StartTime != nil {
		set, args = append(set, "start_time=?"), append(args, *p.StartTime)
	}
	if p.EndTime != nil {
		set, args = append(set, "end_time=?"), append(args, *p.EndTime)
	}
	if p.Description != nil {
		set, args = append(set, "description=?"), append(args, *p.Description)
	}
	if p.IsActive != nil {
		set, args = append(set, "is_active=?"), append(args, *p.IsActive)
	}
	if len(set) > 0 {
		args = append(args, id)
		q := "UPDATE slots SET " + strings.Join(set, ", ") + ", updated_at=CURRENT_TIMESTAMP WHERE id=?"
		if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
			return nil, err
		}
	}
	return r.GetByID(ctx, id)
}

// Deactivate clears the active flag; a no-op when already inactive.
func (r *SlotRepo) Deactivate(ctx context.Context, id uint64) (*model.Slot, error) {
	if _, err := r.db.ExecContext(ctx,
		"UPDATE slots SET is_active=0, updated_at=CURRENT_TIMESTAMP WHERE id=? AND is_active=1", id); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}
