package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/tablebook/cafe-reservation/internal/domain"
	"github.com/tablebook/cafe-reservation/internal/model"
)

// CafeRepo encapsulates queries against the cafes table and the
// cafe_managers join table.  Manager assignment is modelled purely as
// rows in the join table; the authorization layer consumes it as an
// id set via ManagerIDs.
type CafeRepo struct{ db *sql.DB }

func NewCafeRepo(db *sql.DB) *CafeRepo { return &CafeRepo{db: db} }

const cafeCols = "id, name, address, is_active, created_at, updated_at"

func scanCafe(row interface{ Scan(...any) error }) (*model.Cafe, error) {
	var c model.Cafe
	if err := row.Scan(&c.ID, &c.Name, &c.Address, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a cafe together with its manager assignments in one
// transaction.  On success the generated ID and timestamps are
// populated on the provided record.
func (r *CafeRepo) Create(ctx context.Context, c *model.Cafe, managerIDs []uint64) error {
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
		"INSERT INTO cafes (name, address, is_active) VALUES (?,?,1)", c.Name, c.Address)
	if err != nil {
		if isDuplicateKey(err) {
			return domain.Conflict("CAFE_DUPLICATE", "a cafe with this name and address already exists")
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	if err := insertManagers(ctx, tx, c.ID, managerIDs); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	created, err := r.GetByID(ctx, c.ID)
	if err != nil {
		return err
	}
	*c = *created
	return nil
}

func insertManagers(ctx context.Context, tx *sql.Tx, cafeID uint64, managerIDs []uint64) error {
	if len(managerIDs) == 0 {
		return nil
	}
	q := "INSERT INTO cafe_managers (cafe_id, user_id) VALUES "
	args := make([]any, 0, len(managerIDs)*2)
	for i, uid := range managerIDs {
		if i > 0 {
			q += ","
		}
		q += "(?,?)"
		args = append(args, cafeID, uid)
	}
	_, err := tx.ExecContext(ctx, q, args...)
	return err
}

// GetByID fetches a cafe by id regardless of its active flag.
func (r *CafeRepo) GetByID(ctx context.Context, id uint64) (*model.Cafe, error) {
	c, err := scanCafe(r.db.QueryRowContext(ctx,
		"SELECT "+cafeCols+" FROM cafes WHERE id=? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("CAFE_NOT_FOUND", "no cafe with id %d", id)
	}
	return c, err
}

// GetByNameAndAddress returns the cafe with the given name and address,
// or nil when none exists.  Used for the duplicate check on create.
func (r *CafeRepo) GetByNameAndAddress(ctx context.Context, name, address string) (*model.Cafe, error) {
	c, err := scanCafe(r.db.QueryRowContext(ctx,
		"SELECT "+cafeCols+" FROM cafes WHERE name=? AND address=? LIMIT 1", name, address))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

// List returns cafes ordered by id, optionally restricted to active ones.
func (r *CafeRepo) List(ctx context.Context, onlyActive bool) ([]model.Cafe, error) {
	q := "SELECT " + cafeCols + " FROM cafes"
	if onlyActive {
		q += " WHERE is_active=1"
	}
	q += " ORDER BY id"
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Cafe, 0)
	for rows.Next() {
		c, err := scanCafe(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// CafePatch lists the updatable columns of a cafe.
type CafePatch struct {
	Name     *string
	Address  *string
	IsActive *bool
}

// Update applies a partial update and returns the fresh row.
func (r *CafeRepo) Update(ctx context.Context, id uint64, p CafePatch) (*model.Cafe, error) {
	set := make([]string, 0, 3)
	args := make([]any, 0, 4)
	if p.Name != nil {
		set, args = append(set, "name=?"), append(args, *p.Name)
	}
	if p.Address != nil {
		set, args = append(set, "address=?"), append(args, *p.Address)
	}
	if p.IsActive != nil {
		set, args = append(set, "is_active=?"), append(args, *p.IsActive)
	}
	if len(set) > 0 {
		args = append(args, id)
		q := "UPDATE cafes SET " + strings.Join(set, ", ") + ", updated_at=CURRENT_TIMESTAMP WHERE id=?"
		if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
			if isDuplicateKey(err) {
				return nil, domain.Conflict("CAFE_DUPLICATE", "a cafe with this name and address already exists")
			}
			return nil, err
		}
	}
	return r.GetByID(ctx, id)
}

// SoftDelete clears the active flag.  Deactivating an already inactive
// cafe is a no-op; the current row is returned either way.
func (r *CafeRepo) SoftDelete(ctx context.Context, id uint64) (*model.Cafe, error) {
	if _, err := r.db.ExecContext(ctx,
		"UPDATE cafes SET is_active=0, updated_at=CURRENT_TIMESTAMP WHERE id=? AND is_active=1", id); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// ManagerIDs returns the set of user ids managing the cafe.
func (r *CafeRepo) ManagerIDs(ctx context.Context, cafeID uint64) (map[uint64]struct{}, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT user_id FROM cafe_managers WHERE cafe_id=?", cafeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[uint64]struct{})
	for rows.Next() {
		var uid uint64
		if err := rows.Scan(&uid); err != nil {
			return nil, err
		}
		out[uid] = struct{}{}
	}
	return out, rows.Err()
}

// ReplaceManagers swaps the full manager set of a cafe in one
// transaction.
func (r *CafeRepo) ReplaceManagers(ctx context.Context, cafeID uint64, managerIDs []uint64) error {
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
	if _, err := tx.ExecContext(ctx, "DELETE FROM cafe_managers WHERE cafe_id=?", cafeID); err != nil {
		return err
	}
	if err := insertManagers(ctx, tx, cafeID, managerIDs); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// ManagedCafeIDs returns the ids of the cafes managed by the user.
func (r *CafeRepo) ManagedCafeIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT cafe_id FROM cafe_managers WHERE user_id=? ORDER BY cafe_id", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]uint64, 0)
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
