package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/tablebook/cafe-reservation/internal/domain"
	"github.com/tablebook/cafe-reservation/internal/model"
)

// PromotionRepo encapsulates queries against the promotions table and
// the promotion_cafes join table.
type PromotionRepo struct{ db *sql.DB }

func NewPromotionRepo(db *sql.DB) *PromotionRepo { return &PromotionRepo{db: db} }

const promoCols = "id, description, is_active, created_at, updated_at"

func scanPromotion(row interface{ Scan(...any) error }) (*model.Promotion, error) {
	var p model.Promotion
	if err := row.Scan(&p.ID, &p.Description, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a promotion with its cafe links in one transaction.
func (r *PromotionRepo) Create(ctx context.Context, p *model.Promotion) error {
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
		"INSERT INTO promotions (description, is_active) VALUES (?,1)", p.Description)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	if err := insertPromotionCafes(ctx, tx, p.ID, p.CafeIDs); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	created, err := r.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	*p = *created
	return nil
}

func insertPromotionCafes(ctx context.Context, tx *sql.Tx, promoID uint64, cafeIDs []uint64) error {
	if len(cafeIDs) == 0 {
		return nil
	}
	q := "INSERT INTO promotion_cafes (promotion_id, cafe_id) VALUES "
	args := make([]any, 0, len(cafeIDs)*2)
	for i, cid := range cafeIDs {
		if i > 0 {
			q += ","
		}
		q += "(?,?)"
		args = append(args, promoID, cid)
	}
	_, err := tx.ExecContext(ctx, q, args...)
	return err
}

// GetByID fetches a promotion with its cafe id set.
func (r *PromotionRepo) GetByID(ctx context.Context, id uint64) (*model.Promotion, error) {
	p, err := scanPromotion(r.db.QueryRowContext(ctx,
		"SELECT "+promoCols+" FROM promotions WHERE id=? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("PROMOTION_NOT_FOUND", "no promotion with id %d", id)
	}
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT cafe_id FROM promotion_cafes WHERE promotion_id=? ORDER BY cafe_id", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	p.CafeIDs = make([]uint64, 0, 2)
	for rows.Next() {
		var cid uint64
		if err := rows.Scan(&cid); err != nil {
			return nil, err
		}
		p.CafeIDs = append(p.CafeIDs, cid)
	}
	return p, rows.Err()
}

// List returns promotions ordered by id, optionally active-only.  Cafe
// id sets are loaded per promotion.
func (r *PromotionRepo) List(ctx context.Context, onlyActive bool) ([]model.Promotion, error) {
	q := "SELECT " + promoCols + " FROM promotions"
	if onlyActive {
		q += " WHERE is_active=1"
	}
	q += " ORDER BY id"
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Promotion, 0)
	for rows.Next() {
		p, err := scanPromotion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		full, err := r.GetByID(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i] = *full
	}
	return out, nil
}

// PromotionPatch lists the updatable fields of a promotion.  A non-nil
// CafeIDs replaces the full cafe set.
type PromotionPatch struct {
	Description *string
	IsActive    *bool
	CafeIDs     []uint64
}

// Update applies a partial update and returns the fresh row.
func (r *PromotionRepo) Update(ctx context.Context, id uint64, p PromotionPatch) (*model.Promotion, error) {
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
	set := make([]string, 0, 2)
	args := make([]any, 0, 3)
	if p.Description != nil {
		set, args = append(set, "description=?"), append(args, *p.Description)
	}
	if p.IsActive != nil {
		set, args = append(set, "is_active=?"), append(args, *p.IsActive)
	}
	if len(set) > 0 {
		args = append(args, id)
		q := "UPDATE promotions SET " + strings.Join(set, ", ") + ", updated_at=CURRENT_TIMESTAMP WHERE id=?"
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return nil, err
		}
	}
	if p.CafeIDs != nil {
		if _, err := tx.ExecContext(ctx, "DELETE FROM promotion_cafes WHERE promotion_id=?", id); err != nil {
			return nil, err
		}
		if err := insertPromotionCafes(ctx, tx, id, p.CafeIDs); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return r.GetByID(ctx, id)
}

// SoftDelete clears the active flag; a no-op when already inactive.
func (r *PromotionRepo) SoftDelete(ctx context.Context, id uint64) (*model.Promotion, error) {
	if _, err := r.db.ExecContext(ctx,
		"UPDATE promotions SET is_active=0, updated_at=CURRENT_TIMESTAMP WHERE id=? AND is_active=1", id); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}
