package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/tablebook/cafe-reservation/internal/domain"
	"github.com/tablebook/cafe-reservation/internal/model"
)

// UserRepo encapsulates all database queries against the users table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userCols = "id, username, email, phone, tg_id, role, is_active, password_hash, created_at, updated_at"

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	var (
		u                model.User
		email, phone, tg sql.NullString
		role             int
	)
	if err := row.Scan(&u.ID, &u.Username, &email, &phone, &tg, &role,
		&u.IsActive, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Email = nullStr(email)
	u.Phone = nullStr(phone)
	u.TgID = nullStr(tg)
	u.Role = model.Role(role)
	return &u, nil
}

// Create inserts a new user and populates the generated ID and
// timestamps on the provided record.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, email, phone, tg_id, role, is_active, password_hash) VALUES (?,?,?,?,?,?,?)",
		u.Username, strArg(u.Email), strArg(u.Phone), strArg(u.TgID),
		int(u.Role), u.IsActive, u.PasswordHash)
	if err != nil {
		if isDuplicateKey(err) {
			return domain.Conflict("USER_EXISTS", "a user with this email or phone already exists")
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	created, err := r.GetByID(ctx, u.ID)
	if err != nil {
		return err
	}
	*u = *created
	return nil
}

// GetByID fetches a user by id, active or not.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE id=? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("USER_NOT_FOUND", "no user with id %d", id)
	}
	return u, err
}

// GetByEmail fetches a user by normalized email.  Used by login only.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE email=? LIMIT 1", email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("USER_NOT_FOUND", "no user with email %q", email)
	}
	return u, err
}

// List returns users ordered by id, optionally restricted to active ones.
func (r *UserRepo) List(ctx context.Context, onlyActive bool) ([]model.User, error) {
	q := "SELECT " + userCols + " FROM users"
	if onlyActive {
		q += " WHERE is_active=1"
	}
	q += " ORDER BY id"
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

// ListByIDs returns the users matching the given ids.  Missing ids are
// simply absent from the result; callers compare lengths to detect them.
func (r *UserRepo) ListByIDs(ctx context.Context, ids []uint64) ([]model.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userCols+" FROM users WHERE id IN ("+placeholders(len(ids))+")", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.User, 0, len(ids))
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

// UserPatch lists the updatable columns of a user.  Nil fields are left
// unchanged.
type UserPatch struct {
	Username     *string
	Email        *string
	Phone        *string
	TgID         *string
	Role         *model.Role
	IsActive     *bool
	PasswordHash *string
}

// Update applies a partial update and returns the fresh row.
func (r *UserRepo) Update(ctx context.Context, id uint64, p UserPatch) (*model.User, error) {
	set := make([]string, 0, 7)
	args := make([]any, 0, 8)
	if p.Username != nil {
		set, args = append(set, "username=?"), append(args, *p.Username)
	}
	if p.Email != nil {
		set, args = append(set, "email=?"), append(args, *p.Email)
	}
	if p.Phone != nil {
		set, args = append(set, "phone=?"), append(args, *p.Phone)
	}
	if p.TgID != nil {
		set, args = append(set, "tg_id=?"), append(args, *p.TgID)
	}
	if p.Role != nil {
		set, args = append(set, "role=?"), append(args, int(*p.Role))
	}
	if p.IsActive != nil {
		set, args = append(set, "is_active=?"), append(args, *p.IsActive)
	}
	if p.PasswordHash != nil {
		set, args = append(set, "password_hash=?"), append(args, *p.PasswordHash)
	}
	if len(set) > 0 {
		args = append(args, id)
		q := "UPDATE users SET " + strings.Join(set, ", ") + ", updated_at=CURRENT_TIMESTAMP WHERE id=?"
		if _, err := r.DB.ExecContext(ctx, q, args...); err != nil {
			if isDuplicateKey(err) {
				return nil, domain.Conflict("USER_EXISTS", "a user with this email or phone already exists")
			}
			return nil, err
		}
	}
	return r.GetByID(ctx, id)
}
