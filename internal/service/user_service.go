package service

import (
	"context"

	"github.com/tablebook/cafe-reservation/internal/auth"
	"github.com/tablebook/cafe-reservation/internal/domain"
	"github.com/tablebook/cafe-reservation/internal/model"
	"github.com/tablebook/cafe-reservation/internal/repository"
	"github.com/tablebook/cafe-reservation/internal/utils"
)

// UserService manages accounts: registration, profile updates and the
// role administration rules.
type UserService struct {
	users      UserStore
	bcryptCost int
}

func NewUserService(users UserStore, bcryptCost int) *UserService {
	return &UserService{users: users, bcryptCost: bcryptCost}
}

// RegisterInput carries a self-registration request.  At least one of
// Email and Phone must be set.
type RegisterInput struct {
	Username string
	Email    *string
	Phone    *string
	TgID     *string
	Password string
}

// Register creates a plain active user with a bcrypt password hash.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	if in.Username == "" {
		return nil, domain.Validation("INVALID_USERNAME", "username is required")
	}
	if len(in.Password) < 8 {
		return nil, domain.Validation("WEAK_PASSWORD", "password must be at least 8 characters")
	}
	u := &model.User{
		Username: in.Username,
		Email:    normalizeContact(in.Email),
		Phone:    normalizeContact(in.Phone),
		TgID:     normalizeContact(in.TgID),
		Role:     model.RoleUser,
		IsActive: true,
	}
	if !u.HasContact() {
		return nil, domain.Validation("NO_CONTACT", "email or phone is required")
	}
	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = hash
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Get returns a user record.  Plain users see only themselves; other
// accounts are hidden, not forbidden.
func (s *UserService) Get(ctx context.Context, sub auth.Subject, id uint64) (*model.User, error) {
	if id != sub.ID && !sub.Role.AtLeast(model.RoleManager) {
		return nil, domain.NotFound("USER_NOT_FOUND", "no user with id %d", id)
	}
	return s.users.GetByID(ctx, id)
}

// List returns users for managers and admins; show_all includes
// deactivated accounts.
func (s *UserService) List(ctx context.Context, sub auth.Subject, showAll bool) ([]model.User, error) {
	if !sub.Role.AtLeast(model.RoleManager) {
		return nil, domain.Forbidden("NOT_MANAGER", "only managers and admins can list users")
	}
	return s.users.List(ctx, !auth.CanSeeInactive(sub, showAll))
}

// UpdateProfileInput is the self-service slice of a user update: no
// role, no active flag.
type UpdateProfileInput struct {
	Username *string
	Email    *string
	Phone    *string
	TgID     *string
	Password *string
}

// UpdateProfile lets a user edit their own account.
func (s *UserService) UpdateProfile(ctx context.Context, sub auth.Subject, in UpdateProfileInput) (*model.User, error) {
	if err := auth.RequireActive(sub); err != nil {
		return nil, err
	}
	return s.applyUpdate(ctx, sub.ID, UpdateUserInput{
		Username: in.Username,
		Email:    in.Email,
		Phone:    in.Phone,
		TgID:     in.TgID,
		Password: in.Password,
	})
}

// UpdateUserInput is the administrative user update.
type UpdateUserInput struct {
	Username *string
	Email    *string
	Phone    *string
	TgID     *string
	Password *string
	Role     *model.Role
	IsActive *bool
}

// Update modifies a user by id.  Role changes run through the role
// policy: nobody edits their own role, and managers can neither touch
// admins nor mint them.  Activation changes are admin only.
func (s *UserService) Update(ctx context.Context, sub auth.Subject, id uint64, in UpdateUserInput) (*model.User, error) {
	if err := auth.RequireActive(sub); err != nil {
		return nil, err
	}
	if id != sub.ID && !sub.Role.AtLeast(model.RoleManager) {
		return nil, domain.NotFound("USER_NOT_FOUND", "no user with id %d", id)
	}
	target, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Role != nil {
		if !in.Role.Valid() {
			return nil, domain.Validation("INVALID_ROLE", "unknown role %d", int(*in.Role))
		}
		if err := auth.CheckRoleChange(sub, *target, *in.Role); err != nil {
			return nil, err
		}
	}
	if in.IsActive != nil && !sub.Role.AtLeast(model.RoleAdmin) {
		return nil, domain.Forbidden("NOT_ADMIN", "only admins can activate or deactivate accounts")
	}
	return s.applyUpdate(ctx, id, in)
}

// Deactivate soft-deletes an account.  Admin only; idempotent.
func (s *UserService) Deactivate(ctx context.Context, sub auth.Subject, id uint64) (*model.User, error) {
	if !sub.Role.AtLeast(model.RoleAdmin) {
		return nil, domain.Forbidden("NOT_ADMIN", "only admins can deactivate accounts")
	}
	if id == sub.ID {
		return nil, domain.Forbidden("OWN_DEACTIVATE", "deactivating your own account is forbidden")
	}
	inactive := false
	return s.users.Update(ctx, id, repository.UserPatch{IsActive: &inactive})
}

// applyUpdate validates the shared field rules and writes the patch.
func (s *UserService) applyUpdate(ctx context.Context, id uint64, in UpdateUserInput) (*model.User, error) {
	target, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Username != nil && *in.Username == "" {
		return nil, domain.Validation("INVALID_USERNAME", "username cannot be empty")
	}
	// The contact invariant must survive the patch: clearing one channel
	// is fine only while the other remains set.
	after := *target
	if in.Email != nil {
		after.Email = normalizeContact(in.Email)
	}
	if in.Phone != nil {
		after.Phone = normalizeContact(in.Phone)
	}
	if !after.HasContact() {
		return nil, domain.Validation("NO_CONTACT", "email or phone is required")
	}
	p := repository.UserPatch{
		Username: in.Username,
		Email:    in.Email,
		Phone:    in.Phone,
		TgID:     in.TgID,
		Role:     in.Role,
		IsActive: in.IsActive,
	}
	if in.Password != nil {
		if len(*in.Password) < 8 {
			return nil, domain.Validation("WEAK_PASSWORD", "password must be at least 8 characters")
		}
		hash, err := utils.HashPassword(*in.Password, s.bcryptCost)
		if err != nil {
			return nil, err
		}
		p.PasswordHash = &hash
	}
	return s.users.Update(ctx, id, p)
}

// normalizeContact maps empty strings to nil so the invariant check and
// the database both see "unset".
func normalizeContact(v *string) *string {
	if v == nil || *v == "" {
		return nil
	}
	return v
}
