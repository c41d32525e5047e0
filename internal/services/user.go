package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tjgf2022/logkeeper-roles-hub/internal/policy"
	"github.com/tjgf2022/logkeeper-roles-hub/types"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	List(ctx context.Context) ([]types.User, error)
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	GetByUsername(ctx context.Context, username string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	Update(ctx context.Context, user types.User) (types.User, error)
	UpdateRole(ctx context.Context, id int, role types.Role) error
	UpdateLastLogin(ctx context.Context, id int, at time.Time) error
	Delete(ctx context.Context, id int) error
}

// UserService encapsulates user-administration use-cases. Every
// operation takes the viewer explicitly and consults the policy layer;
// a disallowed action reports ErrPermissionDenied, it never panics.
type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo}
}

// List returns the accounts the viewer may see, filtered by the
// criteria. Order follows the store's insertion order.
func (s *UserService) List(ctx context.Context, viewer types.Viewer, criteria policy.UserCriteria) ([]types.User, error) {
	if !policy.Allows(viewer.Role, policy.CapViewUsers) {
		return nil, ErrPermissionDenied
	}
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return policy.VisibleUsers(users, viewer, criteria), nil
}

// GetByID loads a single account without a permission check; it backs
// the auth middleware's viewer resolution.
func (s *UserService) GetByID(ctx context.Context, id int) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

// UserUpdate is the mutable profile subset of an account. Role changes
// go through AssignRole instead.
type UserUpdate struct {
	Name       string
	Email      string
	Department string
	Status     types.UserStatus
}

// Update edits a target account's profile. Admins may edit non-super
// accounts; supers may edit anyone.
func (s *UserService) Update(ctx context.Context, viewer types.Viewer, id int, update UserUpdate) (types.User, error) {
	target, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return types.User{}, err
	}
	if !policy.CanManageUser(viewer, target) {
		return types.User{}, ErrPermissionDenied
	}

	if name := strings.TrimSpace(update.Name); name != "" {
		target.Name = name
	}
	if email := strings.TrimSpace(update.Email); email != "" {
		target.Email = email
	}
	if dept := strings.TrimSpace(update.Department); dept != "" {
		target.Department = dept
	}
	if update.Status != "" {
		if update.Status != types.UserStatusActive && update.Status != types.UserStatusInactive {
			return types.User{}, fmt.Errorf("%w: unknown status %q", ErrValidation, update.Status)
		}
		target.Status = update.Status
	}

	return s.repo.Update(ctx, target)
}

// AssignRole changes a target account's role. Only supers assign
// roles, and the primordial account can never be reassigned.
func (s *UserService) AssignRole(ctx context.Context, viewer types.Viewer, id int, role types.Role) (types.User, error) {
	if !role.Valid() {
		return types.User{}, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}

	target, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return types.User{}, err
	}
	if target.Protected {
		return types.User{}, ErrProtectedUser
	}
	if !policy.CanAssignRole(viewer, target) {
		return types.User{}, ErrPermissionDenied
	}

	if err := s.repo.UpdateRole(ctx, id, role); err != nil {
		return types.User{}, err
	}
	target.Role = role
	return target, nil
}

// Delete removes a target account. Only supers delete accounts, and
// the primordial account can never be deleted.
func (s *UserService) Delete(ctx context.Context, viewer types.Viewer, id int) error {
	target, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if target.Protected {
		return ErrProtectedUser
	}
	if !policy.CanDeleteUser(viewer, target) {
		return ErrPermissionDenied
	}
	return s.repo.Delete(ctx, id)
}

// NewAccount describes an account created from the users view.
type NewAccount struct {
	Username   string
	Email      string
	Name       string
	Password   string
	Role       types.Role
	Department string
}

// Create adds an account from the users view. Admins may create
// non-super accounts; creating a super requires a super viewer.
func (s *UserService) Create(ctx context.Context, viewer types.Viewer, account NewAccount) (types.User, error) {
	if !policy.Allows(viewer.Role, policy.CapEditUsers) {
		return types.User{}, ErrPermissionDenied
	}

	role := account.Role
	if role == "" {
		role = types.RoleUser
	}
	if !role.Valid() {
		return types.User{}, fmt.Errorf("%w: unknown role %q", ErrValidation, account.Role)
	}
	if role == types.RoleSuper && !policy.Allows(viewer.Role, policy.CapManageSupers) {
		return types.User{}, ErrPermissionDenied
	}

	username := strings.TrimSpace(account.Username)
	email := strings.TrimSpace(account.Email)
	if username == "" || email == "" || account.Password == "" {
		return types.User{}, fmt.Errorf("%w: username, email and password are required", ErrValidation)
	}

	name := strings.TrimSpace(account.Name)
	if name == "" {
		name = username
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(account.Password), bcrypt.DefaultCost)
	if err != nil {
		return types.User{}, err
	}

	return s.repo.Create(ctx, types.User{
		Username:     username,
		Email:        email,
		Name:         name,
		Role:         role,
		Status:       types.UserStatusActive,
		Department:   strings.TrimSpace(account.Department),
		PasswordHash: string(hashed),
	})
}
