package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/tradepost-shop/tradepost/internal/shared"
)

// Service wraps account provisioning and authentication rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ProvisionAccount creates a new account of the given kind together with its
// supporting role, group and permission rows. Seed rows are created lazily on
// first need; all writes commit in a single transaction, so a failure at any
// step leaves no partial state behind.
func (s *Service) ProvisionAccount(ctx context.Context, kind AccountKind, username, email, password string) (*User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown account kind", shared.ErrInvalidInput)
	}
	if username == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", shared.ErrInvalidInput)
	}

	if err := s.checkUnique(ctx, username, email); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		role, err := repo.EnsureRole(ctx, kind.String())
		if err != nil {
			return err
		}
		group, err := repo.EnsureGroup(ctx, kind.String())
		if err != nil {
			return err
		}
		user.RoleID = role.ID
		user.GroupID = group.ID

		for _, name := range kind.Permissions() {
			perm, err := repo.EnsurePermission(ctx, string(name))
			if err != nil {
				return err
			}
			if err := repo.EnsurePermissionGroup(ctx, group.ID, perm.ID); err != nil {
				return err
			}
		}

		id, err := repo.CreateUser(ctx, user)
		if err != nil {
			return err
		}
		user.ID = id

		created, err := repo.FindUserByID(ctx, id)
		if err != nil {
			return err
		}
		user = *created
		return nil
	})
	if err != nil {
		// The uniqueness constraint is the final arbiter under concurrency:
		// a duplicate user insert losing the race surfaces as AlreadyExists,
		// everything else as a provisioning failure.
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, shared.ErrAlreadyExists
		}
		return nil, fmt.Errorf("%w: %v", shared.ErrProvisioningFailed, err)
	}

	return &user, nil
}

func (s *Service) checkUnique(ctx context.Context, username, email string) error {
	if _, err := s.repo.FindUserByUsername(ctx, username); err == nil {
		return shared.ErrAlreadyExists
	} else if !errors.Is(err, shared.ErrNotFound) {
		return fmt.Errorf("check username: %w", err)
	}
	if _, err := s.repo.FindUserByEmail(ctx, email); err == nil {
		return shared.ErrAlreadyExists
	} else if !errors.Is(err, shared.ErrNotFound) {
		return fmt.Errorf("check email: %w", err)
	}
	return nil
}

// Authenticate validates email/password credentials. A missing account and a
// wrong password both return ErrAuthenticationFailed so the response never
// reveals which field was wrong.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, shared.ErrAuthenticationFailed
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrAuthenticationFailed
	}
	return user, nil
}

// GetUser fetches an account by id.
func (s *Service) GetUser(ctx context.Context, id int64) (*User, error) {
	return s.repo.FindUserByID(ctx, id)
}

// UserRole resolves the role row for a user.
func (s *Service) UserRole(ctx context.Context, user *User) (*Role, error) {
	return s.repo.FindRoleByID(ctx, user.RoleID)
}

// ListUsers returns all registered accounts.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.ListUsers(ctx)
}
