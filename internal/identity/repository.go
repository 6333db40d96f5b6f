package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tradepost-shop/tradepost/internal/platform/db"
	"github.com/tradepost-shop/tradepost/internal/shared"
)

// Repository defines persistence operations for the identity store.
//
// Implementations must provide atomicity for WithTx: every write issued
// through the repository passed to fn commits together or not at all.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error

	FindUserByID(ctx context.Context, id int64) (*User, error)
	FindUserByUsername(ctx context.Context, username string) (*User, error)
	FindUserByEmail(ctx context.Context, email string) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)
	CreateUser(ctx context.Context, user User) (int64, error)

	FindRoleByID(ctx context.Context, id int64) (*Role, error)
	EnsureRole(ctx context.Context, name string) (*Role, error)
	EnsureGroup(ctx context.Context, name string) (*Group, error)
	EnsurePermission(ctx context.Context, name string) (*Permission, error)
	EnsurePermissionGroup(ctx context.Context, groupID, permissionID int64) error
	GroupPermissions(ctx context.Context, groupID int64) ([]Permission, error)
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

// WithTx runs fn inside a ReadCommitted transaction. The ensure-or-create
// statements re-select after ON CONFLICT DO NOTHING, and that re-select must
// see seed rows committed by a concurrent provisioning call; a snapshot-bound
// isolation level would hide the winner's row from the loser.
func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, pgx.ReadCommitted, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

const userColumns = `id, username, email, password_hash, role_id, group_id, created_at, updated_at`

func (r *repository) findUser(ctx context.Context, query string, args ...interface{}) (*User, error) {
	var user User
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.RoleID, &user.GroupID, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *repository) FindUserByID(ctx context.Context, id int64) (*User, error) {
	return r.findUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *repository) FindUserByUsername(ctx context.Context, username string) (*User, error) {
	return r.findUser(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (r *repository) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	return r.findUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *repository) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []User
	for rows.Next() {
		var user User
		if err := rows.Scan(
			&user.ID, &user.Username, &user.Email, &user.PasswordHash,
			&user.RoleID, &user.GroupID, &user.CreatedAt, &user.UpdatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *repository) CreateUser(ctx context.Context, user User) (int64, error) {
	now := time.Now().UTC()
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO users (username, email, password_hash, role_id, group_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING id`,
		user.Username, user.Email, user.PasswordHash, user.RoleID, user.GroupID, now,
	).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return 0, shared.ErrAlreadyExists
		}
		return 0, err
	}
	return id, nil
}

func (r *repository) FindRoleByID(ctx context.Context, id int64) (*Role, error) {
	var role Role
	err := r.db.QueryRow(ctx, `SELECT id, name FROM roles WHERE id = $1`, id).Scan(&role.ID, &role.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &role, nil
}

// EnsureRole creates the named role if absent and returns the canonical row.
// A concurrent insert losing the race falls through to the re-select, so the
// winner's row is reused instead of failing the caller.
func (r *repository) EnsureRole(ctx context.Context, name string) (*Role, error) {
	if _, err := r.db.Exec(ctx, `INSERT INTO roles (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, name); err != nil {
		return nil, fmt.Errorf("ensure role: %w", err)
	}
	var role Role
	if err := r.db.QueryRow(ctx, `SELECT id, name FROM roles WHERE name = $1`, name).Scan(&role.ID, &role.Name); err != nil {
		return nil, fmt.Errorf("ensure role: %w", err)
	}
	return &role, nil
}

func (r *repository) EnsureGroup(ctx context.Context, name string) (*Group, error) {
	if _, err := r.db.Exec(ctx, `
		INSERT INTO groups (name, created_at) VALUES ($1, $2)
		ON CONFLICT (name) DO NOTHING`, name, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("ensure group: %w", err)
	}
	var group Group
	if err := r.db.QueryRow(ctx, `
		SELECT id, name, description, created_at FROM groups WHERE name = $1`, name,
	).Scan(&group.ID, &group.Name, &group.Description, &group.CreatedAt); err != nil {
		return nil, fmt.Errorf("ensure group: %w", err)
	}
	return &group, nil
}

func (r *repository) EnsurePermission(ctx context.Context, name string) (*Permission, error) {
	if _, err := r.db.Exec(ctx, `
		INSERT INTO permissions (name, created_at) VALUES ($1, $2)
		ON CONFLICT (name) DO NOTHING`, name, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("ensure permission: %w", err)
	}
	var perm Permission
	if err := r.db.QueryRow(ctx, `
		SELECT id, name, description, created_at FROM permissions WHERE name = $1`, name,
	).Scan(&perm.ID, &perm.Name, &perm.Description, &perm.CreatedAt); err != nil {
		return nil, fmt.Errorf("ensure permission: %w", err)
	}
	return &perm, nil
}

func (r *repository) EnsurePermissionGroup(ctx context.Context, groupID, permissionID int64) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO permission_groups (group_id, permission_id) VALUES ($1, $2)
		ON CONFLICT (group_id, permission_id) DO NOTHING`, groupID, permissionID)
	if err != nil {
		return fmt.Errorf("ensure permission group: %w", err)
	}
	return nil
}

func (r *repository) GroupPermissions(ctx context.Context, groupID int64) ([]Permission, error) {
	rows, err := r.db.Query(ctx, `
		SELECT p.id, p.name, p.description, p.created_at
		FROM permissions p
		JOIN permission_groups pg ON pg.permission_id = p.id
		WHERE pg.group_id = $1
		ORDER BY p.id`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var perms []Permission
	for rows.Next() {
		var perm Permission
		if err := rows.Scan(&perm.ID, &perm.Name, &perm.Description, &perm.CreatedAt); err != nil {
			return nil, err
		}
		perms = append(perms, perm)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return perms, nil
}

var _ Repository = (*repository)(nil)
