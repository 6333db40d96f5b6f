package identity_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/tradepost-shop/tradepost/internal/identity"
	"github.com/tradepost-shop/tradepost/internal/shared"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type link struct {
	groupID      int64
	permissionID int64
}

// memStore holds identity rows with the same uniqueness constraints as the
// real schema.
type memStore struct {
	nextID int64

	roles  map[string]identity.Role
	groups map[string]identity.Group
	perms  map[string]identity.Permission
	links  map[link]bool
	users  map[int64]identity.User
}

func newMemStore() *memStore {
	return &memStore{
		roles:  map[string]identity.Role{},
		groups: map[string]identity.Group{},
		perms:  map[string]identity.Permission{},
		links:  map[link]bool{},
		users:  map[int64]identity.User{},
	}
}

func (s *memStore) clone() *memStore {
	out := newMemStore()
	out.nextID = s.nextID
	for k, v := range s.roles {
		out.roles[k] = v
	}
	for k, v := range s.groups {
		out.groups[k] = v
	}
	for k, v := range s.perms {
		out.perms[k] = v
	}
	for k, v := range s.links {
		out.links[k] = v
	}
	for k, v := range s.users {
		out.users[k] = v
	}
	return out
}

// fakeRepo is an in-memory identity.Repository. WithTx snapshots the store
// and discards the snapshot when fn fails, mirroring transactional rollback.
type fakeRepo struct {
	mu    sync.Mutex
	store *memStore

	failCreateUser       error
	failEnsurePermission error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{store: newMemStore()}
}

func (r *fakeRepo) WithTx(ctx context.Context, fn func(context.Context, identity.Repository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	txRepo := &fakeRepo{
		store:                r.store.clone(),
		failCreateUser:       r.failCreateUser,
		failEnsurePermission: r.failEnsurePermission,
	}
	if err := fn(ctx, txRepo); err != nil {
		return err
	}
	r.store = txRepo.store
	return nil
}

func (r *fakeRepo) FindUserByID(_ context.Context, id int64) (*identity.User, error) {
	user, ok := r.store.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &user, nil
}

func (r *fakeRepo) FindUserByUsername(_ context.Context, username string) (*identity.User, error) {
	for _, user := range r.store.users {
		if user.Username == username {
			u := user
			return &u, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeRepo) FindUserByEmail(_ context.Context, email string) (*identity.User, error) {
	for _, user := range r.store.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeRepo) ListUsers(_ context.Context) ([]identity.User, error) {
	var users []identity.User
	for _, user := range r.store.users {
		users = append(users, user)
	}
	return users, nil
}

func (r *fakeRepo) CreateUser(_ context.Context, user identity.User) (int64, error) {
	if r.failCreateUser != nil {
		return 0, r.failCreateUser
	}
	for _, existing := range r.store.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return 0, shared.ErrAlreadyExists
		}
	}
	r.store.nextID++
	user.ID = r.store.nextID
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	r.store.users[user.ID] = user
	return user.ID, nil
}

func (r *fakeRepo) FindRoleByID(_ context.Context, id int64) (*identity.Role, error) {
	for _, role := range r.store.roles {
		if role.ID == id {
			rr := role
			return &rr, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeRepo) EnsureRole(_ context.Context, name string) (*identity.Role, error) {
	if role, ok := r.store.roles[name]; ok {
		return &role, nil
	}
	r.store.nextID++
	role := identity.Role{ID: r.store.nextID, Name: name}
	r.store.roles[name] = role
	return &role, nil
}

func (r *fakeRepo) EnsureGroup(_ context.Context, name string) (*identity.Group, error) {
	if group, ok := r.store.groups[name]; ok {
		return &group, nil
	}
	r.store.nextID++
	group := identity.Group{ID: r.store.nextID, Name: name, CreatedAt: time.Now().UTC()}
	r.store.groups[name] = group
	return &group, nil
}

func (r *fakeRepo) EnsurePermission(_ context.Context, name string) (*identity.Permission, error) {
	if r.failEnsurePermission != nil {
		return nil, r.failEnsurePermission
	}
	if perm, ok := r.store.perms[name]; ok {
		return &perm, nil
	}
	r.store.nextID++
	perm := identity.Permission{ID: r.store.nextID, Name: name, CreatedAt: time.Now().UTC()}
	r.store.perms[name] = perm
	return &perm, nil
}

func (r *fakeRepo) EnsurePermissionGroup(_ context.Context, groupID, permissionID int64) error {
	r.store.links[link{groupID: groupID, permissionID: permissionID}] = true
	return nil
}

func (r *fakeRepo) GroupPermissions(_ context.Context, groupID int64) ([]identity.Permission, error) {
	var perms []identity.Permission
	for l := range r.store.links {
		if l.groupID != groupID {
			continue
		}
		for _, perm := range r.store.perms {
			if perm.ID == l.permissionID {
				perms = append(perms, perm)
			}
		}
	}
	return perms, nil
}

var _ identity.Repository = (*fakeRepo)(nil)
