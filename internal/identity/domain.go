package identity

import "time"

// AccountKind is the closed set of account classifications.
type AccountKind string

const (
	// KindAdmin grants the full management permission set.
	KindAdmin AccountKind = "ADMIN"
	// KindBuyer grants read-only catalog access.
	KindBuyer AccountKind = "BUYER"
)

// Valid reports whether k is a known account kind.
func (k AccountKind) Valid() bool {
	return k == KindAdmin || k == KindBuyer
}

// PermissionName is a named capability grantable to a group.
type PermissionName string

const (
	PermCreateUpdate PermissionName = "CREATE_UPDATE"
	PermDelete       PermissionName = "DELETE"
	PermListView     PermissionName = "LIST_VIEW"
)

// Permissions returns the permission set seeded for accounts of this kind.
func (k AccountKind) Permissions() []PermissionName {
	switch k {
	case KindAdmin:
		return []PermissionName{PermCreateUpdate, PermDelete, PermListView}
	case KindBuyer:
		return []PermissionName{PermListView}
	}
	return nil
}

// String implements fmt.Stringer.
func (k AccountKind) String() string { return string(k) }

// Role is a coarse identity classification driving authorization checks.
type Role struct {
	ID   int64
	Name string
}

// Group is a collection entity that permissions attach to.
type Group struct {
	ID          int64
	Name        string
	Description *string
	CreatedAt   time.Time
}

// Permission is an atomic capability row.
type Permission struct {
	ID          int64
	Name        string
	Description *string
	CreatedAt   time.Time
}

// PermissionGroup ties a permission to a group.
type PermissionGroup struct {
	GroupID      int64
	PermissionID int64
}

// User represents a registered account.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	RoleID       int64
	GroupID      int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
