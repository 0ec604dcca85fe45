// Package store defines the persisted records and the collection contracts the account managers
// depend on. Concrete implementations live in the postgres and mongodb sub-packages.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned by FindOne when no record matches the filter.
var ErrNotFound = errors.New("record not found")

// UserField names a user attribute that can be checked for uniqueness.
type UserField string

const (
	FieldUsername UserField = "username"
	FieldEmail    UserField = "email"
)

// ErrUnknownField is returned when a uniqueness lookup names a field that is not indexed.
var ErrUnknownField = errors.New("unknown user field")

// DuplicateKeyError reports that the storage layer rejected a write because of a unique index.
type DuplicateKeyError struct {
	Field UserField
	Err   error
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate %s: %v", e.Field, e.Err)
}

func (e *DuplicateKeyError) Unwrap() error {
	return e.Err
}

// User is the persisted user account.
type User struct {
	ID       string
	Username string
	Email    string
	Password string // bcrypt hash

	CreatedAt time.Time
	UpdatedAt time.Time

	ActivationCode         *string
	ConsumedActivationCode *string
	ActivatedAt            *time.Time

	ResetPasswordCode *string
	ResetPasswordAt   *int64 // expiry in epoch milliseconds

	BanExpiresAt *time.Time
	BanReason    *string
}

// IsActivated reports whether the activation code has been consumed.
func (u *User) IsActivated() bool {
	return u.ActivatedAt != nil
}

// UserFilter selects a single user. Empty fields are ignored; at least one field must be set.
type UserFilter struct {
	Username string
	Email    string

	// AnyActivationCode matches either a pending or an already consumed activation code.
	AnyActivationCode string

	// ResetPasswordCode matches only when the stored expiry is after ResetValidAt.
	ResetPasswordCode string
	ResetValidAt      time.Time
}

// IsEmpty reports whether no criteria are set.
func (f UserFilter) IsEmpty() bool {
	return f.Username == "" && f.Email == "" && f.AnyActivationCode == "" && f.ResetPasswordCode == ""
}

// ErrEmptyFilter is returned when FindOne is called without any criteria.
var ErrEmptyFilter = errors.New("empty filter")

// Role is a named role. Roles are seeded by the bootstrap command and not enforced anywhere.
type Role struct {
	ID   string
	Name string
}

// UserRole links a user to a role.
type UserRole struct {
	ID     string
	UserID string
	RoleID string
}

// UserCollection is the persistence contract for user records.
type UserCollection interface {
	FindOne(ctx context.Context, filter UserFilter) (*User, error)
	Exists(ctx context.Context, field UserField, value string) (bool, error)
	Create(ctx context.Context, user *User) (*User, error)
	Save(ctx context.Context, user *User) error
	DeleteMany(ctx context.Context, filter UserFilter) error
	CountDocuments(ctx context.Context) (int64, error)
}

// RoleCollection is the persistence contract for role records.
type RoleCollection interface {
	FindOne(ctx context.Context, name string) (*Role, error)
	Create(ctx context.Context, role *Role) (*Role, error)
	DeleteMany(ctx context.Context, names []string) error
	CountDocuments(ctx context.Context) (int64, error)
}

// UserRoleCollection is the persistence contract for user-role assignments.
type UserRoleCollection interface {
	Create(ctx context.Context, userRole *UserRole) (*UserRole, error)
	DeleteMany(ctx context.Context, roleIDs []string) error
	CountDocuments(ctx context.Context) (int64, error)
}

// Collections bundles every collection of one backend.
type Collections struct {
	Users     UserCollection
	Roles     RoleCollection
	UserRoles UserRoleCollection
}
