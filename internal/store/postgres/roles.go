package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"tamuroo-server/internal/interfaces"
	"tamuroo-server/internal/store"
)

// RoleCollection stores roles in account_schema.roles.
type RoleCollection struct {
	pool interfaces.PgxPoolIface
}

func NewRoleCollection(pool interfaces.PgxPoolIface) *RoleCollection {
	return &RoleCollection{pool: pool}
}

func (c *RoleCollection) FindOne(ctx context.Context, name string) (*store.Role, error) {
	role := &store.Role{}
	queryString := "SELECT role_id, name FROM account_schema.roles WHERE name = $1"
	if err := c.pool.QueryRow(ctx, queryString, name).Scan(&role.ID, &role.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("find role: %w", err)
	}
	return role, nil
}

func (c *RoleCollection) Create(ctx context.Context, role *store.Role) (*store.Role, error) {
	if role.ID == "" {
		role.ID = uuid.New().String()
	}

	queryString := "INSERT INTO account_schema.roles (role_id, name) VALUES ($1, $2)"
	if _, err := c.pool.Exec(ctx, queryString, role.ID, role.Name); err != nil {
		return nil, translateError(err)
	}
	return role, nil
}

func (c *RoleCollection) DeleteMany(ctx context.Context, names []string) error {
	queryString := "DELETE FROM account_schema.roles WHERE name = ANY($1)"
	if _, err := c.pool.Exec(ctx, queryString, names); err != nil {
		return fmt.Errorf("delete roles: %w", err)
	}
	return nil
}

func (c *RoleCollection) CountDocuments(ctx context.Context) (int64, error) {
	return count(ctx, c.pool, "account_schema.roles")
}

// UserRoleCollection stores role assignments in account_schema.user_roles.
type UserRoleCollection struct {
	pool interfaces.PgxPoolIface
}

func NewUserRoleCollection(pool interfaces.PgxPoolIface) *UserRoleCollection {
	return &UserRoleCollection{pool: pool}
}

func (c *UserRoleCollection) Create(ctx context.Context, userRole *store.UserRole) (*store.UserRole, error) {
	if userRole.ID == "" {
		userRole.ID = uuid.New().String()
	}

	queryString := "INSERT INTO account_schema.user_roles (user_role_id, user_id, role_id) VALUES ($1, $2, $3)"
	if _, err := c.pool.Exec(ctx, queryString, userRole.ID, userRole.UserID, userRole.RoleID); err != nil {
		return nil, translateError(err)
	}
	return userRole, nil
}

// DeleteMany removes assignments of the given roles. An empty slice removes every assignment.
func (c *UserRoleCollection) DeleteMany(ctx context.Context, roleIDs []string) error {
	queryString := "DELETE FROM account_schema.user_roles"
	var args []interface{}
	if len(roleIDs) > 0 {
		queryString += " WHERE role_id::text = ANY($1)"
		args = append(args, roleIDs)
	}

	if _, err := c.pool.Exec(ctx, queryString, args...); err != nil {
		return fmt.Errorf("delete user roles: %w", err)
	}
	return nil
}

func (c *UserRoleCollection) CountDocuments(ctx context.Context) (int64, error) {
	return count(ctx, c.pool, "account_schema.user_roles")
}
