// Package postgres implements the store collections on top of a pgx connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"tamuroo-server/internal/interfaces"
	"tamuroo-server/internal/store"
)

const userColumns = "user_id, username, email, password, created_at, updated_at, activation_code, consumed_activation_code, " +
	"activated_at, reset_password_code, reset_password_at, ban_expires_at, ban_reason"

// UserCollection stores users in account_schema.users.
type UserCollection struct {
	pool interfaces.PgxPoolIface
}

// NewUserCollection creates a UserCollection backed by the given pool.
func NewUserCollection(pool interfaces.PgxPoolIface) *UserCollection {
	return &UserCollection{pool: pool}
}

// New returns every collection of the PostgreSQL backend.
func New(pool interfaces.PgxPoolIface) store.Collections {
	return store.Collections{
		Users:     NewUserCollection(pool),
		Roles:     NewRoleCollection(pool),
		UserRoles: NewUserRoleCollection(pool),
	}
}

// FindOne returns the first user matching the filter or store.ErrNotFound.
func (c *UserCollection) FindOne(ctx context.Context, filter store.UserFilter) (*store.User, error) {
	if filter.IsEmpty() {
		return nil, store.ErrEmptyFilter
	}

	where, args := userWhere(filter)
	queryString := "SELECT " + userColumns + " FROM account_schema.users WHERE " + where + " LIMIT 1"

	user, err := scanUser(c.pool.QueryRow(ctx, queryString, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	return user, nil
}

// Exists reports whether a user with field equal to value exists.
func (c *UserCollection) Exists(ctx context.Context, field store.UserField, value string) (bool, error) {
	var column string
	switch field {
	case store.FieldUsername:
		column = "username"
	case store.FieldEmail:
		column = "email"
	default:
		return false, fmt.Errorf("%w: %s", store.ErrUnknownField, field)
	}

	var exists bool
	queryString := "SELECT EXISTS (SELECT 1 FROM account_schema.users WHERE " + column + " = $1)"
	if err := c.pool.QueryRow(ctx, queryString, value).Scan(&exists); err != nil {
		return false, fmt.Errorf("check %s: %w", field, err)
	}

	return exists, nil
}

// Create inserts a new user. A missing ID and timestamps are filled in.
func (c *UserCollection) Create(ctx context.Context, user *store.User) (*store.User, error) {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	queryString := "INSERT INTO account_schema.users (" + userColumns + ") VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)"
	if _, err := c.pool.Exec(ctx, queryString,
		user.ID, user.Username, user.Email, user.Password, user.CreatedAt, user.UpdatedAt,
		user.ActivationCode, user.ConsumedActivationCode, user.ActivatedAt,
		user.ResetPasswordCode, user.ResetPasswordAt, user.BanExpiresAt, user.BanReason,
	); err != nil {
		return nil, translateError(err)
	}

	return user, nil
}

// Save writes every mutable field of an existing user.
func (c *UserCollection) Save(ctx context.Context, user *store.User) error {
	user.UpdatedAt = time.Now().UTC()

	queryString := "UPDATE account_schema.users SET username = $2, email = $3, password = $4, updated_at = $5, " +
		"activation_code = $6, consumed_activation_code = $7, activated_at = $8, reset_password_code = $9, " +
		"reset_password_at = $10, ban_expires_at = $11, ban_reason = $12 WHERE user_id = $1"
	tag, err := c.pool.Exec(ctx, queryString,
		user.ID, user.Username, user.Email, user.Password, user.UpdatedAt,
		user.ActivationCode, user.ConsumedActivationCode, user.ActivatedAt,
		user.ResetPasswordCode, user.ResetPasswordAt, user.BanExpiresAt, user.BanReason,
	)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}

	return nil
}

// DeleteMany removes every user matching the filter. An empty filter removes all users.
func (c *UserCollection) DeleteMany(ctx context.Context, filter store.UserFilter) error {
	queryString := "DELETE FROM account_schema.users"
	var args []interface{}
	if !filter.IsEmpty() {
		var where string
		where, args = userWhere(filter)
		queryString += " WHERE " + where
	}

	if _, err := c.pool.Exec(ctx, queryString, args...); err != nil {
		return fmt.Errorf("delete users: %w", err)
	}
	return nil
}

// CountDocuments returns the number of stored users.
func (c *UserCollection) CountDocuments(ctx context.Context) (int64, error) {
	return count(ctx, c.pool, "account_schema.users")
}

// userWhere renders the filter as a SQL condition with positional arguments.
func userWhere(filter store.UserFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}
	next := func(value interface{}) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Username != "" {
		conditions = append(conditions, "username = "+next(filter.Username))
	}
	if filter.Email != "" {
		conditions = append(conditions, "email = "+next(filter.Email))
	}
	if filter.AnyActivationCode != "" {
		placeholder := next(filter.AnyActivationCode)
		conditions = append(conditions, "(activation_code = "+placeholder+" OR consumed_activation_code = "+placeholder+")")
	}
	if filter.ResetPasswordCode != "" {
		conditions = append(conditions, "reset_password_code = "+next(filter.ResetPasswordCode))
		conditions = append(conditions, "reset_password_at > "+next(filter.ResetValidAt.UnixMilli()))
	}

	return strings.Join(conditions, " AND "), args
}

func scanUser(row pgx.Row) (*store.User, error) {
	user := &store.User{}
	var (
		activationCode, consumedCode, resetCode, banReason pgtype.Text
		activatedAt, banExpiresAt                          pgtype.Timestamptz
		resetAt                                            pgtype.Int8
	)

	if err := row.Scan(&user.ID, &user.Username, &user.Email, &user.Password, &user.CreatedAt, &user.UpdatedAt,
		&activationCode, &consumedCode, &activatedAt, &resetCode, &resetAt, &banExpiresAt, &banReason); err != nil {
		return nil, err
	}

	user.ActivationCode = textPtr(activationCode)
	user.ConsumedActivationCode = textPtr(consumedCode)
	user.ActivatedAt = timePtr(activatedAt)
	user.ResetPasswordCode = textPtr(resetCode)
	user.ResetPasswordAt = int8Ptr(resetAt)
	user.BanExpiresAt = timePtr(banExpiresAt)
	user.BanReason = textPtr(banReason)

	return user, nil
}

// translateError maps unique violations onto store.DuplicateKeyError.
func translateError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.UniqueViolation {
		return err
	}

	switch pgErr.ConstraintName {
	case "users_username_key":
		return &store.DuplicateKeyError{Field: store.FieldUsername, Err: err}
	case "users_email_key":
		return &store.DuplicateKeyError{Field: store.FieldEmail, Err: err}
	default:
		return &store.DuplicateKeyError{Field: store.UserField(pgErr.ConstraintName), Err: err}
	}
}

func count(ctx context.Context, pool interfaces.PgxPoolIface, table string) (int64, error) {
	var n int64
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

func textPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	s := t.String
	return &s
}

func timePtr(t pgtype.Timestamptz) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func int8Ptr(i pgtype.Int8) *int64 {
	if !i.Valid {
		return nil
	}
	v := i.Int64
	return &v
}
