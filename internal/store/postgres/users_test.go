package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tamuroo-server/internal/store"
)

var userColumnNames = []string{
	"user_id", "username", "email", "password", "created_at", "updated_at", "activation_code",
	"consumed_activation_code", "activated_at", "reset_password_code", "reset_password_at", "ban_expires_at", "ban_reason",
}

func newPoolMock(t *testing.T) pgxmock.PgxPoolIface {
	poolMock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, poolMock.ExpectationsWereMet())
	})
	return poolMock
}

func TestUserWhere(t *testing.T) {
	validAt := time.UnixMilli(1_700_000_000_000)

	testCases := []struct {
		name      string
		filter    store.UserFilter
		condition string
		args      []interface{}
	}{
		{"Username", store.UserFilter{Username: "alice"}, "username = $1", []interface{}{"alice"}},
		{"UsernameAndEmail", store.UserFilter{Username: "alice", Email: "a@x.com"}, "username = $1 AND email = $2", []interface{}{"alice", "a@x.com"}},
		{"ActivationCode", store.UserFilter{AnyActivationCode: "abc"}, "(activation_code = $1 OR consumed_activation_code = $1)", []interface{}{"abc"}},
		{"ResetCode", store.UserFilter{ResetPasswordCode: "xyz", ResetValidAt: validAt}, "reset_password_code = $1 AND reset_password_at > $2", []interface{}{"xyz", int64(1_700_000_000_000)}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			condition, args := userWhere(tc.filter)
			assert.Equal(t, tc.condition, condition)
			assert.Equal(t, tc.args, args)
		})
	}
}

func TestUserCollection_FindOne(t *testing.T) {
	poolMock := newPoolMock(t)
	users := NewUserCollection(poolMock)

	createdAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	poolMock.ExpectQuery(regexp.QuoteMeta("FROM account_schema.users WHERE username = $1 LIMIT 1")).
		WithArgs("alice").
		WillReturnRows(pgxmock.NewRows(userColumnNames).AddRow(
			"0b6f0a44-4c52-4c47-9a57-8f3c5bcb5a11", "alice", "alice@x.com", "hash", createdAt, createdAt,
			"Zm9vYmFy", nil, nil, nil, nil, nil, nil,
		))

	user, err := users.FindOne(context.Background(), store.UserFilter{Username: "alice"})
	require.NoError(t, err)
	assert.Equal(t, "alice@x.com", user.Email)
	require.NotNil(t, user.ActivationCode)
	assert.Equal(t, "Zm9vYmFy", *user.ActivationCode)
	assert.Nil(t, user.ActivatedAt)
	assert.Nil(t, user.ResetPasswordAt)
	assert.False(t, user.IsActivated())
}

func TestUserCollection_FindOne_ResetCode(t *testing.T) {
	poolMock := newPoolMock(t)
	users := NewUserCollection(poolMock)

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	expiry := now.Add(time.Hour).UnixMilli()
	poolMock.ExpectQuery(regexp.QuoteMeta("WHERE reset_password_code = $1 AND reset_password_at > $2")).
		WithArgs("reset1", now.UnixMilli()).
		WillReturnRows(pgxmock.NewRows(userColumnNames).AddRow(
			"0b6f0a44-4c52-4c47-9a57-8f3c5bcb5a11", "alice", "alice@x.com", "hash", now, now,
			nil, "Zm9vYmFy", now, "reset1", expiry, nil, nil,
		))

	user, err := users.FindOne(context.Background(), store.UserFilter{ResetPasswordCode: "reset1", ResetValidAt: now})
	require.NoError(t, err)
	require.NotNil(t, user.ResetPasswordAt)
	assert.Equal(t, expiry, *user.ResetPasswordAt)
	assert.True(t, user.IsActivated())
}

func TestUserCollection_FindOne_NotFound(t *testing.T) {
	poolMock := newPoolMock(t)
	users := NewUserCollection(poolMock)

	poolMock.ExpectQuery(regexp.QuoteMeta("WHERE (activation_code = $1 OR consumed_activation_code = $1)")).
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows(userColumnNames))

	_, err := users.FindOne(context.Background(), store.UserFilter{AnyActivationCode: "missing"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUserCollection_FindOne_EmptyFilter(t *testing.T) {
	users := NewUserCollection(newPoolMock(t))

	_, err := users.FindOne(context.Background(), store.UserFilter{})
	assert.ErrorIs(t, err, store.ErrEmptyFilter)
}

func TestUserCollection_Exists(t *testing.T) {
	testCases := []struct {
		name   string
		field  store.UserField
		exists bool
	}{
		{"UsernameTaken", store.FieldUsername, true},
		{"EmailFree", store.FieldEmail, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			poolMock := newPoolMock(t)
			users := NewUserCollection(poolMock)

			poolMock.ExpectQuery(regexp.QuoteMeta("WHERE " + string(tc.field) + " = $1)")).
				WithArgs("value").
				WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(tc.exists))

			exists, err := users.Exists(context.Background(), tc.field, "value")
			require.NoError(t, err)
			assert.Equal(t, tc.exists, exists)
		})
	}
}

func TestUserCollection_Exists_UnknownField(t *testing.T) {
	users := NewUserCollection(newPoolMock(t))

	_, err := users.Exists(context.Background(), store.UserField("password"), "x")
	assert.ErrorIs(t, err, store.ErrUnknownField)
}

func TestUserCollection_Create(t *testing.T) {
	poolMock := newPoolMock(t)
	users := NewUserCollection(poolMock)

	code := "Zm9vYmFy"
	poolMock.ExpectExec("INSERT INTO account_schema.users").
		WithArgs(pgxmock.AnyArg(), "alice", "alice@x.com", "hash", pgxmock.AnyArg(), pgxmock.AnyArg(),
			&code, pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	user, err := users.Create(context.Background(), &store.User{Username: "alice", Email: "alice@x.com", Password: "hash", ActivationCode: &code})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.False(t, user.CreatedAt.IsZero())
	assert.Equal(t, user.CreatedAt, user.UpdatedAt)
}

func anyArgs(n int) []interface{} {
	args := make([]interface{}, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

func TestUserCollection_Create_Duplicate(t *testing.T) {
	testCases := []struct {
		constraint string
		field      store.UserField
	}{
		{"users_username_key", store.FieldUsername},
		{"users_email_key", store.FieldEmail},
	}

	for _, tc := range testCases {
		t.Run(tc.constraint, func(t *testing.T) {
			poolMock := newPoolMock(t)
			users := NewUserCollection(poolMock)

			poolMock.ExpectExec("INSERT INTO account_schema.users").
				WithArgs(anyArgs(13)...).
				WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: tc.constraint})

			_, err := users.Create(context.Background(), &store.User{Username: "alice", Email: "alice@x.com", Password: "hash"})

			var dupErr *store.DuplicateKeyError
			require.True(t, errors.As(err, &dupErr))
			assert.Equal(t, tc.field, dupErr.Field)
		})
	}
}

func TestUserCollection_Save(t *testing.T) {
	poolMock := newPoolMock(t)
	users := NewUserCollection(poolMock)

	user := &store.User{ID: "0b6f0a44-4c52-4c47-9a57-8f3c5bcb5a11", Username: "alice", Email: "alice@x.com", Password: "hash"}
	poolMock.ExpectExec("UPDATE account_schema.users SET").
		WithArgs(user.ID, "alice", "alice@x.com", "hash", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, users.Save(context.Background(), user))
	assert.False(t, user.UpdatedAt.IsZero())
}

func TestUserCollection_Save_NotFound(t *testing.T) {
	poolMock := newPoolMock(t)
	users := NewUserCollection(poolMock)

	poolMock.ExpectExec("UPDATE account_schema.users SET").
		WithArgs(anyArgs(12)...).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := users.Save(context.Background(), &store.User{ID: "0b6f0a44-4c52-4c47-9a57-8f3c5bcb5a11"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUserCollection_DeleteManyAndCount(t *testing.T) {
	poolMock := newPoolMock(t)
	users := NewUserCollection(poolMock)

	poolMock.ExpectExec(regexp.QuoteMeta("DELETE FROM account_schema.users WHERE email = $1")).
		WithArgs("alice@x.com").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	poolMock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM account_schema.users")).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(3)))

	require.NoError(t, users.DeleteMany(context.Background(), store.UserFilter{Email: "alice@x.com"}))

	n, err := users.CountDocuments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestRoleCollections(t *testing.T) {
	poolMock := newPoolMock(t)
	roles := NewRoleCollection(poolMock)
	userRoles := NewUserRoleCollection(poolMock)

	poolMock.ExpectExec("INSERT INTO account_schema.roles").
		WithArgs(pgxmock.AnyArg(), "admin").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	poolMock.ExpectQuery(regexp.QuoteMeta("SELECT role_id, name FROM account_schema.roles WHERE name = $1")).
		WithArgs("moderator").
		WillReturnRows(pgxmock.NewRows([]string{"role_id", "name"}))
	poolMock.ExpectExec("INSERT INTO account_schema.user_roles").
		WithArgs(pgxmock.AnyArg(), "user-1", "role-1").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	poolMock.ExpectExec(regexp.QuoteMeta("DELETE FROM account_schema.user_roles WHERE role_id::text = ANY($1)")).
		WithArgs([]string{"role-1"}).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	poolMock.ExpectExec(regexp.QuoteMeta("DELETE FROM account_schema.roles WHERE name = ANY($1)")).
		WithArgs([]string{"admin"}).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	role, err := roles.Create(context.Background(), &store.Role{Name: "admin"})
	require.NoError(t, err)
	assert.NotEmpty(t, role.ID)

	_, err = roles.FindOne(context.Background(), "moderator")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = userRoles.Create(context.Background(), &store.UserRole{UserID: "user-1", RoleID: "role-1"})
	require.NoError(t, err)

	require.NoError(t, userRoles.DeleteMany(context.Background(), []string{"role-1"}))
	require.NoError(t, roles.DeleteMany(context.Background(), []string{"admin"}))
}

func TestMigrationURL(t *testing.T) {
	url := MigrationURL("db", "5432", "user", "p@ss", "accounts")
	assert.Equal(t, "pgx5://user:p%40ss@db:5432/accounts?sslmode=disable", url)
}
