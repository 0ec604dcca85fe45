package mongodb

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"tamuroo-server/internal/store"
)

func TestUserFilter(t *testing.T) {
	validAt := time.UnixMilli(1_700_000_000_000)

	tests := []struct {
		name   string
		filter store.UserFilter
		want   bson.D
	}{
		{
			name:   "username",
			filter: store.UserFilter{Username: "alice"},
			want:   bson.D{{Key: "username", Value: "alice"}},
		},
		{
			name:   "username and email",
			filter: store.UserFilter{Username: "alice", Email: "alice@example.com"},
			want: bson.D{
				{Key: "username", Value: "alice"},
				{Key: "email", Value: "alice@example.com"},
			},
		},
		{
			name:   "activation code matches pending and consumed",
			filter: store.UserFilter{AnyActivationCode: "abc"},
			want: bson.D{{Key: "$or", Value: bson.A{
				bson.D{{Key: "activation_code", Value: "abc"}},
				bson.D{{Key: "consumed_activation_code", Value: "abc"}},
			}}},
		},
		{
			name:   "reset code requires unexpired timestamp",
			filter: store.UserFilter{ResetPasswordCode: "xyz", ResetValidAt: validAt},
			want: bson.D{
				{Key: "reset_password_code", Value: "xyz"},
				{Key: "reset_password_at", Value: bson.D{{Key: "$gt", Value: int64(1_700_000_000_000)}}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, userFilter(tt.filter))
		})
	}
}

func TestUserDocumentRoundTrip(t *testing.T) {
	code := "code"
	at := int64(42)
	activated := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	user := &store.User{
		ID:                     "3f1a0a2e-8c43-4f4e-9d8e-2f1b8e7c1f00",
		Username:               "alice",
		Email:                  "alice@example.com",
		Password:               "hash",
		ConsumedActivationCode: &code,
		ActivatedAt:            &activated,
		ResetPasswordCode:      &code,
		ResetPasswordAt:        &at,
	}

	raw, err := bson.Marshal(toUserDocument(user))
	require.NoError(t, err)

	var doc userDocument
	require.NoError(t, bson.Unmarshal(raw, &doc))

	got := fromUserDocument(doc)
	assert.Equal(t, user.ID, got.ID)
	assert.Nil(t, got.ActivationCode)
	assert.Equal(t, "code", *got.ConsumedActivationCode)
	assert.True(t, got.IsActivated())
	assert.Equal(t, int64(42), *got.ResetPasswordAt)
}

func TestTranslateError(t *testing.T) {
	duplicate := func(index string) error {
		return mongo.WriteException{WriteErrors: []mongo.WriteError{{
			Code:    11000,
			Message: "E11000 duplicate key error collection: tamuroo.users index: " + index + " dup key",
		}}}
	}

	tests := []struct {
		name  string
		err   error
		field store.UserField
	}{
		{name: "username", err: duplicate(usernameIndex), field: store.FieldUsername},
		{name: "email", err: duplicate(emailIndex), field: store.FieldEmail},
		{name: "user role", err: duplicate("user_role_unique"), field: store.UserField("user_role_unique")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var dupErr *store.DuplicateKeyError
			require.ErrorAs(t, translateError(tt.err), &dupErr)
			assert.Equal(t, tt.field, dupErr.Field)
		})
	}

	t.Run("primary key collision is not a field duplicate", func(t *testing.T) {
		err := translateError(duplicate("_id_"))
		require.Error(t, err)
		var dupErr *store.DuplicateKeyError
		assert.False(t, errors.As(err, &dupErr))
		assert.True(t, mongo.IsDuplicateKeyError(err))
	})

	t.Run("other errors pass through", func(t *testing.T) {
		other := errors.New("connection reset")
		assert.Same(t, other, translateError(other))
	})
}
