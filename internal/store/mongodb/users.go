// Package mongodb implements the store collections on a MongoDB database.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"tamuroo-server/internal/store"
)

const (
	usersCollection     = "users"
	rolesCollection     = "roles"
	userRolesCollection = "user_roles"

	usernameIndex = "username_unique"
	emailIndex    = "email_unique"
)

type userDocument struct {
	ID        string    `bson:"_id"`
	Username  string    `bson:"username"`
	Email     string    `bson:"email"`
	Password  string    `bson:"password"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`

	ActivationCode         *string    `bson:"activation_code"`
	ConsumedActivationCode *string    `bson:"consumed_activation_code"`
	ActivatedAt            *time.Time `bson:"activated_at"`

	ResetPasswordCode *string `bson:"reset_password_code"`
	ResetPasswordAt   *int64  `bson:"reset_password_at"`

	BanExpiresAt *time.Time `bson:"ban_expires_at"`
	BanReason    *string    `bson:"ban_reason"`
}

// UserCollection stores users in the "users" collection.
type UserCollection struct {
	coll *mongo.Collection
}

func NewUserCollection(db *mongo.Database) *UserCollection {
	return &UserCollection{coll: db.Collection(usersCollection)}
}

// New returns every collection of the MongoDB backend.
func New(db *mongo.Database) store.Collections {
	return store.Collections{
		Users:     NewUserCollection(db),
		Roles:     NewRoleCollection(db),
		UserRoles: NewUserRoleCollection(db),
	}
}

func (c *UserCollection) FindOne(ctx context.Context, filter store.UserFilter) (*store.User, error) {
	if filter.IsEmpty() {
		return nil, store.ErrEmptyFilter
	}

	var doc userDocument
	if err := c.coll.FindOne(ctx, userFilter(filter)).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	return fromUserDocument(doc), nil
}

func (c *UserCollection) Exists(ctx context.Context, field store.UserField, value string) (bool, error) {
	if field != store.FieldUsername && field != store.FieldEmail {
		return false, fmt.Errorf("%w: %s", store.ErrUnknownField, field)
	}

	n, err := c.coll.CountDocuments(ctx, bson.D{{Key: string(field), Value: value}})
	if err != nil {
		return false, fmt.Errorf("check %s: %w", field, err)
	}
	return n > 0, nil
}

func (c *UserCollection) Create(ctx context.Context, user *store.User) (*store.User, error) {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	if _, err := c.coll.InsertOne(ctx, toUserDocument(user)); err != nil {
		return nil, translateError(err)
	}
	return user, nil
}

func (c *UserCollection) Save(ctx context.Context, user *store.User) error {
	user.UpdatedAt = time.Now().UTC()

	result, err := c.coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: user.ID}}, toUserDocument(user))
	if err != nil {
		return translateError(err)
	}
	if result.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (c *UserCollection) DeleteMany(ctx context.Context, filter store.UserFilter) error {
	doc := bson.D{}
	if !filter.IsEmpty() {
		doc = userFilter(filter)
	}
	if _, err := c.coll.DeleteMany(ctx, doc); err != nil {
		return fmt.Errorf("delete users: %w", err)
	}
	return nil
}

func (c *UserCollection) CountDocuments(ctx context.Context) (int64, error) {
	n, err := c.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

// userFilter renders the filter as a query document. Criteria are combined with AND.
func userFilter(filter store.UserFilter) bson.D {
	doc := bson.D{}
	if filter.Username != "" {
		doc = append(doc, bson.E{Key: "username", Value: filter.Username})
	}
	if filter.Email != "" {
		doc = append(doc, bson.E{Key: "email", Value: filter.Email})
	}
	if filter.AnyActivationCode != "" {
		doc = append(doc, bson.E{Key: "$or", Value: bson.A{
			bson.D{{Key: "activation_code", Value: filter.AnyActivationCode}},
			bson.D{{Key: "consumed_activation_code", Value: filter.AnyActivationCode}},
		}})
	}
	if filter.ResetPasswordCode != "" {
		doc = append(doc,
			bson.E{Key: "reset_password_code", Value: filter.ResetPasswordCode},
			bson.E{Key: "reset_password_at", Value: bson.D{{Key: "$gt", Value: filter.ResetValidAt.UnixMilli()}}},
		)
	}
	return doc
}

func toUserDocument(u *store.User) userDocument {
	return userDocument{
		ID:                     u.ID,
		Username:               u.Username,
		Email:                  u.Email,
		Password:               u.Password,
		CreatedAt:              u.CreatedAt,
		UpdatedAt:              u.UpdatedAt,
		ActivationCode:         u.ActivationCode,
		ConsumedActivationCode: u.ConsumedActivationCode,
		ActivatedAt:            u.ActivatedAt,
		ResetPasswordCode:      u.ResetPasswordCode,
		ResetPasswordAt:        u.ResetPasswordAt,
		BanExpiresAt:           u.BanExpiresAt,
		BanReason:              u.BanReason,
	}
}

func fromUserDocument(d userDocument) *store.User {
	return &store.User{
		ID:                     d.ID,
		Username:               d.Username,
		Email:                  d.Email,
		Password:               d.Password,
		CreatedAt:              d.CreatedAt,
		UpdatedAt:              d.UpdatedAt,
		ActivationCode:         d.ActivationCode,
		ConsumedActivationCode: d.ConsumedActivationCode,
		ActivatedAt:            d.ActivatedAt,
		ResetPasswordCode:      d.ResetPasswordCode,
		ResetPasswordAt:        d.ResetPasswordAt,
		BanExpiresAt:           d.BanExpiresAt,
		BanReason:              d.BanReason,
	}
}

var duplicateIndexPattern = regexp.MustCompile(`index: (\S+)`)

// translateError maps duplicate key write errors onto store.DuplicateKeyError.
// The offending field is recovered from the index name in the server message.
// Primary key collisions and unparseable messages stay plain errors.
func translateError(err error) error {
	if !mongo.IsDuplicateKeyError(err) {
		return err
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, usernameIndex):
		return &store.DuplicateKeyError{Field: store.FieldUsername, Err: err}
	case strings.Contains(msg, emailIndex):
		return &store.DuplicateKeyError{Field: store.FieldEmail, Err: err}
	}

	m := duplicateIndexPattern.FindStringSubmatch(msg)
	if m == nil || m[1] == "_id_" {
		return fmt.Errorf("duplicate key: %w", err)
	}
	return &store.DuplicateKeyError{Field: store.UserField(m[1]), Err: err}
}
