package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	log "github.com/sirupsen/logrus"

	"tamuroo-server/internal/store"
)

type roleDocument struct {
	ID   string `bson:"_id"`
	Name string `bson:"name"`
}

type userRoleDocument struct {
	ID     string `bson:"_id"`
	UserID string `bson:"user_id"`
	RoleID string `bson:"role_id"`
}

type RoleCollection struct {
	coll *mongo.Collection
}

func NewRoleCollection(db *mongo.Database) *RoleCollection {
	return &RoleCollection{coll: db.Collection(rolesCollection)}
}

func (c *RoleCollection) FindOne(ctx context.Context, name string) (*store.Role, error) {
	var doc roleDocument
	if err := c.coll.FindOne(ctx, bson.D{{Key: "name", Value: name}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("find role: %w", err)
	}
	return &store.Role{ID: doc.ID, Name: doc.Name}, nil
}

func (c *RoleCollection) Create(ctx context.Context, role *store.Role) (*store.Role, error) {
	if role.ID == "" {
		role.ID = uuid.New().String()
	}
	if _, err := c.coll.InsertOne(ctx, roleDocument{ID: role.ID, Name: role.Name}); err != nil {
		return nil, translateError(err)
	}
	return role, nil
}

func (c *RoleCollection) DeleteMany(ctx context.Context, names []string) error {
	filter := bson.D{{Key: "name", Value: bson.D{{Key: "$in", Value: names}}}}
	if _, err := c.coll.DeleteMany(ctx, filter); err != nil {
		return fmt.Errorf("delete roles: %w", err)
	}
	return nil
}

func (c *RoleCollection) CountDocuments(ctx context.Context) (int64, error) {
	n, err := c.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("count roles: %w", err)
	}
	return n, nil
}

type UserRoleCollection struct {
	coll *mongo.Collection
}

func NewUserRoleCollection(db *mongo.Database) *UserRoleCollection {
	return &UserRoleCollection{coll: db.Collection(userRolesCollection)}
}

func (c *UserRoleCollection) Create(ctx context.Context, userRole *store.UserRole) (*store.UserRole, error) {
	if userRole.ID == "" {
		userRole.ID = uuid.New().String()
	}
	doc := userRoleDocument{ID: userRole.ID, UserID: userRole.UserID, RoleID: userRole.RoleID}
	if _, err := c.coll.InsertOne(ctx, doc); err != nil {
		return nil, translateError(err)
	}
	return userRole, nil
}

// DeleteMany removes assignments of the given roles. An empty slice removes every assignment.
func (c *UserRoleCollection) DeleteMany(ctx context.Context, roleIDs []string) error {
	filter := bson.D{}
	if len(roleIDs) > 0 {
		filter = bson.D{{Key: "role_id", Value: bson.D{{Key: "$in", Value: roleIDs}}}}
	}
	if _, err := c.coll.DeleteMany(ctx, filter); err != nil {
		return fmt.Errorf("delete user roles: %w", err)
	}
	return nil
}

func (c *UserRoleCollection) CountDocuments(ctx context.Context) (int64, error) {
	n, err := c.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("count user roles: %w", err)
	}
	return n, nil
}

// EnsureIndexes creates the unique and lookup indexes the collections rely on.
// The unique indexes are the final arbiter of username and email uniqueness.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true).SetName(usernameIndex)},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName(emailIndex)},
			{Keys: bson.D{{Key: "activation_code", Value: 1}}, Options: options.Index().SetName("activation_code")},
			{Keys: bson.D{{Key: "consumed_activation_code", Value: 1}}, Options: options.Index().SetName("consumed_activation_code")},
			{Keys: bson.D{{Key: "reset_password_code", Value: 1}}, Options: options.Index().SetName("reset_password_code")},
		},
		rolesCollection: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true).SetName("name_unique")},
		},
		userRolesCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "role_id", Value: 1}}, Options: options.Index().SetUnique(true).SetName("user_role_unique")},
		},
	}

	for name, models := range indexes {
		created, err := db.Collection(name).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
		log.WithField("collection", name).Debugf("Ensured indexes %v", created)
	}
	return nil
}
