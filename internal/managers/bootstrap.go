package managers

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"tamuroo-server/internal/store"
)

const (
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
)

// DefaultRoles are seeded by the bootstrap command.
var DefaultRoles = []string{RoleAdmin, RoleModerator}

// Bootstrap seeds the default roles into an empty role collection and, when adminUsername
// is set, assigns the admin role to that user. Running it twice is harmless.
func Bootstrap(ctx context.Context, collections store.Collections, adminUsername string) error {
	count, err := collections.Roles.CountDocuments(ctx)
	if err != nil {
		return err
	}

	if count == 0 {
		for _, name := range DefaultRoles {
			if _, err := collections.Roles.Create(ctx, &store.Role{Name: name}); err != nil {
				return fmt.Errorf("create role %s: %w", name, err)
			}
			log.Info("Created role ", name)
		}
	} else {
		log.Infof("Found %d roles, skipping role seed", count)
	}

	if adminUsername == "" {
		return nil
	}

	user, err := collections.Users.FindOne(ctx, store.UserFilter{Username: adminUsername})
	if err != nil {
		return fmt.Errorf("find user %s: %w", adminUsername, err)
	}
	role, err := collections.Roles.FindOne(ctx, RoleAdmin)
	if err != nil {
		return fmt.Errorf("find role %s: %w", RoleAdmin, err)
	}

	_, err = collections.UserRoles.Create(ctx, &store.UserRole{UserID: user.ID, RoleID: role.ID})
	var dupErr *store.DuplicateKeyError
	if errors.As(err, &dupErr) {
		log.Infof("User %s already has role %s", adminUsername, RoleAdmin)
		return nil
	}
	if err != nil {
		return fmt.Errorf("assign role: %w", err)
	}

	log.Infof("Assigned role %s to %s", RoleAdmin, adminUsername)
	return nil
}

// TeardownBootstrap removes the default roles and every assignment of them.
func TeardownBootstrap(ctx context.Context, collections store.Collections) error {
	var roleIDs []string
	for _, name := range DefaultRoles {
		role, err := collections.Roles.FindOne(ctx, name)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("find role %s: %w", name, err)
		}
		roleIDs = append(roleIDs, role.ID)
	}

	if len(roleIDs) > 0 {
		if err := collections.UserRoles.DeleteMany(ctx, roleIDs); err != nil {
			return err
		}
	}
	if err := collections.Roles.DeleteMany(ctx, DefaultRoles); err != nil {
		return err
	}

	log.Info("Removed default roles")
	return nil
}
