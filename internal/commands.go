package internal

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"tamuroo-server/internal/config"
	"tamuroo-server/internal/managers"
	"tamuroo-server/internal/store/postgres"
)

var errMongoDownUnsupported = errors.New("migrate down is not supported for the mongo driver")

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
		Long: `Apply or roll back the embedded PostgreSQL migrations.
For the mongo driver "up" creates the collection indexes.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return migrateUp(cmd.Context(), cfg)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back every migration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return migrateDown(cfg)
		},
	})

	return cmd
}

func migrateUp(ctx context.Context, cfg *config.Config) error {
	if cfg.StorageDriver == config.DriverMongo {
		databaseMgr, err := initializeMongo(ctx, cfg.Mongo)
		if err != nil {
			return err
		}
		return databaseMgr.Close(context.Background())
	}

	m, err := postgres.NewMigrator(migrationURL(cfg.Database))
	if err != nil {
		return err
	}
	defer closeMigrator(m)

	log.Info("Running migrations...")
	return m.Up()
}

func migrateDown(cfg *config.Config) error {
	if cfg.StorageDriver == config.DriverMongo {
		return errMongoDownUnsupported
	}

	m, err := postgres.NewMigrator(migrationURL(cfg.Database))
	if err != nil {
		return err
	}
	defer closeMigrator(m)

	log.Info("Rolling back migrations...")
	return m.Down()
}

func closeMigrator(m *postgres.Migrator) {
	if err := m.Close(); err != nil {
		log.Warn("Error closing migrator: ", err)
	}
}

func newBootstrapCmd() *cobra.Command {
	var (
		adminUsername string
		down          bool
	)

	cmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Seed the default roles",
		Long: `Seed the admin and moderator roles and optionally grant the admin role
to an existing user. With --down the roles and their assignments are removed.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			databaseMgr, err := initializeDatabase(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() {
				if err := databaseMgr.Close(context.Background()); err != nil {
					log.Error("Error closing database: ", err)
				}
			}()

			if down {
				if err := managers.TeardownBootstrap(ctx, databaseMgr.Collections()); err != nil {
					return fmt.Errorf("teardown: %w", err)
				}
				log.Info("Removed default roles")
				return nil
			}

			if err := managers.Bootstrap(ctx, databaseMgr.Collections(), adminUsername); err != nil {
				return fmt.Errorf("bootstrap: %w", err)
			}
			log.Info("Bootstrap complete")
			return nil
		},
	}
	cmd.Flags().StringVar(&adminUsername, "admin", "", "username to grant the admin role")
	cmd.Flags().BoolVar(&down, "down", false, "remove the default roles instead of seeding them")

	return cmd
}
