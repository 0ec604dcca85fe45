package managers

import (
	"context"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"tamuroo-server/internal/interfaces"
	"tamuroo-server/internal/store"
	"tamuroo-server/internal/store/mongodb"
	"tamuroo-server/internal/store/postgres"
)

// DatabaseMgr owns the single process-wide storage handle.
// It is created once at startup and closed on shutdown.
type DatabaseMgr interface {
	Collections() store.Collections
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// PostgresDatabaseManager wraps the pgx connection pool.
type PostgresDatabaseManager struct {
	Pool        interfaces.PgxPoolIface
	collections store.Collections
}

func NewPostgresDatabaseManager(pool interfaces.PgxPoolIface) *PostgresDatabaseManager {
	log.Info("Initializing database manager (postgres)")
	return &PostgresDatabaseManager{Pool: pool, collections: postgres.New(pool)}
}

func (dbMgr *PostgresDatabaseManager) Collections() store.Collections {
	return dbMgr.collections
}

func (dbMgr *PostgresDatabaseManager) Ping(ctx context.Context) error {
	return dbMgr.Pool.Ping(ctx)
}

func (dbMgr *PostgresDatabaseManager) Close(context.Context) error {
	dbMgr.Pool.Close()
	return nil
}

// MongoDatabaseManager wraps the MongoDB client and the selected database.
type MongoDatabaseManager struct {
	Client      *mongo.Client
	Database    *mongo.Database
	collections store.Collections
}

func NewMongoDatabaseManager(client *mongo.Client, database string) *MongoDatabaseManager {
	log.Info("Initializing database manager (mongo)")
	db := client.Database(database)
	return &MongoDatabaseManager{Client: client, Database: db, collections: mongodb.New(db)}
}

func (dbMgr *MongoDatabaseManager) Collections() store.Collections {
	return dbMgr.collections
}

func (dbMgr *MongoDatabaseManager) Ping(ctx context.Context) error {
	return dbMgr.Client.Ping(ctx, readpref.Primary())
}

func (dbMgr *MongoDatabaseManager) Close(ctx context.Context) error {
	return dbMgr.Client.Disconnect(ctx)
}
