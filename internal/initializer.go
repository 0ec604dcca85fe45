package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"tamuroo-server/internal/config"
	"tamuroo-server/internal/managers"
	"tamuroo-server/internal/metrics"
	"tamuroo-server/internal/routing"
	"tamuroo-server/internal/store/mongodb"
	"tamuroo-server/internal/store/postgres"
	"tamuroo-server/internal/validation"
)

const (
	defaultEnvFile  = ".env"
	shutdownTimeout = 10 * time.Second
	connectTimeout  = 10 * time.Second
)

// Global flags available to all subcommands.
var (
	envFile string
	port    string
)

// Execute runs the command line. Without a subcommand the server is started.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		log.Fatal(err)
	}
}

func NewRootCmd() *cobra.Command {
	serveCmd := newServeCmd()

	cmd := &cobra.Command{
		Use:           "tamuroo-server",
		Short:         "Tamuroo account server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serveCmd.RunE,
	}
	cmd.PersistentFlags().StringVar(&envFile, "env-file", defaultEnvFile, "path of the .env file to load")
	cmd.PersistentFlags().StringVar(&port, "port", "", "listen port, overrides PORT")

	cmd.AddCommand(serveCmd)
	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newBootstrapCmd())

	return cmd
}

func newServeCmd() *cobra.Command {
	var migrateFirst bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if migrateFirst {
				if err := migrateUp(cmd.Context(), cfg); err != nil {
					return err
				}
			}
			return serve(cfg)
		},
	}
	cmd.Flags().BoolVar(&migrateFirst, "migrate", false, "apply pending migrations before serving")

	return cmd
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	if port != "" {
		cfg.Port = port
	}

	setLogLevel(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	log.WithFields(cfg.LogFields()).Info("Loaded configuration")
	return cfg, nil
}

func serve(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	databaseMgr, err := initializeDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := databaseMgr.Close(closeCtx); err != nil {
			log.Error("Error closing database: ", err)
		}
	}()

	mailMgr := managers.NewMailManager(cfg.Mail.Domain, cfg.Mail.APIKey, cfg.Mail.From, cfg.IsProduction())

	jwtMgr, err := managers.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Algorithm, cfg.JWT.ExpiresIn)
	if err != nil {
		return err
	}

	var opts []managers.AccountManagerOption
	if cfg.VerifyEmailMX {
		verifier, err := validation.NewMXVerifier(cfg.VerifierEmail)
		if err != nil {
			return err
		}
		opts = append(opts, managers.WithEmailVerifier(verifier))
	}
	accountMgr := managers.NewAccountManager(databaseMgr.Collections().Users, managers.NewCredentialManager(),
		jwtMgr, mailMgr, cfg.ResetPasswordExpiresIn, opts...)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.RegisterMetrics(reg)

	r := routing.InitRouter(databaseMgr, accountMgr, routing.RouterOptions{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		SecureCookies:  cfg.IsProduction(),
		Gatherer:       reg,
	})
	log.Info("Initialized router")

	server := &http.Server{
		Addr:              net.JoinHostPort("", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Infof("Starting server on port %s...", cfg.Port)
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("error starting server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Server shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shut down: ", err)
	}

	// Let queued notification mails finish before the storage handle goes away.
	accountMgr.Wait()
	log.Info("Server stopped")
	return nil
}

func initializeDatabase(ctx context.Context, cfg *config.Config) (managers.DatabaseMgr, error) {
	log.WithField("driver", cfg.StorageDriver).Info("Initializing database")

	switch cfg.StorageDriver {
	case config.DriverMongo:
		return initializeMongo(ctx, cfg.Mongo)
	default:
		pool, err := initializePostgres(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		return managers.NewPostgresDatabaseManager(pool), nil
	}
}

func initializePostgres(ctx context.Context, db config.DatabaseConfig) (*pgxpool.Pool, error) {
	url := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable", db.Host, db.Port, db.User, db.Password, db.Name)
	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("error configuring database: %w", err)
	}

	poolConfig.MinConns = 5
	poolConfig.MaxConns = 30
	poolConfig.MaxConnIdleTime = time.Minute * 2
	poolConfig.HealthCheckPeriod = time.Minute * 1

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	log.Info("Connected to database")
	return pool, nil
}

func initializeMongo(ctx context.Context, cfg config.MongoConfig) (*managers.MongoDatabaseManager, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("error connecting to mongodb: %w", err)
	}
	databaseMgr := managers.NewMongoDatabaseManager(client, cfg.Database)

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := databaseMgr.Ping(pingCtx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("error connecting to mongodb: %w", err)
	}

	// Unique indexes back the username and email checks, so they must exist before serving.
	if err := mongodb.EnsureIndexes(ctx, databaseMgr.Database); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	log.Info("Connected to mongodb")
	return databaseMgr, nil
}

func migrationURL(db config.DatabaseConfig) string {
	return postgres.MigrationURL(db.Host, db.Port, db.User, db.Password, db.Name)
}

func setLogLevel(logLevel string) {
	switch logLevel {
	case "DEBUG":
		log.SetLevel(log.DebugLevel)
	case "INFO":
		log.SetLevel(log.InfoLevel)
	case "WARN":
		log.SetLevel(log.WarnLevel)
	case "ERROR":
		log.SetLevel(log.ErrorLevel)
	case "FATAL":
		log.SetLevel(log.FatalLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}

	log.SetReportCaller(true)

	log.SetOutput(os.Stdout)
}
