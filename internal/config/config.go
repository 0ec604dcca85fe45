// Package config loads the server configuration from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"

	EnvironmentProduction = "production"
)

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type MongoConfig struct {
	URI      string
	Database string
}

type JWTConfig struct {
	Secret    string
	Algorithm string
	ExpiresIn time.Duration
}

type MailConfig struct {
	Domain string
	APIKey string
	From   string
}

type Config struct {
	Port          string
	Environment   string
	LogLevel      string
	StorageDriver string

	Database DatabaseConfig
	Mongo    MongoConfig
	JWT      JWTConfig
	Mail     MailConfig

	ResetPasswordExpiresIn time.Duration

	VerifyEmailMX bool
	VerifierEmail string

	CORSAllowedOrigins []string
}

// Load reads envFile (a missing file is not an error) and builds the configuration from the environment.
func Load(envFile string) (*Config, error) {
	if err := godotenv.Load(envFile); err != nil {
		log.Info("No .env file found, using environment variables from system")
	} else {
		log.Info("Loaded environment variables from ", envFile)
	}

	jwtTTL, err := durationEnv("JWT_EXPIRES_IN", time.Hour)
	if err != nil {
		return nil, err
	}
	resetTTL, err := durationEnv("RESET_PASSWORD_EXPIRES_IN", time.Hour)
	if err != nil {
		return nil, err
	}
	verifyMX, err := strconv.ParseBool(getEnv("VERIFY_EMAIL_MX", "false"))
	if err != nil {
		return nil, fmt.Errorf("VERIFY_EMAIL_MX: %w", err)
	}

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "INFO"),
		StorageDriver: getEnv("STORAGE_DRIVER", DriverPostgres),
		Database: DatabaseConfig{
			Host:     os.Getenv("DB_HOST"),
			Port:     os.Getenv("DB_PORT"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASS"),
			Name:     os.Getenv("DB_NAME"),
		},
		Mongo: MongoConfig{
			URI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGO_DB", "tamuroo"),
		},
		JWT: JWTConfig{
			Secret:    os.Getenv("JWT_SECRET"),
			Algorithm: getEnv("JWT_ALGORITHM", "HS256"),
			ExpiresIn: jwtTTL,
		},
		Mail: MailConfig{
			Domain: os.Getenv("MAILGUN_DOMAIN"),
			APIKey: os.Getenv("MAILGUN_API_KEY"),
			From:   getEnv("MAIL_FROM", "Tamuroo <no-reply@tamuroo.com>"),
		},
		ResetPasswordExpiresIn: resetTTL,
		VerifyEmailMX:          verifyMX,
		VerifierEmail:          os.Getenv("VERIFIER_EMAIL"),
		CORSAllowedOrigins:     splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173")),
	}

	return cfg, nil
}

// Validate checks the settings the selected storage driver and the session issuer need.
func (c *Config) Validate() error {
	var errs []error

	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET must be set"))
	}
	if c.JWT.ExpiresIn <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRES_IN must be positive"))
	}
	if c.ResetPasswordExpiresIn <= 0 {
		errs = append(errs, errors.New("RESET_PASSWORD_EXPIRES_IN must be positive"))
	}

	switch c.StorageDriver {
	case DriverPostgres:
		db := c.Database
		if db.Host == "" || db.Port == "" || db.User == "" || db.Password == "" || db.Name == "" {
			errs = append(errs, errors.New("database environment variables not set"))
		}
	case DriverMongo:
		if c.Mongo.URI == "" || c.Mongo.Database == "" {
			errs = append(errs, errors.New("MONGO_URI and MONGO_DB must be set"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver))
	}

	if c.VerifyEmailMX && c.VerifierEmail == "" {
		errs = append(errs, errors.New("VERIFIER_EMAIL must be set when VERIFY_EMAIL_MX is enabled"))
	}

	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return c.Environment == EnvironmentProduction
}

// LogFields returns the non-secret settings for the startup log line.
func (c *Config) LogFields() log.Fields {
	return log.Fields{
		"port":        c.Port,
		"environment": c.Environment,
		"storage":     c.StorageDriver,
		"jwtAlg":      c.JWT.Algorithm,
		"jwtTTL":      c.JWT.ExpiresIn.String(),
		"resetTTL":    c.ResetPasswordExpiresIn.String(),
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

// durationEnv accepts Go durations ("1h", "90m") and bare millisecond counts ("3600000").
func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
