package config

import (
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/walletquest/gamification-service/internal/platform/envconfig"
)

// Datastore backends.
const (
	DatastoreMemory    = "memory"
	DatastoreFirestore = "firestore"
	DatastorePostgres  = "postgres"
)

type Config struct {
	Port      string `validate:"required,numeric"`
	LogLevel  string `validate:"required,oneof=debug info warn warning error"`
	DataStore string `validate:"required,oneof=memory firestore postgres"`
	// Timezone is the IANA zone used for streak day boundaries.
	Timezone  string `validate:"required"`
	Location  *time.Location
	Auth      AuthConfig
	Firestore FirestoreConfig
	Postgres  PostgresConfig
	RabbitMQ  RabbitMQConfig
}

type AuthConfig struct {
	Mode     string `validate:"required,oneof=noop clerk"`
	JWKSURL  string `validate:"omitempty,url"`
	Audience string
	Issuer   string
}

type FirestoreConfig struct {
	ProjectID    string
	Database     string
	EmulatorHost string
}

type PostgresConfig struct {
	URL string
}

// RabbitMQConfig enables the transaction event consumer when URL is set.
type RabbitMQConfig struct {
	URL        string
	Exchange   string `validate:"required"`
	Queue      string `validate:"required"`
	RoutingKey string `validate:"required"`
}

// Load reads the configuration from the environment, after applying an optional .env file.
func Load() (Config, error) {
	if err := envconfig.LoadDotEnv(); err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:      envconfig.Get("PORT", "8080"),
		LogLevel:  envconfig.Get("LOG_LEVEL", "info"),
		DataStore: envconfig.Get("DATASTORE", DatastoreMemory),
		Timezone:  envconfig.Get("GAMIFICATION_TIMEZONE", "UTC"),
		Auth: AuthConfig{
			Mode:     envconfig.Get("AUTH_MODE", "noop"),
			JWKSURL:  envconfig.Get("CLERK_JWKS_URL", ""),
			Audience: envconfig.Get("CLERK_AUDIENCE", ""),
			Issuer:   envconfig.Get("CLERK_ISSUER", ""),
		},
		Firestore: FirestoreConfig{
			ProjectID:    envconfig.Get("GCP_PROJECT_ID", ""),
			Database:     envconfig.Get("FIRESTORE_DATABASE", "(default)"),
			EmulatorHost: envconfig.Get("FIRESTORE_EMULATOR_HOST", ""),
		},
		Postgres: PostgresConfig{
			URL: envconfig.Get("DATABASE_URL", ""),
		},
		RabbitMQ: RabbitMQConfig{
			URL:        envconfig.Get("RABBITMQ_URL", ""),
			Exchange:   envconfig.Get("RABBITMQ_EXCHANGE", "bank.operations"),
			Queue:      envconfig.Get("RABBITMQ_QUEUE", "gamification.transactions"),
			RoutingKey: envconfig.Get("RABBITMQ_ROUTING_KEY", "bank.operations.transaction.#"),
		},
	}

	if err := envconfig.Validate(cfg); err != nil {
		return cfg, err
	}
	if err := cfg.validateDependencies(); err != nil {
		return cfg, err
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return cfg, fmt.Errorf("invalid GAMIFICATION_TIMEZONE: %w", err)
	}
	cfg.Location = loc

	return cfg, nil
}

func (c Config) validateDependencies() error {
	switch c.DataStore {
	case DatastoreFirestore:
		if c.Firestore.ProjectID == "" {
			return fmt.Errorf("GCP_PROJECT_ID is required when DATASTORE=%s", DatastoreFirestore)
		}
	case DatastorePostgres:
		if c.Postgres.URL == "" {
			return fmt.Errorf("DATABASE_URL is required when DATASTORE=%s", DatastorePostgres)
		}
	}
	if c.Auth.Mode == "clerk" && c.Auth.JWKSURL == "" {
		return fmt.Errorf("CLERK_JWKS_URL is required when AUTH_MODE=clerk")
	}
	return nil
}
