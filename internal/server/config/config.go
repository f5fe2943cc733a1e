// Package config loads the intake server configuration from the environment
// and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// DevJWTSecret is the fallback signing secret. The server logs a warning when
// it is in use.
const DevJWTSecret = "dev-secret-change"

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	HTTPAddr       string `mapstructure:"INTAKE_HTTP_ADDR"`
	DatabaseDriver string `mapstructure:"INTAKE_DB_DRIVER"`
	DatabaseDSN    string `mapstructure:"INTAKE_DB_DSN"`

	JWTSecret  string `mapstructure:"INTAKE_JWT_SECRET"`
	JWTIssuer  string `mapstructure:"INTAKE_JWT_ISSUER"`
	SessionTTL string `mapstructure:"INTAKE_SESSION_TTL"`

	// ReviewerEmail and ReviewerPasswordHash form the single reviewer login.
	// The hash is an Argon2id PHC string (see `intake hash-password`).
	ReviewerEmail        string `mapstructure:"INTAKE_REVIEWER_EMAIL"`
	ReviewerPasswordHash string `mapstructure:"INTAKE_REVIEWER_PASSWORD_HASH"`
	RequireReviewerToken bool   `mapstructure:"INTAKE_REQUIRE_REVIEWER_TOKEN"`

	// CardKeyFile holds the AES-256 key sealing payment fields at rest. It is
	// created on first start when missing.
	CardKeyFile     string `mapstructure:"INTAKE_CARD_KEY_FILE"`
	MaxRequestBytes int64  `mapstructure:"INTAKE_MAX_REQUEST_BYTES"`

	LogLevel  string `mapstructure:"INTAKE_LOG_LEVEL"`
	LogFormat string `mapstructure:"INTAKE_LOG_FORMAT"`
}

func Load() (Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // a missing .env is fine

	v.AutomaticEnv()

	v.SetDefault("INTAKE_HTTP_ADDR", ":8080")
	v.SetDefault("INTAKE_DB_DRIVER", DriverSQLite)
	v.SetDefault("INTAKE_DB_DSN", "file:intake.db?cache=shared&mode=rwc")
	v.SetDefault("INTAKE_JWT_SECRET", DevJWTSecret)
	v.SetDefault("INTAKE_JWT_ISSUER", "intake-server")
	v.SetDefault("INTAKE_SESSION_TTL", "8h")
	v.SetDefault("INTAKE_REVIEWER_EMAIL", "")
	v.SetDefault("INTAKE_REVIEWER_PASSWORD_HASH", "")
	v.SetDefault("INTAKE_REQUIRE_REVIEWER_TOKEN", true)
	v.SetDefault("INTAKE_CARD_KEY_FILE", "intake_card.key")
	v.SetDefault("INTAKE_MAX_REQUEST_BYTES", 1<<20)
	v.SetDefault("INTAKE_LOG_LEVEL", "info")
	v.SetDefault("INTAKE_LOG_FORMAT", "json")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.HTTPAddr == "" {
		return errors.New("config: INTAKE_HTTP_ADDR must be set")
	}
	switch c.DatabaseDriver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("config: unsupported INTAKE_DB_DRIVER %q", c.DatabaseDriver)
	}
	if c.DatabaseDSN == "" {
		return errors.New("config: INTAKE_DB_DSN must be set")
	}
	if (c.ReviewerEmail == "") != (c.ReviewerPasswordHash == "") {
		return errors.New("config: INTAKE_REVIEWER_EMAIL and INTAKE_REVIEWER_PASSWORD_HASH must be set together")
	}
	return nil
}

// SessionDuration parses SessionTTL. Returns 8h if unset or invalid.
func (c Config) SessionDuration() time.Duration {
	d, err := time.ParseDuration(c.SessionTTL)
	if err != nil || d <= 0 {
		return 8 * time.Hour
	}
	return d
}
