package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Session backends
const (
	SessionBackendCookie   = "cookie"
	SessionBackendPostgres = "postgres"
)

// Config holds application configuration
type Config struct {
	Port            string        `env:"PORT" env-default:"3000"`
	DBConn          string        `env:"DB_CONN" env-default:"host=localhost port=5432 user=postgres password=postgres dbname=passport_local sslmode=disable"`
	LogLevel        string        `env:"LOG_LEVEL" env-default:"info"`
	MigrateOnStart  bool          `env:"MIGRATE_ON_START" env-default:"true"`
	BcryptCost      int           `env:"BCRYPT_COST" env-default:"10"`
	AllowedOrigins  []string      `env:"CORS_ALLOWED_ORIGINS" env-separator:","`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"5s"`

	SessionName            string        `env:"SESSION_NAME" env-default:"session"`
	SessionSecret          string        `env:"SESSION_SECRET" env-default:"change_me_in_production"`
	SessionEncryptionKey   string        `env:"SESSION_ENCRYPTION_KEY"`
	SessionMaxAge          time.Duration `env:"SESSION_MAX_AGE" env-default:"24h"`
	SessionSecure          bool          `env:"SESSION_SECURE" env-default:"false"`
	SessionBackend         string        `env:"SESSION_BACKEND" env-default:"cookie"`
	SessionCleanupSchedule string        `env:"SESSION_CLEANUP_SCHEDULE" env-default:"@every 1h"`
}

// NewConfig loads configuration from an optional .env file and environment variables
func NewConfig() (*Config, error) {
	if path := os.Getenv("ENV_FILE"); path != "" {
		if err := godotenv.Load(path); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	} else {
		// a missing .env is fine, the environment is used as is
		_ = godotenv.Load()
	}

	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required values and their formats
func (c *Config) Validate() error {
	if c.DBConn == "" {
		return fmt.Errorf("DB_CONN is required")
	}
	if c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET is required")
	}
	if c.SessionName == "" {
		return fmt.Errorf("SESSION_NAME is required")
	}
	switch c.SessionBackend {
	case SessionBackendCookie, SessionBackendPostgres:
	default:
		return fmt.Errorf("SESSION_BACKEND must be %q or %q, got %q",
			SessionBackendCookie, SessionBackendPostgres, c.SessionBackend)
	}
	if n := len(c.SessionEncryptionKey); n != 0 && n != 16 && n != 24 && n != 32 {
		return fmt.Errorf("SESSION_ENCRYPTION_KEY must be 16, 24, or 32 bytes, got %d", n)
	}
	if c.SessionMaxAge <= 0 {
		return fmt.Errorf("SESSION_MAX_AGE must be positive")
	}
	return nil
}
