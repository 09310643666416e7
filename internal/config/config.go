package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the server configuration.
type Config struct {
	Port string `env:"PORT" envDefault:"8080"`

	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD" envDefault:"postgres"`
	DBName     string `env:"DB_NAME" envDefault:"salon_db"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`

	JWTSecret string        `env:"JWT_SECRET" envDefault:"supersecret_change_me"`
	TokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"12h"`

	AdminEmail    string `env:"ADMIN_EMAIL" envDefault:"admin@example.com"`
	AdminPassword string `env:"ADMIN_PASSWORD" envDefault:"admin123"`
	AdminFullName string `env:"ADMIN_FULL_NAME" envDefault:"Administrator"`
	// SeedCatalog inserts a starter service menu into an empty database.
	SeedCatalog bool `env:"SEED_CATALOG" envDefault:"false"`

	// LoginRate is a ulule/limiter formatted rate, e.g. "10-M".
	LoginRate   string `env:"LOGIN_RATE" envDefault:"10-M"`
	MetricsPath string `env:"METRICS_PATH" envDefault:"/metrics"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogJSON  bool   `env:"LOG_JSON" envDefault:"false"`
	GinMode  string `env:"GIN_MODE" envDefault:"release"`
}

// DSN is the postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode,
	)
}

// ClientConfig configures the operator CLI.
type ClientConfig struct {
	APIURL     string        `env:"SALON_API_URL" envDefault:"http://localhost:8080/api/v1"`
	Timeout    time.Duration `env:"SALON_API_TIMEOUT" envDefault:"15s"`
	Retries    uint64        `env:"SALON_API_RETRIES" envDefault:"2"`
	PageSize   int           `env:"SALON_PAGE_SIZE" envDefault:"10"`
	TokenFile  string        `env:"SALON_TOKEN_FILE"`
	LogLevel   string        `env:"SALON_LOG_LEVEL" envDefault:"warn"`
	LogJSON    bool          `env:"SALON_LOG_JSON" envDefault:"false"`
	AssumeYes  bool          `env:"SALON_ASSUME_YES" envDefault:"false"`
	configHome string
}

// TokenPath is where the CLI keeps the bearer token between runs.
func (c *ClientConfig) TokenPath() string {
	if c.TokenFile != "" {
		return c.TokenFile
	}
	return filepath.Join(c.configHome, "salonctl", "token")
}

// Load reads .env (non-fatal if missing) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse server config: %w", err)
	}
	return cfg, nil
}

func LoadClient() (*ClientConfig, error) {
	_ = godotenv.Load()
	cfg := &ClientConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse client config: %w", err)
	}
	home, err := os.UserConfigDir()
	if err != nil {
		home = os.TempDir()
	}
	cfg.configHome = home
	if cfg.PageSize <= 0 {
		cfg.PageSize = 10
	}
	return cfg, nil
}
