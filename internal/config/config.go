package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/utafrali/commerce-auth/pkg/config"
	"github.com/utafrali/commerce-auth/pkg/database"
)

const (
	defaultAccessSecret  = "dev-access-secret-change-in-production"
	defaultRefreshSecret = "dev-refresh-secret-change-in-production"
	minSecretLength      = 32
)

// Config holds all configuration for the auth service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"AUTH_HTTP_PORT" envDefault:"8001"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"commerce"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"commerce_secret"`
	PostgresDB   string `env:"AUTH_DB_NAME" envDefault:"commerce_auth"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Kafka. Leave brokers empty to disable event publishing.
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// JWT. Access and refresh tokens are signed with independent secrets.
	JWTAccessSecret  string        `env:"JWT_ACCESS_SECRET" envDefault:"dev-access-secret-change-in-production"`
	JWTRefreshSecret string        `env:"JWT_REFRESH_SECRET" envDefault:"dev-refresh-secret-change-in-production"`
	JWTAccessExpiry  time.Duration `env:"JWT_ACCESS_TOKEN_EXPIRY" envDefault:"15m"`
	JWTRefreshExpiry time.Duration `env:"JWT_REFRESH_TOKEN_EXPIRY" envDefault:"168h"`

	// Password hashing
	BcryptCost int `env:"BCRYPT_COST" envDefault:"12"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load auth config: %w", err)
	}

	if cfg.HTTPPort < 1 || cfg.HTTPPort > 65535 {
		return nil, fmt.Errorf("invalid HTTP port: %d", cfg.HTTPPort)
	}

	if cfg.JWTAccessSecret == cfg.JWTRefreshSecret {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ")
	}

	if cfg.JWTAccessExpiry <= 0 || cfg.JWTRefreshExpiry <= 0 {
		return nil, fmt.Errorf("token expiries must be positive")
	}

	// Outside development, both secrets must be explicitly set and strong.
	if cfg.Environment != "development" {
		if cfg.JWTAccessSecret == defaultAccessSecret || cfg.JWTRefreshSecret == defaultRefreshSecret {
			return nil, fmt.Errorf("JWT secrets must be explicitly set via environment variables in %q mode", cfg.Environment)
		}
		if len(cfg.JWTAccessSecret) < minSecretLength || len(cfg.JWTRefreshSecret) < minSecretLength {
			return nil, fmt.Errorf("JWT secrets must be at least %d characters long", minSecretLength)
		}
	}

	return cfg, nil
}

// PostgresConfig returns the database pool configuration.
func (c *Config) PostgresConfig() database.PostgresConfig {
	pg := database.DefaultPostgresConfig()
	pg.Host = c.PostgresHost
	pg.Port = c.PostgresPort
	pg.User = c.PostgresUser
	pg.Password = c.PostgresPass
	pg.DBName = c.PostgresDB
	pg.SSLMode = c.PostgresSSL
	return pg
}
