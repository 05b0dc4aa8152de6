package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/tugrulb/escrowmarket/pkg/config"
)

// Config holds all configuration for the marketplace service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"HTTP_PORT" envDefault:"8080"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"marketplace"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"marketplace_secret"`
	PostgresDB   string `env:"POSTGRES_DB" envDefault:"marketplace"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Redis, used for the escrow reconcile tracker.
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Auth
	JWTSecret    string        `env:"JWT_SECRET" envDefault:"dev-secret-change-me"`
	AccessExpiry time.Duration `env:"JWT_ACCESS_EXPIRY" envDefault:"1h"`

	// Escrow gateway, the HTTP facade in front of the on-chain programs.
	EscrowGatewayURL string        `env:"ESCROW_GATEWAY_URL" envDefault:"http://localhost:8090"`
	EscrowTimeout    time.Duration `env:"ESCROW_TIMEOUT" envDefault:"10s"`

	// Marketplace fee charged on each order, in basis points.
	FeeBasisPoints int `env:"FEE_BASIS_POINTS" envDefault:"250"`

	// Tracing
	TracingEnabled    bool    `env:"TRACING_ENABLED" envDefault:"false"`
	TracingEndpoint   string  `env:"TRACING_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	TracingSampleRate float64 `env:"TRACING_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// Validate checks cross-field rules; pkgconfig.Load calls it after parsing.
func (c *Config) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.FeeBasisPoints < 0 || c.FeeBasisPoints > 1000 {
		return fmt.Errorf("fee basis points out of range: %d", c.FeeBasisPoints)
	}
	if c.EscrowGatewayURL == "" {
		return fmt.Errorf("escrow gateway URL is required")
	}
	return nil
}

// PostgresDSN returns the PostgreSQL connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.PostgresUser, c.PostgresPass, c.PostgresHost, c.PostgresPort, c.PostgresDB, c.PostgresSSL,
	)
}
