package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"github.com/iho/computeledger/internal/domain"
)

// Event publisher kinds.
const (
	PublisherNone  = "none"
	PublisherLog   = "log"
	PublisherNATS  = "nats"
	PublisherKafka = "kafka"
)

// Config holds all application configuration.
type Config struct {
	// Database
	DatabaseURL            string        `env:"DATABASE_URL"`
	DatabaseMaxConns       int           `env:"DATABASE_MAX_CONNS"        envDefault:"25"`
	DatabaseMinConns       int           `env:"DATABASE_MIN_CONNS"        envDefault:"2"`
	DatabaseConnectTimeout time.Duration `env:"DATABASE_CONNECT_TIMEOUT"  envDefault:"30s"`
	DatabaseMigrateOnStart bool          `env:"DATABASE_MIGRATE_ON_START" envDefault:"false"`

	// Redis (optional - leave empty to disable idempotency keys)
	RedisURL string `env:"REDIS_URL"`

	// HTTP Server
	HTTPPort            string        `env:"HTTP_PORT"             envDefault:"8080"`
	HTTPReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT"     envDefault:"30s"`
	HTTPWriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT"    envDefault:"30s"`
	HTTPIdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT"     envDefault:"60s"`
	HTTPShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	HTTPRequestTimeout  time.Duration `env:"HTTP_REQUEST_TIMEOUT"  envDefault:"15s"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Idempotency
	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL" envDefault:"24h"`

	// Authentication (optional - leave empty to disable)
	JWTSecret     string        `env:"JWT_SECRET"     envDefault:""`
	JWTExpiration time.Duration `env:"JWT_EXPIRATION" envDefault:"24h"`
	AuthEnabled   bool          `env:"AUTH_ENABLED"   envDefault:"false"`

	// Rate limiting (0 disables)
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS"   envDefault:"0"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"20"`

	// Outbox publishing
	EventPublisher    string        `env:"EVENT_PUBLISHER"     envDefault:"none"`
	NATSURL           string        `env:"NATS_URL"            envDefault:"nats://localhost:4222"`
	NATSSubjectPrefix string        `env:"NATS_SUBJECT_PREFIX" envDefault:"computeledger"`
	KafkaBrokers      []string      `env:"KAFKA_BROKERS"       envDefault:"localhost:9092" envSeparator:","`
	KafkaTopic        string        `env:"KAFKA_TOPIC"         envDefault:"compute-ledger-events"`
	OutboxInterval    time.Duration `env:"OUTBOX_INTERVAL"     envDefault:"1s"`
	OutboxBatchSize   int           `env:"OUTBOX_BATCH_SIZE"   envDefault:"100"`
}

// Load reads an optional .env file, then environment variables.
// Variables already set in the environment win over .env values.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate reports configuration the server cannot start with.
// A missing DATABASE_URL is a storage availability failure.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("%w: DATABASE_URL is not configured", domain.ErrStorageUnavailable)
	}

	if c.AuthEnabled && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when AUTH_ENABLED is true")
	}

	switch c.EventPublisher {
	case PublisherNone, PublisherLog, PublisherNATS, PublisherKafka:
	default:
		return fmt.Errorf("unknown EVENT_PUBLISHER %q", c.EventPublisher)
	}

	if c.OutboxBatchSize <= 0 {
		return fmt.Errorf("OUTBOX_BATCH_SIZE must be positive")
	}

	return nil
}
