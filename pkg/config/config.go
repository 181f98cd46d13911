// Package config loads process configuration from the environment and an
// optional sweep schedule file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Supported backends.
const (
	StoreDynamoDB = "dynamodb"
	StoreMemory   = "memory"

	GatewayStripe  = "stripe"
	GatewaySandbox = "sandbox"
)

// Config is shared by the API server and the lambdas.
type Config struct {
	Port       string `env:"PORT" envDefault:"8080"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	InstanceID string `env:"INSTANCE_ID"`

	Store             string `env:"STORE_BACKEND" envDefault:"dynamodb"`
	TransactionsTable string `env:"DYNAMODB_TRANSACTIONS_TABLE_NAME"`
	EventsTable       string `env:"DYNAMODB_EVENTS_TABLE_NAME"`
	DisputesTable     string `env:"DYNAMODB_DISPUTES_TABLE_NAME"`

	Gateway             string        `env:"PAYMENT_GATEWAY" envDefault:"stripe"`
	StripeSecretKey     string        `env:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string        `env:"STRIPE_WEBHOOK_SECRET"`
	StripeAPIBase       string        `env:"STRIPE_API_BASE"`
	GatewayTimeout      time.Duration `env:"GATEWAY_TIMEOUT" envDefault:"10s"`
	GatewayMaxAttempts  uint          `env:"GATEWAY_MAX_ATTEMPTS" envDefault:"3"`
	LeaseTTL            time.Duration `env:"LEASE_TTL" envDefault:"2m"`
	PlatformFeeBPS      int64         `env:"PLATFORM_FEE_BPS" envDefault:"500"`

	StaleAuthorizationAfter time.Duration `env:"STALE_AUTHORIZATION_AFTER" envDefault:"24h"`
	DeliveryWindow          time.Duration `env:"DELIVERY_WINDOW" envDefault:"48h"`
	ReminderLead            time.Duration `env:"RENTAL_REMINDER_LEAD" envDefault:"24h"`
	SweepEnabled            bool          `env:"SWEEP_ENABLED" envDefault:"false"`
	ScheduleFile            string        `env:"SWEEP_SCHEDULE_FILE"`

	RedisURL               string `env:"REDIS_URL"`
	RiskReviewAbove        int64  `env:"RISK_REVIEW_ABOVE"`
	RequireVerifiedSellers bool   `env:"RISK_REQUIRE_VERIFIED_SELLERS"`

	NotifySQSQueueURL string        `env:"NOTIFY_SQS_QUEUE_URL"`
	KafkaBrokers      []string      `env:"NOTIFY_KAFKA_BROKERS" envSeparator:","`
	KafkaTopic        string        `env:"NOTIFY_KAFKA_TOPIC" envDefault:"escrow-notifications"`
	NotifyWorkers     int           `env:"NOTIFY_WORKERS" envDefault:"4"`
	NotifyQueueSize   int           `env:"NOTIFY_QUEUE_SIZE" envDefault:"1024"`
	NotifyTimeout     time.Duration `env:"NOTIFY_TIMEOUT" envDefault:"5s"`

	OTelEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// Load reads a .env file when present, then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.InstanceID == "" {
		cfg.InstanceID, _ = os.Hostname()
	}
	return &cfg, nil
}

// Validate reports settings that cannot work together.
func (c *Config) Validate() error {
	var errs []error
	switch c.Store {
	case StoreDynamoDB:
		if c.TransactionsTable == "" || c.EventsTable == "" || c.DisputesTable == "" {
			errs = append(errs, errors.New("one or more DynamoDB table name environment variables are not set"))
		}
	case StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_BACKEND %q", c.Store))
	}
	switch c.Gateway {
	case GatewayStripe:
		if c.StripeSecretKey == "" {
			errs = append(errs, errors.New("STRIPE_SECRET_KEY is not set"))
		}
	case GatewaySandbox:
	default:
		errs = append(errs, fmt.Errorf("unknown PAYMENT_GATEWAY %q", c.Gateway))
	}
	if c.PlatformFeeBPS < 0 || c.PlatformFeeBPS > 10000 {
		errs = append(errs, fmt.Errorf("PLATFORM_FEE_BPS must be between 0 and 10000, got %d", c.PlatformFeeBPS))
	}
	if c.GatewayMaxAttempts == 0 {
		errs = append(errs, errors.New("GATEWAY_MAX_ATTEMPTS must be at least 1"))
	}
	if c.LeaseTTL <= c.GatewayTimeout*time.Duration(c.GatewayMaxAttempts) {
		errs = append(errs, fmt.Errorf("LEASE_TTL %s must exceed the gateway retry budget", c.LeaseTTL))
	}
	return errors.Join(errs...)
}

// Level maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
