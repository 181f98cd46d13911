package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		t.Setenv("STORE_BACKEND", "memory")
		t.Setenv("PAYMENT_GATEWAY", "sandbox")
		t.Setenv("PLATFORM_FEE_BPS", "250")
		t.Setenv("NOTIFY_KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
		t.Setenv("LEASE_TTL", "90s")
		t.Setenv("INSTANCE_ID", "api-1")

		cfg, err := Load()

		require.NoError(t, err)
		assert.Equal(t, int64(250), cfg.PlatformFeeBPS)
		assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
		assert.Equal(t, 90*time.Second, cfg.LeaseTTL)
		assert.Equal(t, 10*time.Second, cfg.GatewayTimeout)
		assert.Equal(t, "api-1", cfg.InstanceID)
		assert.Equal(t, "8080", cfg.Port)
	})

	t.Run("Missing Tables Fails", func(t *testing.T) {
		t.Setenv("STORE_BACKEND", "dynamodb")
		t.Setenv("PAYMENT_GATEWAY", "sandbox")

		_, err := Load()

		assert.ErrorContains(t, err, "DynamoDB table name")
	})
}

func TestValidate(t *testing.T) {
	base := Config{
		Store:              StoreMemory,
		Gateway:            GatewaySandbox,
		PlatformFeeBPS:     500,
		GatewayTimeout:     10 * time.Second,
		GatewayMaxAttempts: 3,
		LeaseTTL:           2 * time.Minute,
	}

	t.Run("Success", func(t *testing.T) {
		assert.NoError(t, base.Validate())
	})

	t.Run("Stripe Without Key Fails", func(t *testing.T) {
		cfg := base
		cfg.Gateway = GatewayStripe

		assert.ErrorContains(t, cfg.Validate(), "STRIPE_SECRET_KEY")
	})

	t.Run("Lease Shorter Than Retry Budget Fails", func(t *testing.T) {
		cfg := base
		cfg.LeaseTTL = 30 * time.Second

		assert.ErrorContains(t, cfg.Validate(), "LEASE_TTL")
	})

	t.Run("Unknown Backends Fail", func(t *testing.T) {
		cfg := base
		cfg.Store = "postgres"
		cfg.Gateway = "paypal"

		err := cfg.Validate()
		assert.ErrorContains(t, err, "STORE_BACKEND")
		assert.ErrorContains(t, err, "PAYMENT_GATEWAY")
	})
}

func TestLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, (&Config{LogLevel: "DEBUG"}).Level())
	assert.Equal(t, slog.LevelInfo, (&Config{}).Level())
}

func TestLoadSchedule(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "schedule.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
jobs:
  stale-authorizations:
    interval: 5m
    jitter: 10s
  rental-reminders:
    disabled: true
`), 0o600))

		schedule, err := LoadSchedule(path)

		require.NoError(t, err)
		assert.Equal(t, JobSchedule{Interval: 5 * time.Minute, Jitter: 10 * time.Second}, schedule.Jobs["stale-authorizations"])
		assert.True(t, schedule.Jobs["rental-reminders"].Disabled)
		assert.Equal(t, time.Hour, schedule.Jobs["delivery-window"].Interval)
	})

	t.Run("Defaults Without File", func(t *testing.T) {
		schedule, err := LoadSchedule("")

		require.NoError(t, err)
		assert.Len(t, schedule.Jobs, 4)
	})

	t.Run("Unknown Job Fails", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "schedule.yaml")
		require.NoError(t, os.WriteFile(path, []byte("jobs:\n  compaction:\n    interval: 1m\n"), 0o600))

		_, err := LoadSchedule(path)

		assert.ErrorContains(t, err, "compaction")
	})
}
