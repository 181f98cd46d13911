package app

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/chris/marketplace-escrow/pkg/config"
	"github.com/chris/marketplace-escrow/pkg/escrow"
	"github.com/chris/marketplace-escrow/pkg/models"
	"github.com/chris/marketplace-escrow/pkg/scheduler"
	"github.com/chris/marketplace-escrow/pkg/storage/memory"
	"github.com/chris/marketplace-escrow/pkg/sweeper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func localConfig() *config.Config {
	return &config.Config{
		InstanceID:              "app-test",
		Store:                   config.StoreMemory,
		Gateway:                 config.GatewaySandbox,
		StripeWebhookSecret:     "whsec_test",
		GatewayTimeout:          time.Second,
		GatewayMaxAttempts:      1,
		LeaseTTL:                time.Minute,
		PlatformFeeBPS:          500,
		StaleAuthorizationAfter: 24 * time.Hour,
		DeliveryWindow:          48 * time.Hour,
		ReminderLead:            24 * time.Hour,
		NotifyWorkers:           1,
		NotifyQueueSize:         8,
		NotifyTimeout:           time.Second,
	}
}

func TestBuild(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("Success", func(t *testing.T) {
		a, err := Build(context.Background(), localConfig(), logger)
		require.NoError(t, err)
		t.Cleanup(func() { a.Close(context.Background()) })

		assert.IsType(t, &memory.Store{}, a.Store)
		res, err := a.Escrow.CreateAndAuthorize(context.Background(), escrow.User("buyer-1"), escrow.CreateRequest{
			Kind:    models.SALE,
			Parties: models.Parties{ListingId: "listing-1", BuyerId: "buyer-1", SellerId: "seller-1"},
			Amount:  10000,
		})
		require.NoError(t, err)
		assert.Equal(t, models.AUTHORIZED, res.Transaction.Status)
		assert.Equal(t, int64(500), res.Transaction.PlatformFee)
	})

	t.Run("Review Threshold", func(t *testing.T) {
		cfg := localConfig()
		cfg.RiskReviewAbove = 5000
		a, err := Build(context.Background(), cfg, logger)
		require.NoError(t, err)
		t.Cleanup(func() { a.Close(context.Background()) })

		res, err := a.Escrow.CreateAndAuthorize(context.Background(), escrow.User("buyer-1"), escrow.CreateRequest{
			Kind:    models.SALE,
			Parties: models.Parties{ListingId: "listing-1", BuyerId: "buyer-1", SellerId: "seller-1"},
			Amount:  10000,
		})
		require.NoError(t, err)
		assert.Equal(t, models.MANUAL_REVIEW, res.Transaction.Status)
	})
}

func TestScheduler(t *testing.T) {
	a, err := Build(context.Background(), localConfig(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { a.Close(context.Background()) })

	schedule := config.DefaultSchedule()
	disabled := schedule.Jobs[sweeper.JobRentalReminders]
	disabled.Disabled = true
	schedule.Jobs[sweeper.JobRentalReminders] = disabled

	runner, err := a.Scheduler(schedule)
	require.NoError(t, err)

	assert.NoError(t, runner.RunOnce(context.Background(), sweeper.JobStaleAuthorizations))
	assert.ErrorIs(t, runner.RunOnce(context.Background(), sweeper.JobRentalReminders), scheduler.ErrUnknownJob)
}
