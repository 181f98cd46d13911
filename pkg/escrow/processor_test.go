package escrow_test

import (
	"context"
	"testing"

	"github.com/chris/marketplace-escrow/pkg/escrow"
	"github.com/chris/marketplace-escrow/pkg/gateway"
	"github.com/chris/marketplace-escrow/pkg/gateway/sandbox"
	"github.com/chris/marketplace-escrow/pkg/models"
	"github.com/chris/marketplace-escrow/pkg/notify"
	"github.com/chris/marketplace-escrow/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// confirmLater reports every authorization as waiting on the buyer, so the
// transaction stays PENDING until the processor notifies.
type confirmLater struct {
	*sandbox.Gateway
}

func (g confirmLater) Authorize(ctx context.Context, req gateway.AuthorizeRequest) (*gateway.Authorization, error) {
	auth, err := g.Gateway.Authorize(ctx, req)
	if err != nil {
		return nil, err
	}
	pending := *auth
	pending.Status = gateway.StatusRequiresAction
	return &pending, nil
}

func TestApplyProcessorEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("Canceled Replay Is Ignored", func(t *testing.T) {
		h := newHarness(t)
		tx := h.sale(t, 10000)
		ev := gateway.Event{
			ID:              "evt_1",
			Type:            gateway.EventAuthorizationCanceled,
			ObjectID:        tx.AuthorizationId,
			AuthorizationID: tx.AuthorizationId,
			Status:          gateway.StatusCanceled,
			Amount:          10000,
		}

		cancelled, err := h.o.ApplyProcessorEvent(ctx, tx.Id, ev)
		require.NoError(t, err)
		assert.Equal(t, models.CANCELLED, cancelled.Status)
		assert.Equal(t, int64(10000), cancelled.ReleasedAmount)

		ev.ID = "evt_2"
		_, err = h.o.ApplyProcessorEvent(ctx, tx.Id, ev)

		assert.ErrorIs(t, err, storage.ErrDuplicateEvent)
		stored := h.get(t, tx.Id)
		assert.Equal(t, cancelled.Version, stored.Version)
		webhooks := 0
		for _, typ := range h.eventTypes(t, tx.Id) {
			if typ == models.ProcessorEventPrefix+gateway.EventAuthorizationCanceled {
				webhooks++
			}
		}
		assert.Equal(t, 1, webhooks)
	})

	t.Run("Capturable Authorizes Pending", func(t *testing.T) {
		sb := sandbox.New()
		h := newHarnessFor(t, sb, confirmLater{sb})
		tx := h.sale(t, 10000)
		require.Equal(t, models.PENDING, tx.Status)

		authorized, err := h.o.ApplyProcessorEvent(ctx, tx.Id, gateway.Event{
			ID:               "evt_3",
			Type:             gateway.EventAuthorizationCapturable,
			ObjectID:         tx.AuthorizationId,
			AuthorizationID:  tx.AuthorizationId,
			AmountCapturable: 10000,
		})

		require.NoError(t, err)
		assert.Equal(t, models.AUTHORIZED, authorized.Status)

		_, err = h.o.Capture(ctx, tx.Id, escrow.User(buyerID), 0)
		assert.NoError(t, err)
	})

	t.Run("Payment Failed Fails Pending", func(t *testing.T) {
		sb := sandbox.New()
		h := newHarnessFor(t, sb, confirmLater{sb})
		tx := h.sale(t, 10000)

		failed, err := h.o.ApplyProcessorEvent(ctx, tx.Id, gateway.Event{
			ID:       "evt_4",
			Type:     gateway.EventAuthorizationFailed,
			ObjectID: tx.AuthorizationId,
		})

		require.NoError(t, err)
		assert.Equal(t, models.FAILED, failed.Status)
	})

	t.Run("Canceled After Capture Keeps Status", func(t *testing.T) {
		h := newHarness(t)
		tx := h.sale(t, 10000)
		_, err := h.o.Capture(ctx, tx.Id, escrow.User(buyerID), 4000)
		require.NoError(t, err)

		got, err := h.o.ApplyProcessorEvent(ctx, tx.Id, gateway.Event{
			ID:       "evt_5",
			Type:     gateway.EventAuthorizationCanceled,
			ObjectID: tx.AuthorizationId,
		})

		require.NoError(t, err)
		assert.Equal(t, models.PARTIALLY_RELEASED, got.Status)
		assert.Equal(t, int64(6000), got.RemainingAuthorization())
	})

	t.Run("Missing Object Fails", func(t *testing.T) {
		h := newHarness(t)
		tx := h.sale(t, 10000)

		_, err := h.o.ApplyProcessorEvent(ctx, tx.Id, gateway.Event{ID: "evt_6", Type: gateway.EventChargeRefunded})

		assert.ErrorIs(t, err, escrow.ErrInvalidInput)
	})

	t.Run("Dispute Notice Is Recorded", func(t *testing.T) {
		h := newHarness(t)
		tx := h.sale(t, 10000)
		before := len(h.notices.kinds())

		got, err := h.o.ApplyProcessorEvent(ctx, tx.Id, gateway.Event{
			ID:       "evt_7",
			Type:     gateway.EventChargeDisputed,
			ObjectID: "dp_1",
			Amount:   10000,
		})

		require.NoError(t, err)
		assert.Equal(t, models.AUTHORIZED, got.Status)
		assert.Len(t, h.notices.kinds(), before)
		assert.NotContains(t, h.notices.kinds(), notify.DisputeOpened)
	})
}
