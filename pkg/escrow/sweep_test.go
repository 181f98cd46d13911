package escrow_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/chris/marketplace-escrow/pkg/escrow"
	"github.com/chris/marketplace-escrow/pkg/gateway"
	"github.com/chris/marketplace-escrow/pkg/models"
	"github.com/chris/marketplace-escrow/pkg/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCancelStaleAuthorization(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		h := newHarness(t)
		tx := h.sale(t, 10000)

		cancelled, err := h.o.CancelStaleAuthorization(ctx, tx.Id)

		require.NoError(t, err)
		assert.Equal(t, models.CANCELLED, cancelled.Status)
		assert.Equal(t, int64(10000), cancelled.ReleasedAmount)
		assert.Contains(t, h.notices.kinds(), notify.AutoCancelled)
	})

	t.Run("Future Rental Fails", func(t *testing.T) {
		h := newHarness(t)
		res, err := h.o.CreateAndAuthorize(ctx, escrow.User(buyerID), escrow.CreateRequest{
			Kind:        models.RENT,
			Parties:     models.Parties{ListingId: "listing-2", BuyerId: buyerID, SellerId: sellerID, PayoutDestination: payoutTo},
			Amount:      5000,
			Deposit:     2000,
			RentalStart: now.Add(7 * 24 * time.Hour),
			RentalEnd:   now.Add(10 * 24 * time.Hour),
		})
		require.NoError(t, err)

		_, err = h.o.CancelStaleAuthorization(ctx, res.Transaction.Id)

		var stateErr *escrow.InvalidStateError
		require.ErrorAs(t, err, &stateErr)
		assert.Equal(t, "rental has not started", stateErr.Reason)
		assert.Equal(t, models.AUTHORIZED, h.get(t, res.Transaction.Id).Status)
		assert.Zero(t, h.gw.Calls(gateway.OpRelease))
	})

	t.Run("Second Run Fails", func(t *testing.T) {
		h := newHarness(t)
		tx := h.sale(t, 10000)
		_, err := h.o.CancelStaleAuthorization(ctx, tx.Id)
		require.NoError(t, err)

		_, err = h.o.CancelStaleAuthorization(ctx, tx.Id)

		var stateErr *escrow.InvalidStateError
		require.ErrorAs(t, err, &stateErr)
		assert.Equal(t, models.CANCELLED, stateErr.Status)
		assert.Equal(t, 1, h.gw.Calls(gateway.OpRelease))
	})

	t.Run("Concurrent Runs Cancel Once", func(t *testing.T) {
		h := newHarness(t)
		tx := h.sale(t, 10000)

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for i := range errs {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, errs[i] = h.o.CancelStaleAuthorization(ctx, tx.Id)
			}()
		}
		wg.Wait()

		succeeded := 0
		for _, err := range errs {
			if err == nil {
				succeeded++
				continue
			}
			var stateErr *escrow.InvalidStateError
			assert.ErrorAs(t, err, &stateErr)
		}
		assert.Equal(t, 1, succeeded)
		assert.Equal(t, 1, h.gw.Calls(gateway.OpRelease))

		cancelled := 0
		for _, typ := range h.eventTypes(t, tx.Id) {
			if typ == models.EventAutoCancelled {
				cancelled++
			}
		}
		assert.Equal(t, 1, cancelled)
		assert.Equal(t, models.CANCELLED, h.get(t, tx.Id).Status)
	})

	t.Run("Captured Transaction Fails", func(t *testing.T) {
		h := newHarness(t)
		tx := h.sale(t, 10000)
		_, err := h.o.Capture(ctx, tx.Id, escrow.User(buyerID), 0)
		require.NoError(t, err)

		_, err = h.o.CancelStaleAuthorization(ctx, tx.Id)

		var stateErr *escrow.InvalidStateError
		assert.ErrorAs(t, err, &stateErr)
		assert.Equal(t, 0, h.gw.Calls(gateway.OpRelease))
	})
}

func TestAutoConfirmDelivery(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		h := newHarness(t)
		tx := h.sale(t, 10000)
		_, err := h.o.MarkShipped(ctx, tx.Id, escrow.User(sellerID), "TRACK-1")
		require.NoError(t, err)

		released, err := h.o.AutoConfirmDelivery(ctx, tx.Id)

		require.NoError(t, err)
		assert.Equal(t, models.RELEASED, released.Status)
		assert.Equal(t, int64(10000), released.CapturedAmount)
		require.NotNil(t, released.DeliveredAt)
		assert.Equal(t, []int64{9500}, h.transferred())
		assert.Contains(t, h.notices.kinds(), notify.DeliveryConfirmed)
	})

	t.Run("Not Shipped Fails", func(t *testing.T) {
		h := newHarness(t)
		tx := h.sale(t, 10000)

		_, err := h.o.AutoConfirmDelivery(ctx, tx.Id)

		var stateErr *escrow.InvalidStateError
		assert.ErrorAs(t, err, &stateErr)
	})
}

func TestMarkReminderSent(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	tx := h.rental(t, 5000, 2000)
	_, err := h.o.StartRental(ctx, tx.Id, escrow.User(buyerID))
	require.NoError(t, err)

	t.Run("Success", func(t *testing.T) {
		reminded, err := h.o.MarkReminderSent(ctx, tx.Id)

		require.NoError(t, err)
		assert.True(t, reminded.ReminderSent)
		assert.Contains(t, h.notices.kinds(), notify.RentalReminder)
	})

	t.Run("Second Reminder Fails", func(t *testing.T) {
		_, err := h.o.MarkReminderSent(ctx, tx.Id)

		var stateErr *escrow.InvalidStateError
		require.ErrorAs(t, err, &stateErr)
		assert.Equal(t, "reminder already sent", stateErr.Reason)
	})
}
