package sandbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/chris/marketplace-escrow/pkg/gateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authorize(t *testing.T, g *Gateway, amount int64) string {
	t.Helper()
	auth, err := g.Authorize(context.Background(), gateway.AuthorizeRequest{Amount: amount, Currency: "usd", IdempotencyKey: "auth-" + t.Name()})
	require.NoError(t, err)
	return auth.ID
}

func TestCapture(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		g := New()
		id := authorize(t, g, 10000)

		first, err := g.Capture(ctx, gateway.CaptureRequest{AuthorizationID: id, Amount: 4000, IdempotencyKey: "c1"})
		require.NoError(t, err)
		assert.Equal(t, int64(4000), first.CapturedAmount)

		snap, err := g.Retrieve(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, int64(6000), snap.AmountCapturable)
		assert.Equal(t, gateway.StatusRequiresCapture, snap.Status)
		assert.True(t, snap.Multicapture)

		final, err := g.Capture(ctx, gateway.CaptureRequest{AuthorizationID: id, Amount: 1000, Final: true, IdempotencyKey: "c2"})
		require.NoError(t, err)
		assert.Equal(t, int64(5000), final.CapturedAmount)

		snap, _ = g.Retrieve(ctx, id)
		assert.Equal(t, int64(0), snap.AmountCapturable)
		assert.Equal(t, gateway.StatusSucceeded, snap.Status)
	})

	t.Run("Same Key Replays", func(t *testing.T) {
		g := New()
		id := authorize(t, g, 10000)
		req := gateway.CaptureRequest{AuthorizationID: id, Amount: 3000, IdempotencyKey: "same"}

		_, err := g.Capture(ctx, req)
		require.NoError(t, err)
		again, err := g.Capture(ctx, req)
		require.NoError(t, err)

		assert.Equal(t, int64(3000), again.CapturedAmount)
		snap, _ := g.Retrieve(ctx, id)
		assert.Equal(t, int64(3000), snap.AmountCaptured)
	})

	t.Run("Partial Capture Without Multicapture Fails", func(t *testing.T) {
		g := New()
		g.DisableMulticapture()
		id := authorize(t, g, 10000)

		snap, err := g.Retrieve(ctx, id)
		require.NoError(t, err)
		assert.False(t, snap.Multicapture)

		_, err = g.Capture(ctx, gateway.CaptureRequest{AuthorizationID: id, Amount: 4000, IdempotencyKey: "partial"})
		var gerr *gateway.Error
		require.ErrorAs(t, err, &gerr)
		assert.Equal(t, "multicapture_unavailable", gerr.Code)
		assert.False(t, gerr.Retryable)

		res, err := g.Capture(ctx, gateway.CaptureRequest{AuthorizationID: id, Amount: 4000, Final: true, IdempotencyKey: "final"})
		require.NoError(t, err)
		assert.Equal(t, int64(4000), res.CapturedAmount)
		snap, _ = g.Retrieve(ctx, id)
		assert.Equal(t, int64(0), snap.AmountCapturable)
	})

	t.Run("Over Capture Fails", func(t *testing.T) {
		g := New()
		id := authorize(t, g, 1000)

		_, err := g.Capture(ctx, gateway.CaptureRequest{AuthorizationID: id, Amount: 1001, IdempotencyKey: "big"})

		assert.Error(t, err)
		assert.False(t, gateway.IsRetryable(err))
	})
}

func TestFaults(t *testing.T) {
	ctx := context.Background()

	t.Run("Fail Next Has No Effect", func(t *testing.T) {
		g := New()
		id := authorize(t, g, 1000)
		g.FailNext(gateway.OpCapture, ErrUnavailable)

		_, err := g.Capture(ctx, gateway.CaptureRequest{AuthorizationID: id, IdempotencyKey: "k"})
		assert.True(t, errors.Is(err, ErrUnavailable))

		snap, _ := g.Retrieve(ctx, id)
		assert.Equal(t, int64(0), snap.AmountCaptured)
		assert.Equal(t, 1, g.Calls(gateway.OpCapture))
	})

	t.Run("Lost Response Still Applies", func(t *testing.T) {
		g := New()
		id := authorize(t, g, 1000)
		g.LoseNextResponse(gateway.OpCapture)

		_, err := g.Capture(ctx, gateway.CaptureRequest{AuthorizationID: id, IdempotencyKey: "k"})
		assert.True(t, gateway.IsOutcomeUnknown(err))

		snap, _ := g.Retrieve(ctx, id)
		assert.Equal(t, int64(1000), snap.AmountCaptured)
	})
}

func TestRefundAndRelease(t *testing.T) {
	ctx := context.Background()
	g := New()
	id := authorize(t, g, 10000)

	capture, err := g.Capture(ctx, gateway.CaptureRequest{AuthorizationID: id, Amount: 3000, IdempotencyKey: "c"})
	require.NoError(t, err)

	refund, err := g.Refund(ctx, gateway.RefundRequest{CaptureID: capture.CaptureID, IdempotencyKey: "r"})
	require.NoError(t, err)
	assert.Equal(t, int64(3000), refund.Amount)

	_, err = g.Refund(ctx, gateway.RefundRequest{CaptureID: capture.CaptureID, Amount: 1, IdempotencyKey: "r2"})
	assert.Error(t, err)

	release, err := g.Release(ctx, gateway.ReleaseRequest{AuthorizationID: id, IdempotencyKey: "rel"})
	require.NoError(t, err)
	assert.Equal(t, gateway.StatusSucceeded, release.Status)

	snap, _ := g.Retrieve(ctx, id)
	assert.Equal(t, int64(3000), snap.AmountRefunded)
	assert.Equal(t, int64(0), snap.AmountCapturable)
}

func TestTransfer(t *testing.T) {
	g := New()

	_, err := g.Transfer(context.Background(), gateway.TransferRequest{Destination: "acct_1", Amount: 900, Currency: "usd", IdempotencyKey: "t"})
	require.NoError(t, err)
	_, err = g.Transfer(context.Background(), gateway.TransferRequest{Destination: "acct_1", Amount: 900, Currency: "usd", IdempotencyKey: "t"})
	require.NoError(t, err)

	require.Len(t, g.Transfers(), 1)
	assert.Equal(t, int64(900), g.Transfers()[0].Amount)
}

func TestVerifier(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	v := NewVerifier("whsec_test")
	v.Now = func() time.Time { return now }
	payload, _ := json.Marshal(Notification{ID: "evt_1", Type: gateway.EventAuthorizationCanceled, AuthorizationID: "pi_1"})

	t.Run("Success", func(t *testing.T) {
		event, err := v.Verify(payload, v.Sign(payload, now))

		require.NoError(t, err)
		assert.Equal(t, "pi_1", event.ObjectID)
		assert.Equal(t, gateway.EventAuthorizationCanceled, event.Type)
	})

	t.Run("Tampered Payload Fails", func(t *testing.T) {
		header := v.Sign(payload, now)
		_, err := v.Verify(append(payload, ' '), header)

		assert.ErrorIs(t, err, ErrBadSignature)
	})

	t.Run("Stale Signature Fails", func(t *testing.T) {
		_, err := v.Verify(payload, v.Sign(payload, now.Add(-time.Hour)))

		assert.ErrorIs(t, err, ErrStaleSignature)
	})

	t.Run("Missing Header Fails", func(t *testing.T) {
		_, err := v.Verify(payload, "")

		assert.ErrorIs(t, err, ErrMissingSignature)
	})

	t.Run("Malformed Payload Fails", func(t *testing.T) {
		body := []byte("not json")
		_, err := v.Verify(body, v.Sign(body, now))

		assert.ErrorIs(t, err, gateway.ErrMalformedEvent)
	})
}
