package reconciler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/chris/marketplace-escrow/pkg/gateway"
	"github.com/chris/marketplace-escrow/pkg/gateway/sandbox"
	"github.com/chris/marketplace-escrow/pkg/models"
	"github.com/chris/marketplace-escrow/pkg/reconciler/mocks"
	"github.com/chris/marketplace-escrow/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const secret = "whsec_test"

func signed(t *testing.T, n sandbox.Notification) ([]byte, string) {
	t.Helper()
	payload, err := json.Marshal(n)
	require.NoError(t, err)
	return payload, sandbox.NewVerifier(secret).Sign(payload, time.Now())
}

func newReconciler(finder TransactionFinder, applier EventApplier) *Reconciler {
	return New(sandbox.NewVerifier(secret), finder, applier, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestHandle(t *testing.T) {
	ctx := context.Background()
	canceled := sandbox.Notification{
		ID:              "evt_1",
		Type:            gateway.EventAuthorizationCanceled,
		ObjectID:        "pi_1",
		AuthorizationID: "pi_1",
		Status:          gateway.StatusCanceled,
	}
	tx := &models.Transaction{Id: "tx-1", AuthorizationId: "pi_1", Status: models.AUTHORIZED}

	t.Run("Success", func(t *testing.T) {
		finder := mocks.NewTransactionFinder(t)
		applier := mocks.NewEventApplier(t)
		finder.On("GetTransactionByAuthorizationID", mock.Anything, "pi_1").Return(tx, nil).Once()
		applier.On("ApplyProcessorEvent", mock.Anything, "tx-1", mock.MatchedBy(func(ev gateway.Event) bool {
			return ev.ID == "evt_1" && ev.Type == gateway.EventAuthorizationCanceled && ev.ObjectID == "pi_1"
		})).Return(&models.Transaction{Id: "tx-1", Status: models.CANCELLED}, nil).Once()

		payload, sig := signed(t, canceled)
		outcome, err := newReconciler(finder, applier).Handle(ctx, payload, sig)

		require.NoError(t, err)
		assert.Equal(t, OutcomeApplied, outcome)
	})

	t.Run("Duplicate Is Acknowledged", func(t *testing.T) {
		finder := mocks.NewTransactionFinder(t)
		applier := mocks.NewEventApplier(t)
		finder.On("GetTransactionByAuthorizationID", mock.Anything, "pi_1").Return(tx, nil).Once()
		applier.On("ApplyProcessorEvent", mock.Anything, "tx-1", mock.Anything).
			Return(nil, storage.ErrDuplicateEvent).Once()

		payload, sig := signed(t, canceled)
		outcome, err := newReconciler(finder, applier).Handle(ctx, payload, sig)

		require.NoError(t, err)
		assert.Equal(t, OutcomeDuplicate, outcome)
	})

	t.Run("Bad Signature Fails", func(t *testing.T) {
		finder := mocks.NewTransactionFinder(t)
		applier := mocks.NewEventApplier(t)

		payload, _ := signed(t, canceled)
		forged := sandbox.NewVerifier("other").Sign(payload, time.Now())
		outcome, err := newReconciler(finder, applier).Handle(ctx, payload, forged)

		var sigErr *SignatureVerificationError
		require.ErrorAs(t, err, &sigErr)
		assert.ErrorIs(t, err, sandbox.ErrBadSignature)
		assert.Equal(t, OutcomeRejected, outcome)
		finder.AssertNotCalled(t, "GetTransactionByAuthorizationID", mock.Anything, mock.Anything)
	})

	t.Run("Malformed Payload Fails", func(t *testing.T) {
		payload := []byte("{not json")
		sig := sandbox.NewVerifier(secret).Sign(payload, time.Now())

		outcome, err := newReconciler(mocks.NewTransactionFinder(t), mocks.NewEventApplier(t)).Handle(ctx, payload, sig)

		assert.ErrorIs(t, err, gateway.ErrMalformedEvent)
		var sigErr *SignatureVerificationError
		assert.False(t, errors.As(err, &sigErr))
		assert.Equal(t, OutcomeRejected, outcome)
	})

	t.Run("Unsupported Type Is Ignored", func(t *testing.T) {
		payload, sig := signed(t, sandbox.Notification{ID: "evt_2", Type: "customer.created", ObjectID: "cus_1"})

		outcome, err := newReconciler(mocks.NewTransactionFinder(t), mocks.NewEventApplier(t)).Handle(ctx, payload, sig)

		require.NoError(t, err)
		assert.Equal(t, OutcomeIgnored, outcome)
	})

	t.Run("Unknown Authorization Is Dropped", func(t *testing.T) {
		finder := mocks.NewTransactionFinder(t)
		finder.On("GetTransactionByAuthorizationID", mock.Anything, "pi_1").
			Return(nil, storage.ErrTransactionNotFound).Once()

		payload, sig := signed(t, canceled)
		outcome, err := newReconciler(finder, mocks.NewEventApplier(t)).Handle(ctx, payload, sig)

		require.NoError(t, err)
		assert.Equal(t, OutcomeUnmatched, outcome)
	})

	t.Run("Apply Failure Fails", func(t *testing.T) {
		finder := mocks.NewTransactionFinder(t)
		applier := mocks.NewEventApplier(t)
		finder.On("GetTransactionByAuthorizationID", mock.Anything, "pi_1").Return(tx, nil).Once()
		applier.On("ApplyProcessorEvent", mock.Anything, "tx-1", mock.Anything).
			Return(nil, storage.ErrLeaseLost).Once()

		payload, sig := signed(t, canceled)
		_, err := newReconciler(finder, applier).Handle(ctx, payload, sig)

		assert.ErrorIs(t, err, storage.ErrLeaseLost)
	})
}
