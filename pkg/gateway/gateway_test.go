package gateway

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdempotencyKey(t *testing.T) {
	assert.Equal(t, "escrow:tx-1:capture:3", IdempotencyKey("tx-1", OpCapture, 3))
	assert.NotEqual(t, IdempotencyKey("tx-1", OpCapture, 3), IdempotencyKey("tx-1", OpCapture, 4))
	assert.NotEqual(t, IdempotencyKey("tx-1", OpCapture, 3), IdempotencyKey("tx-1", OpTransfer, 3))
}

func TestErrorClassification(t *testing.T) {
	retryable := fmt.Errorf("wrapped: %w", &Error{Op: OpCapture, Retryable: true, Err: errors.New("rate limited")})
	permanent := &Error{Op: OpRefund, Code: "charge_already_refunded", Err: errors.New("already refunded")}
	unknown := &Error{Op: OpCapture, Retryable: true, Err: fmt.Errorf("%w: %w", ErrOutcomeUnknown, context.DeadlineExceeded)}

	assert.True(t, IsRetryable(retryable))
	assert.False(t, IsRetryable(permanent))
	assert.False(t, IsRetryable(errors.New("plain")))
	assert.True(t, IsOutcomeUnknown(unknown))
	assert.True(t, errors.Is(unknown, context.DeadlineExceeded))
	assert.Equal(t, "gateway refund failed (charge_already_refunded): already refunded", permanent.Error())
}

func TestEventSupported(t *testing.T) {
	assert.True(t, Event{Type: EventAuthorizationCanceled}.Supported())
	assert.False(t, Event{Type: "customer.created"}.Supported())
}
