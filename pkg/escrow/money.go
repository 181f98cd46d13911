package escrow

import (
	"context"
	"fmt"

	"github.com/chris/marketplace-escrow/pkg/gateway"
	"github.com/chris/marketplace-escrow/pkg/metrics"
	"github.com/chris/marketplace-escrow/pkg/models"
	"github.com/chris/marketplace-escrow/pkg/notify"
)

// The helpers below wrap one processor call each and apply its effect to
// the leased row. Idempotency keys use the row version observed under the
// lease, so replaying an aborted transition reuses them.

// capture captures amount from the hold. A final capture hands the rest of
// the hold back to the buyer.
func (o *Orchestrator) capture(ctx context.Context, tx *models.Transaction, c *change, amount int64, final bool, eventType string) error {
	grossBefore := tx.GrossCaptured()
	key := gateway.IdempotencyKey(tx.Id, gateway.OpCapture, tx.Version)

	res, err := callGateway(ctx, o, gateway.OpCapture, tx.AuthorizationId,
		func(ctx context.Context) (*gateway.CaptureResult, error) {
			return o.gateway.Capture(ctx, gateway.CaptureRequest{
				AuthorizationID: tx.AuthorizationId,
				Amount:          amount,
				Final:           final,
				IdempotencyKey:  key,
			})
		},
		func(s *gateway.Snapshot) (*gateway.CaptureResult, bool) {
			if s.AmountCaptured >= grossBefore+amount {
				return &gateway.CaptureResult{CaptureID: s.ChargeID, CapturedAmount: s.AmountCaptured}, true
			}
			return nil, false
		})
	if err != nil {
		return fmt.Errorf("failed to capture %d on transaction %s: %w", amount, tx.Id, err)
	}
	c.applied = append(c.applied, "capture:"+res.CaptureID)

	tx.CapturedAmount += amount
	if tx.CaptureId == "" {
		tx.CaptureId = res.CaptureID
	}
	released := int64(0)
	if final {
		released = tx.RemainingAuthorization()
		tx.ReleasedAmount += released
	}
	if res.CapturedAmount != tx.GrossCaptured() {
		o.mismatch(ctx, tx, "capture_total", res.CapturedAmount, tx.GrossCaptured())
	}
	c.record(tx, eventType, amountMeta("amount", amount, "released", released, "capture_id", res.CaptureID))
	return nil
}

// refund returns amount of the captured money to the buyer.
func (o *Orchestrator) refund(ctx context.Context, tx *models.Transaction, c *change, amount int64) error {
	refundedBefore := tx.RefundedAmount
	key := gateway.IdempotencyKey(tx.Id, gateway.OpRefund, tx.Version)

	res, err := callGateway(ctx, o, gateway.OpRefund, tx.AuthorizationId,
		func(ctx context.Context) (*gateway.RefundResult, error) {
			return o.gateway.Refund(ctx, gateway.RefundRequest{
				CaptureID:      tx.CaptureId,
				Amount:         amount,
				IdempotencyKey: key,
			})
		},
		func(s *gateway.Snapshot) (*gateway.RefundResult, bool) {
			if s.AmountRefunded >= refundedBefore+amount {
				return &gateway.RefundResult{Amount: amount}, true
			}
			return nil, false
		})
	if err != nil {
		return fmt.Errorf("failed to refund %d on transaction %s: %w", amount, tx.Id, err)
	}
	c.applied = append(c.applied, "refund:"+res.RefundID)

	tx.CapturedAmount -= amount
	tx.RefundedAmount += amount
	c.record(tx, models.EventRefund, amountMeta("amount", amount, "refund_id", res.RefundID))
	return nil
}

// release voids the uncaptured remainder of the hold.
func (o *Orchestrator) release(ctx context.Context, tx *models.Transaction, c *change, eventType string) error {
	remaining := tx.RemainingAuthorization()
	if remaining <= 0 || tx.AuthorizationId == "" {
		return nil
	}
	key := gateway.IdempotencyKey(tx.Id, gateway.OpRelease, tx.Version)

	_, err := callGateway(ctx, o, gateway.OpRelease, tx.AuthorizationId,
		func(ctx context.Context) (*gateway.ReleaseResult, error) {
			return o.gateway.Release(ctx, gateway.ReleaseRequest{AuthorizationID: tx.AuthorizationId, IdempotencyKey: key})
		},
		func(s *gateway.Snapshot) (*gateway.ReleaseResult, bool) {
			if s.Status == gateway.StatusCanceled || s.AmountCapturable == 0 {
				return &gateway.ReleaseResult{AuthorizationID: s.AuthorizationID, Status: s.Status}, true
			}
			return nil, false
		})
	if err != nil {
		return fmt.Errorf("failed to release authorization of transaction %s: %w", tx.Id, err)
	}
	c.applied = append(c.applied, "release:"+tx.AuthorizationId)

	tx.ReleasedAmount += remaining
	c.record(tx, eventType, amountMeta("amount", remaining))
	return nil
}

// payout transfers what the seller is owed: captured money minus the
// platform fee, any deduction and what was already paid out. A failed
// transfer does not undo the capture; it is recorded for manual follow-up.
func (o *Orchestrator) payout(ctx context.Context, tx *models.Transaction, c *change, deduction int64) {
	due := tx.CapturedAmount - tx.PlatformFee - deduction - tx.PaidOutAmount
	if due <= 0 {
		return
	}
	if tx.PayoutDestination == "" {
		tx.PayoutStatus = models.PayoutSkipped
		o.logger.Info("no payout destination, holding seller funds", "transactionId", tx.Id, "amount", due)
		return
	}
	key := gateway.IdempotencyKey(tx.Id, gateway.OpTransfer, tx.Version)

	res, err := callGateway(ctx, o, gateway.OpTransfer, "",
		func(ctx context.Context) (*gateway.TransferResult, error) {
			return o.gateway.Transfer(ctx, gateway.TransferRequest{
				Destination:    tx.PayoutDestination,
				Amount:         due,
				Currency:       tx.Currency,
				TransferGroup:  tx.Id,
				IdempotencyKey: key,
			})
		}, nil)
	if err != nil {
		tx.PayoutStatus = models.PayoutFailed
		metrics.ReconciliationAlerts.WithLabelValues("payout_failed").Inc()
		o.logger.ErrorContext(ctx, "seller payout failed, manual reconciliation required",
			"transactionId", tx.Id, "destination", tx.PayoutDestination, "amount", due, "error", err)
		c.record(tx, models.EventPayoutFailed, amountMeta("amount", due, "error", err.Error()))
		c.notify(tx, notify.PayoutFailed, due, tx.SellerId)
		return
	}
	c.applied = append(c.applied, "transfer:"+res.TransferID)

	tx.PaidOutAmount += due
	tx.PayoutTransferId = res.TransferID
	tx.PayoutStatus = models.PayoutTransferred
	c.record(tx, models.EventPayoutTransferred, amountMeta("amount", due, "transfer_id", res.TransferID, "destination", tx.PayoutDestination))
}

func (o *Orchestrator) mismatch(ctx context.Context, tx *models.Transaction, what string, processor, ledger int64) {
	metrics.ReconciliationAlerts.WithLabelValues(what).Inc()
	o.logger.WarnContext(ctx, "processor amount differs from ledger",
		"check", what, "transactionId", tx.Id, "authorizationId", tx.AuthorizationId,
		"processor", processor, "ledger", ledger)
}
