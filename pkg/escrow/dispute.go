package escrow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/chris/marketplace-escrow/pkg/models"
	"github.com/chris/marketplace-escrow/pkg/notify"
	"github.com/chris/marketplace-escrow/pkg/storage"
)

// Resolution is an admin's decision on a dispute. Deduction is kept from the
// buyer's refund, or withheld from the seller's payout.
type Resolution struct {
	Outcome   models.DisputeOutcome
	Deduction int64
	Note      string
}

// OpenDispute freezes the transaction until an admin resolves it. A
// transaction can be disputed once.
func (o *Orchestrator) OpenDispute(ctx context.Context, txID string, actor Actor, reason, evidence string) (*models.Transaction, error) {
	const op = "open_dispute"
	return o.transition(ctx, op, txID, actor,
		func(tx *models.Transaction) error {
			if err := permit(op, tx, actor, buyer); err != nil {
				return err
			}
			return requireStatus(op, tx, models.AUTHORIZED, models.SHIPPED, models.PENDING_RELEASE, models.PARTIALLY_RELEASED)
		},
		func(ctx context.Context, tx *models.Transaction, c *change) error {
			if strings.TrimSpace(reason) == "" {
				return invalidInput("a dispute needs a reason")
			}
			_, err := o.store.GetDispute(ctx, tx.Id)
			if err == nil {
				return &InvalidStateError{TransactionID: tx.Id, Operation: op, Status: tx.Status, Reason: "already disputed"}
			}
			if !errors.Is(err, storage.ErrDisputeNotFound) {
				return fmt.Errorf("failed to look up dispute: %w", err)
			}

			c.dispute = &models.Dispute{
				TransactionID: tx.Id,
				OpenedBy:      actor.ID,
				Reason:        reason,
				Evidence:      evidence,
				Status:        models.DisputeOpen,
				CreatedAt:     c.now,
			}
			tx.Status = models.PENDING_DISPUTE
			c.record(tx, models.EventDisputeOpened, amountMeta("reason", reason))
			c.notify(tx, notify.DisputeOpened, 0, tx.BuyerId, tx.SellerId)
			return nil
		})
}

// ResolveDispute closes a dispute in the buyer's or the seller's favour.
//
// Refunding the buyer returns the captured money less the deduction and
// releases the rest of the hold. When nothing was captured yet, the deduction
// is captured and the rest released. Releasing to the seller captures what
// is left of the hold and pays out less the fee and the deduction.
func (o *Orchestrator) ResolveDispute(ctx context.Context, txID string, actor Actor, res Resolution) (*models.Transaction, error) {
	const op = "resolve_dispute"
	return o.transition(ctx, op, txID, actor,
		func(tx *models.Transaction) error {
			if err := permit(op, tx, actor, admin); err != nil {
				return err
			}
			return requireStatus(op, tx, models.PENDING_DISPUTE)
		},
		func(ctx context.Context, tx *models.Transaction, c *change) error {
			dispute, err := o.store.GetDispute(ctx, tx.Id)
			if err != nil {
				return fmt.Errorf("failed to load dispute: %w", err)
			}
			if res.Deduction < 0 {
				return invalidInput("deduction must not be negative")
			}

			switch res.Outcome {
			case models.OutcomeRefundBuyer:
				if err := o.refundBuyer(ctx, tx, c, res.Deduction); err != nil {
					return err
				}
				tx.Status = models.REFUNDED
			case models.OutcomeReleaseSeller:
				if res.Deduction > tx.CapturedAmount+tx.RemainingAuthorization() {
					return invalidInput("deduction %d exceeds the transaction amount", res.Deduction)
				}
				if remaining := tx.RemainingAuthorization(); remaining > 0 {
					if err := o.capture(ctx, tx, c, remaining, true, models.EventCaptured); err != nil {
						return err
					}
				}
				o.payout(ctx, tx, c, res.Deduction)
				tx.Status = models.RELEASED
			default:
				return invalidInput("unknown dispute outcome %q", res.Outcome)
			}

			resolvedAt := c.now
			dispute.Status = models.DisputeResolved
			dispute.Outcome = res.Outcome
			dispute.Deduction = res.Deduction
			dispute.ResolvedBy = actor.String()
			dispute.ResolutionNote = res.Note
			dispute.ResolvedAt = &resolvedAt
			c.dispute = dispute
			c.record(tx, models.EventDisputeResolved, amountMeta("outcome", string(res.Outcome), "deduction", res.Deduction))
			c.notify(tx, notify.DisputeResolved, 0, tx.BuyerId, tx.SellerId)
			return nil
		})
}

func (o *Orchestrator) refundBuyer(ctx context.Context, tx *models.Transaction, c *change, deduction int64) error {
	if tx.CapturedAmount > 0 {
		if deduction > tx.CapturedAmount {
			return invalidInput("deduction %d exceeds the captured amount %d", deduction, tx.CapturedAmount)
		}
		if amount := tx.CapturedAmount - deduction; amount > 0 {
			if err := o.refund(ctx, tx, c, amount); err != nil {
				return err
			}
			c.notify(tx, notify.RefundIssued, amount, tx.BuyerId)
		}
		return o.release(ctx, tx, c, models.EventAuthorizationReleased)
	}

	if deduction > tx.RemainingAuthorization() {
		return invalidInput("deduction %d exceeds the authorization %d", deduction, tx.RemainingAuthorization())
	}
	if deduction == 0 {
		return o.release(ctx, tx, c, models.EventAuthorizationReleased)
	}
	if err := o.capture(ctx, tx, c, deduction, true, models.EventCaptured); err != nil {
		return err
	}
	o.payout(ctx, tx, c, 0)
	return nil
}
