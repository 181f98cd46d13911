package escrow

import (
	"context"

	"github.com/chris/marketplace-escrow/pkg/models"
	"github.com/chris/marketplace-escrow/pkg/notify"
)

// RequestRelease records the buyer's confirmation that the goods arrived.
func (o *Orchestrator) RequestRelease(ctx context.Context, txID string, actor Actor, note string) (*models.Transaction, error) {
	const op = "request_release"
	return o.transition(ctx, op, txID, actor,
		func(tx *models.Transaction) error {
			if err := permit(op, tx, actor, buyer); err != nil {
				return err
			}
			return requireStatus(op, tx, models.AUTHORIZED, models.SHIPPED)
		},
		func(_ context.Context, tx *models.Transaction, c *change) error {
			now := c.now
			tx.ReleaseRequestedAt = &now
			tx.ReleaseRequestedBy = actor.ID
			tx.ReleaseNote = note
			tx.Status = models.PENDING_RELEASE
			c.record(tx, models.EventReleaseRequested, amountMeta("note", note))
			return nil
		})
}

// MarkShipped records the seller's shipment of a sale.
func (o *Orchestrator) MarkShipped(ctx context.Context, txID string, actor Actor, trackingRef string) (*models.Transaction, error) {
	const op = "mark_shipped"
	return o.transition(ctx, op, txID, actor,
		func(tx *models.Transaction) error {
			if err := permit(op, tx, actor, seller); err != nil {
				return err
			}
			if err := requireKind(op, tx, models.SALE); err != nil {
				return err
			}
			return requireStatus(op, tx, models.AUTHORIZED, models.PENDING_RELEASE)
		},
		func(_ context.Context, tx *models.Transaction, c *change) error {
			now := c.now
			tx.ShippedAt = &now
			tx.TrackingRef = trackingRef
			tx.Status = models.SHIPPED
			c.record(tx, models.EventShipped, amountMeta("tracking_ref", trackingRef))
			return nil
		})
}

// Capture takes amount from the hold, or everything that is left when amount
// is zero, and pays the seller. Capturing the last of the hold releases the
// transaction.
func (o *Orchestrator) Capture(ctx context.Context, txID string, actor Actor, amount int64) (*models.Transaction, error) {
	const op = "capture"
	return o.transition(ctx, op, txID, actor,
		func(tx *models.Transaction) error {
			if err := permit(op, tx, actor, buyer, admin, system); err != nil {
				return err
			}
			return requireStatus(op, tx, models.AUTHORIZED, models.SHIPPED, models.PENDING_RELEASE, models.PARTIALLY_RELEASED)
		},
		func(ctx context.Context, tx *models.Transaction, c *change) error {
			remaining := tx.RemainingAuthorization()
			if amount == 0 {
				amount = remaining
			}
			if amount <= 0 || amount > remaining {
				return invalidInput("capture amount %d must be between 1 and the remaining authorization %d", amount, remaining)
			}
			if err := o.capture(ctx, tx, c, amount, amount == remaining, models.EventCaptured); err != nil {
				return err
			}
			if tx.RemainingAuthorization() > 0 {
				tx.Status = models.PARTIALLY_RELEASED
			} else {
				tx.Status = models.RELEASED
			}
			o.payout(ctx, tx, c, 0)
			c.notify(tx, notify.EscrowReleased, amount, tx.BuyerId, tx.SellerId)
			return nil
		})
}

// Refund returns captured money to the buyer, all of it when amount is zero,
// and releases whatever is left of the hold.
func (o *Orchestrator) Refund(ctx context.Context, txID string, actor Actor, amount int64) (*models.Transaction, error) {
	const op = "refund"
	return o.transition(ctx, op, txID, actor,
		func(tx *models.Transaction) error {
			if err := permit(op, tx, actor, seller, admin, system); err != nil {
				return err
			}
			if tx.Status.IsTerminal() || tx.Status == models.PENDING_DISPUTE {
				return &InvalidStateError{TransactionID: tx.Id, Operation: op, Status: tx.Status}
			}
			if tx.CapturedAmount <= 0 {
				return &InvalidStateError{TransactionID: tx.Id, Operation: op, Status: tx.Status, Reason: "nothing has been captured"}
			}
			return nil
		},
		func(ctx context.Context, tx *models.Transaction, c *change) error {
			if amount == 0 {
				amount = tx.CapturedAmount
			}
			if amount <= 0 || amount > tx.CapturedAmount {
				return invalidInput("refund amount %d must be between 1 and the captured amount %d", amount, tx.CapturedAmount)
			}
			if err := o.refund(ctx, tx, c, amount); err != nil {
				return err
			}
			if err := o.release(ctx, tx, c, models.EventAuthorizationReleased); err != nil {
				return err
			}
			tx.Status = models.REFUNDED
			c.notify(tx, notify.RefundIssued, amount, tx.BuyerId, tx.SellerId)
			return nil
		})
}
