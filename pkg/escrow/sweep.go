package escrow

import (
	"context"

	"github.com/chris/marketplace-escrow/pkg/models"
	"github.com/chris/marketplace-escrow/pkg/notify"
)

// CancelStaleAuthorization voids a hold nobody acted on. PENDING rows are
// included: they were never confirmed by the buyer or lost their
// authorization call. A rental is not cancelled before its start date.
func (o *Orchestrator) CancelStaleAuthorization(ctx context.Context, txID string) (*models.Transaction, error) {
	const op = "cancel_stale_authorization"
	return o.transition(ctx, op, txID, System(),
		func(tx *models.Transaction) error {
			if err := requireStatus(op, tx, models.AUTHORIZED, models.PENDING); err != nil {
				return err
			}
			if tx.StaleSince().After(o.now()) {
				return &InvalidStateError{TransactionID: tx.Id, Operation: op, Status: tx.Status, Reason: "rental has not started"}
			}
			return nil
		},
		func(ctx context.Context, tx *models.Transaction, c *change) error {
			held := tx.RemainingAuthorization()
			if err := o.release(ctx, tx, c, models.EventAuthorizationReleased); err != nil {
				return err
			}
			tx.Status = models.CANCELLED
			c.record(tx, models.EventAutoCancelled, amountMeta("released", held))
			c.notify(tx, notify.AutoCancelled, held, tx.BuyerId, tx.SellerId)
			return nil
		})
}

// AutoConfirmDelivery releases a shipped sale the buyer never confirmed.
func (o *Orchestrator) AutoConfirmDelivery(ctx context.Context, txID string) (*models.Transaction, error) {
	const op = "auto_confirm_delivery"
	return o.transition(ctx, op, txID, System(),
		func(tx *models.Transaction) error {
			return requireStatus(op, tx, models.SHIPPED)
		},
		func(ctx context.Context, tx *models.Transaction, c *change) error {
			if remaining := tx.RemainingAuthorization(); remaining > 0 {
				if err := o.capture(ctx, tx, c, remaining, true, models.EventCaptured); err != nil {
					return err
				}
			}
			o.payout(ctx, tx, c, 0)
			now := c.now
			tx.DeliveredAt = &now
			tx.Status = models.RELEASED
			c.record(tx, models.EventDeliveryConfirmed, nil)
			c.notify(tx, notify.DeliveryConfirmed, tx.CapturedAmount, tx.BuyerId, tx.SellerId)
			return nil
		})
}

// MarkReminderSent records that the renter was reminded of the rental end.
func (o *Orchestrator) MarkReminderSent(ctx context.Context, txID string) (*models.Transaction, error) {
	const op = "mark_reminder_sent"
	return o.transition(ctx, op, txID, System(),
		func(tx *models.Transaction) error {
			if err := requireStatus(op, tx, models.RENTAL_IN_PROGRESS); err != nil {
				return err
			}
			if tx.ReminderSent {
				return &InvalidStateError{TransactionID: tx.Id, Operation: op, Status: tx.Status, Reason: "reminder already sent"}
			}
			return nil
		},
		func(_ context.Context, tx *models.Transaction, c *change) error {
			tx.ReminderSent = true
			c.record(tx, models.EventReminderSent, nil)
			c.notify(tx, notify.RentalReminder, 0, tx.BuyerId)
			return nil
		})
}
