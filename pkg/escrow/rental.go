package escrow

import (
	"context"
	"fmt"

	"github.com/chris/marketplace-escrow/pkg/gateway"
	"github.com/chris/marketplace-escrow/pkg/models"
	"github.com/chris/marketplace-escrow/pkg/notify"
)

// StartRental captures the rental fee when the renter picks the item up and
// pays the owner. The deposit stays on hold. When the hold cannot be captured
// more than once, the fee is deferred to the deposit decision.
func (o *Orchestrator) StartRental(ctx context.Context, txID string, actor Actor) (*models.Transaction, error) {
	const op = "start_rental"
	return o.transition(ctx, op, txID, actor,
		func(tx *models.Transaction) error {
			if err := permit(op, tx, actor, buyer); err != nil {
				return err
			}
			if err := requireKind(op, tx, models.RENT); err != nil {
				return err
			}
			return requireStatus(op, tx, models.AUTHORIZED)
		},
		func(ctx context.Context, tx *models.Transaction, c *change) error {
			var meta map[string]string
			if fee := tx.RentalFee(); fee > 0 {
				multicapture, err := o.multicapture(ctx, tx)
				if err != nil {
					return err
				}
				if multicapture {
					if err := o.capture(ctx, tx, c, fee, false, models.EventCaptured); err != nil {
						return err
					}
					o.payout(ctx, tx, c, 0)
				} else {
					tx.FeeDeferred = true
					meta = amountMeta("deferred_fee", fee)
				}
			}
			now := c.now
			tx.PickedUpAt = &now
			tx.Status = models.RENTAL_IN_PROGRESS
			c.record(tx, models.EventRentalStarted, meta)
			return nil
		})
}

// CompleteRental records the return of the item.
func (o *Orchestrator) CompleteRental(ctx context.Context, txID string, actor Actor) (*models.Transaction, error) {
	const op = "complete_rental"
	return o.transition(ctx, op, txID, actor,
		func(tx *models.Transaction) error {
			if err := permit(op, tx, actor, buyer); err != nil {
				return err
			}
			if err := requireKind(op, tx, models.RENT); err != nil {
				return err
			}
			return requireStatus(op, tx, models.RENTAL_IN_PROGRESS)
		},
		func(_ context.Context, tx *models.Transaction, c *change) error {
			now := c.now
			tx.ReturnedAt = &now
			tx.Status = models.RENTAL_RETURNED
			c.record(tx, models.EventRentalReturned, nil)
			return nil
		})
}

// ReportDamage flags a returned item as damaged, which keeps the deposit on
// hold until an admin decides the deduction.
func (o *Orchestrator) ReportDamage(ctx context.Context, txID string, actor Actor, note string) (*models.Transaction, error) {
	const op = "report_damage"
	return o.transition(ctx, op, txID, actor,
		func(tx *models.Transaction) error {
			if err := permit(op, tx, actor, seller, admin); err != nil {
				return err
			}
			if err := requireKind(op, tx, models.RENT); err != nil {
				return err
			}
			return requireStatus(op, tx, models.RENTAL_RETURNED)
		},
		func(_ context.Context, tx *models.Transaction, c *change) error {
			tx.DamageReported = true
			c.record(tx, models.EventDamageReported, amountMeta("note", note))
			return nil
		})
}

// DeductDamage keeps amount of the deposit for the owner and hands the rest
// of the deposit back to the renter.
func (o *Orchestrator) DeductDamage(ctx context.Context, txID string, actor Actor, amount int64) (*models.Transaction, error) {
	const op = "deduct_damage"
	return o.transition(ctx, op, txID, actor,
		func(tx *models.Transaction) error {
			if err := permit(op, tx, actor, admin, system); err != nil {
				return err
			}
			if err := requireKind(op, tx, models.RENT); err != nil {
				return err
			}
			return requireStatus(op, tx, models.RENTAL_RETURNED)
		},
		func(ctx context.Context, tx *models.Transaction, c *change) error {
			fee := deferredFee(tx)
			held := tx.RemainingAuthorization() - fee
			if amount < 0 || amount > tx.Deposit || amount > held {
				return invalidInput("damage amount %d must be between 0 and the held deposit %d", amount, min(tx.Deposit, held))
			}
			if err := o.settleDeposit(ctx, tx, c, fee+amount); err != nil {
				return err
			}
			tx.Status = models.DAMAGE_RESOLVED
			c.record(tx, models.EventDamageDeducted, amountMeta("amount", amount, "refunded", held-amount))
			c.notify(tx, notify.RentalCompleted, held-amount, tx.BuyerId, tx.SellerId)
			return nil
		})
}

// FinalizeRefund hands the whole deposit back once a rental ended without damage.
func (o *Orchestrator) FinalizeRefund(ctx context.Context, txID string, actor Actor) (*models.Transaction, error) {
	const op = "finalize_refund"
	return o.transition(ctx, op, txID, actor,
		func(tx *models.Transaction) error {
			if err := permit(op, tx, actor, seller, admin, system); err != nil {
				return err
			}
			if err := requireKind(op, tx, models.RENT); err != nil {
				return err
			}
			if err := requireStatus(op, tx, models.RENTAL_RETURNED); err != nil {
				return err
			}
			if tx.DamageReported {
				return &InvalidStateError{TransactionID: tx.Id, Operation: op, Status: tx.Status, Reason: "damage reported"}
			}
			return nil
		},
		func(ctx context.Context, tx *models.Transaction, c *change) error {
			fee := deferredFee(tx)
			held := tx.RemainingAuthorization() - fee
			if err := o.settleDeposit(ctx, tx, c, fee); err != nil {
				return err
			}
			tx.Status = models.COMPLETED
			c.notify(tx, notify.RentalCompleted, held, tx.BuyerId, tx.SellerId)
			return nil
		})
}

// settleDeposit ends the hold of a returned rental. A positive keep is
// captured as the final capture and paid out; the rest of the hold goes back
// to the renter.
func (o *Orchestrator) settleDeposit(ctx context.Context, tx *models.Transaction, c *change, keep int64) error {
	if keep <= 0 {
		return o.release(ctx, tx, c, models.EventDepositRefunded)
	}
	if err := o.capture(ctx, tx, c, keep, true, models.EventCaptured); err != nil {
		return err
	}
	tx.FeeDeferred = false
	o.payout(ctx, tx, c, 0)
	return nil
}

// deferredFee is the rental fee still waiting in the hold.
func deferredFee(tx *models.Transaction) int64 {
	if !tx.FeeDeferred {
		return 0
	}
	return tx.RentalFee()
}

// multicapture asks the processor whether the hold accepts a partial capture.
func (o *Orchestrator) multicapture(ctx context.Context, tx *models.Transaction) (bool, error) {
	snap, err := callGateway(ctx, o, gateway.OpRetrieve, tx.AuthorizationId,
		func(ctx context.Context) (*gateway.Snapshot, error) {
			return o.gateway.Retrieve(ctx, tx.AuthorizationId)
		}, nil)
	if err != nil {
		return false, fmt.Errorf("failed to retrieve authorization of transaction %s: %w", tx.Id, err)
	}
	return snap.Multicapture, nil
}
