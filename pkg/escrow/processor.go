package escrow

import (
	"context"
	"fmt"

	"github.com/chris/marketplace-escrow/pkg/gateway"
	"github.com/chris/marketplace-escrow/pkg/metrics"
	"github.com/chris/marketplace-escrow/pkg/models"
	"github.com/chris/marketplace-escrow/pkg/notify"
	"github.com/chris/marketplace-escrow/pkg/storage"
)

// ApplyProcessorEvent replays a verified processor notification against the
// transaction. Each (object, type) pair is applied once; a redelivery returns
// storage.ErrDuplicateEvent and changes nothing. Notifications that do not fit
// the current status are recorded without a status change.
func (o *Orchestrator) ApplyProcessorEvent(ctx context.Context, txID string, ev gateway.Event) (*models.Transaction, error) {
	const op = "apply_processor_event"
	eventType := models.ProcessorEventPrefix + ev.Type
	return o.transition(ctx, op, txID, System(),
		func(tx *models.Transaction) error {
			if ev.ObjectID == "" {
				return invalidInput("processor event %s has no object id", ev.ID)
			}
			return nil
		},
		func(ctx context.Context, tx *models.Transaction, c *change) error {
			seen, err := o.store.HasProcessorEvent(ctx, tx.Id, ev.ObjectID, eventType)
			if err != nil {
				return fmt.Errorf("failed to check event log: %w", err)
			}
			if seen {
				return fmt.Errorf("processor event %s on %s: %w", ev.Type, ev.ObjectID, storage.ErrDuplicateEvent)
			}

			o.applyProcessorState(ctx, tx, c, ev)
			c.events = append(c.events, models.PaymentEvent{
				EventID:           models.ProcessorEventID(ev.ObjectID, eventType),
				TransactionID:     tx.Id,
				ProcessorObjectID: ev.ObjectID,
				Type:              eventType,
				Actor:             c.actor.String(),
				CreatedAt:         c.now,
				Metadata: amountMeta(
					"processor_event_id", ev.ID,
					"processor_status", ev.Status,
					"amount", ev.Amount,
					"amount_captured", ev.AmountCaptured,
					"amount_refunded", ev.AmountRefunded,
				),
			})
			return nil
		})
}

func (o *Orchestrator) applyProcessorState(ctx context.Context, tx *models.Transaction, c *change, ev gateway.Event) {
	switch ev.Type {
	case gateway.EventAuthorizationCapturable:
		if tx.Status == models.PENDING {
			tx.Status = models.AUTHORIZED
			c.notify(tx, notify.PaymentInitiated, tx.AuthorizedAmount, tx.BuyerId, tx.SellerId)
		}
	case gateway.EventAuthorizationCanceled:
		if tx.GrossCaptured() == 0 && tx.Status.In(models.PENDING, models.AUTHORIZED, models.SHIPPED, models.PENDING_RELEASE) {
			tx.ReleasedAmount += tx.RemainingAuthorization()
			tx.Status = models.CANCELLED
			c.notify(tx, notify.AutoCancelled, tx.AuthorizedAmount, tx.BuyerId, tx.SellerId)
		} else if tx.Status != models.CANCELLED && tx.RemainingAuthorization() > 0 {
			o.unexpected(ctx, tx, ev)
		}
	case gateway.EventAuthorizationFailed:
		if tx.Status == models.PENDING {
			tx.Status = models.FAILED
		}
	case gateway.EventAuthorizationSucceeded:
		if ev.AmountCaptured != tx.GrossCaptured() {
			o.mismatch(ctx, tx, "captured", ev.AmountCaptured, tx.GrossCaptured())
		}
	case gateway.EventChargeRefunded:
		if ev.AmountRefunded != tx.RefundedAmount {
			o.mismatch(ctx, tx, "refunded", ev.AmountRefunded, tx.RefundedAmount)
		}
	case gateway.EventChargeDisputed:
		metrics.ReconciliationAlerts.WithLabelValues("processor_dispute").Inc()
		o.logger.WarnContext(ctx, "buyer opened a dispute with the card issuer",
			"transactionId", tx.Id, "disputeId", ev.ObjectID, "amount", ev.Amount, "status", tx.Status)
	}
}

func (o *Orchestrator) unexpected(ctx context.Context, tx *models.Transaction, ev gateway.Event) {
	metrics.ReconciliationAlerts.WithLabelValues("unexpected_event").Inc()
	o.logger.WarnContext(ctx, "processor event does not fit the ledger status",
		"transactionId", tx.Id, "event", ev.Type, "status", tx.Status)
}
