package escrow

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/chris/marketplace-escrow/pkg/metrics"
	"github.com/chris/marketplace-escrow/pkg/models"
	"github.com/chris/marketplace-escrow/pkg/notify"
	"github.com/chris/marketplace-escrow/pkg/storage"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// change collects what a transition writes besides the transaction row.
type change struct {
	actor   Actor
	now     time.Time
	events  []models.PaymentEvent
	dispute *models.Dispute
	notices []notify.Notice

	// applied lists processor effects that are already irreversible.
	applied []string
}

func (c *change) record(tx *models.Transaction, eventType string, metadata map[string]string) {
	c.events = append(c.events, models.PaymentEvent{
		EventID:       uuid.New().String(),
		TransactionID: tx.Id,
		Type:          eventType,
		Actor:         c.actor.String(),
		CreatedAt:     c.now,
		Metadata:      metadata,
	})
}

func (c *change) notify(tx *models.Transaction, kind notify.Kind, amount int64, recipients ...string) {
	c.notices = append(c.notices, notify.Notice{
		Kind:          kind,
		TransactionID: tx.Id,
		Recipients:    recipients,
		Amount:        amount,
		Currency:      tx.Currency,
		CreatedAt:     c.now,
	})
}

// checkFunc validates the leased row. It must not have side effects.
type checkFunc func(tx *models.Transaction) error

// applyFunc performs the gateway calls of a transition and mutates tx.
// Returning an error aborts the transition without writing anything.
type applyFunc func(ctx context.Context, tx *models.Transaction, c *change) error

// transition runs one operation: lease, check, gateway calls, one atomic
// commit of the row with its events, then notices.
func (o *Orchestrator) transition(ctx context.Context, op, txID string, actor Actor, check checkFunc, apply applyFunc) (*models.Transaction, error) {
	ctx, span := o.tracer.Start(ctx, "escrow."+op, trace.WithAttributes(
		attribute.String("escrow.transaction_id", txID),
		attribute.String("escrow.actor", actor.String()),
	))
	defer span.End()
	started := time.Now()

	tx, err := o.runTransition(ctx, op, txID, actor, check, apply)

	metrics.TransitionDuration.WithLabelValues(op).Observe(float64(time.Since(started).Milliseconds()))
	metrics.Transitions.WithLabelValues(op, outcome(err)).Inc()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.String("escrow.status", string(tx.Status)))
	return tx, nil
}

func (o *Orchestrator) runTransition(ctx context.Context, op, txID string, actor Actor, check checkFunc, apply applyFunc) (*models.Transaction, error) {
	owner := o.cfg.InstanceID + "/" + uuid.New().String()
	tx, err := o.acquireLease(ctx, op, txID, owner)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		if err := o.store.ReleaseLease(context.WithoutCancel(ctx), txID, owner); err != nil {
			o.logger.Warn("failed to release lease", "transactionId", txID, "error", err)
		}
	}()

	if err := check(tx); err != nil {
		return nil, err
	}

	expected := tx.Version
	c := &change{actor: actor, now: o.now().UTC()}
	if err := apply(ctx, tx, c); err != nil {
		if len(c.applied) > 0 {
			o.logger.Warn("transition aborted after processor effects, a retry replays them",
				"operation", op, "transactionId", txID, "applied", c.applied, "error", err)
		}
		return nil, err
	}
	if !tx.Balanced() {
		o.reconciliationAlert(ctx, "unbalanced", tx, op, c.applied, nil)
		return nil, fmt.Errorf("transition %s left transaction %s unbalanced", op, txID)
	}

	tx.Version = expected + 1
	tx.UpdatedAt = c.now
	tx.LeaseOwner = ""
	tx.LeaseExpiresAt = 0
	err = o.store.Commit(ctx, storage.Commit{
		Transaction:     tx,
		Events:          c.events,
		Dispute:         c.dispute,
		LeaseOwner:      owner,
		ExpectedVersion: expected,
	})
	if err != nil {
		if len(c.applied) > 0 {
			o.reconciliationAlert(ctx, "commit_failed", tx, op, c.applied, err)
		}
		return nil, fmt.Errorf("failed to commit %s for transaction %s: %w", op, txID, err)
	}
	committed = true

	for _, n := range c.notices {
		n.Status = string(tx.Status)
		if err := o.notifier.Notify(ctx, n); err != nil {
			o.logger.Warn("failed to send notice", "kind", n.Kind, "transactionId", txID, "error", err)
		}
	}
	o.logger.Info("transition committed", "operation", op, "transactionId", txID, "status", tx.Status, "version", tx.Version)
	return tx, nil
}

// acquireLease retries a busy lease briefly. A lease still held after that is
// reported as a concurrent operation.
func (o *Orchestrator) acquireLease(ctx context.Context, op, txID, owner string) (*models.Transaction, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = o.cfg.LeaseBackoff
	b.MaxInterval = 10 * o.cfg.LeaseBackoff

	tx, err := backoff.Retry(ctx, func() (*models.Transaction, error) {
		tx, err := o.store.AcquireLease(ctx, txID, owner, o.cfg.LeaseTTL)
		if errors.Is(err, storage.ErrLeaseHeld) {
			metrics.LeaseContention.Inc()
			return nil, err
		}
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		return tx, nil
	}, backoff.WithBackOff(b), backoff.WithMaxTries(max(o.cfg.LeaseAttempts, 1)))

	if errors.Is(err, storage.ErrLeaseHeld) {
		return nil, &InvalidStateError{TransactionID: txID, Operation: op, Status: "", Reason: "concurrent operation in progress"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lease transaction %s: %w", txID, err)
	}
	return tx, nil
}

func (o *Orchestrator) reconciliationAlert(ctx context.Context, reason string, tx *models.Transaction, op string, applied []string, err error) {
	metrics.ReconciliationAlerts.WithLabelValues(reason).Inc()
	o.logger.ErrorContext(ctx, "ledger out of step with processor, manual reconciliation required",
		"reason", reason,
		"operation", op,
		"transactionId", tx.Id,
		"authorizationId", tx.AuthorizationId,
		"captureId", tx.CaptureId,
		"applied", applied,
		"error", err,
	)
}

func outcome(err error) string {
	var stateErr *InvalidStateError
	var actorErr *UnauthorizedActorError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &stateErr):
		return "invalid_state"
	case errors.As(err, &actorErr):
		return "unauthorized"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, storage.ErrDuplicateEvent):
		return "duplicate"
	}
	return "error"
}

func amountMeta(kv ...any) map[string]string {
	m := make(map[string]string, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, _ := kv[i].(string)
		switch v := kv[i+1].(type) {
		case int64:
			m[key] = strconv.FormatInt(v, 10)
		case string:
			if v != "" {
				m[key] = v
			}
		}
	}
	return m
}
