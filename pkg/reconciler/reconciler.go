// Package reconciler applies verified payment processor notifications to the
// escrow ledger.
package reconciler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/chris/marketplace-escrow/pkg/escrow"
	"github.com/chris/marketplace-escrow/pkg/gateway"
	"github.com/chris/marketplace-escrow/pkg/metrics"
	"github.com/chris/marketplace-escrow/pkg/models"
	"github.com/chris/marketplace-escrow/pkg/storage"
)

// Verifier checks a notification's signature and decodes it.
type Verifier interface {
	Verify(payload []byte, signatureHeader string) (*gateway.Event, error)
}

// EventApplier is the part of the orchestrator the reconciler drives.
type EventApplier interface {
	ApplyProcessorEvent(ctx context.Context, txID string, ev gateway.Event) (*models.Transaction, error)
}

// TransactionFinder locates the transaction an authorization belongs to.
type TransactionFinder interface {
	GetTransactionByAuthorizationID(ctx context.Context, authorizationID string) (*models.Transaction, error)
}

// Outcome describes what happened to an accepted notification.
type Outcome string

const (
	OutcomeApplied   Outcome = "applied"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeIgnored   Outcome = "ignored"
	OutcomeUnmatched Outcome = "unmatched"
	OutcomeRejected  Outcome = "rejected"
)

// SignatureVerificationError is returned when a notification fails
// verification. Nothing is applied.
type SignatureVerificationError struct {
	Err error
}

func (e *SignatureVerificationError) Error() string {
	return fmt.Sprintf("webhook signature verification failed: %v", e.Err)
}

func (e *SignatureVerificationError) Unwrap() error { return e.Err }

// Reconciler turns processor notifications into ledger transitions.
type Reconciler struct {
	verifier Verifier
	finder   TransactionFinder
	applier  EventApplier
	logger   *slog.Logger
}

// New creates a Reconciler.
func New(verifier Verifier, finder TransactionFinder, applier EventApplier, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{verifier: verifier, finder: finder, applier: applier, logger: logger}
}

// Handle verifies and applies one notification. A nil error means the
// notification can be acknowledged: duplicates, unsupported types and events
// for unknown authorizations are all acknowledged so the processor stops
// redelivering them. Errors are either a *SignatureVerificationError, a
// malformed payload, or a failure worth redelivering.
func (r *Reconciler) Handle(ctx context.Context, payload []byte, signatureHeader string) (Outcome, error) {
	ev, err := r.verifier.Verify(payload, signatureHeader)
	if err != nil {
		metrics.Webhooks.WithLabelValues("unknown", string(OutcomeRejected)).Inc()
		if errors.Is(err, gateway.ErrMalformedEvent) {
			r.logger.WarnContext(ctx, "rejected malformed processor notification", "error", err)
			return OutcomeRejected, err
		}
		r.logger.WarnContext(ctx, "security: processor notification failed signature verification", "error", err)
		return OutcomeRejected, &SignatureVerificationError{Err: err}
	}

	outcome, err := r.apply(ctx, ev)
	result := string(outcome)
	if err != nil {
		result = "error"
	}
	metrics.Webhooks.WithLabelValues(ev.Type, result).Inc()
	return outcome, err
}

func (r *Reconciler) apply(ctx context.Context, ev *gateway.Event) (Outcome, error) {
	logger := r.logger.With("eventId", ev.ID, "type", ev.Type, "authorizationId", ev.AuthorizationID)

	if !ev.Supported() {
		logger.DebugContext(ctx, "ignoring unsupported processor notification")
		return OutcomeIgnored, nil
	}
	if ev.AuthorizationID == "" {
		logger.WarnContext(ctx, "processor notification carries no authorization id")
		return OutcomeIgnored, nil
	}

	tx, err := r.finder.GetTransactionByAuthorizationID(ctx, ev.AuthorizationID)
	if errors.Is(err, storage.ErrTransactionNotFound) {
		mismatch := &escrow.ReconciliationMismatchError{
			AuthorizationID: ev.AuthorizationID,
			EventType:       ev.Type,
			Reason:          "no transaction holds this authorization",
		}
		metrics.ReconciliationAlerts.WithLabelValues("unmatched_event").Inc()
		logger.ErrorContext(ctx, "dropping processor notification", "error", mismatch)
		return OutcomeUnmatched, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to find transaction for authorization %s: %w", ev.AuthorizationID, err)
	}

	updated, err := r.applier.ApplyProcessorEvent(ctx, tx.Id, *ev)
	if errors.Is(err, storage.ErrDuplicateEvent) {
		logger.InfoContext(ctx, "processor notification already applied", "transactionId", tx.Id)
		return OutcomeDuplicate, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to apply %s to transaction %s: %w", ev.Type, tx.Id, err)
	}

	logger.InfoContext(ctx, "applied processor notification", "transactionId", tx.Id, "status", updated.Status)
	return OutcomeApplied, nil
}
