package escrow

import (
	"errors"
	"fmt"

	"github.com/chris/marketplace-escrow/pkg/models"
)

// ErrInvalidInput is wrapped by every request validation failure.
var ErrInvalidInput = errors.New("invalid input")

// InvalidStateError is returned when an operation is not legal for the
// transaction's current status. Nothing was called or written.
type InvalidStateError struct {
	TransactionID string
	Operation     string
	Status        models.TransactionStatus
	Reason        string
}

func (e *InvalidStateError) Error() string {
	msg := fmt.Sprintf("cannot %s transaction %s in status %s", e.Operation, e.TransactionID, e.Status)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// UnauthorizedActorError is returned when the caller may not perform the operation.
type UnauthorizedActorError struct {
	TransactionID string
	Operation     string
	Actor         string
}

func (e *UnauthorizedActorError) Error() string {
	return fmt.Sprintf("actor %s may not %s transaction %s", e.Actor, e.Operation, e.TransactionID)
}

// ReconciliationMismatchError reports a processor notification that matches
// no transaction, or that disagrees with the ledger.
type ReconciliationMismatchError struct {
	AuthorizationID string
	EventType       string
	Reason          string
}

func (e *ReconciliationMismatchError) Error() string {
	return fmt.Sprintf("processor event %s for %s does not reconcile: %s", e.EventType, e.AuthorizationID, e.Reason)
}

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
