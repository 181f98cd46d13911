package storage

import "errors"

// ErrTransactionNotFound is returned when no transaction matches the lookup.
var ErrTransactionNotFound = errors.New("transaction not found")

// ErrDisputeNotFound is returned when a transaction has no dispute.
var ErrDisputeNotFound = errors.New("dispute not found")

// ErrLeaseHeld is returned when another owner holds an unexpired lease on the transaction.
var ErrLeaseHeld = errors.New("transaction lease held by another owner")

// ErrLeaseLost is returned by Commit when the lease expired or the row changed since it was leased.
var ErrLeaseLost = errors.New("transaction lease lost")

// ErrDuplicateEvent is returned when an event with the same id was already appended.
var ErrDuplicateEvent = errors.New("duplicate payment event")

// ErrTransactionExists is returned when creating a transaction whose id is taken.
var ErrTransactionExists = errors.New("transaction already exists")
