package storage

import (
	"context"
	"time"

	"github.com/chris/marketplace-escrow/pkg/models"
)

// TransactionReader defines the interface for reading escrow transactions.
type TransactionReader interface {
	// GetTransaction retrieves a transaction by its ID.
	GetTransaction(ctx context.Context, txID string) (*models.Transaction, error)

	// GetTransactionByAuthorizationID retrieves the transaction holding the given processor authorization.
	GetTransactionByAuthorizationID(ctx context.Context, authorizationID string) (*models.Transaction, error)

	// ListTransactionsByStatus retrieves transactions in a status that were created before the cutoff.
	ListTransactionsByStatus(ctx context.Context, status models.TransactionStatus, createdBefore time.Time) ([]models.Transaction, error)

	// ListTransactionsByUserID retrieves all transactions where the user is the buyer or the seller.
	ListTransactionsByUserID(ctx context.Context, userID string) ([]models.Transaction, error)
}

// TransactionWriter persists transactions. Every write after creation must go
// through Commit while holding the transaction's lease.
type TransactionWriter interface {
	// CreateTransaction stores a new transaction together with its first events.
	CreateTransaction(ctx context.Context, tx *models.Transaction, events []models.PaymentEvent) error

	// Commit atomically writes a transition: the transaction row, its events and
	// optionally a dispute. It also releases the lease.
	Commit(ctx context.Context, c Commit) error
}

// Commit is a single atomic state transition.
type Commit struct {
	Transaction     *models.Transaction
	Events          []models.PaymentEvent
	Dispute         *models.Dispute
	LeaseOwner      string
	ExpectedVersion int64
}

// TransactionStore combines the reader and writer interfaces.
type TransactionStore interface {
	TransactionReader
	TransactionWriter
}
