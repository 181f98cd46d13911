package storage

import (
	"context"
	"time"

	"github.com/chris/marketplace-escrow/pkg/models"
)

// LeaseManager grants exclusive, expiring ownership of a transaction row.
// A lease must be held from the precondition check until the commit.
type LeaseManager interface {
	// AcquireLease takes the lease for owner and returns the row as it was when the lease was granted.
	// It returns ErrLeaseHeld while another owner holds an unexpired lease.
	AcquireLease(ctx context.Context, txID, owner string, ttl time.Duration) (*models.Transaction, error)

	// ReleaseLease gives the lease back. Releasing a lease that is no longer held is not an error.
	ReleaseLease(ctx context.Context, txID, owner string) error
}
