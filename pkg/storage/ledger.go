package storage

import (
	"context"

	"github.com/chris/marketplace-escrow/pkg/models"
)

// EventReader defines the interface for reading the payment event log.
type EventReader interface {
	// ListEvents retrieves every event of a transaction in chronological order.
	ListEvents(ctx context.Context, txID string) ([]models.PaymentEvent, error)

	// HasProcessorEvent reports whether a processor notification was already applied to the transaction.
	HasProcessorEvent(ctx context.Context, txID, objectID, eventType string) (bool, error)
}

// DisputeReader defines the interface for reading disputes.
type DisputeReader interface {
	// GetDispute retrieves the dispute of a transaction.
	GetDispute(ctx context.Context, txID string) (*models.Dispute, error)
}
