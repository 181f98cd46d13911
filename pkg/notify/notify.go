// Package notify delivers fire-and-forget notices to buyers and sellers.
// Delivery is best effort; a failed notice never affects a transaction.
package notify

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Kind names a notice template.
type Kind string

const (
	PaymentInitiated  Kind = "payment_initiated"
	EscrowReleased    Kind = "escrow_released"
	RefundIssued      Kind = "refund_issued"
	AutoCancelled     Kind = "auto_cancelled"
	DeliveryConfirmed Kind = "delivery_confirmed"
	RentalCompleted   Kind = "rental_completed"
	RentalReminder    Kind = "rental_reminder"
	DisputeOpened     Kind = "dispute_opened"
	DisputeResolved   Kind = "dispute_resolved"
	PayoutFailed      Kind = "payout_failed"
)

// Notice is addressed to user ids; resolving them to contacts is the sink's job.
type Notice struct {
	Kind          Kind      `json:"kind"`
	TransactionID string    `json:"transaction_id"`
	Recipients    []string  `json:"recipients"`
	Status        string    `json:"status"`
	Amount        int64     `json:"amount,omitempty"`
	Currency      string    `json:"currency,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Notifier defines the interface for a notice sink.
type Notifier interface {
	Notify(ctx context.Context, n Notice) error
}

// LogNotifier writes notices to the structured log. It is the default sink
// for local runs.
type LogNotifier struct {
	Logger *slog.Logger
}

var _ Notifier = (*LogNotifier)(nil)

func (l *LogNotifier) Notify(ctx context.Context, n Notice) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "notice",
		"kind", n.Kind,
		"transactionId", n.TransactionID,
		"recipients", n.Recipients,
		"status", n.Status,
		"amount", n.Amount,
	)
	return nil
}

// Multi fans a notice out to every sink and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, n Notice) error {
	var errs []error
	for _, sink := range m {
		if err := sink.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
