// Package sweeper finds transactions whose deadlines passed and moves them on.
package sweeper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chris/marketplace-escrow/pkg/escrow"
	"github.com/chris/marketplace-escrow/pkg/metrics"
	"github.com/chris/marketplace-escrow/pkg/models"
	"github.com/chris/marketplace-escrow/pkg/scheduler"
)

// Job names, shared by the schedule file and the sweep lambda.
const (
	JobStaleAuthorizations = "stale-authorizations"
	JobDeliveryWindow      = "delivery-window"
	JobRentalEnds          = "rental-ends"
	JobRentalReminders     = "rental-reminders"
)

// Jobs lists every job the sweeper knows.
var Jobs = []string{JobStaleAuthorizations, JobDeliveryWindow, JobRentalEnds, JobRentalReminders}

// Escrow is the set of orchestrator operations the sweeps drive.
type Escrow interface {
	CancelStaleAuthorization(ctx context.Context, txID string) (*models.Transaction, error)
	AutoConfirmDelivery(ctx context.Context, txID string) (*models.Transaction, error)
	FinalizeRefund(ctx context.Context, txID string, actor escrow.Actor) (*models.Transaction, error)
	MarkReminderSent(ctx context.Context, txID string) (*models.Transaction, error)
}

// Lister finds sweep candidates.
type Lister interface {
	ListTransactionsByStatus(ctx context.Context, status models.TransactionStatus, createdBefore time.Time) ([]models.Transaction, error)
}

// Config holds the sweep deadlines.
type Config struct {
	StaleAuthorizationAfter time.Duration
	DeliveryWindow          time.Duration
	ReminderLead            time.Duration
}

// DefaultConfig returns the production deadlines.
func DefaultConfig() Config {
	return Config{
		StaleAuthorizationAfter: 24 * time.Hour,
		DeliveryWindow:          48 * time.Hour,
		ReminderLead:            24 * time.Hour,
	}
}

// Report summarizes one sweep. Skipped counts transactions another actor
// moved on between listing and processing. Overdue counts rentals past their
// end date that were never returned; the rental-ends job only reports them.
type Report struct {
	Job       string
	Visited   int
	Succeeded int
	Skipped   int
	Failed    int
	Overdue   int
}

// Sweeper runs the deadline sweeps.
type Sweeper struct {
	escrow Escrow
	lister Lister
	cfg    Config
	logger *slog.Logger
	now    func() time.Time
}

// New creates a Sweeper.
func New(e Escrow, lister Lister, cfg Config, logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{escrow: e, lister: lister, cfg: cfg, logger: logger, now: time.Now}
}

// WithClock replaces the clock, for tests.
func (s *Sweeper) WithClock(now func() time.Time) *Sweeper {
	s.now = now
	return s
}

// Run executes the named sweep once. It fails only when candidates cannot be
// listed; per-transaction failures are counted and logged.
func (s *Sweeper) Run(ctx context.Context, job string) (Report, error) {
	now := s.now()
	report := Report{Job: job}

	var candidates []models.Transaction
	var process func(ctx context.Context, tx models.Transaction) error
	var err error

	switch job {
	case JobStaleAuthorizations:
		cutoff := now.Add(-s.cfg.StaleAuthorizationAfter)
		candidates, err = s.list(ctx, cutoff, models.AUTHORIZED, models.PENDING)
		candidates = filter(candidates, func(tx models.Transaction) bool {
			return !tx.StaleSince().After(cutoff)
		})
		process = func(ctx context.Context, tx models.Transaction) error {
			_, err := s.escrow.CancelStaleAuthorization(ctx, tx.Id)
			return err
		}
	case JobDeliveryWindow:
		cutoff := now.Add(-s.cfg.DeliveryWindow)
		candidates, err = s.list(ctx, now, models.SHIPPED)
		candidates = filter(candidates, func(tx models.Transaction) bool {
			return tx.ShippedAt != nil && !tx.ShippedAt.After(cutoff)
		})
		process = func(ctx context.Context, tx models.Transaction) error {
			_, err := s.escrow.AutoConfirmDelivery(ctx, tx.Id)
			return err
		}
	case JobRentalEnds:
		var active []models.Transaction
		if active, err = s.list(ctx, now, models.RENTAL_IN_PROGRESS); err == nil {
			s.flagOverdue(ctx, &report, active, now)
			candidates, err = s.list(ctx, now, models.RENTAL_RETURNED)
		}
		candidates = filter(candidates, func(tx models.Transaction) bool {
			return !tx.DamageReported && tx.RentalEnd != nil && !tx.RentalEnd.After(now)
		})
		process = func(ctx context.Context, tx models.Transaction) error {
			_, err := s.escrow.FinalizeRefund(ctx, tx.Id, escrow.System())
			return err
		}
	case JobRentalReminders:
		horizon := now.Add(s.cfg.ReminderLead)
		candidates, err = s.list(ctx, now, models.RENTAL_IN_PROGRESS)
		candidates = filter(candidates, func(tx models.Transaction) bool {
			return !tx.ReminderSent && tx.RentalEnd != nil && !tx.RentalEnd.After(horizon)
		})
		process = func(ctx context.Context, tx models.Transaction) error {
			_, err := s.escrow.MarkReminderSent(ctx, tx.Id)
			return err
		}
	default:
		return report, fmt.Errorf("%w: %s", scheduler.ErrUnknownJob, job)
	}
	if err != nil {
		return report, fmt.Errorf("failed to list candidates for %s: %w", job, err)
	}

	for _, tx := range candidates {
		if ctx.Err() != nil {
			break
		}
		report.Visited++
		s.handle(ctx, &report, tx, process(ctx, tx))
	}

	s.logger.InfoContext(ctx, "sweep finished",
		"job", job, "visited", report.Visited, "succeeded", report.Succeeded,
		"skipped", report.Skipped, "failed", report.Failed, "overdue", report.Overdue)
	return report, nil
}

func (s *Sweeper) flagOverdue(ctx context.Context, report *Report, active []models.Transaction, now time.Time) {
	for _, tx := range active {
		if tx.RentalEnd == nil || tx.RentalEnd.After(now) {
			continue
		}
		report.Overdue++
		metrics.SweepItems.WithLabelValues(report.Job, "overdue").Inc()
		s.logger.WarnContext(ctx, "rental not returned after its end date",
			"job", report.Job, "transactionId", tx.Id, "rentalEnd", tx.RentalEnd.UTC())
	}
}

func (s *Sweeper) handle(ctx context.Context, report *Report, tx models.Transaction, err error) {
	var stateErr *escrow.InvalidStateError
	switch {
	case err == nil:
		report.Succeeded++
		metrics.SweepItems.WithLabelValues(report.Job, "succeeded").Inc()
	case errors.As(err, &stateErr):
		report.Skipped++
		metrics.SweepItems.WithLabelValues(report.Job, "skipped").Inc()
		s.logger.InfoContext(ctx, "transaction moved on before the sweep reached it",
			"job", report.Job, "transactionId", tx.Id, "status", stateErr.Status, "reason", stateErr.Reason)
	default:
		report.Failed++
		metrics.SweepItems.WithLabelValues(report.Job, "failed").Inc()
		s.logger.ErrorContext(ctx, "sweep failed for transaction",
			"job", report.Job, "transactionId", tx.Id, "error", err)
	}
}

func (s *Sweeper) list(ctx context.Context, createdBefore time.Time, statuses ...models.TransactionStatus) ([]models.Transaction, error) {
	var all []models.Transaction
	for _, status := range statuses {
		txs, err := s.lister.ListTransactionsByStatus(ctx, status, createdBefore)
		if err != nil {
			return nil, err
		}
		all = append(all, txs...)
	}
	return all, nil
}

func filter(txs []models.Transaction, keep func(models.Transaction) bool) []models.Transaction {
	var kept []models.Transaction
	for _, tx := range txs {
		if keep(tx) {
			kept = append(kept, tx)
		}
	}
	return kept
}

// Job wraps a sweep for the scheduler.
func (s *Sweeper) Job(name string, interval, jitter time.Duration) scheduler.Job {
	return scheduler.Job{
		Name:     name,
		Interval: interval,
		Jitter:   jitter,
		Run: func(ctx context.Context) error {
			_, err := s.Run(ctx, name)
			return err
		},
	}
}
