// Package escrow is the state machine that moves marketplace payments between
// buyer, platform and seller. It is the only writer of the ledger and the
// event log; API handlers, the webhook reconciler and the sweeper all go
// through it.
package escrow

import (
	"context"
	"log/slog"
	"time"

	"github.com/chris/marketplace-escrow/pkg/gateway"
	"github.com/chris/marketplace-escrow/pkg/models"
	"github.com/chris/marketplace-escrow/pkg/notify"
	"github.com/chris/marketplace-escrow/pkg/risk"
	"github.com/chris/marketplace-escrow/pkg/storage"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Service is the full set of escrow operations.
type Service interface {
	CreateAndAuthorize(ctx context.Context, actor Actor, req CreateRequest) (*CreateResult, error)

	RequestRelease(ctx context.Context, txID string, actor Actor, note string) (*models.Transaction, error)
	MarkShipped(ctx context.Context, txID string, actor Actor, trackingRef string) (*models.Transaction, error)
	Capture(ctx context.Context, txID string, actor Actor, amount int64) (*models.Transaction, error)
	Refund(ctx context.Context, txID string, actor Actor, amount int64) (*models.Transaction, error)

	OpenDispute(ctx context.Context, txID string, actor Actor, reason, evidence string) (*models.Transaction, error)
	ResolveDispute(ctx context.Context, txID string, actor Actor, res Resolution) (*models.Transaction, error)

	StartRental(ctx context.Context, txID string, actor Actor) (*models.Transaction, error)
	CompleteRental(ctx context.Context, txID string, actor Actor) (*models.Transaction, error)
	ReportDamage(ctx context.Context, txID string, actor Actor, note string) (*models.Transaction, error)
	DeductDamage(ctx context.Context, txID string, actor Actor, amount int64) (*models.Transaction, error)
	FinalizeRefund(ctx context.Context, txID string, actor Actor) (*models.Transaction, error)

	CancelStaleAuthorization(ctx context.Context, txID string) (*models.Transaction, error)
	AutoConfirmDelivery(ctx context.Context, txID string) (*models.Transaction, error)
	MarkReminderSent(ctx context.Context, txID string) (*models.Transaction, error)

	ApplyProcessorEvent(ctx context.Context, txID string, ev gateway.Event) (*models.Transaction, error)
}

// Config holds the orchestrator's tunables.
type Config struct {
	// InstanceID prefixes lease owners so a held lease can be traced to a process.
	InstanceID string

	GatewayTimeout     time.Duration
	GatewayMaxAttempts uint
	GatewayBackoff     time.Duration

	// LeaseTTL must exceed the whole gateway retry budget of one transition.
	LeaseTTL      time.Duration
	LeaseAttempts uint
	LeaseBackoff  time.Duration

	// PlatformFeeBPS is the platform fee in basis points of the sale price
	// or rental fee. Deposits carry no fee.
	PlatformFeeBPS int64
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		InstanceID:         "escrow",
		GatewayTimeout:     10 * time.Second,
		GatewayMaxAttempts: 3,
		GatewayBackoff:     200 * time.Millisecond,
		LeaseTTL:           2 * time.Minute,
		LeaseAttempts:      5,
		LeaseBackoff:       100 * time.Millisecond,
		PlatformFeeBPS:     500,
	}
}

// Orchestrator implements Service.
type Orchestrator struct {
	store    storage.EscrowStore
	gateway  gateway.Gateway
	screener risk.Screener
	notifier notify.Notifier
	logger   *slog.Logger
	tracer   trace.Tracer
	now      func() time.Time
	cfg      Config
}

var _ Service = (*Orchestrator)(nil)

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithScreener sets the risk screen run before authorization.
func WithScreener(s risk.Screener) Option { return func(o *Orchestrator) { o.screener = s } }

// WithNotifier sets the sink for buyer and seller notices.
func WithNotifier(n notify.Notifier) Option { return func(o *Orchestrator) { o.notifier = n } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(o *Orchestrator) { o.logger = l } }

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option { return func(o *Orchestrator) { o.now = now } }

// New creates an Orchestrator.
func New(store storage.EscrowStore, gw gateway.Gateway, cfg Config, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:    store,
		gateway:  gw,
		screener: &risk.Static{},
		logger:   slog.Default(),
		tracer:   otel.Tracer("github.com/chris/marketplace-escrow/pkg/escrow"),
		now:      time.Now,
		cfg:      cfg,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.notifier == nil {
		o.notifier = &notify.LogNotifier{Logger: o.logger}
	}
	return o
}

// PlatformFee is the fee charged on a transaction's non-deposit amount.
func (o *Orchestrator) PlatformFee(tx *models.Transaction) int64 {
	return (tx.AuthorizedAmount - tx.Deposit) * o.cfg.PlatformFeeBPS / 10000
}
