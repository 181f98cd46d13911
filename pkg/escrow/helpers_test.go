package escrow_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/chris/marketplace-escrow/pkg/escrow"
	"github.com/chris/marketplace-escrow/pkg/gateway"
	"github.com/chris/marketplace-escrow/pkg/gateway/sandbox"
	"github.com/chris/marketplace-escrow/pkg/models"
	"github.com/chris/marketplace-escrow/pkg/notify"
	"github.com/chris/marketplace-escrow/pkg/risk"
	"github.com/chris/marketplace-escrow/pkg/storage/memory"
	"github.com/stretchr/testify/require"
)

const (
	buyerID  = "buyer-1"
	sellerID = "seller-1"
	adminID  = "admin-1"
	payoutTo = "acct_seller"
)

var now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type noticeRecorder struct {
	mu      sync.Mutex
	notices []notify.Notice
}

func (r *noticeRecorder) Notify(_ context.Context, n notify.Notice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
	return nil
}

func (r *noticeRecorder) kinds() []notify.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kinds []notify.Kind
	for _, n := range r.notices {
		kinds = append(kinds, n.Kind)
	}
	return kinds
}

type harness struct {
	o       *escrow.Orchestrator
	store   *memory.Store
	gw      *sandbox.Gateway
	notices *noticeRecorder
}

func newHarness(t *testing.T, opts ...escrow.Option) *harness {
	t.Helper()
	return newHarnessWithGateway(t, sandbox.New(), opts...)
}

func newHarnessWithGateway(t *testing.T, gw *sandbox.Gateway, opts ...escrow.Option) *harness {
	t.Helper()
	return newHarnessFor(t, gw, gw, opts...)
}

func newHarnessFor(t *testing.T, sb *sandbox.Gateway, gw gateway.Gateway, opts ...escrow.Option) *harness {
	t.Helper()
	cfg := escrow.DefaultConfig()
	cfg.InstanceID = "test"
	cfg.GatewayBackoff = time.Millisecond
	cfg.LeaseBackoff = time.Millisecond
	cfg.LeaseAttempts = 50

	h := &harness{store: memory.New(), gw: sb, notices: &noticeRecorder{}}
	base := []escrow.Option{
		escrow.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		escrow.WithNotifier(h.notices),
		escrow.WithClock(func() time.Time { return now }),
	}
	h.o = escrow.New(h.store, gw, cfg, append(base, opts...)...)
	return h
}

func (h *harness) sale(t *testing.T, amount int64) *models.Transaction {
	t.Helper()
	res, err := h.o.CreateAndAuthorize(context.Background(), escrow.User(buyerID), escrow.CreateRequest{
		Kind:    models.SALE,
		Parties: models.Parties{ListingId: "listing-1", BuyerId: buyerID, SellerId: sellerID, PayoutDestination: payoutTo},
		Amount:  amount,
	})
	require.NoError(t, err)
	return res.Transaction
}

func (h *harness) rental(t *testing.T, amount, deposit int64) *models.Transaction {
	t.Helper()
	res, err := h.o.CreateAndAuthorize(context.Background(), escrow.User(buyerID), escrow.CreateRequest{
		Kind:        models.RENT,
		Parties:     models.Parties{ListingId: "listing-2", BuyerId: buyerID, SellerId: sellerID, PayoutDestination: payoutTo},
		Amount:      amount,
		Deposit:     deposit,
		RentalStart: now,
		RentalEnd:   now.Add(72 * time.Hour),
	})
	require.NoError(t, err)
	return res.Transaction
}

func (h *harness) get(t *testing.T, txID string) *models.Transaction {
	t.Helper()
	tx, err := h.store.GetTransaction(context.Background(), txID)
	require.NoError(t, err)
	require.True(t, tx.Balanced(), "amounts exceed the authorization: %+v", tx)
	return tx
}

func (h *harness) eventTypes(t *testing.T, txID string) []string {
	t.Helper()
	events, err := h.store.ListEvents(context.Background(), txID)
	require.NoError(t, err)
	types := make([]string, 0, len(events))
	for _, e := range events {
		types = append(types, e.Type)
	}
	return types
}

func (h *harness) transferred() []int64 {
	var amounts []int64
	for _, tr := range h.gw.Transfers() {
		amounts = append(amounts, tr.Amount)
	}
	return amounts
}

func blockBuyer() escrow.Option {
	return escrow.WithScreener(&risk.Static{BlockedBuyers: map[string]bool{buyerID: true}})
}
