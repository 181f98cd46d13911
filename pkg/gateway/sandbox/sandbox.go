// Package sandbox is an in-memory payment processor. It keeps authorizations
// in process, honours idempotency keys and can inject failures, which makes
// it suitable for local runs and orchestrator tests.
package sandbox

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/chris/marketplace-escrow/pkg/gateway"
	"github.com/google/uuid"
)

type intent struct {
	id         string
	currency   string
	amount     int64
	capturable int64
	captured   int64
	refunded   int64
	status     string
	chargeID   string
}

// Transfer is a payout recorded by the sandbox.
type Transfer struct {
	ID          string
	Destination string
	Amount      int64
	Currency    string
}

type fault struct {
	err          error
	loseResponse bool
}

// Gateway implements gateway.Gateway in memory.
type Gateway struct {
	mu        sync.Mutex
	intents   map[string]*intent
	byCharge  map[string]*intent
	replies   map[string]any
	faults    map[string][]fault
	calls     map[string]int
	transfers []Transfer

	singleCapture bool
}

// New creates an empty sandbox processor.
func New() *Gateway {
	return &Gateway{
		intents:  make(map[string]*intent),
		byCharge: make(map[string]*intent),
		replies:  make(map[string]any),
		faults:   make(map[string][]fault),
		calls:    make(map[string]int),
	}
}

var _ gateway.Gateway = (*Gateway)(nil)

// FailNext makes the next call of op fail with err without any effect.
func (g *Gateway) FailNext(op string, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.faults[op] = append(g.faults[op], fault{err: err})
}

// LoseNextResponse applies the next call of op but reports an unknown outcome,
// as if the response was lost to a timeout.
func (g *Gateway) LoseNextResponse(op string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.faults[op] = append(g.faults[op], fault{loseResponse: true})
}

// DisableMulticapture makes every hold accept a single final capture, as
// card networks without multicapture support do.
func (g *Gateway) DisableMulticapture() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.singleCapture = true
}

// Calls returns how many times op reached the processor, faults included.
func (g *Gateway) Calls(op string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[op]
}

// Transfers returns the payouts made so far.
func (g *Gateway) Transfers() []Transfer {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Transfer(nil), g.transfers...)
}

// do runs one call under the lock, replaying the stored reply when the
// idempotency key was seen before.
func do[T any](g *Gateway, ctx context.Context, op, key string, apply func() (*T, error)) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, &gateway.Error{Op: op, Retryable: true, Err: fmt.Errorf("%w: %w", gateway.ErrOutcomeUnknown, err)}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls[op]++

	var f *fault
	if queued := g.faults[op]; len(queued) > 0 {
		f = &queued[0]
		g.faults[op] = queued[1:]
	}
	if f != nil && !f.loseResponse {
		return nil, f.err
	}

	if key != "" {
		if reply, ok := g.replies[op+"/"+key]; ok {
			return reply.(*T), nil
		}
	}
	result, err := apply()
	if err != nil {
		return nil, err
	}
	if key != "" {
		g.replies[op+"/"+key] = result
	}

	if f != nil && f.loseResponse {
		return nil, &gateway.Error{Op: op, Retryable: true, Err: gateway.ErrOutcomeUnknown}
	}
	return result, nil
}

func invalid(op, code, format string, args ...any) error {
	return &gateway.Error{Op: op, Code: code, Err: fmt.Errorf(format, args...)}
}

func (g *Gateway) Authorize(ctx context.Context, req gateway.AuthorizeRequest) (*gateway.Authorization, error) {
	return do(g, ctx, gateway.OpAuthorize, req.IdempotencyKey, func() (*gateway.Authorization, error) {
		if req.Amount <= 0 {
			return nil, invalid(gateway.OpAuthorize, "amount_too_small", "amount must be positive")
		}
		in := &intent{
			id:         "pi_" + uuid.NewString(),
			currency:   req.Currency,
			amount:     req.Amount,
			capturable: req.Amount,
			status:     gateway.StatusRequiresCapture,
		}
		g.intents[in.id] = in
		return &gateway.Authorization{ID: in.id, ClientSecret: in.id + "_secret", Status: in.status}, nil
	})
}

func (g *Gateway) Capture(ctx context.Context, req gateway.CaptureRequest) (*gateway.CaptureResult, error) {
	return do(g, ctx, gateway.OpCapture, req.IdempotencyKey, func() (*gateway.CaptureResult, error) {
		in, ok := g.intents[req.AuthorizationID]
		if !ok {
			return nil, invalid(gateway.OpCapture, "resource_missing", "no authorization %s", req.AuthorizationID)
		}
		if g.singleCapture && !req.Final {
			return nil, invalid(gateway.OpCapture, "multicapture_unavailable", "authorization %s does not support multiple captures", in.id)
		}
		amount := req.Amount
		if amount == 0 {
			amount = in.capturable
		}
		if in.status != gateway.StatusRequiresCapture || amount <= 0 || amount > in.capturable {
			return nil, invalid(gateway.OpCapture, "amount_too_large", "cannot capture %d of %d capturable", amount, in.capturable)
		}
		in.captured += amount
		in.capturable -= amount
		if req.Final {
			in.capturable = 0
		}
		if in.capturable == 0 {
			in.status = gateway.StatusSucceeded
		}
		if in.chargeID == "" {
			in.chargeID = "ch_" + uuid.NewString()
			g.byCharge[in.chargeID] = in
		}
		return &gateway.CaptureResult{CaptureID: in.chargeID, CapturedAmount: in.captured}, nil
	})
}

func (g *Gateway) Refund(ctx context.Context, req gateway.RefundRequest) (*gateway.RefundResult, error) {
	return do(g, ctx, gateway.OpRefund, req.IdempotencyKey, func() (*gateway.RefundResult, error) {
		in, ok := g.byCharge[req.CaptureID]
		if !ok {
			return nil, invalid(gateway.OpRefund, "resource_missing", "no charge %s", req.CaptureID)
		}
		refundable := in.captured - in.refunded
		amount := req.Amount
		if amount == 0 {
			amount = refundable
		}
		if amount <= 0 || amount > refundable {
			return nil, invalid(gateway.OpRefund, "amount_too_large", "cannot refund %d of %d", amount, refundable)
		}
		in.refunded += amount
		return &gateway.RefundResult{RefundID: "re_" + uuid.NewString(), Amount: amount}, nil
	})
}

func (g *Gateway) Release(ctx context.Context, req gateway.ReleaseRequest) (*gateway.ReleaseResult, error) {
	return do(g, ctx, gateway.OpRelease, req.IdempotencyKey, func() (*gateway.ReleaseResult, error) {
		in, ok := g.intents[req.AuthorizationID]
		if !ok {
			return nil, invalid(gateway.OpRelease, "resource_missing", "no authorization %s", req.AuthorizationID)
		}
		in.capturable = 0
		if in.captured == 0 {
			in.status = gateway.StatusCanceled
		} else {
			in.status = gateway.StatusSucceeded
		}
		return &gateway.ReleaseResult{AuthorizationID: in.id, Status: in.status}, nil
	})
}

func (g *Gateway) Transfer(ctx context.Context, req gateway.TransferRequest) (*gateway.TransferResult, error) {
	return do(g, ctx, gateway.OpTransfer, req.IdempotencyKey, func() (*gateway.TransferResult, error) {
		if req.Destination == "" || req.Amount <= 0 {
			return nil, invalid(gateway.OpTransfer, "parameter_invalid", "transfer needs a destination and a positive amount")
		}
		tr := Transfer{ID: "tr_" + uuid.NewString(), Destination: req.Destination, Amount: req.Amount, Currency: req.Currency}
		g.transfers = append(g.transfers, tr)
		return &gateway.TransferResult{TransferID: tr.ID}, nil
	})
}

func (g *Gateway) Retrieve(ctx context.Context, authorizationID string) (*gateway.Snapshot, error) {
	return do(g, ctx, gateway.OpRetrieve, "", func() (*gateway.Snapshot, error) {
		in, ok := g.intents[authorizationID]
		if !ok {
			return nil, invalid(gateway.OpRetrieve, "resource_missing", "no authorization %s", authorizationID)
		}
		return &gateway.Snapshot{
			AuthorizationID:  in.id,
			Status:           in.status,
			Amount:           in.amount,
			AmountCapturable: in.capturable,
			AmountCaptured:   in.captured,
			AmountRefunded:   in.refunded,
			ChargeID:         in.chargeID,
			Multicapture:     !g.singleCapture,
		}, nil
	})
}

// ErrUnavailable is a retryable failure handy for tests.
var ErrUnavailable = &gateway.Error{Op: "sandbox", Retryable: true, Err: errors.New("processor unavailable")}
