// Package stripe adapts the Stripe API to the gateway interface.
package stripe

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/chris/marketplace-escrow/pkg/gateway"
	stripego "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// Adapter implements gateway.Gateway on top of an explicit Stripe client.
type Adapter struct {
	api *client.API
}

var _ gateway.Gateway = (*Adapter)(nil)

// Options configures the Stripe backends. BaseURL is only set in tests.
type Options struct {
	SecretKey  string
	BaseURL    string
	HTTPClient *http.Client
}

// New creates an Adapter. Network retries are left to the orchestrator, which
// owns the idempotency keys and the retry budget.
func New(opts Options) *Adapter {
	cfg := &stripego.BackendConfig{
		MaxNetworkRetries: stripego.Int64(0),
		HTTPClient:        opts.HTTPClient,
		LeveledLogger:     &stripego.LeveledLogger{Level: stripego.LevelError},
	}
	if opts.BaseURL != "" {
		cfg.URL = stripego.String(opts.BaseURL)
	}
	backends := &stripego.Backends{
		API:     stripego.GetBackendWithConfig(stripego.APIBackend, cfg),
		Connect: stripego.GetBackendWithConfig(stripego.ConnectBackend, cfg),
		Uploads: stripego.GetBackendWithConfig(stripego.UploadsBackend, cfg),
	}
	api := &client.API{}
	api.Init(opts.SecretKey, backends)
	return &Adapter{api: api}
}

func (a *Adapter) Authorize(ctx context.Context, req gateway.AuthorizeRequest) (*gateway.Authorization, error) {
	params := &stripego.PaymentIntentParams{
		Amount:        stripego.Int64(req.Amount),
		Currency:      stripego.String(req.Currency),
		CaptureMethod: stripego.String(string(stripego.PaymentIntentCaptureMethodManual)),
		PaymentMethodOptions: &stripego.PaymentIntentPaymentMethodOptionsParams{
			Card: &stripego.PaymentIntentPaymentMethodOptionsCardParams{
				RequestMulticapture: stripego.String("if_available"),
			},
		},
	}
	params.Context = ctx
	params.SetIdempotencyKey(req.IdempotencyKey)
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	pi, err := a.api.PaymentIntents.New(params)
	if err != nil {
		return nil, classify(gateway.OpAuthorize, err)
	}
	return &gateway.Authorization{ID: pi.ID, ClientSecret: pi.ClientSecret, Status: string(pi.Status)}, nil
}

func (a *Adapter) Capture(ctx context.Context, req gateway.CaptureRequest) (*gateway.CaptureResult, error) {
	params := &stripego.PaymentIntentCaptureParams{
		FinalCapture: stripego.Bool(req.Final),
	}
	if req.Amount > 0 {
		params.AmountToCapture = stripego.Int64(req.Amount)
	}
	params.Context = ctx
	params.SetIdempotencyKey(req.IdempotencyKey)
	params.AddExpand("latest_charge")

	pi, err := a.api.PaymentIntents.Capture(req.AuthorizationID, params)
	if err != nil {
		return nil, classify(gateway.OpCapture, err)
	}
	result := &gateway.CaptureResult{CapturedAmount: pi.AmountReceived}
	if pi.LatestCharge != nil {
		result.CaptureID = pi.LatestCharge.ID
	}
	return result, nil
}

func (a *Adapter) Refund(ctx context.Context, req gateway.RefundRequest) (*gateway.RefundResult, error) {
	params := &stripego.RefundParams{Charge: stripego.String(req.CaptureID)}
	if req.Amount > 0 {
		params.Amount = stripego.Int64(req.Amount)
	}
	params.Context = ctx
	params.SetIdempotencyKey(req.IdempotencyKey)

	r, err := a.api.Refunds.New(params)
	if err != nil {
		return nil, classify(gateway.OpRefund, err)
	}
	return &gateway.RefundResult{RefundID: r.ID, Amount: r.Amount}, nil
}

// Release cancels the payment intent, voiding whatever is still capturable.
// Funds already captured under multicapture are not affected.
func (a *Adapter) Release(ctx context.Context, req gateway.ReleaseRequest) (*gateway.ReleaseResult, error) {
	params := &stripego.PaymentIntentCancelParams{}
	params.Context = ctx
	params.SetIdempotencyKey(req.IdempotencyKey)

	pi, err := a.api.PaymentIntents.Cancel(req.AuthorizationID, params)
	if err != nil {
		return nil, classify(gateway.OpRelease, err)
	}
	return &gateway.ReleaseResult{AuthorizationID: pi.ID, Status: string(pi.Status)}, nil
}

func (a *Adapter) Transfer(ctx context.Context, req gateway.TransferRequest) (*gateway.TransferResult, error) {
	params := &stripego.TransferParams{
		Amount:      stripego.Int64(req.Amount),
		Currency:    stripego.String(req.Currency),
		Destination: stripego.String(req.Destination),
	}
	if req.TransferGroup != "" {
		params.TransferGroup = stripego.String(req.TransferGroup)
	}
	params.Context = ctx
	params.SetIdempotencyKey(req.IdempotencyKey)

	tr, err := a.api.Transfers.New(params)
	if err != nil {
		return nil, classify(gateway.OpTransfer, err)
	}
	return &gateway.TransferResult{TransferID: tr.ID}, nil
}

func (a *Adapter) Retrieve(ctx context.Context, authorizationID string) (*gateway.Snapshot, error) {
	params := &stripego.PaymentIntentParams{}
	params.Context = ctx
	params.AddExpand("latest_charge")

	pi, err := a.api.PaymentIntents.Get(authorizationID, params)
	if err != nil {
		return nil, classify(gateway.OpRetrieve, err)
	}
	snap := &gateway.Snapshot{
		AuthorizationID:  pi.ID,
		Status:           string(pi.Status),
		Amount:           pi.Amount,
		AmountCapturable: pi.AmountCapturable,
		AmountCaptured:   pi.AmountReceived,
	}
	if pi.LatestCharge != nil {
		snap.ChargeID = pi.LatestCharge.ID
		snap.AmountRefunded = pi.LatestCharge.AmountRefunded
		if pi.LatestCharge.AmountCaptured > 0 {
			snap.AmountCaptured = pi.LatestCharge.AmountCaptured
		}
		if pm := pi.LatestCharge.PaymentMethodDetails; pm != nil && pm.Card != nil && pm.Card.Multicapture != nil {
			snap.Multicapture = string(pm.Card.Multicapture.Status) == "available"
		}
	}
	return snap, nil
}

// classify maps Stripe failures onto gateway.Error. Server errors and rate
// limits are retryable; transport failures leave the outcome unknown.
func classify(op string, err error) error {
	var serr *stripego.Error
	if errors.As(err, &serr) {
		retryable := serr.HTTPStatusCode >= http.StatusInternalServerError ||
			serr.HTTPStatusCode == http.StatusTooManyRequests ||
			serr.Type == stripego.ErrorTypeAPI
		return &gateway.Error{Op: op, Retryable: retryable, Code: string(serr.Code), Err: err}
	}

	var nerr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &nerr) && nerr.Timeout()) {
		return &gateway.Error{Op: op, Retryable: true, Err: errors.Join(gateway.ErrOutcomeUnknown, err)}
	}
	if errors.Is(err, context.Canceled) {
		return &gateway.Error{Op: op, Err: err}
	}
	// Connection failures before a response also leave the outcome open.
	return &gateway.Error{Op: op, Retryable: true, Err: errors.Join(gateway.ErrOutcomeUnknown, err)}
}
