// Package gateway is the boundary to the external payment processor.
//
// Every mutating call carries an idempotency key so that a call retried after
// a timeout has the same effect as the original one. Processor object ids
// returned here are the join key back to local transactions.
package gateway

import (
	"context"
	"fmt"
)

// Gateway is the payment processor as seen by the escrow orchestrator.
type Gateway interface {
	// Authorize places a manual-capture hold on the buyer's funds.
	Authorize(ctx context.Context, req AuthorizeRequest) (*Authorization, error)

	// Capture converts part or all of a hold into a charge.
	Capture(ctx context.Context, req CaptureRequest) (*CaptureResult, error)

	// Refund returns captured money to the buyer.
	Refund(ctx context.Context, req RefundRequest) (*RefundResult, error)

	// Release voids whatever part of a hold has not been captured.
	Release(ctx context.Context, req ReleaseRequest) (*ReleaseResult, error)

	// Transfer pays captured money out to a connected seller account.
	Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error)

	// Retrieve returns the processor's current view of an authorization.
	Retrieve(ctx context.Context, authorizationID string) (*Snapshot, error)
}

type AuthorizeRequest struct {
	Amount         int64
	Currency       string
	Metadata       map[string]string
	IdempotencyKey string
}

type Authorization struct {
	ID           string
	ClientSecret string
	Status       string
}

// CaptureRequest captures Amount from the hold. Final releases whatever is
// left of the hold after this capture.
type CaptureRequest struct {
	AuthorizationID string
	Amount          int64
	Final           bool
	IdempotencyKey  string
}

// CaptureResult reports the cumulative amount captured on the authorization.
type CaptureResult struct {
	CaptureID      string
	CapturedAmount int64
}

// RefundRequest refunds Amount of the charge. Zero refunds everything.
type RefundRequest struct {
	CaptureID      string
	Amount         int64
	IdempotencyKey string
}

type RefundResult struct {
	RefundID string
	Amount   int64
}

type ReleaseRequest struct {
	AuthorizationID string
	IdempotencyKey  string
}

type ReleaseResult struct {
	AuthorizationID string
	Status          string
}

type TransferRequest struct {
	Destination    string
	Amount         int64
	Currency       string
	TransferGroup  string
	IdempotencyKey string
}

type TransferResult struct {
	TransferID string
}

// Snapshot is the processor's state of an authorization. Amounts are cumulative.
type Snapshot struct {
	AuthorizationID  string
	Status           string
	Amount           int64
	AmountCapturable int64
	AmountCaptured   int64
	AmountRefunded   int64
	ChargeID         string

	// Multicapture reports whether the hold accepts more than one capture.
	// Without it the first capture must be final.
	Multicapture bool
}

// Authorization statuses reported in snapshots.
const (
	StatusRequiresAction  = "requires_action"
	StatusRequiresCapture = "requires_capture"
	StatusSucceeded       = "succeeded"
	StatusCanceled        = "canceled"
)

// Operation names used in idempotency keys, metrics and errors.
const (
	OpAuthorize = "authorize"
	OpCapture   = "capture"
	OpRefund    = "refund"
	OpRelease   = "release"
	OpTransfer  = "transfer"
	OpRetrieve  = "retrieve"
)

// IdempotencyKey derives the key of one logical processor call. The
// generation is the transaction version observed under the lease, so a retry
// of the same transition reuses the key and the next transition gets a new one.
func IdempotencyKey(txID, operation string, generation int64) string {
	return fmt.Sprintf("escrow:%s:%s:%d", txID, operation, generation)
}
