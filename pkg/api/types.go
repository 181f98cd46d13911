// Package api holds the HTTP contract of the escrow service: request and
// response bodies and the server interface mounted on the router. It follows
// the layout of an oapi-codegen chi server.
package api

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

// TransactionKind defines model for TransactionKind.
type TransactionKind string

const (
	RENT TransactionKind = "RENT"
	SALE TransactionKind = "SALE"
)

// TransactionStatus defines model for TransactionStatus.
type TransactionStatus string

// DisputeOutcome defines model for DisputeOutcome.
type DisputeOutcome string

const (
	REFUNDBUYER   DisputeOutcome = "REFUND_BUYER"
	RELEASESELLER DisputeOutcome = "RELEASE_SELLER"
)

// NewTransaction defines model for NewTransaction.
type NewTransaction struct {
	Kind              TransactionKind    `json:"kind"`
	ListingId         string             `json:"listing_id"`
	BuyerId           string             `json:"buyer_id"`
	SellerId          string             `json:"seller_id"`
	PayoutDestination *string            `json:"payout_destination,omitempty"`
	Amount            int64              `json:"amount"`
	Deposit           *int64             `json:"deposit,omitempty"`
	Currency          *string            `json:"currency,omitempty"`
	RentalStart       *time.Time         `json:"rental_start,omitempty"`
	RentalEnd         *time.Time         `json:"rental_end,omitempty"`
	Metadata          *map[string]string `json:"metadata,omitempty"`
}

// Transaction defines model for Transaction.
type Transaction struct {
	Id                     openapi_types.UUID `json:"id"`
	ListingId              string             `json:"listing_id"`
	BuyerId                string             `json:"buyer_id"`
	SellerId               string             `json:"seller_id"`
	Kind                   TransactionKind    `json:"kind"`
	Status                 TransactionStatus  `json:"status"`
	Currency               string             `json:"currency"`
	AuthorizationId        *string            `json:"authorization_id,omitempty"`
	AuthorizedAmount       int64              `json:"authorized_amount"`
	CapturedAmount         int64              `json:"captured_amount"`
	RefundedAmount         int64              `json:"refunded_amount"`
	ReleasedAmount         int64              `json:"released_amount"`
	RemainingAuthorization int64              `json:"remaining_authorization"`
	PlatformFee            int64              `json:"platform_fee"`
	Deposit                *int64             `json:"deposit,omitempty"`
	PaidOutAmount          int64              `json:"paid_out_amount"`
	PayoutStatus           *string            `json:"payout_status,omitempty"`
	RentalStart            *time.Time         `json:"rental_start,omitempty"`
	RentalEnd              *time.Time         `json:"rental_end,omitempty"`
	ShippedAt              *time.Time         `json:"shipped_at,omitempty"`
	TrackingRef            *string            `json:"tracking_ref,omitempty"`
	DeliveredAt            *time.Time         `json:"delivered_at,omitempty"`
	DamageReported         bool               `json:"damage_reported"`
	Version                int64              `json:"version"`
	CreatedAt              time.Time          `json:"created_at"`
	UpdatedAt              time.Time          `json:"updated_at"`
}

// CreateTransactionResponse defines model for CreateTransactionResponse.
type CreateTransactionResponse struct {
	Transaction     Transaction `json:"transaction"`
	ClientSecret    *string     `json:"client_secret,omitempty"`
	AuthorizationId *string     `json:"authorization_id,omitempty"`
}

// TransitionResponse defines model for TransitionResponse.
type TransitionResponse struct {
	Id     openapi_types.UUID `json:"id"`
	Status TransactionStatus  `json:"status"`
}

// PaymentEvent defines model for PaymentEvent.
type PaymentEvent struct {
	EventId           string             `json:"event_id"`
	TransactionId     openapi_types.UUID `json:"transaction_id"`
	Type              string             `json:"type"`
	Actor             string             `json:"actor"`
	ProcessorObjectId *string            `json:"processor_object_id,omitempty"`
	Metadata          *map[string]string `json:"metadata,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
}

// Dispute defines model for Dispute.
type Dispute struct {
	TransactionId  openapi_types.UUID `json:"transaction_id"`
	OpenedBy       string             `json:"opened_by"`
	Reason         string             `json:"reason"`
	Evidence       *string            `json:"evidence,omitempty"`
	Status         string             `json:"status"`
	Outcome        *DisputeOutcome    `json:"outcome,omitempty"`
	Deduction      *int64             `json:"deduction,omitempty"`
	ResolvedBy     *string            `json:"resolved_by,omitempty"`
	ResolutionNote *string            `json:"resolution_note,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	ResolvedAt     *time.Time         `json:"resolved_at,omitempty"`
}

// Error defines model for Error.
type Error struct {
	Message string  `json:"message"`
	Code    *string `json:"code,omitempty"`
}

// AmountRequest defines model for AmountRequest. A missing amount means everything available.
type AmountRequest struct {
	Amount *int64 `json:"amount,omitempty"`
}

// NoteRequest defines model for NoteRequest.
type NoteRequest struct {
	Note *string `json:"note,omitempty"`
}

// ShipRequest defines model for ShipRequest.
type ShipRequest struct {
	TrackingRef string `json:"tracking_ref"`
}

// DisputeRequest defines model for DisputeRequest.
type DisputeRequest struct {
	Reason   string  `json:"reason"`
	Evidence *string `json:"evidence,omitempty"`
}

// ResolveDisputeRequest defines model for ResolveDisputeRequest.
type ResolveDisputeRequest struct {
	Outcome   DisputeOutcome `json:"outcome"`
	Deduction *int64         `json:"deduction,omitempty"`
	Note      *string        `json:"note,omitempty"`
}

// DamageRequest defines model for DamageRequest.
type DamageRequest struct {
	Amount int64 `json:"amount"`
}

// ListTransactionsParams defines parameters for ListTransactions.
type ListTransactionsParams struct {
	UserId string `form:"user_id" json:"user_id"`
}
