package models

import (
	"time"
)

// TransactionStatus defines the possible states of an escrow transaction.
type TransactionStatus string

const (
	PENDING            TransactionStatus = "PENDING"
	MANUAL_REVIEW      TransactionStatus = "MANUAL_REVIEW"
	AUTHORIZED         TransactionStatus = "AUTHORIZED"
	SHIPPED            TransactionStatus = "SHIPPED"
	PENDING_RELEASE    TransactionStatus = "PENDING_RELEASE"
	PARTIALLY_RELEASED TransactionStatus = "PARTIALLY_RELEASED"
	RELEASED           TransactionStatus = "RELEASED"
	PENDING_DISPUTE    TransactionStatus = "PENDING_DISPUTE"
	REFUNDED           TransactionStatus = "REFUNDED"
	CANCELLED          TransactionStatus = "CANCELLED"
	FAILED             TransactionStatus = "FAILED"
	RENTAL_IN_PROGRESS TransactionStatus = "RENTAL_IN_PROGRESS"
	RENTAL_RETURNED    TransactionStatus = "RENTAL_RETURNED"
	DAMAGE_RESOLVED    TransactionStatus = "DAMAGE_RESOLVED"
	COMPLETED          TransactionStatus = "COMPLETED"
)

// IsTerminal reports whether no further transition may leave the status.
func (s TransactionStatus) IsTerminal() bool {
	switch s {
	case MANUAL_REVIEW, REFUNDED, CANCELLED, FAILED, COMPLETED:
		return true
	}
	return false
}

// In reports whether the status is one of the given statuses.
func (s TransactionStatus) In(statuses ...TransactionStatus) bool {
	for _, candidate := range statuses {
		if s == candidate {
			return true
		}
	}
	return false
}

// TransactionKind distinguishes one-time sales from rentals.
type TransactionKind string

const (
	SALE TransactionKind = "SALE"
	RENT TransactionKind = "RENT"
)

// PayoutStatus tracks the seller transfer that follows a capture.
type PayoutStatus string

const (
	PayoutNone        PayoutStatus = ""
	PayoutTransferred PayoutStatus = "TRANSFERRED"
	PayoutFailed      PayoutStatus = "FAILED"
	PayoutSkipped     PayoutStatus = "SKIPPED"
)

// Transaction represents the internal domain model for an escrow transaction.
// Amounts are in minor currency units.
// It includes dynamodbav tags for marshalling.
type Transaction struct {
	Id                string            `dynamodbav:"id"`
	ListingId         string            `dynamodbav:"listing_id"`
	BuyerId           string            `dynamodbav:"buyer_id"`
	SellerId          string            `dynamodbav:"seller_id"`
	PayoutDestination string            `dynamodbav:"payout_destination,omitempty"`
	Kind              TransactionKind   `dynamodbav:"kind"`
	Status            TransactionStatus `dynamodbav:"status"`
	Currency          string            `dynamodbav:"currency"`

	AuthorizationId  string `dynamodbav:"authorization_id,omitempty"`
	CaptureId        string `dynamodbav:"capture_id,omitempty"`
	PayoutTransferId string `dynamodbav:"payout_transfer_id,omitempty"`

	// CapturedAmount is the captured money still held by the platform or
	// paid out. It only shrinks when the transaction is refunded.
	AuthorizedAmount int64        `dynamodbav:"authorized_amount"`
	CapturedAmount   int64        `dynamodbav:"captured_amount"`
	RefundedAmount   int64        `dynamodbav:"refunded_amount"`
	ReleasedAmount   int64        `dynamodbav:"released_amount"`
	PlatformFee      int64        `dynamodbav:"platform_fee"`
	Deposit          int64        `dynamodbav:"deposit,omitempty"`
	PaidOutAmount    int64        `dynamodbav:"paid_out_amount"`
	PayoutStatus     PayoutStatus `dynamodbav:"payout_status,omitempty"`

	RentalStart *time.Time `dynamodbav:"rental_start,omitempty"`
	RentalEnd   *time.Time `dynamodbav:"rental_end,omitempty"`

	ReleaseRequestedAt *time.Time `dynamodbav:"release_requested_at,omitempty"`
	ReleaseRequestedBy string     `dynamodbav:"release_requested_by,omitempty"`
	ReleaseNote        string     `dynamodbav:"release_note,omitempty"`
	ShippedAt          *time.Time `dynamodbav:"shipped_at,omitempty"`
	TrackingRef        string     `dynamodbav:"tracking_ref,omitempty"`
	DeliveredAt        *time.Time `dynamodbav:"delivered_at,omitempty"`
	PickedUpAt         *time.Time `dynamodbav:"picked_up_at,omitempty"`
	ReturnedAt         *time.Time `dynamodbav:"returned_at,omitempty"`
	DamageReported     bool       `dynamodbav:"damage_reported"`
	ReminderSent       bool       `dynamodbav:"reminder_sent"`

	// FeeDeferred marks a rental whose hold allows a single capture. The
	// rental fee is then captured together with the deposit decision.
	FeeDeferred bool `dynamodbav:"fee_deferred,omitempty"`

	Metadata map[string]string `dynamodbav:"metadata,omitempty"`

	Version        int64     `dynamodbav:"version"`
	LeaseOwner     string    `dynamodbav:"lease_owner,omitempty"`
	LeaseExpiresAt int64     `dynamodbav:"lease_expires_at,omitempty"`
	CreatedAt      time.Time `dynamodbav:"created_at"`
	UpdatedAt      time.Time `dynamodbav:"updated_at"`
}

// GrossCaptured is everything ever captured, including what was later refunded.
func (t *Transaction) GrossCaptured() int64 {
	return t.CapturedAmount + t.RefundedAmount
}

// RemainingAuthorization is the part of the hold that is neither captured nor released.
func (t *Transaction) RemainingAuthorization() int64 {
	return t.AuthorizedAmount - t.GrossCaptured() - t.ReleasedAmount
}

// StaleSince is when an authorization nobody acted on starts ageing. A
// rental booked ahead only ages from its start date.
func (t *Transaction) StaleSince() time.Time {
	if t.Kind == RENT && t.RentalStart != nil && t.RentalStart.After(t.CreatedAt) {
		return *t.RentalStart
	}
	return t.CreatedAt
}

// Balanced reports whether the amounts respect the authorization ceiling.
func (t *Transaction) Balanced() bool {
	return t.CapturedAmount >= 0 && t.RefundedAmount >= 0 && t.ReleasedAmount >= 0 &&
		t.GrossCaptured()+t.ReleasedAmount <= t.AuthorizedAmount
}

// Clone returns a copy that shares no mutable state with t.
func (t *Transaction) Clone() *Transaction {
	c := *t
	if t.Metadata != nil {
		c.Metadata = make(map[string]string, len(t.Metadata))
		for k, v := range t.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}

// Event types recorded in the payment event log.
const (
	EventPaymentIntentCreated  = "PAYMENT_INTENT_CREATED"
	EventAuthorizationFailed   = "AUTHORIZATION_FAILED"
	EventManualReview          = "MANUAL_REVIEW"
	EventReleaseRequested      = "RELEASE_REQUESTED"
	EventShipped               = "SHIPPED"
	EventCaptured              = "CAPTURED"
	EventPayoutTransferred     = "PAYOUT_TRANSFERRED"
	EventPayoutFailed          = "PAYOUT_FAILED"
	EventRefund                = "REFUND"
	EventAuthorizationReleased = "AUTHORIZATION_RELEASED"
	EventDisputeOpened         = "DISPUTE_OPENED"
	EventDisputeResolved       = "DISPUTE_RESOLVED"
	EventRentalStarted         = "RENTAL_STARTED"
	EventRentalReturned        = "RENTAL_RETURNED"
	EventDamageReported        = "DAMAGE_REPORTED"
	EventDamageDeducted        = "DAMAGE_DEDUCTED"
	EventDepositRefunded       = "DEPOSIT_REFUNDED"
	EventReminderSent          = "REMINDER_SENT"
	EventAutoCancelled         = "AUTO_CANCELLED"
	EventDeliveryConfirmed     = "DELIVERY_AUTO_CONFIRMED"

	// ProcessorEventPrefix marks events replayed from processor notifications.
	ProcessorEventPrefix = "WEBHOOK:"
)

// PaymentEvent is an immutable entry in a transaction's audit trail.
type PaymentEvent struct {
	EventID           string            `dynamodbav:"event_id"`
	TransactionID     string            `dynamodbav:"transaction_id"`
	ProcessorObjectID string            `dynamodbav:"processor_object_id,omitempty"`
	Type              string            `dynamodbav:"type"`
	Actor             string            `dynamodbav:"actor"`
	CreatedAt         time.Time         `dynamodbav:"created_at"`
	Metadata          map[string]string `dynamodbav:"metadata,omitempty"`
}

// ProcessorEventID is the deterministic id of an event replayed from the
// processor, so a second append of the same notification collides.
func ProcessorEventID(objectID, eventType string) string {
	return "proc#" + objectID + "#" + eventType
}

// DisputeStatus is the lifecycle of a dispute.
type DisputeStatus string

const (
	DisputeOpen     DisputeStatus = "OPEN"
	DisputeResolved DisputeStatus = "RESOLVED"
)

// DisputeOutcome is the admin decision closing a dispute.
type DisputeOutcome string

const (
	OutcomeRefundBuyer   DisputeOutcome = "REFUND_BUYER"
	OutcomeReleaseSeller DisputeOutcome = "RELEASE_SELLER"
)

// Dispute is the single dispute a buyer may open on a transaction.
type Dispute struct {
	TransactionID  string         `dynamodbav:"transaction_id"`
	OpenedBy       string         `dynamodbav:"opened_by"`
	Reason         string         `dynamodbav:"reason"`
	Evidence       string         `dynamodbav:"evidence,omitempty"`
	Status         DisputeStatus  `dynamodbav:"status"`
	Outcome        DisputeOutcome `dynamodbav:"outcome,omitempty"`
	Deduction      int64          `dynamodbav:"deduction,omitempty"`
	ResolvedBy     string         `dynamodbav:"resolved_by,omitempty"`
	ResolutionNote string         `dynamodbav:"resolution_note,omitempty"`
	CreatedAt      time.Time      `dynamodbav:"created_at"`
	ResolvedAt     *time.Time     `dynamodbav:"resolved_at,omitempty"`
}
