// Package risk screens a purchase before any funds are authorized. A flagged
// purchase is parked for manual review instead of reaching the processor.
package risk

import (
	"context"
)

// Subject is the purchase being screened.
type Subject struct {
	BuyerID   string
	SellerID  string
	ListingID string
	Amount    int64
	Currency  string
}

// Decision is the outcome of a screen. Reason is recorded on the review event.
type Decision struct {
	Flagged bool
	Reason  string
}

const (
	ReasonBuyerBlocked      = "buyer_blocked"
	ReasonSellerNotVerified = "seller_not_verified"
	ReasonAmountAboveLimit  = "amount_above_review_limit"
)

// Screener defines the interface for a fraud and verification check.
type Screener interface {
	Screen(ctx context.Context, s Subject) (Decision, error)
}

// Static screens against in-memory lists. A nil VerifiedSellers map treats
// every seller as verified; a zero ReviewAbove disables the amount check.
type Static struct {
	BlockedBuyers   map[string]bool
	VerifiedSellers map[string]bool
	ReviewAbove     int64
}

var _ Screener = (*Static)(nil)

func (s *Static) Screen(_ context.Context, sub Subject) (Decision, error) {
	if s.BlockedBuyers[sub.BuyerID] {
		return Decision{Flagged: true, Reason: ReasonBuyerBlocked}, nil
	}
	if s.VerifiedSellers != nil && !s.VerifiedSellers[sub.SellerID] {
		return Decision{Flagged: true, Reason: ReasonSellerNotVerified}, nil
	}
	return amountDecision(s.ReviewAbove, sub), nil
}

func amountDecision(limit int64, sub Subject) Decision {
	if limit > 0 && sub.Amount > limit {
		return Decision{Flagged: true, Reason: ReasonAmountAboveLimit}
	}
	return Decision{}
}
