package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultCurrency is used when a request does not name one.
const DefaultCurrency = "usd"

// ErrInvalidTransaction wraps every validation failure raised by the constructors.
var ErrInvalidTransaction = errors.New("invalid transaction")

// Parties identifies who is trading what. Identifiers are opaque user ids.
type Parties struct {
	ListingId         string
	BuyerId           string
	SellerId          string
	PayoutDestination string
}

// SaleParams describes a one-time sale.
type SaleParams struct {
	Parties
	Amount   int64
	Currency string
	Metadata map[string]string
}

// RentalParams describes a rental. Amount covers the rental fee plus the deposit.
type RentalParams struct {
	Parties
	Amount   int64
	Deposit  int64
	Currency string
	Start    time.Time
	End      time.Time
	Metadata map[string]string
}

// NewSale builds a SALE transaction that has not been authorized yet.
func NewSale(p SaleParams, now time.Time) (*Transaction, error) {
	if err := p.Parties.validate(); err != nil {
		return nil, err
	}
	if p.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidTransaction)
	}
	return newTransaction(SALE, p.Parties, p.Amount, p.Currency, p.Metadata, now), nil
}

// NewRental builds a RENT transaction with its deposit and date range.
func NewRental(p RentalParams, now time.Time) (*Transaction, error) {
	if err := p.Parties.validate(); err != nil {
		return nil, err
	}
	if p.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidTransaction)
	}
	if p.Deposit < 0 || p.Deposit >= p.Amount {
		return nil, fmt.Errorf("%w: deposit must be between 0 and the amount", ErrInvalidTransaction)
	}
	if p.Start.IsZero() || p.End.IsZero() || !p.End.After(p.Start) {
		return nil, fmt.Errorf("%w: rental end must be after rental start", ErrInvalidTransaction)
	}
	tx := newTransaction(RENT, p.Parties, p.Amount, p.Currency, p.Metadata, now)
	start, end := p.Start.UTC(), p.End.UTC()
	tx.Deposit = p.Deposit
	tx.RentalStart = &start
	tx.RentalEnd = &end
	return tx, nil
}

// RentalFee is the non-refundable part of a rental authorization.
func (t *Transaction) RentalFee() int64 {
	return t.AuthorizedAmount - t.Deposit
}

func (p Parties) validate() error {
	switch {
	case strings.TrimSpace(p.BuyerId) == "":
		return fmt.Errorf("%w: buyer id is required", ErrInvalidTransaction)
	case strings.TrimSpace(p.SellerId) == "":
		return fmt.Errorf("%w: seller id is required", ErrInvalidTransaction)
	case strings.TrimSpace(p.ListingId) == "":
		return fmt.Errorf("%w: listing id is required", ErrInvalidTransaction)
	case p.BuyerId == p.SellerId:
		return fmt.Errorf("%w: buyer and seller must differ", ErrInvalidTransaction)
	}
	return nil
}

func newTransaction(kind TransactionKind, p Parties, amount int64, currency string, metadata map[string]string, now time.Time) *Transaction {
	if currency == "" {
		currency = DefaultCurrency
	}
	now = now.UTC()
	tx := &Transaction{
		Id:                uuid.New().String(),
		ListingId:         p.ListingId,
		BuyerId:           p.BuyerId,
		SellerId:          p.SellerId,
		PayoutDestination: p.PayoutDestination,
		Kind:              kind,
		Status:            PENDING,
		Currency:          strings.ToLower(currency),
		AuthorizedAmount:  amount,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if len(metadata) > 0 {
		tx.Metadata = make(map[string]string, len(metadata))
		for k, v := range metadata {
			tx.Metadata[k] = v
		}
	}
	return tx
}
