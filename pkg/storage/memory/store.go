// Package memory is an in-process implementation of the storage interfaces.
// It honours the same lease and commit rules as the DynamoDB store and is
// used for local runs and tests.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/chris/marketplace-escrow/pkg/models"
	"github.com/chris/marketplace-escrow/pkg/storage"
)

// Store keeps transactions, events and disputes in maps guarded by one mutex.
type Store struct {
	mu           sync.Mutex
	transactions map[string]*models.Transaction
	events       map[string][]models.PaymentEvent
	eventIDs     map[string]struct{}
	disputes     map[string]*models.Dispute

	// Now is the clock used for lease expiry. Defaults to time.Now.
	Now func() time.Time
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		transactions: make(map[string]*models.Transaction),
		events:       make(map[string][]models.PaymentEvent),
		eventIDs:     make(map[string]struct{}),
		disputes:     make(map[string]*models.Dispute),
		Now:          time.Now,
	}
}

var _ storage.Storage = (*Store)(nil)

func (s *Store) GetTransaction(_ context.Context, txID string) (*models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.transactions[txID]
	if !ok {
		return nil, fmt.Errorf("transaction with ID %s: %w", txID, storage.ErrTransactionNotFound)
	}
	return tx.Clone(), nil
}

func (s *Store) GetTransactionByAuthorizationID(_ context.Context, authorizationID string) (*models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, tx := range s.transactions {
		if tx.AuthorizationId != "" && tx.AuthorizationId == authorizationID {
			return tx.Clone(), nil
		}
	}
	return nil, fmt.Errorf("transaction with authorization %s: %w", authorizationID, storage.ErrTransactionNotFound)
}

func (s *Store) ListTransactionsByStatus(_ context.Context, status models.TransactionStatus, createdBefore time.Time) ([]models.Transaction, error) {
	return s.filter(func(tx *models.Transaction) bool {
		return tx.Status == status && tx.CreatedAt.Before(createdBefore)
	}), nil
}

func (s *Store) ListTransactionsByUserID(_ context.Context, userID string) ([]models.Transaction, error) {
	result := s.filter(func(tx *models.Transaction) bool {
		return tx.BuyerId == userID || tx.SellerId == userID
	})
	slices.SortFunc(result, func(a, b models.Transaction) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return result, nil
}

func (s *Store) filter(keep func(*models.Transaction) bool) []models.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []models.Transaction
	for _, tx := range s.transactions {
		if keep(tx) {
			result = append(result, *tx.Clone())
		}
	}
	slices.SortFunc(result, func(a, b models.Transaction) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return result
}

func (s *Store) CreateTransaction(_ context.Context, tx *models.Transaction, events []models.PaymentEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.transactions[tx.Id]; ok {
		return storage.ErrTransactionExists
	}
	if err := s.checkEvents(events); err != nil {
		return err
	}
	s.transactions[tx.Id] = tx.Clone()
	s.appendEvents(events)
	return nil
}

func (s *Store) Commit(_ context.Context, c storage.Commit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.transactions[c.Transaction.Id]
	if !ok {
		return fmt.Errorf("transaction with ID %s: %w", c.Transaction.Id, storage.ErrTransactionNotFound)
	}
	if current.LeaseOwner != c.LeaseOwner || current.Version != c.ExpectedVersion {
		return storage.ErrLeaseLost
	}
	if err := s.checkEvents(c.Events); err != nil {
		return err
	}

	tx := c.Transaction.Clone()
	tx.LeaseOwner = ""
	tx.LeaseExpiresAt = 0
	s.transactions[tx.Id] = tx
	s.appendEvents(c.Events)
	if c.Dispute != nil {
		d := *c.Dispute
		s.disputes[d.TransactionID] = &d
	}
	return nil
}

func (s *Store) AcquireLease(_ context.Context, txID, owner string, ttl time.Duration) (*models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.transactions[txID]
	if !ok {
		return nil, fmt.Errorf("transaction with ID %s: %w", txID, storage.ErrTransactionNotFound)
	}
	now := s.Now()
	if tx.LeaseOwner != "" && tx.LeaseExpiresAt >= now.UnixMilli() {
		return nil, storage.ErrLeaseHeld
	}
	tx.LeaseOwner = owner
	tx.LeaseExpiresAt = now.Add(ttl).UnixMilli()
	return tx.Clone(), nil
}

func (s *Store) ReleaseLease(_ context.Context, txID, owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tx, ok := s.transactions[txID]; ok && tx.LeaseOwner == owner {
		tx.LeaseOwner = ""
		tx.LeaseExpiresAt = 0
	}
	return nil
}

func (s *Store) ListEvents(_ context.Context, txID string) ([]models.PaymentEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.events[txID]), nil
}

func (s *Store) HasProcessorEvent(_ context.Context, txID, objectID, eventType string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.eventIDs[txID+"/"+models.ProcessorEventID(objectID, eventType)]
	return ok, nil
}

func (s *Store) GetDispute(_ context.Context, txID string) (*models.Dispute, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.disputes[txID]
	if !ok {
		return nil, fmt.Errorf("dispute for transaction %s: %w", txID, storage.ErrDisputeNotFound)
	}
	copied := *d
	return &copied, nil
}

func (s *Store) checkEvents(events []models.PaymentEvent) error {
	for _, e := range events {
		if _, ok := s.eventIDs[e.TransactionID+"/"+e.EventID]; ok {
			return storage.ErrDuplicateEvent
		}
	}
	return nil
}

func (s *Store) appendEvents(events []models.PaymentEvent) {
	for _, e := range events {
		s.eventIDs[e.TransactionID+"/"+e.EventID] = struct{}{}
		s.events[e.TransactionID] = append(s.events[e.TransactionID], e)
	}
}
