package subscription

import (
	"context"
	"maps"
	"sync"
	"time"
)

// AccountStore defines the interface for account persistence.
// Each user has exactly one account, so UserID serves as the primary key.
type AccountStore interface {
	// Get retrieves an account by user ID.
	// Returns ErrAccountNotFound if no account exists.
	Get(ctx context.Context, userID string) (*Account, error)

	// FindByCustomerID retrieves the account linked to a provider customer.
	// Returns ErrAccountNotFound if no account is linked.
	FindByCustomerID(ctx context.Context, customerID string) (*Account, error)

	// Save creates or updates an account.
	Save(ctx context.Context, account *Account) error
}

// EventDeduper records processed webhook events so redeliveries are skipped.
type EventDeduper interface {
	// MarkProcessed records eventID and reports whether it was seen before.
	MarkProcessed(ctx context.Context, eventID string) (seen bool, err error)

	// Forget removes eventID so a failed event can be redelivered.
	Forget(ctx context.Context, eventID string) error
}

// MemoryStore is an in-process AccountStore for tests and local runs.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[string]Account
	now      func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[string]Account),
		now:      time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, userID string) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[userID]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return &acc, nil
}

func (s *MemoryStore) FindByCustomerID(_ context.Context, customerID string) (*Account, error) {
	if customerID == "" {
		return nil, ErrAccountNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for acc := range maps.Values(s.accounts) {
		if acc.CustomerID == customerID {
			return &acc, nil
		}
	}
	return nil, ErrAccountNotFound
}

func (s *MemoryStore) Save(_ context.Context, account *Account) error {
	if account == nil || account.UserID == "" {
		return ErrMissingUserID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acc := *account
	acc.UpdatedAt = s.now().UTC()
	s.accounts[acc.UserID] = acc
	return nil
}
