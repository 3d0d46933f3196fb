package ledger

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

type transactionKey struct {
	userID string
	id     string
}

type memoryRepository struct {
	mu           sync.RWMutex
	transactions map[string][]Transaction // userID -> transactions
	ids          map[transactionKey]struct{}
	profiles     map[string]Profile
}

// NewMemoryRepository returns an in-memory repository intended for local development and tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		transactions: make(map[string][]Transaction),
		ids:          make(map[transactionKey]struct{}),
		profiles:     make(map[string]Profile),
	}
}

func (r *memoryRepository) ListTransactions(_ context.Context, userID string) ([]Transaction, error) {
	r.mu.RLock()
	snapshot := make([]Transaction, len(r.transactions[userID]))
	copy(snapshot, r.transactions[userID])
	r.mu.RUnlock()

	sort.SliceStable(snapshot, func(i, j int) bool {
		return snapshot[i].CreatedAt.After(snapshot[j].CreatedAt)
	})
	return snapshot, nil
}

func (r *memoryRepository) AddTransaction(_ context.Context, tx Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := transactionKey{userID: tx.UserID, id: tx.ID}
	if _, exists := r.ids[key]; exists {
		return ErrConflict
	}
	r.ids[key] = struct{}{}
	r.transactions[tx.UserID] = append(r.transactions[tx.UserID], tx)
	return nil
}

func (r *memoryRepository) GetProfile(_ context.Context, userID string) (*Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[userID]
	if !ok {
		return defaultProfile(userID), nil
	}
	return &p, nil
}

func (r *memoryRepository) UpdateBalance(_ context.Context, userID string, balance decimal.Decimal, at time.Time) (*Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.profiles[userID]
	if !ok {
		p = *defaultProfile(userID)
	}
	if ok && p.UpdatedAt.After(at) {
		out := p
		return &out, nil
	}
	p.Balance = balance
	p.UpdatedAt = at
	r.profiles[userID] = p

	out := p
	return &out, nil
}
