package trades

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-memory implementation of Store.
type MemoryStore struct {
	mu     sync.RWMutex
	trades map[string]*Trade
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		trades: make(map[string]*Trade),
	}
}

func (s *MemoryStore) Create(ctx context.Context, t *Trade) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *t
	s.trades[t.ID] = &cp
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.trades[id]
	if !ok {
		return nil, ErrTradeNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *MemoryStore) Update(ctx context.Context, t *Trade) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.trades[t.ID]; !ok {
		return ErrTradeNotFound
	}
	cp := *t
	s.trades[t.ID] = &cp
	return nil
}

func (s *MemoryStore) ListForUser(ctx context.Context, userID string) ([]*Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*Trade
	for _, t := range s.trades {
		if t.IsParty(userID) {
			cp := *t
			result = append(result, &cp)
		}
	}
	sortNewestFirst(result)
	return result, nil
}

func (s *MemoryStore) ListByStatus(ctx context.Context, status string) ([]*Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*Trade
	for _, t := range s.trades {
		if t.Status == status {
			cp := *t
			result = append(result, &cp)
		}
	}
	sortOldestFirst(result)
	return result, nil
}

func (s *MemoryStore) ListPendingRefunds(ctx context.Context) ([]*Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*Trade
	for _, t := range s.trades {
		if t.Status == StatusCompleted && t.EscrowHeld {
			cp := *t
			result = append(result, &cp)
		}
	}
	sortOldestFirst(result)
	return result, nil
}

func (s *MemoryStore) ListPendingCreditReview(ctx context.Context) ([]*Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*Trade
	for _, t := range s.trades {
		if t.CreditPointsStatus == CreditsPendingReview {
			cp := *t
			result = append(result, &cp)
		}
	}
	sortOldestFirst(result)
	return result, nil
}

func (s *MemoryStore) CompareAndSetCreditStatus(ctx context.Context, id, from, to string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.trades[id]
	if !ok {
		return false, ErrTradeNotFound
	}
	if t.CreditPointsStatus != from {
		return false, nil
	}
	t.CreditPointsStatus = to
	return true, nil
}

func sortNewestFirst(ts []*Trade) {
	sort.Slice(ts, func(i, j int) bool {
		return ts[i].CreatedAt.After(ts[j].CreatedAt)
	})
}

func sortOldestFirst(ts []*Trade) {
	sort.Slice(ts, func(i, j int) bool {
		return ts[i].CreatedAt.Before(ts[j].CreatedAt)
	})
}
