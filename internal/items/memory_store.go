package items

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore is an in-memory implementation of Store.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]*Item
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[string]*Item),
	}
}

func (s *MemoryStore) Create(ctx context.Context, item *Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *item
	s.items[item.ID] = &cp
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	if !ok {
		return nil, ErrItemNotFound
	}
	cp := *item
	return &cp, nil
}

func (s *MemoryStore) GetMany(ctx context.Context, ids []string) ([]*Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*Item
	for _, id := range ids {
		if item, ok := s.items[id]; ok {
			cp := *item
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (s *MemoryStore) Update(ctx context.Context, item *Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[item.ID]; !ok {
		return ErrItemNotFound
	}
	cp := *item
	s.items[item.ID] = &cp
	return nil
}

func (s *MemoryStore) ListByOwner(ctx context.Context, ownerID string) ([]*Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*Item
	for _, item := range s.items {
		if item.OwnerID == ownerID {
			cp := *item
			result = append(result, &cp)
		}
	}
	sortNewestFirst(result)
	return result, nil
}

func (s *MemoryStore) Feed(ctx context.Context, q FeedQuery) ([]*Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*Item
	for _, item := range s.items {
		if !item.Tradeable() {
			continue
		}
		if q.ExcludeOwner != "" && item.OwnerID == q.ExcludeOwner {
			continue
		}
		if q.Category != "" && !strings.EqualFold(item.Category, q.Category) {
			continue
		}
		if q.Search != "" {
			needle := strings.ToLower(q.Search)
			if !strings.Contains(strings.ToLower(item.Title), needle) &&
				!strings.Contains(strings.ToLower(item.Description), needle) {
				continue
			}
		}
		cp := *item
		result = append(result, &cp)
	}

	sortNewestFirst(result)

	// Apply cursor: skip everything at or after the cursor position.
	if q.Cursor != nil {
		filtered := result[:0]
		for _, item := range result {
			if item.CreatedAt.Before(q.Cursor.CreatedAt) ||
				(item.CreatedAt.Equal(q.Cursor.CreatedAt) && item.ID < q.Cursor.ID) {
				filtered = append(filtered, item)
			}
		}
		result = filtered
	}

	if len(result) > q.Limit+1 {
		result = result[:q.Limit+1]
	}
	return result, nil
}

func (s *MemoryStore) ListPendingApproval(ctx context.Context) ([]*Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*Item
	for _, item := range s.items {
		if item.ApprovalStatus == ApprovalPending {
			cp := *item
			result = append(result, &cp)
		}
	}
	sortOldestFirst(result)
	return result, nil
}

func (s *MemoryStore) Reserve(ctx context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Validate everything before touching anything.
	for _, id := range ids {
		item, ok := s.items[id]
		if !ok {
			return ErrItemNotFound
		}
		if !item.Tradeable() {
			return ErrItemUnavailable
		}
	}

	now := time.Now().UTC()
	for _, id := range ids {
		s.items[id].Status = StatusInTrade
		s.items[id].UpdatedAt = now
	}
	return nil
}

func (s *MemoryStore) Release(ctx context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	for _, id := range ids {
		if item, ok := s.items[id]; ok {
			item.Status = StatusAvailable
			item.UpdatedAt = now
		}
	}
	return nil
}

func (s *MemoryStore) Transfer(ctx context.Context, ids []string, newOwnerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	for _, id := range ids {
		item, ok := s.items[id]
		if !ok {
			return ErrItemNotFound
		}
		item.Status = StatusTraded
		item.OwnerID = newOwnerID
		item.UpdatedAt = now
	}
	return nil
}

func sortNewestFirst(items []*Item) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID > items[j].ID
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}

func sortOldestFirst(items []*Item) {
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
}
