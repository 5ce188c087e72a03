package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fTr0ut/ShelvesAI-sub003/pkg/layout"
)

// MemoryStore is an in-memory shelf store for development and testing.
type MemoryStore struct {
	mu      sync.RWMutex
	shelves map[string]*Shelf
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		shelves: make(map[string]*Shelf),
		now:     time.Now,
	}
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Shelf, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	shelf, ok := s.shelves[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *shelf
	return &cp, nil
}

func (s *MemoryStore) Put(ctx context.Context, shelf *Shelf) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if shelf.ID == "" {
		shelf.ID = NewID()
	}
	now := s.now()
	if prev, ok := s.shelves[shelf.ID]; ok {
		shelf.CreatedAt = prev.CreatedAt
	} else {
		shelf.CreatedAt = now
	}
	shelf.UpdatedAt = now

	cp := *shelf
	s.shelves[shelf.ID] = &cp
	return nil
}

func (s *MemoryStore) SaveLayout(ctx context.Context, id string, items []layout.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	shelf, ok := s.shelves[id]
	if !ok {
		return ErrNotFound
	}
	shelf.Layout = items
	shelf.UpdatedAt = s.now()
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.shelves[id]; !ok {
		return ErrNotFound
	}
	delete(s.shelves, id)
	return nil
}

func (s *MemoryStore) List(ctx context.Context, owner string) ([]*Shelf, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Shelf
	for _, shelf := range s.shelves {
		if owner != "" && shelf.Owner != owner {
			continue
		}
		cp := *shelf
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) Close(ctx context.Context) error { return nil }

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
