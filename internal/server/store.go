package server

import (
	"context"
	"slices"
	"sync"

	"stockroom/internal/shared"
)

type Store interface {
	CreateItem(ctx context.Context, c shared.ItemCreate) (shared.Item, error)
	ListItems(ctx context.Context) ([]shared.Item, error)
	GetItem(ctx context.Context, id int64) (shared.Item, error)
	DeleteItem(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}

func notFound(id int64) error {
	return &shared.NotFoundError{Resource: "item", ID: id}
}

// MemoryStore keeps items in a map plus an insertion-order slice. One mutex
// guards the map, the order and the id counter.
type MemoryStore struct {
	mu sync.Mutex

	items  map[int64]shared.Item
	order  []int64
	nextID int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items:  map[int64]shared.Item{},
		nextID: 1,
	}
}

func (s *MemoryStore) CreateItem(_ context.Context, c shared.ItemCreate) (shared.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := shared.Item{
		ID:      s.nextID,
		Name:    c.Name,
		Price:   c.Price,
		InStock: c.Stock(),
	}
	s.nextID++
	s.items[item.ID] = item
	s.order = append(s.order, item.ID)
	return item, nil
}

func (s *MemoryStore) ListItems(_ context.Context) ([]shared.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]shared.Item, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id])
	}
	return out, nil
}

func (s *MemoryStore) GetItem(_ context.Context, id int64) (shared.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return shared.Item{}, notFound(id)
	}
	return item, nil
}

func (s *MemoryStore) DeleteItem(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return notFound(id)
	}
	delete(s.items, id)
	if i := slices.Index(s.order, id); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}
	return nil
}

func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items), nil
}

var _ Store = (*MemoryStore)(nil)
