package store

import (
	"sort"
	"sync"

	"secretsession/internal/domain"
)

// MemoryItemStore keeps items in memory.
type MemoryItemStore struct {
	mu    sync.RWMutex
	items map[domain.ObjectPath]domain.StoredItem
}

func NewMemoryItemStore() *MemoryItemStore {
	return &MemoryItemStore{items: make(map[domain.ObjectPath]domain.StoredItem)}
}

func (s *MemoryItemStore) LoadItem(path domain.ObjectPath) (domain.StoredItem, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.items[path]
	if !ok {
		return domain.StoredItem{}, false, nil
	}
	return cloneItem(it), true, nil
}

func (s *MemoryItemStore) SaveItem(path domain.ObjectPath, item domain.StoredItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[path] = cloneItem(item)
	return nil
}

func (s *MemoryItemStore) ListItems() ([]domain.ObjectPath, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedPaths(s.items), nil
}

func cloneItem(it domain.StoredItem) domain.StoredItem {
	it.Secret = append([]byte(nil), it.Secret...)
	return it
}

func sortedPaths(items map[domain.ObjectPath]domain.StoredItem) []domain.ObjectPath {
	out := make([]domain.ObjectPath, 0, len(items))
	for p := range items {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

var _ domain.ItemStore = (*MemoryItemStore)(nil)
