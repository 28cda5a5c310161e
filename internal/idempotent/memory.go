package idempotent

import (
	"container/list"
	"context"
	"sync"
)

// MemoryRepository is a process-local repository with a bounded LRU
// window: once cap entries are held, adding a new key evicts the least
// recently seen one. Suitable for single-instance deployments and tests.
type MemoryRepository struct {
	mu      sync.Mutex
	cap     int
	entries map[string]*list.Element
	order   *list.List
}

func NewMemoryRepository(capacity int) *MemoryRepository {
	if capacity <= 0 {
		capacity = 1000
	}
	return &MemoryRepository{
		cap:     capacity,
		entries: make(map[string]*list.Element),
		order:   list.New(),
	}
}

func (r *MemoryRepository) Add(_ context.Context, key string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if el, ok := r.entries[key]; ok {
		r.order.MoveToFront(el)
		return false, nil
	}

	r.entries[key] = r.order.PushFront(key)
	if r.order.Len() > r.cap {
		oldest := r.order.Back()
		r.order.Remove(oldest)
		delete(r.entries, oldest.Value.(string))
	}
	return true, nil
}

func (r *MemoryRepository) Contains(_ context.Context, key string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[key]
	return ok, nil
}

func (r *MemoryRepository) Remove(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if el, ok := r.entries[key]; ok {
		r.order.Remove(el)
		delete(r.entries, key)
	}
	return nil
}

func (r *MemoryRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.order.Len()
}
