package session

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	rec       Recovery
	expiresAt time.Time
}

// MemoryStore keeps sessions in process memory with a janitor goroutine
// sweeping expired entries. Suitable for a single-instance deployment and
// for tests.
type MemoryStore struct {
	mu      sync.Mutex
	items   map[string]entry
	janitor *time.Ticker
	done    chan struct{}
}

// NewMemoryStore creates a memory store and starts its janitor
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		items:   map[string]entry{},
		janitor: time.NewTicker(time.Minute),
		done:    make(chan struct{}),
	}
	go s.sweep()
	return s
}

func (s *MemoryStore) Put(ctx context.Context, rec Recovery, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[rec.ID] = entry{rec: rec, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (Recovery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.items[id]
	if !ok || time.Now().After(e.expiresAt) {
		return Recovery{}, ErrNotFound
	}
	return e.rec, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}

func (s *MemoryStore) sweep() {
	for {
		select {
		case <-s.done:
			return
		case <-s.janitor.C:
			s.mu.Lock()
			now := time.Now()
			for id, e := range s.items {
				if now.After(e.expiresAt) {
					delete(s.items, id)
				}
			}
			s.mu.Unlock()
		}
	}
}

// Stop terminates the janitor
func (s *MemoryStore) Stop() {
	s.janitor.Stop()
	close(s.done)
}
