package service

import (
	"sync"
	"time"
)

// AssetEvent describes one mutation of a tenant's inventory, pushed to
// subscribed sessions over the events feed.
type AssetEvent struct {
	TenantID string    `json:"tenantId"`
	Action   string    `json:"action"` // created, updated, deleted
	Serial   string    `json:"serial"`
	Author   string    `json:"author"`
	At       time.Time `json:"at"`
}

// Broadcaster fans asset events out to per-tenant subscribers. Slow
// subscribers are skipped rather than blocking the mutation path.
type Broadcaster struct {
	mu   sync.Mutex
	subs map[string]map[chan AssetEvent]struct{} // tenant id -> subscribers
}

// NewBroadcaster creates an empty broadcaster
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: map[string]map[chan AssetEvent]struct{}{}}
}

// Subscribe registers a subscriber for a tenant's events. The returned
// channel is buffered; call the cancel func to unsubscribe.
func (b *Broadcaster) Subscribe(tenantID string) (<-chan AssetEvent, func()) {
	ch := make(chan AssetEvent, 16)
	b.mu.Lock()
	if b.subs[tenantID] == nil {
		b.subs[tenantID] = map[chan AssetEvent]struct{}{}
	}
	b.subs[tenantID][ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if set, ok := b.subs[tenantID]; ok {
			delete(set, ch)
			if len(set) == 0 {
				delete(b.subs, tenantID)
			}
		}
	}
	return ch, cancel
}

// Publish delivers the event to the tenant's subscribers without blocking
func (b *Broadcaster) Publish(ev AssetEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs[ev.TenantID] {
		select {
		case ch <- ev:
		default:
		}
	}
}
