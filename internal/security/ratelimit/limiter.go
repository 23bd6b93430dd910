package ratelimit

import (
	"sync"
	"time"
)

// Limiter throttles sensitive operations (login, recovery phrase guesses)
// with a sliding window per key. Keys are whatever the caller scopes by,
// typically "login:<cie>" or "recovery:<cie>".
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	maxReqs int
	window  time.Duration
	cleanup *time.Ticker
	done    chan struct{}
}

type bucket struct {
	attempts []time.Time
	lastSeen time.Time
}

// NewLimiter creates a limiter allowing maxRequests per window per key
func NewLimiter(maxRequests int, window time.Duration) *Limiter {
	l := &Limiter{
		buckets: make(map[string]*bucket),
		maxReqs: maxRequests,
		window:  window,
		cleanup: time.NewTicker(5 * time.Minute),
		done:    make(chan struct{}),
	}
	go l.sweep()
	return l
}

// Allow records an attempt for the key and reports whether it is within
// the limit. An empty key is never throttled.
func (l *Limiter) Allow(key string) bool {
	if key == "" {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	b, exists := l.buckets[key]
	if !exists {
		b = &bucket{}
		l.buckets[key] = b
	}

	cutoff := now.Add(-l.window)
	kept := b.attempts[:0]
	for _, t := range b.attempts {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	b.attempts = kept
	b.lastSeen = now

	if len(b.attempts) >= l.maxReqs {
		return false
	}
	b.attempts = append(b.attempts, now)
	return true
}

// sweep drops buckets that have not been seen for a while
func (l *Limiter) sweep() {
	for {
		select {
		case <-l.done:
			return
		case <-l.cleanup.C:
			l.mu.Lock()
			stale := time.Now().Add(-15 * time.Minute)
			for key, b := range l.buckets {
				if b.lastSeen.Before(stale) {
					delete(l.buckets, key)
				}
			}
			l.mu.Unlock()
		}
	}
}

// Stop terminates the background sweep
func (l *Limiter) Stop() {
	l.cleanup.Stop()
	close(l.done)
}
