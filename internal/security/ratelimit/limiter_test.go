package ratelimit

import (
	"testing"
	"time"
)

func TestAllowWithinLimit(t *testing.T) {
	l := NewLimiter(3, time.Minute)
	defer l.Stop()

	for i := 0; i < 3; i++ {
		if !l.Allow("login:001") {
			t.Fatalf("attempt %d should be allowed", i)
		}
	}
	if l.Allow("login:001") {
		t.Fatalf("fourth attempt should be throttled")
	}
}

func TestKeysAreIndependent(t *testing.T) {
	l := NewLimiter(1, time.Minute)
	defer l.Stop()

	if !l.Allow("login:001") {
		t.Fatalf("first key should be allowed")
	}
	if !l.Allow("login:002") {
		t.Fatalf("second key should have its own budget")
	}
	if l.Allow("login:001") {
		t.Fatalf("first key should now be throttled")
	}
}

func TestWindowSlides(t *testing.T) {
	l := NewLimiter(1, 50*time.Millisecond)
	defer l.Stop()

	if !l.Allow("k") {
		t.Fatalf("first attempt should be allowed")
	}
	if l.Allow("k") {
		t.Fatalf("second attempt should be throttled")
	}
	time.Sleep(60 * time.Millisecond)
	if !l.Allow("k") {
		t.Fatalf("attempt after the window should be allowed again")
	}
}

func TestEmptyKeyNeverThrottled(t *testing.T) {
	l := NewLimiter(1, time.Minute)
	defer l.Stop()

	for i := 0; i < 10; i++ {
		if !l.Allow("") {
			t.Fatalf("empty key must never be throttled")
		}
	}
}
