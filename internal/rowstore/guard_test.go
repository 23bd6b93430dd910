package rowstore

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/yourorg/inventario/internal/domain"
)

// flakyStore fails every call with a configurable error and counts how
// often it is actually reached.
type flakyStore struct {
	err   error
	calls int
}

func (f *flakyStore) ReadAll(ctx context.Context, table string) ([]Row, error) {
	f.calls++
	return nil, f.err
}
func (f *flakyStore) Append(ctx context.Context, table string, row Row) error {
	f.calls++
	return f.err
}
func (f *flakyStore) FindFirst(ctx context.Context, table string, match Row) (Row, error) {
	f.calls++
	return nil, f.err
}
func (f *flakyStore) DeleteWhere(ctx context.Context, table string, match Row) error {
	f.calls++
	return f.err
}
func (f *flakyStore) ReplaceWhere(ctx context.Context, table string, match Row, row Row) error {
	f.calls++
	return f.err
}
func (f *flakyStore) UpdateFieldWhere(ctx context.Context, table string, match Row, field, value string) error {
	f.calls++
	return f.err
}

func TestBreakerOpensAfterRepeatedUnavailability(t *testing.T) {
	inner := &flakyStore{err: fmt.Errorf("dial: %w", domain.ErrStoreUnavailable)}
	g := NewGuardedStore(inner, nil)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := g.ReadAll(ctx, "t"); !errors.Is(err, domain.ErrStoreUnavailable) {
			t.Fatalf("call %d: expected ErrStoreUnavailable, got %v", i, err)
		}
	}
	if inner.calls != 5 {
		t.Fatalf("expected 5 inner calls, got %d", inner.calls)
	}

	// Breaker is now open: the inner store must not be reached again.
	if _, err := g.ReadAll(ctx, "t"); !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable while open, got %v", err)
	}
	if inner.calls != 5 {
		t.Fatalf("expected breaker to short-circuit, inner saw %d calls", inner.calls)
	}
}

func TestMissingRowDoesNotTripBreaker(t *testing.T) {
	inner := &flakyStore{err: ErrRowNotFound}
	g := NewGuardedStore(inner, nil)
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		if _, err := g.FindFirst(ctx, "t", Row{"serial": "X"}); !errors.Is(err, ErrRowNotFound) {
			t.Fatalf("expected ErrRowNotFound, got %v", err)
		}
	}
	if inner.calls != 20 {
		t.Fatalf("not-found answers must keep the breaker closed, inner saw %d calls", inner.calls)
	}
}
