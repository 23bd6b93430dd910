package rowstore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/yourorg/inventario/internal/domain"
	"github.com/yourorg/inventario/internal/observability/metrics"
	"github.com/yourorg/inventario/internal/reliability/circuitbreaker"
)

// GuardedStore wraps a Store with a circuit breaker so that a backing store
// that keeps timing out stops costing a full round trip per request. While
// the breaker is open every call fails immediately with
// domain.ErrStoreUnavailable; read paths upstream then fail soft.
type GuardedStore struct {
	inner   Store
	breaker *circuitbreaker.CircuitBreaker
	logger  *slog.Logger
}

// NewGuardedStore wraps inner with a circuit breaker
func NewGuardedStore(inner Store, logger *slog.Logger) *GuardedStore {
	if logger == nil {
		logger = slog.Default()
	}
	cb := circuitbreaker.New(5, 2, 30*time.Second)
	cb.OnStateChange(func(from, to circuitbreaker.State) {
		metrics.SetBreakerOpen(to == circuitbreaker.StateOpen)
		logger.Warn("store breaker state changed",
			slog.String("from", from.String()),
			slog.String("to", to.String()),
		)
	})
	return &GuardedStore{inner: inner, breaker: cb, logger: logger}
}

func (g *GuardedStore) ReadAll(ctx context.Context, table string) ([]Row, error) {
	var rows []Row
	err := g.call(func() error {
		var err error
		rows, err = g.inner.ReadAll(ctx, table)
		return err
	})
	return rows, err
}

func (g *GuardedStore) Append(ctx context.Context, table string, row Row) error {
	return g.call(func() error { return g.inner.Append(ctx, table, row) })
}

func (g *GuardedStore) FindFirst(ctx context.Context, table string, match Row) (Row, error) {
	var row Row
	err := g.call(func() error {
		var err error
		row, err = g.inner.FindFirst(ctx, table, match)
		return err
	})
	return row, err
}

func (g *GuardedStore) DeleteWhere(ctx context.Context, table string, match Row) error {
	return g.call(func() error { return g.inner.DeleteWhere(ctx, table, match) })
}

func (g *GuardedStore) ReplaceWhere(ctx context.Context, table string, match Row, row Row) error {
	return g.call(func() error { return g.inner.ReplaceWhere(ctx, table, match, row) })
}

func (g *GuardedStore) UpdateFieldWhere(ctx context.Context, table string, match Row, field, value string) error {
	return g.call(func() error { return g.inner.UpdateFieldWhere(ctx, table, match, field, value) })
}

func (g *GuardedStore) call(fn func() error) error {
	if !g.breaker.Allow() {
		return fmt.Errorf("rowstore: breaker open: %w", domain.ErrStoreUnavailable)
	}
	err := fn()
	// Only connectivity failures count against the breaker; a missing row
	// is a perfectly healthy answer.
	if IsUnavailable(err) {
		g.breaker.RecordFailure()
		return err
	}
	g.breaker.RecordSuccess()
	return err
}
