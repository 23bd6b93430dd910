package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yourorg/inventario/internal/domain"
	"github.com/yourorg/inventario/internal/rowstore"
)

// RowTenantRepository implements domain.TenantRepository over a row store
type RowTenantRepository struct {
	store  rowstore.Store
	logger *slog.Logger
}

// NewRowTenantRepository creates a new tenant repository
func NewRowTenantRepository(store rowstore.Store, logger *slog.Logger) *RowTenantRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &RowTenantRepository{store: store, logger: logger}
}

// Create appends a tenant row, failing with domain.ErrDuplicate if the id
// is already registered. The store has no uniqueness enforcement, so the
// check is an application-level scan before the write.
func (r *RowTenantRepository) Create(ctx context.Context, tenant *domain.Tenant) error {
	_, err := r.store.FindFirst(ctx, TableTenants, rowstore.Row{fieldTenantID: tenant.ID})
	if err == nil {
		return fmt.Errorf("tenant %s: %w", tenant.ID, domain.ErrDuplicate)
	}
	if !errors.Is(err, rowstore.ErrRowNotFound) {
		return fmt.Errorf("check tenant id: %w", err)
	}

	row := rowstore.Row{
		fieldTenantID:   tenant.ID,
		fieldTenantName: tenant.Name,
		fieldTenantKey:  tenant.RecoveryDigest,
	}
	if err := r.store.Append(ctx, TableTenants, row); err != nil {
		return fmt.Errorf("append tenant: %w", err)
	}
	return nil
}

// GetByID returns the tenant with the given id
func (r *RowTenantRepository) GetByID(ctx context.Context, id string) (*domain.Tenant, error) {
	row, err := r.store.FindFirst(ctx, TableTenants, rowstore.Row{fieldTenantID: id})
	if err != nil {
		if errors.Is(err, rowstore.ErrRowNotFound) {
			return nil, fmt.Errorf("tenant %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("find tenant: %w", err)
	}
	return &domain.Tenant{
		ID:             row[fieldTenantID],
		Name:           row[fieldTenantName],
		RecoveryDigest: row[fieldTenantKey],
	}, nil
}

// Delete removes the tenant row. Only used to compensate a failed
// registration; tenants are never deleted in normal operation.
func (r *RowTenantRepository) Delete(ctx context.Context, id string) error {
	if err := r.store.DeleteWhere(ctx, TableTenants, rowstore.Row{fieldTenantID: id}); err != nil {
		if errors.Is(err, rowstore.ErrRowNotFound) {
			return fmt.Errorf("tenant %s: %w", id, domain.ErrNotFound)
		}
		return fmt.Errorf("delete tenant: %w", err)
	}
	return nil
}
