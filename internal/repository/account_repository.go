package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yourorg/inventario/internal/domain"
	"github.com/yourorg/inventario/internal/rowstore"
)

// RowAccountRepository implements domain.AccountRepository over a row store
type RowAccountRepository struct {
	store  rowstore.Store
	logger *slog.Logger
}

// NewRowAccountRepository creates a new account repository
func NewRowAccountRepository(store rowstore.Store, logger *slog.Logger) *RowAccountRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &RowAccountRepository{store: store, logger: logger}
}

// Create appends an account row
func (r *RowAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if err := r.store.Append(ctx, TableAccounts, accountToRow(account)); err != nil {
		return fmt.Errorf("append account: %w", err)
	}
	return nil
}

// Get returns the first account matching (tenantID, login), both compared
// as text. Duplicates, should they exist in the store, resolve to the row
// earliest in storage order.
func (r *RowAccountRepository) Get(ctx context.Context, tenantID, login string) (*domain.Account, error) {
	row, err := r.store.FindFirst(ctx, TableAccounts, accountKey(tenantID, login))
	if err != nil {
		if errors.Is(err, rowstore.ErrRowNotFound) {
			return nil, fmt.Errorf("account %s@%s: %w", login, tenantID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return rowToAccount(row), nil
}

// ListByTenant returns the tenant's accounts in storage order. An
// unreachable store yields an empty list, matching the read contract.
func (r *RowAccountRepository) ListByTenant(ctx context.Context, tenantID string) ([]*domain.Account, error) {
	rows, err := r.store.ReadAll(ctx, TableAccounts)
	if err != nil {
		if rowstore.IsUnavailable(err) {
			r.logger.Warn("account list failed soft", slog.String("error", err.Error()))
			return nil, nil
		}
		return nil, fmt.Errorf("read accounts: %w", err)
	}
	var out []*domain.Account
	for _, row := range rows {
		if row[fieldTenantID] == tenantID {
			out = append(out, rowToAccount(row))
		}
	}
	return out, nil
}

// UpdatePassword overwrites the stored digest for (tenantID, login). The
// lookup is tenant-scoped on purpose: the store allows the same login under
// different tenants, and a login-only match could overwrite a stranger's
// password.
func (r *RowAccountRepository) UpdatePassword(ctx context.Context, tenantID, login, digest string) error {
	err := r.store.UpdateFieldWhere(ctx, TableAccounts, accountKey(tenantID, login), fieldAccountPass, digest)
	if err != nil {
		if errors.Is(err, rowstore.ErrRowNotFound) {
			return fmt.Errorf("account %s@%s: %w", login, tenantID, domain.ErrNotFound)
		}
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

func accountKey(tenantID, login string) rowstore.Row {
	return rowstore.Row{
		fieldTenantID:     tenantID,
		fieldAccountLogin: login,
	}
}

func accountToRow(a *domain.Account) rowstore.Row {
	return rowstore.Row{
		fieldAccountLogin: a.Login,
		fieldAccountPass:  a.PasswordDigest,
		fieldAccountName:  a.Name,
		fieldAccountRole:  a.Role,
		fieldTenantID:     a.TenantID,
	}
}

func rowToAccount(row rowstore.Row) *domain.Account {
	return &domain.Account{
		Login:          row[fieldAccountLogin],
		PasswordDigest: row[fieldAccountPass],
		Name:           row[fieldAccountName],
		Role:           row[fieldAccountRole],
		TenantID:       row[fieldTenantID],
	}
}
