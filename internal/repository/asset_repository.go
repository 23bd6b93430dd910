package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yourorg/inventario/internal/domain"
	"github.com/yourorg/inventario/internal/rowstore"
)

// RowAssetRepository implements domain.AssetRepository over a row store.
// Assets are keyed by (tenant id, serial); all lookups match the serial
// field exactly, never as a substring of another field.
type RowAssetRepository struct {
	store  rowstore.Store
	logger *slog.Logger
}

// NewRowAssetRepository creates a new asset repository
func NewRowAssetRepository(store rowstore.Store, logger *slog.Logger) *RowAssetRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &RowAssetRepository{store: store, logger: logger}
}

// Create appends an asset row
func (r *RowAssetRepository) Create(ctx context.Context, asset *domain.Asset) error {
	if err := r.store.Append(ctx, TableAssets, assetToRow(asset)); err != nil {
		return fmt.Errorf("append asset: %w", err)
	}
	return nil
}

// ListByTenant returns the tenant's assets in storage order. An unreachable
// store yields an empty list, matching the read contract.
func (r *RowAssetRepository) ListByTenant(ctx context.Context, tenantID string) ([]*domain.Asset, error) {
	rows, err := r.store.ReadAll(ctx, TableAssets)
	if err != nil {
		if rowstore.IsUnavailable(err) {
			r.logger.Warn("asset list failed soft", slog.String("error", err.Error()))
			return nil, nil
		}
		return nil, fmt.Errorf("read assets: %w", err)
	}
	var out []*domain.Asset
	for _, row := range rows {
		if row[fieldTenantID] == tenantID {
			out = append(out, rowToAsset(row))
		}
	}
	return out, nil
}

// GetBySerial returns the tenant's asset with that exact serial
func (r *RowAssetRepository) GetBySerial(ctx context.Context, tenantID, serial string) (*domain.Asset, error) {
	row, err := r.store.FindFirst(ctx, TableAssets, assetKey(tenantID, serial))
	if err != nil {
		return nil, r.mapErr(err, tenantID, serial)
	}
	return rowToAsset(row), nil
}

// Replace swaps the stored record for the given one in place, keeping its
// storage position. The store resolves the (tenant, serial) key and rewrites
// the row under the same table lock, so a mutation by another session cannot
// redirect the replace to a different row.
func (r *RowAssetRepository) Replace(ctx context.Context, tenantID, serial string, asset *domain.Asset) error {
	if err := r.store.ReplaceWhere(ctx, TableAssets, assetKey(tenantID, serial), assetToRow(asset)); err != nil {
		return r.mapErr(err, tenantID, serial)
	}
	return nil
}

// Delete removes the tenant's asset with that serial
func (r *RowAssetRepository) Delete(ctx context.Context, tenantID, serial string) error {
	if err := r.store.DeleteWhere(ctx, TableAssets, assetKey(tenantID, serial)); err != nil {
		return r.mapErr(err, tenantID, serial)
	}
	return nil
}

func assetKey(tenantID, serial string) rowstore.Row {
	return rowstore.Row{
		fieldTenantID:    tenantID,
		fieldAssetSerial: serial,
	}
}

func (r *RowAssetRepository) mapErr(err error, tenantID, serial string) error {
	if errors.Is(err, rowstore.ErrRowNotFound) {
		return fmt.Errorf("asset %s@%s: %w", serial, tenantID, domain.ErrNotFound)
	}
	return fmt.Errorf("asset %s@%s: %w", serial, tenantID, err)
}

func assetToRow(a *domain.Asset) rowstore.Row {
	return rowstore.Row{
		fieldAssetType:    a.Type,
		fieldAssetModel:   a.Model,
		fieldAssetSerial:  a.Serial,
		fieldAssetTag:     a.PropertyTag,
		fieldAssetInvoice: a.Invoice,
		fieldAssetStatus:  a.Status,
		fieldAssetProblem: a.Problem,
		fieldAssetDate:    a.CreatedAt,
		fieldAssetAuthor:  a.Author,
		fieldTenantID:     a.TenantID,
		fieldAssetPhoto:   a.PhotoB64,
	}
}

func rowToAsset(row rowstore.Row) *domain.Asset {
	return &domain.Asset{
		Type:        row[fieldAssetType],
		Model:       row[fieldAssetModel],
		Serial:      row[fieldAssetSerial],
		PropertyTag: row[fieldAssetTag],
		Invoice:     row[fieldAssetInvoice],
		Status:      row[fieldAssetStatus],
		Problem:     row[fieldAssetProblem],
		CreatedAt:   row[fieldAssetDate],
		Author:      row[fieldAssetAuthor],
		TenantID:    row[fieldTenantID],
		PhotoB64:    row[fieldAssetPhoto],
	}
}
