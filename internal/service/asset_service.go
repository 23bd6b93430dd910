package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/yourorg/inventario/internal/domain"
	"github.com/yourorg/inventario/internal/observability/metrics"
	"github.com/yourorg/inventario/internal/photo"
	"github.com/yourorg/inventario/internal/report"
	"github.com/yourorg/inventario/internal/security"
	"github.com/yourorg/inventario/internal/security/audit"
)

// AssetInput carries the user-editable fields of an asset. Photo holds the
// raw bytes of an uploaded image; nil means no photo (on create) or keep
// the current one (on update).
type AssetInput struct {
	Type        string `json:"type"`
	Model       string `json:"model"`
	Serial      string `json:"serial"`
	PropertyTag string `json:"propertyTag"`
	Invoice     string `json:"invoice"`
	Status      string `json:"status"`
	Problem     string `json:"problem"`
	Photo       []byte `json:"photo,omitempty"`
}

// AssetService owns the asset record lifecycle. Every mutation checks the
// identity's permission set first and publishes an event on success.
type AssetService struct {
	assets   domain.AssetRepository
	tenants  domain.TenantRepository
	authz    *security.AuthorizationService
	events   *Broadcaster
	renderer *report.Renderer
	auditLog *audit.Logger
	logger   *slog.Logger
	now      func() time.Time
}

// NewAssetService creates a new asset service
func NewAssetService(
	assets domain.AssetRepository,
	tenants domain.TenantRepository,
	authz *security.AuthorizationService,
	events *Broadcaster,
	auditLog *audit.Logger,
	logger *slog.Logger,
) *AssetService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AssetService{
		assets:   assets,
		tenants:  tenants,
		authz:    authz,
		events:   events,
		renderer: &report.Renderer{},
		auditLog: auditLog,
		logger:   logger,
		now:      time.Now,
	}
}

// Create registers a new asset for the identity's tenant. The record is
// stamped with the creation date, the creator's display name and the
// tenant id; the photo, if any, is stored as an inline thumbnail.
func (s *AssetService) Create(ctx context.Context, identity domain.Identity, input AssetInput) (*domain.Asset, error) {
	if err := s.authz.ValidatePermission(security.Role(identity.Role), security.PermCreateAsset); err != nil {
		metrics.ObserveAssetOperation("create", "denied")
		return nil, err
	}
	if err := validateInput(input); err != nil {
		metrics.ObserveAssetOperation("create", "invalid")
		return nil, err
	}

	// Serial is the lifecycle key within the tenant; the store itself
	// enforces nothing, so duplicates are caught by scanning first.
	if _, err := s.assets.GetBySerial(ctx, identity.TenantID, input.Serial); err == nil {
		metrics.ObserveAssetOperation("create", "duplicate")
		return nil, fmt.Errorf("serial %s: %w", input.Serial, domain.ErrDuplicate)
	}

	photoB64 := ""
	if len(input.Photo) > 0 {
		encoded, err := photo.EncodeThumbnail(input.Photo)
		if err != nil {
			metrics.ObserveAssetOperation("create", "invalid")
			return nil, fmt.Errorf("photo: %w: %v", domain.ErrValidation, err)
		}
		photoB64 = encoded
	}

	asset := &domain.Asset{
		Type:        input.Type,
		Model:       input.Model,
		Serial:      input.Serial,
		PropertyTag: input.PropertyTag,
		Invoice:     input.Invoice,
		Status:      input.Status,
		Problem:     input.Problem,
		CreatedAt:   s.now().Format("02/01/2006"),
		Author:      identity.Name,
		TenantID:    identity.TenantID,
		PhotoB64:    photoB64,
	}
	if err := s.assets.Create(ctx, asset); err != nil {
		metrics.ObserveAssetOperation("create", "error")
		return nil, err
	}

	metrics.ObserveAssetOperation("create", "ok")
	s.auditLog.LogAction(ctx, identity.TenantID, identity.Login, "create", "asset", asset.Serial, "ok", asset.Type)
	s.publish(identity, "created", asset.Serial)
	return asset, nil
}

// List returns the tenant's assets in storage order, optionally keeping
// only records where some field contains filterText case-insensitively.
func (s *AssetService) List(ctx context.Context, identity domain.Identity, filterText string) ([]*domain.Asset, error) {
	if err := s.authz.ValidatePermission(security.Role(identity.Role), security.PermReadAsset); err != nil {
		return nil, err
	}
	assets, err := s.assets.ListByTenant(ctx, identity.TenantID)
	if err != nil {
		return nil, err
	}
	if filterText == "" {
		return assets, nil
	}
	needle := strings.ToLower(filterText)
	var out []*domain.Asset
	for _, a := range assets {
		if assetMatches(a, needle) {
			out = append(out, a)
		}
	}
	return out, nil
}

// Update replaces the record keyed by (tenant id, serial) with new field
// values, preserving the original creation stamps.
func (s *AssetService) Update(ctx context.Context, identity domain.Identity, serial string, input AssetInput) (*domain.Asset, error) {
	if err := s.authz.ValidatePermission(security.Role(identity.Role), security.PermUpdateAsset); err != nil {
		metrics.ObserveAssetOperation("update", "denied")
		return nil, err
	}

	existing, err := s.assets.GetBySerial(ctx, identity.TenantID, serial)
	if err != nil {
		metrics.ObserveAssetOperation("update", "not_found")
		return nil, err
	}

	input.Serial = serial
	if err := validateInput(input); err != nil {
		metrics.ObserveAssetOperation("update", "invalid")
		return nil, err
	}

	photoB64 := existing.PhotoB64
	if len(input.Photo) > 0 {
		encoded, err := photo.EncodeThumbnail(input.Photo)
		if err != nil {
			metrics.ObserveAssetOperation("update", "invalid")
			return nil, fmt.Errorf("photo: %w: %v", domain.ErrValidation, err)
		}
		photoB64 = encoded
	}

	updated := &domain.Asset{
		Type:        input.Type,
		Model:       input.Model,
		Serial:      serial,
		PropertyTag: input.PropertyTag,
		Invoice:     input.Invoice,
		Status:      input.Status,
		Problem:     input.Problem,
		CreatedAt:   existing.CreatedAt,
		Author:      existing.Author,
		TenantID:    identity.TenantID,
		PhotoB64:    photoB64,
	}
	if err := s.assets.Replace(ctx, identity.TenantID, serial, updated); err != nil {
		metrics.ObserveAssetOperation("update", "error")
		return nil, err
	}

	metrics.ObserveAssetOperation("update", "ok")
	s.auditLog.LogAction(ctx, identity.TenantID, identity.Login, "update", "asset", serial, "ok", updated.Status)
	s.publish(identity, "updated", serial)
	return updated, nil
}

// Delete removes the record keyed by (tenant id, serial)
func (s *AssetService) Delete(ctx context.Context, identity domain.Identity, serial string) error {
	if err := s.authz.ValidatePermission(security.Role(identity.Role), security.PermDeleteAsset); err != nil {
		metrics.ObserveAssetOperation("delete", "denied")
		return err
	}
	if err := s.assets.Delete(ctx, identity.TenantID, serial); err != nil {
		metrics.ObserveAssetOperation("delete", "not_found")
		return err
	}
	metrics.ObserveAssetOperation("delete", "ok")
	s.auditLog.LogAction(ctx, identity.TenantID, identity.Login, "delete", "asset", serial, "ok", "")
	s.publish(identity, "deleted", serial)
	return nil
}

// Report renders the tenant's current inventory as a PDF signed by the
// requesting identity.
func (s *AssetService) Report(ctx context.Context, identity domain.Identity, filterText string) ([]byte, error) {
	assets, err := s.List(ctx, identity, filterText)
	if err != nil {
		return nil, err
	}

	label := identity.TenantID
	if tenant, err := s.tenants.GetByID(ctx, identity.TenantID); err == nil {
		label = fmt.Sprintf("%s (%s)", tenant.Name, tenant.ID)
	}

	start := time.Now()
	doc, err := s.renderer.Render(assets, label, identity.Name, identity.Role)
	if err != nil {
		return nil, err
	}
	metrics.ObserveReport(time.Since(start))
	return doc, nil
}

func (s *AssetService) publish(identity domain.Identity, action, serial string) {
	if s.events == nil {
		return
	}
	s.events.Publish(AssetEvent{
		TenantID: identity.TenantID,
		Action:   action,
		Serial:   serial,
		Author:   identity.Name,
		At:       s.now(),
	})
}

// validateInput enforces the required fields and closed enumerations
func validateInput(input AssetInput) error {
	if strings.TrimSpace(input.Serial) == "" {
		return fmt.Errorf("serial is required: %w", domain.ErrValidation)
	}
	if !domain.ValidAssetType(input.Type) {
		return fmt.Errorf("unknown equipment type %q: %w", input.Type, domain.ErrValidation)
	}
	if !domain.ValidAssetStatus(input.Status) {
		return fmt.Errorf("unknown status %q: %w", input.Status, domain.ErrValidation)
	}
	return nil
}

// assetMatches reports whether any searchable field contains the lowercase
// needle. The photo blob is excluded: base64 noise would match everything.
func assetMatches(a *domain.Asset, needle string) bool {
	fields := []string{
		a.Type, a.Model, a.Serial, a.PropertyTag, a.Invoice,
		a.Status, a.Problem, a.CreatedAt, a.Author,
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}
