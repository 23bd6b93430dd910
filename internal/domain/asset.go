package domain

import "context"

// Equipment type values as stored in the Equipamentos table.
const (
	TypeChromebook = "Chromebook"
	TypeNotebook   = "Notebook"
	TypeDesktop    = "Desktop"
	TypeTablet     = "Tablet"
	TypeMonitor    = "Monitor"
	TypePrinter    = "Impressora"
	TypeOther      = "Outros"
)

// Equipment status values.
const (
	StatusOperational    = "Operacional"
	StatusDamaged        = "Com Avaria"
	StatusInoperative    = "Inoperante"
	StatusDecommissioned = "Baixado"
)

// AssetTypes lists the accepted equipment types in form order.
var AssetTypes = []string{
	TypeChromebook, TypeNotebook, TypeDesktop, TypeTablet,
	TypeMonitor, TypePrinter, TypeOther,
}

// AssetStatuses lists the accepted status values in form order.
var AssetStatuses = []string{
	StatusOperational, StatusDamaged, StatusInoperative, StatusDecommissioned,
}

// Asset is one piece of inventoried equipment belonging to a tenant.
// Serial is the lifecycle key, unique within a tenant.
type Asset struct {
	Type        string `json:"type"`
	Model       string `json:"model"`
	Serial      string `json:"serial"`
	PropertyTag string `json:"propertyTag"`
	Invoice     string `json:"invoice"`
	Status      string `json:"status"`
	Problem     string `json:"problem"`
	CreatedAt   string `json:"createdAt"` // DD/MM/YYYY, stamped at creation
	Author      string `json:"author"`    // creating account's display name
	TenantID    string `json:"tenantId"`
	PhotoB64    string `json:"photoB64,omitempty"` // base64 JPEG thumbnail, may be empty
}

// AssetRepository defines data access for assets
type AssetRepository interface {
	Create(ctx context.Context, asset *Asset) error
	// ListByTenant returns the tenant's assets in storage order.
	ListByTenant(ctx context.Context, tenantID string) ([]*Asset, error)
	// GetBySerial finds the tenant's asset with that exact serial.
	GetBySerial(ctx context.Context, tenantID, serial string) (*Asset, error)
	// Replace swaps the stored record keyed by (tenantID, serial) for the
	// given one in place, keeping its storage position.
	Replace(ctx context.Context, tenantID, serial string, asset *Asset) error
	Delete(ctx context.Context, tenantID, serial string) error
}

// ValidAssetType reports whether t is one of the accepted equipment types.
func ValidAssetType(t string) bool {
	for _, v := range AssetTypes {
		if v == t {
			return true
		}
	}
	return false
}

// ValidAssetStatus reports whether s is one of the accepted status values.
func ValidAssetStatus(s string) bool {
	for _, v := range AssetStatuses {
		if v == s {
			return true
		}
	}
	return false
}
