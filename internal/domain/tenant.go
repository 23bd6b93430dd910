package domain

import "context"

// Tenant is a school, the unit of data isolation. ID is the external CIE
// code, treated as an opaque string even though it is textually numeric.
type Tenant struct {
	ID             string // CIE code, unique across all tenants
	Name           string
	RecoveryDigest string // hashed recovery phrase, never the plaintext
}

// Account is a login scoped to exactly one tenant.
type Account struct {
	Login          string
	PasswordDigest string
	Name           string // display name
	Role           string
	TenantID       string
}

// Identity is the authenticated view of an account, carried through the
// session for the lifetime of an interaction.
type Identity struct {
	Login    string `json:"login"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	TenantID string `json:"tenantId"`
}

// TenantRepository defines data access for tenants
type TenantRepository interface {
	Create(ctx context.Context, tenant *Tenant) error
	GetByID(ctx context.Context, id string) (*Tenant, error)
	Delete(ctx context.Context, id string) error
}

// AccountRepository defines data access for accounts
type AccountRepository interface {
	Create(ctx context.Context, account *Account) error
	Get(ctx context.Context, tenantID, login string) (*Account, error)
	ListByTenant(ctx context.Context, tenantID string) ([]*Account, error)
	// UpdatePassword overwrites the stored digest for (tenantID, login).
	// Scoping by tenant is deliberate: matching on login alone would let a
	// login collision across tenants corrupt the wrong account.
	UpdatePassword(ctx context.Context, tenantID, login, digest string) error
}
