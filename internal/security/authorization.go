package security

import (
	"fmt"
	"log/slog"

	"github.com/yourorg/inventario/internal/domain"
)

// Role represents an account's position at the school, as stored in the
// cargo field of the accounts table.
type Role string

const (
	RoleITCoordinator Role = "PROATI"
	RolePrincipal     Role = "Diretor"
	RoleVicePrincipal Role = "Vice-Diretor"
	RoleCoordinator   Role = "Coordenador"
	RoleTeacher       Role = "Professor"
	RoleStaff         Role = "Funcionário"
	RoleSecretariat   Role = "Secretaria"
	RoleOther         Role = "Outro"
)

// Permission represents an action permission over asset records
type Permission string

const (
	PermCreateAsset Permission = "create_asset"
	PermReadAsset   Permission = "read_asset"
	PermUpdateAsset Permission = "update_asset"
	PermDeleteAsset Permission = "delete_asset"
)

// administrativeRoles are the roles granted full CRUD rights. Every other
// role, known or not, is read-only.
var administrativeRoles = map[Role]bool{
	RoleITCoordinator: true,
	RolePrincipal:     true,
	RoleVicePrincipal: true,
	RoleCoordinator:   true,
}

// AllRoles lists the accepted cargo values in form order.
var AllRoles = []Role{
	RoleITCoordinator, RolePrincipal, RoleVicePrincipal, RoleCoordinator,
	RoleTeacher, RoleStaff, RoleSecretariat, RoleOther,
}

// IsAdministrative reports whether the role belongs to the administrative set
func IsAdministrative(role Role) bool {
	return administrativeRoles[role]
}

// PermissionSet returns the permissions the role grants
func PermissionSet(role Role) []Permission {
	if IsAdministrative(role) {
		return []Permission{PermCreateAsset, PermReadAsset, PermUpdateAsset, PermDeleteAsset}
	}
	return []Permission{PermReadAsset}
}

// AuthorizationService handles authorization checks
type AuthorizationService struct {
	logger *slog.Logger
}

// NewAuthorizationService creates a new authorization service
func NewAuthorizationService(logger *slog.Logger) *AuthorizationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthorizationService{logger: logger}
}

// HasPermission checks if a role has a specific permission
func (as *AuthorizationService) HasPermission(role Role, permission Permission) bool {
	for _, p := range PermissionSet(role) {
		if p == permission {
			return true
		}
	}
	return false
}

// ValidatePermission returns domain.ErrPermissionDenied if the role lacks
// the permission.
func (as *AuthorizationService) ValidatePermission(role Role, permission Permission) error {
	if !as.HasPermission(role, permission) {
		as.logger.Warn("permission denied",
			slog.String("role", string(role)),
			slog.String("permission", string(permission)),
		)
		return fmt.Errorf("%s cannot %s: %w", role, permission, domain.ErrPermissionDenied)
	}
	return nil
}

// ValidateTenantAccess checks that an identity only reaches its own tenant
func (as *AuthorizationService) ValidateTenantAccess(identityTenantID, requestedTenantID string) error {
	if identityTenantID != requestedTenantID {
		as.logger.Warn("tenant access denied",
			slog.String("identity_tenant", identityTenantID),
			slog.String("requested_tenant", requestedTenantID),
		)
		return fmt.Errorf("tenant mismatch: %w", domain.ErrPermissionDenied)
	}
	return nil
}
