package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yourorg/inventario/internal/domain"
	"github.com/yourorg/inventario/internal/security"
	"github.com/yourorg/inventario/internal/security/audit"
	"github.com/yourorg/inventario/internal/security/credential"
)

// Registration carries everything needed to install a new school: the
// tenant itself plus its first administrative account.
type Registration struct {
	TenantID       string `json:"tenantId"`
	Name           string `json:"name"`
	RecoveryPhrase string `json:"recoveryPhrase"`
	AdminLogin     string `json:"adminLogin"`
	AdminPassword  string `json:"adminPassword"`
	AdminName      string `json:"adminName"`
	AdminRole      string `json:"adminRole"`
}

// TenantService handles tenant registration and recovery phrase checks
type TenantService struct {
	tenants  domain.TenantRepository
	accounts domain.AccountRepository
	hasher   credential.Hasher
	auditLog *audit.Logger
	logger   *slog.Logger
}

// NewTenantService creates a new tenant service
func NewTenantService(
	tenants domain.TenantRepository,
	accounts domain.AccountRepository,
	hasher credential.Hasher,
	auditLog *audit.Logger,
	logger *slog.Logger,
) *TenantService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TenantService{
		tenants:  tenants,
		accounts: accounts,
		hasher:   hasher,
		auditLog: auditLog,
		logger:   logger,
	}
}

// Register installs a new tenant with one administrative account. A tenant
// id already in the store fails with domain.ErrDuplicate and leaves the
// store unchanged. The two rows cannot be written atomically, so a failed
// account write is compensated by deleting the tenant row again instead of
// leaving an orphaned school nobody can log into.
func (s *TenantService) Register(ctx context.Context, reg Registration) error {
	if reg.TenantID == "" || reg.Name == "" || reg.RecoveryPhrase == "" ||
		reg.AdminLogin == "" || reg.AdminPassword == "" || reg.AdminName == "" {
		return fmt.Errorf("all registration fields are required: %w", domain.ErrValidation)
	}
	if !security.IsAdministrative(security.Role(reg.AdminRole)) {
		return fmt.Errorf("first account must hold an administrative role: %w", domain.ErrValidation)
	}

	phraseDigest, err := s.hasher.Hash(reg.RecoveryPhrase)
	if err != nil {
		return fmt.Errorf("hash recovery phrase: %w", err)
	}
	passwordDigest, err := s.hasher.Hash(reg.AdminPassword)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	tenant := &domain.Tenant{
		ID:             reg.TenantID,
		Name:           reg.Name,
		RecoveryDigest: phraseDigest,
	}
	if err := s.tenants.Create(ctx, tenant); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			s.auditLog.LogAction(ctx, reg.TenantID, reg.AdminLogin, "register", "tenant", reg.TenantID, "duplicate", "")
		}
		return err
	}

	admin := &domain.Account{
		Login:          reg.AdminLogin,
		PasswordDigest: passwordDigest,
		Name:           reg.AdminName,
		Role:           reg.AdminRole,
		TenantID:       reg.TenantID,
	}
	if err := s.accounts.Create(ctx, admin); err != nil {
		s.logger.Error("admin account write failed, compensating tenant row",
			slog.String("tenant_id", reg.TenantID),
			slog.String("error", err.Error()),
		)
		if delErr := s.tenants.Delete(ctx, reg.TenantID); delErr != nil {
			s.logger.Error("compensation failed, tenant row orphaned",
				slog.String("tenant_id", reg.TenantID),
				slog.String("error", delErr.Error()),
			)
		}
		return fmt.Errorf("create admin account: %w", err)
	}

	s.auditLog.LogAction(ctx, reg.TenantID, reg.AdminLogin, "register", "tenant", reg.TenantID, "ok", reg.Name)
	s.logger.Info("tenant registered",
		slog.String("tenant_id", reg.TenantID),
		slog.String("admin_login", reg.AdminLogin),
	)
	return nil
}

// VerifyRecoveryPhrase reports whether the phrase matches the tenant's
// stored digest. Unknown tenants verify false.
func (s *TenantService) VerifyRecoveryPhrase(ctx context.Context, tenantID, phrase string) (bool, error) {
	tenant, err := s.tenants.GetByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return s.hasher.Verify(phrase, tenant.RecoveryDigest), nil
}
