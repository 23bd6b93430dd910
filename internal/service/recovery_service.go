package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/yourorg/inventario/internal/domain"
	"github.com/yourorg/inventario/internal/observability/metrics"
	"github.com/yourorg/inventario/internal/security/audit"
	"github.com/yourorg/inventario/internal/security/credential"
	"github.com/yourorg/inventario/internal/security/ratelimit"
	"github.com/yourorg/inventario/internal/session"
)

// ErrNoRecoverySession means the caller is still in the awaiting-phrase
// state: either the phrase was never verified or the session expired.
var ErrNoRecoverySession = errors.New("no active recovery session")

// recoveryTTL bounds how long a verified phrase stays usable
const recoveryTTL = 10 * time.Minute

// RecoveryAccount is the subset of an account shown during recovery
type RecoveryAccount struct {
	Login string `json:"login"`
	Name  string `json:"name"`
}

// RecoveryService drives the password-recovery flow. It is a two-step
// machine per interactive session: awaiting-phrase (no stored session),
// then awaiting-selection (a session holding the verified tenant id), then
// back to awaiting-phrase once a password is overwritten or the session
// expires.
type RecoveryService struct {
	tenants  *TenantService
	accounts domain.AccountRepository
	hasher   credential.Hasher
	sessions session.Store
	limiter  *ratelimit.Limiter
	auditLog *audit.Logger
	logger   *slog.Logger
}

// NewRecoveryService creates a new recovery service
func NewRecoveryService(
	tenants *TenantService,
	accounts domain.AccountRepository,
	hasher credential.Hasher,
	sessions session.Store,
	limiter *ratelimit.Limiter,
	auditLog *audit.Logger,
	logger *slog.Logger,
) *RecoveryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecoveryService{
		tenants:  tenants,
		accounts: accounts,
		hasher:   hasher,
		sessions: sessions,
		limiter:  limiter,
		auditLog: auditLog,
		logger:   logger,
	}
}

// VerifyPhrase checks the tenant's recovery phrase. On success it opens a
// recovery session and returns its id; on failure the caller stays in the
// awaiting-phrase state.
func (s *RecoveryService) VerifyPhrase(ctx context.Context, tenantID, phrase string) (string, error) {
	if s.limiter != nil && !s.limiter.Allow("recovery:"+tenantID) {
		metrics.ObserveRecoveryStep("verify_phrase", "throttled")
		return "", fmt.Errorf("tenant %s: %w", tenantID, ErrThrottled)
	}

	ok, err := s.tenants.VerifyRecoveryPhrase(ctx, tenantID, phrase)
	if err != nil {
		metrics.ObserveRecoveryStep("verify_phrase", "error")
		return "", err
	}
	if !ok {
		metrics.ObserveRecoveryStep("verify_phrase", "denied")
		s.auditLog.LogAction(ctx, tenantID, "", "recovery_verify", "tenant", tenantID, "denied", "")
		return "", domain.ErrInvalidCredentials
	}

	rec := session.Recovery{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		CreatedAt: time.Now(),
	}
	if err := s.sessions.Put(ctx, rec, recoveryTTL); err != nil {
		return "", fmt.Errorf("store recovery session: %w", err)
	}

	metrics.ObserveRecoveryStep("verify_phrase", "ok")
	s.auditLog.LogAction(ctx, tenantID, "", "recovery_verify", "tenant", tenantID, "ok", "")
	return rec.ID, nil
}

// Accounts lists the verified tenant's accounts for the selection step
func (s *RecoveryService) Accounts(ctx context.Context, sessionID string) ([]RecoveryAccount, error) {
	rec, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	accounts, err := s.accounts.ListByTenant(ctx, rec.TenantID)
	if err != nil {
		return nil, err
	}
	out := make([]RecoveryAccount, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, RecoveryAccount{Login: a.Login, Name: a.Name})
	}
	return out, nil
}

// ResetPassword overwrites the selected account's password digest and
// closes the recovery session, returning the flow to awaiting-phrase. The
// overwrite is scoped to the verified tenant; a login that exists only
// under another tenant is not found.
func (s *RecoveryService) ResetPassword(ctx context.Context, sessionID, login, newPassword string) error {
	rec, err := s.session(ctx, sessionID)
	if err != nil {
		return err
	}
	if newPassword == "" {
		return fmt.Errorf("new password is required: %w", domain.ErrValidation)
	}

	digest, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash new password: %w", err)
	}
	if err := s.accounts.UpdatePassword(ctx, rec.TenantID, login, digest); err != nil {
		metrics.ObserveRecoveryStep("reset_password", "error")
		return err
	}

	// Session is single-use; whatever happens next starts at the phrase.
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		s.logger.Warn("failed to close recovery session",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}

	metrics.ObserveRecoveryStep("reset_password", "ok")
	s.auditLog.LogAction(ctx, rec.TenantID, login, "recovery_reset", "account", login, "ok", "")
	s.logger.Info("password reset via recovery",
		slog.String("tenant_id", rec.TenantID),
		slog.String("login", login),
	)
	return nil
}

func (s *RecoveryService) session(ctx context.Context, sessionID string) (session.Recovery, error) {
	if sessionID == "" {
		return session.Recovery{}, ErrNoRecoverySession
	}
	rec, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return session.Recovery{}, ErrNoRecoverySession
		}
		return session.Recovery{}, err
	}
	return rec, nil
}
