package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/yourorg/inventario/internal/domain"
	"github.com/yourorg/inventario/internal/observability/metrics"
	"github.com/yourorg/inventario/internal/security"
	"github.com/yourorg/inventario/internal/security/auth"
	"github.com/yourorg/inventario/internal/security/credential"
	"github.com/yourorg/inventario/internal/security/ratelimit"
)

// ErrThrottled means too many attempts were made against a tenant in a
// short window.
var ErrThrottled = errors.New("too many attempts")

// sessionDuration is how long an issued session token stays valid
const sessionDuration = 8 * time.Hour

// LoginResult is what a successful authentication returns
type LoginResult struct {
	Token       string          `json:"token"`
	ExpiresAt   time.Time       `json:"expiresAt"`
	Identity    domain.Identity `json:"identity"`
	Permissions []string        `json:"permissions"`
}

// AuthService authenticates (tenant, login, password) triples and issues
// session tokens.
type AuthService struct {
	accounts domain.AccountRepository
	hasher   credential.Hasher
	tokens   *auth.TokenManager
	limiter  *ratelimit.Limiter
	logger   *slog.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	accounts domain.AccountRepository,
	hasher credential.Hasher,
	tokens *auth.TokenManager,
	limiter *ratelimit.Limiter,
	logger *slog.Logger,
) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		accounts: accounts,
		hasher:   hasher,
		tokens:   tokens,
		limiter:  limiter,
		logger:   logger,
	}
}

// Authenticate resolves a (tenant, login, password) triple to an identity.
// Every failure mode returns domain.ErrInvalidCredentials: unknown tenant,
// unknown login and wrong password are indistinguishable to the caller.
func (s *AuthService) Authenticate(ctx context.Context, tenantID, login, password string) (domain.Identity, error) {
	account, err := s.accounts.Get(ctx, tenantID, login)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Info("login attempt for unknown account",
				slog.String("tenant_id", tenantID),
				slog.String("login", login),
			)
			return domain.Identity{}, domain.ErrInvalidCredentials
		}
		// A dead store is a connection error, not a credentials failure.
		return domain.Identity{}, err
	}

	if !s.hasher.Verify(password, account.PasswordDigest) {
		s.logger.Info("login attempt with wrong password",
			slog.String("tenant_id", tenantID),
			slog.String("login", login),
		)
		return domain.Identity{}, domain.ErrInvalidCredentials
	}

	return domain.Identity{
		Login:    account.Login,
		Name:     account.Name,
		Role:     account.Role,
		TenantID: account.TenantID,
	}, nil
}

// Login authenticates and issues a session token. Attempts are throttled
// per tenant to slow down password guessing.
func (s *AuthService) Login(ctx context.Context, tenantID, login, password string) (*LoginResult, error) {
	if s.limiter != nil && !s.limiter.Allow("login:"+tenantID) {
		metrics.ObserveAuthAttempt("throttled")
		return nil, fmt.Errorf("tenant %s: %w", tenantID, ErrThrottled)
	}

	identity, err := s.Authenticate(ctx, tenantID, login, password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.ObserveAuthAttempt("denied")
		} else {
			metrics.ObserveAuthAttempt("error")
		}
		return nil, err
	}

	token, err := s.tokens.GenerateToken(identity, sessionDuration)
	if err != nil {
		s.logger.Error("failed to sign session token", slog.String("error", err.Error()))
		return nil, fmt.Errorf("generate token: %w", err)
	}

	metrics.ObserveAuthAttempt("ok")
	s.logger.Info("user logged in",
		slog.String("tenant_id", identity.TenantID),
		slog.String("login", identity.Login),
		slog.String("role", identity.Role),
	)

	perms := security.PermissionSet(security.Role(identity.Role))
	permNames := make([]string, len(perms))
	for i, p := range perms {
		permNames[i] = string(p)
	}

	return &LoginResult{
		Token:       token,
		ExpiresAt:   time.Now().Add(sessionDuration),
		Identity:    identity,
		Permissions: permNames,
	}, nil
}
