package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yourorg/inventario/internal/domain"
	"github.com/yourorg/inventario/internal/repository"
	"github.com/yourorg/inventario/internal/rowstore"
	"github.com/yourorg/inventario/internal/security/audit"
	"github.com/yourorg/inventario/internal/security/auth"
	"github.com/yourorg/inventario/internal/security/credential"
	"github.com/yourorg/inventario/internal/security/ratelimit"
)

func newAuthEnv(t *testing.T, limiter *ratelimit.Limiter) (*AuthService, *TenantService) {
	t.Helper()
	store := rowstore.NewMemoryStore()
	tenants := repository.NewRowTenantRepository(store, nil)
	accounts := repository.NewRowAccountRepository(store, nil)
	hasher := credential.SHA256Hasher{}
	tenantSvc := NewTenantService(tenants, accounts, hasher, audit.NewLogger(nil), nil)
	authSvc := NewAuthService(accounts, hasher, auth.NewTokenManager("test-secret", "inventario"), limiter, nil)

	if err := tenantSvc.Register(context.Background(), validRegistration()); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	return authSvc, tenantSvc
}

func TestLoginIssuesToken(t *testing.T) {
	svc, _ := newAuthEnv(t, nil)

	result, err := svc.Login(context.Background(), "001", "root", "segredo")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if result.Token == "" {
		t.Fatalf("expected a session token")
	}
	if result.Identity.TenantID != "001" || result.Identity.Name != "Maria" {
		t.Fatalf("unexpected identity %+v", result.Identity)
	}
	if len(result.Permissions) != 4 {
		t.Fatalf("Diretor should hold all four permissions, got %v", result.Permissions)
	}
	if time.Until(result.ExpiresAt) <= 0 {
		t.Fatalf("token already expired at issue time")
	}

	// The token round-trips through validation
	tm := auth.NewTokenManager("test-secret", "inventario")
	claims, err := tm.ValidateToken(result.Token)
	if err != nil {
		t.Fatalf("token validation failed: %v", err)
	}
	if claims.TenantID != "001" || claims.Login != "root" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestLoginFailuresAreUniform(t *testing.T) {
	svc, _ := newAuthEnv(t, nil)
	ctx := context.Background()

	cases := []struct {
		name                    string
		tenant, login, password string
	}{
		{"wrong password", "001", "root", "errado"},
		{"unknown login", "001", "ghost", "segredo"},
		{"unknown tenant", "999", "root", "segredo"},
		{"credentials under wrong tenant", "002", "root", "segredo"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Login(ctx, tc.tenant, tc.login, tc.password)
			if !errors.Is(err, domain.ErrInvalidCredentials) {
				t.Fatalf("expected ErrInvalidCredentials, got %v", err)
			}
		})
	}
}

func TestLoginThrottledPerTenant(t *testing.T) {
	limiter := ratelimit.NewLimiter(2, time.Minute)
	defer limiter.Stop()
	svc, _ := newAuthEnv(t, limiter)
	ctx := context.Background()

	svc.Login(ctx, "001", "root", "errado")
	svc.Login(ctx, "001", "root", "errado")

	// Third attempt hits the window, even with the right password
	_, err := svc.Login(ctx, "001", "root", "segredo")
	if !errors.Is(err, ErrThrottled) {
		t.Fatalf("expected ErrThrottled, got %v", err)
	}

	// Another tenant's budget is untouched
	if _, err := svc.Login(ctx, "002", "root", "x"); errors.Is(err, ErrThrottled) {
		t.Fatalf("throttle leaked across tenants")
	}
}
