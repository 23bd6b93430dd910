package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/yourorg/inventario/internal/domain"
	"github.com/yourorg/inventario/internal/security/audit"
	"github.com/yourorg/inventario/internal/security/auth"
)

func TestAuditEntryCarriesAuthenticatedIdentity(t *testing.T) {
	tm := auth.NewTokenManager("test-secret", "inventario")
	token, err := tm.GenerateToken(domain.Identity{
		Login: "root", Name: "Ana", Role: "Diretor", TenantID: "001",
	}, time.Hour)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	var buf bytes.Buffer
	auditLogger := audit.NewLogger(slog.New(slog.NewJSONHandler(&buf, nil)))

	// Chained the way the server chains them: JWT outside, audit inside.
	h := JWTMiddleware(tm, slog.Default())(
		AuditMiddleware(auditLogger)(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}),
		),
	)

	req := httptest.NewRequest(http.MethodDelete, "/api/assets/SN-9", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("audit entry is not one JSON line: %v (%q)", err, buf.String())
	}
	if entry["tenant_id"] != "001" || entry["login"] != "root" {
		t.Fatalf("audit entry lost the identity: %v", entry)
	}
	if entry["resource_id"] != "SN-9" {
		t.Fatalf("audit entry lost the resource id: %v", entry)
	}
	if entry["action"] != "delete" || entry["status"] != "initiated" {
		t.Fatalf("unexpected audit entry: %v", entry)
	}
}

func TestAuditOnPublicPathHasNoIdentity(t *testing.T) {
	tm := auth.NewTokenManager("test-secret", "inventario")

	var buf bytes.Buffer
	auditLogger := audit.NewLogger(slog.New(slog.NewJSONHandler(&buf, nil)))

	h := JWTMiddleware(tm, slog.Default())(
		AuditMiddleware(auditLogger)(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusCreated)
			}),
		),
	)

	req := httptest.NewRequest(http.MethodPost, "/api/tenants", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("audit entry is not one JSON line: %v", err)
	}
	if entry["tenant_id"] != "" || entry["login"] != "" {
		t.Fatalf("registration entry should carry no identity: %v", entry)
	}
}
