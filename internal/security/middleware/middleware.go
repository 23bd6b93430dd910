package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/yourorg/inventario/internal/domain"
	"github.com/yourorg/inventario/internal/security/audit"
	"github.com/yourorg/inventario/internal/security/auth"
	"github.com/yourorg/inventario/internal/security/ratelimit"
)

type IdentityContextKey struct{}

// publicPath reports whether the path is reachable without a session token.
// Registration, login and the recovery flow must be, by definition.
func publicPath(path string) bool {
	switch path {
	case "/healthz", "/readyz", "/metrics",
		"/api/login", "/api/tenants",
		"/api/recovery/verify", "/api/recovery/accounts", "/api/recovery/password":
		return true
	}
	return false
}

// JWTMiddleware validates the session token and stores the identity in the
// request context. Public endpoints pass through untouched.
func JWTMiddleware(tm *auth.TokenManager, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if publicPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				// The websocket handshake cannot carry headers from a
				// browser, so the events feed accepts ?token= as well.
				if strings.HasPrefix(r.URL.Path, "/ws/") && r.URL.Query().Get("token") != "" {
					authHeader = "Bearer " + r.URL.Query().Get("token")
				} else {
					http.Error(w, `{"error":"missing auth"}`, http.StatusUnauthorized)
					return
				}
			}

			tokenString, err := auth.ExtractToken(authHeader)
			if err != nil {
				http.Error(w, `{"error":"invalid auth"}`, http.StatusUnauthorized)
				return
			}

			claims, err := tm.ValidateToken(tokenString)
			if err != nil {
				log.Debug("token rejected", slog.String("error", err.Error()))
				http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), IdentityContextKey{}, claims.Identity())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RateLimitMiddleware throttles the credential-guessing surfaces: login and
// the recovery phrase check. The tenant id lives in the request body and is
// not available here, so the limiter keys on remote address; the services
// additionally throttle per tenant.
func RateLimitMiddleware(limiter *ratelimit.Limiter, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/login" && r.URL.Path != "/api/recovery/verify" {
				next.ServeHTTP(w, r)
				return
			}
			addr := r.RemoteAddr
			if i := strings.LastIndex(addr, ":"); i > 0 {
				addr = addr[:i]
			}
			if !limiter.Allow("addr:" + addr) {
				log.Warn("rate limit exceeded",
					slog.String("path", r.URL.Path),
					slog.String("remote", addr),
				)
				http.Error(w, `{"error":"too many attempts"}`, http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AuditMiddleware records mutating requests before they are handled. It must
// sit inside JWTMiddleware in the chain so the entry carries the
// authenticated identity. Routing has not happened yet, so the resource id
// is cut from the path rather than read from a pattern value.
func AuditMiddleware(auditLog *audit.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodDelete {
				identity := GetIdentityFromContext(r.Context())
				tenantID, login := "", ""
				if identity != nil {
					tenantID, login = identity.TenantID, identity.Login
				}
				resourceID := ""
				if rest, ok := strings.CutPrefix(r.URL.Path, "/api/assets/"); ok {
					resourceID = rest
				}
				auditLog.LogAction(r.Context(), tenantID, login,
					strings.ToLower(r.Method), r.URL.Path, resourceID, "initiated", "")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ValidateJSONContentType ensures mutating requests carry a JSON body
func ValidateJSONContentType(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost && r.Method != http.MethodPut {
				next.ServeHTTP(w, r)
				return
			}
			if r.ContentLength == 0 {
				next.ServeHTTP(w, r)
				return
			}
			contentType := r.Header.Get("Content-Type")
			if !strings.Contains(contentType, "application/json") {
				log.Warn("invalid content type",
					slog.String("path", r.URL.Path),
					slog.String("content_type", contentType),
				)
				http.Error(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetIdentityFromContext returns the authenticated identity, or nil
func GetIdentityFromContext(ctx context.Context) *domain.Identity {
	if v := ctx.Value(IdentityContextKey{}); v != nil {
		identity := v.(domain.Identity)
		return &identity
	}
	return nil
}
