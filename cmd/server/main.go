package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/yourorg/inventario/internal/featureflags"
	"github.com/yourorg/inventario/internal/handler"
	"github.com/yourorg/inventario/internal/infrastructure/logger"
	"github.com/yourorg/inventario/internal/infrastructure/redis"
	"github.com/yourorg/inventario/internal/observability/metrics"
	"github.com/yourorg/inventario/internal/observability/tracing"
	"github.com/yourorg/inventario/internal/reliability/retry"
	"github.com/yourorg/inventario/internal/repository"
	"github.com/yourorg/inventario/internal/rowstore"
	"github.com/yourorg/inventario/internal/security"
	"github.com/yourorg/inventario/internal/security/audit"
	"github.com/yourorg/inventario/internal/security/auth"
	"github.com/yourorg/inventario/internal/security/credential"
	"github.com/yourorg/inventario/internal/security/middleware"
	"github.com/yourorg/inventario/internal/security/ratelimit"
	"github.com/yourorg/inventario/internal/service"
	"github.com/yourorg/inventario/internal/session"
	"github.com/yourorg/inventario/pkg/config"
	"github.com/yourorg/inventario/pkg/database"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize structured logger
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("starting inventario server", slog.String("environment", cfg.Environment))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Tracing (no-op unless an OTLP endpoint is configured)
	shutdownTracing, err := tracing.Init(ctx, log, "inventario", cfg.Environment)
	if err != nil {
		log.Error("failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Backing row store
	var (
		store   rowstore.Store
		dbPool  *database.ConnectionPool
		cleanup []func()
	)
	switch cfg.StoreBackend {
	case "postgres":
		dialErr := retry.Do(ctx, retry.DefaultConfig(), log, "database dial", func(ctx context.Context) error {
			var err error
			dbPool, err = database.NewConnectionPool(ctx, &database.Config{
				URL:      cfg.DatabaseURL,
				Host:     cfg.DatabaseHost,
				Port:     cfg.DatabasePort,
				User:     cfg.DatabaseUser,
				Password: cfg.DatabasePassword,
				Database: cfg.DatabaseName,
				SSLMode:  cfg.DatabaseSSLMode,
			}, log)
			return err
		})
		if dialErr != nil {
			log.Error("failed to connect to database", slog.String("error", dialErr.Error()))
			os.Exit(1)
		}
		defer dbPool.Close()

		pgStore := rowstore.NewPostgresStore(dbPool.GetDB(), log)
		if err := pgStore.Migrate(ctx); err != nil {
			log.Error("failed to migrate store", slog.String("error", err.Error()))
			os.Exit(1)
		}
		store = pgStore
	case "memory":
		log.Warn("using in-memory store, data is lost on restart")
		store = rowstore.NewMemoryStore()
	}
	store = rowstore.NewGuardedStore(store, log)

	// 5. Recovery session store
	var (
		sessions    session.Store
		redisClient *redis.Client
	)
	switch cfg.SessionBackend {
	case "redis":
		dialErr := retry.Do(ctx, retry.DefaultConfig(), log, "redis dial", func(ctx context.Context) error {
			var err error
			redisClient, err = redis.NewClient(cfg.RedisURL)
			return err
		})
		if dialErr != nil {
			log.Error("failed to connect to redis", slog.String("error", dialErr.Error()))
			os.Exit(1)
		}
		defer redisClient.Close()
		sessions = session.NewRedisStore(redisClient.Raw())
	case "memory":
		memSessions := session.NewMemoryStore()
		cleanup = append(cleanup, memSessions.Stop)
		sessions = memSessions
	}

	// 6. Repositories
	tenantRepo := repository.NewRowTenantRepository(store, log)
	accountRepo := repository.NewRowAccountRepository(store, log)
	assetRepo := repository.NewRowAssetRepository(store, log)

	// 7. Security components
	hasher := credential.ForScheme(cfg.CredentialScheme)
	tokenManager := auth.NewTokenManager(cfg.JWTSecret, "inventario")
	authzService := security.NewAuthorizationService(log)
	auditLogger := audit.NewLogger(log)
	loginLimiter := ratelimit.NewLimiter(5, time.Minute)
	addrLimiter := ratelimit.NewLimiter(100, time.Minute)
	cleanup = append(cleanup, loginLimiter.Stop, addrLimiter.Stop)

	// 8. Services
	var broadcaster *service.Broadcaster
	if featureflags.Enabled(featureflags.LiveEvents) {
		broadcaster = service.NewBroadcaster()
	}
	tenantService := service.NewTenantService(tenantRepo, accountRepo, hasher, auditLogger, log)
	authService := service.NewAuthService(accountRepo, hasher, tokenManager, loginLimiter, log)
	recoveryService := service.NewRecoveryService(tenantService, accountRepo, hasher, sessions, loginLimiter, auditLogger, log)
	assetService := service.NewAssetService(assetRepo, tenantRepo, authzService, broadcaster, auditLogger, log)

	// 9. Handlers and routes
	registerHandler := handler.NewRegisterTenantHandler(tenantService, log)
	loginHandler := handler.NewLoginHandler(authService, log)
	recoveryHandler := handler.NewRecoveryHandler(recoveryService, log)
	assetsHandler := handler.NewAssetsHandler(assetService, log)
	reportHandler := handler.NewReportHandler(assetService, log)

	healthDeps := map[string]handler.Pinger{}
	if dbPool != nil {
		healthDeps["database"] = pinger(dbPool.Health)
	}
	if redisClient != nil {
		healthDeps["redis"] = redisClient
	}
	healthHandler := handler.NewHealthHandler(healthDeps)

	mux := http.NewServeMux()
	mux.Handle("POST /api/tenants", registerHandler)
	mux.Handle("POST /api/login", loginHandler)
	mux.HandleFunc("POST /api/recovery/verify", recoveryHandler.VerifyPhrase)
	mux.HandleFunc("GET /api/recovery/accounts", recoveryHandler.Accounts)
	mux.HandleFunc("POST /api/recovery/password", recoveryHandler.ResetPassword)
	mux.HandleFunc("POST /api/assets", assetsHandler.Create)
	mux.HandleFunc("GET /api/assets", assetsHandler.List)
	mux.HandleFunc("PUT /api/assets/{serial}", assetsHandler.Update)
	mux.HandleFunc("DELETE /api/assets/{serial}", assetsHandler.Delete)
	mux.Handle("GET /api/report", reportHandler)
	if broadcaster != nil {
		mux.Handle("GET /ws/events", handler.NewEventsHandler(broadcaster, cfg.CORSAllowedOrigins, log))
	}
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", healthHandler.Live)
	mux.HandleFunc("GET /readyz", healthHandler.Ready)

	// CORS honoring configured origins
	handlerWithCORS := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if originAllowed(cfg.CORSAllowedOrigins, origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		} else if len(cfg.CORSAllowedOrigins) > 0 {
			w.Header().Set("Access-Control-Allow-Origin", cfg.CORSAllowedOrigins[0])
		}
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Authorization, X-Recovery-Session")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		mux.ServeHTTP(w, r)
	})

	// Chain middleware: request ID -> rate limit -> JWT -> audit ->
	// content type -> metrics -> CORS -> mux. Audit sits inside JWT so its
	// entries carry the authenticated identity.
	rootHandler := withRequestID(
		middleware.RateLimitMiddleware(addrLimiter, log)(
			middleware.JWTMiddleware(tokenManager, log)(
				middleware.AuditMiddleware(auditLogger)(
					middleware.ValidateJSONContentType(log)(
						metrics.HTTPMetricsMiddleware(handlerWithCORS),
					),
				),
			),
		),
		log,
	)
	rootHandler = otelhttp.NewHandler(rootHandler, "inventario.http")

	// 10. Start HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      rootHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("server starting",
		slog.Int("port", cfg.ServerPort),
		slog.String("store", cfg.StoreBackend),
		slog.String("sessions", cfg.SessionBackend),
		slog.String("credential_scheme", cfg.CredentialScheme),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.String("error", err.Error()))
		}
	}()

	<-sigChan
	log.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}

	for _, stop := range cleanup {
		stop()
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracing shutdown error", slog.String("error", err.Error()))
	}
	log.Info("server stopped")
}

// pinger adapts a health-check func to the handler.Pinger interface
type pinger func(ctx context.Context) error

func (p pinger) Ping(ctx context.Context) error { return p(ctx) }

type requestIDKey struct{}

// withRequestID attaches a request ID to the context and response headers for traceability
func withRequestID(next http.Handler, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		w.Header().Set("X-Request-ID", reqID)

		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		start := time.Now()

		next.ServeHTTP(w, r.WithContext(ctx))

		log.Info("request completed",
			slog.String("request_id", reqID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("duration_ms", time.Since(start)),
		)
	})
}

func originAllowed(allowed []string, origin string) bool {
	if origin == "" {
		return false
	}
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}
