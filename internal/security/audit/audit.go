package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Logger records security-relevant actions (tenant registration, logins,
// password resets, asset mutations) as structured log entries. The audit
// trail is the log stream; nothing is written to the backing store.
type Logger struct {
	logger *slog.Logger
}

// NewLogger creates an audit logger on top of a structured logger
func NewLogger(logger *slog.Logger) *Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logger{logger: logger}
}

// LogAction records one action. resourceID may be empty for collection-level
// actions; details is free text.
func (al *Logger) LogAction(ctx context.Context, tenantID, login, action, resource, resourceID, status, details string) {
	al.logger.InfoContext(ctx, "audit",
		slog.String("audit_id", uuid.NewString()),
		slog.Time("at", time.Now().UTC()),
		slog.String("tenant_id", tenantID),
		slog.String("login", login),
		slog.String("action", action),
		slog.String("resource", resource),
		slog.String("resource_id", resourceID),
		slog.String("status", status),
		slog.String("details", details),
	)
}
