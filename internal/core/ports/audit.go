package ports

import (
	"context"

	"github.com/astroline/admin-gateway/internal/core/domain"
)

// AuditRecorder persists audit entries.
type AuditRecorder interface {
	Record(ctx context.Context, entry domain.AuditEntry) error
	Recent(ctx context.Context, limit int) ([]domain.AuditEntry, error)
}

// AuditSink accepts audit entries for asynchronous persistence. Enqueueing is
// fire-and-forget: audit must never slow down or fail a request.
type AuditSink interface {
	Enqueue(entry domain.AuditEntry)
}
