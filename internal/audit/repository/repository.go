package repository

import (
	"context"

	"hr-admin-platform/backend/internal/audit/domain"
)

// Repository defines persistence for audit log entries. Storage is uncapped;
// retrieval is capped by the limit passed to ListRecent.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.LogEntry, error)
	ListRecent(ctx context.Context, limit int32) ([]*domain.LogEntry, error)
	Create(ctx context.Context, e *domain.LogEntry) error
}
