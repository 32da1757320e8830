package repository

import (
	"context"

	"hr-admin-platform/backend/internal/settings/domain"
)

// Repository defines persistence for security settings.
// Reads return (nil, nil) for missing keys; callers decide whether absence
// is fail-open (policy checks) or an error (cleanup, updates).
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.SecuritySetting, error)
	GetByKey(ctx context.Context, key string) (*domain.SecuritySetting, error)
	List(ctx context.Context) ([]*domain.SecuritySetting, error)
	Update(ctx context.Context, id, raw, updatedBy string) (*domain.SecuritySetting, error)
	Insert(ctx context.Context, s *domain.SecuritySetting) error
}
