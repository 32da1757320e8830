package repository

import (
	"context"
	"time"

	"hr-admin-platform/backend/internal/session/domain"
)

// Filter narrows List results. A zero Filter lists everything.
type Filter struct {
	UserID     string // only sessions for this user when non-empty
	ActiveOnly bool
	Limit      int32 // 0 means no limit
	Offset     int32
}

// Repository defines persistence for user sessions.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.UserSession, error)
	GetByToken(ctx context.Context, token string) (*domain.UserSession, error)
	// ListActive returns all sessions with is_active = true.
	ListActive(ctx context.Context) ([]*domain.UserSession, error)
	// List returns sessions matching f, ordered by last_activity descending.
	List(ctx context.Context, f Filter) ([]*domain.UserSession, error)
	// Create inserts the session. Returns errs.TokenExists when the token
	// collides with any existing session, active or not.
	Create(ctx context.Context, s *domain.UserSession) error
	SetActive(ctx context.Context, id string, active bool) error
	// DeactivateIdleBefore marks every active session with last_activity
	// strictly before cutoff as inactive and returns the number of rows
	// transitioned. A session exactly at the cutoff is left alone.
	DeactivateIdleBefore(ctx context.Context, cutoff time.Time) (int64, error)
	// CountExpiredBetween counts sessions whose expires_at falls in [from, to].
	CountExpiredBetween(ctx context.Context, from, to time.Time) (int64, error)
}
