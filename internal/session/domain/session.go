package domain

import "time"

// UserSession represents one login context for a user.
//
// IsActive false is terminal: a terminated or expired session is never
// reactivated, and rows are never deleted so history stays available for
// audit and statistics.
type UserSession struct {
	ID           string
	UserID       string
	SessionToken string // opaque, unique across all sessions
	IsActive     bool
	CreatedAt    time.Time
	LastActivity time.Time
	ExpiresAt    time.Time
	IPAddress    string // empty when unknown
	UserAgent    string // empty when unknown
}
