package repository

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"hr-admin-platform/backend/internal/audit/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an audit log repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const entryColumns = `id, actor, action, resource_type, resource_id, details, severity, created_at`

// GetByID returns the audit entry for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.LogEntry, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM audit_logs WHERE id = $1`, id)
	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "get audit entry")
	}
	return e, nil
}

// ListRecent returns the most recent entries, newest first, capped at limit.
func (r *PostgresRepository) ListRecent(ctx context.Context, limit int32) ([]*domain.LogEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM audit_logs ORDER BY created_at DESC, id LIMIT $1`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "list audit entries")
	}
	defer rows.Close()
	var out []*domain.LogEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, errors.Wrap(err, "list audit entries")
		}
		out = append(out, e)
	}
	return out, errors.Wrap(rows.Err(), "list audit entries")
}

// Create persists the audit entry. The entry must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, e *domain.LogEntry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_logs (id, actor, action, resource_type, resource_id, details, severity, created_at)
		 VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7, $8)`,
		e.ID, e.Actor, e.Action, e.ResourceType, e.ResourceID, e.Details, e.Severity, e.CreatedAt)
	return errors.Wrap(err, "create audit entry")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*domain.LogEntry, error) {
	var e domain.LogEntry
	var resourceID, details sql.NullString
	if err := row.Scan(&e.ID, &e.Actor, &e.Action, &e.ResourceType,
		&resourceID, &details, &e.Severity, &e.CreatedAt); err != nil {
		return nil, err
	}
	if resourceID.Valid {
		e.ResourceID = resourceID.String
	}
	if details.Valid {
		e.Details = details.String
	}
	return &e, nil
}
