package repository

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"

	"hr-admin-platform/backend/internal/errs"
	"hr-admin-platform/backend/internal/session/domain"
)

// uniqueViolation is the Postgres error code for unique constraint violations.
const uniqueViolation = "23505"

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a session repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const sessionColumns = `id, user_id, session_token, is_active, created_at, last_activity, expires_at, ip_address, user_agent`

// GetByID returns the session for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.UserSession, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM user_sessions WHERE id = $1`, id)
	s, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "get session")
	}
	return s, nil
}

// GetByToken returns the session holding the given token, or nil if none does.
func (r *PostgresRepository) GetByToken(ctx context.Context, token string) (*domain.UserSession, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM user_sessions WHERE session_token = $1`, token)
	s, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "get session by token")
	}
	return s, nil
}

// ListActive returns all active sessions.
func (r *PostgresRepository) ListActive(ctx context.Context) ([]*domain.UserSession, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM user_sessions WHERE is_active`)
	if err != nil {
		return nil, errors.Wrap(err, "list active sessions")
	}
	return collectSessions(rows, "list active sessions")
}

// List returns sessions matching f, newest activity first.
func (r *PostgresRepository) List(ctx context.Context, f Filter) ([]*domain.UserSession, error) {
	q := `SELECT ` + sessionColumns + ` FROM user_sessions WHERE 1=1`
	var args []any
	if f.UserID != "" {
		args = append(args, f.UserID)
		q += ` AND user_id = $` + strconv.Itoa(len(args))
	}
	if f.ActiveOnly {
		q += ` AND is_active`
	}
	q += ` ORDER BY last_activity DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		q += ` LIMIT $` + strconv.Itoa(len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		q += ` OFFSET $` + strconv.Itoa(len(args))
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list sessions")
	}
	return collectSessions(rows, "list sessions")
}

// Create persists the session. The session must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, s *domain.UserSession) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_sessions (id, user_id, session_token, is_active, created_at, last_activity, expires_at, ip_address, user_agent)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), NULLIF($9, ''))`,
		s.ID, s.UserID, s.SessionToken, s.IsActive, s.CreatedAt, s.LastActivity, s.ExpiresAt, s.IPAddress, s.UserAgent)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return errs.TokenExists
		}
		return errors.Wrap(err, "create session")
	}
	return nil
}

// SetActive updates the is_active flag for the session with id.
// last_activity is left untouched.
func (r *PostgresRepository) SetActive(ctx context.Context, id string, active bool) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE user_sessions SET is_active = $2 WHERE id = $1`, id, active)
	return errors.Wrap(err, "set session active flag")
}

// DeactivateIdleBefore marks active sessions idle since before cutoff as inactive.
func (r *PostgresRepository) DeactivateIdleBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE user_sessions SET is_active = FALSE WHERE is_active AND last_activity < $1`, cutoff)
	if err != nil {
		return 0, errors.Wrap(err, "deactivate idle sessions")
	}
	n, err := res.RowsAffected()
	return n, errors.Wrap(err, "deactivate idle sessions")
}

// CountExpiredBetween counts sessions whose expires_at falls in [from, to].
func (r *PostgresRepository) CountExpiredBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM user_sessions WHERE expires_at >= $1 AND expires_at <= $2`, from, to).Scan(&n)
	return n, errors.Wrap(err, "count expired sessions")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*domain.UserSession, error) {
	var s domain.UserSession
	var ip, ua sql.NullString
	if err := row.Scan(&s.ID, &s.UserID, &s.SessionToken, &s.IsActive,
		&s.CreatedAt, &s.LastActivity, &s.ExpiresAt, &ip, &ua); err != nil {
		return nil, err
	}
	if ip.Valid {
		s.IPAddress = ip.String
	}
	if ua.Valid {
		s.UserAgent = ua.String
	}
	return &s, nil
}

func collectSessions(rows *sql.Rows, op string) ([]*domain.UserSession, error) {
	defer rows.Close()
	var out []*domain.UserSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, errors.Wrap(err, op)
		}
		out = append(out, s)
	}
	return out, errors.Wrap(rows.Err(), op)
}
