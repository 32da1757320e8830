package repository

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"hr-admin-platform/backend/internal/settings/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a settings repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const settingColumns = `id, key, value, category, updated_by, updated_at`

// GetByID returns the setting with id, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.SecuritySetting, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+settingColumns+` FROM security_settings WHERE id = $1`, id)
	s, err := scanSetting(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "get setting")
	}
	return s, nil
}

// GetByKey returns the setting for key, or nil if not configured.
// It returns an error only for database failures or a malformed stored value.
func (r *PostgresRepository) GetByKey(ctx context.Context, key string) (*domain.SecuritySetting, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+settingColumns+` FROM security_settings WHERE key = $1`, key)
	s, err := scanSetting(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "get setting")
	}
	return s, nil
}

// List returns all settings ordered by category, then key.
func (r *PostgresRepository) List(ctx context.Context) ([]*domain.SecuritySetting, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+settingColumns+` FROM security_settings ORDER BY category, key`)
	if err != nil {
		return nil, errors.Wrap(err, "list settings")
	}
	defer rows.Close()
	var out []*domain.SecuritySetting
	for rows.Next() {
		s, err := scanSetting(rows)
		if err != nil {
			return nil, errors.Wrap(err, "list settings")
		}
		out = append(out, s)
	}
	return out, errors.Wrap(rows.Err(), "list settings")
}

// Update sets the raw value and updated_by for the setting with id.
// Returns (nil, nil) when no row has that id. The new value must already be
// validated by the caller; the returned row re-parses it.
func (r *PostgresRepository) Update(ctx context.Context, id, raw, updatedBy string) (*domain.SecuritySetting, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE security_settings SET value = $2, updated_by = NULLIF($3, ''), updated_at = now()
		 WHERE id = $1 RETURNING `+settingColumns, id, raw, updatedBy)
	s, err := scanSetting(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "update setting")
	}
	return s, nil
}

// Insert creates a setting row. Used by the seeder; ON CONFLICT keeps an
// existing row for the key untouched so seeding stays idempotent.
func (r *PostgresRepository) Insert(ctx context.Context, s *domain.SecuritySetting) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO security_settings (id, key, value, category, updated_by, updated_at)
		 VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6)
		 ON CONFLICT (key) DO NOTHING`,
		s.ID, s.Key, s.Raw, s.Category, s.UpdatedBy, s.UpdatedAt)
	return errors.Wrap(err, "insert setting")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSetting(row rowScanner) (*domain.SecuritySetting, error) {
	var s domain.SecuritySetting
	var updatedBy sql.NullString
	if err := row.Scan(&s.ID, &s.Key, &s.Raw, &s.Category, &updatedBy, &s.UpdatedAt); err != nil {
		return nil, err
	}
	if updatedBy.Valid {
		s.UpdatedBy = updatedBy.String
	}
	v, err := domain.ParseValue(s.Key, s.Raw)
	if err != nil {
		return nil, err
	}
	s.Value = v
	return &s, nil
}
