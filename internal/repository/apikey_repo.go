package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/screenery/screenery/internal/models"
)

// SQLiteAPIKeyRepository implements APIKeyRepository for SQLite/libsql.
type SQLiteAPIKeyRepository struct {
	db *sql.DB
}

// NewSQLiteAPIKeyRepository creates a new SQLite API key repository.
func NewSQLiteAPIKeyRepository(db *sql.DB) *SQLiteAPIKeyRepository {
	return &SQLiteAPIKeyRepository{db: db}
}

// Create inserts a new API key row.
func (r *SQLiteAPIKeyRepository) Create(ctx context.Context, key *models.APIKey) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO api_keys (
			id, key, name, is_admin, rate_limit,
			requests_count, requests_reset_at, is_active, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		key.ID,
		key.Key,
		key.Name,
		boolToInt(key.IsAdmin),
		key.RateLimit,
		key.RequestsCount,
		key.RequestsResetAt.UTC().Format(time.RFC3339),
		boolToInt(key.IsActive),
		key.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert api key: %w", err)
	}
	return nil
}

// GetActiveByKey returns the active credential with the given secret.
func (r *SQLiteAPIKeyRepository) GetActiveByKey(ctx context.Context, key string) (*models.APIKey, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, key, name, is_admin, rate_limit, requests_count,
		       requests_reset_at, is_active, created_at
		FROM api_keys
		WHERE key = ? AND is_active = 1
	`, key)

	return scanAPIKey(row)
}

// List returns all credentials, newest first.
func (r *SQLiteAPIKeyRepository) List(ctx context.Context) ([]*models.APIKey, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, key, name, is_admin, rate_limit, requests_count,
		       requests_reset_at, is_active, created_at
		FROM api_keys
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []*models.APIKey
	for rows.Next() {
		key, err := scanAPIKeyRow(rows)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}

	return keys, rows.Err()
}

// Deactivate flips is_active off. Returns false if the ID is unknown.
func (r *SQLiteAPIKeyRepository) Deactivate(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE api_keys SET is_active = 0 WHERE id = ?
	`, id)
	if err != nil {
		return false, fmt.Errorf("failed to deactivate api key: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// ResetWindow sets requests_count to 1 and opens a new window ending at resetAt.
func (r *SQLiteAPIKeyRepository) ResetWindow(ctx context.Context, id string, resetAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE api_keys
		SET requests_count = 1, requests_reset_at = ?
		WHERE id = ?
	`, resetAt.UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("failed to reset rate window: %w", err)
	}
	return nil
}

// IncrementCount bumps requests_count by one.
func (r *SQLiteAPIKeyRepository) IncrementCount(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE api_keys
		SET requests_count = requests_count + 1
		WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("failed to increment request count: %w", err)
	}
	return nil
}

// scanner abstracts *sql.Row and *sql.Rows for the scan helpers.
type scanner interface {
	Scan(dest ...any) error
}

func scanAPIKey(row *sql.Row) (*models.APIKey, error) {
	key, err := scanAPIKeyRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return key, err
}

func scanAPIKeyRow(s scanner) (*models.APIKey, error) {
	var key models.APIKey
	var isAdmin, isActive int
	var rateLimit sql.NullInt64
	var resetAt, createdAt string

	err := s.Scan(
		&key.ID,
		&key.Key,
		&key.Name,
		&isAdmin,
		&rateLimit,
		&key.RequestsCount,
		&resetAt,
		&isActive,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	key.IsAdmin = isAdmin != 0
	key.IsActive = isActive != 0
	if rateLimit.Valid {
		limit := int(rateLimit.Int64)
		key.RateLimit = &limit
	}
	key.RequestsResetAt, _ = time.Parse(time.RFC3339, resetAt)
	key.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

	return &key, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
