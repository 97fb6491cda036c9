package repository

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/screenery/screenery/internal/models"
)

// SQLiteListCacheRepository implements ListCacheRepository for SQLite/libsql.
type SQLiteListCacheRepository struct {
	db *sql.DB
}

// NewSQLiteListCacheRepository creates a new SQLite list cache repository.
func NewSQLiteListCacheRepository(db *sql.DB) *SQLiteListCacheRepository {
	return &SQLiteListCacheRepository{db: db}
}

// NormalizeURL canonicalizes a list URL so that equivalent URLs hash to the
// same cache key: lowercased, trailing slash stripped, ref/utm tracking
// parameters removed. Applied identically on read and write.
func NormalizeURL(url string) string {
	normalized := strings.TrimRight(strings.ToLower(url), "/")
	for _, param := range []string{"?ref=", "&ref=", "?utm_", "&utm_"} {
		if idx := strings.Index(normalized, param); idx >= 0 {
			normalized = normalized[:idx]
		}
	}
	return normalized
}

// HashURL returns the cache key for a list URL.
func HashURL(url string) string {
	sum := sha256.Sum256([]byte(NormalizeURL(url)))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached record for a source URL, or nil if absent.
func (r *SQLiteListCacheRepository) Get(ctx context.Context, sourceURL string) (*models.CachedList, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT url_hash, source_url, title, movies, cached_at
		FROM list_cache
		WHERE url_hash = ?
	`, HashURL(sourceURL))

	var list models.CachedList
	var moviesJSON, cachedAt string

	err := row.Scan(&list.URLHash, &list.SourceURL, &list.Title, &moviesJSON, &cachedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(moviesJSON), &list.Movies); err != nil {
		return nil, fmt.Errorf("failed to decode cached list entries: %w", err)
	}
	list.CachedAt, _ = time.Parse(time.RFC3339, cachedAt)

	return &list, nil
}

// Upsert fully replaces (or inserts) the row for a source URL.
func (r *SQLiteListCacheRepository) Upsert(ctx context.Context, data *models.ListData) (*models.CachedList, error) {
	urlHash := HashURL(data.SourceURL)
	now := time.Now().UTC()

	moviesJSON, err := json.Marshal(data.Movies)
	if err != nil {
		return nil, fmt.Errorf("failed to encode list entries: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO list_cache (url_hash, source_url, title, movies, cached_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(url_hash) DO UPDATE SET
			source_url = excluded.source_url,
			title = excluded.title,
			movies = excluded.movies,
			cached_at = excluded.cached_at
	`,
		urlHash,
		data.SourceURL,
		data.Title,
		string(moviesJSON),
		now.Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert list cache: %w", err)
	}

	return &models.CachedList{
		URLHash:   urlHash,
		SourceURL: data.SourceURL,
		Title:     data.Title,
		Movies:    data.Movies,
		CachedAt:  now,
	}, nil
}
