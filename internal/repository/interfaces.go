// Package repository contains the persistence layer.
package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/screenery/screenery/internal/models"
)

// APIKeyRepository handles credential persistence.
type APIKeyRepository interface {
	// Create inserts a new API key row.
	Create(ctx context.Context, key *models.APIKey) error
	// GetActiveByKey returns the active credential with the given secret,
	// or nil if no active row matches.
	GetActiveByKey(ctx context.Context, key string) (*models.APIKey, error)
	// List returns all credentials, newest first.
	List(ctx context.Context) ([]*models.APIKey, error)
	// Deactivate flips is_active off. Returns false if the ID is unknown.
	Deactivate(ctx context.Context, id string) (bool, error)
	// ResetWindow sets requests_count to 1 and opens a new window ending at resetAt.
	ResetWindow(ctx context.Context, id string, resetAt time.Time) error
	// IncrementCount bumps requests_count by one.
	IncrementCount(ctx context.Context, id string) error
}

// MovieCacheRepository is the durable movie snapshot store.
type MovieCacheRepository interface {
	// Get returns the cached record for an external ID, or nil if absent.
	Get(ctx context.Context, imdbID string) (*models.CachedMovie, error)
	// GetBatch returns cached records for the given IDs in one round trip.
	// Absent IDs are simply missing from the result map.
	GetBatch(ctx context.Context, imdbIDs []string) (map[string]*models.CachedMovie, error)
	// Upsert fully replaces (or inserts) the row for an external ID and
	// refreshes its cache timestamp.
	Upsert(ctx context.Context, imdbID string, data *models.MovieData, url string) (*models.CachedMovie, error)
}

// ListCacheRepository is the durable list snapshot store, keyed by a hash of
// the normalized source URL.
type ListCacheRepository interface {
	// Get returns the cached record for a source URL, or nil if absent.
	Get(ctx context.Context, sourceURL string) (*models.CachedList, error)
	// Upsert fully replaces (or inserts) the row for a source URL.
	Upsert(ctx context.Context, data *models.ListData) (*models.CachedList, error)
}

// Repositories bundles all repositories for dependency injection.
type Repositories struct {
	APIKey     APIKeyRepository
	MovieCache MovieCacheRepository
	ListCache  ListCacheRepository
}

// NewRepositories creates all repositories backed by the given database.
func NewRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		APIKey:     NewSQLiteAPIKeyRepository(db),
		MovieCache: NewSQLiteMovieCacheRepository(db),
		ListCache:  NewSQLiteListCacheRepository(db),
	}
}
