package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/screenery/screenery/internal/models"
)

// SQLiteMovieCacheRepository implements MovieCacheRepository for SQLite/libsql.
type SQLiteMovieCacheRepository struct {
	db *sql.DB
}

// NewSQLiteMovieCacheRepository creates a new SQLite movie cache repository.
func NewSQLiteMovieCacheRepository(db *sql.DB) *SQLiteMovieCacheRepository {
	return &SQLiteMovieCacheRepository{db: db}
}

const movieColumns = `imdb_id, slug, title, year, critic_score, audience_score,
       critic_rating, audience_rating, consensus, url, cached_at`

// Get returns the cached record for an external ID, or nil if absent.
func (r *SQLiteMovieCacheRepository) Get(ctx context.Context, imdbID string) (*models.CachedMovie, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+movieColumns+`
		FROM movie_cache
		WHERE imdb_id = ?
	`, imdbID)

	movie, err := scanMovie(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return movie, err
}

// GetBatch returns cached records for the given IDs in one round trip.
func (r *SQLiteMovieCacheRepository) GetBatch(ctx context.Context, imdbIDs []string) (map[string]*models.CachedMovie, error) {
	result := make(map[string]*models.CachedMovie, len(imdbIDs))
	if len(imdbIDs) == 0 {
		return result, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(imdbIDs)), ",")
	args := make([]any, len(imdbIDs))
	for i, id := range imdbIDs {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+movieColumns+`
		FROM movie_cache
		WHERE imdb_id IN (`+placeholders+`)
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to batch-read movie cache: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		result[movie.IMDBID] = movie
	}

	return result, rows.Err()
}

// Upsert fully replaces (or inserts) the row for an external ID.
// Concurrent upserts for the same key are last-writer-wins.
func (r *SQLiteMovieCacheRepository) Upsert(ctx context.Context, imdbID string, data *models.MovieData, url string) (*models.CachedMovie, error) {
	now := time.Now().UTC()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO movie_cache (
			imdb_id, slug, title, year, critic_score, audience_score,
			critic_rating, audience_rating, consensus, url, cached_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(imdb_id) DO UPDATE SET
			slug = excluded.slug,
			title = excluded.title,
			year = excluded.year,
			critic_score = excluded.critic_score,
			audience_score = excluded.audience_score,
			critic_rating = excluded.critic_rating,
			audience_rating = excluded.audience_rating,
			consensus = excluded.consensus,
			url = excluded.url,
			cached_at = excluded.cached_at
	`,
		imdbID,
		data.Slug,
		data.Title,
		data.Year,
		data.CriticScore,
		data.AudienceScore,
		data.CriticRating,
		data.AudienceRating,
		data.Consensus,
		url,
		now.Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert movie cache: %w", err)
	}

	return &models.CachedMovie{
		IMDBID:         imdbID,
		Slug:           data.Slug,
		Title:          data.Title,
		Year:           data.Year,
		CriticScore:    data.CriticScore,
		AudienceScore:  data.AudienceScore,
		CriticRating:   data.CriticRating,
		AudienceRating: data.AudienceRating,
		Consensus:      data.Consensus,
		URL:            url,
		CachedAt:       now,
	}, nil
}

func scanMovie(s scanner) (*models.CachedMovie, error) {
	var movie models.CachedMovie
	var year, criticScore, audienceScore sql.NullInt64
	var criticRating, audienceRating, consensus sql.NullString
	var cachedAt string

	err := s.Scan(
		&movie.IMDBID,
		&movie.Slug,
		&movie.Title,
		&year,
		&criticScore,
		&audienceScore,
		&criticRating,
		&audienceRating,
		&consensus,
		&movie.URL,
		&cachedAt,
	)
	if err != nil {
		return nil, err
	}

	movie.Year = nullableInt(year)
	movie.CriticScore = nullableInt(criticScore)
	movie.AudienceScore = nullableInt(audienceScore)
	movie.CriticRating = nullableString(criticRating)
	movie.AudienceRating = nullableString(audienceRating)
	movie.Consensus = nullableString(consensus)
	movie.CachedAt, _ = time.Parse(time.RFC3339, cachedAt)

	return &movie, nil
}

func nullableInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

func nullableString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}
