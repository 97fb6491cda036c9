// Package models contains the domain types shared between the repository,
// service, and handler layers.
package models

import (
	"time"
)

// APIKey is a caller credential. The secret is stored raw so that listings
// can mask it to its first-8/last-4 characters; only the create response
// ever exposes it in full.
type APIKey struct {
	ID              string     `json:"id"`
	Key             string     `json:"-"`
	Name            string     `json:"name"`
	IsAdmin         bool       `json:"is_admin"`
	RateLimit       *int       `json:"rate_limit,omitempty"` // nil -> system default
	RequestsCount   int        `json:"requests_count"`
	RequestsResetAt time.Time  `json:"requests_reset_at"`
	IsActive        bool       `json:"is_active"`
	CreatedAt       time.Time  `json:"created_at"`
}

// MaskedKey returns the secret masked to its first 8 and last 4 characters.
func (k *APIKey) MaskedKey() string {
	if len(k.Key) <= 12 {
		return k.Key
	}
	return k.Key[:8] + "..." + k.Key[len(k.Key)-4:]
}

// MovieData is the structured record produced by a successful movie page
// scrape. All score fields are best-effort and may be absent.
type MovieData struct {
	Slug           string
	Title          string
	Year           *int
	CriticScore    *int
	AudienceScore  *int
	CriticRating   *string
	AudienceRating *string
	Consensus      *string
}

// CachedMovie is the durable snapshot of a resolved movie, keyed by its
// external (IMDb-style) ID.
type CachedMovie struct {
	IMDBID         string
	Slug           string
	Title          string
	Year           *int
	CriticScore    *int
	AudienceScore  *int
	CriticRating   *string
	AudienceRating *string
	Consensus      *string
	URL            string
	CachedAt       time.Time
}

// Fresh reports whether the record is within the TTL at the given instant.
// A record exactly at the boundary is stale.
func (m *CachedMovie) Fresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(m.CachedAt) < ttl
}

// ListMovie is a single entry of a scraped list.
type ListMovie struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
	Year  *int   `json:"year,omitempty"`
}

// ListData is the structured record produced by a list or browse scrape.
type ListData struct {
	SourceURL string
	Title     string
	Movies    []ListMovie
}

// CachedList is the durable snapshot of a list-type resource, keyed by the
// SHA-256 of its normalized source URL.
type CachedList struct {
	URLHash   string
	SourceURL string
	Title     string
	Movies    []ListMovie
	CachedAt  time.Time
}

// Fresh reports whether the record is within the TTL at the given instant.
func (l *CachedList) Fresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(l.CachedAt) < ttl
}
