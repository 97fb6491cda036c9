package service

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/screenery/screenery/internal/models"
	"github.com/screenery/screenery/internal/repository"
)

// ResolveStatus tells the caller how a resolution was satisfied.
type ResolveStatus string

const (
	// StatusCached means the record was served from a fresh cache entry.
	StatusCached ResolveStatus = "cached"
	// StatusFetched means the record was freshly scraped and cached.
	StatusFetched ResolveStatus = "fetched"
	// StatusStale means the upstream fetch failed and an expired cache
	// entry was served instead.
	StatusStale ResolveStatus = "stale"
)

// MaxBatchSize caps the number of IDs in a single batch request.
const MaxBatchSize = 50

var imdbIDPattern = regexp.MustCompile(`^[a-z]{2}\d{7,8}$`)

// MovieResolution is a resolved movie record plus how it was obtained.
type MovieResolution struct {
	Movie  *models.CachedMovie
	Status ResolveStatus
}

// BatchEvent is a single item of a streaming batch resolution. Exactly one of
// Resolution or Err is set; the terminal event carries only the Summary.
type BatchEvent struct {
	IMDBID     string
	Resolution *MovieResolution
	Err        error
	Summary    *BatchSummary
}

// BatchSummary totals a completed batch. Cached counts both fresh hits and
// stale fallbacks.
type BatchSummary struct {
	Total   int `json:"total"`
	Cached  int `json:"cached"`
	Fetched int `json:"fetched"`
	Errors  int `json:"errors"`
}

// MovieService resolves external movie IDs through the cache, the slug
// lookup, and the page scraper.
type MovieService struct {
	repos   *repository.Repositories
	slugs   SlugResolver
	scraper MovieScraper
	baseURL string
	ttl     time.Duration
	logger  *slog.Logger
}

// NewMovieService creates the movie resolution service.
func NewMovieService(repos *repository.Repositories, slugs SlugResolver, scraper MovieScraper, baseURL string, ttl time.Duration, logger *slog.Logger) *MovieService {
	return &MovieService{
		repos:   repos,
		slugs:   slugs,
		scraper: scraper,
		baseURL: baseURL,
		ttl:     ttl,
		logger:  logger,
	}
}

// Resolve returns the record for a single external ID. IDs are lowercased
// before the syntax check; malformed IDs fail before any I/O. A fresh cache
// hit short-circuits the upstream pipeline entirely.
func (s *MovieService) Resolve(ctx context.Context, imdbID string) (*MovieResolution, error) {
	imdbID = strings.ToLower(strings.TrimSpace(imdbID))
	if !imdbIDPattern.MatchString(imdbID) {
		return nil, ErrInvalidID
	}

	cached, err := s.repos.MovieCache.Get(ctx, imdbID)
	if err != nil {
		return nil, err
	}
	if cached != nil && cached.Fresh(time.Now(), s.ttl) {
		s.logger.Debug("cache hit", "imdb_id", imdbID)
		return &MovieResolution{Movie: cached, Status: StatusCached}, nil
	}

	return s.resolveUpstream(ctx, imdbID, cached)
}

// resolveUpstream runs the slug lookup and scrape for a cache miss. fallback
// is the expired cache entry, if any; it is served with StatusStale whenever
// the upstream pipeline cannot produce a fresh record.
func (s *MovieService) resolveUpstream(ctx context.Context, imdbID string, fallback *models.CachedMovie) (*MovieResolution, error) {
	slug, err := s.slugs.ResolveSlug(ctx, imdbID)
	if err != nil || slug == "" {
		if fallback != nil {
			s.logger.Warn("slug lookup failed, serving stale cache", "imdb_id", imdbID)
			return &MovieResolution{Movie: fallback, Status: StatusStale}, nil
		}
		if err != nil {
			s.logger.Error("slug lookup failed", "imdb_id", imdbID, "error", err)
		}
		return nil, ErrNotFound
	}

	data, err := s.scraper.ScrapeMovie(ctx, slug)
	if err != nil || data == nil {
		if fallback != nil {
			s.logger.Warn("scrape failed, serving stale cache", "imdb_id", imdbID, "slug", slug)
			return &MovieResolution{Movie: fallback, Status: StatusStale}, nil
		}
		s.logger.Error("scrape failed", "imdb_id", imdbID, "slug", slug, "error", err)
		return nil, ErrUpstream
	}

	movie, err := s.repos.MovieCache.Upsert(ctx, imdbID, data, s.baseURL+"/"+slug)
	if err != nil {
		return nil, err
	}
	return &MovieResolution{Movie: movie, Status: StatusFetched}, nil
}

type batchOutcome struct {
	imdbID     string
	resolution *MovieResolution
	err        error
}

// ResolveBatch resolves up to MaxBatchSize IDs and streams results as they
// complete. Size and syntax are validated before any I/O; one malformed ID
// rejects the whole batch. Fresh cache hits are emitted first, misses follow
// in completion order, and the final event carries the summary. The returned
// channel is closed once the summary is sent or ctx is cancelled.
func (s *MovieService) ResolveBatch(ctx context.Context, imdbIDs []string) (<-chan BatchEvent, error) {
	if len(imdbIDs) == 0 || len(imdbIDs) > MaxBatchSize {
		return nil, ErrBatchSize
	}

	ids := make([]string, len(imdbIDs))
	for i, id := range imdbIDs {
		ids[i] = strings.ToLower(strings.TrimSpace(id))
		if !imdbIDPattern.MatchString(ids[i]) {
			return nil, ErrInvalidID
		}
	}

	cached, err := s.repos.MovieCache.GetBatch(ctx, ids)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var fresh []batchOutcome
	type pending struct {
		imdbID   string
		fallback *models.CachedMovie
	}
	var misses []pending
	seen := make(map[string]bool, len(ids))

	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if entry, ok := cached[id]; ok && entry.Fresh(now, s.ttl) {
			fresh = append(fresh, batchOutcome{
				imdbID:     id,
				resolution: &MovieResolution{Movie: entry, Status: StatusCached},
			})
		} else {
			misses = append(misses, pending{imdbID: id, fallback: cached[id]})
		}
	}

	// Buffered so that workers never block on a consumer that went away.
	results := make(chan batchOutcome, len(misses))
	for _, m := range misses {
		go func(p pending) {
			resolution, err := s.resolveUpstream(ctx, p.imdbID, p.fallback)
			results <- batchOutcome{imdbID: p.imdbID, resolution: resolution, err: err}
		}(m)
	}

	events := make(chan BatchEvent)
	go func() {
		defer close(events)

		summary := BatchSummary{Total: len(fresh) + len(misses)}
		emit := func(ev BatchEvent) bool {
			select {
			case events <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}

		for _, out := range fresh {
			summary.Cached++
			if !emit(BatchEvent{IMDBID: out.imdbID, Resolution: out.resolution}) {
				return
			}
		}

		for range misses {
			var out batchOutcome
			select {
			case out = <-results:
			case <-ctx.Done():
				return
			}

			var ev BatchEvent
			switch {
			case out.err != nil:
				summary.Errors++
				ev = BatchEvent{IMDBID: out.imdbID, Err: out.err}
			case out.resolution.Status == StatusFetched:
				summary.Fetched++
				ev = BatchEvent{IMDBID: out.imdbID, Resolution: out.resolution}
			default:
				summary.Cached++
				ev = BatchEvent{IMDBID: out.imdbID, Resolution: out.resolution}
			}
			if !emit(ev) {
				return
			}
		}

		emit(BatchEvent{Summary: &summary})
	}()

	return events, nil
}
