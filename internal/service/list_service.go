package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/screenery/screenery/internal/models"
	"github.com/screenery/screenery/internal/repository"
)

// ListKind classifies a list URL by the scraping strategy it requires.
type ListKind string

const (
	// ListEditorial is an editorial guide page with ranked entries.
	ListEditorial ListKind = "editorial"
	// ListBrowse is a filterable browse page of movie tiles.
	ListBrowse ListKind = "browse"
)

// ListResolution is a resolved list record plus how it was obtained.
type ListResolution struct {
	List   *models.CachedList
	Status ResolveStatus
}

// ClassifyListURL decides which scraping strategy fits a list URL.
func ClassifyListURL(url string) (ListKind, error) {
	lower := strings.ToLower(url)
	switch {
	case strings.Contains(lower, "editorial.rottentomatoes.com"), strings.Contains(lower, "/guide/"):
		return ListEditorial, nil
	case strings.Contains(lower, "/browse/"):
		return ListBrowse, nil
	default:
		return "", ErrUnsupportedURL
	}
}

// ListService resolves list-type pages through the cache and the scraper.
type ListService struct {
	repos   *repository.Repositories
	scraper ListScraper
	baseURL string
	ttl     time.Duration
	logger  *slog.Logger
}

// NewListService creates the list resolution service.
func NewListService(repos *repository.Repositories, scraper ListScraper, baseURL string, ttl time.Duration, logger *slog.Logger) *ListService {
	return &ListService{
		repos:   repos,
		scraper: scraper,
		baseURL: baseURL,
		ttl:     ttl,
		logger:  logger,
	}
}

// Resolve returns the record for a list URL. The URL must classify as
// editorial or browse; unsupported URLs fail before any I/O. Expired cache
// entries are served stale when the fetch fails.
func (s *ListService) Resolve(ctx context.Context, url string) (*ListResolution, error) {
	kind, err := ClassifyListURL(url)
	if err != nil {
		return nil, err
	}

	cached, err := s.repos.ListCache.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	if cached != nil && cached.Fresh(time.Now(), s.ttl) {
		s.logger.Debug("list cache hit", "url", url)
		return &ListResolution{List: cached, Status: StatusCached}, nil
	}

	var data *models.ListData
	if kind == ListBrowse {
		data, err = s.scraper.ScrapeBrowse(ctx, url)
	} else {
		data, err = s.scraper.ScrapeEditorial(ctx, url)
	}
	if err != nil || data == nil {
		if cached != nil {
			s.logger.Warn("list fetch failed, serving stale cache", "url", url)
			return &ListResolution{List: cached, Status: StatusStale}, nil
		}
		s.logger.Error("list fetch failed", "url", url, "error", err)
		return nil, ErrUpstream
	}

	list, err := s.repos.ListCache.Upsert(ctx, data)
	if err != nil {
		return nil, err
	}
	return &ListResolution{List: list, Status: StatusFetched}, nil
}

// ResolveBrowse validates browse filters, builds the canonical browse URL,
// and resolves it through the usual list pipeline.
func (s *ListService) ResolveBrowse(ctx context.Context, filters BrowseFilters) (*ListResolution, error) {
	if err := filters.Validate(); err != nil {
		return nil, err
	}
	return s.Resolve(ctx, filters.BrowseURL(s.baseURL))
}
