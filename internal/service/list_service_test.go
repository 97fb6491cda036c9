package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/screenery/screenery/internal/models"
	"github.com/screenery/screenery/internal/repository"
)

func newTestListService(cache *mockListCache, scraper *mockListScraper) *ListService {
	return NewListService(mockRepos(nil, cache, nil), scraper, testBaseURL, 7*24*time.Hour, testLogger())
}

func TestClassifyListURL(t *testing.T) {
	tests := []struct {
		url     string
		want    ListKind
		wantErr bool
	}{
		{"https://editorial.rottentomatoes.com/guide/best-horror-movies-of-all-time/", ListEditorial, false},
		{"https://www.rottentomatoes.com/guide/something", ListEditorial, false},
		{"https://www.rottentomatoes.com/browse/movies_at_home/genres:horror", ListBrowse, false},
		{"https://www.rottentomatoes.com/m/the_dark_knight", "", true},
		{"https://example.com/other", "", true},
	}

	for _, tt := range tests {
		got, err := ClassifyListURL(tt.url)
		if tt.wantErr {
			if !errors.Is(err, ErrUnsupportedURL) {
				t.Errorf("ClassifyListURL(%q) error = %v, want ErrUnsupportedURL", tt.url, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ClassifyListURL(%q) error = %v", tt.url, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ClassifyListURL(%q) = %s, want %s", tt.url, got, tt.want)
		}
	}
}

func TestListService_UnsupportedURL(t *testing.T) {
	cache := newMockListCache()
	scraper := &mockListScraper{}
	svc := newTestListService(cache, scraper)

	_, err := svc.Resolve(context.Background(), "https://example.com/other")
	if !errors.Is(err, ErrUnsupportedURL) {
		t.Errorf("Resolve() error = %v, want ErrUnsupportedURL", err)
	}
	if cache.getCalls != 0 || scraper.editorialCalls != 0 {
		t.Error("unsupported URLs must fail before any I/O")
	}
}

func TestListService_EditorialFetchAndCache(t *testing.T) {
	cache := newMockListCache()
	scraper := &mockListScraper{editorial: &models.ListData{
		Title:  "Best Horror Movies",
		Movies: []models.ListMovie{{Slug: "m/the_shining", Title: "The Shining"}},
	}}
	svc := newTestListService(cache, scraper)

	url := "https://editorial.rottentomatoes.com/guide/best-horror-movies-of-all-time/"
	res, err := svc.Resolve(context.Background(), url)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if res.Status != StatusFetched {
		t.Errorf("Status = %s, want %s", res.Status, StatusFetched)
	}
	if len(res.List.Movies) != 1 {
		t.Errorf("Movies = %d entries, want 1", len(res.List.Movies))
	}
	if cache.upsertCalls != 1 {
		t.Errorf("upsertCalls = %d, want 1", cache.upsertCalls)
	}

	// Second resolve hits the cache.
	res, err = svc.Resolve(context.Background(), url)
	if err != nil {
		t.Fatalf("second Resolve() error = %v", err)
	}
	if res.Status != StatusCached {
		t.Errorf("second Status = %s, want %s", res.Status, StatusCached)
	}
	if scraper.editorialCalls != 1 {
		t.Errorf("editorialCalls = %d, want 1", scraper.editorialCalls)
	}
}

func TestListService_StaleFallback(t *testing.T) {
	cache := newMockListCache()
	url := "https://editorial.rottentomatoes.com/guide/best-horror-movies-of-all-time/"
	cache.records[repository.HashURL(url)] = &models.CachedList{
		URLHash:   repository.HashURL(url),
		SourceURL: url,
		Title:     "Best Horror Movies",
		Movies:    []models.ListMovie{{Slug: "m/alien", Title: "Alien"}},
		CachedAt:  time.Now().UTC().Add(-8 * 24 * time.Hour),
	}
	scraper := &mockListScraper{err: errors.New("blocked")}
	svc := newTestListService(cache, scraper)

	res, err := svc.Resolve(context.Background(), url)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if res.Status != StatusStale {
		t.Errorf("Status = %s, want %s", res.Status, StatusStale)
	}
}

func TestListService_FailureWithoutFallback(t *testing.T) {
	scraper := &mockListScraper{err: errors.New("blocked")}
	svc := newTestListService(newMockListCache(), scraper)

	_, err := svc.Resolve(context.Background(), "https://editorial.rottentomatoes.com/guide/unknown/")
	if !errors.Is(err, ErrUpstream) {
		t.Errorf("Resolve() error = %v, want ErrUpstream", err)
	}
}

func TestListService_EmptyEditorialTreatedAsFailure(t *testing.T) {
	// mockListScraper with nil editorial record models a page that yielded
	// no entries; that must not be cached as an empty list.
	cache := newMockListCache()
	svc := newTestListService(cache, &mockListScraper{})

	_, err := svc.Resolve(context.Background(), "https://editorial.rottentomatoes.com/guide/empty/")
	if !errors.Is(err, ErrUpstream) {
		t.Errorf("Resolve() error = %v, want ErrUpstream", err)
	}
	if cache.upsertCalls != 0 {
		t.Error("failed fetches must not be cached")
	}
}

func TestListService_ResolveBrowse(t *testing.T) {
	cache := newMockListCache()
	scraper := &mockListScraper{browse: &models.ListData{
		Title:  "Movies At Home - Horror",
		Movies: []models.ListMovie{},
	}}
	svc := newTestListService(cache, scraper)

	res, err := svc.ResolveBrowse(context.Background(), BrowseFilters{Genre: "horror"})
	if err != nil {
		t.Fatalf("ResolveBrowse() error = %v", err)
	}
	if res.Status != StatusFetched {
		t.Errorf("Status = %s, want %s", res.Status, StatusFetched)
	}
	// Empty result sets are valid for browse and get cached.
	if cache.upsertCalls != 1 {
		t.Errorf("upsertCalls = %d, want 1", cache.upsertCalls)
	}
	if scraper.browseCalls != 1 || scraper.editorialCalls != 0 {
		t.Errorf("browseCalls = %d, editorialCalls = %d", scraper.browseCalls, scraper.editorialCalls)
	}
	if res.List.SourceURL != testBaseURL+"/browse/movies_at_home/genres:horror" {
		t.Errorf("SourceURL = %s", res.List.SourceURL)
	}
}

func TestListService_ResolveBrowseInvalidFilter(t *testing.T) {
	scraper := &mockListScraper{}
	svc := newTestListService(newMockListCache(), scraper)

	_, err := svc.ResolveBrowse(context.Background(), BrowseFilters{Genre: "telenovela"})
	var filterErr *InvalidFilterError
	if !errors.As(err, &filterErr) {
		t.Fatalf("ResolveBrowse() error = %v, want InvalidFilterError", err)
	}
	if filterErr.Param != "genre" {
		t.Errorf("Param = %s, want genre", filterErr.Param)
	}
	if scraper.browseCalls != 0 {
		t.Error("invalid filters must fail before any I/O")
	}
}
