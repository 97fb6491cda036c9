package service

import (
	"context"
	"errors"
	"time"

	"github.com/screenery/screenery/internal/models"
	"github.com/screenery/screenery/internal/repository"
)

// mockMovieCache is an in-memory MovieCacheRepository with call counters.
type mockMovieCache struct {
	records map[string]*models.CachedMovie

	getCalls    int
	batchCalls  int
	upsertCalls int
	getErr      error
}

func newMockMovieCache() *mockMovieCache {
	return &mockMovieCache{records: make(map[string]*models.CachedMovie)}
}

func (m *mockMovieCache) Get(ctx context.Context, imdbID string) (*models.CachedMovie, error) {
	m.getCalls++
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.records[imdbID], nil
}

func (m *mockMovieCache) GetBatch(ctx context.Context, imdbIDs []string) (map[string]*models.CachedMovie, error) {
	m.batchCalls++
	if m.getErr != nil {
		return nil, m.getErr
	}
	result := make(map[string]*models.CachedMovie)
	for _, id := range imdbIDs {
		if rec, ok := m.records[id]; ok {
			result[id] = rec
		}
	}
	return result, nil
}

func (m *mockMovieCache) Upsert(ctx context.Context, imdbID string, data *models.MovieData, url string) (*models.CachedMovie, error) {
	m.upsertCalls++
	rec := &models.CachedMovie{
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
		CachedAt:       time.Now().UTC(),
	}
	m.records[imdbID] = rec
	return rec, nil
}

// mockListCache is an in-memory ListCacheRepository.
type mockListCache struct {
	records map[string]*models.CachedList

	getCalls    int
	upsertCalls int
}

func newMockListCache() *mockListCache {
	return &mockListCache{records: make(map[string]*models.CachedList)}
}

func (m *mockListCache) Get(ctx context.Context, sourceURL string) (*models.CachedList, error) {
	m.getCalls++
	return m.records[repository.HashURL(sourceURL)], nil
}

func (m *mockListCache) Upsert(ctx context.Context, data *models.ListData) (*models.CachedList, error) {
	m.upsertCalls++
	rec := &models.CachedList{
		URLHash:   repository.HashURL(data.SourceURL),
		SourceURL: data.SourceURL,
		Title:     data.Title,
		Movies:    data.Movies,
		CachedAt:  time.Now().UTC(),
	}
	m.records[rec.URLHash] = rec
	return rec, nil
}

// mockAPIKeyRepo is an in-memory APIKeyRepository.
type mockAPIKeyRepo struct {
	keys map[string]*models.APIKey // by secret

	resetCalls     int
	incrementCalls int
}

func newMockAPIKeyRepo() *mockAPIKeyRepo {
	return &mockAPIKeyRepo{keys: make(map[string]*models.APIKey)}
}

func (m *mockAPIKeyRepo) Create(ctx context.Context, key *models.APIKey) error {
	m.keys[key.Key] = key
	return nil
}

func (m *mockAPIKeyRepo) GetActiveByKey(ctx context.Context, key string) (*models.APIKey, error) {
	k, ok := m.keys[key]
	if !ok || !k.IsActive {
		return nil, nil
	}
	copied := *k
	return &copied, nil
}

func (m *mockAPIKeyRepo) List(ctx context.Context) ([]*models.APIKey, error) {
	var all []*models.APIKey
	for _, k := range m.keys {
		all = append(all, k)
	}
	return all, nil
}

func (m *mockAPIKeyRepo) Deactivate(ctx context.Context, id string) (bool, error) {
	for _, k := range m.keys {
		if k.ID == id {
			k.IsActive = false
			return true, nil
		}
	}
	return false, nil
}

func (m *mockAPIKeyRepo) ResetWindow(ctx context.Context, id string, resetAt time.Time) error {
	m.resetCalls++
	for _, k := range m.keys {
		if k.ID == id {
			k.RequestsCount = 1
			k.RequestsResetAt = resetAt
			return nil
		}
	}
	return errors.New("key not found")
}

func (m *mockAPIKeyRepo) IncrementCount(ctx context.Context, id string) error {
	m.incrementCalls++
	for _, k := range m.keys {
		if k.ID == id {
			k.RequestsCount++
			return nil
		}
	}
	return errors.New("key not found")
}

func mockRepos(movies *mockMovieCache, lists *mockListCache, keys *mockAPIKeyRepo) *repository.Repositories {
	if movies == nil {
		movies = newMockMovieCache()
	}
	if lists == nil {
		lists = newMockListCache()
	}
	if keys == nil {
		keys = newMockAPIKeyRepo()
	}
	return &repository.Repositories{
		APIKey:     keys,
		MovieCache: movies,
		ListCache:  lists,
	}
}

// mockSlugResolver returns canned slugs per ID.
type mockSlugResolver struct {
	slugs map[string]string
	err   error
	calls int
}

func (m *mockSlugResolver) ResolveSlug(ctx context.Context, imdbID string) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return m.slugs[imdbID], nil
}

// mockMovieScraper returns canned records per slug.
type mockMovieScraper struct {
	data  map[string]*models.MovieData
	err   error
	calls int
}

func (m *mockMovieScraper) ScrapeMovie(ctx context.Context, slug string) (*models.MovieData, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.data[slug], nil
}

// mockListScraper returns one canned record for any URL.
type mockListScraper struct {
	editorial *models.ListData
	browse    *models.ListData
	err       error

	editorialCalls int
	browseCalls    int
}

func (m *mockListScraper) ScrapeEditorial(ctx context.Context, url string) (*models.ListData, error) {
	m.editorialCalls++
	if m.err != nil {
		return nil, m.err
	}
	if m.editorial != nil {
		out := *m.editorial
		out.SourceURL = url
		return &out, nil
	}
	return nil, nil
}

func (m *mockListScraper) ScrapeBrowse(ctx context.Context, url string) (*models.ListData, error) {
	m.browseCalls++
	if m.err != nil {
		return nil, m.err
	}
	if m.browse != nil {
		out := *m.browse
		out.SourceURL = url
		return &out, nil
	}
	return nil, nil
}
