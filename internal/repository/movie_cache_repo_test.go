package repository

import (
	"context"
	"testing"

	"github.com/screenery/screenery/internal/models"
)

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func TestMovieCacheRepository_UpsertAndGet(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()

	data := &models.MovieData{
		Slug:           "m/the_dark_knight",
		Title:          "The Dark Knight",
		Year:           intPtr(2008),
		CriticScore:    intPtr(94),
		AudienceScore:  intPtr(94),
		CriticRating:   strPtr("certified_fresh"),
		AudienceRating: strPtr("upright"),
		Consensus:      strPtr("Dark, complex, and unforgettable."),
	}

	created, err := repos.MovieCache.Upsert(ctx, "tt0468569", data, "https://www.rottentomatoes.com/m/the_dark_knight")
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if created.CachedAt.IsZero() {
		t.Error("expected CachedAt to be set")
	}

	got, err := repos.MovieCache.Get(ctx, "tt0468569")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got == nil {
		t.Fatal("Get() returned nil")
	}
	if got.Title != data.Title {
		t.Errorf("Title = %s, want %s", got.Title, data.Title)
	}
	if got.Year == nil || *got.Year != 2008 {
		t.Errorf("Year = %v, want 2008", got.Year)
	}
	if got.CriticRating == nil || *got.CriticRating != "certified_fresh" {
		t.Errorf("CriticRating = %v, want certified_fresh", got.CriticRating)
	}
	if got.URL != "https://www.rottentomatoes.com/m/the_dark_knight" {
		t.Errorf("URL = %s", got.URL)
	}
}

func TestMovieCacheRepository_SparseFieldsRoundTrip(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()

	// A scrape can legitimately produce only a title.
	data := &models.MovieData{Slug: "m/obscure_film", Title: "Obscure Film"}
	if _, err := repos.MovieCache.Upsert(ctx, "tt9999999", data, "https://example.com/m/obscure_film"); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	got, err := repos.MovieCache.Get(ctx, "tt9999999")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Year != nil {
		t.Errorf("Year = %v, want nil", *got.Year)
	}
	if got.CriticScore != nil {
		t.Errorf("CriticScore = %v, want nil", *got.CriticScore)
	}
	if got.Consensus != nil {
		t.Errorf("Consensus = %v, want nil", *got.Consensus)
	}
}

func TestMovieCacheRepository_Get_Missing(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()

	got, err := repos.MovieCache.Get(ctx, "tt0000000")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != nil {
		t.Error("expected nil for missing record")
	}
}

func TestMovieCacheRepository_UpsertReplaces(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()

	first := &models.MovieData{
		Slug:        "m/dune",
		Title:       "Dune",
		CriticScore: intPtr(83),
		Consensus:   strPtr("Visually striking."),
	}
	if _, err := repos.MovieCache.Upsert(ctx, "tt1160419", first, "https://example.com/m/dune"); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	// Second upsert without consensus must clear the stored one.
	second := &models.MovieData{
		Slug:        "m/dune",
		Title:       "Dune",
		CriticScore: intPtr(84),
	}
	if _, err := repos.MovieCache.Upsert(ctx, "tt1160419", second, "https://example.com/m/dune"); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	got, err := repos.MovieCache.Get(ctx, "tt1160419")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.CriticScore == nil || *got.CriticScore != 84 {
		t.Errorf("CriticScore = %v, want 84", got.CriticScore)
	}
	if got.Consensus != nil {
		t.Errorf("Consensus = %v, want nil after full replace", *got.Consensus)
	}
}

func TestMovieCacheRepository_GetBatch(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()

	for _, id := range []string{"tt0000001", "tt0000002"} {
		data := &models.MovieData{Slug: "m/" + id, Title: id}
		if _, err := repos.MovieCache.Upsert(ctx, id, data, "https://example.com/m/"+id); err != nil {
			t.Fatalf("Upsert(%s) error = %v", id, err)
		}
	}

	got, err := repos.MovieCache.GetBatch(ctx, []string{"tt0000001", "tt0000002", "tt0000003"})
	if err != nil {
		t.Fatalf("GetBatch() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("GetBatch() returned %d records, want 2", len(got))
	}
	if _, ok := got["tt0000003"]; ok {
		t.Error("expected missing ID to be absent from result")
	}

	empty, err := repos.MovieCache.GetBatch(ctx, nil)
	if err != nil {
		t.Fatalf("GetBatch(nil) error = %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("GetBatch(nil) returned %d records, want 0", len(empty))
	}
}
