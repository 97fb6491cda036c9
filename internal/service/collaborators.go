package service

import (
	"context"

	"github.com/screenery/screenery/internal/models"
)

// SlugResolver maps an external movie ID to the review site's slug.
// Implementations convert transport failures into an empty slug plus an
// error; the pipeline only distinguishes "got a slug" from "didn't".
type SlugResolver interface {
	ResolveSlug(ctx context.Context, imdbID string) (string, error)
}

// MovieScraper fetches and parses a single movie page. Best effort: the
// returned record may have any of its optional fields absent. A nil record
// (or error) means the page could not be fetched or parsed at all.
type MovieScraper interface {
	ScrapeMovie(ctx context.Context, slug string) (*models.MovieData, error)
}

// ListScraper fetches and parses list-type pages. ScrapeBrowse returns a
// record with an empty Movies slice when the page loaded but matched
// nothing; that is a valid empty result, not a failure.
type ListScraper interface {
	ScrapeEditorial(ctx context.Context, url string) (*models.ListData, error)
	ScrapeBrowse(ctx context.Context, url string) (*models.ListData, error)
}
