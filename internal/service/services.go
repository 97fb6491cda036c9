// Package service contains the business logic layer.
package service

import (
	"log/slog"

	"github.com/screenery/screenery/internal/config"
	"github.com/screenery/screenery/internal/repository"
)

// Services bundles all services for dependency injection.
type Services struct {
	Auth   *AuthService
	APIKey *APIKeyService
	Movie  *MovieService
	List   *ListService
}

// NewServices wires up all services. The scrapers share one fetch gate so
// that the politeness limits hold across movie and list traffic combined.
func NewServices(cfg *config.Config, repos *repository.Repositories, logger *slog.Logger) *Services {
	gate := newFetchGate(cfg.ScrapeConcurrency, cfg.ScrapeDelay)
	scraper := NewSiteScraper(cfg.ReviewSiteBaseURL, gate, logger)
	wikidata := NewWikidataClient(cfg.SPARQLEndpoint, logger)
	ttl := cfg.CacheTTL()

	return &Services{
		Auth:   NewAuthService(cfg, repos, logger),
		APIKey: NewAPIKeyService(repos, logger),
		Movie:  NewMovieService(repos, wikidata, scraper, cfg.ReviewSiteBaseURL, ttl, logger),
		List:   NewListService(repos, scraper, cfg.ReviewSiteBaseURL, ttl, logger),
	}
}
