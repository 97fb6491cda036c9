package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// sparqlQuery maps an IMDb ID (P345) to a Rotten Tomatoes ID (P1258).
const sparqlQuery = `SELECT ?rtId WHERE {
  ?film wdt:P345 %q .
  ?film wdt:P1258 ?rtId .
}`

// WikidataClient resolves external movie IDs to review-site slugs through
// the Wikidata SPARQL endpoint.
type WikidataClient struct {
	endpoint string
	client   *http.Client
	logger   *slog.Logger
}

// NewWikidataClient creates a new Wikidata SPARQL client.
func NewWikidataClient(endpoint string, logger *slog.Logger) *WikidataClient {
	return &WikidataClient{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
		logger:   logger,
	}
}

type sparqlResponse struct {
	Results struct {
		Bindings []map[string]struct {
			Value string `json:"value"`
		} `json:"bindings"`
	} `json:"results"`
}

// ResolveSlug queries Wikidata for the review-site slug of an IMDb ID
// (e.g. "tt0468569" -> "m/the_dark_knight"). Returns an empty slug when the
// ID is unknown; transport and decode failures are logged and surfaced as
// errors, which callers treat the same as absence.
func (c *WikidataClient) ResolveSlug(ctx context.Context, imdbID string) (string, error) {
	query := fmt.Sprintf(sparqlQuery, imdbID)

	params := url.Values{}
	params.Set("query", query)
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/sparql-results+json")
	req.Header.Set("User-Agent", "screenery/1.0 (personal movie data service)")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("wikidata request failed", "imdb_id", imdbID, "error", err)
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("wikidata http error", "imdb_id", imdbID, "status", resp.StatusCode)
		return "", fmt.Errorf("wikidata returned status %d", resp.StatusCode)
	}

	var decoded sparqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		c.logger.Error("wikidata decode failed", "imdb_id", imdbID, "error", err)
		return "", err
	}

	if len(decoded.Results.Bindings) == 0 {
		c.logger.Warn("no slug found in wikidata", "imdb_id", imdbID)
		return "", nil
	}

	slug := decoded.Results.Bindings[0]["rtId"].Value
	c.logger.Info("resolved slug", "imdb_id", imdbID, "slug", slug)
	return slug, nil
}
