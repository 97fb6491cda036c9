package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/screenery/screenery/internal/models"
)

const browserUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

var yearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// SiteScraper fetches and parses review-site movie pages. All requests go
// through the shared fetch gate.
type SiteScraper struct {
	baseURL string
	gate    *fetchGate
	logger  *slog.Logger
}

// NewSiteScraper creates a movie page scraper using the given admission gate.
func NewSiteScraper(baseURL string, gate *fetchGate, logger *slog.Logger) *SiteScraper {
	return &SiteScraper{baseURL: baseURL, gate: gate, logger: logger}
}

func (s *SiteScraper) newCollector() *colly.Collector {
	c := colly.NewCollector(colly.UserAgent(browserUserAgent))
	c.SetRequestTimeout(30 * time.Second)
	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
		r.Headers.Set("Accept-Language", "en-US,en;q=0.5")
	})
	return c
}

// ScrapeMovie fetches a movie page and extracts scores and metadata.
// Best effort: JSON-LD first, then score-board attributes, then per-field
// element fallbacks. Any field may be absent on the returned record. Returns
// an error only when the page itself could not be fetched.
func (s *SiteScraper) ScrapeMovie(ctx context.Context, slug string) (*models.MovieData, error) {
	if err := s.gate.acquire(ctx); err != nil {
		return nil, err
	}
	defer s.gate.release()

	pageURL := s.baseURL + "/" + slug
	data := &models.MovieData{Slug: slug}

	var fetchErr error
	c := s.newCollector()
	c.OnError(func(r *colly.Response, err error) {
		fetchErr = err
	})

	// JSON-LD is the most reliable source for title, year, critic score.
	c.OnHTML(`script[type="application/ld+json"]`, func(e *colly.HTMLElement) {
		if data.Title != "" {
			return
		}
		if title, year, criticScore, ok := parseMovieJSONLD(e.Text); ok {
			data.Title = title
			if data.Year == nil {
				data.Year = year
			}
			if data.CriticScore == nil {
				data.CriticScore = criticScore
			}
		}
	})

	// HTML fallbacks for title and year.
	c.OnHTML(`h1[data-qa="score-panel-title"]`, func(e *colly.HTMLElement) {
		if data.Title == "" {
			data.Title = strings.TrimSpace(e.Text)
		}
	})
	c.OnHTML(`span[data-qa="score-panel-subtitle"]`, func(e *colly.HTMLElement) {
		if data.Year == nil {
			data.Year = extractYear(e.Text)
		}
	})

	// Score widget carries both scores and rating tiers as attributes.
	scoreboard := func(e *colly.HTMLElement) {
		if data.CriticScore == nil {
			data.CriticScore = safeInt(e.Attr("tomatometerscore"))
		}
		if data.AudienceScore == nil {
			data.AudienceScore = safeInt(e.Attr("audiencescore"))
		}
		if data.CriticRating == nil {
			if state := e.Attr("tomatometerstate"); state != "" {
				rating := strings.ReplaceAll(strings.ToLower(state), "-", "_")
				data.CriticRating = &rating
			}
		}
		if data.AudienceRating == nil {
			if state := e.Attr("audiencestate"); state != "" {
				rating := strings.ToLower(state)
				data.AudienceRating = &rating
			}
		}
	}
	c.OnHTML("media-scorecard", scoreboard)
	c.OnHTML("score-board", scoreboard)

	// Per-field fallbacks for pages without the score widget.
	c.OnHTML(`rt-button[slot="criticsScore"]`, func(e *colly.HTMLElement) {
		if data.CriticScore == nil {
			data.CriticScore = safeInt(e.Text)
		}
	})
	c.OnHTML(`rt-button[slot="audienceScore"]`, func(e *colly.HTMLElement) {
		if data.AudienceScore == nil {
			data.AudienceScore = safeInt(e.Text)
		}
	})

	c.OnHTML(`[data-qa="critics-consensus"]`, func(e *colly.HTMLElement) {
		if data.Consensus == nil {
			if text := strings.TrimSpace(e.Text); text != "" {
				data.Consensus = &text
			}
		}
	})

	if err := c.Visit(pageURL); err != nil {
		s.logger.Error("movie page fetch failed", "slug", slug, "error", err)
		return nil, err
	}
	if fetchErr != nil {
		s.logger.Error("movie page fetch failed", "slug", slug, "error", fetchErr)
		return nil, fetchErr
	}

	return data, nil
}

// jsonLDMovie is the subset of schema.org Movie structured data we read.
type jsonLDMovie struct {
	Type            string `json:"@type"`
	Name            string `json:"name"`
	DatePublished   string `json:"datePublished"`
	AggregateRating struct {
		RatingValue any `json:"ratingValue"`
	} `json:"aggregateRating"`
}

// parseMovieJSONLD extracts title, year, and critic score from a JSON-LD
// block. Handles both single-object and array payloads.
func parseMovieJSONLD(text string) (string, *int, *int, bool) {
	var movie jsonLDMovie
	if err := json.Unmarshal([]byte(text), &movie); err != nil {
		var entries []jsonLDMovie
		if err := json.Unmarshal([]byte(text), &entries); err != nil {
			return "", nil, nil, false
		}
		for _, entry := range entries {
			if entry.Type == "Movie" {
				movie = entry
				break
			}
		}
	}
	if movie.Type != "Movie" || movie.Name == "" {
		return "", nil, nil, false
	}

	var score *int
	switch v := movie.AggregateRating.RatingValue.(type) {
	case float64:
		n := int(v)
		score = &n
	case string:
		score = safeInt(v)
	}

	return movie.Name, extractYear(movie.DatePublished), score, true
}

// extractYear finds a 4-digit year anywhere in the string.
func extractYear(text string) *int {
	match := yearPattern.FindString(text)
	if match == "" {
		return nil
	}
	year, err := strconv.Atoi(match)
	if err != nil {
		return nil
	}
	return &year
}

// safeInt leniently parses an integer, tolerating percent signs and
// fractional values.
func safeInt(text string) *int {
	text = strings.TrimSpace(strings.ReplaceAll(text, "%", ""))
	if text == "" {
		return nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil
	}
	n := int(f)
	return &n
}
