package service

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/gocolly/colly/v2"

	"github.com/screenery/screenery/internal/models"
)

var (
	slugPattern      = regexp.MustCompile(`/m/([^/?"]+)`)
	titleYearPattern = regexp.MustCompile(`\s*\((\d{4})\)\s*`)
	itemsPattern     = regexp.MustCompile(`"items"\s*:\s*(\[[^\]]*\])`)
)

// ScrapeEditorial fetches an editorial guide page and extracts its ranked
// movie entries. Returns nil when the page yields no entries at all, which
// callers treat as a failed fetch.
func (s *SiteScraper) ScrapeEditorial(ctx context.Context, url string) (*models.ListData, error) {
	if err := s.gate.acquire(ctx); err != nil {
		return nil, err
	}
	defer s.gate.release()

	result := &models.ListData{SourceURL: url}
	seen := make(map[string]bool)

	var fetchErr error
	c := s.newCollector()
	c.OnError(func(r *colly.Response, err error) {
		fetchErr = err
	})

	c.OnHTML("h1", func(e *colly.HTMLElement) {
		if result.Title == "" {
			result.Title = strings.TrimSpace(e.Text)
		}
	})

	// Editorial pages link each entry to its /m/{slug} page.
	c.OnHTML(`a[href*="/m/"]`, func(e *colly.HTMLElement) {
		match := slugPattern.FindStringSubmatch(e.Attr("href"))
		if match == nil || seen[match[1]] {
			return
		}
		seen[match[1]] = true

		title := strings.TrimSpace(e.Text)
		if len(title) < 2 {
			// Anchor may be an image; look for a heading near it.
			title = strings.TrimSpace(e.DOM.ParentsFiltered("div").First().Find("h2,h3,strong").First().Text())
		}

		var year *int
		if ym := titleYearPattern.FindStringSubmatch(title); ym != nil {
			year = safeInt(ym[1])
			title = strings.TrimSpace(titleYearPattern.ReplaceAllString(title, " "))
		}

		if title != "" {
			result.Movies = append(result.Movies, models.ListMovie{
				Slug:  "m/" + match[1],
				Title: title,
				Year:  year,
			})
		}
	})

	if err := c.Visit(url); err != nil {
		s.logger.Error("editorial list fetch failed", "url", url, "error", err)
		return nil, err
	}
	if fetchErr != nil {
		s.logger.Error("editorial list fetch failed", "url", url, "error", fetchErr)
		return nil, fetchErr
	}

	if len(result.Movies) == 0 {
		s.logger.Warn("no movies found in editorial list", "url", url)
		return nil, nil
	}

	return result, nil
}

// ScrapeBrowse fetches a browse page and extracts its movie tiles. A page
// that loads but matches nothing returns an empty Movies slice; that is a
// valid result for a narrow filter combination, not a failure.
func (s *SiteScraper) ScrapeBrowse(ctx context.Context, url string) (*models.ListData, error) {
	if err := s.gate.acquire(ctx); err != nil {
		return nil, err
	}
	defer s.gate.release()

	result := &models.ListData{SourceURL: url, Title: browseTitle(url), Movies: []models.ListMovie{}}
	seen := make(map[string]bool)

	add := func(slug, title string, year *int) {
		slug = strings.TrimPrefix(slug, "m/")
		if slug == "" || seen[slug] {
			return
		}
		seen[slug] = true
		if title == "" {
			title = titleCase(slug)
		}
		result.Movies = append(result.Movies, models.ListMovie{Slug: "m/" + slug, Title: title, Year: year})
	}

	var fetchErr error
	c := s.newCollector()
	c.OnError(func(r *colly.Response, err error) {
		fetchErr = err
	})

	// Browse pages embed their tile data as JSON inside script tags.
	c.OnHTML("script", func(e *colly.HTMLElement) {
		match := itemsPattern.FindStringSubmatch(e.Text)
		if match == nil {
			return
		}
		var items []map[string]any
		if err := json.Unmarshal([]byte(match[1]), &items); err != nil {
			return
		}
		for _, item := range items {
			slug, _ := item["slug"].(string)
			if mediaURL, ok := item["mediaUrl"].(string); ok && mediaURL != "" {
				slug = strings.TrimPrefix(mediaURL, "/m/")
			}
			title, _ := item["title"].(string)
			year := anyYear(item["releaseYear"])
			if year == nil {
				year = anyYear(item["year"])
			}
			if slug != "" && title != "" {
				add(slug, title, year)
			}
		}
	})

	// Fallback: tile markup with data-qa hooks.
	c.OnHTML(`a[data-qa*="discovery-media"], div[data-qa*="discovery-media"]`, func(e *colly.HTMLElement) {
		match := slugPattern.FindStringSubmatch(e.Attr("href"))
		if match == nil {
			return
		}
		title := strings.TrimSpace(e.DOM.Find(`[data-qa="discovery-media-list-item-title"]`).First().Text())
		add(match[1], title, nil)
	})

	// Last resort: any /m/ link with usable text.
	c.OnHTML(`a[href*="/m/"]`, func(e *colly.HTMLElement) {
		match := slugPattern.FindStringSubmatch(e.Attr("href"))
		if match == nil {
			return
		}
		if title := strings.TrimSpace(e.Text); len(title) > 2 {
			add(match[1], title, nil)
		}
	})

	if err := c.Visit(url); err != nil {
		s.logger.Error("browse page fetch failed", "url", url, "error", err)
		return nil, err
	}
	if fetchErr != nil {
		s.logger.Error("browse page fetch failed", "url", url, "error", fetchErr)
		return nil, fetchErr
	}

	return result, nil
}

// browseTitle derives a human-readable title from the browse URL path,
// e.g. ".../browse/movies_at_home/genres:horror" -> "Movies At Home - Horror".
func browseTitle(url string) string {
	idx := strings.Index(url, "/browse/")
	if idx < 0 {
		return "Browse Results"
	}

	var parts []string
	for _, segment := range strings.Split(url[idx+len("/browse/"):], "/") {
		if segment == "" {
			continue
		}
		for _, filter := range strings.Split(segment, "~") {
			if _, value, ok := strings.Cut(filter, ":"); ok {
				parts = append(parts, titleCase(value))
			} else {
				parts = append(parts, titleCase(filter))
			}
		}
	}
	if len(parts) == 0 {
		return "Browse Results"
	}
	return strings.Join(parts, " - ")
}

func titleCase(s string) string {
	words := strings.Split(strings.ReplaceAll(s, "_", " "), " ")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func anyYear(v any) *int {
	switch y := v.(type) {
	case float64:
		n := int(y)
		return &n
	case string:
		return safeInt(y)
	}
	return nil
}
