package service

import (
	"strings"
)

// Browse filter vocabularies. These map directly to the review site's URL
// filter segments; membership checks replace any runtime registry.
var (
	browseCertifications = []string{"certified_fresh", "fresh", "rotten"}

	browseGenres = []string{
		"action", "adventure", "animation", "anime", "biography", "comedy",
		"crime", "documentary", "drama", "fantasy", "history", "horror",
		"music", "mystery", "romance", "sci_fi", "sport", "thriller",
		"war", "western",
	}

	browseAffiliates = []string{
		"netflix", "amazon_prime", "hulu", "max", "disney_plus",
		"paramount_plus", "apple_tv_plus", "peacock",
	}

	browseSorts = []string{
		"popular", "newest", "a_z", "critic_highest", "critic_lowest",
		"audience_highest", "audience_lowest",
	}

	browseTypes = []string{
		"movies_at_home", "movies_in_theaters", "movies_coming_soon",
	}

	browseAudienceRatings = []string{"upright", "spilled"}
)

// BrowseOptions returns all valid browse filter vocabularies.
func BrowseOptions() map[string][]string {
	return map[string][]string{
		"certifications":   browseCertifications,
		"genres":           browseGenres,
		"affiliates":       browseAffiliates,
		"sorts":            browseSorts,
		"types":            browseTypes,
		"audience_ratings": browseAudienceRatings,
	}
}

// BrowseFilters holds the browse query parameters. Empty fields are omitted
// from the canonical URL; Type defaults to movies_at_home.
type BrowseFilters struct {
	Certification string
	Genre         string
	Affiliate     string
	Sort          string
	Type          string
	Audience      string
}

// Validate checks every present filter against its vocabulary and reports
// the first unknown value, naming the offending parameter.
func (f BrowseFilters) Validate() error {
	checks := []struct {
		param string
		value string
		valid []string
	}{
		{"certification", f.Certification, browseCertifications},
		{"genre", f.Genre, browseGenres},
		{"affiliate", f.Affiliate, browseAffiliates},
		{"sort", f.Sort, browseSorts},
		{"type", f.Type, browseTypes},
		{"audience", f.Audience, browseAudienceRatings},
	}

	for _, c := range checks {
		if c.value == "" {
			continue
		}
		if !contains(c.valid, c.value) {
			return &InvalidFilterError{Param: c.param, Value: c.value, Valid: c.valid}
		}
	}
	return nil
}

// BrowseURL builds the canonical browse URL for the filters, e.g.
// {base}/browse/movies_at_home/critics:certified_fresh/genres:horror/sort:popular
func (f BrowseFilters) BrowseURL(baseURL string) string {
	browseType := f.Type
	if browseType == "" {
		browseType = "movies_at_home"
	}

	segments := []string{baseURL + "/browse/" + browseType}
	if f.Certification != "" {
		segments = append(segments, "critics:"+f.Certification)
	}
	if f.Audience != "" {
		segments = append(segments, "audience:"+f.Audience)
	}
	if f.Genre != "" {
		segments = append(segments, "genres:"+f.Genre)
	}
	if f.Affiliate != "" {
		segments = append(segments, "affiliates:"+f.Affiliate)
	}
	if f.Sort != "" {
		segments = append(segments, "sort:"+f.Sort)
	}

	return strings.Join(segments, "/")
}

func contains(values []string, v string) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}
	return false
}
