package service

// CuratedList is a hand-picked editorial guide exposed under a stable slug.
type CuratedList struct {
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"-"`
}

var curatedLists = []CuratedList{
	{
		Slug:        "best-horror",
		Title:       "Best Horror Movies",
		Description: "Top-rated horror films of all time",
		URL:         "https://editorial.rottentomatoes.com/guide/best-horror-movies-of-all-time/",
	},
	{
		Slug:        "best-2024",
		Title:       "Best Movies of 2024",
		Description: "The highest-rated films of 2024",
		URL:         "https://editorial.rottentomatoes.com/guide/the-best-movies-of-2024/",
	},
	{
		Slug:        "best-comedies",
		Title:       "Best Comedy Movies",
		Description: "Essential comedies ranked by critics",
		URL:         "https://editorial.rottentomatoes.com/guide/essential-comedy-movies/",
	},
	{
		Slug:        "best-action",
		Title:       "Best Action Movies",
		Description: "The greatest action films ever made",
		URL:         "https://editorial.rottentomatoes.com/guide/best-action-movies-of-all-time/",
	},
	{
		Slug:        "best-sci-fi",
		Title:       "Best Sci-Fi Movies",
		Description: "Top science fiction films ranked by critics",
		URL:         "https://editorial.rottentomatoes.com/guide/best-sci-fi-movies-of-all-time/",
	},
	{
		Slug:        "best-animated",
		Title:       "Best Animated Movies",
		Description: "The finest animated features of all time",
		URL:         "https://editorial.rottentomatoes.com/guide/best-animated-movies/",
	},
}

// AllCurated returns the curated list registry.
func AllCurated() []CuratedList {
	return curatedLists
}

// GetCurated looks up a curated list by slug.
func GetCurated(slug string) (*CuratedList, bool) {
	for i := range curatedLists {
		if curatedLists[i].Slug == slug {
			return &curatedLists[i], true
		}
	}
	return nil, false
}
