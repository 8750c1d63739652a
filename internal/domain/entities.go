package domain

import (
	"fmt"
	"strconv"
)

// Movie is a single catalog entry as returned by the metadata service.
// Identity is ID; the value is never mutated after it is fetched.
type Movie struct {
	ID          int     `json:"id" yaml:"id"`
	Title       string  `json:"title" yaml:"title"`
	PosterPath  string  `json:"poster_path" yaml:"poster_path,omitempty"`   // empty when the service has no poster
	ReleaseDate string  `json:"release_date" yaml:"release_date,omitempty"` // ISO date or empty
	VoteAverage float64 `json:"vote_average" yaml:"vote_average"`
}

// Year returns the release year, or 0 if the release date is unknown
func (m Movie) Year() int {
	if len(m.ReleaseDate) < 4 {
		return 0
	}
	y, err := strconv.Atoi(m.ReleaseDate[:4])
	if err != nil {
		return 0
	}
	return y
}

// Description returns secondary info for list rendering (e.g., "2024  ★ 7.3")
func (m Movie) Description() string {
	if y := m.Year(); y > 0 {
		return fmt.Sprintf("%d  ★ %.1f", y, m.VoteAverage)
	}
	return fmt.Sprintf("★ %.1f", m.VoteAverage)
}

// Page is one response of a paginated list endpoint.
type Page struct {
	Number       int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

// HasMore reports whether pages after this one exist
func (p Page) HasMore() bool {
	return p.Number < p.TotalPages
}

// Genre is a metadata genre (e.g., 28 "Action")
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// CastMember is one credited actor
type CastMember struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character"`
	ProfilePath string `json:"profile_path"`
}

// Rating is a third-party score (e.g., "Rotten Tomatoes" → "91%")
type Rating struct {
	Source string
	Value  string
}

// MovieDetails merges the primary metadata record with credits and
// the optional ratings/awards lookup.
type MovieDetails struct {
	Movie
	IMDbID   string
	Overview string
	Tagline  string
	Runtime  int // minutes
	Genres   []Genre
	Cast     []CastMember

	// Ratings/awards source; empty when unavailable
	Rated   string
	Awards  string
	Plot    string
	Ratings []Rating
}

// FormattedRuntime returns the runtime in a human-readable format
func (d MovieDetails) FormattedRuntime() string {
	if d.Runtime <= 0 {
		return ""
	}
	h := d.Runtime / 60
	mins := d.Runtime % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, mins)
	}
	return fmt.Sprintf("%dm", mins)
}

// HasRatings reports whether the ratings/awards lookup contributed anything
func (d MovieDetails) HasRatings() bool {
	return d.Rated != "" || d.Awards != "" || len(d.Ratings) > 0
}
