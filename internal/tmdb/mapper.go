package tmdb

import (
	"strings"

	"github.com/Githaiga22/movie-hub/internal/domain"
)

// maxCast caps the cast list carried into details
const maxCast = 15

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// MapMovie converts a list entry to a domain movie
func MapMovie(dto MovieDTO) domain.Movie {
	return domain.Movie{
		ID:          dto.ID,
		Title:       strings.TrimSpace(dto.Title),
		PosterPath:  deref(dto.PosterPath),
		ReleaseDate: deref(dto.ReleaseDate),
		VoteAverage: dto.VoteAverage,
	}
}

// MapPage converts a paged response to a domain page
func MapPage(resp PageResponse) *domain.Page {
	results := make([]domain.Movie, 0, len(resp.Results))
	for _, r := range resp.Results {
		results = append(results, MapMovie(r))
	}
	return &domain.Page{
		Number:       resp.Page,
		Results:      results,
		TotalPages:   resp.TotalPages,
		TotalResults: resp.TotalResults,
	}
}

// MapGenres converts genre entries
func MapGenres(dtos []GenreDTO) []domain.Genre {
	genres := make([]domain.Genre, 0, len(dtos))
	for _, g := range dtos {
		genres = append(genres, domain.Genre{ID: g.ID, Name: g.Name})
	}
	return genres
}

// MapDetails converts a details response (with credits) to domain details
func MapDetails(dto DetailsDTO) *domain.MovieDetails {
	d := &domain.MovieDetails{
		Movie:    MapMovie(dto.MovieDTO),
		IMDbID:   dto.IMDbID,
		Overview: dto.Overview,
		Tagline:  dto.Tagline,
		Runtime:  dto.Runtime,
		Genres:   MapGenres(dto.Genres),
	}
	if dto.Credits != nil {
		for i, c := range dto.Credits.Cast {
			if i >= maxCast {
				break
			}
			d.Cast = append(d.Cast, domain.CastMember{
				ID:          c.ID,
				Name:        c.Name,
				Character:   c.Character,
				ProfilePath: deref(c.ProfilePath),
			})
		}
	}
	return d
}

// ApplyOMDB merges ratings/awards into details. "N/A" values are dropped.
func ApplyOMDB(d *domain.MovieDetails, o OMDBResponse) {
	d.Rated = omdbValue(o.Rated)
	d.Awards = omdbValue(o.Awards)
	d.Plot = omdbValue(o.Plot)
	d.Ratings = nil
	for _, r := range o.Ratings {
		if v := omdbValue(r.Value); v != "" {
			d.Ratings = append(d.Ratings, domain.Rating{Source: r.Source, Value: v})
		}
	}
}

func omdbValue(s string) string {
	s = strings.TrimSpace(s)
	if s == "N/A" {
		return ""
	}
	return s
}
