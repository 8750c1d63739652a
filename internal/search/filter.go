// Package search filters already-loaded movies and genres locally.
package search

import (
	"strings"
	"sync"

	"github.com/Githaiga22/movie-hub/internal/domain"
	"github.com/sahilm/fuzzy"
)

// Result is a filter hit with match metadata for highlighting
type Result struct {
	Movie          domain.Movie
	MatchedIndexes []int // Character positions that matched
	Score          int   // Higher is better
}

// MovieIndex implements sahilm/fuzzy.Source over a movie list
type MovieIndex struct {
	mu          sync.RWMutex
	movies      []domain.Movie
	lowerTitles []string
}

// String returns the lowercase title at index i (implements fuzzy.Source)
func (idx *MovieIndex) String(i int) string { return idx.lowerTitles[i] }

// Len returns the number of movies (implements fuzzy.Source)
func (idx *MovieIndex) Len() int { return len(idx.movies) }

// NewMovieIndex builds an index over movies
func NewMovieIndex(movies []domain.Movie) *MovieIndex {
	idx := &MovieIndex{}
	idx.Replace(movies)
	return idx
}

// Replace swaps the indexed movies
func (idx *MovieIndex) Replace(movies []domain.Movie) {
	lower := make([]string, len(movies))
	for i, m := range movies {
		lower[i] = strings.ToLower(m.Title)
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.movies = append([]domain.Movie(nil), movies...)
	idx.lowerTitles = lower
}

// Filter returns the movies whose titles fuzzy-match query, best first.
// An empty query returns every movie in index order.
func (idx *MovieIndex) Filter(query string) []Result {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		results := make([]Result, len(idx.movies))
		for i, m := range idx.movies {
			results[i] = Result{Movie: m}
		}
		return results
	}

	matches := fuzzy.FindFrom(query, idx)
	results := make([]Result, len(matches))
	for i, match := range matches {
		results[i] = Result{
			Movie:          idx.movies[match.Index],
			MatchedIndexes: match.MatchedIndexes,
			Score:          match.Score,
		}
	}
	return results
}
