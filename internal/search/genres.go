package search

import (
	"sort"
	"strings"

	"github.com/Githaiga22/movie-hub/internal/domain"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// MatchGenres ranks genres against query: exact, then prefix, then
// substring, then fuzzy matches by edit distance.
func MatchGenres(query string, genres []domain.Genre) []domain.Genre {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return append([]domain.Genre(nil), genres...)
	}

	type ranked struct {
		genre domain.Genre
		score int
	}
	var hits []ranked
	for _, g := range genres {
		name := strings.ToLower(g.Name)
		if !fuzzy.MatchFold(query, name) {
			continue
		}
		hits = append(hits, ranked{genre: g, score: matchScore(name, query)})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].score < hits[j].score
	})

	out := make([]domain.Genre, len(hits))
	for i, h := range hits {
		out[i] = h.genre
	}
	return out
}

// matchScore ranks a match. Lower is better.
func matchScore(name, query string) int {
	switch {
	case name == query:
		return 0
	case strings.HasPrefix(name, query):
		return 10
	case strings.Contains(name, query):
		return 50
	}
	return 100 + fuzzy.LevenshteinDistance(query, name)
}
