package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Githaiga22/movie-hub/internal/domain"
)

// List key prefixes. A key names one paginated list; the accumulator resets
// whenever the key changes.
const (
	KeyTrending    = "trending"
	PrefixCategory = "category:"
	PrefixGenre    = "genre:"
	PrefixSearch   = "search:"
	cacheKeyGenres = "cache:genres"
)

// Curated categories served by /movie/{category}
const (
	NowPlaying = "now_playing"
	Popular    = "popular"
	TopRated   = "top_rated"
	Upcoming   = "upcoming"
)

// Categories lists the curated categories in display order
var Categories = []string{NowPlaying, Popular, TopRated, Upcoming}

// CategoryTitles maps a category to its tab title
var CategoryTitles = map[string]string{
	NowPlaying: "Now Playing",
	Popular:    "Popular",
	TopRated:   "Top Rated",
	Upcoming:   "Upcoming",
}

// ValidCategory reports whether c is a curated category
func ValidCategory(c string) bool {
	_, ok := CategoryTitles[c]
	return ok
}

// Kind is the list family a key belongs to
type Kind int

const (
	KindTrending Kind = iota
	KindCategory
	KindGenre
	KindSearch
)

// Key is a parsed list key
type Key struct {
	Kind     Kind
	Category string
	GenreID  int
	Query    string
}

// TrendingKey returns the key of the trending list
func TrendingKey() string { return KeyTrending }

// CategoryKey returns the key of a curated category list
func CategoryKey(category string) string { return PrefixCategory + category }

// GenreKey returns the key of a genre discovery list
func GenreKey(genreID int) string { return PrefixGenre + strconv.Itoa(genreID) }

// SearchKey returns the key of a title search. Surrounding whitespace is
// trimmed so that "alien" and " alien " share one list.
func SearchKey(query string) string { return PrefixSearch + strings.TrimSpace(query) }

// ParseKey parses a list key produced by one of the key constructors
func ParseKey(key string) (Key, error) {
	switch {
	case key == KeyTrending:
		return Key{Kind: KindTrending}, nil

	case strings.HasPrefix(key, PrefixCategory):
		c := strings.TrimPrefix(key, PrefixCategory)
		if !ValidCategory(c) {
			return Key{}, fmt.Errorf("%w: %q", domain.ErrInvalidCategory, c)
		}
		return Key{Kind: KindCategory, Category: c}, nil

	case strings.HasPrefix(key, PrefixGenre):
		id, err := strconv.Atoi(strings.TrimPrefix(key, PrefixGenre))
		if err != nil || id <= 0 {
			return Key{}, fmt.Errorf("%w: %q", domain.ErrInvalidKey, key)
		}
		return Key{Kind: KindGenre, GenreID: id}, nil

	case strings.HasPrefix(key, PrefixSearch):
		return Key{Kind: KindSearch, Query: strings.TrimSpace(strings.TrimPrefix(key, PrefixSearch))}, nil
	}
	return Key{}, fmt.Errorf("%w: %q", domain.ErrInvalidKey, key)
}
