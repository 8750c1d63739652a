// Package catalog maps list keys onto metadata queries and caches the
// slow-changing genre list.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Githaiga22/movie-hub/internal/domain"
)

// GenreTTL is how long a cached genre list is served before refetching
const GenreTTL = 24 * time.Hour

// genreCacheEntry is the persisted genre list
type genreCacheEntry struct {
	Genres    []domain.Genre `json:"genres"`
	FetchedAt time.Time      `json:"fetchedAt"`
}

// Service resolves list keys against the metadata client.
// It implements domain.PageFetcher.
type Service struct {
	client domain.MetadataClient
	kv     domain.KeyValueStore // optional, persists the genre list
	logger *slog.Logger
	now    func() time.Time

	mu     sync.Mutex
	genres *genreCacheEntry
}

var _ domain.PageFetcher = (*Service)(nil)

// NewService creates a catalog service. kv may be nil.
func NewService(client domain.MetadataClient, kv domain.KeyValueStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		client: client,
		kv:     kv,
		logger: logger,
		now:    time.Now,
	}
}

// FetchPage fetches one page of the list named by key
func (s *Service) FetchPage(ctx context.Context, key string, page int) (*domain.Page, error) {
	k, err := ParseKey(key)
	if err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}

	switch k.Kind {
	case KindTrending:
		return s.client.Trending(ctx, page)
	case KindCategory:
		return s.client.Category(ctx, k.Category, page)
	case KindGenre:
		return s.client.DiscoverGenre(ctx, k.GenreID, page)
	case KindSearch:
		if k.Query == "" {
			// Nothing to search for: a single empty page, no request
			return &domain.Page{Number: 1, Results: []domain.Movie{}, TotalPages: 1}, nil
		}
		return s.client.Search(ctx, k.Query, page)
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrInvalidKey, key)
}

// Details returns full details for a movie
func (s *Service) Details(ctx context.Context, movieID int) (*domain.MovieDetails, error) {
	d, err := s.client.Details(ctx, movieID)
	if err != nil {
		s.logger.Error("failed to load movie details", "movieID", movieID, "error", err)
		return nil, err
	}
	return d, nil
}

// Genres returns the genre list, served from memory or the KV store while
// younger than GenreTTL. When a refresh fails, a stale list is returned.
func (s *Service) Genres(ctx context.Context) ([]domain.Genre, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.genres == nil {
		s.genres = s.loadGenres()
	}
	if s.genres != nil && s.now().Sub(s.genres.FetchedAt) < GenreTTL {
		s.logger.Debug("cache hit", "key", cacheKeyGenres)
		return append([]domain.Genre(nil), s.genres.Genres...), nil
	}

	genres, err := s.client.Genres(ctx)
	if err != nil {
		if s.genres != nil {
			s.logger.Warn("genre refresh failed, serving stale list", "error", err)
			return append([]domain.Genre(nil), s.genres.Genres...), nil
		}
		s.logger.Error("failed to get genres", "error", err)
		return nil, err
	}

	s.genres = &genreCacheEntry{Genres: genres, FetchedAt: s.now()}
	s.saveGenres(s.genres)
	s.logger.Info("loaded genres", "count", len(genres))
	return append([]domain.Genre(nil), genres...), nil
}

// GenreName returns the cached name of a genre, or "" if unknown
func (s *Service) GenreName(id int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.genres == nil {
		return ""
	}
	for _, g := range s.genres.Genres {
		if g.ID == id {
			return g.Name
		}
	}
	return ""
}

// Title returns a display title for a list key
func (s *Service) Title(key string) string {
	k, err := ParseKey(key)
	if err != nil {
		return key
	}
	switch k.Kind {
	case KindTrending:
		return "Trending"
	case KindCategory:
		return CategoryTitles[k.Category]
	case KindGenre:
		if name := s.GenreName(k.GenreID); name != "" {
			return name
		}
		return fmt.Sprintf("Genre %d", k.GenreID)
	case KindSearch:
		return fmt.Sprintf("Search: %q", k.Query)
	}
	return key
}

func (s *Service) loadGenres() *genreCacheEntry {
	if s.kv == nil {
		return nil
	}
	raw, ok, err := s.kv.Get(cacheKeyGenres)
	if err != nil {
		s.logger.Warn("failed to read genre cache", "error", err)
		return nil
	}
	if !ok {
		return nil
	}
	var entry genreCacheEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		s.logger.Warn("discarding corrupt genre cache", "error", err)
		if err := s.kv.Remove(cacheKeyGenres); err != nil {
			s.logger.Warn("failed to remove genre cache", "error", err)
		}
		return nil
	}
	return &entry
}

func (s *Service) saveGenres(entry *genreCacheEntry) {
	if s.kv == nil {
		return
	}
	data, err := json.Marshal(entry)
	if err != nil {
		s.logger.Warn("failed to encode genre cache", "error", err)
		return
	}
	if err := s.kv.Set(cacheKeyGenres, string(data)); err != nil {
		s.logger.Warn("failed to write genre cache", "error", err)
	}
}
