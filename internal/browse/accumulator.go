// Package browse assembles infinite-scroll lists from a paginated source.
package browse

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Githaiga22/movie-hub/internal/domain"
	"github.com/google/uuid"
)

// DefaultThreshold is how close to the end of the list (in items) a
// near-end signal has to be before the next page is requested.
const DefaultThreshold = 5

// State is an immutable copy of an accumulator's state.
type State struct {
	Key       string
	Items     []domain.Movie
	NextPage  int
	HasMore   bool
	IsLoading bool
	Err       error // last fetch failure, cleared by the next success or Reset
}

// Request identifies one page fetch. It is handed back to Complete so the
// response can be matched against the accumulator's current key.
type Request struct {
	ID   uuid.UUID
	Key  string
	Page int

	generation uint64
}

// Accumulator owns a growing, duplicate-free, order-preserving list of movies
// fetched page by page for a single key at a time.
type Accumulator struct {
	fetcher domain.PageFetcher
	logger  *slog.Logger

	mu         sync.Mutex
	key        string
	generation uint64
	items      []domain.Movie
	index      map[int]int // movie ID → position in items
	nextPage   int
	hasMore    bool
	loading    bool
	lastErr    error
}

// New creates an accumulator with an empty key. Call Reset before fetching.
func New(fetcher domain.PageFetcher, logger *slog.Logger) *Accumulator {
	if logger == nil {
		logger = slog.Default()
	}
	a := &Accumulator{
		fetcher: fetcher,
		logger:  logger,
	}
	a.clearLocked()
	return a
}

func (a *Accumulator) clearLocked() {
	a.items = nil
	a.index = make(map[int]int)
	a.nextPage = 1
	a.hasMore = true
	a.loading = false
	a.lastErr = nil
}

// Reset switches the accumulator to key and clears its state.
// Responses to requests issued before the reset are ignored when they arrive.
func (a *Accumulator) Reset(key string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.generation++
	a.key = key
	a.clearLocked()
	a.logger.Debug("accumulator reset", "key", key, "generation", a.generation)
}

// Begin claims the single in-flight slot and returns the request to run.
// It returns false when a fetch is already in flight or no pages remain.
func (a *Accumulator) Begin() (Request, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.beginLocked()
}

func (a *Accumulator) beginLocked() (Request, bool) {
	if a.loading || !a.hasMore {
		return Request{}, false
	}
	a.loading = true
	req := Request{
		ID:         uuid.New(),
		Key:        a.key,
		Page:       a.nextPage,
		generation: a.generation,
	}
	a.logger.Debug("page requested", "request", req.ID, "key", req.Key, "page", req.Page)
	return req, true
}

// NearEnd is the consumer's "near the end of the list" signal. index is the
// last position the consumer can see. It begins a fetch when index is within
// threshold items of the end; while a fetch is in flight it does nothing.
// Because it is level-triggered, consumers should signal again after each
// page lands if the position is still near the end.
func (a *Accumulator) NearEnd(index, threshold int) (Request, bool) {
	if threshold < 0 {
		threshold = 0
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if index < len(a.items)-1-threshold {
		return Request{}, false
	}
	return a.beginLocked()
}

// Complete applies the outcome of req. It reports whether the response was
// applied; a response for a key or generation that is no longer current is
// dropped and leaves state untouched. A fetch error is returned wrapped.
func (a *Accumulator) Complete(req Request, page *domain.Page, fetchErr error) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if req.generation != a.generation || req.Key != a.key {
		a.logger.Debug("dropping stale page",
			"request", req.ID,
			"key", req.Key,
			"current", a.key,
			"page", req.Page,
		)
		return false, nil
	}

	a.loading = false

	if fetchErr == nil && page == nil {
		fetchErr = domain.ErrEmptyPage
	}
	if fetchErr != nil {
		// Items, nextPage and hasMore stay as they were so the next signal retries.
		a.lastErr = fmt.Errorf("loading page %d of %q: %w", req.Page, req.Key, fetchErr)
		a.logger.Warn("page fetch failed", "request", req.ID, "key", req.Key, "page", req.Page, "error", fetchErr)
		return true, a.lastErr
	}

	a.mergeLocked(page.Results)
	a.hasMore = page.HasMore()
	a.nextPage = req.Page + 1
	a.lastErr = nil

	a.logger.Debug("page merged",
		"request", req.ID,
		"key", req.Key,
		"page", page.Number,
		"totalPages", page.TotalPages,
		"items", len(a.items),
	)
	return true, nil
}

// mergeLocked appends unseen movies and overwrites seen ones in place.
func (a *Accumulator) mergeLocked(movies []domain.Movie) {
	for _, m := range movies {
		if pos, ok := a.index[m.ID]; ok {
			a.items[pos] = m
			continue
		}
		a.index[m.ID] = len(a.items)
		a.items = append(a.items, m)
	}
}

// RequestNextPage fetches and merges the next page synchronously.
// It is a no-op when a fetch is already in flight or no pages remain.
func (a *Accumulator) RequestNextPage(ctx context.Context) error {
	req, ok := a.Begin()
	if !ok {
		return nil
	}
	page, err := a.fetcher.FetchPage(ctx, req.Key, req.Page)
	_, err = a.Complete(req, page, err)
	return err
}

// Fetch runs req against the accumulator's fetcher without touching state.
// Event loops call it off the main goroutine and pass the result to Complete.
func (a *Accumulator) Fetch(ctx context.Context, req Request) (*domain.Page, error) {
	return a.fetcher.FetchPage(ctx, req.Key, req.Page)
}

// Snapshot returns a copy of the current state.
func (a *Accumulator) Snapshot() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return State{
		Key:       a.key,
		Items:     append([]domain.Movie(nil), a.items...),
		NextPage:  a.nextPage,
		HasMore:   a.hasMore,
		IsLoading: a.loading,
		Err:       a.lastErr,
	}
}
