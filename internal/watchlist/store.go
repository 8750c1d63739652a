// Package watchlist owns the user's saved movies and their watched flags.
//
// Both collections live in a domain.KeyValueStore under two independent
// keys and are written through on every effective mutation. The invariant
// between them is that every watched ID is also a watchlist member, except
// after the watchlist key was found corrupt: the watched IDs are then kept
// as loaded so one bad key never blanks the other.
package watchlist

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Githaiga22/movie-hub/internal/domain"
)

// Storage keys
const (
	KeyWatchlist = "watchlist"
	KeyWatched   = "watched"
)

// ErrCorruptEntry is reported (never returned from a mutation) when a stored
// collection cannot be decoded at load time.
var ErrCorruptEntry = errors.New("corrupt stored collection")

// Listener receives the state after every effective mutation.
// It runs synchronously on the mutating goroutine and must not mutate the store.
type Listener func(Snapshot)

type subscription struct {
	id int
	fn Listener
}

// Store is the single source of truth for watchlist membership and watched status.
type Store struct {
	kv     domain.KeyValueStore
	logger *slog.Logger

	mu         sync.Mutex
	watchlist  []domain.Movie
	members    map[int]struct{}
	watched    []int
	watchedSet map[int]struct{}
	version    uint64
	loadErrs   []error
	closed     bool

	// notifyMu is taken before mu is released so listeners see mutations in order.
	// It also guards subs.
	notifyMu sync.Mutex
	subs     []subscription
	nextSub  int
}

// Open loads both collections from kv and returns a ready store.
// Load failures are logged and kept in LoadErrors; they never fail Open.
func Open(kv domain.KeyValueStore, logger *slog.Logger) (*Store, error) {
	if kv == nil {
		return nil, errors.New("watchlist: nil key-value store")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{
		kv:         kv,
		logger:     logger,
		watchlist:  []domain.Movie{},
		members:    make(map[int]struct{}),
		watched:    []int{},
		watchedSet: make(map[int]struct{}),
	}
	s.load()
	return s, nil
}

func (s *Store) load() {
	var movies []domain.Movie
	listOK := true
	if err := s.readKey(KeyWatchlist, &movies); err != nil {
		s.loadErrs = append(s.loadErrs, err)
		s.logger.Error("could not load watchlist, starting empty", "error", err)
		movies = nil
		listOK = false
	}
	for _, m := range movies {
		if _, dup := s.members[m.ID]; dup {
			s.logger.Warn("dropping duplicate watchlist entry", "id", m.ID)
			continue
		}
		s.members[m.ID] = struct{}{}
		s.watchlist = append(s.watchlist, m)
	}

	var ids []int
	if err := s.readKey(KeyWatched, &ids); err != nil {
		s.loadErrs = append(s.loadErrs, err)
		s.logger.Error("could not load watched set, starting empty", "error", err)
		ids = nil
	}
	for _, id := range ids {
		if _, dup := s.watchedSet[id]; dup {
			continue
		}
		// Orphans are only pruned against a watchlist that actually loaded
		if _, ok := s.members[id]; !ok && listOK {
			s.logger.Warn("dropping watched id not in watchlist", "id", id)
			continue
		}
		s.watchedSet[id] = struct{}{}
		s.watched = append(s.watched, id)
	}

	if !listOK && len(s.watched) > 0 {
		s.logger.Warn("keeping watched ids despite unreadable watchlist", "watched", len(s.watched))
	}
	s.logger.Info("watchlist loaded", "movies", len(s.watchlist), "watched", len(s.watched))
}

// readKey decodes the JSON value under key into dest. A missing key leaves
// dest untouched. An undecodable value is removed from storage.
func (s *Store) readKey(key string, dest any) error {
	raw, ok, err := s.kv.Get(key)
	if err != nil {
		return fmt.Errorf("reading %s: %w", key, err)
	}
	if !ok || raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		if rmErr := s.kv.Remove(key); rmErr != nil {
			s.logger.Error("failed to discard corrupt entry", "key", key, "error", rmErr)
		}
		return fmt.Errorf("%w %q: %v", ErrCorruptEntry, key, err)
	}
	return nil
}

// LoadErrors returns the failures encountered while loading, if any.
func (s *Store) LoadErrors() []error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]error(nil), s.loadErrs...)
}

// Close detaches all listeners; later mutations fail with domain.ErrStoreClosed.
// The underlying key-value store is owned by the caller and is not closed.
func (s *Store) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.notifyMu.Lock()
	s.subs = nil
	s.notifyMu.Unlock()
	return nil
}

// Subscribe registers fn for change notifications and returns its cancel func.
func (s *Store) Subscribe(fn Listener) (cancel func()) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.nextSub++
	id := s.nextSub
	s.subs = append(s.subs, subscription{id: id, fn: fn})

	return func() {
		s.notifyMu.Lock()
		defer s.notifyMu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// === Mutations ===

// AddMovie inserts m unless a movie with the same ID is already present.
func (s *Store) AddMovie(m domain.Movie) (Snapshot, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Snapshot{}, domain.ErrStoreClosed
	}
	if _, ok := s.members[m.ID]; ok {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, nil
	}

	s.watchlist = append(s.watchlist, m)
	s.members[m.ID] = struct{}{}
	s.logger.Debug("added to watchlist", "id", m.ID, "title", m.Title)
	return s.commitLocked(KeyWatchlist)
}

// RemoveMovie removes id from the watchlist and from the watched set.
func (s *Store) RemoveMovie(id int) (Snapshot, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Snapshot{}, domain.ErrStoreClosed
	}
	if _, ok := s.members[id]; !ok {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, nil
	}

	s.watchlist = removeMovie(s.watchlist, id)
	delete(s.members, id)
	s.watched = removeID(s.watched, id)
	delete(s.watchedSet, id)
	s.logger.Debug("removed from watchlist", "id", id)
	return s.commitLocked(KeyWatchlist, KeyWatched)
}

// MarkAsWatched flags id as watched. id must already be in the watchlist.
func (s *Store) MarkAsWatched(id int) (Snapshot, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Snapshot{}, domain.ErrStoreClosed
	}
	return s.markLocked(id)
}

// UnmarkAsWatched clears the watched flag for id.
func (s *Store) UnmarkAsWatched(id int) (Snapshot, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Snapshot{}, domain.ErrStoreClosed
	}
	return s.unmarkLocked(id)
}

// ToggleWatched flips the watched flag for id. Marking requires membership.
func (s *Store) ToggleWatched(id int) (Snapshot, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Snapshot{}, domain.ErrStoreClosed
	}
	if _, ok := s.watchedSet[id]; ok {
		return s.unmarkLocked(id)
	}
	return s.markLocked(id)
}

// ToggleSaved removes m if it is saved and adds it otherwise, under one lock.
// added reports which of the two happened.
func (s *Store) ToggleSaved(m domain.Movie) (snap Snapshot, added bool, err error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Snapshot{}, false, domain.ErrStoreClosed
	}
	if _, ok := s.members[m.ID]; ok {
		s.watchlist = removeMovie(s.watchlist, m.ID)
		delete(s.members, m.ID)
		keys := []string{KeyWatchlist}
		if _, ok := s.watchedSet[m.ID]; ok {
			s.watched = removeID(s.watched, m.ID)
			delete(s.watchedSet, m.ID)
			keys = append(keys, KeyWatched)
		}
		s.logger.Debug("removed from watchlist", "id", m.ID)
		snap, err = s.commitLocked(keys...)
		return snap, false, err
	}

	s.watchlist = append(s.watchlist, m)
	s.members[m.ID] = struct{}{}
	s.logger.Debug("added to watchlist", "id", m.ID, "title", m.Title)
	snap, err = s.commitLocked(KeyWatchlist)
	return snap, true, err
}

func (s *Store) markLocked(id int) (Snapshot, error) {
	if _, ok := s.watchedSet[id]; ok {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, nil
	}
	if _, ok := s.members[id]; !ok {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		s.logger.Error("refusing to mark movie watched: not in watchlist", "id", id)
		return snap, fmt.Errorf("mark watched %d: %w", id, domain.ErrNotInWatchlist)
	}

	s.watched = append(s.watched, id)
	s.watchedSet[id] = struct{}{}
	return s.commitLocked(KeyWatched)
}

func (s *Store) unmarkLocked(id int) (Snapshot, error) {
	if _, ok := s.watchedSet[id]; !ok {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, nil
	}

	s.watched = removeID(s.watched, id)
	delete(s.watchedSet, id)
	return s.commitLocked(KeyWatched)
}

// commitLocked writes the touched keys, then notifies listeners.
// Must be called with mu held; returns with mu released.
// A failed write keeps the in-memory change; the next successful write of
// that key catches up.
func (s *Store) commitLocked(keys ...string) (Snapshot, error) {
	var errs []error
	for _, key := range keys {
		if err := s.persistLocked(key); err != nil {
			s.logger.Error("failed to persist watchlist state", "key", key, "error", err)
			errs = append(errs, err)
		}
	}

	s.version++
	snap := s.snapshotLocked()

	s.notifyMu.Lock()
	s.mu.Unlock()
	for _, sub := range s.subs {
		sub.fn(snap)
	}
	s.notifyMu.Unlock()

	if len(errs) > 0 {
		return snap, fmt.Errorf("persisting watchlist: %w", errors.Join(errs...))
	}
	return snap, nil
}

func (s *Store) persistLocked(key string) error {
	var value any
	switch key {
	case KeyWatchlist:
		value = s.watchlist
	case KeyWatched:
		value = s.watched
	default:
		return fmt.Errorf("unknown key %q", key)
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.kv.Set(key, string(data))
}

// === Lookups ===

// IsMovieInWatchlist reports whether id is in the watchlist.
func (s *Store) IsMovieInWatchlist(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.members[id]
	return ok
}

// IsMovieWatched reports whether id is flagged as watched.
func (s *Store) IsMovieWatched(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.watchedSet[id]
	return ok
}

// Watchlist returns a copy of the saved movies in insertion order.
func (s *Store) Watchlist() []domain.Movie {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Movie(nil), s.watchlist...)
}

// Watched returns a copy of the watched IDs in the order they were marked.
func (s *Store) Watched() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.watched...)
}

// Snapshot returns the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	return newSnapshot(s.version, s.watchlist, s.watched)
}

func removeMovie(movies []domain.Movie, id int) []domain.Movie {
	out := make([]domain.Movie, 0, len(movies))
	for _, m := range movies {
		if m.ID != id {
			out = append(out, m)
		}
	}
	return out
}

func removeID(ids []int, id int) []int {
	out := make([]int, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
