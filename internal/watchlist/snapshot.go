package watchlist

import "github.com/Githaiga22/movie-hub/internal/domain"

// Snapshot is an immutable view of the store after a mutation.
// Version increases by one for every effective mutation.
type Snapshot struct {
	Version   uint64
	Watchlist []domain.Movie
	Watched   []int

	members map[int]struct{}
	watched map[int]struct{}
}

func newSnapshot(version uint64, movies []domain.Movie, watched []int) Snapshot {
	snap := Snapshot{
		Version:   version,
		Watchlist: append([]domain.Movie(nil), movies...),
		Watched:   append([]int(nil), watched...),
		members:   make(map[int]struct{}, len(movies)),
		watched:   make(map[int]struct{}, len(watched)),
	}
	for _, m := range movies {
		snap.members[m.ID] = struct{}{}
	}
	for _, id := range watched {
		snap.watched[id] = struct{}{}
	}
	return snap
}

// Contains reports whether id was in the watchlist at this snapshot.
func (s Snapshot) Contains(id int) bool {
	_, ok := s.members[id]
	return ok
}

// IsWatched reports whether id was flagged watched at this snapshot.
func (s Snapshot) IsWatched(id int) bool {
	_, ok := s.watched[id]
	return ok
}

// Len returns the number of saved movies.
func (s Snapshot) Len() int { return len(s.Watchlist) }
