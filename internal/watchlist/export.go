package watchlist

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/Githaiga22/movie-hub/internal/domain"
	"gopkg.in/yaml.v3"
)

// exportFile is the on-disk YAML layout for export/import
type exportFile struct {
	ExportedAt time.Time     `yaml:"exported_at"`
	Movies     []exportEntry `yaml:"movies"`
}

type exportEntry struct {
	domain.Movie `yaml:",inline"`
	Watched      bool `yaml:"watched"`
}

// ImportResult summarises an Import run
type ImportResult struct {
	Added   int
	Skipped int // already present
	Watched int // newly flagged watched
}

// Export writes the watchlist with watched flags as YAML.
func (s *Store) Export(w io.Writer) error {
	snap := s.Snapshot()

	doc := exportFile{
		ExportedAt: time.Now().UTC().Truncate(time.Second),
		Movies:     make([]exportEntry, 0, len(snap.Watchlist)),
	}
	for _, m := range snap.Watchlist {
		doc.Movies = append(doc.Movies, exportEntry{Movie: m, Watched: snap.IsWatched(m.ID)})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode watchlist: %w", err)
	}
	return enc.Close()
}

// Import merges a YAML export into the store. Existing entries are kept as-is;
// watched flags from the file are applied on top.
func (s *Store) Import(r io.Reader) (ImportResult, error) {
	var doc exportFile
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return ImportResult{}, fmt.Errorf("failed to parse watchlist file: %w", err)
	}

	var res ImportResult
	for _, e := range doc.Movies {
		if e.ID == 0 {
			continue
		}
		if s.IsMovieInWatchlist(e.ID) {
			res.Skipped++
		} else {
			if _, err := s.AddMovie(e.Movie); err != nil {
				return res, err
			}
			res.Added++
		}

		if e.Watched && !s.IsMovieWatched(e.ID) {
			if _, err := s.MarkAsWatched(e.ID); err != nil {
				return res, err
			}
			res.Watched++
		}
	}

	s.logger.Info("imported watchlist", "added", res.Added, "skipped", res.Skipped, "watched", res.Watched)
	return res, nil
}
