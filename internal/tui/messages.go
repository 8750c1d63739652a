package tui

import (
	"github.com/Githaiga22/movie-hub/internal/browse"
	"github.com/Githaiga22/movie-hub/internal/domain"
	"github.com/Githaiga22/movie-hub/internal/watchlist"
)

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// PageLoadedMsg carries the outcome of one page fetch back to Update,
// where it is applied to the pane's accumulator
type PageLoadedMsg struct {
	Pane    PaneID
	Request browse.Request
	Page    *domain.Page
	Err     error
}

// GenresLoadedMsg signals that the genre list has been loaded
type GenresLoadedMsg struct {
	Genres []domain.Genre
}

// DetailsLoadedMsg carries the outcome of a details lookup
type DetailsLoadedMsg struct {
	MovieID int
	Details *domain.MovieDetails
	Err     error
}

// WatchlistChangedMsg delivers the store state after a mutation
type WatchlistChangedMsg struct {
	Snapshot watchlist.Snapshot
}

// StatusMsg shows a transient message in the footer
type StatusMsg struct {
	Text  string
	IsErr bool
}

// TickMsg is a general tick message for animations
type TickMsg struct{}

// ClearStatusMsg clears the status bar message
type ClearStatusMsg struct {
	Seq int
}
