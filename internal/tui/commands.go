package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Githaiga22/movie-hub/internal/browse"
	"github.com/Githaiga22/movie-hub/internal/catalog"
	"github.com/Githaiga22/movie-hub/internal/watchlist"
)

// Command factories for async operations

const (
	pageTimeout    = 30 * time.Second
	genresTimeout  = 15 * time.Second
	detailsTimeout = 30 * time.Second
)

// FetchPageCmd runs one accumulator request off the event loop. The result
// is applied by Update via Complete.
func FetchPageCmd(pane PaneID, acc *browse.Accumulator, req browse.Request) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), pageTimeout)
		defer cancel()

		page, err := acc.Fetch(ctx, req)
		return PageLoadedMsg{Pane: pane, Request: req, Page: page, Err: err}
	}
}

// LoadGenresCmd loads the genre list
func LoadGenresCmd(svc *catalog.Service) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), genresTimeout)
		defer cancel()

		genres, err := svc.Genres(ctx)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading genres"}
		}
		return GenresLoadedMsg{Genres: genres}
	}
}

// LoadDetailsCmd loads full details for a movie
func LoadDetailsCmd(svc *catalog.Service, movieID int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), detailsTimeout)
		defer cancel()

		details, err := svc.Details(ctx, movieID)
		return DetailsLoadedMsg{MovieID: movieID, Details: details, Err: err}
	}
}

// ListenWatchlistCmd waits for the next watchlist snapshot. Update re-issues
// it after every WatchlistChangedMsg.
func ListenWatchlistCmd(updates <-chan watchlist.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-updates
		if !ok {
			return nil
		}
		return WatchlistChangedMsg{Snapshot: snap}
	}
}

// OpenURLCmd opens url in the browser
func OpenURLCmd(opener URLOpener, url string) tea.Cmd {
	return func() tea.Msg {
		if err := opener.Launch(url); err != nil {
			return ErrMsg{Err: err, Context: "open"}
		}
		return StatusMsg{Text: "Opened " + url}
	}
}

// TickCmd returns a command that sends a tick after a delay
func TickCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return TickMsg{}
	})
}

// ClearStatusCmd returns a command that clears status after a delay
func ClearStatusCmd(seq int, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return ClearStatusMsg{Seq: seq}
	})
}
