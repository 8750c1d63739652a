package tui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Githaiga22/movie-hub/internal/catalog"
	"github.com/Githaiga22/movie-hub/internal/domain"
	"github.com/Githaiga22/movie-hub/internal/store"
	"github.com/Githaiga22/movie-hub/internal/tui/styles"
	"github.com/Githaiga22/movie-hub/internal/watchlist"
)

// fakeClient serves three pages of three movies for every list
type fakeClient struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeClient) record(call string, page int) *domain.Page {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fmt.Sprintf("%s#%d", call, page))
	p := &domain.Page{Number: page, TotalPages: 3}
	for i := 1; i <= 3; i++ {
		id := page*10 + i
		p.Results = append(p.Results, domain.Movie{ID: id, Title: fmt.Sprintf("%s %d", call, id)})
	}
	return p
}

func (f *fakeClient) Trending(_ context.Context, page int) (*domain.Page, error) {
	return f.record("trending", page), nil
}

func (f *fakeClient) Category(_ context.Context, c string, page int) (*domain.Page, error) {
	return f.record(c, page), nil
}

func (f *fakeClient) DiscoverGenre(_ context.Context, id, page int) (*domain.Page, error) {
	return f.record(fmt.Sprintf("genre %d", id), page), nil
}

func (f *fakeClient) Search(_ context.Context, q string, page int) (*domain.Page, error) {
	return f.record("search "+q, page), nil
}

func (f *fakeClient) Genres(context.Context) ([]domain.Genre, error) {
	return []domain.Genre{{ID: 28, Name: "Action"}, {ID: 35, Name: "Comedy"}}, nil
}

func (f *fakeClient) Details(_ context.Context, id int) (*domain.MovieDetails, error) {
	return &domain.MovieDetails{Movie: domain.Movie{ID: id, Title: "details"}, Overview: "plot"}, nil
}

func (f *fakeClient) callList() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func newTestModel(t *testing.T) (Model, *fakeClient, *watchlist.Store) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	kv, err := store.Open(store.BackendMemory, "")
	require.NoError(t, err)
	wl, err := watchlist.Open(kv, logger)
	require.NoError(t, err)

	client := &fakeClient{}
	m := NewModel(catalog.NewService(client, nil, logger), wl, Options{Logger: logger})
	t.Cleanup(func() {
		m.Close()
		wl.Close()
		kv.Close()
	})
	return m, client, wl
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func runPage(t *testing.T, cmd tea.Cmd) PageLoadedMsg {
	t.Helper()
	require.NotNil(t, cmd, "expected a page fetch")
	msg, ok := cmd().(PageLoadedMsg)
	require.True(t, ok, "expected PageLoadedMsg")
	return msg
}

func TestModel_LoadsPagesUntilScreenIsFull(t *testing.T) {
	m, client, _ := newTestModel(t)

	m, cmd := update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	assert.True(t, m.panes[PaneBrowse].state.IsLoading)

	m, cmd = update(t, m, runPage(t, cmd))
	assert.Len(t, m.panes[PaneBrowse].state.Items, 3)

	// Three rows are far from filling the screen, so the next page follows
	m, cmd = update(t, m, runPage(t, cmd))
	m, cmd = update(t, m, runPage(t, cmd))
	st := m.panes[PaneBrowse].state
	assert.Len(t, st.Items, 9)
	assert.False(t, st.HasMore)
	assert.Nil(t, cmd, "no fetch after the last page")
	assert.Equal(t, []string{"trending#1", "trending#2", "trending#3"}, client.callList())
}

func TestModel_TabSwitchDropsStaleResponse(t *testing.T) {
	m, _, _ := newTestModel(t)

	m, trendingCmd := update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	m, nowPlayingCmd := update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, catalog.CategoryKey(catalog.NowPlaying), m.panes[PaneBrowse].state.Key)

	m, cmd := update(t, m, runPage(t, trendingCmd))
	assert.Nil(t, cmd)
	assert.Empty(t, m.panes[PaneBrowse].state.Items, "trending page must not land in now playing")
	assert.True(t, m.panes[PaneBrowse].state.IsLoading)

	m, _ = update(t, m, runPage(t, nowPlayingCmd))
	items := m.panes[PaneBrowse].state.Items
	require.Len(t, items, 3)
	assert.Equal(t, "now_playing 11", items[0].Title)
}

func TestModel_StartKeySelectsTab(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	kv, err := store.Open(store.BackendMemory, "")
	require.NoError(t, err)
	defer kv.Close()
	wl, err := watchlist.Open(kv, logger)
	require.NoError(t, err)
	defer wl.Close()

	m := NewModel(catalog.NewService(&fakeClient{}, nil, logger), wl, Options{
		StartKey: catalog.CategoryKey(catalog.TopRated),
		Logger:   logger,
	})
	defer m.Close()
	assert.Equal(t, catalog.CategoryKey(catalog.TopRated), m.tabs[m.tab])
	assert.Equal(t, catalog.CategoryKey(catalog.TopRated), m.panes[PaneBrowse].state.Key)
}

func TestModel_AddToWatchlistFlowsThroughObserver(t *testing.T) {
	m, _, wl := newTestModel(t)
	m, cmd := update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	m, _ = update(t, m, runPage(t, cmd))

	// The store is updated before Update returns
	m, cmd = update(t, m, keyRunes("a"))
	require.NotNil(t, cmd)
	assert.True(t, wl.IsMovieInWatchlist(11))
	assert.Contains(t, m.status, "Added")

	m, next := update(t, m, ListenWatchlistCmd(m.observer.Updates())())
	assert.NotNil(t, next, "listener is re-armed")
	assert.True(t, m.snap.Contains(11))
	assert.Len(t, m.wlResults, 1)

	// Toggle watched, then remove again with the same key
	m, _ = update(t, m, keyRunes("w"))
	assert.True(t, wl.IsMovieWatched(11))
	assert.Contains(t, m.status, "as watched")

	m, _ = update(t, m, keyRunes("a"))
	assert.False(t, wl.IsMovieInWatchlist(11))
	assert.False(t, wl.IsMovieWatched(11), "removal clears the watched flag")
	assert.Contains(t, m.status, "Removed")
}

func TestModel_DoubleSavePressRemovesAgain(t *testing.T) {
	m, _, wl := newTestModel(t)
	m, cmd := update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	m, _ = update(t, m, runPage(t, cmd))

	// No snapshot is delivered between the presses
	m, _ = update(t, m, keyRunes("a"))
	m, _ = update(t, m, keyRunes("a"))

	assert.False(t, wl.IsMovieInWatchlist(11))
	assert.Empty(t, wl.Watchlist())
	assert.Contains(t, m.status, "Removed")
	assert.False(t, m.statusIsErr)
}

func TestModel_WatchedRequiresSavedMovie(t *testing.T) {
	m, _, wl := newTestModel(t)
	m, cmd := update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	m, _ = update(t, m, runPage(t, cmd))

	m, _ = update(t, m, keyRunes("w"))
	assert.True(t, m.statusIsErr)
	assert.Contains(t, m.status, "Add the movie to your watchlist")
	assert.False(t, wl.IsMovieWatched(11))
}

func TestModel_ClosedWatchlistReportsError(t *testing.T) {
	m, _, wl := newTestModel(t)
	m, cmd := update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	m, _ = update(t, m, runPage(t, cmd))
	require.NoError(t, wl.Close())

	m, _ = update(t, m, keyRunes("a"))
	assert.True(t, m.statusIsErr)
	assert.Contains(t, m.status, domain.ErrStoreClosed.Error())
}

func TestModel_SearchSubmitResetsSearchList(t *testing.T) {
	m, client, _ := newTestModel(t)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})

	m, _ = update(t, m, keyRunes("/"))
	require.Equal(t, ScreenSearch, m.screen)
	require.True(t, m.searchFocused)

	m, _ = update(t, m, keyRunes("alien"))
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.searchFocused)
	assert.Equal(t, catalog.SearchKey("alien"), m.panes[PaneSearch].state.Key)

	m, _ = update(t, m, runPage(t, cmd))
	assert.Len(t, m.panes[PaneSearch].state.Items, 3)
	assert.Contains(t, client.callList(), "search alien#1")
}

func TestModel_EmptySearchMakesNoRequest(t *testing.T) {
	m, client, _ := newTestModel(t)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	before := len(client.callList())

	m, _ = update(t, m, keyRunes("/"))
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = update(t, m, runPage(t, cmd))

	st := m.panes[PaneSearch].state
	assert.Empty(t, st.Items)
	assert.False(t, st.HasMore)
	assert.Len(t, client.callList(), before)
	assert.Contains(t, m.View(), "No movies found")
}

func TestModel_GenrePickerOpensGenreList(t *testing.T) {
	m, client, _ := newTestModel(t)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})

	m, _ = update(t, m, keyRunes("g"))
	require.Equal(t, ScreenGenres, m.screen)
	genres, err := m.Catalog.Genres(context.Background())
	require.NoError(t, err)
	m, _ = update(t, m, GenresLoadedMsg{Genres: genres})

	m, _ = update(t, m, keyRunes("com"))
	require.Len(t, m.genreMatches, 1)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, m.genrePicked)
	m, _ = update(t, m, runPage(t, cmd))
	assert.Contains(t, client.callList(), "genre 35#1")
	assert.Contains(t, m.View(), "Comedy")
}

func TestModel_DetailsIgnoresOtherMovie(t *testing.T) {
	m, _, _ := newTestModel(t)
	m, cmd := update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	m, _ = update(t, m, runPage(t, cmd))

	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, ScreenDetails, m.screen)
	assert.True(t, m.detailsLoading)

	m, _ = update(t, m, DetailsLoadedMsg{MovieID: 999, Details: &domain.MovieDetails{}})
	assert.True(t, m.detailsLoading, "late details for another movie are ignored")

	m, _ = update(t, m, cmd())
	assert.False(t, m.detailsLoading)
	assert.Equal(t, "plot", m.details.Overview)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ScreenBrowse, m.screen)
}

func TestModel_WatchlistFilter(t *testing.T) {
	m, _, wl := newTestModel(t)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	_, err := wl.AddMovie(domain.Movie{ID: 1, Title: "Alien"})
	require.NoError(t, err)
	_, err = wl.AddMovie(domain.Movie{ID: 2, Title: "Heat"})
	require.NoError(t, err)
	m, _ = update(t, m, WatchlistChangedMsg{Snapshot: wl.Snapshot()})

	m, _ = update(t, m, keyRunes("l"))
	require.Equal(t, ScreenWatchlist, m.screen)
	assert.Len(t, m.wlResults, 2)

	m, _ = update(t, m, keyRunes("/"))
	m, _ = update(t, m, keyRunes("hea"))
	require.Len(t, m.wlResults, 1)
	assert.Equal(t, "Heat", m.wlResults[0].Movie.Title)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Len(t, m.wlResults, 2, "esc clears the filter")
}

func TestModel_OlderSnapshotIgnored(t *testing.T) {
	m, _, wl := newTestModel(t)
	old := wl.Snapshot()
	_, err := wl.AddMovie(domain.Movie{ID: 1, Title: "Alien"})
	require.NoError(t, err)

	m, _ = update(t, m, WatchlistChangedMsg{Snapshot: wl.Snapshot()})
	m, _ = update(t, m, WatchlistChangedMsg{Snapshot: old})
	assert.True(t, m.snap.Contains(1))
}

func TestChannelObserver_KeepsLatest(t *testing.T) {
	kv, err := store.Open(store.BackendMemory, "")
	require.NoError(t, err)
	defer kv.Close()
	wl, err := watchlist.Open(kv, nil)
	require.NoError(t, err)
	defer wl.Close()

	o := NewChannelObserver()
	cancel := o.Attach(wl)
	defer cancel()

	_, _ = wl.AddMovie(domain.Movie{ID: 1})
	_, _ = wl.AddMovie(domain.Movie{ID: 2})
	_, _ = wl.AddMovie(domain.Movie{ID: 3})

	snap := <-o.Updates()
	assert.Equal(t, 3, snap.Len(), "unread snapshots are replaced by the newest")
	select {
	case <-o.Updates():
		t.Fatal("only one snapshot should be pending")
	default:
	}
}

func TestListCursor(t *testing.T) {
	var c listCursor
	c.move(5, 20, 4)
	assert.Equal(t, 5, c.pos)
	assert.Equal(t, 2, c.offset)
	assert.Equal(t, 5, c.lastVisible(20, 4))

	c.jump(100, 20, 4)
	assert.Equal(t, 19, c.pos)
	assert.Equal(t, 16, c.offset)

	c.clamp(3, 4)
	assert.Equal(t, 2, c.pos)
	assert.Equal(t, 0, c.offset)

	var empty listCursor
	assert.Equal(t, -1, empty.lastVisible(0, 10))
}

type fakeOpener struct{ urls []string }

func (f *fakeOpener) Launch(url string) error {
	f.urls = append(f.urls, url)
	return nil
}

func TestModel_OpenInBrowser(t *testing.T) {
	m, _, _ := newTestModel(t)
	opener := &fakeOpener{}
	m.opener = opener
	m, cmd := update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	m, _ = update(t, m, runPage(t, cmd))

	m, cmd = update(t, m, keyRunes("o"))
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	assert.Equal(t, []string{"https://www.themoviedb.org/movie/11"}, opener.urls)
	assert.Contains(t, m.status, "Opened")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = update(t, m, DetailsLoadedMsg{MovieID: 11, Details: &domain.MovieDetails{IMDbID: "tt0000011"}})
	_, cmd = update(t, m, keyRunes("o"))
	cmd()
	assert.Equal(t, "https://www.imdb.com/title/tt0000011/", opener.urls[1])
}

func TestModel_OpenWithoutBrowser(t *testing.T) {
	m, _, _ := newTestModel(t)
	m, cmd := update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	m, _ = update(t, m, runPage(t, cmd))

	m, _ = update(t, m, keyRunes("o"))
	assert.True(t, m.statusIsErr)
}

func TestRowMarker(t *testing.T) {
	assert.Equal(t, " ", RowMarker(false, false))
	assert.Equal(t, styles.SavedChar, RowMarker(true, false))
	assert.Equal(t, styles.WatchedChar, RowMarker(true, true))
}

func TestModel_InputPromptsUseAccent(t *testing.T) {
	m, _, _ := newTestModel(t)
	for name, in := range map[string]textinput.Model{
		"search": m.searchInput,
		"genre":  m.genreInput,
		"filter": m.wlFilter,
	} {
		assert.Equal(t, styles.Accent, in.PromptStyle.GetForeground(), name)
		assert.True(t, in.PromptStyle.GetBold(), name)
	}
}
