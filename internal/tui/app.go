package tui

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Githaiga22/movie-hub/internal/browse"
	"github.com/Githaiga22/movie-hub/internal/catalog"
	"github.com/Githaiga22/movie-hub/internal/domain"
	"github.com/Githaiga22/movie-hub/internal/launcher"
	"github.com/Githaiga22/movie-hub/internal/search"
	"github.com/Githaiga22/movie-hub/internal/tui/styles"
	"github.com/Githaiga22/movie-hub/internal/watchlist"
)

// Screen is the top-level view being shown
type Screen int

const (
	ScreenBrowse Screen = iota
	ScreenSearch
	ScreenGenres
	ScreenDetails
	ScreenWatchlist
	ScreenHelp
)

const (
	tickInterval   = 100 * time.Millisecond
	statusDuration = 4 * time.Second

	// Header line, its margin, footer line and the input/title line
	chromeHeight = 5
)

// URLOpener opens a URL outside the terminal
type URLOpener interface {
	Launch(url string) error
}

// Options configures the application model
type Options struct {
	StartKey     string // list key of the first browse tab to show
	Threshold    int    // near-end distance that triggers the next page
	ImageBaseURL string
	Opener       URLOpener // nil disables opening movie pages
	Logger       *slog.Logger
}

// Model is the main Bubble Tea model for the application
type Model struct {
	// Services
	Catalog   *catalog.Service
	Watchlist *watchlist.Store

	observer    *ChannelObserver
	unsubscribe func()
	opener      URLOpener
	logger      *slog.Logger

	screen     Screen
	prevScreen Screen

	// Browse tabs: trending plus the curated categories
	tabs []string
	tab  int

	panes     map[PaneID]*pane
	threshold int

	searchInput   textinput.Model
	searchFocused bool

	genres       []domain.Genre
	genreInput   textinput.Model
	genreMatches []domain.Genre
	genreCursor  listCursor
	genrePicked  bool

	snap        watchlist.Snapshot
	wlIndex     *search.MovieIndex
	wlResults   []search.Result
	wlFilter    textinput.Model
	wlFiltering bool
	wlCursor    listCursor

	detailsMovie   domain.Movie
	details        *domain.MovieDetails
	detailsErr     error
	detailsLoading bool
	imageBaseURL   string

	status      string
	statusIsErr bool
	statusSeq   int

	width        int
	height       int
	ready        bool
	spinnerFrame int
}

// NewModel creates a new application model and subscribes it to the
// watchlist. Call Close when the program exits.
func NewModel(svc *catalog.Service, store *watchlist.Store, opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Threshold <= 0 {
		opts.Threshold = browse.DefaultThreshold
	}

	tabs := []string{catalog.TrendingKey()}
	for _, c := range catalog.Categories {
		tabs = append(tabs, catalog.CategoryKey(c))
	}
	tab := 0
	for i, k := range tabs {
		if k == opts.StartKey {
			tab = i
		}
	}

	panes := map[PaneID]*pane{
		PaneBrowse: newPane(PaneBrowse, browse.New(svc, logger.With("pane", "browse"))),
		PaneSearch: newPane(PaneSearch, browse.New(svc, logger.With("pane", "search"))),
		PaneGenre:  newPane(PaneGenre, browse.New(svc, logger.With("pane", "genre"))),
	}
	panes[PaneBrowse].reset(tabs[tab])

	searchInput := textinput.New()
	searchInput.Placeholder = "Search movies by title"
	searchInput.Prompt = "Search: "
	searchInput.PromptStyle = styles.PromptStyle
	searchInput.CharLimit = 100

	genreInput := textinput.New()
	genreInput.Placeholder = "Type to filter genres"
	genreInput.Prompt = "Genre: "
	genreInput.PromptStyle = styles.PromptStyle
	genreInput.CharLimit = 40

	wlFilter := textinput.New()
	wlFilter.Placeholder = "Filter watchlist"
	wlFilter.Prompt = "/"
	wlFilter.PromptStyle = styles.PromptStyle
	wlFilter.CharLimit = 100

	observer := NewChannelObserver()
	snap := store.Snapshot()
	wlIndex := search.NewMovieIndex(snap.Watchlist)

	return Model{
		Catalog:      svc,
		Watchlist:    store,
		observer:     observer,
		unsubscribe:  observer.Attach(store),
		opener:       opts.Opener,
		logger:       logger,
		screen:       ScreenBrowse,
		tabs:         tabs,
		tab:          tab,
		panes:        panes,
		threshold:    opts.Threshold,
		searchInput:  searchInput,
		genreInput:   genreInput,
		snap:         snap,
		wlIndex:      wlIndex,
		wlResults:    wlIndex.Filter(""),
		wlFilter:     wlFilter,
		imageBaseURL: opts.ImageBaseURL,
	}
}

// Close cancels the watchlist subscription
func (m Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// Init starts the first page load and the background listeners
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.signal(m.panes[PaneBrowse]),
		ListenWatchlistCmd(m.observer.Updates()),
		LoadGenresCmd(m.Catalog),
		TickCmd(tickInterval),
	)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.updateLayout()
		if p := m.activePane(); p != nil {
			return m, m.signal(p)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case TickMsg:
		m.spinnerFrame++
		return m, TickCmd(tickInterval)

	case PageLoadedMsg:
		return m.handlePageLoaded(msg)

	case GenresLoadedMsg:
		m.genres = msg.Genres
		m.refilterGenres()
		return m, nil

	case DetailsLoadedMsg:
		if msg.MovieID != m.detailsMovie.ID {
			return m, nil
		}
		m.detailsLoading = false
		m.details = msg.Details
		m.detailsErr = msg.Err
		return m, nil

	case WatchlistChangedMsg:
		m.applySnapshot(msg.Snapshot)
		return m, ListenWatchlistCmd(m.observer.Updates())

	case StatusMsg:
		cmd := m.setStatus(msg.Text, msg.IsErr)
		return m, cmd

	case ErrMsg:
		m.logger.Error("command failed", "context", msg.Context, "error", msg.Err)
		cmd := m.setStatus(msg.Error(), true)
		return m, cmd

	case ClearStatusMsg:
		if msg.Seq == m.statusSeq {
			m.status = ""
			m.statusIsErr = false
		}
		return m, nil
	}

	return m, nil
}

// handlePageLoaded applies a page to its accumulator. Responses for a key
// the pane has moved away from are dropped by Complete.
func (m Model) handlePageLoaded(msg PageLoadedMsg) (tea.Model, tea.Cmd) {
	p, ok := m.panes[msg.Pane]
	if !ok {
		return m, nil
	}

	applied, err := p.acc.Complete(msg.Request, msg.Page, msg.Err)
	p.refresh(m.listRows())
	if !applied {
		return m, nil
	}
	if err != nil {
		cmd := m.setStatus("Couldn't load movies: "+err.Error()+" (r to retry)", true)
		return m, cmd
	}

	// Level-triggered: the visible window may still be near the end
	if p == m.activePane() {
		return m, m.signal(p)
	}
	return m, nil
}

// signal sends the pane's near-end signal and returns the fetch to run, if any
func (m Model) signal(p *pane) tea.Cmd {
	req, ok := p.nearEnd(m.listRows(), m.threshold)
	p.state = p.acc.Snapshot()
	if !ok {
		return nil
	}
	return FetchPageCmd(p.id, p.acc, req)
}

// activePane returns the paginated pane on screen, or nil
func (m Model) activePane() *pane {
	switch m.screen {
	case ScreenBrowse:
		return m.panes[PaneBrowse]
	case ScreenSearch:
		if m.panes[PaneSearch].state.Key != "" {
			return m.panes[PaneSearch]
		}
	case ScreenGenres:
		if m.genrePicked {
			return m.panes[PaneGenre]
		}
	}
	return nil
}

// selectedMovie returns the movie the actions apply to on this screen
func (m Model) selectedMovie() (domain.Movie, bool) {
	switch m.screen {
	case ScreenDetails:
		return m.detailsMovie, m.detailsMovie.ID != 0
	case ScreenWatchlist:
		if m.wlCursor.pos >= 0 && m.wlCursor.pos < len(m.wlResults) {
			return m.wlResults[m.wlCursor.pos].Movie, true
		}
		return domain.Movie{}, false
	}
	if p := m.activePane(); p != nil {
		return p.selected()
	}
	return domain.Movie{}, false
}

func (m *Model) applySnapshot(snap watchlist.Snapshot) {
	if snap.Version < m.snap.Version {
		return
	}
	m.snap = snap
	m.wlIndex.Replace(snap.Watchlist)
	m.refilterWatchlist()
}

func (m *Model) refilterWatchlist() {
	m.wlResults = m.wlIndex.Filter(m.wlFilter.Value())
	m.wlCursor.clamp(len(m.wlResults), m.listRows())
}

func (m *Model) refilterGenres() {
	m.genreMatches = search.MatchGenres(m.genreInput.Value(), m.genres)
	m.genreCursor.clamp(len(m.genreMatches), m.listRows())
}

func (m *Model) setStatus(msg string, isErr bool) tea.Cmd {
	m.statusSeq++
	m.status = msg
	m.statusIsErr = isErr
	return ClearStatusCmd(m.statusSeq, statusDuration)
}

// listRows returns how many list rows fit on screen
func (m Model) listRows() int {
	rows := m.height - chromeHeight
	if rows < 1 {
		return 1
	}
	return rows
}

func (m *Model) updateLayout() {
	inputWidth := m.width - 12
	if inputWidth < 10 {
		inputWidth = 10
	}
	m.searchInput.Width = inputWidth
	m.genreInput.Width = inputWidth
	m.wlFilter.Width = inputWidth

	rows := m.listRows()
	for _, p := range m.panes {
		p.cursor.clamp(len(p.state.Items), rows)
	}
	m.wlCursor.clamp(len(m.wlResults), rows)
	m.genreCursor.clamp(len(m.genreMatches), rows)
}

// handleKeyMsg routes key presses: focused text inputs first, then global keys
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	switch {
	case m.screen == ScreenSearch && m.searchFocused:
		return m.updateSearchInput(msg)
	case m.screen == ScreenGenres && !m.genrePicked:
		return m.updateGenreInput(msg)
	case m.screen == ScreenWatchlist && m.wlFiltering:
		return m.updateWatchlistFilter(msg)
	}

	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, Keys.Help):
		if m.screen == ScreenHelp {
			m.screen = m.prevScreen
			return m, nil
		}
		m.prevScreen = m.screen
		m.screen = ScreenHelp
		return m, nil

	case key.Matches(msg, Keys.Back):
		return m.back()

	case key.Matches(msg, Keys.Search):
		if m.screen == ScreenWatchlist {
			m.wlFiltering = true
			cmd := m.wlFilter.Focus()
			return m, cmd
		}
		m.screen = ScreenSearch
		m.searchFocused = true
		cmd := m.searchInput.Focus()
		return m, cmd

	case key.Matches(msg, Keys.Genres):
		m.screen = ScreenGenres
		m.genrePicked = false
		cmd := m.genreInput.Focus()
		if len(m.genres) == 0 {
			return m, tea.Batch(cmd, LoadGenresCmd(m.Catalog))
		}
		return m, cmd

	case key.Matches(msg, Keys.Watchlist):
		m.screen = ScreenWatchlist
		m.refilterWatchlist()
		return m, nil

	case key.Matches(msg, Keys.NextTab):
		return m.switchTab(1)

	case key.Matches(msg, Keys.PrevTab):
		return m.switchTab(-1)

	case key.Matches(msg, Keys.Up):
		return m.moveCursor(-1)
	case key.Matches(msg, Keys.Down):
		return m.moveCursor(1)
	case key.Matches(msg, Keys.PageUp):
		return m.moveCursor(-m.listRows())
	case key.Matches(msg, Keys.PageDown):
		return m.moveCursor(m.listRows())
	case key.Matches(msg, Keys.Home):
		return m.jumpCursor(0)
	case key.Matches(msg, Keys.End):
		return m.jumpCursor(1 << 30)

	case key.Matches(msg, Keys.Enter):
		return m.openDetails()

	case key.Matches(msg, Keys.ToggleSaved):
		if movie, ok := m.selectedMovie(); ok {
			return m.toggleSaved(movie)
		}

	case key.Matches(msg, Keys.ToggleWatched):
		if movie, ok := m.selectedMovie(); ok {
			return m.toggleWatched(movie)
		}

	case key.Matches(msg, Keys.Open):
		return m.openInBrowser()

	case key.Matches(msg, Keys.Retry):
		if p := m.activePane(); p != nil {
			return m, m.signal(p)
		}
		if m.screen == ScreenDetails && m.detailsErr != nil {
			return m.loadDetails(m.detailsMovie)
		}
	}

	return m, nil
}

// toggleSaved and toggleWatched mutate the local store directly; the new
// state reaches the view through the observer like any other change.
func (m Model) toggleSaved(movie domain.Movie) (tea.Model, tea.Cmd) {
	_, added, err := m.Watchlist.ToggleSaved(movie)
	if err != nil {
		cmd := m.watchlistFailed(movie, err)
		return m, cmd
	}
	status := fmt.Sprintf("Removed %q from watchlist", movie.Title)
	if added {
		status = fmt.Sprintf("Added %q to watchlist", movie.Title)
	}
	cmd := m.setStatus(status, false)
	return m, cmd
}

func (m Model) toggleWatched(movie domain.Movie) (tea.Model, tea.Cmd) {
	snap, err := m.Watchlist.ToggleWatched(movie.ID)
	if err != nil {
		cmd := m.watchlistFailed(movie, err)
		return m, cmd
	}
	status := fmt.Sprintf("Marked %q as unwatched", movie.Title)
	if snap.IsWatched(movie.ID) {
		status = fmt.Sprintf("Marked %q as watched", movie.Title)
	}
	cmd := m.setStatus(status, false)
	return m, cmd
}

func (m *Model) watchlistFailed(movie domain.Movie, err error) tea.Cmd {
	if errors.Is(err, domain.ErrNotInWatchlist) {
		return m.setStatus("Add the movie to your watchlist before marking it watched", true)
	}
	m.logger.Error("watchlist update failed", "id", movie.ID, "error", err)
	return m.setStatus(fmt.Sprintf("%q: %v", movie.Title, err), true)
}

func (m Model) back() (tea.Model, tea.Cmd) {
	switch m.screen {
	case ScreenDetails, ScreenHelp:
		m.screen = m.prevScreen
	case ScreenGenres:
		if m.genrePicked {
			m.genrePicked = false
			cmd := m.genreInput.Focus()
			return m, cmd
		}
		m.screen = ScreenBrowse
	case ScreenSearch, ScreenWatchlist:
		m.screen = ScreenBrowse
	}
	return m, nil
}

func (m Model) switchTab(delta int) (tea.Model, tea.Cmd) {
	if m.screen != ScreenBrowse {
		return m, nil
	}
	m.tab = (m.tab + delta + len(m.tabs)) % len(m.tabs)
	p := m.panes[PaneBrowse]
	p.reset(m.tabs[m.tab])
	return m, m.signal(p)
}

func (m Model) moveCursor(delta int) (tea.Model, tea.Cmd) {
	rows := m.listRows()
	switch m.screen {
	case ScreenWatchlist:
		m.wlCursor.move(delta, len(m.wlResults), rows)
		return m, nil
	case ScreenGenres:
		if !m.genrePicked {
			m.genreCursor.move(delta, len(m.genreMatches), rows)
			return m, nil
		}
	}
	if p := m.activePane(); p != nil {
		p.cursor.move(delta, len(p.state.Items), rows)
		return m, m.signal(p)
	}
	return m, nil
}

func (m Model) jumpCursor(pos int) (tea.Model, tea.Cmd) {
	rows := m.listRows()
	if m.screen == ScreenWatchlist {
		m.wlCursor.jump(pos, len(m.wlResults), rows)
		return m, nil
	}
	if p := m.activePane(); p != nil {
		p.cursor.jump(pos, len(p.state.Items), rows)
		return m, m.signal(p)
	}
	return m, nil
}

func (m Model) openDetails() (tea.Model, tea.Cmd) {
	movie, ok := m.selectedMovie()
	if !ok || m.screen == ScreenDetails {
		return m, nil
	}
	m.prevScreen = m.screen
	m.screen = ScreenDetails
	return m.loadDetails(movie)
}

func (m Model) loadDetails(movie domain.Movie) (tea.Model, tea.Cmd) {
	m.detailsMovie = movie
	m.details = nil
	m.detailsErr = nil
	m.detailsLoading = true
	return m, LoadDetailsCmd(m.Catalog, movie.ID)
}

// openInBrowser opens the selected movie's page, preferring IMDb when the
// details screen has an IMDb id
func (m Model) openInBrowser() (tea.Model, tea.Cmd) {
	movie, ok := m.selectedMovie()
	if !ok {
		return m, nil
	}
	if m.opener == nil {
		cmd := m.setStatus("No browser configured", true)
		return m, cmd
	}
	url := launcher.MovieURL(movie.ID)
	if m.screen == ScreenDetails && m.details != nil && m.details.IMDbID != "" {
		url = launcher.IMDbURL(m.details.IMDbID)
	}
	return m, OpenURLCmd(m.opener, url)
}

func (m Model) updateSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		p := m.panes[PaneSearch]
		p.reset(catalog.SearchKey(m.searchInput.Value()))
		m.searchFocused = false
		m.searchInput.Blur()
		return m, m.signal(p)

	case tea.KeyEsc:
		m.searchFocused = false
		m.searchInput.Blur()
		if m.panes[PaneSearch].state.Key == "" {
			m.screen = ScreenBrowse
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

func (m Model) updateGenreInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		m.genreCursor.move(-1, len(m.genreMatches), m.listRows())
		return m, nil
	case tea.KeyDown:
		m.genreCursor.move(1, len(m.genreMatches), m.listRows())
		return m, nil

	case tea.KeyEnter:
		if m.genreCursor.pos < 0 || m.genreCursor.pos >= len(m.genreMatches) {
			return m, nil
		}
		g := m.genreMatches[m.genreCursor.pos]
		p := m.panes[PaneGenre]
		p.reset(catalog.GenreKey(g.ID))
		m.genrePicked = true
		m.genreInput.Blur()
		return m, m.signal(p)

	case tea.KeyEsc:
		m.genreInput.Blur()
		m.screen = ScreenBrowse
		return m, nil
	}

	var cmd tea.Cmd
	m.genreInput, cmd = m.genreInput.Update(msg)
	m.genreCursor = listCursor{}
	m.refilterGenres()
	return m, cmd
}

func (m Model) updateWatchlistFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.wlFiltering = false
		m.wlFilter.Blur()
		return m, nil
	case tea.KeyEsc:
		m.wlFiltering = false
		m.wlFilter.Blur()
		m.wlFilter.SetValue("")
		m.refilterWatchlist()
		return m, nil
	}

	var cmd tea.Cmd
	m.wlFilter, cmd = m.wlFilter.Update(msg)
	m.wlCursor = listCursor{}
	m.refilterWatchlist()
	return m, cmd
}

// tabTitle returns the display title for a browse tab key
func (m Model) tabTitle(k string) string {
	if m.Catalog == nil {
		return k
	}
	return strings.TrimSpace(m.Catalog.Title(k))
}
