package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Githaiga22/movie-hub/internal/domain"
	"github.com/Githaiga22/movie-hub/internal/tmdb"
	"github.com/Githaiga22/movie-hub/internal/tui/styles"
)

// View renders the application
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var body string
	switch m.screen {
	case ScreenBrowse:
		body = m.renderPane(m.panes[PaneBrowse])
	case ScreenSearch:
		body = m.renderSearch()
	case ScreenGenres:
		body = m.renderGenres()
	case ScreenDetails:
		body = m.renderDetails()
	case ScreenWatchlist:
		body = m.renderWatchlist()
	case ScreenHelp:
		body = m.renderHelp()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		styles.BodyStyle.Height(m.height-3).MaxHeight(m.height-3).Render(body),
		m.renderFooter(),
	)
}

func (m Model) renderHeader() string {
	title := styles.TitleStyle.Render("moviehub")

	var right string
	switch m.screen {
	case ScreenBrowse:
		tabs := make([]string, len(m.tabs))
		for i, k := range m.tabs {
			if i == m.tab {
				tabs[i] = styles.ActiveTabStyle.Render(m.tabTitle(k))
			} else {
				tabs[i] = styles.InactiveTabStyle.Render(m.tabTitle(k))
			}
		}
		right = strings.Join(tabs, " ")
	case ScreenSearch:
		right = styles.SubtitleStyle.Render("Search")
	case ScreenGenres:
		right = styles.SubtitleStyle.Render("Genres")
	case ScreenDetails:
		right = styles.SubtitleStyle.Render("Details")
	case ScreenWatchlist:
		right = styles.SubtitleStyle.Render(fmt.Sprintf("Watchlist (%d)", m.snap.Len()))
	case ScreenHelp:
		right = styles.SubtitleStyle.Render("Help")
	}

	return styles.HeaderStyle.Render(title + "  " + right)
}

func (m Model) renderFooter() string {
	var left string
	switch {
	case m.status != "" && m.statusIsErr:
		left = styles.ErrorStyle.Render(m.status)
	case m.status != "":
		left = styles.SuccessStyle.Render(m.status)
	default:
		left = renderShortHelp()
	}

	var right string
	if p := m.activePane(); p != nil {
		right = renderPaneStatus(p, m.spinnerFrame)
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return styles.FooterStyle.Render(left + strings.Repeat(" ", gap) + right)
}

func renderShortHelp() string {
	parts := make([]string, 0, len(Keys.ShortHelp()))
	for _, b := range Keys.ShortHelp() {
		h := b.Help()
		parts = append(parts, styles.HelpKeyStyle.Render(h.Key)+" "+styles.HelpDescStyle.Render(h.Desc))
	}
	return strings.Join(parts, "  ")
}

func renderPaneStatus(p *pane, frame int) string {
	st := p.state
	count := fmt.Sprintf("%d movies", len(st.Items))
	switch {
	case st.IsLoading:
		return RenderSpinner(frame) + " " + styles.DimStyle.Render(count)
	case st.Err != nil:
		return styles.ErrorStyle.Render("load failed") + " " + styles.DimStyle.Render(count)
	case !st.HasMore:
		return styles.DimStyle.Render(count + " · end")
	}
	return styles.DimStyle.Render(count)
}

// renderPane renders the visible window of a paginated list
func (m Model) renderPane(p *pane) string {
	st := p.state
	if len(st.Items) == 0 {
		switch {
		case st.IsLoading:
			return RenderSpinner(m.spinnerFrame) + " Loading movies..."
		case st.Err != nil:
			return RenderError(st.Err, m.width)
		case !st.HasMore:
			return styles.DimStyle.Render("No movies found.")
		}
		return ""
	}

	rows := m.listRows()
	end := p.cursor.offset + rows
	if end > len(st.Items) {
		end = len(st.Items)
	}
	lines := make([]string, 0, end-p.cursor.offset)
	for i := p.cursor.offset; i < end; i++ {
		lines = append(lines, m.renderMovieRow(st.Items[i], nil, i == p.cursor.pos))
	}
	return strings.Join(lines, "\n")
}

// renderMovieRow renders one movie with its watchlist marker, year and rating
func (m Model) renderMovieRow(movie domain.Movie, matched []int, selected bool) string {
	width := m.width - 2

	marker := RowMarker(m.snap.Contains(movie.ID), m.snap.IsWatched(movie.ID))
	var markerFg *lipgloss.Color
	switch marker {
	case styles.WatchedChar:
		markerFg = &styles.AccentAlt
	case styles.SavedChar:
		markerFg = &styles.Accent
	}

	meta := movie.Description()

	titleWidth := width - lipgloss.Width(meta) - 8
	title := styles.Truncate(movie.Title, titleWidth)
	if len(matched) > 0 && !selected {
		title = highlightMatches(title, matched)
	}
	pad := titleWidth - lipgloss.Width(movie.Title)
	if lipgloss.Width(movie.Title) > titleWidth {
		pad = 0
	}

	parts := []styles.RowPart{
		{Text: marker + " ", Foreground: markerFg},
		{Text: title + strings.Repeat(" ", max(pad, 0)) + "  "},
		{Text: meta, Foreground: &styles.Gold},
	}
	return styles.RenderListRow(parts, selected, width)
}

// RowMarker returns the watchlist marker for a movie row
func RowMarker(saved, watched bool) string {
	switch {
	case watched:
		return styles.WatchedChar
	case saved:
		return styles.SavedChar
	}
	return " "
}

// highlightMatches bolds the matched rune positions of s
func highlightMatches(s string, matched []int) string {
	set := make(map[int]bool, len(matched))
	for _, i := range matched {
		set[i] = true
	}
	var b strings.Builder
	for i, r := range []rune(s) {
		if set[i] {
			b.WriteString(styles.MatchHighlightStyle.Render(string(r)))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (m Model) renderSearch() string {
	input := m.searchInput.View()
	p := m.panes[PaneSearch]
	if p.state.Key == "" {
		return input + "\n\n" + styles.DimStyle.Render("Type a title and press enter.")
	}
	return input + "\n\n" + m.renderPane(p)
}

func (m Model) renderGenres() string {
	if m.genrePicked {
		p := m.panes[PaneGenre]
		header := styles.AccentStyle.Render(m.Catalog.Title(p.state.Key))
		return header + "\n\n" + m.renderPane(p)
	}

	input := m.genreInput.View()
	if len(m.genres) == 0 {
		return input + "\n\n" + RenderSpinner(m.spinnerFrame) + " Loading genres..."
	}
	if len(m.genreMatches) == 0 {
		return input + "\n\n" + styles.DimStyle.Render("No matching genres.")
	}

	rows := m.listRows()
	end := m.genreCursor.offset + rows
	if end > len(m.genreMatches) {
		end = len(m.genreMatches)
	}
	lines := make([]string, 0, rows)
	for i := m.genreCursor.offset; i < end; i++ {
		parts := []styles.RowPart{{Text: m.genreMatches[i].Name}}
		lines = append(lines, styles.RenderListRow(parts, i == m.genreCursor.pos, m.width-2))
	}
	return input + "\n\n" + strings.Join(lines, "\n")
}

func (m Model) renderWatchlist() string {
	var top string
	switch {
	case m.wlFiltering || m.wlFilter.Value() != "":
		top = m.wlFilter.View()
	default:
		watched := len(m.snap.Watched)
		top = styles.DimStyle.Render(fmt.Sprintf("%d saved · %d watched · / to filter", m.snap.Len(), watched))
	}

	if m.snap.Len() == 0 {
		return top + "\n\n" + styles.DimStyle.Render("Your watchlist is empty. Press a on any movie to save it.")
	}
	if len(m.wlResults) == 0 {
		return top + "\n\n" + styles.DimStyle.Render("No matches.")
	}

	rows := m.listRows()
	end := m.wlCursor.offset + rows
	if end > len(m.wlResults) {
		end = len(m.wlResults)
	}
	lines := make([]string, 0, rows)
	for i := m.wlCursor.offset; i < end; i++ {
		r := m.wlResults[i]
		lines = append(lines, m.renderMovieRow(r.Movie, r.MatchedIndexes, i == m.wlCursor.pos))
	}
	return top + "\n\n" + strings.Join(lines, "\n")
}

func (m Model) renderDetails() string {
	movie := m.detailsMovie
	width := m.width - 4
	var b strings.Builder

	heading := styles.TitleStyle.Render(movie.Title)
	if y := movie.Year(); y > 0 {
		heading += styles.DimStyle.Render(fmt.Sprintf(" (%d)", y))
	}
	switch {
	case m.snap.IsWatched(movie.ID):
		heading += "  " + styles.WatchedMark + styles.SuccessStyle.Render(" watched")
	case m.snap.Contains(movie.ID):
		heading += "  " + styles.SavedMark + styles.AccentStyle.Render(" in watchlist")
	}
	b.WriteString(heading + "\n")

	if m.detailsLoading {
		b.WriteString("\n" + RenderSpinner(m.spinnerFrame) + " Loading details...")
		return b.String()
	}
	if m.detailsErr != nil {
		b.WriteString("\n" + RenderError(m.detailsErr, width) + "\n" + styles.DimStyle.Render("r to retry"))
		return b.String()
	}
	d := m.details
	if d == nil {
		return b.String()
	}

	if d.Tagline != "" {
		b.WriteString(styles.SubtitleStyle.Italic(true).Render(d.Tagline) + "\n")
	}
	b.WriteString("\n")

	meta := []string{styles.RatingStyle.Render(fmt.Sprintf("★ %.1f", d.VoteAverage))}
	if rt := d.FormattedRuntime(); rt != "" {
		meta = append(meta, rt)
	}
	if len(d.Genres) > 0 {
		names := make([]string, len(d.Genres))
		for i, g := range d.Genres {
			names[i] = g.Name
		}
		meta = append(meta, strings.Join(names, ", "))
	}
	if d.Rated != "" {
		meta = append(meta, "Rated "+d.Rated)
	}
	b.WriteString(strings.Join(meta, styles.DimStyle.Render(" · ")) + "\n\n")

	overview := d.Overview
	if overview == "" {
		overview = d.Plot
	}
	if overview != "" {
		b.WriteString(wordWrap(overview, width) + "\n\n")
	}

	if len(d.Ratings) > 0 {
		ratings := make([]string, len(d.Ratings))
		for i, r := range d.Ratings {
			ratings[i] = styles.DimStyle.Render(r.Source+": ") + r.Value
		}
		b.WriteString(strings.Join(ratings, "   ") + "\n")
	}
	if d.Awards != "" {
		b.WriteString(styles.DimStyle.Render("Awards: ") + d.Awards + "\n")
	}

	if len(d.Cast) > 0 {
		n := len(d.Cast)
		if n > 6 {
			n = 6
		}
		cast := make([]string, n)
		for i := 0; i < n; i++ {
			c := d.Cast[i]
			if c.Character != "" {
				cast[i] = fmt.Sprintf("%s as %s", c.Name, c.Character)
			} else {
				cast[i] = c.Name
			}
		}
		b.WriteString("\n" + styles.DimStyle.Render("Cast") + "\n" + wordWrap(strings.Join(cast, ", "), width) + "\n")
	}

	if url := tmdb.PosterURL(m.imageBaseURL, d.PosterPath, "w500"); url != "" {
		b.WriteString("\n" + styles.DimStyle.Render("Poster: ") + url + "\n")
	}
	return b.String()
}

func (m Model) renderHelp() string {
	var cols []string
	for _, group := range Keys.FullHelp() {
		var lines []string
		for _, b := range group {
			h := b.Help()
			lines = append(lines, styles.HelpKeyStyle.Render(fmt.Sprintf("%-8s", h.Key))+" "+styles.HelpDescStyle.Render(h.Desc))
		}
		cols = append(cols, lipgloss.NewStyle().MarginRight(4).Render(strings.Join(lines, "\n")))
	}
	legend := fmt.Sprintf("\n\n%s saved   %s watched", styles.SavedMark, styles.WatchedMark)
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...) + legend
}

// wordWrap wraps text to the specified width
func wordWrap(text string, width int) string {
	if width <= 0 {
		return text
	}

	var result strings.Builder
	lineLen := 0
	for i, word := range strings.Fields(text) {
		wordLen := lipgloss.Width(word)
		if lineLen+wordLen+1 > width && lineLen > 0 {
			result.WriteString("\n")
			lineLen = 0
		}
		if i > 0 && lineLen > 0 {
			result.WriteString(" ")
			lineLen++
		}
		result.WriteString(word)
		lineLen += wordLen
	}
	return result.String()
}

// RenderSpinner renders a loading spinner
func RenderSpinner(frame int) string {
	return styles.SpinnerStyle.Render(styles.SpinnerFrames[frame%len(styles.SpinnerFrames)])
}

// RenderError renders an error message
func RenderError(err error, width int) string {
	msg := wordWrap(err.Error(), width-4)
	return styles.ErrorStyle.Render("Error: " + msg)
}
