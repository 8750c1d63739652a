package tui

import (
	"github.com/Githaiga22/movie-hub/internal/browse"
	"github.com/Githaiga22/movie-hub/internal/domain"
)

// listCursor tracks the selected row and scroll offset of a list
type listCursor struct {
	pos    int
	offset int
}

// move shifts the cursor by delta within n items, keeping it in view
func (c *listCursor) move(delta, n, rows int) {
	c.pos += delta
	c.clamp(n, rows)
}

// jump puts the cursor at an absolute index
func (c *listCursor) jump(pos, n, rows int) {
	c.pos = pos
	c.clamp(n, rows)
}

func (c *listCursor) clamp(n, rows int) {
	if rows < 1 {
		rows = 1
	}
	if c.pos >= n {
		c.pos = n - 1
	}
	if c.pos < 0 {
		c.pos = 0
	}
	if c.pos < c.offset {
		c.offset = c.pos
	}
	if c.pos >= c.offset+rows {
		c.offset = c.pos - rows + 1
	}
	if limit := n - rows; c.offset > limit {
		c.offset = limit
	}
	if c.offset < 0 {
		c.offset = 0
	}
}

// lastVisible returns the index of the last row on screen, or -1 for an
// empty list
func (c *listCursor) lastVisible(n, rows int) int {
	if n == 0 {
		return -1
	}
	last := c.offset + rows - 1
	if last >= n {
		last = n - 1
	}
	if c.pos > last {
		last = c.pos
	}
	return last
}

// PaneID names a paginated list pane
type PaneID int

const (
	PaneBrowse PaneID = iota
	PaneSearch
	PaneGenre
)

// pane is a scrollable view over one accumulator
type pane struct {
	id     PaneID
	acc    *browse.Accumulator
	state  browse.State
	cursor listCursor
}

func newPane(id PaneID, acc *browse.Accumulator) *pane {
	p := &pane{id: id, acc: acc}
	p.state = acc.Snapshot()
	return p
}

// reset switches the pane to a new list key
func (p *pane) reset(key string) {
	p.acc.Reset(key)
	p.cursor = listCursor{}
	p.state = p.acc.Snapshot()
}

// refresh re-reads the accumulator after a change
func (p *pane) refresh(rows int) {
	p.state = p.acc.Snapshot()
	p.cursor.clamp(len(p.state.Items), rows)
}

func (p *pane) selected() (domain.Movie, bool) {
	if p.cursor.pos < 0 || p.cursor.pos >= len(p.state.Items) {
		return domain.Movie{}, false
	}
	return p.state.Items[p.cursor.pos], true
}

// nearEnd signals the accumulator with the last visible index and returns
// the request to run when a page is due
func (p *pane) nearEnd(rows, threshold int) (browse.Request, bool) {
	return p.acc.NearEnd(p.cursor.lastVisible(len(p.state.Items), rows), threshold)
}
