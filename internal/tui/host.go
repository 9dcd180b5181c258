package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"

	"github.com/aliments/alical/internal/scroll"
)

// monthHost is the scroll container of the month view. Week rows have a
// uniform height, so row geometry is arithmetic. Only rows near the
// viewport are rendered; the rest of the content is blank rows of the same
// height, which keeps the cost of a repaint independent of how far the
// range has grown.
type monthHost struct {
	vp        viewport.Model
	rowHeight int
	laidOut   scroll.Range
	count     int

	// painted is the week range rendered into the content.
	painted scroll.Range
	cache   map[int]string
	stale   bool
}

func newMonthHost() *monthHost {
	return &monthHost{
		vp:    viewport.New(0, 0),
		cache: make(map[int]string),
	}
}

func (h *monthHost) ScrollOffset() int {
	return h.vp.YOffset
}

func (h *monthHost) SetScrollOffset(offset int) {
	h.vp.SetYOffset(offset)
}

func (h *monthHost) ViewportHeight() int {
	return h.vp.Height
}

func (h *monthHost) ContentHeight() int {
	return h.count * h.rowHeight
}

func (h *monthHost) RowCount() int {
	return h.count
}

func (h *monthHost) RowBounds(row int) (int, int, bool) {
	if row < 0 || row >= h.count {
		return 0, 0, false
	}
	return row * h.rowHeight, h.rowHeight, true
}

// invalidate drops cached rows for the given weeks, or all rows when none
// are given.
func (h *monthHost) invalidate(weeks ...int) {
	if len(weeks) == 0 {
		clear(h.cache)
	}
	for _, w := range weeks {
		delete(h.cache, w)
	}
	h.stale = true
}

// layout records the geometry of r and repaints. The viewport keeps its
// offset; prepended rows push the content down until the scroller corrects
// it.
func (h *monthHost) layout(r scroll.Range, rowHeight int, renderWeek func(week int) string) {
	if r != h.laidOut || rowHeight != h.rowHeight || h.count != r.Len() {
		h.laidOut = r
		h.rowHeight = max(rowHeight, 1)
		h.count = r.Len()
		h.stale = true
	}
	h.paint(renderWeek)
}

// paint renders the rows around the viewport into the content. It is a
// no-op while neither the offset window nor any cached row changed.
func (h *monthHost) paint(renderWeek func(week int) string) {
	if h.count == 0 {
		return
	}
	window := h.window()
	if !h.stale && window == h.painted {
		return
	}

	for week := range h.cache {
		if !window.Contains(week) {
			delete(h.cache, week)
		}
	}
	blank := strings.Repeat("\n", h.rowHeight-1)
	parts := make([]string, h.count)
	for i := range parts {
		week := h.laidOut.Head + i
		if !window.Contains(week) {
			parts[i] = blank
			continue
		}
		s, ok := h.cache[week]
		if !ok {
			s = renderWeek(week)
			h.cache[week] = s
		}
		parts[i] = s
	}

	offset := h.vp.YOffset
	h.vp.SetContent(strings.Join(parts, "\n"))
	h.vp.SetYOffset(offset)
	h.painted = window
	h.stale = false
}

// window is the week range covering the viewport plus one screen of rows
// above and below, clamped to the laid-out range.
func (h *monthHost) window() scroll.Range {
	margin := h.vp.Height/h.rowHeight + 2
	first := max(h.vp.YOffset/h.rowHeight-margin, 0)
	last := min((h.vp.YOffset+h.vp.Height)/h.rowHeight+margin, h.count-1)
	return scroll.Range{Head: h.laidOut.Head + first, Tail: h.laidOut.Head + last + 1}
}

// rowAt maps a content line to its row index.
func (h *monthHost) rowAt(line int) (int, bool) {
	if line < 0 || h.rowHeight == 0 {
		return 0, false
	}
	row := line / h.rowHeight
	if row >= h.count {
		return 0, false
	}
	return row, true
}
