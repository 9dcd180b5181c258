package tui

import (
	"fmt"
	"strings"
	"testing"

	"github.com/aliments/alical/internal/scroll"
)

const testRowHeight = 6

func newSizedHost(height int) *monthHost {
	h := newMonthHost()
	h.vp.Width = 40
	h.vp.Height = height
	return h
}

// countingRows renders a labelled block per week and counts the calls.
func countingRows(calls *int) func(int) string {
	return func(week int) string {
		*calls++
		return fmt.Sprintf("week %d", week) + strings.Repeat("\n", testRowHeight-1)
	}
}

func TestLayoutRendersOnlyRowsNearViewport(t *testing.T) {
	h := newSizedHost(36)
	calls := 0
	render := countingRows(&calls)
	r := scroll.Range{Head: -2656, Tail: 16}

	h.layout(r, testRowHeight, render)
	if h.RowCount() != r.Len() {
		t.Fatalf("row count = %d, want %d", h.RowCount(), r.Len())
	}
	if h.ContentHeight() != r.Len()*testRowHeight {
		t.Fatalf("content height = %d, want %d", h.ContentHeight(), r.Len()*testRowHeight)
	}
	if got := h.vp.TotalLineCount(); got != h.ContentHeight() {
		t.Fatalf("viewport holds %d lines, want %d", got, h.ContentHeight())
	}
	// Viewport of 6 rows plus 8 rows of margin below the top.
	if calls > 20 {
		t.Fatalf("rendered %d rows for a 6 row viewport", calls)
	}

	calls = 0
	h.SetScrollOffset(1200 * testRowHeight)
	h.paint(render)
	if calls == 0 || calls > 25 {
		t.Fatalf("rendered %d rows after scrolling", calls)
	}
	if len(h.cache) > h.painted.Len() {
		t.Fatalf("cache holds %d rows, window is %d", len(h.cache), h.painted.Len())
	}
	if want := fmt.Sprintf("week %d", r.Head+1200); !strings.Contains(h.vp.View(), want) {
		t.Fatalf("view misses %q:\n%s", want, h.vp.View())
	}
	if got := h.ScrollOffset(); got != 1200*testRowHeight {
		t.Fatalf("offset = %d after repaint", got)
	}

	calls = 0
	h.invalidate()
	h.paint(render)
	if calls > h.painted.Len() {
		t.Fatalf("invalidate re-rendered %d rows, window is %d", calls, h.painted.Len())
	}
}

func TestPaintSkipsUnchangedWindow(t *testing.T) {
	h := newSizedHost(12)
	calls := 0
	render := countingRows(&calls)
	h.layout(scroll.Range{Head: -8, Tail: 16}, testRowHeight, render)

	calls = 0
	h.SetScrollOffset(1)
	h.paint(render)
	h.layout(scroll.Range{Head: -8, Tail: 16}, testRowHeight, render)
	if calls != 0 {
		t.Fatalf("rendered %d rows without a change", calls)
	}

	// Week -5 is the fourth row, inside the painted window.
	h.invalidate(-5)
	h.paint(render)
	if calls != 1 {
		t.Fatalf("invalidating one week rendered %d rows", calls)
	}
}

func TestRowGeometry(t *testing.T) {
	h := newSizedHost(12)
	calls := 0
	h.layout(scroll.Range{Head: -8, Tail: 16}, testRowHeight, countingRows(&calls))

	top, height, ok := h.RowBounds(3)
	if !ok || top != 18 || height != testRowHeight {
		t.Fatalf("RowBounds(3) = %d, %d, %v", top, height, ok)
	}
	if _, _, ok := h.RowBounds(24); ok {
		t.Fatal("RowBounds past the range should fail")
	}
	if row, ok := h.rowAt(23); !ok || row != 3 {
		t.Fatalf("rowAt(23) = %d, %v", row, ok)
	}
	if _, ok := h.rowAt(24 * testRowHeight); ok {
		t.Fatal("rowAt past the content should fail")
	}
}
