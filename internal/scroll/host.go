package scroll

import "time"

// Host is the layout surface the scroller measures and moves. All values
// are in content units (terminal lines, pixels) as of the host's last
// layout pass; row indices count from the head of the materialized range.
type Host interface {
	ScrollOffset() int
	// SetScrollOffset moves the viewport; the host clamps to its content.
	SetScrollOffset(offset int)
	ViewportHeight() int
	ContentHeight() int
	// RowCount is the number of week rows in the last layout pass.
	RowCount() int
	// RowBounds returns the top and height of a laid-out row.
	RowBounds(row int) (top, height int, ok bool)
}

// Calendar maps dates to week offsets around a fixed anchor week.
type Calendar interface {
	Today() time.Time
	Now() time.Time
	WeekOffset(date time.Time) int
	WeekStartOf(offset int) time.Time
}

// Formatter produces the localized header strings.
type Formatter interface {
	LongDate(t time.Time) string
	MonthYear(t time.Time) string
	CalendarWeek(week int) string
}

// stride is the distance between the tops of two consecutive rows.
func stride(h Host) (int, bool) {
	top0, h0, ok := h.RowBounds(0)
	if !ok {
		return 0, false
	}
	if top1, _, ok := h.RowBounds(1); ok {
		return top1 - top0, true
	}
	return h0, true
}
