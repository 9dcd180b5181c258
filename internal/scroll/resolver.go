package scroll

import (
	"math"
	"time"
)

// Resolve recomputes the visible month from the current offset. It is a
// no-op while the host's layout lags behind the window.
func (s *Scroller) Resolve() {
	if !s.layoutReady() {
		return
	}
	if month, ok := ResolveMonth(s.host, s.win.Range(), s.cal); ok {
		s.visible = month
	}
}

// ResolveMonth picks the month whose first day is the last one at or above
// the anchor band, the second visible row. Using the second row keeps a
// one- or two-day sliver of the previous month at the top from labelling
// the view. When no month start precedes the band, the topmost one wins.
//
// The result is the first day of that month and depends only on the range,
// the offset and the row geometry.
func ResolveMonth(h Host, r Range, cal Calendar) (time.Time, bool) {
	_, rowH, ok := h.RowBounds(0)
	if !ok {
		return time.Time{}, false
	}
	step, _ := stride(h)
	bandTop := h.ScrollOffset() + step
	bandMid := float64(bandTop) + float64(rowH)/2

	var (
		best    time.Time
		bestY   = math.Inf(-1)
		topmost time.Time
		minY    = math.Inf(1)
	)
	for row := 0; row < r.Len(); row++ {
		first, ok := monthStartIn(cal.WeekStartOf(r.Head + row))
		if !ok {
			continue
		}
		top, height, ok := h.RowBounds(row)
		if !ok {
			continue
		}
		center := float64(top) + float64(height)/2
		if center <= bandMid && center > bestY {
			best, bestY = first, center
		}
		if center < minY {
			topmost, minY = first, center
		}
	}
	if !best.IsZero() {
		return best, true
	}
	if !topmost.IsZero() {
		return topmost, true
	}
	return time.Time{}, false
}

// monthStartIn returns the first-of-month inside the week starting at start.
func monthStartIn(start time.Time) (time.Time, bool) {
	for i := 0; i < 7; i++ {
		d := start.AddDate(0, 0, i)
		if d.Day() == 1 {
			return d, true
		}
	}
	return time.Time{}, false
}

// monthStartAfter reports whether the week containing date also holds the
// first day of a later month.
func monthStartAfter(cal Calendar, date time.Time) bool {
	first, ok := monthStartIn(cal.WeekStartOf(cal.WeekOffset(date)))
	return ok && first.After(date)
}
