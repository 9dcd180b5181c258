package scroll

import (
	"time"

	"github.com/aliments/alical/internal/calendar"
)

// GoToToday selects today and, in Month granularity, scrolls today's week
// onto the anchor band so the header names today's month.
func (s *Scroller) GoToToday() {
	s.JumpTo(s.cal.Today())
}

// JumpTo selects date and, in Month granularity, scrolls to it.
func (s *Scroller) JumpTo(date time.Time) {
	s.selected = calendar.DayStart(date)
	if s.granularity == Month {
		s.target(s.selected)
	}
}

// GoPrevious steps back one day, one week, or to the first of the month
// before the displayed one.
func (s *Scroller) GoPrevious() {
	s.step(-1)
}

// GoNext steps forward one day, one week, or to the first of the month
// after the displayed one.
func (s *Scroller) GoNext() {
	s.step(1)
}

func (s *Scroller) step(dir int) {
	switch s.granularity {
	case Day:
		s.selected = s.selected.AddDate(0, 0, dir)
	case Week:
		s.selected = s.selected.AddDate(0, 0, 7*dir)
	default:
		first := s.displayedMonth().AddDate(0, dir, 0)
		if dir < 0 {
			s.win.ExtendHead()
		} else {
			s.win.ExtendTail()
		}
		s.selected = first
		s.target(first)
	}
}

// SelectDate selects a day cell; in Month granularity this drills into Day.
func (s *Scroller) SelectDate(date time.Time) {
	s.selected = calendar.DayStart(date)
	if s.granularity == Month {
		s.SetGranularity(Day)
	}
}

// SetGranularity switches the zoom level and keeps the selected date.
// Entering Day or Week requests one hour scroll; entering Month scrolls the
// selected date into place.
func (s *Scroller) SetGranularity(g Granularity) {
	if g == s.granularity {
		return
	}
	s.granularity = g
	if g == Month {
		s.target(s.selected)
		return
	}
	s.hourScroll = true
}

// displayedMonth is the month the header shows, or the month a queued
// navigation is about to show, so repeated steps accumulate.
func (s *Scroller) displayedMonth() time.Time {
	if s.pending != nil && s.pending.kind == adjustTarget {
		return calendar.FirstOfMonth(s.pending.date)
	}
	if month, ok := s.VisibleMonth(); ok {
		return month
	}
	return calendar.FirstOfMonth(s.selected)
}

// target grows the window around date and queues the scroll for the next
// frame. A newer target replaces whatever was pending.
func (s *Scroller) target(date time.Time) {
	week := s.cal.WeekOffset(date)
	margin := s.margin()
	s.win.EnsureCovers(week - margin)
	s.win.EnsureCovers(week + margin)
	s.pending = &adjustment{
		kind:      adjustTarget,
		date:      date,
		placement: s.placement(date),
	}
}

// placement is the viewport row a targeted date's week lands on. It is the
// anchor band (row 1) unless that week also starts the next month, which
// would then label the header; such weeks go one row lower.
func (s *Scroller) placement(date time.Time) int {
	if monthStartAfter(s.cal, date) {
		return 2
	}
	return 1
}

// margin is how many weeks must exist on each side of a target so the
// scroll is not clamped by the content edges.
func (s *Scroller) margin() int {
	m := s.win.Batch()
	if step, ok := stride(s.host); ok && step > 0 {
		if rows := s.host.ViewportHeight()/step + 3; rows > m {
			m = rows
		}
	}
	return m
}

func (s *Scroller) applyTarget(adj *adjustment) {
	row, ok := s.win.Row(s.cal.WeekOffset(adj.date))
	if !ok {
		s.requeue(adj)
		return
	}
	top, _, ok := s.host.RowBounds(row)
	if !ok {
		s.requeue(adj)
		return
	}
	step, _ := stride(s.host)

	s.autoScroll = true
	s.host.SetScrollOffset(top - adj.placement*step)
	s.lastOffset = s.host.ScrollOffset()
	s.pending = &adjustment{kind: adjustSettle}
}

func (s *Scroller) requeue(adj *adjustment) {
	s.pending = adj
	s.retry()
}
