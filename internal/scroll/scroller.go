// Package scroll drives the continuous month view: a window of week rows
// that grows in both directions, a scroll offset that stays put when rows are
// prepended, a header month derived from what is on screen, and navigation
// that targets dates by moving the offset.
package scroll

import (
	"errors"
	"time"

	"github.com/aliments/alical/internal/calendar"
	"github.com/aliments/alical/internal/log"
)

var errInvalidRange = errors.New("head not before tail")

// Granularity is the active zoom level.
type Granularity int

const (
	Month Granularity = iota
	Week
	Day
)

func (g Granularity) String() string {
	switch g {
	case Day:
		return "day"
	case Week:
		return "week"
	default:
		return "month"
	}
}

// ParseGranularity accepts "day", "week" and "month".
func ParseGranularity(s string) (Granularity, bool) {
	switch s {
	case "day":
		return Day, true
	case "week":
		return Week, true
	case "month":
		return Month, true
	}
	return Month, false
}

// Options tunes growth and retry behaviour. Thresholds are in content units.
type Options struct {
	Batch int
	// HeadThreshold is the distance from the top below which scrolling
	// upward prepends a batch.
	HeadThreshold int
	// TailThreshold is the distance from the bottom edge below which a batch
	// is appended.
	TailThreshold int
	// Jitter ignores offset changes smaller than this many units.
	Jitter int
	// MaxRetries bounds how often a target that is not laid out yet is retried.
	MaxRetries int
}

// DefaultOptions suit a terminal host with rows of roughly seven lines.
func DefaultOptions() Options {
	return Options{
		Batch:         DefaultBatch,
		HeadThreshold: 8,
		TailThreshold: 14,
		MaxRetries:    2,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Batch <= 0 {
		o.Batch = d.Batch
	}
	if o.HeadThreshold <= 0 {
		o.HeadThreshold = d.HeadThreshold
	}
	if o.TailThreshold <= 0 {
		o.TailThreshold = d.TailThreshold
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = d.MaxRetries
	}
	return o
}

type adjustKind int

const (
	// adjustSettle clears the auto-scroll flag and re-resolves the label.
	adjustSettle adjustKind = iota
	// adjustStabilize shifts the offset by the height prepended since baseline.
	adjustStabilize
	// adjustTarget scrolls a date's row to a fixed viewport row.
	adjustTarget
)

type adjustment struct {
	kind      adjustKind
	baseline  int
	date      time.Time
	placement int
	attempts  int
}

// Scroller is the state of one continuous calendar. It is not safe for
// concurrent use; hosts drive it from a single UI loop.
type Scroller struct {
	cal  Calendar
	host Host
	opts Options
	win  *Window

	selected    time.Time
	granularity Granularity
	visible     time.Time

	lastOffset int
	autoScroll bool
	pending    *adjustment
	hourScroll bool
}

// New creates a scroller in Month granularity with today selected. The
// first frame scrolls today into place.
func New(cal Calendar, host Host, opts Options) *Scroller {
	opts = opts.withDefaults()
	s := &Scroller{
		cal:      cal,
		host:     host,
		opts:     opts,
		win:      NewWindow(opts.Batch),
		selected: cal.Today(),
	}
	s.win.EnsureCovers(0)
	s.target(s.selected)
	return s
}

// Range returns the materialized week range.
func (s *Scroller) Range() Range {
	return s.win.Range()
}

// WeekOfRow maps a laid-out row to its week offset.
func (s *Scroller) WeekOfRow(row int) int {
	return s.win.Week(row)
}

func (s *Scroller) Selected() time.Time {
	return s.selected
}

func (s *Scroller) Granularity() Granularity {
	return s.granularity
}

// VisibleMonth returns the first day of the month the header shows. It is
// false until the resolver has seen a laid-out frame.
func (s *Scroller) VisibleMonth() (time.Time, bool) {
	return s.visible, !s.visible.IsZero()
}

// AutoScrolling reports whether a programmatic scroll is in flight.
func (s *Scroller) AutoScrolling() bool {
	return s.autoScroll
}

// NeedsFrame reports whether an adjustment waits for the next layout pass.
func (s *Scroller) NeedsFrame() bool {
	return s.pending != nil
}

// Frame runs the pending adjustment. Hosts call it once after every layout
// pass, and before delivering a user scroll, so corrections always land
// against fresh geometry.
func (s *Scroller) Frame() {
	s.checkRange()
	adj := s.pending
	if adj == nil {
		return
	}
	if !s.layoutReady() {
		s.retry()
		return
	}
	s.pending = nil
	switch adj.kind {
	case adjustStabilize:
		s.stabilize(adj.baseline)
	case adjustTarget:
		s.applyTarget(adj)
	default:
		s.settle()
	}
}

// layoutReady reports whether the host has laid out the current range.
func (s *Scroller) layoutReady() bool {
	return s.host.RowCount() == s.win.Range().Len()
}

// retry keeps the pending adjustment for another frame, dropping it once
// MaxRetries is exhausted. Dropping leaves the offset untouched.
func (s *Scroller) retry() {
	adj := s.pending
	adj.attempts++
	if adj.attempts <= s.opts.MaxRetries {
		return
	}
	log.Debug("scroll adjustment dropped", "kind", int(adj.kind), "attempts", adj.attempts)
	s.pending = nil
	s.autoScroll = false
}

func (s *Scroller) settle() {
	s.autoScroll = false
	s.Resolve()
}

// checkRange resets a corrupted range around the selected date.
func (s *Scroller) checkRange() {
	if s.win.Range().Valid() {
		return
	}
	center := s.cal.WeekOffset(s.selected)
	log.Error("resetting materialized range", errInvalidRange, "head", s.win.r.Head, "tail", s.win.r.Tail, "center", center)
	s.win.Reset(center)
	s.target(s.selected)
}

// HourOffset returns the timeline offset that shows hour two rows below the
// top of the viewport, clamped to the content.
func HourOffset(hour, rowHeight, contentHeight, viewportHeight int) int {
	target := hour*rowHeight - 2*rowHeight
	limit := contentHeight - viewportHeight
	if target > limit {
		target = limit
	}
	if target < 0 {
		target = 0
	}
	return target
}

// TakeHourScroll reports, once, that the host should scroll its hour
// timeline to the current hour.
func (s *Scroller) TakeHourScroll() bool {
	pending := s.hourScroll
	s.hourScroll = false
	return pending
}

// Title is the header text for the active granularity.
func (s *Scroller) Title(f Formatter) string {
	switch s.granularity {
	case Day:
		return f.LongDate(s.selected)
	case Week:
		start := s.cal.WeekStartOf(s.cal.WeekOffset(s.selected))
		// A row's ISO week is the one holding its Thursday, whatever
		// weekday the row starts on.
		thursday := start.AddDate(0, 0, (int(time.Thursday)-int(start.Weekday())+7)%7)
		_, isoWeek := thursday.ISOWeek()
		return f.MonthYear(start) + " · " + f.CalendarWeek(isoWeek)
	default:
		month, ok := s.VisibleMonth()
		if !ok {
			month = calendar.FirstOfMonth(s.selected)
		}
		return f.MonthYear(month)
	}
}
