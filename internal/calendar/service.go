package calendar

import (
	"errors"
	"fmt"
	"time"

	calendarlib "github.com/Lofanmi/chinese-calendar-golang/calendar"

	"github.com/aliments/alical/internal/events"
)

// Supported Gregorian year range for lunar labels, enforced by the upstream library.
const (
	MinLunarYear = 1900
	MaxLunarYear = 3000
)

// EventSource answers which events start on a given local calendar day,
// ordered by start time.
type EventSource interface {
	EventsOn(day time.Time) []events.Event
}

// Day represents a single day cell of the calendar.
type Day struct {
	Date       time.Time
	WeekOffset int
	InMonth    bool
	IsToday    bool
	Events     []events.Event

	LunarDayAlias   string
	LunarMonthAlias string
	SolarTerm       string
	hasLunarData    bool
}

// Weekday is a shorthand for Date.Weekday().
func (d Day) Weekday() time.Weekday {
	return d.Date.Weekday()
}

// EventCount returns how many events start on this day.
func (d Day) EventCount() int {
	return len(d.Events)
}

// IsMonthStart reports whether the cell is the first day of its month.
func (d Day) IsMonthStart() bool {
	return d.Date.Day() == 1
}

// SecondaryLabel selects the string that should be rendered beneath the
// Gregorian date. Solar terms take precedence, followed by lunar month names
// whenever it is the first day of a lunar month.
func (d Day) SecondaryLabel() string {
	if d.SolarTerm != "" {
		return d.SolarTerm
	}
	if d.LunarDayAlias == "初一" && d.LunarMonthAlias != "" {
		return d.LunarMonthAlias
	}
	return d.LunarDayAlias
}

// HasLunarData reports whether lunar metadata was successfully calculated.
func (d Day) HasLunarData() bool {
	return d.hasLunarData
}

// MonthView describes a month laid out into weeks.
type MonthView struct {
	Year  int
	Month time.Month
	Weeks [][]Day
}

// Service materialises weeks relative to a fixed anchor week.
type Service struct {
	now       func() time.Time
	loc       *time.Location
	weekStart time.Weekday
	events    EventSource
	lunar     bool
	anchor    time.Time
}

// Option configures the Service.
type Option func(*Service)

// WithNow overrides the clock, which is useful for tests.
func WithNow(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithWeekStart sets the weekday rows start on. Monday by default.
func WithWeekStart(wd time.Weekday) Option {
	return func(s *Service) {
		s.weekStart = wd
	}
}

// WithEvents attaches the event index used to fill day cells.
func WithEvents(src EventSource) Option {
	return func(s *Service) {
		s.events = src
	}
}

// WithLunar enables lunar secondary labels.
func WithLunar(enabled bool) Option {
	return func(s *Service) {
		s.lunar = enabled
	}
}

// WithLocation sets the display time zone. time.Local by default.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		s.loc = loc
	}
}

// NewService constructs a Service. The anchor week is fixed here, from the
// clock's "now", and never moves for the lifetime of the Service.
func NewService(opts ...Option) *Service {
	s := &Service{
		now:       time.Now,
		loc:       time.Local,
		weekStart: time.Monday,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	s.anchor = StartOfWeek(s.now().In(s.loc), s.weekStart)
	return s
}

var (
	// ErrInvalidDate indicates a date string could not be parsed.
	ErrInvalidDate = errors.New("invalid date")
	// ErrInvalidMonth indicates the month is not in the 1..12 range.
	ErrInvalidMonth = errors.New("month must be between 1 and 12")
)

// Anchor returns the first day of week offset 0.
func (s *Service) Anchor() time.Time {
	return s.anchor
}

// Now returns the current time in the display location.
func (s *Service) Now() time.Time {
	return s.now().In(s.loc)
}

// Today returns local midnight of the current day.
func (s *Service) Today() time.Time {
	return DayStart(s.Now())
}

// WeekStart returns the configured first weekday.
func (s *Service) WeekStart() time.Weekday {
	return s.weekStart
}

// SetEvents swaps the event index, e.g. after the store was reloaded.
func (s *Service) SetEvents(src EventSource) {
	s.events = src
}

// WeekOffset returns the week distance of date from the anchor week.
func (s *Service) WeekOffset(date time.Time) int {
	diff := civilDays(date.In(s.loc)) - civilDays(s.anchor)
	w := diff / 7
	if diff%7 < 0 {
		w--
	}
	return w
}

// WeekStartOf returns the first day of the week at offset.
func (s *Service) WeekStartOf(offset int) time.Time {
	return s.anchor.AddDate(0, 0, 7*offset)
}

// Week builds the seven day cells of the week at offset. Cells in the same
// month as focus are flagged InMonth; a zero focus flags every cell.
func (s *Service) Week(offset int, focus time.Time) []Day {
	start := s.WeekStartOf(offset)
	now := s.Now()
	week := make([]Day, 7)
	for i := range week {
		day := start.AddDate(0, 0, i)
		inMonth := focus.IsZero() || (day.Year() == focus.Year() && day.Month() == focus.Month())
		week[i] = s.buildDay(day, offset, inMonth, now)
	}
	return week
}

// Month builds a MonthView with full weeks for the plain renderer.
func (s *Service) Month(year, month int) (MonthView, error) {
	if month < 1 || month > 12 {
		return MonthView{}, ErrInvalidMonth
	}
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, s.loc)
	from := s.WeekOffset(first)
	to := s.WeekOffset(first.AddDate(0, 1, -1))

	weeks := make([][]Day, 0, to-from+1)
	for w := from; w <= to; w++ {
		weeks = append(weeks, s.Week(w, first))
	}
	return MonthView{
		Year:  year,
		Month: first.Month(),
		Weeks: weeks,
	}, nil
}

// Day builds a single cell outside any week row, for the day timeline.
func (s *Service) Day(date time.Time) Day {
	date = DayStart(date.In(s.loc))
	return s.buildDay(date, s.WeekOffset(date), true, s.Now())
}

func (s *Service) buildDay(day time.Time, offset int, inMonth bool, now time.Time) Day {
	d := Day{
		Date:       day,
		WeekOffset: offset,
		InMonth:    inMonth,
		IsToday:    SameDay(day, now),
	}
	if s.events != nil {
		d.Events = s.events.EventsOn(day)
	}
	if !s.lunar || day.Year() < MinLunarYear || day.Year() > MaxLunarYear {
		return d
	}

	cal := calendarlib.BySolar(
		int64(day.Year()),
		int64(day.Month()),
		int64(day.Day()),
		12, 0, 0,
	)
	d.LunarDayAlias = cal.Lunar.DayAlias()
	d.LunarMonthAlias = cal.Lunar.MonthAlias()
	d.hasLunarData = true
	if solarterm := cal.Solar.CurrentSolarterm; solarterm != nil {
		if solarterm.IsInDay(&day) {
			d.SolarTerm = solarterm.Alias()
		}
	}
	return d
}

// ParseDate parses user input in ISO (2025-10-09) or German (9.10.2025)
// notation into local midnight.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range []string{"2006-01-02", "2.1.2006"} {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
}

// StartOfWeek returns midnight of the first day of t's week.
func StartOfWeek(t time.Time, weekStart time.Weekday) time.Time {
	d := DayStart(t)
	shift := (int(d.Weekday()) - int(weekStart) + 7) % 7
	return d.AddDate(0, 0, -shift)
}

// DayStart truncates t to local midnight in t's location.
func DayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// FirstOfMonth returns midnight of the first day of t's month.
func FirstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// SameDay compares calendar dates, ignoring the clock.
func SameDay(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// civilDays counts days since the epoch for t's calendar date, immune to DST.
func civilDays(t time.Time) int {
	y, m, d := t.Date()
	return int(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}
