// Package locale formats dates for the header, the grid and the timelines.
package locale

import (
	"fmt"
	"time"

	"github.com/goodsign/monday"
	"golang.org/x/text/language"
)

// Default is used when no locale is configured.
const Default = "de-DE"

type layouts struct {
	locale    monday.Locale
	longDate  string
	monthYear string
	shortDate string
	clock     string
	week      string
	allDay    string
}

var (
	supported = []language.Tag{language.German, language.AmericanEnglish}
	matcher   = language.NewMatcher(supported)
	catalog   = []layouts{
		{
			locale:    monday.LocaleDeDE,
			longDate:  "Monday, 2. January 2006",
			monthYear: "January 2006",
			shortDate: "02.01.",
			clock:     "15:04",
			week:      "KW %d",
			allDay:    "ganztägig",
		},
		{
			locale:    monday.LocaleEnUS,
			longDate:  "Monday, January 2, 2006",
			monthYear: "January 2006",
			shortDate: "Jan 2",
			clock:     "3:04 PM",
			week:      "CW %d",
			allDay:    "all day",
		},
	}
)

// Formatter renders localized date strings. The zero value is not usable;
// construct one with New.
type Formatter struct {
	tag language.Tag
	l   layouts
}

// New returns a Formatter for a BCP 47 tag such as "de-DE" or "en". Tags
// that parse but are not supported fall back to German.
func New(tag string) (*Formatter, error) {
	if tag == "" {
		tag = Default
	}
	t, err := language.Parse(tag)
	if err != nil {
		return nil, fmt.Errorf("parse locale %q: %w", tag, err)
	}
	_, idx, _ := matcher.Match(t)
	return &Formatter{tag: supported[idx], l: catalog[idx]}, nil
}

// Tag returns the matched language.
func (f *Formatter) Tag() language.Tag {
	return f.tag
}

// LongDate is the day view title, e.g. "Thursday, October 9, 2025".
func (f *Formatter) LongDate(t time.Time) string {
	return monday.Format(t, f.l.longDate, f.l.locale)
}

// MonthYear is the month view title, e.g. "Oktober 2025".
func (f *Formatter) MonthYear(t time.Time) string {
	return monday.Format(t, f.l.monthYear, f.l.locale)
}

// MonthName returns the full month name shown on day 1 cells.
func (f *Formatter) MonthName(t time.Time) string {
	return monday.Format(t, "January", f.l.locale)
}

// ShortDate is used in week column headers.
func (f *Formatter) ShortDate(t time.Time) string {
	return monday.Format(t, f.l.shortDate, f.l.locale)
}

// Clock formats a time of day.
func (f *Formatter) Clock(t time.Time) string {
	return monday.Format(t, f.l.clock, f.l.locale)
}

// WeekdayShort returns the abbreviated weekday name.
func (f *Formatter) WeekdayShort(wd time.Weekday) string {
	// 2025-10-05 is a Sunday.
	d := time.Date(2025, 10, 5+int(wd), 12, 0, 0, 0, time.UTC)
	return monday.Format(d, "Mon", f.l.locale)
}

// CalendarWeek labels an ISO week number, "KW 41" in German.
func (f *Formatter) CalendarWeek(week int) string {
	return fmt.Sprintf(f.l.week, week)
}

// AllDay labels events without a time of day.
func (f *Formatter) AllDay() string {
	return f.l.allDay
}
