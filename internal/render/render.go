// Package render draws calendar weeks, timelines and event details with
// lipgloss. Colours are dropped when SetNoColor is on.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/aliments/alical/internal/calendar"
	"github.com/aliments/alical/internal/events"
	"github.com/aliments/alical/internal/locale"
	"github.com/aliments/alical/internal/textwidth"
)

const (
	// MaxVisibleEvents is how many chips a month cell shows before "+N".
	MaxVisibleEvents = 2
	DefaultCellWidth = 14
	MinCellWidth     = 8
	MaxCellWidth     = 24
	// MinCellLines fits the day line, the chips and the overflow badge.
	MinCellLines = MaxVisibleEvents + 2
)

var (
	noColorMode bool // Global flag to disable all color output
)

// SetNoColor disables colours for every renderer in the process.
func SetNoColor(disable bool) {
	noColorMode = disable
	if disable {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

var (
	borderColor   = lipgloss.Color("#475569")
	selectedColor = lipgloss.Color("#FEC260")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FEC260"))
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#A5B4FC"))
	dimStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	todayStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#34D399"))
	monthStartStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F472B6"))
	lunarStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#94A3B8"))
	helpStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#94A3B8"))
	statusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F97316"))
	badgeStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#94A3B8"))
	chipStyle       = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#0F172A")).
			Background(lipgloss.Color("#A5B4FC"))
	feedChipStyle = chipStyle.
			Background(lipgloss.Color("#FDE68A"))
	nowStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#0F172A")).
			Background(lipgloss.Color("#34D399"))
)

// Options size the month grid.
type Options struct {
	CellWidth int
	CellLines int
	Lunar     bool
}

// Renderer draws calendar pieces for one locale.
type Renderer struct {
	f    *locale.Formatter
	opts Options
}

// New returns a Renderer; zero options get defaults.
func New(f *locale.Formatter, opts Options) *Renderer {
	if opts.CellWidth <= 0 {
		opts.CellWidth = DefaultCellWidth
	}
	opts.CellWidth = min(max(opts.CellWidth, MinCellWidth), MaxCellWidth)
	opts.CellLines = max(opts.CellLines, MinCellLines)
	return &Renderer{f: f, opts: opts}
}

// FitCellWidth returns the widest cell that lets seven bordered cells fit
// into total columns.
func FitCellWidth(total int) int {
	return min(max(total/7-2, MinCellWidth), MaxCellWidth)
}

// Formatter returns the locale the renderer formats with.
func (r *Renderer) Formatter() *locale.Formatter {
	return r.f
}

// RowHeight is the height of one week row in lines, borders included.
func (r *Renderer) RowHeight() int {
	return r.opts.CellLines + 2
}

// GridWidth is the width of a week row in columns.
func (r *Renderer) GridWidth() int {
	return 7 * (r.opts.CellWidth + 2)
}

// Title renders the header line.
func Title(s string) string {
	return titleStyle.Render(s)
}

// Status renders an error or notice line.
func Status(s string) string {
	return statusStyle.Render(s)
}

// Help renders a hint line.
func Help(s string) string {
	return helpStyle.Render(s)
}

// WeekdayHeader renders the weekday names above the grid.
func (r *Renderer) WeekdayHeader(first time.Weekday) string {
	cols := make([]string, 7)
	for i := range cols {
		wd := time.Weekday((int(first) + i) % 7)
		cols[i] = headerStyle.
			Width(r.opts.CellWidth + 2).
			Align(lipgloss.Center).
			Render(r.f.WeekdayShort(wd))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

// WeekRow renders seven day cells side by side. The cell for selected gets
// a highlighted border.
func (r *Renderer) WeekRow(days []calendar.Day, selected time.Time) string {
	cells := make([]string, len(days))
	for i, d := range days {
		cells[i] = r.cell(d, !selected.IsZero() && calendar.SameDay(d.Date, selected))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

func (r *Renderer) cell(d calendar.Day, selected bool) string {
	w := r.opts.CellWidth
	lines := make([]string, 0, r.opts.CellLines)
	lines = append(lines, r.dayLine(d))

	shown := min(len(d.Events), MaxVisibleEvents)
	for _, e := range d.Events[:shown] {
		lines = append(lines, r.chip(e, w))
	}
	if extra := len(d.Events) - shown; extra > 0 {
		lines = append(lines, badgeStyle.Render(fmt.Sprintf("+%d", extra)))
	}

	style := lipgloss.NewStyle().
		Width(w).
		Height(r.opts.CellLines).
		MaxHeight(r.opts.CellLines + 2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor)
	if selected {
		style = style.BorderForeground(selectedColor)
	}
	return style.Render(strings.Join(lines, "\n"))
}

// dayLine is the day number, the month name on the first of a month, and
// the lunar label right-aligned when enabled.
func (r *Renderer) dayLine(d calendar.Day) string {
	w := r.opts.CellWidth
	label := fmt.Sprintf("%d", d.Date.Day())
	if d.IsMonthStart() {
		label += " " + r.f.MonthName(d.Date)
	}
	var secondary string
	if r.opts.Lunar && d.HasLunarData() {
		secondary = d.SecondaryLabel()
	}
	label = textwidth.Truncate(label, w)
	if secondary != "" {
		if gap := w - textwidth.StringWidth(label) - textwidth.StringWidth(secondary); gap >= 1 {
			secondary = strings.Repeat(" ", gap) + lunarStyle.Render(secondary)
		} else {
			secondary = ""
		}
	}

	switch {
	case d.IsToday:
		label = todayStyle.Render(label)
	case !d.InMonth:
		label = dimStyle.Render(label)
	case d.IsMonthStart():
		label = monthStartStyle.Render(label)
	}
	return label + secondary
}

// chip is one event line in a month cell: start time and label, or the
// label alone for all-day events.
func (r *Renderer) chip(e events.Event, w int) string {
	text := e.Label()
	if !e.AllDay {
		text = r.f.Clock(e.Start) + " " + text
	}
	text = textwidth.Fit(textwidth.Narrow(text), w)
	if e.Source != "" && e.Source != events.SourceLocal {
		return feedChipStyle.Render(text)
	}
	return chipStyle.Render(text)
}
