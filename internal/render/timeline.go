package render

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/aliments/alical/internal/calendar"
	"github.com/aliments/alical/internal/events"
	"github.com/aliments/alical/internal/textwidth"
)

const (
	cellPadding = 1
	clockWidth  = 8
	// TimelineHeaderLines is the number of lines above the hour-0 row.
	TimelineHeaderLines = 1
)

// DayTimeline renders the 24 hour rows of d. On today the current hour is
// highlighted.
func (r *Renderer) DayTimeline(d calendar.Day, now time.Time, width int) string {
	eventWidth := max(width-clockWidth-4*cellPadding, MinCellWidth)
	columns := []table.Column{
		{Title: "", Width: clockWidth},
		{Title: r.f.LongDate(d.Date), Width: eventWidth},
	}
	rows := make([]table.Row, 24)
	for h := range rows {
		rows[h] = table.Row{
			r.f.Clock(hourOf(d.Date, h)),
			textwidth.Truncate(labelsAt(d.Events, h), eventWidth),
		}
	}
	return r.timelineTable(columns, rows, calendar.SameDay(d.Date, now), now.Hour())
}

// WeekTimeline renders the hour grid of a week, one column per day.
func (r *Renderer) WeekTimeline(days []calendar.Day, now time.Time, width int) string {
	if len(days) == 0 {
		return ""
	}
	colWidth := max((width-clockWidth-2*cellPadding)/len(days)-2*cellPadding, 4)
	columns := make([]table.Column, 0, len(days)+1)
	columns = append(columns, table.Column{Title: "", Width: clockWidth})
	showNow := false
	for _, d := range days {
		title := r.f.WeekdayShort(d.Weekday()) + " " + r.f.ShortDate(d.Date)
		columns = append(columns, table.Column{Title: textwidth.Truncate(title, colWidth), Width: colWidth})
		showNow = showNow || calendar.SameDay(d.Date, now)
	}

	rows := make([]table.Row, 24)
	for h := range rows {
		row := make(table.Row, 0, len(days)+1)
		row = append(row, r.f.Clock(hourOf(days[0].Date, h)))
		for _, d := range days {
			row = append(row, textwidth.Truncate(labelsAt(d.Events, h), colWidth))
		}
		rows[h] = row
	}
	return r.timelineTable(columns, rows, showNow, now.Hour())
}

func (r *Renderer) timelineTable(columns []table.Column, rows []table.Row, highlight bool, hour int) string {
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(len(rows)+TimelineHeaderLines),
	)
	styles := tableStyles()
	if highlight {
		styles.Selected = nowStyle
		t.SetCursor(hour)
	}
	t.SetStyles(styles)
	t.Blur()
	return strings.TrimRight(t.View(), "\n")
}

func tableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = headerStyle.Padding(0, cellPadding)
	styles.Selected = lipgloss.NewStyle()
	styles.Cell = lipgloss.NewStyle().Padding(0, cellPadding)
	return styles
}

func hourOf(day time.Time, h int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), h, 0, 0, 0, day.Location())
}

// labelsAt joins the timed events starting in hour h.
func labelsAt(evs []events.Event, h int) string {
	var labels []string
	for _, e := range evs {
		if !e.AllDay && e.Start.Hour() == h {
			labels = append(labels, e.Label())
		}
	}
	return textwidth.Narrow(strings.Join(labels, ", "))
}
