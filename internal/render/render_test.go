package render

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"github.com/aliments/alical/internal/calendar"
	"github.com/aliments/alical/internal/events"
	"github.com/aliments/alical/internal/locale"
)

func asciiProfile(t *testing.T) {
	t.Helper()
	prevProfile := lipgloss.ColorProfile()
	lipgloss.SetColorProfile(termenv.Ascii)
	t.Cleanup(func() {
		lipgloss.SetColorProfile(prevProfile)
	})
}

func formatter(t *testing.T, tag string) *locale.Formatter {
	t.Helper()
	f, err := locale.New(tag)
	if err != nil {
		t.Fatal(err)
	}
	return f
}

type dayEvents map[string][]events.Event

func (d dayEvents) EventsOn(day time.Time) []events.Event {
	return d[day.Format("2006-01-02")]
}

func testService(src calendar.EventSource) *calendar.Service {
	now := time.Date(2025, 10, 9, 14, 20, 0, 0, time.UTC)
	return calendar.NewService(
		calendar.WithNow(func() time.Time { return now }),
		calendar.WithLocation(time.UTC),
		calendar.WithEvents(src),
	)
}

func at(day, hour int) time.Time {
	return time.Date(2025, 10, day, hour, 0, 0, 0, time.UTC)
}

func TestWeekRowChipsAndOverflow(t *testing.T) {
	asciiProfile(t)
	src := dayEvents{
		"2025-10-09": {
			{Title: "Füttern", Start: at(9, 7), End: at(9, 8)},
			{Title: "Hufschmied", Horse: "Luna", Start: at(9, 10), End: at(9, 11)},
			{Title: "Longieren", Start: at(9, 17), End: at(9, 18)},
		},
	}
	svc := testService(src)
	r := New(formatter(t, "de-DE"), Options{CellWidth: 16, CellLines: 4})

	row := r.WeekRow(svc.Week(0, time.Time{}), at(9, 0))
	if h := lipgloss.Height(row); h != r.RowHeight() {
		t.Fatalf("row height = %d, want %d", h, r.RowHeight())
	}
	if w := lipgloss.Width(row); w != r.GridWidth() {
		t.Fatalf("row width = %d, want %d", w, r.GridWidth())
	}
	for _, want := range []string{"07:00 Füttern", "10:00 Hufschmied", "+1"} {
		if !strings.Contains(row, want) {
			t.Fatalf("row missing %q:\n%s", want, row)
		}
	}
	if strings.Contains(row, "Longieren") {
		t.Fatalf("third event should be folded into the badge:\n%s", row)
	}
}

func TestWeekRowNamesMonthOnFirstDay(t *testing.T) {
	asciiProfile(t)
	svc := testService(nil)
	r := New(formatter(t, "en"), Options{})

	// Week 3 runs from 2025-10-27 to 2025-11-02.
	row := r.WeekRow(svc.Week(3, time.Time{}), time.Time{})
	if !strings.Contains(row, "1 November") {
		t.Fatalf("expected month name on day 1:\n%s", row)
	}
	if strings.Contains(row, "2 November") {
		t.Fatalf("month name must only appear on day 1:\n%s", row)
	}
}

func TestWeekdayHeader(t *testing.T) {
	asciiProfile(t)
	r := New(formatter(t, "de-DE"), Options{CellWidth: 10})
	header := r.WeekdayHeader(time.Monday)
	fields := strings.Fields(header)
	want := []string{"Mo", "Di", "Mi", "Do", "Fr", "Sa", "So"}
	if strings.Join(fields, " ") != strings.Join(want, " ") {
		t.Fatalf("header = %q", header)
	}
	if lipgloss.Width(header) != r.GridWidth() {
		t.Fatalf("header width = %d, want %d", lipgloss.Width(header), r.GridWidth())
	}
}

func TestDayTimelineHighlightsCurrentHour(t *testing.T) {
	prevProfile := lipgloss.ColorProfile()
	lipgloss.SetColorProfile(termenv.TrueColor)
	t.Cleanup(func() {
		lipgloss.SetColorProfile(prevProfile)
	})

	src := dayEvents{
		"2025-10-09": {{Title: "Tierarzt", Horse: "Luna", Start: at(9, 14), End: at(9, 15)}},
	}
	svc := testService(src)
	r := New(formatter(t, "en"), Options{})

	out := r.DayTimeline(svc.Day(at(9, 0)), svc.Now(), 60)
	lines := strings.Split(out, "\n")
	if len(lines) != 24+TimelineHeaderLines {
		t.Fatalf("timeline has %d lines", len(lines))
	}
	hourLine := ansi.Strip(lines[TimelineHeaderLines+14])
	if !strings.Contains(hourLine, "2:00 PM") || !strings.Contains(hourLine, "Tierarzt · Luna") {
		t.Fatalf("hour 14 line = %q", hourLine)
	}
	if !strings.Contains(ansi.Strip(lines[0]), "Thursday, October 9, 2025") {
		t.Fatalf("header = %q", lines[0])
	}
	if lines[TimelineHeaderLines+14] == hourLine {
		t.Fatalf("current hour should be styled")
	}
	if lines[TimelineHeaderLines+13] != ansi.Strip(lines[TimelineHeaderLines+13]) {
		t.Fatalf("other hours should be plain: %q", lines[TimelineHeaderLines+13])
	}
}

func TestWeekTimelineColumns(t *testing.T) {
	asciiProfile(t)
	src := dayEvents{
		"2025-10-10": {{Title: "Reitstunde", Start: at(10, 16), End: at(10, 17)}},
	}
	svc := testService(src)
	r := New(formatter(t, "de-DE"), Options{})

	out := r.WeekTimeline(svc.Week(0, time.Time{}), svc.Now(), 140)
	lines := strings.Split(out, "\n")
	if !strings.Contains(lines[0], "Mo 06.10.") || !strings.Contains(lines[0], "So 12.10.") {
		t.Fatalf("header = %q", lines[0])
	}
	if !strings.Contains(lines[TimelineHeaderLines+16], "Reitstunde") {
		t.Fatalf("16:00 line = %q", lines[TimelineHeaderLines+16])
	}
}

func TestDetails(t *testing.T) {
	asciiProfile(t)
	SetNoColor(true)
	t.Cleanup(func() { noColorMode = false })

	day := calendar.Day{
		Date: at(9, 0),
		Events: []events.Event{
			{Title: "Turnier", AllDay: true, Start: at(9, 0), End: at(10, 0)},
			{
				Title:       "Hufschmied",
				Horse:       "Luna",
				Start:       at(9, 10),
				End:         at(9, 11),
				Location:    "Stall Süd",
				URL:         "https://example.com/farrier",
				Description: "Vorne **neu beschlagen**",
			},
		},
	}
	r := New(formatter(t, "de-DE"), Options{})
	out := r.Details(day, 60)
	for _, want := range []string{"ganztägig  Turnier", "10:00–11:00  Hufschmied · Luna", "Stall Süd", "https://example.com/farrier", "neu beschlagen"} {
		if !strings.Contains(out, want) {
			t.Fatalf("details missing %q:\n%s", want, out)
		}
	}
	if r.Details(calendar.Day{Date: at(9, 0)}, 60) != "" {
		t.Fatalf("empty day must render nothing")
	}
}

func TestRunPlain(t *testing.T) {
	asciiProfile(t)
	var b strings.Builder
	err := RunPlain(PlainOptions{
		Writer:     &b,
		Service:    testService(nil),
		Formatter:  formatter(t, "en"),
		Year:       2025,
		Month:      11,
		Width:      120,
		FeedsStale: true,
	})
	if err != nil {
		t.Fatalf("RunPlain error: %v", err)
	}
	out := b.String()
	if !strings.HasPrefix(out, "November 2025\n") {
		t.Fatalf("output starts with %q", strings.SplitN(out, "\n", 2)[0])
	}
	if !strings.Contains(out, "alical -u") {
		t.Fatalf("missing feed hint")
	}
	// 2025-11 spans five Monday-based weeks.
	grid := strings.SplitN(out, "\n\n", 2)[0]
	if got, want := strings.Count(grid, "\n")+1, 2+5*(MinCellLines+2); got != want {
		t.Fatalf("grid has %d lines, want %d", got, want)
	}
}

func TestRunPlainRejectsBadMonth(t *testing.T) {
	err := RunPlain(PlainOptions{Writer: &strings.Builder{}, Service: testService(nil), Year: 2025, Month: 13, Width: 80})
	if err == nil {
		t.Fatalf("expected error for month 13")
	}
}

func TestFitCellWidth(t *testing.T) {
	tests := map[int]int{40: MinCellWidth, 120: 15, 400: MaxCellWidth}
	for total, want := range tests {
		if got := FitCellWidth(total); got != want {
			t.Fatalf("FitCellWidth(%d) = %d, want %d", total, got, want)
		}
	}
}
