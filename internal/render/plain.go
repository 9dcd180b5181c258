package render

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"

	"github.com/aliments/alical/internal/calendar"
	"github.com/aliments/alical/internal/locale"
)

// PlainOptions controls how the non-interactive renderer behaves.
type PlainOptions struct {
	Writer    io.Writer
	Service   *calendar.Service
	Formatter *locale.Formatter
	Year      int
	Month     int
	Width     int
	CellLines int
	Lunar     bool
	// FeedsStale adds a hint to run the feed download.
	FeedsStale bool
}

// RunPlain prints one month grid.
func RunPlain(opts PlainOptions) error {
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}
	if opts.Service == nil {
		opts.Service = calendar.NewService()
	}
	if opts.Formatter == nil {
		f, err := locale.New(locale.Default)
		if err != nil {
			return err
		}
		opts.Formatter = f
	}
	now := opts.Service.Now()
	if opts.Year == 0 {
		opts.Year = now.Year()
	}
	if opts.Month == 0 {
		opts.Month = int(now.Month())
	}
	width := opts.Width
	if width == 0 {
		width = DetectWidth()
	}

	view, err := opts.Service.Month(opts.Year, opts.Month)
	if err != nil {
		return err
	}
	r := New(opts.Formatter, Options{
		CellWidth: FitCellWidth(width),
		CellLines: opts.CellLines,
		Lunar:     opts.Lunar,
	})

	first := time.Date(view.Year, view.Month, 1, 0, 0, 0, 0, now.Location())
	lines := []string{
		Title(opts.Formatter.MonthYear(first)),
		r.WeekdayHeader(opts.Service.WeekStart()),
	}
	for _, week := range view.Weeks {
		lines = append(lines, r.WeekRow(week, time.Time{}))
	}
	if _, err := fmt.Fprintln(opts.Writer, strings.Join(lines, "\n")); err != nil {
		return err
	}

	if opts.FeedsStale {
		_, err = fmt.Fprintln(opts.Writer, "\n"+Help("Feeds are missing or outdated, run  alical -u  to download them"))
	}
	return err
}

// DetectWidth tries to determine the terminal width, falling back to 100 cols.
func DetectWidth() int {
	fd := os.Stdout.Fd()
	if isatty.IsTerminal(fd) {
		if w, _, err := term.GetSize(int(fd)); err == nil {
			return w
		}
	}
	return 100
}
