package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/aliments/alical/internal/calendar"
	"github.com/aliments/alical/internal/config"
	"github.com/aliments/alical/internal/events"
	"github.com/aliments/alical/internal/locale"
	"github.com/aliments/alical/internal/log"
	"github.com/aliments/alical/internal/render"
	"github.com/aliments/alical/internal/tui"
)

// feedMaxAge is how old a cached feed may get before -n suggests -u.
const feedMaxAge = 7 * 24 * time.Hour

var (
	plain           = flag.Bool("n", false, "print the month and exit (non-interactive)")
	updateFeeds     = flag.Bool("u", false, "download all configured ICS feeds")
	updateFeedsLong = flag.Bool("update-feeds", false, "download all configured ICS feeds")
	exportFile      = flag.String("e", "", "export the event store as ICS to `file` (- for stdout)")
	exportFileLong  = flag.String("export", "", "export the event store as ICS to `file` (- for stdout)")
	importFile      = flag.String("i", "", "import events from the ICS `file`")
	importFileLong  = flag.String("import", "", "import events from the ICS `file`")
	configFile      = flag.String("c", "", "config `file` (default $XDG_CONFIG_HOME/alical/config.toml)")
	configFileLong  = flag.String("config", "", "config `file`")
	noColor         = flag.Bool("N", false, "disable all colour output")
	noColorLong     = flag.Bool("no-color", false, "disable all colour output")
	verbose         = flag.Bool("v", false, "write debug logs")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [options] [year] [month]\n", os.Args[0])
		fmt.Fprintf(flag.CommandLine.Output(), `
  no arguments  current month
  10            October of this year
  2025 10       October 2025
  2025          January 2025

Options:
`)
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	if *noColor || *noColorLong {
		render.SetNoColor(true)
	}

	cfg, err := config.Load(first(*configFile, *configFileLong))
	if err != nil {
		return err
	}
	closeLog, err := setupLogging(cfg, *verbose)
	if err != nil {
		return err
	}
	defer closeLog()

	start, err := parseRequest(flag.Args(), time.Now())
	if err != nil {
		return err
	}

	feedDir, err := events.FeedCacheDir()
	if err != nil {
		return err
	}
	if *updateFeeds || *updateFeedsLong {
		return events.Download(cfg.Feeds, feedDir)
	}

	storePath, err := cfg.StorePath()
	if err != nil {
		return err
	}
	if path := first(*importFile, *importFileLong); path != "" {
		return importICS(storePath, path)
	}
	if path := first(*exportFile, *exportFileLong); path != "" {
		return exportICS(storePath, path)
	}

	f, err := locale.New(cfg.Locale)
	if err != nil {
		return err
	}
	weekStart, err := cfg.FirstWeekday()
	if err != nil {
		return err
	}
	reload := func() (calendar.EventSource, error) {
		return loadIndex(storePath, feedDir, cfg.Feeds)
	}
	index, err := reload()
	if err != nil {
		return err
	}
	service := calendar.NewService(
		calendar.WithWeekStart(weekStart),
		calendar.WithEvents(index),
		calendar.WithLunar(cfg.ShowLunar),
	)

	if *plain {
		return render.RunPlain(render.PlainOptions{
			Service:    service,
			Formatter:  f,
			Year:       start.Year(),
			Month:      int(start.Month()),
			CellLines:  cfg.CellLines,
			Lunar:      cfg.ShowLunar,
			FeedsStale: events.FeedsStale(feedDir, cfg.Feeds, feedMaxAge, time.Now()),
		})
	}

	opts := tui.Options{
		Service:     service,
		Formatter:   f,
		Scroll:      cfg.ScrollOptions(),
		CellLines:   cfg.CellLines,
		Lunar:       cfg.ShowLunar,
		Reload:      reload,
		Feeds:       cfg.Feeds,
		FeedDir:     feedDir,
		RefreshSpec: cfg.Refresh,
	}
	if len(flag.Args()) > 0 {
		opts.Start = start
	}
	if w, err := watch(storePath, feedDir); err != nil {
		log.Error("watch event files", err)
	} else {
		defer w.Close()
		opts.Watcher = w
	}
	return tui.Run(opts)
}

// setupLogging routes logs to a file, since the TUI owns the terminal.
// Without log_file or -v, logs are discarded.
func setupLogging(cfg config.Config, verbose bool) (func(), error) {
	level, _ := log.ParseLevel(cfg.LogLevel)
	if verbose {
		level = log.LevelDebug
	}
	log.SetLevel(level)

	path := cfg.LogFile
	if path == "" && verbose {
		dir, err := os.UserCacheDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, "alical", "alical.log")
	}
	if path == "" {
		log.SetOutput(io.Discard)
		return func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	file, err := tea.LogToFile(path, "alical")
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	log.SetOutput(file)
	return func() { file.Close() }, nil
}

// loadIndex merges the local store with every cached feed. Broken feeds are
// logged and skipped so the calendar still opens.
func loadIndex(storePath, feedDir string, feeds []events.Feed) (*events.Index, error) {
	store, err := events.OpenStore(storePath)
	if err != nil {
		return nil, err
	}
	feedEvents, err := events.LoadFeeds(feedDir, feeds, time.Local)
	if err != nil {
		log.Error("load feeds", err)
	}
	index := events.NewIndex(time.Local, store.Events(), feedEvents)
	log.Debug("events loaded", "store", storePath, "events", index.Len())
	return index, nil
}

func watch(storePath, feedDir string) (*events.Watcher, error) {
	for _, dir := range []string{filepath.Dir(storePath), feedDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return events.NewWatcher(storePath, feedDir)
}

func importICS(storePath, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	evs, err := events.ParseICS(file, events.SourceLocal, time.Local)
	if err != nil {
		return err
	}
	store, err := events.OpenStore(storePath)
	if err != nil {
		return err
	}
	added := store.Merge(evs)
	if err := store.Save(); err != nil {
		return err
	}
	fmt.Printf("imported %d events (%d new) into %s\n", len(evs), added, store.Path())
	return nil
}

func exportICS(storePath, path string) error {
	store, err := events.OpenStore(storePath)
	if err != nil {
		return err
	}
	if path == "-" {
		return events.WriteICS(os.Stdout, store.Events(), time.Now())
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := events.WriteICS(file, store.Events(), time.Now()); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// parseRequest turns the optional year and month arguments into the first
// day of the requested month. A single number from 1 to 12 is a month of
// the current year, anything else a year.
func parseRequest(args []string, now time.Time) (time.Time, error) {
	year, month := now.Year(), int(now.Month())

	switch len(args) {
	case 0:
	case 1:
		val, err := parseNumber(args[0], "month/year")
		if err != nil {
			return time.Time{}, err
		}
		if val >= 1 && val <= 12 {
			month = val
		} else {
			year, month = val, 1
		}
	case 2:
		y, err := parseNumber(args[0], "year")
		if err != nil {
			return time.Time{}, err
		}
		m, err := parseNumber(args[1], "month")
		if err != nil {
			return time.Time{}, err
		}
		if m < 1 || m > 12 {
			return time.Time{}, fmt.Errorf("month must be between 1 and 12 (got %d)", m)
		}
		year, month = y, m
	default:
		return time.Time{}, errors.New("too many arguments, see --help")
	}
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, now.Location()), nil
}

func parseNumber(value string, field string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("cannot parse %q as %s", value, field)
	}
	return n, nil
}

func first(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
