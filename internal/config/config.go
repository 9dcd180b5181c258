// Package config loads ~/.config/alical/config.toml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/robfig/cron/v3"
	"golang.org/x/text/language"

	"github.com/aliments/alical/internal/events"
	"github.com/aliments/alical/internal/locale"
	"github.com/aliments/alical/internal/log"
	"github.com/aliments/alical/internal/scroll"
)

// Config is the user configuration. Zero values are replaced by defaults in
// Normalize.
type Config struct {
	Locale        string        `toml:"locale"`
	WeekStart     string        `toml:"week_start"`
	BatchWeeks    int           `toml:"batch_weeks"`
	HeadThreshold int           `toml:"head_threshold"`
	TailThreshold int           `toml:"tail_threshold"`
	CellLines     int           `toml:"cell_lines"`
	ShowLunar     bool          `toml:"show_lunar"`
	EventsFile    string        `toml:"events_file"`
	Refresh       string        `toml:"refresh"`
	LogFile       string        `toml:"log_file"`
	LogLevel      string        `toml:"log_level"`
	Feeds         []events.Feed `toml:"feeds"`
}

const (
	// MinCellLines fits the day number, two chips and the overflow badge.
	MinCellLines   = 4
	defaultRefresh = "@every 6h"
)

// FieldError reports an invalid config value.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("config: %s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

var (
	ErrEmptyPath       = errors.New("path is empty")
	ErrInvalidWeekday  = errors.New("week start must be monday or sunday")
	ErrDuplicateFeed   = errors.New("duplicate feed name")
	ErrInvalidLogLevel = errors.New("log level must be debug, info or error")
)

// Default returns the configuration used when no file exists.
func Default() Config {
	cfg := Config{}
	cfg.Normalize()
	return cfg
}

// Path returns $XDG_CONFIG_HOME/alical/config.toml.
func Path() (string, error) {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "alical", "config.toml"), nil
}

// Load reads and validates the file at path. An empty path means the
// default location; a missing file yields the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		p, err := Path()
		if err != nil {
			return Config{}, err
		}
		path = p
	}

	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return Config{}, err
		}
		log.Debug("no config file, using defaults", "path", path)
	} else if _, err := toml.Decode(string(data), &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Normalize fills in defaults for unset values.
func (c *Config) Normalize() {
	c.Locale = strings.TrimSpace(c.Locale)
	if c.Locale == "" {
		c.Locale = locale.Default
	}
	c.WeekStart = strings.ToLower(strings.TrimSpace(c.WeekStart))
	if c.WeekStart == "" {
		c.WeekStart = "monday"
	}
	d := scroll.DefaultOptions()
	if c.BatchWeeks <= 0 {
		c.BatchWeeks = d.Batch
	}
	if c.BatchWeeks < scroll.MinBatch {
		c.BatchWeeks = scroll.MinBatch
	}
	if c.HeadThreshold <= 0 {
		c.HeadThreshold = d.HeadThreshold
	}
	if c.TailThreshold <= 0 {
		c.TailThreshold = d.TailThreshold
	}
	if c.CellLines < MinCellLines {
		c.CellLines = MinCellLines
	}
	if strings.TrimSpace(c.Refresh) == "" {
		c.Refresh = defaultRefresh
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	c.EventsFile = expandHome(c.EventsFile)
	c.LogFile = expandHome(c.LogFile)
}

// Validate checks values that have no sensible default.
func (c Config) Validate() error {
	if _, err := language.Parse(c.Locale); err != nil {
		return &FieldError{Field: "locale", Err: err}
	}
	if _, err := c.FirstWeekday(); err != nil {
		return &FieldError{Field: "week_start", Err: err}
	}
	if _, err := cron.ParseStandard(c.Refresh); err != nil {
		return &FieldError{Field: "refresh", Err: err}
	}
	if _, ok := log.ParseLevel(c.LogLevel); !ok {
		return &FieldError{Field: "log_level", Err: fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.LogLevel)}
	}
	seen := make(map[string]bool, len(c.Feeds))
	for i, f := range c.Feeds {
		field := fmt.Sprintf("feeds[%d]", i)
		if strings.TrimSpace(f.URL) == "" {
			return &FieldError{Field: field + ".url", Err: ErrEmptyPath}
		}
		if seen[f.Name] {
			return &FieldError{Field: field + ".name", Err: fmt.Errorf("%w: %q", ErrDuplicateFeed, f.Name)}
		}
		seen[f.Name] = true
	}
	return nil
}

// FirstWeekday maps week_start to a time.Weekday.
func (c Config) FirstWeekday() (time.Weekday, error) {
	switch c.WeekStart {
	case "monday", "mon", "mo":
		return time.Monday, nil
	case "sunday", "sun", "so":
		return time.Sunday, nil
	}
	return time.Monday, fmt.Errorf("%w: %q", ErrInvalidWeekday, c.WeekStart)
}

// ScrollOptions returns the scroller tuning derived from the config.
func (c Config) ScrollOptions() scroll.Options {
	o := scroll.DefaultOptions()
	o.Batch = c.BatchWeeks
	o.HeadThreshold = c.HeadThreshold
	o.TailThreshold = c.TailThreshold
	return o
}

// StorePath returns events_file or the default store location.
func (c Config) StorePath() (string, error) {
	if c.EventsFile != "" {
		return c.EventsFile, nil
	}
	return events.DefaultStorePath()
}

func expandHome(p string) string {
	p = strings.TrimSpace(p)
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
