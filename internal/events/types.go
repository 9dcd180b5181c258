package events

import (
	"time"
)

// SourceLocal marks events that live in the local store.
const SourceLocal = "local"

// Event is a single stable diary entry: a feeding, a training session, a
// farrier visit. Recurring events carry an RRULE and expand lazily per day.
type Event struct {
	ID          string    `yaml:"id"`
	Title       string    `yaml:"title"`
	Horse       string    `yaml:"horse,omitempty"`
	Start       time.Time `yaml:"start"`
	End         time.Time `yaml:"end"`
	AllDay      bool      `yaml:"all_day,omitempty"`
	Description string    `yaml:"description,omitempty"`
	Location    string    `yaml:"location,omitempty"`
	URL         string    `yaml:"url,omitempty"`
	RRule       string    `yaml:"rrule,omitempty"`

	// Source is "local" or the name of the feed the event came from.
	Source string `yaml:"-"`
}

// Duration returns the event length, never negative.
func (e Event) Duration() time.Duration {
	if e.End.Before(e.Start) {
		return 0
	}
	return e.End.Sub(e.Start)
}

// Label is the short text shown on calendar chips.
func (e Event) Label() string {
	if e.Horse == "" {
		return e.Title
	}
	return e.Title + " · " + e.Horse
}

// Recurring reports whether the event carries a recurrence rule.
func (e Event) Recurring() bool {
	return e.RRule != ""
}
