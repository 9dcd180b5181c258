package events

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrEmptyPath is returned when a store is opened without a file path.
var ErrEmptyPath = errors.New("empty store path")

type storeFile struct {
	Events []Event `yaml:"events"`
}

// Store is the local event diary, kept as a YAML file.
type Store struct {
	path   string
	events []Event
}

// DefaultStorePath returns $XDG_DATA_HOME/alical/events.yaml, falling back
// to ~/.local/share when XDG_DATA_HOME is unset.
func DefaultStorePath() (string, error) {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		dir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dir, "alical", "events.yaml"), nil
}

// OpenStore reads the store at path. A missing file yields an empty store
// that is created on the first Save.
func OpenStore(path string) (*Store, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	s := &Store{path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read events: %w", err)
	}
	var f storeFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse events %s: %w", path, err)
	}
	for i := range f.Events {
		f.Events[i].Source = SourceLocal
	}
	s.events = f.Events
	return s, nil
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

// Events returns a copy of the stored events.
func (s *Store) Events() []Event {
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// Add appends an event, assigning an ID when it has none.
func (s *Store) Add(e Event) Event {
	if e.ID == "" {
		e.ID = s.nextID(e.Start)
	}
	e.Source = SourceLocal
	s.events = append(s.events, e)
	return e
}

// Merge adds events by ID: known IDs are replaced, unknown ones appended.
// It returns how many events were new.
func (s *Store) Merge(evs []Event) int {
	pos := make(map[string]int, len(s.events))
	for i, e := range s.events {
		pos[e.ID] = i
	}
	added := 0
	for _, e := range evs {
		e.Source = SourceLocal
		if i, ok := pos[e.ID]; ok && e.ID != "" {
			s.events[i] = e
			continue
		}
		e = s.Add(e)
		pos[e.ID] = len(s.events) - 1
		added++
	}
	return added
}

// Save writes the store atomically with owner-only permissions.
func (s *Store) Save() error {
	data, err := yaml.Marshal(storeFile{Events: s.events})
	if err != nil {
		return fmt.Errorf("marshal events: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".events-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}

func (s *Store) nextID(start time.Time) string {
	taken := make(map[string]bool, len(s.events))
	for _, e := range s.events {
		taken[e.ID] = true
	}
	base := start.Format("20060102")
	for n := 1; ; n++ {
		id := base + "-" + strconv.Itoa(n)
		if !taken[id] {
			return id
		}
	}
}
