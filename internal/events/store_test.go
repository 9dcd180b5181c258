package events

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestOpenStoreMissingFile(t *testing.T) {
	s, err := OpenStore(filepath.Join(t.TempDir(), "events.yaml"))
	if err != nil {
		t.Fatalf("OpenStore error: %v", err)
	}
	if len(s.Events()) != 0 {
		t.Fatalf("expected empty store, got %d events", len(s.Events()))
	}
}

func TestOpenStoreEmptyPath(t *testing.T) {
	if _, err := OpenStore(""); !errors.Is(err, ErrEmptyPath) {
		t.Fatalf("err = %v, want ErrEmptyPath", err)
	}
}

func TestStoreSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "events.yaml")
	s, err := OpenStore(path)
	if err != nil {
		t.Fatal(err)
	}
	start := time.Date(2025, 10, 9, 8, 0, 0, 0, time.UTC)
	first := s.Add(Event{Title: "Hufschmied", Horse: "Luna", Start: start, End: start.Add(time.Hour)})
	second := s.Add(Event{Title: "Longieren", Start: start.Add(3 * time.Hour), End: start.Add(4 * time.Hour), RRule: "FREQ=WEEKLY"})
	if first.ID != "20251009-1" || second.ID != "20251009-2" {
		t.Fatalf("ids = %q, %q", first.ID, second.ID)
	}
	if err := s.Save(); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("perm = %o, want 600", perm)
	}

	reloaded, err := OpenStore(path)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	evs := reloaded.Events()
	if len(evs) != 2 {
		t.Fatalf("reloaded %d events", len(evs))
	}
	if evs[0].Title != "Hufschmied" || evs[0].Horse != "Luna" || !evs[0].Start.Equal(start) {
		t.Fatalf("first event = %+v", evs[0])
	}
	if evs[1].RRule != "FREQ=WEEKLY" || evs[1].Source != SourceLocal {
		t.Fatalf("second event = %+v", evs[1])
	}
}

func TestOpenStoreRejectsInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.yaml")
	if err := os.WriteFile(path, []byte("events: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := OpenStore(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestStoreMerge(t *testing.T) {
	s, _ := OpenStore(filepath.Join(t.TempDir(), "events.yaml"))
	day := time.Date(2025, 10, 9, 0, 0, 0, 0, time.UTC)
	s.Add(Event{ID: "a", Title: "Tierarzt", Start: day})

	added := s.Merge([]Event{
		{ID: "a", Title: "Tierarzt (verschoben)", Start: day.AddDate(0, 0, 1)},
		{ID: "b", Title: "Weidegang", Start: day},
		{Title: "ohne ID", Start: day},
	})
	if added != 2 {
		t.Fatalf("added = %d, want 2", added)
	}
	evs := s.Events()
	if len(evs) != 3 || evs[0].Title != "Tierarzt (verschoben)" {
		t.Fatalf("events after merge = %+v", evs)
	}
	if evs[2].ID == "" {
		t.Fatalf("merged event without ID must get one")
	}
}
