package events

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestIsEventFile(t *testing.T) {
	tests := map[string]bool{
		"/data/events.yaml":      true,
		"/cache/feeds/club.ics":  true,
		"/data/.events-123.yaml": false,
		"/cache/feeds/.feed-abc": false,
		"/data/notes.txt":        false,
		"/data/EVENTS.YML":       true,
	}
	for name, want := range tests {
		if got := isEventFile(name); got != want {
			t.Fatalf("isEventFile(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestWatcherReportsStoreSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "events.yaml")
	w, err := NewWatcher(path)
	if err != nil {
		t.Fatalf("NewWatcher error: %v", err)
	}
	defer w.Close()

	got := make(chan ChangedMsg, 1)
	go func() {
		if msg, ok := w.WatchCmd()().(ChangedMsg); ok {
			got <- msg
		}
	}()

	s, _ := OpenStore(path)
	s.Add(Event{Title: "Tierarzt", Start: time.Date(2025, 10, 9, 10, 0, 0, 0, time.UTC)})
	if err := s.Save(); err != nil {
		t.Fatal(err)
	}

	select {
	case msg := <-got:
		if filepath.Base(msg.Path) != "events.yaml" {
			t.Fatalf("change reported for %q", msg.Path)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("no change reported")
	}
	_ = os.Remove(path)
}
