package events

import (
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
)

// ChangedMsg is sent when the store or a cached feed changes on disk.
type ChangedMsg struct {
	Path    string
	Deleted bool
}

// Watcher reports changes to event files so the calendar can reload.
type Watcher struct {
	watcher *fsnotify.Watcher
}

// NewWatcher watches the directories holding paths. Directories are watched
// rather than files because the store is replaced by rename on save.
func NewWatcher(paths ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	for _, p := range paths {
		dir := p
		if filepath.Ext(p) != "" {
			dir = filepath.Dir(p)
		}
		if seen[dir] {
			continue
		}
		seen[dir] = true
		if err := w.Add(dir); err != nil {
			w.Close()
			return nil, err
		}
	}
	return &Watcher{watcher: w}, nil
}

// WatchCmd returns a command that blocks until the next relevant change.
// Re-issue it after handling each ChangedMsg.
func (w *Watcher) WatchCmd() tea.Cmd {
	return func() tea.Msg {
		for {
			select {
			case event, ok := <-w.watcher.Events:
				if !ok {
					return nil
				}
				if !isEventFile(event.Name) {
					continue
				}
				deleted := event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
				return ChangedMsg{Path: event.Name, Deleted: deleted}

			case _, ok := <-w.watcher.Errors:
				if !ok {
					return nil
				}
				continue
			}
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// isEventFile skips temp files written during atomic saves.
func isEventFile(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	switch strings.ToLower(filepath.Ext(base)) {
	case ".yaml", ".yml", ".ics":
		return true
	}
	return false
}
