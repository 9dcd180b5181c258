package events

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/aliments/alical/internal/log"
)

// ErrFeedStatus is wrapped when a feed server answers with a non-2xx status.
var ErrFeedStatus = errors.New("unexpected feed status")

// Feed is a subscribed ICS calendar, e.g. a riding club's event list.
type Feed struct {
	Name string `toml:"name"`
	URL  string `toml:"url"`
}

// FeedCacheDir returns the directory downloaded feeds are kept in.
func FeedCacheDir() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to get cache directory: %w", err)
	}
	return filepath.Join(cacheDir, "alical", "feeds"), nil
}

// FeedCachePath returns the cache file of a feed inside dir.
func FeedCachePath(dir string, f Feed) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, f.Name)
	if name == "" {
		name = "feed"
	}
	return filepath.Join(dir, name+".ics")
}

// FetchFeed downloads a feed to dest, replacing it only once the body was
// read completely. onProgress, if set, receives the bytes read so far and
// the announced total (-1 when unknown).
func FetchFeed(ctx context.Context, client *http.Client, f Feed, dest string, onProgress func(done, total int64)) (int64, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return 0, fmt.Errorf("feed %s: %w", f.Name, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("feed %s: failed to start download: %w", f.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("feed %s: %w: %s", f.Name, ErrFeedStatus, resp.Status)
	}

	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("failed to create directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".feed-*")
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	var done int64
	total := resp.ContentLength
	reader := io.TeeReader(resp.Body, &progressWriter{
		onWrite: func(n int) {
			cur := atomic.AddInt64(&done, int64(n))
			if onProgress != nil {
				onProgress(cur, total)
			}
		},
	})

	n, err := io.Copy(tmp, reader)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, fmt.Errorf("feed %s: failed to write file: %w", f.Name, err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		return 0, fmt.Errorf("feed %s: %w", f.Name, err)
	}
	return n, nil
}

type progressWriter struct {
	onWrite func(int)
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	if pw.onWrite != nil {
		pw.onWrite(len(p))
	}
	return len(p), nil
}

// LoadFeeds parses the cached copy of every feed. Feeds that were never
// downloaded are skipped; unreadable ones are reported together while the
// rest still load.
func LoadFeeds(dir string, feeds []Feed, loc *time.Location) ([]Event, error) {
	var (
		out  []Event
		errs []error
	)
	for _, f := range feeds {
		path := FeedCachePath(dir, f)
		file, err := os.Open(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				log.Debug("feed not downloaded yet", "feed", f.Name, "path", path)
				continue
			}
			errs = append(errs, err)
			continue
		}
		evs, err := ParseICS(file, f.Name, loc)
		file.Close()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, evs...)
	}
	return out, errors.Join(errs...)
}

// FeedsStale reports whether any feed cache is missing or older than maxAge.
func FeedsStale(dir string, feeds []Feed, maxAge time.Duration, now time.Time) bool {
	for _, f := range feeds {
		info, err := os.Stat(FeedCachePath(dir, f))
		if err != nil || now.Sub(info.ModTime()) > maxAge {
			return true
		}
	}
	return false
}
