package events

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func feedServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.ics" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/calendar")
		_, _ = w.Write([]byte(crlf(sampleICS)))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFeedCachePath(t *testing.T) {
	got := FeedCachePath("/tmp/feeds", Feed{Name: "Reitverein Süd/Termine"})
	if got != filepath.Join("/tmp/feeds", "Reitverein_S_d_Termine.ics") {
		t.Fatalf("FeedCachePath = %q", got)
	}
	if got := FeedCachePath("/tmp", Feed{}); got != filepath.Join("/tmp", "feed.ics") {
		t.Fatalf("empty name path = %q", got)
	}
}

func TestFetchFeedAndLoad(t *testing.T) {
	srv := feedServer(t)
	dir := t.TempDir()
	feed := Feed{Name: "club", URL: srv.URL + "/club.ics"}

	var lastDone int64
	n, err := FetchFeed(context.Background(), srv.Client(), feed, FeedCachePath(dir, feed), func(done, total int64) {
		lastDone = done
	})
	if err != nil {
		t.Fatalf("FetchFeed error: %v", err)
	}
	if n == 0 || lastDone != n {
		t.Fatalf("n = %d, progress = %d", n, lastDone)
	}

	evs, err := LoadFeeds(dir, []Feed{feed, {Name: "never-downloaded"}}, time.UTC)
	if err != nil {
		t.Fatalf("LoadFeeds error: %v", err)
	}
	if len(evs) != 2 || evs[0].Source != "club" {
		t.Fatalf("loaded %+v", evs)
	}
}

func TestFetchFeedStatusError(t *testing.T) {
	srv := feedServer(t)
	dir := t.TempDir()
	feed := Feed{Name: "gone", URL: srv.URL + "/missing.ics"}
	dest := FeedCachePath(dir, feed)

	if _, err := FetchFeed(context.Background(), srv.Client(), feed, dest, nil); !errors.Is(err, ErrFeedStatus) {
		t.Fatalf("err = %v, want ErrFeedStatus", err)
	}
	if _, err := os.Stat(dest); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("failed download must not leave a cache file")
	}
}

func TestLoadFeedsReportsBrokenCache(t *testing.T) {
	dir := t.TempDir()
	good := Feed{Name: "good"}
	bad := Feed{Name: "bad"}
	if err := os.WriteFile(FeedCachePath(dir, good), []byte(crlf(sampleICS)), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(FeedCachePath(dir, bad), []byte("garbage"), 0o600); err != nil {
		t.Fatal(err)
	}
	evs, err := LoadFeeds(dir, []Feed{bad, good}, time.UTC)
	if err == nil {
		t.Fatalf("expected an error for the broken feed")
	}
	if len(evs) != 2 {
		t.Fatalf("good feed should still load, got %d events", len(evs))
	}
}

func TestFeedsStale(t *testing.T) {
	dir := t.TempDir()
	feed := Feed{Name: "club"}
	now := time.Now()
	if !FeedsStale(dir, []Feed{feed}, time.Hour, now) {
		t.Fatalf("missing cache must be stale")
	}
	if err := os.WriteFile(FeedCachePath(dir, feed), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	if FeedsStale(dir, []Feed{feed}, time.Hour, now) {
		t.Fatalf("fresh cache reported stale")
	}
	if !FeedsStale(dir, []Feed{feed}, time.Hour, now.Add(2*time.Hour)) {
		t.Fatalf("old cache not reported stale")
	}
}

func TestRefresher(t *testing.T) {
	if _, err := NewRefresher("every now and then", t.TempDir(), nil, nil); err == nil {
		t.Fatalf("expected invalid schedule error")
	}

	srv := feedServer(t)
	dir := t.TempDir()
	feeds := []Feed{
		{Name: "club", URL: srv.URL + "/club.ics"},
		{Name: "gone", URL: srv.URL + "/missing.ics"},
	}
	var sent []tea.Msg
	r, err := NewRefresher("@hourly", dir, feeds, func(msg tea.Msg) { sent = append(sent, msg) })
	if err != nil {
		t.Fatalf("NewRefresher error: %v", err)
	}
	r.client = srv.Client()

	r.run()
	if len(sent) != 1 {
		t.Fatalf("sent %d messages", len(sent))
	}
	msg := sent[0].(FeedsRefreshedMsg)
	if msg.Updated != 1 || !errors.Is(msg.Err, ErrFeedStatus) {
		t.Fatalf("refresh result = %+v", msg)
	}
	if _, err := os.Stat(FeedCachePath(dir, feeds[0])); err != nil {
		t.Fatalf("feed not cached: %v", err)
	}
}

func TestDownloadModelCollectsResults(t *testing.T) {
	feeds := []Feed{{Name: "a"}, {Name: "b"}}
	var m tea.Model = newDownloadModel(feeds, t.TempDir(), nil)

	m, _ = m.Update(downloadProgressMsg{feed: 0, bytesDownloaded: 512, totalBytes: 1024, speed: 2048})
	if view := m.View(); !strings.Contains(view, "feed 1/2: a") || !strings.Contains(view, "50.0%") {
		t.Fatalf("progress view = %q", view)
	}

	m, _ = m.Update(feedDoneMsg{feed: 0, size: 1024, path: "a.ics"})
	m, _ = m.Update(feedDoneMsg{feed: 1, err: ErrFeedStatus})
	dm := m.(downloadModel)
	if !dm.waitingKey {
		t.Fatalf("model should wait for a key after the last feed")
	}
	if !errors.Is(dm.err(), ErrFeedStatus) {
		t.Fatalf("err = %v", dm.err())
	}
	view := dm.View()
	if !strings.Contains(view, "✓ a  1.0 KB") || !strings.Contains(view, "✗ b") {
		t.Fatalf("summary view = %q", view)
	}
}
