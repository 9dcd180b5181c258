package events

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
)

type downloadProgressMsg struct {
	feed            int
	bytesDownloaded int64
	totalBytes      int64
	speed           float64
}

type feedDoneMsg struct {
	feed int
	size int64
	path string
	err  error
}

type downloadModel struct {
	feeds      []Feed
	dir        string
	client     *http.Client
	bar        progress.Model
	current    int
	downloaded int64
	total      int64
	speed      float64
	results    []feedDoneMsg
	progressCh chan downloadProgressMsg
	completeCh chan feedDoneMsg
	cancel     context.CancelFunc
	waitingKey bool
}

func newDownloadModel(feeds []Feed, dir string, client *http.Client) downloadModel {
	return downloadModel{
		feeds:      feeds,
		dir:        dir,
		client:     client,
		bar:        progress.New(progress.WithDefaultGradient(), progress.WithWidth(50)),
		progressCh: make(chan downloadProgressMsg, 10),
		completeCh: make(chan feedDoneMsg, len(feeds)),
	}
}

func (m downloadModel) Init() tea.Cmd {
	return tea.Batch(m.startDownload(), m.listenProgress)
}

func (m downloadModel) listenProgress() tea.Msg {
	select {
	case msg := <-m.progressCh:
		return msg
	case msg := <-m.completeCh:
		return msg
	}
}

func (m downloadModel) startDownload() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			defer cancel()
			for i, f := range m.feeds {
				start := time.Now()
				dest := FeedCachePath(m.dir, f)
				size, err := FetchFeed(ctx, m.client, f, dest, func(done, total int64) {
					select {
					case m.progressCh <- downloadProgressMsg{
						feed:            i,
						bytesDownloaded: done,
						totalBytes:      total,
						speed:           float64(done) / time.Since(start).Seconds(),
					}:
					default:
						// Channel is full, skip this update
					}
				})
				m.completeCh <- feedDoneMsg{feed: i, size: size, path: dest, err: err}
			}
		}()
		return downloadStartedMsg{cancel: cancel}
	}
}

type downloadStartedMsg struct {
	cancel context.CancelFunc
}

func (m downloadModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.waitingKey {
			return m, tea.Quit
		}
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}
	case downloadStartedMsg:
		m.cancel = msg.cancel
	case downloadProgressMsg:
		if msg.feed == m.current {
			m.downloaded = msg.bytesDownloaded
			m.total = msg.totalBytes
			m.speed = msg.speed
		}
		return m, m.listenProgress
	case feedDoneMsg:
		m.results = append(m.results, msg)
		m.current = msg.feed + 1
		m.downloaded, m.total, m.speed = 0, 0, 0
		if len(m.results) == len(m.feeds) {
			m.waitingKey = true
			return m, nil
		}
		return m, m.listenProgress
	}
	return m, nil
}

func (m downloadModel) View() string {
	if m.waitingKey {
		var b strings.Builder
		for _, r := range m.results {
			name := m.feeds[r.feed].Name
			if r.err != nil {
				fmt.Fprintf(&b, "✗ %s: %v\n", name, r.err)
				continue
			}
			fmt.Fprintf(&b, "✓ %s  %s  %s\n", name, formatBytes(r.size), r.path)
		}
		b.WriteString("\nPress any key to exit...\n")
		return b.String()
	}

	if m.current >= len(m.feeds) {
		return ""
	}
	var (
		percent float64
		info    string
	)
	if m.total > 0 {
		percent = min(float64(m.downloaded)/float64(m.total), 1)
		info = fmt.Sprintf("%s / %s  %s  %.1f%%", formatBytes(m.downloaded), formatBytes(m.total), formatSpeed(m.speed), percent*100)
	} else {
		info = formatBytes(m.downloaded)
		if m.speed > 0 {
			info += "  " + formatSpeed(m.speed)
		}
	}
	feed := m.feeds[m.current]
	return fmt.Sprintf("Downloading feed %d/%d: %s\n\n%s\n%s\n\nPress Ctrl+C to cancel\n",
		m.current+1, len(m.feeds), feed.Name, m.bar.ViewAs(percent), info)
}

func (m downloadModel) err() error {
	var errs []error
	for _, r := range m.results {
		errs = append(errs, r.err)
	}
	if len(m.results) < len(m.feeds) {
		errs = append(errs, errors.New("download cancelled"))
	}
	return errors.Join(errs...)
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func formatSpeed(speed float64) string {
	return fmt.Sprintf("%s/s", formatBytes(int64(speed)))
}

// Download fetches every feed into dir with an interactive progress view.
func Download(feeds []Feed, dir string) error {
	if len(feeds) == 0 {
		return errors.New("no feeds configured")
	}
	m := newDownloadModel(feeds, dir, &http.Client{Timeout: 2 * time.Minute})
	p := tea.NewProgram(m, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return err
	}
	return final.(downloadModel).err()
}
