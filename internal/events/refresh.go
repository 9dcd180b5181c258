package events

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/robfig/cron/v3"

	"github.com/aliments/alical/internal/log"
)

// FeedsRefreshedMsg is sent to the program after a scheduled refresh.
type FeedsRefreshedMsg struct {
	Updated int
	Err     error
}

// Refresher re-downloads feeds on a cron schedule.
type Refresher struct {
	cron    *cron.Cron
	feeds   []Feed
	dir     string
	client  *http.Client
	timeout time.Duration
	send    func(tea.Msg)
}

// NewRefresher validates spec (standard five-field cron syntax or a
// descriptor such as "@hourly") and schedules a refresh of feeds into dir.
// Results are delivered through send, typically tea.Program.Send.
func NewRefresher(spec, dir string, feeds []Feed, send func(tea.Msg)) (*Refresher, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("refresh schedule %q: %w", spec, err)
	}
	r := &Refresher{
		cron:    cron.New(),
		feeds:   feeds,
		dir:     dir,
		client:  &http.Client{Timeout: time.Minute},
		timeout: 5 * time.Minute,
		send:    send,
	}
	if _, err := r.cron.AddFunc(spec, r.run); err != nil {
		return nil, fmt.Errorf("schedule refresh: %w", err)
	}
	return r, nil
}

// Start runs the scheduler in its own goroutine.
func (r *Refresher) Start() {
	r.cron.Start()
}

// Stop halts the scheduler and waits for a running refresh to finish.
func (r *Refresher) Stop() {
	<-r.cron.Stop().Done()
}

func (r *Refresher) run() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	msg := r.Refresh(ctx)
	if r.send != nil {
		r.send(msg)
	}
}

// Refresh downloads every feed once.
func (r *Refresher) Refresh(ctx context.Context) FeedsRefreshedMsg {
	var (
		msg  FeedsRefreshedMsg
		errs []error
	)
	for _, f := range r.feeds {
		n, err := FetchFeed(ctx, r.client, f, FeedCachePath(r.dir, f), nil)
		if err != nil {
			log.Error("feed refresh failed", err, "feed", f.Name)
			errs = append(errs, err)
			continue
		}
		log.Info("feed refreshed", "feed", f.Name, "bytes", n)
		msg.Updated++
	}
	msg.Err = errors.Join(errs...)
	return msg
}
