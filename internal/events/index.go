package events

import (
	"slices"
	"sync"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/aliments/alical/internal/log"
)

type dayKey struct {
	y int
	m time.Month
	d int
}

func keyOf(t time.Time) dayKey {
	y, m, d := t.Date()
	return dayKey{y, m, d}
}

type recurrence struct {
	ev   Event
	rule *rrule.RRule
}

// Index answers which events start on a calendar day. Single events are
// bucketed by their local start date; recurring ones are expanded per day
// on first request and cached. It is safe for concurrent readers.
type Index struct {
	loc       *time.Location
	byDay     map[dayKey][]Event
	recurring []recurrence
	total     int

	mu    sync.RWMutex
	cache map[dayKey][]Event
}

// NewIndex builds an index over one or more event sets, keyed by local
// dates in loc.
func NewIndex(loc *time.Location, sets ...[]Event) *Index {
	if loc == nil {
		loc = time.Local
	}
	x := &Index{
		loc:   loc,
		byDay: make(map[dayKey][]Event),
		cache: make(map[dayKey][]Event),
	}
	for _, set := range sets {
		for _, e := range set {
			x.add(e)
		}
	}
	return x
}

func (x *Index) add(e Event) {
	e.Start = e.Start.In(x.loc)
	e.End = e.End.In(x.loc)
	x.total++
	if e.Recurring() {
		r, err := rrule.StrToRRule(e.RRule)
		if err == nil {
			r.DTStart(e.Start)
			x.recurring = append(x.recurring, recurrence{ev: e, rule: r})
			return
		}
		log.Error("invalid recurrence, showing first occurrence only", err, "id", e.ID, "rrule", e.RRule)
	}
	k := keyOf(e.Start)
	x.byDay[k] = append(x.byDay[k], e)
}

// Len returns the number of indexed events, counting a series once.
func (x *Index) Len() int {
	return x.total
}

// EventsOn returns the events starting on day's calendar date, ordered by
// start time. The returned slice must not be modified.
func (x *Index) EventsOn(day time.Time) []Event {
	k := keyOf(day.In(x.loc))

	x.mu.RLock()
	cached, ok := x.cache[k]
	x.mu.RUnlock()
	if ok {
		return cached
	}

	start := time.Date(k.y, k.m, k.d, 0, 0, 0, 0, x.loc)
	end := start.AddDate(0, 0, 1).Add(-time.Second)

	out := slices.Clone(x.byDay[k])
	for _, rc := range x.recurring {
		for _, t := range rc.rule.Between(start, end, true) {
			occ := rc.ev
			occ.Start = t.In(x.loc)
			occ.End = occ.Start.Add(rc.ev.Duration())
			out = append(out, occ)
		}
	}
	slices.SortStableFunc(out, func(a, b Event) int {
		return a.Start.Compare(b.Start)
	})

	x.mu.Lock()
	x.cache[k] = out
	x.mu.Unlock()
	return out
}
