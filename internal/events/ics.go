package events

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/aliments/alical/internal/log"
)

const (
	productID = "-//aliments//calendar//DE"
	uidDomain = "@aliments"
)

var (
	// ErrMissingUID is returned for VEVENTs without a UID.
	ErrMissingUID = errors.New("missing UID")
	// ErrMissingStart is returned for VEVENTs without a usable DTSTART.
	ErrMissingStart = errors.New("missing DTSTART")
)

const (
	propURL   = ical.ComponentProperty("URL")
	propHorse = ical.ComponentProperty("X-ALIMENTS-HORSE")
)

// ParseICS reads the VEVENTs of an iCalendar stream. Events that cannot be
// read are logged and skipped. Times are converted to loc; all-day events
// start at local midnight of their date.
func ParseICS(r io.Reader, source string, loc *time.Location) ([]Event, error) {
	if loc == nil {
		loc = time.Local
	}
	cal, err := ical.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("parse calendar %s: %w", source, err)
	}

	out := make([]Event, 0)
	for _, ve := range cal.Events() {
		ev, err := fromVEvent(ve, source, loc)
		if err != nil {
			log.Error("skipping vevent", err, "source", source)
			continue
		}
		out = append(out, ev)
	}
	log.Debug("ics parsed", "source", source, "events", len(out))
	return out, nil
}

func fromVEvent(ve *ical.VEvent, source string, loc *time.Location) (Event, error) {
	var ev Event
	uid := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uid == nil || uid.Value == "" {
		return ev, ErrMissingUID
	}
	ev.ID = strings.TrimSuffix(uid.Value, uidDomain)
	ev.Source = source

	ev.AllDay = isAllDay(ve.GetProperty(ical.ComponentPropertyDtStart))
	if ev.AllDay {
		start, err := ve.GetAllDayStartAt()
		if err != nil {
			return ev, fmt.Errorf("%w: %v", ErrMissingStart, err)
		}
		ev.Start = civilMidnight(start, loc)
		if end, err := ve.GetAllDayEndAt(); err == nil && end.After(start) {
			ev.End = civilMidnight(end, loc)
		} else {
			ev.End = ev.Start.AddDate(0, 0, 1)
		}
	} else {
		start, err := ve.GetStartAt()
		if err != nil {
			return ev, fmt.Errorf("%w: %v", ErrMissingStart, err)
		}
		ev.Start = start.In(loc)
		if end, err := ve.GetEndAt(); err == nil && !end.Before(start) {
			ev.End = end.In(loc)
		} else {
			ev.End = ev.Start.Add(time.Hour)
		}
	}

	ev.Title = propValue(ve, ical.ComponentPropertySummary)
	ev.Description = propValue(ve, ical.ComponentPropertyDescription)
	ev.Location = propValue(ve, ical.ComponentPropertyLocation)
	ev.URL = propValue(ve, propURL)
	ev.Horse = propValue(ve, propHorse)
	ev.RRule = propValue(ve, ical.ComponentPropertyRrule)
	return ev, nil
}

// isAllDay detects VALUE=DATE or a bare YYYYMMDD value.
func isAllDay(p *ical.IANAProperty) bool {
	if p == nil {
		return false
	}
	if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}

func civilMidnight(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func propValue(ve *ical.VEvent, prop ical.ComponentProperty) string {
	if p := ve.GetProperty(prop); p != nil {
		return p.Value
	}
	return ""
}

// WriteICS writes evs as a published iCalendar. UIDs are the event IDs in
// the @aliments domain; now stamps every VEVENT.
func WriteICS(w io.Writer, evs []Event, now time.Time) error {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	for _, e := range evs {
		uid := e.ID
		if !strings.Contains(uid, "@") {
			uid += uidDomain
		}
		ve := cal.AddEvent(uid)
		ve.SetDtStampTime(now)
		if e.AllDay {
			end := e.End
			if !end.After(e.Start) {
				end = e.Start.AddDate(0, 0, 1)
			}
			ve.SetAllDayStartAt(e.Start)
			ve.SetAllDayEndAt(end)
		} else {
			ve.SetStartAt(e.Start)
			ve.SetEndAt(e.End)
		}
		ve.SetSummary(e.Title)
		if e.Description != "" {
			ve.SetDescription(e.Description)
		}
		if e.Location != "" {
			ve.SetLocation(e.Location)
		}
		if e.URL != "" {
			ve.SetProperty(propURL, e.URL)
		}
		if e.Horse != "" {
			ve.SetProperty(propHorse, e.Horse)
		}
		if e.RRule != "" {
			ve.AddProperty(ical.ComponentPropertyRrule, e.RRule)
		}
	}

	if _, err := io.WriteString(w, cal.Serialize()); err != nil {
		return fmt.Errorf("write calendar: %w", err)
	}
	return nil
}
