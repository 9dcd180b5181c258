package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/savioxavier/termlink"

	"github.com/aliments/alical/internal/calendar"
	"github.com/aliments/alical/internal/events"
)

var (
	notesRenderer      *glamour.TermRenderer
	notesRendererWidth int
	notesRendererPlain bool
)

// notes renders a Markdown description, falling back to the raw text.
func notes(md string, width int) string {
	if notesRenderer == nil || notesRendererWidth != width || notesRendererPlain != noColorMode {
		style := "dark"
		if noColorMode {
			style = "notty"
		}
		notesRenderer, _ = glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
		)
		notesRendererWidth = width
		notesRendererPlain = noColorMode
	}
	if notesRenderer == nil {
		return md
	}
	out, err := notesRenderer.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}

// link renders a clickable URL where the terminal supports it.
func link(url string) string {
	if noColorMode {
		return url
	}
	return termlink.Link(url, url)
}

// Details lists the events of d below the day timeline: time range, label,
// location, link and notes.
func (r *Renderer) Details(d calendar.Day, width int) string {
	if len(d.Events) == 0 {
		return ""
	}
	var b strings.Builder
	for i, e := range d.Events {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s  %s\n", r.when(e), headerStyle.Render(e.Label()))
		if e.Location != "" {
			fmt.Fprintf(&b, "  %s\n", e.Location)
		}
		if e.URL != "" {
			fmt.Fprintf(&b, "  %s\n", link(e.URL))
		}
		if e.Description != "" {
			b.WriteString(notes(e.Description, max(width-2, 20)))
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (r *Renderer) when(e events.Event) string {
	if e.AllDay {
		return r.f.AllDay()
	}
	return r.f.Clock(e.Start) + "–" + r.f.Clock(e.End)
}
