// Package tui is the interactive calendar: a continuous month view backed by
// the scroll package, plus day and week timelines.
package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aliments/alical/internal/calendar"
	"github.com/aliments/alical/internal/events"
	"github.com/aliments/alical/internal/locale"
	"github.com/aliments/alical/internal/log"
	"github.com/aliments/alical/internal/render"
	"github.com/aliments/alical/internal/scroll"
)

const (
	wheelStep   = 3
	titleLines  = 1
	footerLines = 2
)

var errBadInput = errors.New("expected year, or year and month")

type inputMode int

const (
	inputNone inputMode = iota
	inputDate
	inputYearMonth
)

// Options configure the interactive UI.
type Options struct {
	Service   *calendar.Service
	Formatter *locale.Formatter
	Scroll    scroll.Options
	CellLines int
	Lunar     bool
	// Start, if set, is targeted instead of today.
	Start time.Time
	// Reload rebuilds the event index after the store or a feed changed.
	Reload  func() (calendar.EventSource, error)
	Watcher *events.Watcher

	// Feeds are re-downloaded on the RefreshSpec cron schedule into FeedDir.
	Feeds       []events.Feed
	FeedDir     string
	RefreshSpec string
}

// frameMsg is the next frame: delivered after the current update, once the
// month content reflects the materialized range.
type frameMsg struct{}

func nextFrame() tea.Msg {
	return frameMsg{}
}

// Run starts the interactive Bubble Tea UI.
func Run(opts Options) error {
	m, err := newModel(opts)
	if err != nil {
		return err
	}
	prog := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())

	if len(opts.Feeds) > 0 && opts.RefreshSpec != "" {
		refresher, err := events.NewRefresher(opts.RefreshSpec, opts.FeedDir, opts.Feeds, prog.Send)
		if err != nil {
			return err
		}
		refresher.Start()
		defer refresher.Stop()
	}

	_, err = prog.Run()
	return err
}

type model struct {
	svc      *calendar.Service
	fmt      *locale.Formatter
	opts     Options
	renderer *render.Renderer
	keys     keyMap
	help     help.Model

	month    *monthHost
	scroller *scroll.Scroller
	timeline viewport.Model

	width, height int
	ready         bool
	focus         time.Time
	selected      time.Time

	inputMode inputMode
	input     textinput.Model
	statusMsg string
}

func newModel(opts Options) (*model, error) {
	if opts.Service == nil {
		opts.Service = calendar.NewService()
	}
	if opts.Formatter == nil {
		f, err := locale.New(locale.Default)
		if err != nil {
			return nil, err
		}
		opts.Formatter = f
	}

	ti := textinput.New()
	ti.CharLimit = 16
	ti.Prompt = "> "

	host := newMonthHost()
	s := scroll.New(opts.Service, host, opts.Scroll)
	if !opts.Start.IsZero() {
		s.JumpTo(opts.Start)
	}
	m := &model{
		svc:      opts.Service,
		fmt:      opts.Formatter,
		opts:     opts,
		keys:     defaultKeyMap(),
		help:     help.New(),
		month:    host,
		scroller: s,
		timeline: viewport.New(0, 0),
		input:    ti,
		selected: s.Selected(),
	}
	m.renderer = render.New(m.fmt, render.Options{CellLines: opts.CellLines, Lunar: opts.Lunar})
	return m, nil
}

func (m *model) Init() tea.Cmd {
	if m.opts.Watcher != nil {
		return m.opts.Watcher.WatchCmd()
	}
	return nil
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case frameMsg:
		if m.ready {
			m.syncLayout()
			m.scroller.Frame()
		}
	case tea.KeyMsg:
		if m.inputMode != inputNone {
			return m, m.handleInputKey(msg)
		}
		if cmd := m.handleKey(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	case tea.MouseMsg:
		m.handleMouse(msg)
	case events.ChangedMsg:
		log.Debug("event file changed", "path", msg.Path, "deleted", msg.Deleted)
		m.reload()
		if m.opts.Watcher != nil {
			cmds = append(cmds, m.opts.Watcher.WatchCmd())
		}
	case events.FeedsRefreshedMsg:
		m.reload()
		if msg.Err != nil {
			m.statusMsg = msg.Err.Error()
		} else {
			m.statusMsg = fmt.Sprintf("%d feeds updated", msg.Updated)
		}
	}

	m.refresh()
	if m.ready && m.scroller.NeedsFrame() {
		cmds = append(cmds, nextFrame)
	}
	return m, tea.Batch(cmds...)
}

func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	k := m.keys
	switch {
	case key.Matches(msg, k.Quit):
		return tea.Quit
	case key.Matches(msg, k.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize(m.width, m.height)
	case key.Matches(msg, k.Up):
		m.scrollBy(-1)
	case key.Matches(msg, k.Down):
		m.scrollBy(1)
	case key.Matches(msg, k.PageUp):
		m.scrollBy(-max(m.pageHeight()/2, 1))
	case key.Matches(msg, k.PageDown):
		m.scrollBy(max(m.pageHeight()/2, 1))
	case key.Matches(msg, k.Prev):
		m.statusMsg = ""
		m.scroller.GoPrevious()
	case key.Matches(msg, k.Next):
		m.statusMsg = ""
		m.scroller.GoNext()
	case key.Matches(msg, k.Today):
		m.statusMsg = ""
		m.scroller.GoToToday()
	case key.Matches(msg, k.Day):
		m.scroller.SetGranularity(scroll.Day)
	case key.Matches(msg, k.Week):
		m.scroller.SetGranularity(scroll.Week)
	case key.Matches(msg, k.Month):
		m.scroller.SetGranularity(scroll.Month)
	case key.Matches(msg, k.Back):
		m.scroller.SetGranularity(scroll.Month)
	case key.Matches(msg, k.Select):
		m.scroller.SelectDate(m.scroller.Selected())
	case key.Matches(msg, k.Jump):
		return m.activateInput(inputDate, m.svc.Today().Format("2006-01-02"))
	case key.Matches(msg, k.YearMon):
		return m.activateInput(inputYearMonth, m.svc.Today().Format("2006 1"))
	}
	return nil
}

func (m *model) handleMouse(msg tea.MouseMsg) {
	if msg.Action != tea.MouseActionPress {
		return
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.scrollBy(-wheelStep)
	case tea.MouseButtonWheelDown:
		m.scrollBy(wheelStep)
	case tea.MouseButtonLeft:
		if m.scroller.Granularity() != scroll.Month {
			return
		}
		if date, ok := m.dateAt(msg.X, msg.Y); ok {
			m.scroller.SelectDate(date)
		}
	}
}

// dateAt maps a screen position in the month grid to a date.
func (m *model) dateAt(x, y int) (time.Time, bool) {
	line := y - titleLines - 1
	if line < 0 || line >= m.month.vp.Height {
		return time.Time{}, false
	}
	row, ok := m.month.rowAt(m.month.ScrollOffset() + line)
	if !ok {
		return time.Time{}, false
	}
	col := x / (m.renderer.GridWidth() / 7)
	if col < 0 || col > 6 {
		return time.Time{}, false
	}
	start := m.svc.WeekStartOf(m.scroller.WeekOfRow(row))
	return start.AddDate(0, 0, col), true
}

// scrollBy moves the active view. In the month view pending corrections
// land first, so the user scroll is measured against fresh geometry.
func (m *model) scrollBy(delta int) {
	if m.scroller.Granularity() != scroll.Month {
		m.timeline.SetYOffset(m.timeline.YOffset + delta)
		return
	}
	if m.scroller.NeedsFrame() {
		m.syncLayout()
		m.scroller.Frame()
	}
	m.month.SetScrollOffset(m.month.ScrollOffset() + delta)
	m.scroller.OnScroll()
}

func (m *model) pageHeight() int {
	if m.scroller.Granularity() == scroll.Month {
		return m.month.vp.Height
	}
	return m.timeline.Height
}

func (m *model) resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	m.width, m.height = width, height
	m.help.Width = width
	m.renderer = render.New(m.fmt, render.Options{
		CellWidth: render.FitCellWidth(width),
		CellLines: m.opts.CellLines,
		Lunar:     m.opts.Lunar,
	})

	footer := footerLines
	if m.help.ShowAll {
		footer += lipgloss.Height(m.help.View(m.keys)) - 1
	}
	m.month.vp.Width = width
	m.month.vp.Height = max(height-titleLines-1-footer, 1)
	m.timeline.Width = width
	m.timeline.Height = max(height-titleLines-footer, 1)

	m.month.invalidate()
	m.ready = true
	m.syncLayout()
	m.renderTimeline()
}

// syncLayout rebuilds the month content for the materialized range.
func (m *model) syncLayout() {
	if !m.ready {
		return
	}
	m.month.layout(m.scroller.Range(), m.renderer.RowHeight(), m.renderWeek)
}

func (m *model) renderWeek(week int) string {
	return m.renderer.WeekRow(m.svc.Week(week, m.focus), m.selected)
}

// refresh re-renders what the scroller state changed: dimming follows the
// header month, the selected cell is outlined, and the timelines follow
// the selected date.
func (m *model) refresh() {
	if focus, ok := m.scroller.VisibleMonth(); ok && !focus.Equal(m.focus) {
		if m.focus.IsZero() {
			m.month.invalidate()
		} else {
			m.month.invalidate(monthWeeks(m.svc, m.focus, focus)...)
		}
		m.focus = focus
	}
	if sel := m.scroller.Selected(); !sel.Equal(m.selected) {
		m.month.invalidate(m.svc.WeekOffset(m.selected), m.svc.WeekOffset(sel))
		m.selected = sel
	}
	switch {
	case !m.ready:
	case !m.scroller.NeedsFrame():
		m.syncLayout()
	default:
		// The range may have grown past the last layout; repaint the
		// offset window over the old geometry until the frame lands.
		m.month.paint(m.renderWeek)
	}
	if m.scroller.Granularity() != scroll.Month {
		m.renderTimeline()
	}
}

// monthWeeks lists the week offsets holding a day of any of the given
// months. Only those rows change their dimming when the focus moves.
func monthWeeks(svc *calendar.Service, months ...time.Time) []int {
	var weeks []int
	for _, month := range months {
		first := calendar.FirstOfMonth(month)
		from := svc.WeekOffset(first)
		to := svc.WeekOffset(first.AddDate(0, 1, -1))
		for w := from; w <= to; w++ {
			weeks = append(weeks, w)
		}
	}
	return weeks
}

func (m *model) renderTimeline() {
	if !m.ready {
		return
	}
	now := m.svc.Now()
	var content string
	switch m.scroller.Granularity() {
	case scroll.Day:
		day := m.svc.Day(m.scroller.Selected())
		content = m.renderer.DayTimeline(day, now, m.width)
		if details := m.renderer.Details(day, m.width); details != "" {
			content += "\n\n" + details
		}
	case scroll.Week:
		week := m.svc.Week(m.svc.WeekOffset(m.scroller.Selected()), time.Time{})
		content = m.renderer.WeekTimeline(week, now, m.width)
	default:
		return
	}
	m.timeline.SetContent(content)

	if m.scroller.TakeHourScroll() {
		hours := m.timeline.TotalLineCount() - render.TimelineHeaderLines
		off := scroll.HourOffset(now.Hour(), 1, hours, m.timeline.Height) + render.TimelineHeaderLines
		m.timeline.SetYOffset(off)
	}
}

func (m *model) reload() {
	if m.opts.Reload == nil {
		return
	}
	src, err := m.opts.Reload()
	if err != nil {
		log.Error("reload events", err)
		m.statusMsg = err.Error()
		return
	}
	m.svc.SetEvents(src)
	m.month.invalidate()
}

func (m *model) View() string {
	if m.inputMode != inputNone {
		return m.inputView()
	}
	if !m.ready {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(render.Title(m.scroller.Title(m.fmt)))
	sb.WriteString("\n")
	if m.scroller.Granularity() == scroll.Month {
		sb.WriteString(m.renderer.WeekdayHeader(m.svc.WeekStart()))
		sb.WriteString("\n")
		sb.WriteString(m.month.vp.View())
	} else {
		sb.WriteString(m.timeline.View())
	}
	sb.WriteString("\n")
	sb.WriteString(m.help.View(m.keys))
	sb.WriteString("\n")
	if m.statusMsg != "" {
		sb.WriteString(render.Status(m.statusMsg))
	}
	return sb.String()
}

func (m *model) handleInputKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.inputMode = inputNone
		m.statusMsg = ""
		m.input.Blur()
		return nil
	case tea.KeyEnter:
		m.applyInput()
		m.refresh()
		if m.ready && m.scroller.NeedsFrame() {
			return nextFrame
		}
		return nil
	case tea.KeyCtrlC:
		return tea.Quit
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *model) activateInput(mode inputMode, placeholder string) tea.Cmd {
	m.inputMode = mode
	m.input.SetValue("")
	m.input.Placeholder = placeholder
	m.input.CursorEnd()
	m.statusMsg = ""
	return m.input.Focus()
}

// applyInput targets the entered date. Invalid input leaves the calendar
// untouched and keeps the prompt open.
func (m *model) applyInput() {
	value := strings.TrimSpace(m.input.Value())
	var (
		date time.Time
		err  error
	)
	switch m.inputMode {
	case inputDate:
		date, err = calendar.ParseDate(value, m.svc.Now().Location())
	case inputYearMonth:
		date, err = m.parseYearMonth(value)
	}
	if err != nil {
		m.statusMsg = err.Error()
		return
	}
	m.scroller.SetGranularity(scroll.Month)
	m.scroller.JumpTo(date)
	m.statusMsg = ""
	m.inputMode = inputNone
	m.input.Blur()
}

func (m *model) parseYearMonth(value string) (time.Time, error) {
	fields := strings.Fields(value)
	if len(fields) == 0 || len(fields) > 2 {
		return time.Time{}, errBadInput
	}
	year, err := strconv.Atoi(fields[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", errBadInput, fields[0])
	}
	month := 1
	if len(fields) == 2 {
		month, err = strconv.Atoi(fields[1])
		if err != nil || month < 1 || month > 12 {
			return time.Time{}, calendar.ErrInvalidMonth
		}
	}
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, m.svc.Now().Location()), nil
}

func (m *model) inputView() string {
	var label string
	switch m.inputMode {
	case inputDate:
		label = "Go to date, e.g. 2025-10-09 or 9.10.2025 (enter / esc)"
	case inputYearMonth:
		label = "Year and month, e.g. 2025 10 (enter / esc)"
	default:
		return ""
	}
	view := lipgloss.NewStyle().Bold(true).Render(label) + "\n\n" + m.input.View()
	if m.statusMsg != "" {
		view += "\n\n" + render.Status(m.statusMsg)
	}
	return view
}
