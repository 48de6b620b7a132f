package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"spanview/internal/tracebuild"
	"spanview/internal/tracefmt"
)

// Options controls the outline viewer.
type Options struct {
	MinSpan   int  // minimum visible span cells in bars
	ExpandAll bool // start with every span expanded
}

type outlineModel struct {
	title string
	trace *tracebuild.Trace

	// Interactive state is only the expanded-id set and the cursor;
	// visible rows are recomputed from the immutable trace on every
	// change, never by mutating trace data.
	expanded map[uint64]bool
	rows     []outlineRow
	cursor   int

	vp      viewport.Model
	width   int
	height  int
	minSpan int
	ready   bool
}

type outlineRow struct {
	id    uint64
	depth int
}

// NewOutlineModel returns a Bubble Tea model that renders the trace as
// an expandable outline with per-span timeline bars.
func NewOutlineModel(title string, tr *tracebuild.Trace, opts Options) tea.Model {
	minSpan := opts.MinSpan
	if minSpan < 1 {
		minSpan = 1
	}

	m := &outlineModel{
		title:    title,
		trace:    tr,
		expanded: make(map[uint64]bool),
		width:    80,
		height:   24,
		minSpan:  minSpan,
	}
	if opts.ExpandAll {
		m.expandAll()
	} else {
		// Roots start expanded so the first screen shows structure.
		for _, id := range tr.Roots() {
			m.expanded[id] = true
		}
	}
	m.rebuildRows()
	return m
}

func (m *outlineModel) Init() tea.Cmd {
	return nil
}

func (m *outlineModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.vp = viewport.New(msg.Width, viewportHeight(msg.Height, 3))
		m.ready = true
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			m.moveCursor(-1)
		case "down", "j":
			m.moveCursor(1)
		case "g", "home":
			m.cursor = 0
			m.refresh()
		case "G", "end":
			m.cursor = len(m.rows) - 1
			m.refresh()
		case "pgup":
			m.moveCursor(-m.vp.Height)
		case "pgdown":
			m.moveCursor(m.vp.Height)
		case "enter", " ":
			m.toggleCurrent()
		case "E":
			m.expandAll()
			m.rebuildRows()
			m.refresh()
		case "C":
			m.expanded = make(map[uint64]bool)
			m.rebuildRows()
			m.cursor = 0
			m.refresh()
		}
		return m, nil
	}
	return m, nil
}

func (m *outlineModel) View() string {
	if !m.ready {
		return "loading trace..."
	}

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	hintStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	header := fmt.Sprintf("%s — %d spans", m.title, m.trace.Len())
	if d := m.trace.Duration(); d > 0 {
		header += fmt.Sprintf(", %.1fms", float64(d.Microseconds())/1000.0)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n")
	b.WriteString(hintStyle.Render("↑/↓ move · enter toggle · E expand all · C collapse all · q quit"))
	b.WriteString("\n\n")
	b.WriteString(m.vp.View())
	return b.String()
}

func (m *outlineModel) moveCursor(delta int) {
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	m.refresh()
}

func (m *outlineModel) toggleCurrent() {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return
	}
	id := m.rows[m.cursor].id
	span, ok := m.trace.Get(id)
	if !ok || len(span.Children) == 0 {
		return
	}
	m.expanded[id] = !m.expanded[id]
	m.rebuildRows()
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	m.refresh()
}

func (m *outlineModel) expandAll() {
	m.trace.Walk(func(s *tracebuild.Span, depth int) {
		if len(s.Children) > 0 {
			m.expanded[s.ID] = true
		}
	})
}

// rebuildRows recomputes the visible row list from the trace and the
// expanded set.
func (m *outlineModel) rebuildRows() {
	m.rows = m.rows[:0]
	for _, id := range m.trace.Roots() {
		m.appendRows(id, 0)
	}
}

func (m *outlineModel) appendRows(id uint64, depth int) {
	span, ok := m.trace.Get(id)
	if !ok {
		return
	}
	m.rows = append(m.rows, outlineRow{id: id, depth: depth})
	if !m.expanded[id] {
		return
	}
	for _, child := range span.Children {
		m.appendRows(child, depth+1)
	}
}

// refresh re-renders viewport content and keeps the cursor in view.
func (m *outlineModel) refresh() {
	if !m.ready {
		return
	}
	m.vp.SetContent(m.renderRows())
	if m.cursor < m.vp.YOffset {
		m.vp.SetYOffset(m.cursor)
	}
	if m.cursor >= m.vp.YOffset+m.vp.Height {
		m.vp.SetYOffset(m.cursor - m.vp.Height + 1)
	}
}

func (m *outlineModel) renderRows() string {
	if len(m.rows) == 0 {
		return "empty trace"
	}

	durWidth := 10
	barWidth := m.width / 3
	if barWidth < 12 {
		barWidth = 12
	}
	labelWidth := m.width - barWidth - durWidth - 8
	if labelWidth < 16 {
		labelWidth = 16
	}

	var b strings.Builder
	for i, r := range m.rows {
		b.WriteString(m.renderRow(r, i == m.cursor, labelWidth, barWidth))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *outlineModel) renderRow(r outlineRow, selected bool, labelWidth, barWidth int) string {
	span, ok := m.trace.Get(r.id)
	if !ok {
		return ""
	}

	marker := "·"
	if len(span.Children) > 0 {
		if m.expanded[r.id] {
			marker = "▾"
		} else {
			marker = "▸"
		}
	}

	label := strings.Repeat("  ", r.depth) + marker + " " + tracefmt.Label(span)
	label = truncate(label, labelWidth)
	label = fmt.Sprintf("%-*s", labelWidth, label)

	dur := ""
	if d, okDur := m.trace.SpanDuration(span); okDur {
		dur = fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000.0)
	}
	dur = fmt.Sprintf("%9s", truncate(dur, 9))

	left, right := m.trace.Extent(span)
	pre, fill, post := tracefmt.SplitBar(left, right, barWidth, m.minSpan)
	bar := strings.Repeat(" ", pre) +
		barStyle(span).Render(strings.Repeat("█", fill)) +
		strings.Repeat(" ", post)

	line := fmt.Sprintf("%s %s │%s│", label, dur, bar)
	if selected {
		return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14")).Render("> ") +
			lipgloss.NewStyle().Bold(true).Render(line)
	}
	return "  " + line
}

func viewportHeight(total, header int) int {
	h := total - header
	if h < 1 {
		h = 1
	}
	return h
}

func barStyle(span *tracebuild.Span) lipgloss.Style {
	switch {
	case span.Placeholder:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	case span.EndMillis == nil:
		// Never finished: render in warning color.
		return lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	}
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}
