package tui

import (
	"fmt"
	"math"
	"strings"

	"treescroll/internal/tui/render"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FAFAFA")).Background(lipgloss.Color("#7D56F4")).Padding(0, 1)
	paneStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#5E6472"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D7A85"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#E06C75"))
)

// 标题、边框上下两行与状态行。
const fixedChromeRows = 4

func (m *Model) chromeRows() int {
	return fixedChromeRows + lipgloss.Height(m.help.View(m.keys))
}

func (m *Model) View() string {
	if !m.vs.State().Attached() {
		return "loading…"
	}
	sections := []string{
		m.renderTitle(),
		paneStyle.Width(m.pane.Width).Render(m.renderBody()),
		m.statusLine(),
		m.help.View(m.keys),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) renderTitle() string {
	title := m.title
	if title == "" {
		title = "treescroll"
	}
	return titleStyle.Render(runewidth.Truncate(title, max(1, m.width-2), "…"))
}

// renderBody 只绘制渲染集合中落在可见行范围内的节点。
func (m *Model) renderBody() string {
	canvas := render.NewCanvas(m.pane.Rows)
	layout := m.vs.Layout()
	unit := m.pane.Unit()
	top := m.pane.TopRow()
	query := m.tree.Query()
	for _, n := range m.rendered {
		ext, ok := layout.Extent(n)
		if !ok {
			continue
		}
		row := int(math.Round(ext.Position/unit)) - top
		line := render.RenderRow(render.Row{
			Name:     n.Name,
			Depth:    n.Depth(),
			Leaf:     n.Leaf,
			Loaded:   n.HasChildren(),
			Expanded: n.IsExpanded(),
			Selected: n == m.cursor,
			Match:    query != "" && matches(query, n.Name),
		}, m.pane.Width)
		canvas.Set(row, line)
	}
	if len(m.visible) == 0 {
		canvas.Set(0, render.Muted("(empty)"))
	}
	return canvas.String()
}

func (m *Model) statusLine() string {
	if m.filtering {
		return m.filter.View()
	}
	parts := []string{
		fmt.Sprintf("y=%.0f", m.vs.Y()),
		fmt.Sprintf("total=%.0f", m.vs.TotalHeight()),
		fmt.Sprintf("rendered=%d/%d", len(m.rendered), len(m.visible)),
		"virtual " + onOff(m.vs.Enabled()),
	}
	if q := m.tree.Query(); q != "" {
		parts = append(parts, "filter="+q)
	}
	line := strings.Join(parts, "  ")
	if m.status != "" {
		line += "  " + m.status
	}
	line = runewidth.Truncate(line, max(1, m.width), "…")
	if m.err != nil && m.status == m.err.Error() {
		return errorStyle.Render(line)
	}
	return statusStyle.Render(line)
}

func matches(query, name string) bool {
	return len(fuzzy.Find(query, []string{name})) > 0
}
