package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Row 描述一个待绘制的树节点行。
type Row struct {
	Name     string
	Depth    int
	Leaf     bool
	Loaded   bool
	Expanded bool
	Selected bool
	Match    bool
}

var (
	dirStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	fileStyle     = lipgloss.NewStyle()
	matchStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#E5C07B"))
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D7A85"))
)

// Indicator 返回展开状态标记。
func Indicator(r Row) string {
	switch {
	case r.Leaf:
		return "  "
	case r.Expanded && r.Loaded:
		return "▾ "
	default:
		return "▸ "
	}
}

// RenderRow 绘制单行：缩进、展开标记与名称，超宽部分以省略号截断。
func RenderRow(r Row, width int) string {
	text := strings.Repeat("  ", r.Depth) + Indicator(r) + r.Name
	if width > 0 && runewidth.StringWidth(text) > width {
		text = runewidth.Truncate(text, width, "…")
	}
	if r.Selected {
		return selectedStyle.Render(runewidth.FillRight(text, maxInt(width, 1)))
	}
	switch {
	case r.Match:
		return matchStyle.Render(text)
	case !r.Leaf:
		return dirStyle.Render(text)
	default:
		return fileStyle.Render(text)
	}
}

// Muted 以弱化颜色绘制提示文本。
func Muted(text string) string {
	return mutedStyle.Render(text)
}

// Canvas 按行号收集可见行，未写入的行保持空白。
type Canvas struct {
	lines []string
}

// NewCanvas 创建 rows 行的画布。
func NewCanvas(rows int) *Canvas {
	return &Canvas{lines: make([]string, maxInt(rows, 0))}
}

// Set 写入第 row 行，越界时忽略并返回 false。
func (c *Canvas) Set(row int, text string) bool {
	if row < 0 || row >= len(c.lines) {
		return false
	}
	c.lines[row] = text
	return true
}

// Lines 返回全部行。
func (c *Canvas) Lines() []string {
	return c.lines
}

// String 以换行拼接全部行。
func (c *Canvas) String() string {
	return strings.Join(c.lines, "\n")
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
