package render

import (
	"math"

	"treescroll/internal/virtualscroll"
)

// Pane 是树视图的滚动容器，实现 virtualscroll.Viewport。偏移量以布局单位计，
// 每个终端行对应 unit 个布局单位。
type Pane struct {
	Width   int
	Rows    int
	unit    float64
	top     float64
	left    float64
	content func() float64
}

// NewPane 创建视口；content 返回当前内容总高度。
func NewPane(width, rows int, unit float64, content func() float64) *Pane {
	if unit <= 0 {
		unit = 1
	}
	return &Pane{Width: width, Rows: rows, unit: unit, content: content}
}

// ReadViewportGeometry 实现 virtualscroll.Viewport。
func (p *Pane) ReadViewportGeometry() virtualscroll.Geometry {
	return virtualscroll.Geometry{ScrollLeft: p.left, ScrollTop: p.top, Height: p.Height()}
}

// WriteScrollOffset 实现 virtualscroll.Viewport，写入值按行对齐并限制在内容范围内。
func (p *Pane) WriteScrollOffset(top float64) {
	p.top = p.clampTop(math.Floor(top/p.unit) * p.unit)
}

// Height 返回视口高度（布局单位）。
func (p *Pane) Height() float64 {
	return float64(p.Rows) * p.unit
}

// Unit 返回每行的布局单位。
func (p *Pane) Unit() float64 { return p.unit }

// Top 返回当前滚动偏移。
func (p *Pane) Top() float64 { return p.top }

// TopRow 返回首个可见行号。
func (p *Pane) TopRow() int {
	return int(math.Round(p.top / p.unit))
}

// Resize 更新宽高，返回是否发生变化。
func (p *Pane) Resize(width, rows int) bool {
	if rows < 1 {
		rows = 1
	}
	if p.Width == width && p.Rows == rows {
		return false
	}
	p.Width = width
	p.Rows = rows
	p.Clamp()
	return true
}

// ScrollLineDown 下滚 n 行。
func (p *Pane) ScrollLineDown(n int) {
	p.WriteScrollOffset(p.top + float64(n)*p.unit)
}

// ScrollLineUp 上滚 n 行。
func (p *Pane) ScrollLineUp(n int) {
	p.WriteScrollOffset(p.top - float64(n)*p.unit)
}

// ScrollPageDown 下翻一页。
func (p *Pane) ScrollPageDown() {
	p.ScrollLineDown(maxInt(1, p.Rows))
}

// ScrollPageUp 上翻一页。
func (p *Pane) ScrollPageUp() {
	p.ScrollLineUp(maxInt(1, p.Rows))
}

// GotoTop 跳转顶部。
func (p *Pane) GotoTop() {
	p.top = 0
}

// GotoBottom 跳转底部。
func (p *Pane) GotoBottom() {
	p.top = p.maxTop()
}

// AtBottom 判断是否已滚动到底部。
func (p *Pane) AtBottom() bool {
	return p.top >= p.maxTop()
}

// Clamp 在内容收缩后修正偏移，返回是否发生变化。
func (p *Pane) Clamp() bool {
	next := p.clampTop(p.top)
	if next == p.top {
		return false
	}
	p.top = next
	return true
}

func (p *Pane) clampTop(top float64) float64 {
	if top > p.maxTop() {
		top = p.maxTop()
	}
	if top < 0 {
		top = 0
	}
	return top
}

func (p *Pane) maxTop() float64 {
	total := 0.0
	if p.content != nil {
		total = p.content()
	}
	// 按行向上取整，保证最后一行可以完整滚入视口
	rows := math.Ceil(total/p.unit) - float64(p.Rows)
	return math.Max(0, rows*p.unit)
}
