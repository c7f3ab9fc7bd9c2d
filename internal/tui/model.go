package tui

import (
	"context"
	"fmt"

	"treescroll/internal/config"
	"treescroll/internal/logger"
	"treescroll/internal/tree"
	"treescroll/internal/tui/render"
	"treescroll/internal/virtualscroll"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

var log = logger.Named("tui")

type Options struct {
	Tree    *tree.Model
	Config  config.Config
	Title   string
	Context context.Context
	// Copy 写入剪贴板，默认使用系统剪贴板。
	Copy func(string) error
	// InitialCursor 与 InitialY 用于恢复上次的浏览位置。
	InitialCursor string
	InitialY      float64
	// Log 覆盖虚拟滚动的日志入口，默认使用包级 logger。
	Log *logger.LogEntry
}

// Model 是树视图的 Bubble Tea 模型：pane 作为虚拟滚动的视口句柄，
// 每帧只绘制 ViewportNodes 返回的行。
type Model struct {
	ctx    context.Context
	tree   *tree.Model
	vs     *virtualscroll.VirtualScroll[*tree.Node]
	pane   *render.Pane
	cfg    config.Config
	title  string
	keys   keyMap
	help   help.Model
	filter textinput.Model
	copy   func(string) error

	width     int
	height    int
	filtering bool
	cursor    *tree.Node
	visible   []*tree.Node
	rendered  []*tree.Node
	status    string
	err       error
	selected  string
	initialY  float64
}

func New(opts Options) *Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	copyFn := opts.Copy
	if copyFn == nil {
		copyFn = clipboard.WriteAll
	}
	// y 按量化步长取整，可能与 pane 的真实偏移相差半个步长，缓冲至少一个步长才能覆盖首尾行。
	margin := opts.Config.BufferMargin
	if quantum := opts.Config.ScrollQuantum; margin < quantum {
		margin = quantum
	}
	vs := virtualscroll.New[*tree.Node](opts.Tree, virtualscroll.Options{
		Enabled:      opts.Config.VirtualScroll,
		BufferMargin: margin,
		Quantum:      opts.Config.ScrollQuantum,
		Log:          opts.Log,
	})
	vs.Init()

	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "filter"
	ti.CharLimit = 128

	m := &Model{
		ctx:      ctx,
		tree:     opts.Tree,
		vs:       vs,
		cfg:      opts.Config,
		title:    opts.Title,
		keys:     defaultKeyMap(),
		help:     help.New(),
		filter:   ti,
		copy:     copyFn,
		initialY: opts.InitialY,
	}
	m.pane = render.NewPane(0, 1, opts.Tree.RowHeight(), vs.TotalHeight)
	if opts.InitialCursor != "" {
		if n, err := opts.Tree.FindPath(opts.InitialCursor); err == nil {
			m.cursor = n
		}
	}
	m.finish()
	return m
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case tea.MouseMsg:
		m.handleMouse(msg)
	case tea.KeyMsg:
		if m.filtering {
			cmd = m.updateFilter(msg)
			break
		}
		if key.Matches(msg, m.keys.Quit) {
			m.finish()
			return m, tea.Quit
		}
		m.handleKey(msg)
	}
	m.finish()
	return m, cmd
}

// Close 释放虚拟滚动的订阅。
func (m *Model) Close() {
	m.vs.Clear()
}

// Selected 返回退出时光标所在节点的路径。
func (m *Model) Selected() string {
	return m.selected
}

// Y 返回当前量化后的滚动偏移。
func (m *Model) Y() float64 {
	return m.vs.Y()
}

// Top 返回 pane 的真实滚动偏移，用于保存会话。
func (m *Model) Top() float64 {
	return m.pane.Top()
}

func (m *Model) Err() error {
	return m.err
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width
	m.filter.Width = max(10, width-4)
	rows := max(1, height-m.chromeRows())
	m.pane.Resize(max(1, width-2), rows)
	if !m.vs.State().Attached() {
		if m.initialY > 0 {
			m.pane.WriteScrollOffset(m.initialY)
			m.initialY = 0
		}
		m.vs.SetViewport(m.pane)
		log.WithField("rows", rows).Debug("viewport attached")
		return
	}
	m.vs.State().Refresh()
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	if msg.Action != tea.MouseActionPress {
		return
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.pane.ScrollLineUp(3)
	case tea.MouseButtonWheelDown:
		m.pane.ScrollLineDown(3)
	default:
		return
	}
	m.vs.State().Refresh()
}

func (m *Model) handleKey(msg tea.KeyMsg) {
	m.status = ""
	switch {
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.PageUp):
		m.pane.ScrollPageUp()
		m.vs.State().Refresh()
		m.moveCursor(-m.pane.Rows)
	case key.Matches(msg, m.keys.PageDown):
		m.pane.ScrollPageDown()
		m.vs.State().Refresh()
		m.moveCursor(m.pane.Rows)
	case key.Matches(msg, m.keys.Home):
		m.pane.GotoTop()
		m.vs.State().Refresh()
		m.setCursor(0)
	case key.Matches(msg, m.keys.End):
		m.pane.GotoBottom()
		m.vs.State().Refresh()
		m.setCursor(len(m.visible) - 1)
	case key.Matches(msg, m.keys.Toggle):
		m.apply(func(n *tree.Node) error { return m.tree.Toggle(m.ctx, n.ID) })
	case key.Matches(msg, m.keys.Expand):
		m.apply(func(n *tree.Node) error { return m.tree.Expand(m.ctx, n.ID) })
	case key.Matches(msg, m.keys.Collapse):
		m.collapse()
	case key.Matches(msg, m.keys.ExpandAll):
		m.tree.ExpandAll()
	case key.Matches(msg, m.keys.CollapseAll):
		m.tree.CollapseAll()
	case key.Matches(msg, m.keys.Filter):
		m.filtering = true
		m.filter.SetValue(m.tree.Query())
		m.filter.CursorEnd()
		m.filter.Focus()
	case key.Matches(msg, m.keys.Copy):
		m.copyPath()
	case key.Matches(msg, m.keys.Virtual):
		m.vs.SetEnabled(!m.vs.Enabled())
		m.status = fmt.Sprintf("virtual scroll %s", onOff(m.vs.Enabled()))
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		if m.vs.State().Attached() {
			m.resize(m.width, m.height)
		}
	}
}

func (m *Model) updateFilter(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.filtering = false
		m.filter.Blur()
		m.filter.SetValue("")
		m.tree.Filter("")
		return nil
	case tea.KeyEnter:
		m.filtering = false
		m.filter.Blur()
		return nil
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	n := m.tree.Filter(m.filter.Value())
	if m.tree.Query() != "" {
		m.status = fmt.Sprintf("%d matches", n)
	}
	return cmd
}

func (m *Model) apply(fn func(n *tree.Node) error) {
	if m.cursor == nil {
		return
	}
	if err := fn(m.cursor); err != nil {
		m.err = err
		m.status = err.Error()
		log.WithError(err).Warn("tree operation failed")
	}
}

// collapse 收起当前节点；已收起时跳到父节点。
func (m *Model) collapse() {
	n := m.cursor
	if n == nil {
		return
	}
	if n.IsExpanded() {
		m.apply(func(n *tree.Node) error { return m.tree.Collapse(n.ID) })
		return
	}
	if n.Parent != nil {
		m.cursor = n.Parent
		m.vs.ScrollIntoView(m.cursor, false, m.cfg.CenterOnJump)
	}
}

func (m *Model) copyPath() {
	if m.cursor == nil {
		return
	}
	if err := m.copy(m.cursor.Path); err != nil {
		m.status = "copy failed: " + err.Error()
		log.WithError(err).Warn("clipboard write failed")
		return
	}
	m.status = "copied " + m.cursor.Path
}

func (m *Model) moveCursor(delta int) {
	idx := m.cursorIndex()
	if idx < 0 {
		idx = 0
		delta = 0
	}
	m.setCursor(idx + delta)
}

func (m *Model) setCursor(idx int) {
	if len(m.visible) == 0 {
		m.cursor = nil
		return
	}
	idx = min(max(idx, 0), len(m.visible)-1)
	m.cursor = m.visible[idx]
	m.vs.ScrollIntoView(m.cursor, false, m.cfg.CenterOnJump)
}

func (m *Model) cursorIndex() int {
	for i, n := range m.visible {
		if n == m.cursor {
			return i
		}
	}
	return -1
}

// finish 在每次更新后同步视口与渲染集合，并修正失效的光标。
func (m *Model) finish() {
	if m.pane.Clamp() {
		m.vs.State().Refresh()
	}
	m.visible = m.tree.Flatten()
	if m.cursorIndex() < 0 {
		m.reconcileCursor()
	}
	// 视口挂载前没有高度，跳过窗口计算
	if m.vs.State().Attached() {
		m.rendered = m.vs.ViewportNodes(m.visible)
	} else {
		m.rendered = nil
	}
	if m.cursor != nil {
		m.selected = m.cursor.Path
	}
}

func (m *Model) reconcileCursor() {
	if len(m.visible) == 0 {
		m.cursor = nil
		return
	}
	for p := m.cursor; p != nil; p = p.Parent {
		for _, n := range m.visible {
			if n == p {
				m.cursor = n
				return
			}
		}
	}
	m.cursor = m.visible[0]
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
