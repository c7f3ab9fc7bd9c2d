package tui

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"treescroll/internal/config"
	"treescroll/internal/logger"
	"treescroll/internal/tree"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
)

func flatTree(t *testing.T, n int) *tree.Model {
	t.Helper()
	m := tree.New(tree.Options{RowHeight: 25})
	roots := make([]*tree.Node, n)
	for i := range roots {
		name := fmt.Sprintf("node-%03d", i)
		roots[i] = tree.NewNode(name, "/"+name, true)
	}
	m.SetRoots(roots)
	return m
}

func newTestModel(t *testing.T, tm *tree.Model, copied *[]string) *Model {
	t.Helper()
	m := New(Options{
		Tree:   tm,
		Config: config.Default(),
		Copy: func(s string) error {
			if copied != nil {
				*copied = append(*copied, s)
			}
			return nil
		},
	})
	t.Cleanup(m.Close)
	return m
}

func send(m *Model, msgs ...tea.Msg) {
	for _, msg := range msgs {
		m.Update(msg)
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModelRendersNothingBeforeFirstResize(t *testing.T) {
	m := newTestModel(t, flatTree(t, 10), nil)
	if got := m.View(); got != "loading…" {
		t.Fatalf("View before resize = %q", got)
	}
	if len(m.rendered) != 0 {
		t.Fatalf("expected no rendered nodes without a viewport, got %d", len(m.rendered))
	}
}

func TestModelRendersBufferedWindow(t *testing.T) {
	m := newTestModel(t, flatTree(t, 100), nil)
	send(m, tea.WindowSizeMsg{Width: 80, Height: 20})

	rows := m.pane.Rows
	if rows < 1 {
		t.Fatalf("pane rows = %d", rows)
	}
	// 每行 25 个单位，上下各缓冲 300，即 12 行。
	want := rows + 13
	if len(m.rendered) != want {
		t.Fatalf("rendered = %d, want %d (rows=%d)", len(m.rendered), want, rows)
	}
	if m.rendered[0] != m.visible[0] {
		t.Fatalf("window must start at the first node")
	}
	if !strings.Contains(m.View(), "node-000") {
		t.Fatalf("view missing first row")
	}
	if strings.Contains(m.View(), "node-099") {
		t.Fatalf("view must not contain rows outside the window")
	}
}

func TestModelEndScrollsToBottom(t *testing.T) {
	m := newTestModel(t, flatTree(t, 100), nil)
	send(m, tea.WindowSizeMsg{Width: 80, Height: 20}, runes("G"))

	last := m.visible[len(m.visible)-1]
	if m.cursor != last {
		t.Fatalf("cursor = %v, want last node", m.cursor.Name)
	}
	if m.rendered[len(m.rendered)-1] != last {
		t.Fatalf("last node must be rendered")
	}
	maxY := m.vs.TotalHeight() - m.pane.Height()
	if m.vs.Y() > maxY {
		t.Fatalf("y = %v exceeds max %v", m.vs.Y(), maxY)
	}
	if !strings.Contains(m.View(), "node-099") {
		t.Fatalf("view missing last row")
	}
}

func TestModelCursorMovesAndScrollsIntoView(t *testing.T) {
	m := newTestModel(t, flatTree(t, 100), nil)
	send(m, tea.WindowSizeMsg{Width: 80, Height: 20})
	if m.cursor != m.visible[0] {
		t.Fatalf("cursor should start at first node")
	}
	send(m, tea.KeyMsg{Type: tea.KeyDown}, runes("j"))
	if m.cursor != m.visible[2] {
		t.Fatalf("cursor = %s, want node-002", m.cursor.Name)
	}

	for i := 0; i < 40; i++ {
		send(m, tea.KeyMsg{Type: tea.KeyDown})
	}
	ext, _ := m.vs.Layout().Extent(m.cursor)
	y := m.vs.Y()
	if ext.Position < y || ext.Position+m.cursor.SelfHeight() > y+m.pane.Height() {
		t.Fatalf("cursor at %v outside viewport [%v, %v)", ext.Position, y, y+m.pane.Height())
	}
	send(m, tea.KeyMsg{Type: tea.KeyUp})
	if m.cursor != m.visible[41] {
		t.Fatalf("cursor = %s, want node-041", m.cursor.Name)
	}
}

func TestModelMouseWheelQuantizesOffset(t *testing.T) {
	m := newTestModel(t, flatTree(t, 100), nil)
	send(m, tea.WindowSizeMsg{Width: 80, Height: 20})
	send(m, tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonWheelDown})

	if m.pane.Top() != 75 {
		t.Fatalf("pane top = %v, want 75", m.pane.Top())
	}
	if m.vs.State().YBlocks() != 2 || m.vs.Y() != 100 {
		t.Fatalf("y = %v (blocks %d), want 100", m.vs.Y(), m.vs.State().YBlocks())
	}
}

func TestModelToggleVirtualScroll(t *testing.T) {
	m := newTestModel(t, flatTree(t, 100), nil)
	send(m, tea.WindowSizeMsg{Width: 80, Height: 20}, runes("v"))
	if m.vs.Enabled() {
		t.Fatalf("expected virtual scroll disabled")
	}
	if len(m.rendered) != 100 {
		t.Fatalf("rendered = %d, want all 100 nodes", len(m.rendered))
	}
	send(m, runes("v"))
	if len(m.rendered) == 100 {
		t.Fatalf("expected windowing after re-enabling")
	}
}

func TestModelFilterAndClear(t *testing.T) {
	m := newTestModel(t, flatTree(t, 100), nil)
	send(m, tea.WindowSizeMsg{Width: 80, Height: 20}, runes("/"), runes("042"))
	if !m.filtering {
		t.Fatalf("expected filter mode")
	}
	if len(m.visible) != 1 || m.visible[0].Name != "node-042" {
		t.Fatalf("visible after filter = %d", len(m.visible))
	}
	if m.cursor != m.visible[0] {
		t.Fatalf("cursor should move to the only match")
	}
	if m.vs.TotalHeight() != 25 {
		t.Fatalf("total = %v, want 25", m.vs.TotalHeight())
	}

	send(m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.filtering || m.tree.Query() != "" {
		t.Fatalf("esc should clear the filter")
	}
	if len(m.visible) != 100 {
		t.Fatalf("visible after clear = %d", len(m.visible))
	}
}

func TestModelExpandLoadsChildren(t *testing.T) {
	loader := tree.LoaderFunc(func(_ context.Context, n *tree.Node) ([]*tree.Node, error) {
		return []*tree.Node{
			tree.NewNode("a.go", n.Path+"/a.go", true),
			tree.NewNode("b.go", n.Path+"/b.go", true),
		}, nil
	})
	tm := tree.New(tree.Options{RowHeight: 25, Loader: loader})
	tm.SetRoots([]*tree.Node{tree.NewNode("src", "/src", false), tree.NewNode("go.mod", "/go.mod", true)})

	m := newTestModel(t, tm, nil)
	send(m, tea.WindowSizeMsg{Width: 80, Height: 20}, tea.KeyMsg{Type: tea.KeyEnter})
	if len(m.visible) != 4 {
		t.Fatalf("visible = %d, want 4", len(m.visible))
	}
	if m.vs.TotalHeight() != 100 {
		t.Fatalf("total = %v, want 100", m.vs.TotalHeight())
	}

	send(m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyLeft})
	if m.cursor.Name != "src" {
		t.Fatalf("left on a child should jump to its parent, cursor = %s", m.cursor.Name)
	}
	send(m, tea.KeyMsg{Type: tea.KeyLeft})
	if len(m.visible) != 2 {
		t.Fatalf("visible after collapse = %d, want 2", len(m.visible))
	}
}

func TestModelExpandErrorIsReported(t *testing.T) {
	loader := tree.LoaderFunc(func(context.Context, *tree.Node) ([]*tree.Node, error) {
		return nil, fmt.Errorf("permission denied")
	})
	tm := tree.New(tree.Options{RowHeight: 25, Loader: loader})
	tm.SetRoots([]*tree.Node{tree.NewNode("secret", "/secret", false)})

	m := newTestModel(t, tm, nil)
	send(m, tea.WindowSizeMsg{Width: 80, Height: 20}, tea.KeyMsg{Type: tea.KeyEnter})
	if m.Err() == nil || !strings.Contains(m.status, "permission denied") {
		t.Fatalf("expected loader error in status, got %q", m.status)
	}
}

func TestModelCopyPath(t *testing.T) {
	var copied []string
	m := newTestModel(t, flatTree(t, 3), &copied)
	send(m, tea.WindowSizeMsg{Width: 80, Height: 20}, tea.KeyMsg{Type: tea.KeyDown}, runes("y"))
	if len(copied) != 1 || copied[0] != "/node-001" {
		t.Fatalf("copied = %v", copied)
	}
	if m.Selected() != "/node-001" {
		t.Fatalf("Selected = %q", m.Selected())
	}
}

func TestModelQuit(t *testing.T) {
	m := newTestModel(t, flatTree(t, 3), nil)
	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}

func TestModelRestoresCursorAndOffset(t *testing.T) {
	tm := flatTree(t, 100)
	m := New(Options{
		Tree:          tm,
		Config:        config.Default(),
		InitialCursor: "/node-060",
		InitialY:      1400,
	})
	t.Cleanup(m.Close)
	if m.cursor == nil || m.cursor.Name != "node-060" {
		t.Fatalf("cursor not restored")
	}
	send(m, tea.WindowSizeMsg{Width: 80, Height: 20})
	if m.pane.Top() != 1400 || m.Y() != 1400 {
		t.Fatalf("offset not restored: pane=%v y=%v", m.pane.Top(), m.Y())
	}
	if !strings.Contains(m.View(), "node-060") {
		t.Fatalf("restored cursor row not on screen")
	}
}

func TestModelSmallMarginStillDrawsEdgeRows(t *testing.T) {
	tests := []struct {
		name  string
		lines int
	}{
		{name: "one row, y rounds up", lines: 1},
		{name: "three rows, y rounds up", lines: 3},
		{name: "two rows, y exact", lines: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.BufferMargin = 0
			m := New(Options{Tree: flatTree(t, 100), Config: cfg})
			t.Cleanup(m.Close)
			send(m, tea.WindowSizeMsg{Width: 80, Height: 20})
			if m.vs.BufferMargin() < cfg.ScrollQuantum {
				t.Fatalf("margin = %v, want at least one quantum %v", m.vs.BufferMargin(), cfg.ScrollQuantum)
			}

			m.pane.ScrollLineDown(tt.lines)
			m.vs.State().Refresh()
			m.finish()

			top := m.pane.TopRow()
			bottom := top + m.pane.Rows - 1
			view := m.View()
			for _, row := range []int{top, bottom} {
				name := fmt.Sprintf("node-%03d", row)
				if !strings.Contains(view, name) {
					t.Fatalf("pane top=%v y=%v: row %s not drawn", m.pane.Top(), m.vs.Y(), name)
				}
			}
		})
	}
}

func TestModelDoesNotWarnBeforeViewportAttached(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetFormatter(logger.PlainFormatter{})
	l.SetLevel(logrus.DebugLevel)

	m := New(Options{Tree: flatTree(t, 10), Config: config.Default(), Log: logrus.NewEntry(l)})
	t.Cleanup(m.Close)
	send(m, tea.KeyMsg{Type: tea.KeyDown})
	if strings.Contains(buf.String(), "no viewport") {
		t.Fatalf("unexpected warning before the first resize:\n%s", buf.String())
	}

	send(m, tea.WindowSizeMsg{Width: 80, Height: 20})
	if len(m.rendered) == 0 {
		t.Fatalf("expected rendered rows after attach")
	}
}

func TestModelTopKeepsUnquantizedOffset(t *testing.T) {
	m := newTestModel(t, flatTree(t, 100), nil)
	send(m, tea.WindowSizeMsg{Width: 80, Height: 20})
	send(m, tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonWheelDown})
	if m.Top() != 75 {
		t.Fatalf("Top = %v, want 75", m.Top())
	}
	if m.Y() != 100 {
		t.Fatalf("Y = %v, want quantized 100", m.Y())
	}

	restored := New(Options{Tree: flatTree(t, 100), Config: config.Default(), InitialY: m.Top()})
	t.Cleanup(restored.Close)
	send(restored, tea.WindowSizeMsg{Width: 80, Height: 20})
	if restored.Top() != 75 {
		t.Fatalf("restored Top = %v, want 75", restored.Top())
	}
}
