package virtualscroll

import "treescroll/internal/events"

type testNode struct {
	name     string
	self     float64
	children []*testNode
	expanded bool
	hidden   bool
}

func (n *testNode) SelfHeight() float64 { return n.self }
func (n *testNode) HasChildren() bool   { return n.children != nil }
func (n *testNode) IsExpanded() bool    { return n.expanded }
func (n *testNode) IsHidden() bool      { return n.hidden }

func (n *testNode) VisibleChildren() []*testNode {
	return visibleOf(n.children)
}

func leaf(name string, self float64) *testNode {
	return &testNode{name: name, self: self}
}

func branch(name string, self float64, expanded bool, children ...*testNode) *testNode {
	if children == nil {
		children = []*testNode{}
	}
	return &testNode{name: name, self: self, expanded: expanded, children: children}
}

func visibleOf(nodes []*testNode) []*testNode {
	out := make([]*testNode, 0, len(nodes))
	for _, n := range nodes {
		if !n.hidden {
			out = append(out, n)
		}
	}
	return out
}

// flatten returns the visible depth-first sequence.
func flatten(nodes []*testNode) []*testNode {
	var out []*testNode
	for _, n := range visibleOf(nodes) {
		out = append(out, n)
		if n.expanded && n.children != nil {
			out = append(out, flatten(n.children)...)
		}
	}
	return out
}

func leaves(count int, self float64) []*testNode {
	out := make([]*testNode, count)
	for i := range out {
		out[i] = leaf("", self)
	}
	return out
}

type testSource struct {
	roots []*testNode
	bus   *events.Bus
}

func newTestSource(roots ...*testNode) *testSource {
	return &testSource{roots: roots, bus: events.NewBus()}
}

func (s *testSource) VisibleRoots() []*testNode { return visibleOf(s.roots) }
func (s *testSource) Bus() *events.Bus          { return s.bus }

// fakeViewport clamps writes to [0, content-height] when content is set.
type fakeViewport struct {
	left, top, height float64
	content           float64
	writes            []float64
}

func (f *fakeViewport) ReadViewportGeometry() Geometry {
	return Geometry{ScrollLeft: f.left, ScrollTop: f.top, Height: f.height}
}

func (f *fakeViewport) WriteScrollOffset(top float64) {
	f.writes = append(f.writes, top)
	if f.content > 0 {
		if top > f.content-f.height {
			top = f.content - f.height
		}
		if top < 0 {
			top = 0
		}
	}
	f.top = top
}
