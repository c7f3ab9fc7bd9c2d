package virtualscroll

// Node is the read-only view of a tree node the layout needs. N is the
// concrete node type, typically a pointer.
type Node[N any] interface {
	comparable
	// SelfHeight is the height of the node's own row.
	SelfHeight() float64
	// HasChildren reports whether the node's children are known (loaded).
	HasChildren() bool
	IsExpanded() bool
	IsHidden() bool
	// VisibleChildren returns the children currently considered visible, in order.
	VisibleChildren() []N
}

// Extent is the vertical placement of a node: its top offset and the height of
// the node plus its visible expanded descendants.
type Extent struct {
	Position float64
	Height   float64
}

// End returns the offset just past the node's subtree.
func (e Extent) End() float64 {
	return e.Position + e.Height
}

// Layout is an immutable snapshot of node extents produced by Recalculate.
// Nodes under a collapsed ancestor have no entry.
type Layout[N Node[N]] struct {
	extents map[N]Extent
	total   float64
}

// Recalculate walks roots depth-first in pre-order and assigns each visible
// node its position and height. The returned layout's Total is the offset after
// the last root.
func Recalculate[N Node[N]](roots []N) *Layout[N] {
	l := &Layout[N]{extents: make(map[N]Extent)}
	l.total = l.positionAfter(roots, 0)
	return l
}

func (l *Layout[N]) positionAfter(nodes []N, start float64) float64 {
	pos := start
	for _, n := range nodes {
		pos = l.positionAfterNode(n, pos)
	}
	return pos
}

func (l *Layout[N]) positionAfterNode(n N, start float64) float64 {
	pos := start + n.SelfHeight()
	if n.HasChildren() && n.IsExpanded() {
		pos = l.positionAfter(n.VisibleChildren(), pos)
	}
	l.extents[n] = Extent{Position: start, Height: pos - start}
	return pos
}

// Extent returns the placement of n, or false if n was not laid out.
func (l *Layout[N]) Extent(n N) (Extent, bool) {
	if l == nil {
		return Extent{}, false
	}
	e, ok := l.extents[n]
	return e, ok
}

// Total is the content height of the whole visible tree.
func (l *Layout[N]) Total() float64 {
	if l == nil {
		return 0
	}
	return l.total
}

// Len returns the number of nodes laid out.
func (l *Layout[N]) Len() int {
	if l == nil {
		return 0
	}
	return len(l.extents)
}

// Extents returns the extents of nodes in order. Nodes missing from the layout
// get a zero Extent.
func (l *Layout[N]) Extents(nodes []N) []Extent {
	out := make([]Extent, len(nodes))
	for i, n := range nodes {
		out[i], _ = l.Extent(n)
	}
	return out
}
