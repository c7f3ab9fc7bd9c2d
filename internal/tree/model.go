package tree

import (
	"context"
	"errors"
	"fmt"

	"treescroll/internal/events"
	"treescroll/internal/logger"
)

// ErrNotFound is returned for unknown node IDs.
var ErrNotFound = errors.New("tree: node not found")

// Loader fetches the children of a node on demand.
type Loader interface {
	LoadChildren(ctx context.Context, n *Node) ([]*Node, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, n *Node) ([]*Node, error)

func (f LoaderFunc) LoadChildren(ctx context.Context, n *Node) ([]*Node, error) {
	return f(ctx, n)
}

// Options configures a Model.
type Options struct {
	RowHeight float64
	Loader    Loader
	Bus       *events.Bus
}

// Model owns the nodes together with their expanded and hidden state and
// publishes every structural change on its bus. It is not safe for concurrent
// use.
type Model struct {
	roots     []*Node
	byID      map[string]*Node
	expanded  map[string]bool
	hidden    map[string]bool
	filtered  map[string]bool
	query     string
	matches   int
	loader    Loader
	bus       *events.Bus
	rowHeight float64
}

func New(opts Options) *Model {
	if opts.RowHeight <= 0 {
		opts.RowHeight = 1
	}
	if opts.Bus == nil {
		opts.Bus = events.NewBus()
	}
	return &Model{
		byID:      map[string]*Node{},
		expanded:  map[string]bool{},
		hidden:    map[string]bool{},
		filtered:  map[string]bool{},
		loader:    opts.Loader,
		bus:       opts.Bus,
		rowHeight: opts.RowHeight,
	}
}

func (m *Model) Bus() *events.Bus { return m.bus }

func (m *Model) RowHeight() float64 { return m.rowHeight }

// Roots returns every root, hidden ones included.
func (m *Model) Roots() []*Node { return m.roots }

// VisibleRoots returns the roots that are not hidden.
func (m *Model) VisibleRoots() []*Node { return visible(m.roots) }

// SetRoots replaces the whole tree. Expanded and hidden state is reset.
func (m *Model) SetRoots(roots []*Node) {
	m.byID = map[string]*Node{}
	m.expanded = map[string]bool{}
	m.hidden = map[string]bool{}
	m.filtered = map[string]bool{}
	m.query = ""
	m.matches = 0
	for _, r := range roots {
		r.Parent = nil
		m.attach(r)
	}
	m.roots = roots
	log.WithField("roots", len(roots)).Debug("roots replaced")
	m.bus.Publish(events.TopicRoots, len(roots))
}

func (m *Model) attach(n *Node) {
	n.model = m
	if n.Height <= 0 {
		n.Height = m.rowHeight
	}
	m.byID[n.ID] = n
	for _, c := range n.Children {
		c.Parent = n
		m.attach(c)
	}
}

// Find returns the node with the given ID.
func (m *Model) Find(id string) (*Node, error) {
	n, ok := m.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return n, nil
}

// Len returns the number of loaded nodes.
func (m *Model) Len() int { return len(m.byID) }

// Expand expands the node, loading its children first when needed.
func (m *Model) Expand(ctx context.Context, id string) error {
	n, err := m.Find(id)
	if err != nil {
		return err
	}
	if n.Leaf {
		return nil
	}
	if n.Children == nil && m.loader != nil {
		if err := m.LoadChildren(ctx, id); err != nil {
			return err
		}
	}
	if m.expanded[id] {
		return nil
	}
	m.expanded[id] = true
	m.bus.Publish(events.TopicExpanded, id)
	return nil
}

// Collapse collapses the node. Collapsing a collapsed node is a no-op.
func (m *Model) Collapse(id string) error {
	if _, err := m.Find(id); err != nil {
		return err
	}
	if !m.expanded[id] {
		return nil
	}
	delete(m.expanded, id)
	m.bus.Publish(events.TopicExpanded, id)
	return nil
}

// Toggle flips the expanded state of the node.
func (m *Model) Toggle(ctx context.Context, id string) error {
	if m.expanded[id] {
		return m.Collapse(id)
	}
	return m.Expand(ctx, id)
}

// ExpandAll expands every loaded node with children. It does not load.
func (m *Model) ExpandAll() {
	changed := false
	for id, n := range m.byID {
		if len(n.Children) > 0 && !m.expanded[id] {
			m.expanded[id] = true
			changed = true
		}
	}
	if changed {
		m.bus.Publish(events.TopicExpanded, nil)
	}
}

// CollapseAll collapses every node.
func (m *Model) CollapseAll() {
	if len(m.expanded) == 0 {
		return
	}
	m.expanded = map[string]bool{}
	m.bus.Publish(events.TopicExpanded, nil)
}

// Hide marks the node hidden.
func (m *Model) Hide(id string) error {
	return m.setHidden(id, true)
}

// Show clears the node's hidden mark.
func (m *Model) Show(id string) error {
	return m.setHidden(id, false)
}

func (m *Model) setHidden(id string, hidden bool) error {
	if _, err := m.Find(id); err != nil {
		return err
	}
	if m.hidden[id] == hidden {
		return nil
	}
	if hidden {
		m.hidden[id] = true
	} else {
		delete(m.hidden, id)
	}
	m.bus.Publish(events.TopicHidden, id)
	return nil
}

// LoadChildren asks the loader for the node's children and attaches them.
func (m *Model) LoadChildren(ctx context.Context, id string) error {
	n, err := m.Find(id)
	if err != nil {
		return err
	}
	if m.loader == nil {
		return fmt.Errorf("load children of %s: no loader configured", n.Name)
	}
	children, err := m.loader.LoadChildren(ctx, n)
	if err != nil {
		return fmt.Errorf("load children of %s: %w", n.Name, err)
	}
	if children == nil {
		children = []*Node{}
	}
	for _, c := range n.Children {
		m.detach(c)
	}
	n.Children = children
	for _, c := range children {
		c.Parent = n
		m.attach(c)
	}
	if m.query != "" {
		m.applyFilter()
	}
	log.WithFields(logger.Fields{"node": n.Name, "children": len(children)}).Debug("children loaded")
	m.bus.Publish(events.TopicChildrenLoaded, id)
	return nil
}

func (m *Model) detach(n *Node) {
	delete(m.byID, n.ID)
	delete(m.expanded, n.ID)
	delete(m.hidden, n.ID)
	delete(m.filtered, n.ID)
	for _, c := range n.Children {
		m.detach(c)
	}
}

// Flatten returns the visible nodes in depth-first pre-order, the order the
// layout assigns positions in.
func (m *Model) Flatten() []*Node {
	out := make([]*Node, 0, len(m.byID))
	var walk func(nodes []*Node)
	walk = func(nodes []*Node) {
		for _, n := range visible(nodes) {
			out = append(out, n)
			if n.Children != nil && m.expanded[n.ID] {
				walk(n.Children)
			}
		}
	}
	walk(m.roots)
	return out
}
