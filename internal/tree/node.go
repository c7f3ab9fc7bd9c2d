package tree

import "github.com/google/uuid"

// Node is one entry of the tree. Children stays nil until loaded; Leaf marks
// nodes known to have none.
type Node struct {
	ID       string
	Name     string
	Path     string
	Height   float64
	Leaf     bool
	Children []*Node
	Parent   *Node

	model *Model
}

// NewNode creates a detached node with a fresh ID. A zero height is replaced
// by the model's row height when the node is attached.
func NewNode(name, path string, leaf bool) *Node {
	return &Node{
		ID:   uuid.NewString(),
		Name: name,
		Path: path,
		Leaf: leaf,
	}
}

func (n *Node) SelfHeight() float64 { return n.Height }

// HasChildren reports whether the children are loaded.
func (n *Node) HasChildren() bool { return n.Children != nil }

func (n *Node) IsExpanded() bool {
	return n.model != nil && n.model.expanded[n.ID]
}

func (n *Node) IsHidden() bool {
	return n.model != nil && (n.model.hidden[n.ID] || n.model.filtered[n.ID])
}

// VisibleChildren returns the loaded children that are not hidden.
func (n *Node) VisibleChildren() []*Node {
	return visible(n.Children)
}

// Depth is the number of ancestors.
func (n *Node) Depth() int {
	d := 0
	for p := n.Parent; p != nil; p = p.Parent {
		d++
	}
	return d
}

// IsLastChild reports whether n is the last visible child of its parent (or
// the last visible root).
func (n *Node) IsLastChild() bool {
	var siblings []*Node
	if n.Parent != nil {
		siblings = n.Parent.VisibleChildren()
	} else if n.model != nil {
		siblings = n.model.VisibleRoots()
	}
	return len(siblings) > 0 && siblings[len(siblings)-1] == n
}

func visible(nodes []*Node) []*Node {
	out := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		if !n.IsHidden() {
			out = append(out, n)
		}
	}
	return out
}
