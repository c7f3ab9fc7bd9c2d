package tree

import (
	"fmt"
	"os"
	"path"

	"treescroll/internal/events"

	"github.com/pelletier/go-toml/v2"
)

// outlineFile is the TOML layout of an outline:
//
//	[[node]]
//	name = "docs"
//	expanded = true
//	  [[node.children]]
//	  name = "intro.md"
//	  height = 2
type outlineFile struct {
	Nodes []outlineNode `toml:"node"`
}

type outlineNode struct {
	Name     string        `toml:"name"`
	Height   float64       `toml:"height,omitempty"`
	Expanded bool          `toml:"expanded,omitempty"`
	Hidden   bool          `toml:"hidden,omitempty"`
	Children []outlineNode `toml:"children,omitempty"`
}

// LoadOutline replaces the model's roots with the tree described by the TOML
// file at p. Heights are in rows and scaled by the model's row height.
func (m *Model) LoadOutline(p string) error {
	data, err := os.ReadFile(p)
	if err != nil {
		return err
	}
	var file outlineFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse outline %s: %w", p, err)
	}

	var expanded, hidden []string
	var build func(items []outlineNode, parent string) []*Node
	build = func(items []outlineNode, parent string) []*Node {
		nodes := make([]*Node, 0, len(items))
		for _, it := range items {
			full := path.Join(parent, it.Name)
			n := NewNode(it.Name, full, len(it.Children) == 0)
			n.Height = it.Height * m.rowHeight
			if len(it.Children) > 0 {
				n.Children = build(it.Children, full)
			}
			if it.Expanded {
				expanded = append(expanded, n.ID)
			}
			if it.Hidden {
				hidden = append(hidden, n.ID)
			}
			nodes = append(nodes, n)
		}
		return nodes
	}
	roots := build(file.Nodes, "/")

	m.SetRoots(roots)
	for _, id := range expanded {
		m.expanded[id] = true
	}
	for _, id := range hidden {
		m.hidden[id] = true
	}
	if len(expanded) > 0 || len(hidden) > 0 {
		m.bus.Publish(events.TopicExpanded, nil)
	}
	return nil
}

// SaveOutline writes the loaded part of the tree, including expanded and
// hidden state, as a TOML outline.
func (m *Model) SaveOutline(p string) error {
	var dump func(nodes []*Node) []outlineNode
	dump = func(nodes []*Node) []outlineNode {
		out := make([]outlineNode, 0, len(nodes))
		for _, n := range nodes {
			out = append(out, outlineNode{
				Name:     n.Name,
				Height:   n.Height / m.rowHeight,
				Expanded: m.expanded[n.ID],
				Hidden:   m.hidden[n.ID],
				Children: dump(n.Children),
			})
		}
		return out
	}
	data, err := toml.Marshal(outlineFile{Nodes: dump(m.roots)})
	if err != nil {
		return err
	}
	return os.WriteFile(p, data, 0o644)
}
