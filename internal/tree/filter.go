package tree

import (
	"strings"

	"treescroll/internal/events"
	"treescroll/internal/logger"

	"github.com/sahilm/fuzzy"
)

// Filter hides every loaded node whose name does not fuzzy-match query and
// that has no matching descendant. Ancestors of matches are expanded so the
// matches become visible. An empty query clears the filter. It returns the
// number of matching nodes.
func (m *Model) Filter(query string) int {
	query = strings.TrimSpace(query)
	if query == m.query {
		return m.matches
	}
	m.query = query
	n := m.applyFilter()
	log.WithFields(logger.Fields{"query": query, "matches": n}).Debug("filter applied")
	m.bus.Publish(events.TopicHidden, query)
	return n
}

// Query returns the active filter query.
func (m *Model) Query() string { return m.query }

func (m *Model) applyFilter() int {
	m.filtered = map[string]bool{}
	m.matches = 0
	if m.query == "" {
		return 0
	}

	nodes := make([]*Node, 0, len(m.byID))
	for _, n := range m.byID {
		nodes = append(nodes, n)
	}
	matches := fuzzy.FindFrom(m.query, nodeNames(nodes))

	keep := make(map[string]bool, len(matches))
	for _, match := range matches {
		n := nodes[match.Index]
		keep[n.ID] = true
		for p := n.Parent; p != nil; p = p.Parent {
			keep[p.ID] = true
			m.expanded[p.ID] = true
		}
	}
	for _, n := range nodes {
		if !keep[n.ID] {
			m.filtered[n.ID] = true
		}
	}
	m.matches = len(matches)
	return m.matches
}

// nodeNames adapts a node slice to fuzzy.Source.
type nodeNames []*Node

func (s nodeNames) String(i int) string { return s[i].Name }
func (s nodeNames) Len() int            { return len(s) }
