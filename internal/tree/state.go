package tree

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"treescroll/internal/logger"
)

// FindPath returns the loaded node with the given path.
func (m *Model) FindPath(p string) (*Node, error) {
	for _, n := range m.byID {
		if n.Path == p {
			return n, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, p)
}

// ExpandedPaths returns the paths of expanded nodes, shallowest first.
func (m *Model) ExpandedPaths() []string {
	nodes := make([]*Node, 0, len(m.expanded))
	for id := range m.expanded {
		if n, ok := m.byID[id]; ok {
			nodes = append(nodes, n)
		}
	}
	sortByDepth(nodes)
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Path
	}
	return out
}

// RestoreExpanded expands the nodes at paths, loading children on the way.
// Paths that no longer exist are skipped. It returns how many were expanded.
func (m *Model) RestoreExpanded(ctx context.Context, paths []string) (int, error) {
	ordered := append([]string(nil), paths...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return strings.Count(ordered[i], "/") < strings.Count(ordered[j], "/")
	})
	restored := 0
	for _, p := range ordered {
		n, err := m.FindPath(p)
		if err != nil {
			continue
		}
		if err := m.Expand(ctx, n.ID); err != nil {
			if ctx.Err() != nil {
				return restored, ctx.Err()
			}
			log.WithError(err).WithField("path", p).Warn("restore expand failed")
			continue
		}
		restored++
	}
	log.WithFields(logger.Fields{"requested": len(paths), "restored": restored}).Debug("expanded state restored")
	return restored, nil
}

func sortByDepth(nodes []*Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		di, dj := nodes[i].Depth(), nodes[j].Depth()
		if di != dj {
			return di < dj
		}
		return nodes[i].Path < nodes[j].Path
	})
}
