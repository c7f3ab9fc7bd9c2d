package tree

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNotDir is returned when a directory tree is requested for a file.
var ErrNotDir = errors.New("tree: not a directory")

// DirLoader loads directory entries lazily: directories first, then files,
// each group sorted by name.
type DirLoader struct {
	ShowHidden bool
}

// LoadChildren implements Loader.
func (l DirLoader) LoadChildren(ctx context.Context, n *Node) ([]*Node, error) {
	return l.read(ctx, n.Path)
}

// Roots returns the entries of dir as root nodes.
func (l DirLoader) Roots(ctx context.Context, dir string) ([]*Node, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDir, dir)
	}
	return l.read(ctx, dir)
}

func (l DirLoader) read(ctx context.Context, dir string) ([]*Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].IsDir() != entries[j].IsDir() {
			return entries[i].IsDir()
		}
		return entries[i].Name() < entries[j].Name()
	})
	nodes := make([]*Node, 0, len(entries))
	for _, e := range entries {
		if !l.ShowHidden && strings.HasPrefix(e.Name(), ".") {
			continue
		}
		nodes = append(nodes, NewNode(e.Name(), filepath.Join(dir, e.Name()), !e.IsDir()))
	}
	return nodes, nil
}
