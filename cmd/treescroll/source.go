package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"treescroll/internal/config"
	"treescroll/internal/tree"
)

// openTree 根据路径构建树：目录按需加载，.toml 视为大纲文件。
func openTree(ctx context.Context, cfg config.Config, path string) (*tree.Model, string, error) {
	if strings.TrimSpace(path) == "" {
		path = "."
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, "", fmt.Errorf("resolve %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, "", err
	}

	if info.IsDir() {
		loader := tree.DirLoader{ShowHidden: cfg.ShowHidden}
		m := tree.New(tree.Options{RowHeight: cfg.RowHeight, Loader: loader})
		roots, err := loader.Roots(ctx, abs)
		if err != nil {
			return nil, "", err
		}
		m.SetRoots(roots)
		return m, abs, nil
	}

	if !strings.EqualFold(filepath.Ext(abs), ".toml") {
		return nil, "", fmt.Errorf("%s: expected a directory or a .toml outline", path)
	}
	m := tree.New(tree.Options{RowHeight: cfg.RowHeight})
	if err := m.LoadOutline(abs); err != nil {
		return nil, "", err
	}
	return m, filepath.Base(abs), nil
}

// expandDepth 逐层展开（必要时加载）到指定深度，depth<=0 时不做任何事。
func expandDepth(ctx context.Context, m *tree.Model, depth int) error {
	level := m.VisibleRoots()
	for d := 0; d < depth && len(level) > 0; d++ {
		var next []*tree.Node
		for _, n := range level {
			if n.Leaf {
				continue
			}
			if err := m.Expand(ctx, n.ID); err != nil {
				return err
			}
			next = append(next, n.VisibleChildren()...)
		}
		level = next
	}
	return nil
}
