package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"treescroll/internal/config"
	"treescroll/internal/tree"
)

func flatModel(n int) *tree.Model {
	m := tree.New(tree.Options{RowHeight: 25})
	roots := make([]*tree.Node, n)
	for i := range roots {
		name := fmt.Sprintf("n%d", i)
		roots[i] = tree.NewNode(name, "/"+name, true)
	}
	m.SetRoots(roots)
	return m
}

func markedLines(out string) []string {
	var marked []string
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "*") {
			marked = append(marked, strings.Fields(line)[3])
		}
	}
	return marked
}

func TestWriteLayoutMarksWindow(t *testing.T) {
	cfg := config.Default()
	cfg.BufferMargin = 0

	tests := []struct {
		name   string
		y      float64
		header string
		want   []string
	}{
		{
			name:   "top",
			y:      0,
			header: "# total=250 y=0 viewport=100 rendered=5/10 virtual=true",
			want:   []string{"n0", "n1", "n2", "n3", "n4"},
		},
		{
			name:   "scrolled offset is quantized",
			y:      120,
			header: "# total=250 y=100 viewport=100 rendered=5/10 virtual=true",
			want:   []string{"n4", "n5", "n6", "n7", "n8"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := writeLayout(&buf, flatModel(10), cfg, layoutArgs{y: tt.y, height: 100}); err != nil {
				t.Fatalf("writeLayout: %v", err)
			}
			out := buf.String()
			if first := strings.SplitN(out, "\n", 2)[0]; first != tt.header {
				t.Fatalf("header = %q, want %q", first, tt.header)
			}
			if got := markedLines(out); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("window = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWriteLayoutDisabledMarksEverything(t *testing.T) {
	cfg := config.Default()
	cfg.VirtualScroll = false
	var buf bytes.Buffer
	if err := writeLayout(&buf, flatModel(49), cfg, layoutArgs{height: 100}); err != nil {
		t.Fatalf("writeLayout: %v", err)
	}
	if got := len(markedLines(buf.String())); got != 49 {
		t.Fatalf("marked = %d, want 49", got)
	}
}

func TestPrintConfigIncludesSource(t *testing.T) {
	cfg := config.Default()
	cfg.Source = "/tmp/c.toml"
	var buf bytes.Buffer
	if err := printConfig(&buf, cfg); err != nil {
		t.Fatalf("printConfig: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "# /tmp/c.toml\n") {
		t.Fatalf("missing source header: %q", out)
	}
	if !strings.Contains(out, "buffer_margin = 300") {
		t.Fatalf("missing buffer_margin: %q", out)
	}
}

func TestOpenTreeDirectory(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "b.txt"))
	mustWrite(t, filepath.Join(dir, "a.txt"))
	mustWrite(t, filepath.Join(dir, "sub", "c.txt"))
	mustWrite(t, filepath.Join(dir, ".hidden"))

	ctx := context.Background()
	m, title, err := openTree(ctx, config.Default(), dir)
	if err != nil {
		t.Fatalf("openTree: %v", err)
	}
	if title != dir {
		t.Fatalf("title = %q, want %q", title, dir)
	}
	if err := expandDepth(ctx, m, 1); err != nil {
		t.Fatalf("expandDepth: %v", err)
	}
	var got []string
	for _, n := range m.Flatten() {
		got = append(got, n.Name)
	}
	want := []string{"sub", "c.txt", "a.txt", "b.txt"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Flatten = %v, want %v", got, want)
	}
}

func TestOpenTreeOutline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "outline.toml")
	content := "[[node]]\nname = \"docs\"\nexpanded = true\n\n  [[node.children]]\n  name = \"intro.md\"\n  height = 2\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	m, title, err := openTree(context.Background(), config.Default(), path)
	if err != nil {
		t.Fatalf("openTree: %v", err)
	}
	if title != "outline.toml" {
		t.Fatalf("title = %q", title)
	}
	if got := len(m.Flatten()); got != 2 {
		t.Fatalf("visible = %d, want 2", got)
	}
}

func TestOpenTreeRejectsOtherFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	mustWrite(t, path)
	if _, _, err := openTree(context.Background(), config.Default(), path); err == nil {
		t.Fatalf("expected error for non-outline file")
	}
}

func mustWrite(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}
