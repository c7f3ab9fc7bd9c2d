package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"treescroll/internal/config"
	"treescroll/internal/features"
	"treescroll/internal/tree"
	"treescroll/internal/tui/render"
	"treescroll/internal/virtualscroll"

	"github.com/pelletier/go-toml/v2"
)

type layoutArgs struct {
	y         float64
	height    float64
	depth     int
	expandAll bool
}

func layoutMain(root rootArgs, args []string) {
	var overrides stringSlice
	var la layoutArgs
	fs := flag.NewFlagSet("layout", flag.ExitOnError)
	fs.Var(&overrides, "c", "Override config value key=value (repeatable)")
	fs.Float64Var(&la.y, "y", 0, "Scroll offset in layout units")
	fs.Float64Var(&la.height, "height", 500, "Viewport height in layout units")
	fs.IntVar(&la.depth, "depth", 0, "Expand (and load) this many levels before laying out")
	fs.BoolVar(&la.expandAll, "expand-all", false, "Expand every loaded node")
	if err := fs.Parse(args); err != nil {
		log.Fatalf("parse layout args: %v", err)
	}
	cfg := loadConfig(root.cfgPath, prependOverrides(root.overrides, []string(overrides)))

	ctx := context.Background()
	m, _, err := openTree(ctx, cfg, fs.Arg(0))
	if err != nil {
		log.Fatalf("open tree: %v", err)
	}
	if err := expandDepth(ctx, m, la.depth); err != nil {
		log.Fatalf("expand: %v", err)
	}
	if la.expandAll {
		m.ExpandAll()
	}
	if err := writeLayout(os.Stdout, m, cfg, la); err != nil {
		log.Fatalf("write layout: %v", err)
	}
}

// writeLayout 打印每个可见节点的位置与高度，并标出视口窗口内的节点。
func writeLayout(w io.Writer, m *tree.Model, cfg config.Config, la layoutArgs) error {
	vs := virtualscroll.New[*tree.Node](m, virtualscroll.Options{
		Enabled:      cfg.VirtualScroll,
		BufferMargin: cfg.BufferMargin,
		Quantum:      cfg.ScrollQuantum,
	})
	vs.Init()
	defer vs.Clear()

	pane := render.NewPane(0, int(la.height), 1, vs.TotalHeight)
	pane.WriteScrollOffset(la.y)
	vs.SetViewport(pane)

	visible := m.Flatten()
	rendered := vs.ViewportNodes(visible)
	inWindow := make(map[*tree.Node]bool, len(rendered))
	for _, n := range rendered {
		inWindow[n] = true
	}

	if _, err := fmt.Fprintf(w, "# total=%g y=%g viewport=%g rendered=%d/%d virtual=%t\n",
		vs.TotalHeight(), vs.Y(), pane.Height(), len(rendered), len(visible), vs.Enabled()); err != nil {
		return err
	}
	layout := vs.Layout()
	for _, n := range visible {
		ext, _ := layout.Extent(n)
		mark := " "
		if inWindow[n] {
			mark = "*"
		}
		if _, err := fmt.Fprintf(w, "%s %8g %8g  %s%s\n", mark, ext.Position, ext.Height, strings.Repeat("  ", n.Depth()), n.Name); err != nil {
			return err
		}
	}
	return nil
}

func configMain(root rootArgs, args []string) {
	var overrides stringSlice
	var write bool
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	fs.Var(&overrides, "c", "Override config value key=value (repeatable)")
	fs.BoolVar(&write, "write", false, "Save the effective config to the config path")
	if err := fs.Parse(args); err != nil {
		log.Fatalf("parse config args: %v", err)
	}
	cfg := loadConfig(root.cfgPath, prependOverrides(root.overrides, []string(overrides)))
	if write {
		if err := config.Save(cfg.Source, cfg); err != nil {
			log.Fatalf("save config: %v", err)
		}
		fmt.Fprintf(os.Stdout, "wrote %s\n", cfg.Source)
		return
	}
	if err := printConfig(os.Stdout, cfg); err != nil {
		log.Fatalf("print config: %v", err)
	}
}

func printConfig(w io.Writer, cfg config.Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	if cfg.Source != "" {
		if _, err := fmt.Fprintf(w, "# %s\n", cfg.Source); err != nil {
			return err
		}
	}
	_, err = w.Write(data)
	return err
}

func featuresMain(root rootArgs, args []string) {
	var overrides stringSlice
	fs := flag.NewFlagSet("features", flag.ExitOnError)
	fs.Var(&overrides, "c", "Override config value key=value (repeatable)")
	if err := fs.Parse(args); err != nil {
		log.Fatalf("parse features args: %v", err)
	}
	allOverrides := prependOverrides(root.overrides, []string(overrides))
	for _, spec := range features.Specs {
		enabled := featureEnabled(spec.Key, allOverrides)
		fmt.Fprintf(os.Stdout, "%s\t%s\t%t\n", spec.Key, spec.Stage, enabled)
	}
}

func featureEnabled(key string, overrides []string) bool {
	enabled := features.DefaultEnabled(key)
	for _, raw := range overrides {
		parts := strings.SplitN(raw, "=", 2)
		if len(parts) != 2 {
			continue
		}
		k := strings.TrimSpace(parts[0])
		v := strings.TrimSpace(parts[1])
		if !strings.HasPrefix(k, "features.") {
			continue
		}
		name := strings.TrimPrefix(k, "features.")
		if !strings.EqualFold(name, key) {
			continue
		}
		switch strings.ToLower(v) {
		case "true", "1", "t", "yes", "y", "on":
			enabled = true
		case "false", "0", "f", "no", "n", "off":
			enabled = false
		}
	}
	return enabled
}
