package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"treescroll/internal/config"
	"treescroll/internal/logger"
	"treescroll/internal/session"
	"treescroll/internal/tree"
	"treescroll/internal/tui"
)

var log = logger.Named("cli")

func main() {
	root, rest, err := parseRootArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse args: %v\n", err)
		os.Exit(2)
	}
	if len(rest) > 0 {
		switch rest[0] {
		case "layout":
			layoutMain(root, rest[1:])
			return
		case "config":
			configMain(root, rest[1:])
			return
		case "features":
			featuresMain(root, rest[1:])
			return
		}
	}

	runInteractive(root, rest)
}

func runInteractive(root rootArgs, args []string) {
	cfg := loadConfig(root.cfgPath, root.overrides)
	if logFile, _, err := logger.SetupFile(cfg.LogPath); err != nil {
		logger.Discard()
	} else {
		defer logFile.Close()
	}

	path := ""
	if len(args) > 0 {
		path = args[0]
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m, title, err := openTree(ctx, cfg, path)
	if err != nil {
		log.Fatalf("open tree: %v", err)
	}
	log.WithField("source", title).Info("starting tree view")

	opts := tui.Options{
		Tree:    m,
		Config:  cfg,
		Title:   title,
		Context: ctx,
	}
	store := session.NewStore(cfg.SessionDir)
	var rec session.Record
	if cfg.Restore {
		rec = restoreSession(ctx, store, m, title)
		opts.InitialCursor = rec.Cursor
		opts.InitialY = rec.Y
	}

	res, err := tui.Run(opts)
	if err != nil {
		log.Fatalf("tui: %v", err)
	}
	if cfg.Restore {
		rec.Root = title
		rec.Expanded = m.ExpandedPaths()
		rec.Cursor = res.Selected
		rec.Y = res.Top
		if _, err := store.Save(rec); err != nil {
			log.WithError(err).Warn("save session failed")
		}
	}
	if res.Selected != "" {
		fmt.Fprintln(os.Stdout, res.Selected)
	}
}

// restoreSession 恢复 root 上次保存的展开状态，没有记录时返回空记录。
func restoreSession(ctx context.Context, store session.Store, m *tree.Model, root string) session.Record {
	rec, err := store.ForRoot(root)
	if err != nil {
		if !errors.Is(err, session.ErrNoSession) {
			log.WithError(err).Warn("load session failed")
		}
		return session.Record{}
	}
	n, err := m.RestoreExpanded(ctx, rec.Expanded)
	if err != nil {
		log.WithError(err).Warn("restore session failed")
	}
	log.WithFields(logger.Fields{"session": rec.ID, "expanded": n}).Info("session restored")
	return rec
}

// loadConfig 读取配置、应用 -c 覆盖并初始化日志级别。
func loadConfig(path string, overrides []string) config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg = config.ApplyKVOverrides(cfg, overrides)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	if err := logger.Configure(cfg.LogLevel); err != nil {
		log.Warnf("%v; keeping default level", err)
	}
	return cfg
}
