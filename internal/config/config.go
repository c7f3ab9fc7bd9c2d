package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// EnvVirtualScroll overrides the virtual_scroll setting when set to a boolean.
const EnvVirtualScroll = "TREESCROLL_VIRTUAL_SCROLL"

// Config is the persisted config file schema.
type Config struct {
	VirtualScroll bool    `toml:"virtual_scroll"`
	BufferMargin  float64 `toml:"buffer_margin"`
	ScrollQuantum float64 `toml:"scroll_quantum"`
	RowHeight     float64 `toml:"row_height"`
	CenterOnJump  bool    `toml:"center_on_jump"`
	ShowHidden    bool    `toml:"show_hidden"`
	Restore       bool    `toml:"restore_session"`
	SessionDir    string  `toml:"session_dir,omitempty"`
	LogPath       string  `toml:"log_path,omitempty"`
	LogLevel      string  `toml:"log_level,omitempty"`
	Source        string  `toml:"-"`
}

func Default() Config {
	return Config{
		VirtualScroll: true,
		BufferMargin:  300,
		ScrollQuantum: 50,
		RowHeight:     25,
		CenterOnJump:  true,
		Restore:       true,
	}
}

func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".treescroll", "config.toml")
}

func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}
	if path == "" {
		return cfg, errors.New("config path is empty and $HOME is not set")
	}
	cfg.Source = path

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return applyEnv(cfg), nil
		}
		return cfg, err
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg = applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports settings the layout core cannot work with.
func (c Config) Validate() error {
	if c.ScrollQuantum <= 0 {
		return fmt.Errorf("scroll_quantum must be positive, got %v", c.ScrollQuantum)
	}
	if c.RowHeight <= 0 {
		return fmt.Errorf("row_height must be positive, got %v", c.RowHeight)
	}
	if c.BufferMargin < 0 {
		return fmt.Errorf("buffer_margin must not be negative, got %v", c.BufferMargin)
	}
	return nil
}

func applyEnv(cfg Config) Config {
	env := strings.TrimSpace(os.Getenv(EnvVirtualScroll))
	if env == "" {
		return cfg
	}
	if v, err := strconv.ParseBool(env); err == nil {
		cfg.VirtualScroll = v
	}
	return cfg
}
