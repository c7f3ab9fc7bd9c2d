package config

import (
	"strconv"
	"strings"
)

// ApplyKVOverrides applies free-form -c key=value overrides.
// Values that fail to parse for the key's type are ignored.
func ApplyKVOverrides(cfg Config, overrides []string) Config {
	if len(overrides) == 0 {
		return cfg
	}
	for _, raw := range overrides {
		parts := strings.SplitN(raw, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		val := strings.TrimSpace(parts[1])
		key = strings.TrimPrefix(key, "features.")
		switch key {
		case "virtual_scroll":
			setBool(&cfg.VirtualScroll, val)
		case "center_on_jump":
			setBool(&cfg.CenterOnJump, val)
		case "restore_session":
			setBool(&cfg.Restore, val)
		case "session_dir":
			cfg.SessionDir = val
		case "show_hidden":
			setBool(&cfg.ShowHidden, val)
		case "buffer_margin":
			setFloat(&cfg.BufferMargin, val)
		case "scroll_quantum":
			setFloat(&cfg.ScrollQuantum, val)
		case "row_height":
			setFloat(&cfg.RowHeight, val)
		case "log_path":
			cfg.LogPath = val
		case "log_level":
			cfg.LogLevel = val
		}
	}
	return cfg
}

func setBool(dst *bool, val string) {
	if v, err := strconv.ParseBool(val); err == nil {
		*dst = v
	}
}

func setFloat(dst *float64, val string) {
	if v, err := strconv.ParseFloat(val, 64); err == nil {
		*dst = v
	}
}
