package features

import (
	"testing"

	"treescroll/internal/config"
)

func TestDefaultsAgreeWithConfig(t *testing.T) {
	cfg := config.Default()
	values := map[string]bool{
		"virtual_scroll":  cfg.VirtualScroll,
		"center_on_jump":  cfg.CenterOnJump,
		"show_hidden":     cfg.ShowHidden,
		"restore_session": cfg.Restore,
	}
	for _, spec := range Specs {
		got, ok := values[spec.Key]
		if !ok {
			t.Fatalf("feature %q has no config key", spec.Key)
		}
		if got != spec.DefaultEnabled {
			t.Fatalf("feature %q default = %t, config default = %t", spec.Key, spec.DefaultEnabled, got)
		}
	}
}

func TestUnknownFeature(t *testing.T) {
	if IsKnown("warp_drive") {
		t.Fatalf("IsKnown(warp_drive) = true")
	}
	if StageFor("warp_drive") != StageExperimental {
		t.Fatalf("StageFor(unknown) = %q, want experimental", StageFor("warp_drive"))
	}
	if DefaultEnabled("warp_drive") {
		t.Fatalf("DefaultEnabled(unknown) = true")
	}
}
