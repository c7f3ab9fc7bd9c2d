package features

// Stage describes the lifecycle bucket of a feature flag.
type Stage string

const (
	StageStable       Stage = "stable"
	StageBeta         Stage = "beta"
	StageExperimental Stage = "experimental"
)

// Spec describes a feature flag exposed by the CLI. Every key maps onto a
// boolean config key of the same name.
type Spec struct {
	Key            string
	Stage          Stage
	DefaultEnabled bool
}

var Specs = []Spec{
	{Key: "virtual_scroll", Stage: StageStable, DefaultEnabled: true},
	{Key: "center_on_jump", Stage: StageStable, DefaultEnabled: true},
	{Key: "show_hidden", Stage: StageBeta, DefaultEnabled: false},
	{Key: "restore_session", Stage: StageBeta, DefaultEnabled: true},
}

var known = func() map[string]Spec {
	m := make(map[string]Spec, len(Specs))
	for _, spec := range Specs {
		m[spec.Key] = spec
	}
	return m
}()

// IsKnown reports whether the feature key is recognized.
func IsKnown(key string) bool {
	_, ok := known[key]
	return ok
}

// StageFor returns the lifecycle stage for a feature, defaulting to experimental.
func StageFor(key string) Stage {
	if spec, ok := known[key]; ok {
		return spec.Stage
	}
	return StageExperimental
}

// DefaultEnabled reports the default value for the given feature key.
func DefaultEnabled(key string) bool {
	if spec, ok := known[key]; ok {
		return spec.DefaultEnabled
	}
	return false
}
