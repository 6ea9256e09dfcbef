package domain

// AugmentationSpec is a catalog-resolved augmentation: the kind the caller
// asked for, the stage implementation it is bound to and the merged arguments.
type AugmentationSpec struct {
	Kind     string
	Module   string
	Function string
	Args     map[string]any
}

// StageRef returns the registry key of the stage implementation.
func (s AugmentationSpec) StageRef() string {
	return s.Module + "/" + s.Function
}

// WithArgs returns a copy of s whose arguments are the catalog defaults
// overlaid with overrides. Override values win.
func (s AugmentationSpec) WithArgs(overrides map[string]any) AugmentationSpec {
	s.Args = MergeArgs(s.Args, overrides)
	return s
}

// MergeArgs returns a new map holding defaults overlaid with overrides.
func MergeArgs(defaults, overrides map[string]any) map[string]any {
	merged := make(map[string]any, len(defaults)+len(overrides))
	for k, v := range defaults {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	return merged
}
