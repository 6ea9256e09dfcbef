package domain

// AugmentationUse is one element of a task's augmentation chain as supplied by
// the caller. Position in the chain is the execution order.
type AugmentationUse struct {
	Kind string
	Args map[string]any
}

// SplitRatio carries the train/test percentages requested for a task.
// TrainPercent drives per-image routing; TestPercent is only consulted by the
// partition post-pass.
type SplitRatio struct {
	TrainPercent *float64
	TestPercent  *float64
}

// ImageSize is a width/height pair in pixels.
type ImageSize struct {
	Width  int
	Height int
}

// TaskRequest is one top-level augmentation batch request for a named data source.
type TaskRequest struct {
	Name          string
	Augmentations []AugmentationUse
	Split         *SplitRatio
	TargetSize    *ImageSize
}

// Valid reports whether the mandatory fields are present. A nil chain means
// the caller omitted it; an empty, non-nil chain is accepted.
func (t TaskRequest) Valid() bool {
	return t.Name != "" && t.Augmentations != nil
}

// TrainPercent returns the per-image routing percentage, or nil when no split
// was requested.
func (t TaskRequest) TrainPercent() *float64 {
	if t.Split == nil {
		return nil
	}
	return t.Split.TrainPercent
}
