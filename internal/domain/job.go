package domain

// JobTicket is the expanded unit of work for one source image. Tickets are
// created by the expander, never mutated afterwards and consumed exactly once.
type JobTicket struct {
	ID          string
	DisplayName string
	SourceFile  string
	TargetDir   string
	Chain       []AugmentationSpec
	Split       *SplitRatio
	TargetSize  *ImageSize
}

// TrainPercent returns the per-image routing percentage, or nil when no split
// was requested.
func (j JobTicket) TrainPercent() *float64 {
	if j.Split == nil {
		return nil
	}
	return j.Split.TrainPercent
}
