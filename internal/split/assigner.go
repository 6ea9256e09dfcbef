// Package split routes output images to train/test sub-directories and
// partitions finished directories into train/test/validation sets.
package split

import (
	"math/rand/v2"
	"path/filepath"
	"sync"
)

// Split names the sub-directory an output image is written to.
type Split string

const (
	None       Split = "none"
	Train      Split = "train"
	Test       Split = "test"
	Validation Split = "validation"
)

// Dir returns the directory an image routed to s lands in.
func (s Split) Dir(target string) string {
	if s == None || s == "" {
		return target
	}
	return filepath.Join(target, string(s))
}

// Assigner draws per-image routes. It is safe for concurrent use.
type Assigner struct {
	mu   sync.Mutex
	draw func() float64
}

// NewAssigner returns an assigner backed by the process-wide random source.
func NewAssigner() *Assigner {
	return &Assigner{draw: rand.Float64}
}

// NewSeededAssigner returns a deterministic assigner.
func NewSeededAssigner(seed uint64) *Assigner {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return &Assigner{draw: rng.Float64}
}

// Assign routes one image. Without a train percentage the image is not
// split. Otherwise a uniform draw below (100 - train)/100 routes it to test.
func (a *Assigner) Assign(trainPercent *float64) Split {
	if trainPercent == nil {
		return None
	}
	a.mu.Lock()
	r := a.draw()
	a.mu.Unlock()
	if r < (100-*trainPercent)/100 {
		return Test
	}
	return Train
}
