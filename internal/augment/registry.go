// Package augment binds augmentation specs to stage implementations.
//
// A stage receives one image and its merged arguments and returns a lazy,
// finite sequence of derived images. An empty sequence is a valid outcome; a
// yielded error ends the sequence and surfaces as a *StageError.
package augment

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"iter"
	"sort"
	"sync"

	"dataprep/internal/domain"
)

// Args are the merged arguments of one augmentation use.
type Args map[string]any

// Derived is one image produced by a stage, tagged for output naming.
type Derived struct {
	Image image.Image
	Tags  []string
}

// StageFunc is the capability every augmentation implements.
type StageFunc func(ctx context.Context, img image.Image, args Args) iter.Seq2[Derived, error]

// StageError reports a stage that failed while producing outputs.
type StageError struct {
	Kind string
	Err  error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Kind, e.Err)
}

func (e *StageError) Unwrap() []error {
	return []error{domain.ErrStageFailed, e.Err}
}

// Stage is a spec bound to its implementation.
type Stage struct {
	Kind string
	Ref  string
	fn   StageFunc
	args Args
}

// Apply runs the stage on img. Errors yielded by the implementation are
// wrapped in *StageError and end the sequence.
func (s Stage) Apply(ctx context.Context, img image.Image) iter.Seq2[Derived, error] {
	return func(yield func(Derived, error) bool) {
		for out, err := range s.fn(ctx, img, s.args) {
			if err != nil {
				yield(Derived{}, &StageError{Kind: s.Kind, Err: err})
				return
			}
			if !yield(out, nil) {
				return
			}
		}
	}
}

// Registry maps "module/function" references to stage implementations.
type Registry struct {
	mu     sync.RWMutex
	stages map[string]StageFunc
}

func NewRegistry() *Registry {
	return &Registry{stages: make(map[string]StageFunc)}
}

// Register adds or replaces the implementation behind module/function.
func (r *Registry) Register(module, function string, fn StageFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stages[module+"/"+function] = fn
}

// Bind resolves spec to a runnable stage. Unknown references return an error
// wrapping domain.ErrNotFound.
func (r *Registry) Bind(spec domain.AugmentationSpec) (Stage, error) {
	ref := spec.StageRef()
	r.mu.RLock()
	fn, ok := r.stages[ref]
	r.mu.RUnlock()
	if !ok {
		return Stage{}, fmt.Errorf("stage %s for %s: %w", ref, spec.Kind, domain.ErrNotFound)
	}
	return Stage{Kind: spec.Kind, Ref: ref, fn: fn, args: Args(spec.Args)}, nil
}

// Refs lists registered references in sorted order.
func (r *Registry) Refs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	refs := make([]string, 0, len(r.stages))
	for ref := range r.stages {
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	return refs
}

// Default returns a registry holding every built-in stage.
func Default() *Registry {
	r := NewRegistry()
	r.Register("crop", "image_cropping", Crop)
	r.Register("random_crop", "image_random_cropping", RandomCrop)
	r.Register("crop", "image_random_cropping", RandomCrop)
	r.Register("flip", "image_flipping", Flip)
	return r
}

// decode copies args into a typed struct through their JSON form, so numbers
// decoded from JSON (float64) and YAML (int) land in the same fields.
func (a Args) decode(out any) error {
	raw, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode args: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode args: %w", err)
	}
	return nil
}

// fail returns a sequence that yields err and stops.
func fail(err error) iter.Seq2[Derived, error] {
	return func(yield func(Derived, error) bool) {
		yield(Derived{}, err)
	}
}
