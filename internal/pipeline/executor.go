// Package pipeline runs job tickets through their augmentation chains and
// persists every derived image.
package pipeline

import (
	"context"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"dataprep/internal/augment"
	"dataprep/internal/domain"
	"dataprep/internal/imageio"
	"dataprep/internal/split"
	"dataprep/internal/storage"
)

// Cascade selects which outputs of stage k-1 feed stage k.
type Cascade string

const (
	// CascadeLast feeds only the last image produced by the previous stage.
	CascadeLast Cascade = "last"
	// CascadeAll feeds every image produced by the previous stage.
	CascadeAll Cascade = "all"
)

// Options tunes an Executor. Zero values fall back to defaults.
type Options struct {
	Cascade     Cascade
	Concurrency int
	Buffer      int
}

const (
	defaultConcurrency = 4
	defaultBuffer      = 16
)

// Report describes what one ticket produced.
type Report struct {
	Persisted int
	Failed    int
	Halted    bool
}

// Executor applies ticket chains. It is safe for concurrent use.
type Executor struct {
	registry *augment.Registry
	sink     storage.Sink
	assigner *split.Assigner
	logger   zerolog.Logger
	opts     Options

	load func(path string, size *domain.ImageSize) (image.Image, error)
}

func NewExecutor(registry *augment.Registry, sink storage.Sink, assigner *split.Assigner, logger zerolog.Logger, opts Options) *Executor {
	if opts.Cascade == "" {
		opts.Cascade = CascadeLast
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	if opts.Buffer <= 0 {
		opts.Buffer = defaultBuffer
	}
	return &Executor{
		registry: registry,
		sink:     sink,
		assigner: assigner,
		logger:   logger,
		opts:     opts,
		load:     imageio.Load,
	}
}

// OutputName builds the persisted name of a derived image:
// {kind}_{tag}_..._{original file name}.
func OutputName(kind string, tags []string, original string) string {
	parts := make([]string, 0, len(tags)+2)
	parts = append(parts, kind)
	parts = append(parts, tags...)
	parts = append(parts, original)
	return strings.Join(parts, "_")
}

type node struct {
	img  image.Image
	tags []string
}

// Execute loads the ticket's source image once and folds it through the
// chain. Nothing here is fatal: stage and persist failures are logged and
// reflected in the report.
func (e *Executor) Execute(ctx context.Context, ticket domain.JobTicket) (rep Report) {
	log := e.logger.With().
		Str("ticket", ticket.ID).
		Str("task", ticket.DisplayName).
		Str("file", ticket.SourceFile).
		Logger()

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("pipeline: ticket panicked, halting chain")
			rep.Halted = true
		}
	}()

	if err := ctx.Err(); err != nil {
		rep.Halted = true
		return rep
	}

	img, err := e.load(ticket.SourceFile, ticket.TargetSize)
	if err != nil {
		log.Error().Err(err).Msg("pipeline: cannot load source image")
		rep.Halted = true
		return rep
	}

	original := filepath.Base(ticket.SourceFile)
	frontier := []node{{img: img}}
	for _, spec := range ticket.Chain {
		if err := ctx.Err(); err != nil {
			log.Warn().Err(err).Str("stage", spec.Kind).Msg("pipeline: cancelled before stage")
			rep.Halted = true
			return rep
		}
		stage, err := e.registry.Bind(spec)
		if err != nil {
			log.Error().Err(err).Str("stage", spec.Kind).Msg("pipeline: stage not registered, halting chain")
			rep.Halted = true
			return rep
		}

		var next []node
		for _, parent := range frontier {
			for out, err := range stage.Apply(ctx, parent.img) {
				if err != nil {
					log.Error().Err(err).Str("stage", spec.Kind).Msg("pipeline: stage failed, halting chain")
					rep.Halted = true
					return rep
				}
				tags := out.Tags
				if e.opts.Cascade == CascadeAll && len(parent.tags) > 0 {
					tags = append(append([]string(nil), out.Tags...), parent.tags...)
				}
				if e.persist(ctx, log, ticket, OutputName(spec.Kind, tags, original), out.Image) {
					rep.Persisted++
				} else {
					rep.Failed++
				}
				child := node{img: out.Image, tags: tags}
				if e.opts.Cascade == CascadeAll {
					next = append(next, child)
				} else {
					next = append(next[:0], child)
				}
			}
		}
		if len(next) == 0 {
			log.Info().Str("stage", spec.Kind).Msg("pipeline: stage produced no images, halting chain")
			rep.Halted = true
			return rep
		}
		frontier = next
	}

	log.Debug().Int("persisted", rep.Persisted).Int("failed", rep.Failed).Msg("pipeline: ticket done")
	return rep
}

func (e *Executor) persist(ctx context.Context, log zerolog.Logger, ticket domain.JobTicket, name string, img image.Image) bool {
	dir := e.assigner.Assign(ticket.TrainPercent()).Dir(ticket.TargetDir)
	data, err := imageio.Encode(img, name)
	if err != nil {
		log.Error().Err(fmt.Errorf("%w: %v", domain.ErrPersist, err)).Str("path", filepath.Join(dir, name)).Msg("pipeline: encode failed")
		return false
	}
	path, err := e.sink.Save(ctx, dir, name, data)
	if err != nil {
		log.Error().Err(err).Str("path", filepath.Join(dir, name)).Msg("pipeline: persist failed")
		return false
	}
	log.Debug().Str("path", path).Msg("pipeline: image persisted")
	return true
}
