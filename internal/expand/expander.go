// Package expand turns a task into a lazy stream of per-image job tickets.
package expand

import (
	"context"
	"errors"
	"iter"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"dataprep/internal/domain"
)

// Expander resolves tasks against a catalog and crawls their source
// directories. Nothing is memoized: every iteration of a returned sequence
// re-reads the catalog and re-crawls the directories.
type Expander struct {
	catalog domain.Catalog
	logger  zerolog.Logger
	mode    Mode
}

// Mode selects the ticket shape produced by Tickets.
type Mode string

const (
	// ModeChain yields one ticket per image carrying the whole chain.
	ModeChain Mode = "chain"
	// ModePerUse yields one single-stage ticket per (image, use) pair.
	ModePerUse Mode = "per_use"
)

func NewExpander(catalog domain.Catalog, logger zerolog.Logger, mode Mode) *Expander {
	if mode == "" {
		mode = ModeChain
	}
	return &Expander{catalog: catalog, logger: logger, mode: mode}
}

// Tickets expands task in the configured mode.
func (e *Expander) Tickets(ctx context.Context, task domain.TaskRequest) iter.Seq[domain.JobTicket] {
	if e.mode == ModePerUse {
		return e.ExpandPerUse(ctx, task)
	}
	return e.Expand(ctx, task)
}

// Expand yields one ticket per discovered image carrying the task's whole
// resolved augmentation chain.
func (e *Expander) Expand(ctx context.Context, task domain.TaskRequest) iter.Seq[domain.JobTicket] {
	return func(yield func(domain.JobTicket) bool) {
		ds, ok := e.dataSource(ctx, task.Name)
		if !ok {
			return
		}
		chain := e.resolveChain(ctx, task)
		if len(chain) == 0 {
			e.logger.Warn().Str("task", task.Name).Msg("expand: no resolvable augmentations, nothing to do")
			return
		}
		for file := range e.files(ctx, ds) {
			if !yield(newTicket(task, ds, file, chain)) {
				return
			}
		}
	}
}

// ExpandPerUse yields one ticket per (image, augmentation use) pair, each
// carrying a single-stage chain.
func (e *Expander) ExpandPerUse(ctx context.Context, task domain.TaskRequest) iter.Seq[domain.JobTicket] {
	return func(yield func(domain.JobTicket) bool) {
		ds, ok := e.dataSource(ctx, task.Name)
		if !ok {
			return
		}
		chain := e.resolveChain(ctx, task)
		for file := range e.files(ctx, ds) {
			for _, spec := range chain {
				if !yield(newTicket(task, ds, file, []domain.AugmentationSpec{spec})) {
					return
				}
			}
		}
	}
}

func (e *Expander) dataSource(ctx context.Context, name string) (domain.DataSource, bool) {
	ds, err := e.catalog.DataSource(ctx, name)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		e.logger.Warn().Str("task", name).Msg("expand: data source not configured")
		return domain.DataSource{}, false
	case err != nil:
		e.logger.Error().Err(err).Str("task", name).Msg("expand: data source lookup failed")
		return domain.DataSource{}, false
	case ds.Empty():
		e.logger.Warn().Str("task", name).Msg("expand: data source has no source directories")
		return domain.DataSource{}, false
	}
	return ds, true
}

// resolveChain looks every use up once and merges the caller's arguments
// over the catalog defaults. Unresolvable uses are logged and dropped.
func (e *Expander) resolveChain(ctx context.Context, task domain.TaskRequest) []domain.AugmentationSpec {
	chain := make([]domain.AugmentationSpec, 0, len(task.Augmentations))
	for _, use := range task.Augmentations {
		spec, err := e.catalog.Augmentation(ctx, use.Kind)
		if err != nil {
			ev := e.logger.Warn()
			if !errors.Is(err, domain.ErrNotFound) {
				ev = e.logger.Error()
			}
			ev.Err(err).Str("task", task.Name).Str("stage", use.Kind).Msg("expand: augmentation not resolved, dropping it from the chain")
			continue
		}
		chain = append(chain, spec.WithArgs(use.Args))
	}
	return chain
}

func (e *Expander) files(ctx context.Context, ds domain.DataSource) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, dir := range ds.SourceDirs {
			for file := range Crawl(ctx, dir, e.logger) {
				if !yield(file) {
					return
				}
			}
		}
	}
}

func newTicket(task domain.TaskRequest, ds domain.DataSource, file string, chain []domain.AugmentationSpec) domain.JobTicket {
	return domain.JobTicket{
		ID:          uuid.NewString(),
		DisplayName: task.Name,
		SourceFile:  file,
		TargetDir:   ds.TargetDir,
		Chain:       chain,
		Split:       task.Split,
		TargetSize:  task.TargetSize,
	}
}
