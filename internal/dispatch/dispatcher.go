// Package dispatch validates task batches and runs every accepted task on
// its own goroutine.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"dataprep/internal/domain"
	"dataprep/internal/domain/jsoncfg"
	"dataprep/internal/pipeline"
)

// ErrInvalidInput marks a request body that is not a task array.
var ErrInvalidInput = errors.New("invalid input")

// Expander turns one task into job tickets.
type Expander interface {
	Tickets(ctx context.Context, task domain.TaskRequest) iter.Seq[domain.JobTicket]
}

// Runner drains job tickets.
type Runner interface {
	Run(ctx context.Context, tickets iter.Seq[domain.JobTicket]) pipeline.Summary
}

// ParseBatch decodes a request body into tasks. Decode failures wrap
// ErrInvalidInput; mandatory fields are checked by Submit.
func ParseBatch(body []byte) ([]domain.TaskRequest, error) {
	tasks, err := jsoncfg.ParseTasks(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return tasks, nil
}

// Dispatcher launches batches. Tasks run under the context given to New,
// which is expected to be cancelled only at shutdown.
type Dispatcher struct {
	ctx      context.Context
	expander Expander
	runner   Runner
	logger   zerolog.Logger
	wg       sync.WaitGroup
}

func New(ctx context.Context, expander Expander, runner Runner, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{ctx: ctx, expander: expander, runner: runner, logger: logger}
}

// Batch tracks the tasks started by one Submit call.
type Batch struct {
	ID    string
	Tasks int

	done    chan struct{}
	mu      sync.Mutex
	summary pipeline.Summary
}

// Status is the acknowledgement returned to the caller.
func (b *Batch) Status() string {
	return fmt.Sprintf("%d tasks started", b.Tasks)
}

// Done is closed once every task of the batch has finished.
func (b *Batch) Done() <-chan struct{} {
	return b.done
}

// Wait blocks until the batch finishes and returns its merged summary.
func (b *Batch) Wait() pipeline.Summary {
	<-b.done
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.summary
}

func (b *Batch) record(s pipeline.Summary) {
	b.mu.Lock()
	b.summary.Merge(s)
	b.mu.Unlock()
}

// Submit validates the whole batch before starting anything: a single task
// without a name or an augmentation chain rejects it with domain.ErrBadRequest.
func (d *Dispatcher) Submit(tasks []domain.TaskRequest) (*Batch, error) {
	for i, task := range tasks {
		if !task.Valid() {
			d.logger.Error().Int("index", i).Str("task", task.Name).Msg("dispatch: invalid task, rejecting batch")
			return nil, fmt.Errorf("%w: task %d needs name and augmentations", domain.ErrBadRequest, i)
		}
	}

	batch := &Batch{ID: uuid.NewString(), Tasks: len(tasks), done: make(chan struct{})}
	var pending sync.WaitGroup
	pending.Add(len(tasks))
	d.wg.Add(len(tasks))
	for _, task := range tasks {
		go func() {
			defer d.wg.Done()
			defer pending.Done()
			batch.record(d.runTask(batch.ID, task))
		}()
	}
	go func() {
		pending.Wait()
		close(batch.done)
	}()

	d.logger.Info().Str("batch", batch.ID).Int("tasks", batch.Tasks).Msg("dispatch: batch accepted")
	return batch, nil
}

func (d *Dispatcher) runTask(batchID string, task domain.TaskRequest) (summary pipeline.Summary) {
	log := d.logger.With().Str("batch", batchID).Str("task", task.Name).Logger()
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("dispatch: task panicked")
		}
	}()

	log.Info().Int("augmentations", len(task.Augmentations)).Msg("dispatch: task started")
	summary = d.runner.Run(d.ctx, d.expander.Tickets(d.ctx, task))
	log.Info().
		Int("tickets", summary.Tickets).
		Int("persisted", summary.Persisted).
		Int("failed", summary.Failed).
		Int("halted", summary.Halted).
		Msg("dispatch: task done")
	return summary
}

// Wait blocks until every task of every submitted batch has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
