package pipeline

import (
	"context"
	"fmt"
	"iter"
	"sync"

	"golang.org/x/sync/errgroup"

	"dataprep/internal/domain"
)

// Summary aggregates the reports of every ticket drained by Run.
type Summary struct {
	Tickets   int
	Persisted int
	Failed    int
	Halted    int
}

func (s *Summary) add(r Report) {
	s.Tickets++
	s.Persisted += r.Persisted
	s.Failed += r.Failed
	if r.Halted {
		s.Halted++
	}
}

func (s Summary) String() string {
	return fmt.Sprintf("%d tickets, %d images persisted, %d failed, %d chains halted", s.Tickets, s.Persisted, s.Failed, s.Halted)
}

// Run drains tickets through a worker pool bounded by Options.Concurrency.
// The sequence is consumed on its own goroutine and handed over a channel of
// Options.Buffer slots, so a slow pool throttles the crawl. Cancelling ctx
// stops intake; tickets already running finish their current stage.
func (e *Executor) Run(ctx context.Context, tickets iter.Seq[domain.JobTicket]) Summary {
	queue := make(chan domain.JobTicket, e.opts.Buffer)
	go func() {
		defer close(queue)
		for ticket := range tickets {
			select {
			case queue <- ticket:
			case <-ctx.Done():
				return
			}
		}
	}()

	var (
		mu      sync.Mutex
		summary Summary
		g       errgroup.Group
	)
	g.SetLimit(e.opts.Concurrency)
	for ticket := range queue {
		g.Go(func() error {
			rep := e.Execute(ctx, ticket)
			mu.Lock()
			summary.add(rep)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return summary
}

// Merge folds o into s.
func (s *Summary) Merge(o Summary) {
	s.Tickets += o.Tickets
	s.Persisted += o.Persisted
	s.Failed += o.Failed
	s.Halted += o.Halted
}
