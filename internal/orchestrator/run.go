package orchestrator

import (
	"context"
	"sync"

	"github.com/nao1215/privacyguard/internal/model"
)

// Run is a handle on one detection run.
type Run struct {
	// ID tags every settlement belonging to this run.
	ID string

	done    chan struct{}
	once    sync.Once
	results *model.DetectionResults
	err     error
}

func newRun(id string) *Run {
	return &Run{ID: id, done: make(chan struct{})}
}

// Done is closed when the run completes, fails, or is reset.
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the run ends or ctx is done.
// It returns the snapshot on completion, an *OrchestrationError on failure,
// or ErrRunReset if the run was abandoned.
func (r *Run) Wait(ctx context.Context) (*model.DetectionResults, error) {
	select {
	case <-r.done:
		return r.results, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *Run) finish(results *model.DetectionResults, err error) {
	r.once.Do(func() {
		r.results = results
		r.err = err
		close(r.done)
	})
}
