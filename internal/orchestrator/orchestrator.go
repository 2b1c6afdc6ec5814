package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nao1215/privacyguard/internal/analyzer"
	"github.com/nao1215/privacyguard/internal/model"
	"github.com/nao1215/privacyguard/internal/scoring"
	"golang.org/x/sync/errgroup"
)

// Orchestrator coordinates detection runs. It is safe for concurrent use.
//
// Design decision: State lives in a mutex-guarded struct rather than an
// actor goroutine. Probe goroutines only send settlements over a channel;
// a single coordinator goroutine per run applies them under the lock after
// checking the run identifier, so writes from an abandoned run never land.
type Orchestrator struct {
	prober Prober
	logger *slog.Logger

	history  HistorySink
	notifier Notifier

	now        func() time.Time
	newRunID   func() string
	analyze    func(*model.DetectionResults) analyzer.Analysis
	aggregate  func(model.Breakdown) (model.SecurityScore, error)
	browserEnv func() model.BrowserResult

	mu          sync.Mutex
	state       State
	run         *Run
	subscribers []subscriber
	nextSubID   int
	queue       []State
	draining    bool
}

type subscriber struct {
	id int
	fn func(State)
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithHistorySink sets the persistence port.
func WithHistorySink(h HistorySink) Option {
	return func(o *Orchestrator) {
		o.history = h
	}
}

// WithNotifier sets the notification port.
func WithNotifier(n Notifier) Option {
	return func(o *Orchestrator) {
		o.notifier = n
	}
}

// WithClock overrides the time source used for snapshot timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// WithBrowserIntrospector overrides the fallback used when the browser probe
// fails. Defaults to LocalBrowserIntrospection.
func WithBrowserIntrospector(fn func() model.BrowserResult) Option {
	return func(o *Orchestrator) {
		o.browserEnv = fn
	}
}

// WithAnalyzer overrides the category analysis step.
func WithAnalyzer(fn func(*model.DetectionResults) analyzer.Analysis) Option {
	return func(o *Orchestrator) {
		o.analyze = fn
	}
}

// WithAggregator overrides the score aggregation step.
func WithAggregator(fn func(model.Breakdown) (model.SecurityScore, error)) Option {
	return func(o *Orchestrator) {
		o.aggregate = fn
	}
}

// New creates an idle Orchestrator that probes through p.
func New(p Prober, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		prober:     p,
		now:        time.Now,
		newRunID:   uuid.NewString,
		analyze:    analyzer.Analyze,
		aggregate:  scoring.Aggregate,
		browserEnv: LocalBrowserIntrospection,
		state:      State{Phase: PhaseIdle, Tasks: []model.DetectionTask{}},
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

// Snapshot returns a deep copy of the current state.
func (o *Orchestrator) Snapshot() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.Clone()
}

// Subscribe registers fn to receive every published state change, in
// version order. fn may call back into the orchestrator. The returned
// function removes the subscription.
func (o *Orchestrator) Subscribe(fn func(State)) (unsubscribe func()) {
	o.mu.Lock()
	o.nextSubID++
	id := o.nextSubID
	o.subscribers = append(o.subscribers, subscriber{id: id, fn: fn})
	o.mu.Unlock()

	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		for i, s := range o.subscribers {
			if s.id == id {
				o.subscribers = append(o.subscribers[:i:i], o.subscribers[i+1:]...)
				return
			}
		}
	}
}

// Start launches a new run and returns immediately.
//
// Start fails only on the exclusive-start guard: ErrDetectionInProgress while
// a run is active and ErrResetRequired after a run has ended. Probe failures
// and orchestration failures are reported through state, never from Start.
func (o *Orchestrator) Start(ctx context.Context) (*Run, error) {
	o.mu.Lock()
	switch o.state.Phase {
	case PhaseDetecting:
		o.mu.Unlock()
		return nil, ErrDetectionInProgress
	case PhaseCompleted, PhaseFailed:
		o.mu.Unlock()
		return nil, ErrResetRequired
	}

	run := newRun(o.newRunID())
	o.run = run
	o.state = State{
		Phase:       PhaseDetecting,
		RunID:       run.ID,
		IsDetecting: true,
		Progress:    progressStart,
		CurrentStep: "Preparing detection",
		Tasks:       newTasks(),
		Version:     o.state.Version,
	}
	o.publishLocked()
	o.mu.Unlock()
	o.flush()

	o.logger.Info("detection started", "run_id", run.ID)

	go o.execute(ctx, run)
	return run, nil
}

// Detect starts a run and waits for it to end.
func (o *Orchestrator) Detect(ctx context.Context) (*model.DetectionResults, error) {
	run, err := o.Start(ctx)
	if err != nil {
		return nil, err
	}
	return run.Wait(ctx)
}

// Reset returns the orchestrator to idle and discards tasks, results, error
// and progress. An active run is abandoned: its probes keep running but
// their results are dropped, and its Wait returns ErrRunReset.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	if o.run != nil {
		o.logger.Debug("abandoning detection run", "run_id", o.run.ID)
		o.run.finish(nil, ErrRunReset)
		o.run = nil
	}
	o.state = State{
		Phase:   PhaseIdle,
		Tasks:   []model.DetectionTask{},
		Version: o.state.Version,
	}
	o.publishLocked()
	o.mu.Unlock()
	o.flush()
}

type settlement struct {
	index int
	value any
	err   error
}

// execute is the per-run coordinator. It owns no state besides the values
// collected from its own probes.
func (o *Orchestrator) execute(ctx context.Context, run *Run) {
	settlements := make(chan settlement, len(categories))

	var g errgroup.Group
	for i, spec := range categories {
		if !o.markRunning(run, i) {
			return
		}
		g.Go(func() error {
			settlements <- o.invoke(ctx, i, spec)
			return nil
		})
	}

	values := make(map[model.Category]any, len(categories))
	failures := make(map[model.Category]error)
	for range categories {
		s := <-settlements
		if !o.settle(run, s) {
			o.logger.Debug("dropping stale probe result", "run_id", run.ID, "category", categories[s.index].category)
			return
		}
		spec := categories[s.index]
		if s.err != nil {
			failures[spec.category] = s.err
		} else {
			values[spec.category] = s.value
		}
	}
	_ = g.Wait() //nolint:errcheck // probe goroutines never return errors

	o.finish(ctx, run, values, failures)
}

// invoke runs one probe and converts a panic into a probe failure.
func (o *Orchestrator) invoke(ctx context.Context, index int, spec categorySpec) (s settlement) {
	s.index = index
	defer func() {
		if r := recover(); r != nil {
			s.value = nil
			s.err = fmt.Errorf("%s probe panicked: %v", spec.category, r)
		}
	}()
	s.value, s.err = spec.probe(ctx, o.prober)
	return s
}

func (o *Orchestrator) markRunning(run *Run, index int) bool {
	o.mu.Lock()
	if o.run != run {
		o.mu.Unlock()
		return false
	}
	o.state.Tasks[index].Status = model.TaskRunning
	o.state.CurrentStep = "Running " + o.state.Tasks[index].Name
	o.publishLocked()
	o.mu.Unlock()
	o.flush()
	return true
}

// settle records one probe outcome. It returns false when the run is no
// longer current.
func (o *Orchestrator) settle(run *Run, s settlement) bool {
	o.mu.Lock()
	if o.run != run {
		o.mu.Unlock()
		return false
	}
	task := &o.state.Tasks[s.index]
	if s.err != nil {
		task.Status = model.TaskFailed
		task.Error = s.err.Error()
		o.state.CurrentStep = task.Name + " failed"
		o.logger.Warn("probe failed", "run_id", run.ID, "category", task.Category, "error", s.err)
	} else {
		task.Status = model.TaskCompleted
		o.state.CurrentStep = task.Name + " completed"
		o.logger.Debug("probe completed", "run_id", run.ID, "category", task.Category)
	}
	o.state.Progress = progressFor(o.state.Tasks)
	o.publishLocked()
	o.mu.Unlock()
	o.flush()
	return true
}

// progressFor maps the settled weight onto [10, 90]. It depends only on which
// tasks have settled, not on the order they settled in.
func progressFor(tasks []model.DetectionTask) int {
	settled := 0.0
	for _, t := range tasks {
		if t.Status.Settled() {
			settled += t.Weight
		}
	}
	return progressStart + int(math.Round(settled/totalWeight*progressSpan))
}

func (o *Orchestrator) finish(ctx context.Context, run *Run, values map[model.Category]any, failures map[model.Category]error) {
	o.mu.Lock()
	if o.run != run {
		o.mu.Unlock()
		return
	}
	o.state.Progress = progressScoring
	o.state.CurrentStep = "Calculating security score"
	o.publishLocked()
	o.mu.Unlock()
	o.flush()

	results, err := o.assemble(run.ID, values, failures)

	o.mu.Lock()
	if o.run != run {
		o.mu.Unlock()
		return
	}
	o.run = nil
	o.state.IsDetecting = false
	if err != nil {
		o.state.Phase = PhaseFailed
		o.state.Error = err.Error()
		o.state.CurrentStep = "Detection failed"
		o.publishLocked()
		o.mu.Unlock()
		o.flush()

		o.logger.Error("detection failed", "run_id", run.ID, "error", err)
		o.notify(model.Notification{
			Severity: model.SeverityError,
			Title:    "Detection failed",
			Detail:   err.Error(),
		})
		run.finish(nil, &OrchestrationError{RunID: run.ID, Err: err})
		return
	}

	o.state.Phase = PhaseCompleted
	o.state.Progress = progressDone
	o.state.CurrentStep = "Detection complete"
	o.state.Results = results
	o.publishLocked()
	o.mu.Unlock()
	o.flush()

	o.logger.Info("detection completed",
		"run_id", run.ID,
		"total", results.Score.Total,
		"level", results.Score.Level,
		"failed", results.FailedCount(),
	)

	o.save(ctx, results.Clone())
	o.notify(summarize(results))
	run.finish(results.Clone(), nil)
}

// assemble substitutes fallbacks, analyzes every category and aggregates
// the score. Any error or panic here is an orchestration failure.
func (o *Orchestrator) assemble(runID string, values map[model.Category]any, failures map[model.Category]error) (results *model.DetectionResults, err error) {
	defer func() {
		if r := recover(); r != nil {
			results = nil
			err = fmt.Errorf("scoring panicked: %v", r)
		}
	}()

	results = &model.DetectionResults{RunID: runID}
	for _, spec := range categories {
		v, ok := values[spec.category]
		if probeErr, failed := failures[spec.category]; failed {
			v = spec.fallback(o, probeErr)
			results.Fallbacks = append(results.Fallbacks, spec.category)
		} else if !ok {
			return nil, fmt.Errorf("%w: no value for %s", ErrUnexpectedResult, spec.category)
		}
		if err := spec.assign(results, v); err != nil {
			return nil, fmt.Errorf("%s: %w", spec.category, err)
		}
	}

	analysis := o.analyze(results)
	score, err := o.aggregate(analysis.Breakdown)
	if err != nil {
		return nil, fmt.Errorf("aggregate score: %w", err)
	}
	results.Analysis = analysis.Scores
	results.Score = score
	results.Timestamp = o.now()
	return results, nil
}

func (o *Orchestrator) introspect() model.BrowserResult {
	return o.browserEnv()
}

func (o *Orchestrator) save(ctx context.Context, results *model.DetectionResults) {
	if o.history == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("history sink panicked", "run_id", results.RunID, "panic", r)
		}
	}()
	if err := o.history.SaveResults(context.WithoutCancel(ctx), results); err != nil {
		o.logger.Warn("failed to save detection history", "run_id", results.RunID, "error", err)
	}
}

func (o *Orchestrator) notify(n model.Notification) {
	if o.notifier == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("notifier panicked", "panic", r)
		}
	}()
	o.notifier.Notify(n)
}

// publishLocked bumps the version and queues a snapshot for subscribers.
// Must be called with o.mu held; call flush after unlocking.
func (o *Orchestrator) publishLocked() {
	o.state.Version++
	if len(o.subscribers) == 0 {
		return
	}
	o.queue = append(o.queue, o.state.Clone())
}

// flush delivers queued snapshots in order. Only one goroutine drains at a
// time; others return immediately and their snapshots are delivered by the
// active drainer. Subscribers run without the lock held.
func (o *Orchestrator) flush() {
	o.mu.Lock()
	if o.draining {
		o.mu.Unlock()
		return
	}
	o.draining = true
	for len(o.queue) > 0 {
		snap := o.queue[0]
		o.queue = o.queue[1:]
		subs := append([]subscriber(nil), o.subscribers...)
		o.mu.Unlock()

		for _, s := range subs {
			o.deliver(s, snap.Clone())
		}

		o.mu.Lock()
	}
	o.draining = false
	o.mu.Unlock()
}

func (o *Orchestrator) deliver(s subscriber, snap State) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("state subscriber panicked", "subscriber", s.id, "panic", r)
		}
	}()
	s.fn(snap)
}
