package platform

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	apperrors "github.com/agbru/basketmc/internal/errors"
	"github.com/agbru/basketmc/internal/logging"
	"github.com/agbru/basketmc/internal/metrics"
	"github.com/agbru/basketmc/internal/orchestration"
	"github.com/agbru/basketmc/internal/parallel"
)

const tracerName = "github.com/agbru/basketmc/internal/platform"

// Processor executes one unit of work. orchestration.Dispatcher implements it.
type Processor interface {
	Process(ctx context.Context, h orchestration.TaskHandler) orchestration.Output
}

// ProcessorFunc adapts a function to Processor.
type ProcessorFunc func(ctx context.Context, h orchestration.TaskHandler) orchestration.Output

// Process calls f.
func (f ProcessorFunc) Process(ctx context.Context, h orchestration.TaskHandler) orchestration.Output {
	return f(ctx, h)
}

// Options configures a Session.
type Options struct {
	// Parallelism bounds how many units execute at once. Zero means
	// GOMAXPROCS.
	Parallelism int
	// Logger receives scheduling events. Nil disables logging.
	Logger logging.Logger
	// Metrics receives unit counters. Nil disables metrics.
	Metrics *metrics.Collectors
	// Tracer creates one span per unit. Nil uses the global provider.
	Tracer trace.Tracer
}

type slotState int

const (
	slotPending slotState = iota
	slotReady
	slotAborted
)

type resultSlot struct {
	name  string
	owner string
	state slotState
	data  []byte
	done  chan struct{}
}

type taskState int

const (
	taskWaiting taskState = iota
	taskQueued
	taskRunning
	taskSucceeded
	taskFailed
	taskSkipped
)

type task struct {
	id      string
	spec    orchestration.TaskSpec
	useCase string
	state   taskState
	deps    map[string][]byte

	// Buffered side effects of a running unit, committed only on success.
	writes  map[string][]byte
	pending []orchestration.TaskSpec
	claims  map[string]struct{}
}

// Session is an in-process task-execution platform. It stores results,
// starts each unit once all of its data dependencies exist, and enforces the
// output obligation: a successful unit must have written or delegated every
// declared output, and a failed unit leaves no trace besides its failure.
type Session struct {
	id     string
	proc   Processor
	logger logging.Logger
	stats  *metrics.Collectors
	tracer trace.Tracer

	ctx      context.Context
	cancel   context.CancelFunc
	group    *errgroup.Group
	sem      *semaphore.Weighted
	failures parallel.ErrorCollector

	mu       sync.Mutex
	results  map[string]*resultSlot
	tasks    map[string]*task
	waiting  map[string]*task
	progress Progress
}

// NewSession creates a session whose units run under ctx.
func NewSession(ctx context.Context, proc Processor, opts Options) *Session {
	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.GOMAXPROCS(0)
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}
	ctx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)
	return &Session{
		id:      uuid.NewString(),
		proc:    proc,
		logger:  logger,
		stats:   opts.Metrics,
		tracer:  tracer,
		ctx:     gctx,
		cancel:  cancel,
		group:   g,
		sem:     semaphore.NewWeighted(int64(parallelism)),
		results: make(map[string]*resultSlot),
		tasks:   make(map[string]*task),
		waiting: make(map[string]*task),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// CreateResultIDs reserves one result slot per name. A reserved slot has no
// owner until a submitted task declares it as an output.
func (s *Session) CreateResultIDs(names []string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, len(names))
	for i, name := range names {
		id := uuid.NewString()
		s.results[id] = &resultSlot{name: name, done: make(chan struct{})}
		ids[i] = id
	}
	return ids
}

// Submit queues tasks on behalf of the session's client. Every declared
// output must be a reserved, unowned slot.
func (s *Session) Submit(specs []orchestration.TaskSpec) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.validate(nil, specs); err != nil {
		return err
	}
	s.commitTasks(specs)
	s.scheduleReady()
	return nil
}

// validate checks a batch of specs submitted by parent (nil for the client)
// and returns the outputs the batch claims. The caller holds s.mu.
func (s *Session) validate(parent *task, specs []orchestration.TaskSpec) (map[string]struct{}, error) {
	claimed := make(map[string]struct{})
	claimedBefore := func(id string) bool {
		if _, ok := claimed[id]; ok {
			return true
		}
		if parent != nil {
			_, ok := parent.claims[id]
			return ok
		}
		return false
	}

	for i, spec := range specs {
		if len(spec.ExpectedOutputs) == 0 {
			return nil, fmt.Errorf("task %d declares no output", i)
		}
		for _, out := range spec.ExpectedOutputs {
			slot, ok := s.results[out]
			switch {
			case !ok:
				return nil, fmt.Errorf("task %d: unknown output %s", i, out)
			case slot.state != slotPending:
				return nil, fmt.Errorf("task %d: output %s is already resolved", i, out)
			case claimedBefore(out):
				return nil, fmt.Errorf("task %d: output %s is claimed twice", i, out)
			case slot.owner != "" && (parent == nil || slot.owner != parent.id):
				return nil, fmt.Errorf("task %d: output %s belongs to another task", i, out)
			}
			if parent != nil && slot.owner == parent.id {
				if _, written := parent.writes[out]; written {
					return nil, fmt.Errorf("task %d: output %s was already written by its owner", i, out)
				}
			}
			claimed[out] = struct{}{}
		}
	}

	// Dependencies are checked once the whole batch is known, so a joiner may
	// depend on workers submitted alongside it.
	for i, spec := range specs {
		own := make(map[string]struct{}, len(spec.ExpectedOutputs))
		for _, out := range spec.ExpectedOutputs {
			own[out] = struct{}{}
		}
		for _, dep := range spec.DataDependencies {
			slot, ok := s.results[dep]
			if !ok {
				return nil, fmt.Errorf("task %d: unknown dependency %s", i, dep)
			}
			if _, self := own[dep]; self {
				return nil, fmt.Errorf("task %d depends on its own output %s", i, dep)
			}
			if slot.state == slotPending && slot.owner == "" && !claimedBefore(dep) {
				return nil, fmt.Errorf("task %d: dependency %s has no producer", i, dep)
			}
		}
	}
	return claimed, nil
}

// commitTasks registers specs and hands their outputs to them. The caller
// holds s.mu.
func (s *Session) commitTasks(specs []orchestration.TaskSpec) {
	for _, spec := range specs {
		t := &task{
			id:      uuid.NewString(),
			spec:    copySpec(spec),
			useCase: spec.Options[orchestration.OptionUseCase],
			state:   taskWaiting,
		}
		for _, out := range t.spec.ExpectedOutputs {
			s.results[out].owner = t.id
		}
		s.tasks[t.id] = t
		s.waiting[t.id] = t
		s.progress.Submitted++
		s.logger.Debug("unit submitted",
			logging.String("session_id", s.id),
			logging.String("task_id", t.id),
			logging.String("use_case", t.useCase),
			logging.Int("dependencies", len(t.spec.DataDependencies)))
	}
}

// scheduleReady starts every waiting task whose dependencies are all ready
// and skips those with an aborted dependency. The caller holds s.mu.
func (s *Session) scheduleReady() {
	for id, t := range s.waiting {
		if t.state != taskWaiting {
			continue
		}
		ready := true
		for _, dep := range t.spec.DataDependencies {
			switch s.results[dep].state {
			case slotAborted:
				s.skip(t, dep)
				ready = false
			case slotPending:
				ready = false
			}
			if !ready {
				break
			}
		}
		if !ready {
			continue
		}
		delete(s.waiting, id)
		t.deps = make(map[string][]byte, len(t.spec.DataDependencies))
		for _, dep := range t.spec.DataDependencies {
			t.deps[dep] = s.results[dep].data
		}
		t.state = taskQueued
		s.group.Go(func() error {
			s.run(t)
			return nil
		})
	}
}

// skip marks t as never run because dependency dep failed, and aborts its
// outputs in turn. The caller holds s.mu.
func (s *Session) skip(t *task, dep string) {
	if t.state != taskWaiting {
		return
	}
	t.state = taskSkipped
	delete(s.waiting, t.id)
	s.progress.Skipped++
	s.stats.UnitSkipped(useCaseLabel(t.useCase))
	s.logger.Info("unit skipped",
		logging.String("session_id", s.id),
		logging.String("task_id", t.id),
		logging.String("use_case", t.useCase),
		logging.String("failed_dependency", dep))
	s.abortOutputs(t)
}

// abortOutputs resolves every pending output owned by t as aborted and skips
// the tasks waiting on them. The caller holds s.mu.
func (s *Session) abortOutputs(t *task) {
	for _, out := range t.spec.ExpectedOutputs {
		slot := s.results[out]
		if slot.owner != t.id || slot.state != slotPending {
			continue
		}
		slot.state = slotAborted
		close(slot.done)
		for _, w := range s.waiting {
			for _, dep := range w.spec.DataDependencies {
				if dep == out {
					s.skip(w, out)
					break
				}
			}
		}
	}
}

func (s *Session) run(t *task) {
	if err := s.sem.Acquire(s.ctx, 1); err != nil {
		s.finish(t, orchestration.Fail(err), false)
		return
	}
	defer s.sem.Release(1)

	s.mu.Lock()
	t.state = taskRunning
	s.progress.Running++
	s.mu.Unlock()
	s.stats.UnitStarted()

	start := time.Now()
	ctx, span := s.startSpan(t)
	out := s.process(ctx, t)
	endSpan(span, out)

	s.stats.UnitFinished(useCaseLabel(t.useCase), statusLabel(out), time.Since(start))
	s.finish(t, out, true)
}

func (s *Session) process(ctx context.Context, t *task) (out orchestration.Output) {
	defer func() {
		if r := recover(); r != nil {
			out = orchestration.Fail(fmt.Errorf("processor panicked: %v", r))
		}
	}()
	return s.proc.Process(ctx, &unitHandler{session: s, task: t})
}

// finish applies the unit's terminal state: buffered submissions and writes
// are committed on success and discarded on failure.
func (s *Session) finish(t *task, out orchestration.Output, ran bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ran {
		s.progress.Running--
	}

	if out.IsOk() {
		if err := s.checkObligation(t); err != nil {
			out = orchestration.Fail(err)
		}
	}

	if out.IsOk() {
		t.state = taskSucceeded
		s.progress.Succeeded++
		s.commitTasks(t.pending)
		for id, data := range t.writes {
			slot := s.results[id]
			slot.data = data
			slot.state = slotReady
			close(slot.done)
		}
	} else {
		t.state = taskFailed
		s.progress.Failed++
		unitErr := apperrors.UnitError{TaskID: t.id, UseCase: t.useCase, Details: out.Error.Details}
		s.failures.SetError(unitErr)
		fields := []logging.Field{
			logging.String("session_id", s.id),
			logging.String("task_id", t.id),
			logging.String("use_case", t.useCase),
			logging.Int("failures", s.failures.Count()),
		}
		if s.ctx.Err() != nil {
			s.logger.Debug("unit stopped by cancellation", append(fields, logging.Err(unitErr))...)
		} else {
			s.logger.Error("unit failed", unitErr, fields...)
		}
		s.abortOutputs(t)
	}
	t.writes, t.pending, t.claims, t.deps = nil, nil, nil, nil
	s.scheduleReady()
}

// checkObligation reports a declared output that t neither wrote nor handed
// to a submitted task. The caller holds s.mu.
func (s *Session) checkObligation(t *task) error {
	for _, out := range t.spec.ExpectedOutputs {
		if _, ok := t.writes[out]; ok {
			continue
		}
		if _, ok := t.claims[out]; ok {
			continue
		}
		return fmt.Errorf("output %s was neither written nor delegated", out)
	}
	return nil
}

// Progress returns a snapshot of the session's unit counters.
func (s *Session) Progress() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress
}

// WaitForResults blocks until every listed result is resolved or ctx is done.
// If a result was aborted it returns the first unit failure of the session.
func (s *Session) WaitForResults(ctx context.Context, ids []string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(ids))
	for _, id := range ids {
		s.mu.Lock()
		slot, ok := s.results[id]
		s.mu.Unlock()
		if !ok {
			return nil, fmt.Errorf("unknown result %s", id)
		}

		select {
		case <-slot.done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		s.mu.Lock()
		state, data := slot.state, slot.data
		s.mu.Unlock()
		if state == slotAborted {
			if err := s.failures.Err(); err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("result %s was aborted", id)
		}
		out[id] = data
	}
	return out, nil
}

// Cancel stops the session: queued units fail without running and running
// units see a done context. Units still waiting on dependencies are never
// started.
func (s *Session) Cancel() {
	s.cancel()
}

// Close waits for every started unit to return and releases the session
// context. Call Cancel first to stop a session that has not finished.
func (s *Session) Close() error {
	err := s.group.Wait()
	s.cancel()
	return err
}

func copySpec(spec orchestration.TaskSpec) orchestration.TaskSpec {
	return orchestration.TaskSpec{
		Payload:          append([]byte(nil), spec.Payload...),
		Options:          spec.Options.Clone(),
		ExpectedOutputs:  append([]string(nil), spec.ExpectedOutputs...),
		DataDependencies: append([]string(nil), spec.DataDependencies...),
	}
}

func statusLabel(out orchestration.Output) string {
	if out.IsOk() {
		return metrics.StatusOk
	}
	return metrics.StatusError
}

// useCaseLabel bounds metric label cardinality to the known use cases.
func useCaseLabel(tag string) string {
	u, err := orchestration.ParseUseCase(tag)
	if err != nil {
		return "unknown"
	}
	return u.String()
}
