package task

import (
	"cmp"
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vk/taskgrid/internal/ctxlog"
	"github.com/vk/taskgrid/internal/graph"
	"github.com/vk/taskgrid/internal/taskid"
)

// Task is a schedulable unit of work with an identity, a set of relationships
// to other tasks and a payload.
type Task struct {
	id   uint64
	name string
	work Work
	node *graph.Node[*Task]

	// scheduler is assigned before the graph runs and read once the task finishes.
	scheduler atomic.Pointer[schedulerRef]

	launched   atomic.Bool
	started    atomic.Bool
	permission atomic.Bool
	finished   atomic.Bool
	state      atomic.Int32

	// gate is closed once the outcome of the work is known; siblings wait on it.
	gate chan struct{}
	// done is closed once the task reached a terminal state and was reported.
	done chan struct{}

	mu         sync.Mutex
	startedAt  time.Time
	finishedAt time.Time
	workErr    error
	err        error
}

// linkMu serialises relationship changes with launches. Add touches more than
// one task, so a per-task lock would need an ordering.
var linkMu sync.Mutex

// schedulerRef boxes the interface so it can live in an atomic.Pointer.
type schedulerRef struct{ s Scheduler }

// Option configures a Task at construction.
type Option func(*options)

type options struct {
	ids *taskid.Allocator
}

// WithIDs makes the task draw its id from a rather than taskid.Default.
func WithIDs(a *taskid.Allocator) Option {
	return func(o *options) { o.ids = a }
}

// New creates a task with a fresh id. A nil work is a no-op payload.
func New(name string, work Work, opts ...Option) *Task {
	o := options{ids: taskid.Default}
	for _, opt := range opts {
		opt(&o)
	}
	if work == nil {
		work = WorkFunc(func(context.Context, *Task) error { return nil })
	}

	t := &Task{
		id:   o.ids.Next(),
		name: name,
		work: work,
		gate: make(chan struct{}),
		done: make(chan struct{}),
	}
	t.node = graph.NewNode(t)
	return t
}

// ID returns the task's unique id.
func (t *Task) ID() uint64 { return t.id }

// Name returns the task's display name.
func (t *Task) Name() string { return t.name }

// String returns the display name, falling back to the id.
func (t *Task) String() string {
	if t.name != "" {
		return t.name
	}
	return fmt.Sprintf("task-%d", t.id)
}

// Node returns the graph node owned by the task.
func (t *Task) Node() *graph.Node[*Task] { return t.node }

// Compare orders tasks by id.
func (t *Task) Compare(other *Task) int { return cmp.Compare(t.id, other.id) }

// Less reports whether t was created before other.
func (t *Task) Less(other *Task) bool { return t.id < other.id }

// Depends makes every given task a relative of t: they must fully finish
// before t's work runs. It returns t for chaining. It panics once t was
// launched, including when it loses a race with Start.
func (t *Task) Depends(others ...*Task) *Task {
	linkMu.Lock()
	defer linkMu.Unlock()
	t.mustBeUnlaunched("Depends")
	t.node.Depends(nodesOf(others)...)
	return t
}

// Then records the same relationship as Depends. It returns t for chaining.
func (t *Task) Then(others ...*Task) *Task {
	linkMu.Lock()
	defer linkMu.Unlock()
	t.mustBeUnlaunched("Then")
	t.node.Then(nodesOf(others)...)
	return t
}

// Add makes every given task a sibling of t: they start once t's work has
// finished, and t is not reported complete until they all are. It returns t
// for chaining. Neither t nor any of others may have been launched.
func (t *Task) Add(others ...*Task) *Task {
	linkMu.Lock()
	defer linkMu.Unlock()
	t.mustBeUnlaunched("Add")
	for _, o := range others {
		if o != nil {
			o.mustBeUnlaunched("Add")
		}
	}
	t.node.Add(nodesOf(others)...)
	return t
}

// Parent returns the task t was added under, or nil.
func (t *Task) Parent() *Task {
	if p := t.node.Parent(); p != nil {
		return p.Owner()
	}
	return nil
}

// Relatives returns the tasks t depends on, in insertion order.
func (t *Task) Relatives() []*Task { return ownersOf(t.node.Relatives()) }

// Siblings returns the tasks added under t, in insertion order.
func (t *Task) Siblings() []*Task { return ownersOf(t.node.Siblings()) }

// SetScheduler assigns the scheduler notified when t finishes. It must be
// called before t is launched.
func (t *Task) SetScheduler(s Scheduler) {
	linkMu.Lock()
	defer linkMu.Unlock()
	t.mustBeUnlaunched("SetScheduler")
	t.scheduler.Store(&schedulerRef{s: s})
}

// Scheduler returns the scheduler assigned to t, or nil.
func (t *Task) Scheduler() Scheduler {
	if ref := t.scheduler.Load(); ref != nil {
		return ref.s
	}
	return nil
}

// Start launches t's lifecycle on its own goroutine. Only the first call has
// any effect; it returns true for that call and false for every later one.
func (t *Task) Start(ctx context.Context) bool {
	if ctx == nil {
		ctx = context.Background()
	}
	linkMu.Lock()
	swapped := t.launched.CompareAndSwap(false, true)
	linkMu.Unlock()
	if !swapped {
		return false
	}
	t.state.Store(int32(Pending))
	go t.run(ctx)
	return true
}

// Done returns a channel closed once t reached a terminal state and the
// scheduler was notified.
func (t *Task) Done() <-chan struct{} { return t.done }

// Wait blocks until t is done and returns its terminal error. Waiting on a
// task that is never launched blocks forever.
func (t *Task) Wait() error {
	<-t.done
	return t.Err()
}

// Launched reports whether Start has been called.
func (t *Task) Launched() bool { return t.launched.Load() }

// HasStarted reports whether t's work has begun.
func (t *Task) HasStarted() bool { return t.started.Load() }

// SiblingsPermitted reports whether t's work succeeded and its siblings may run.
func (t *Task) SiblingsPermitted() bool { return t.permission.Load() }

// HasFinished reports whether t reached a terminal state and was reported.
func (t *Task) HasFinished() bool { return t.finished.Load() }

// State returns t's current lifecycle state.
func (t *Task) State() State { return State(t.state.Load()) }

// StartedAt returns when t's work began, or the zero time.
func (t *Task) StartedAt() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.startedAt
}

// FinishedAt returns when t reached a terminal state, or the zero time.
func (t *Task) FinishedAt() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.finishedAt
}

// Err returns t's terminal error. It is nil while t is running and after it
// finished successfully.
func (t *Task) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// run drives the lifecycle. It executes exactly once per task.
func (t *Task) run(ctx context.Context) {
	logger := ctxlog.FromContext(ctx).With("task", t.String(), "task_id", t.id)
	logger.Debug("Task launched.")

	err := t.awaitRelatives(ctx)

	if err == nil {
		err = t.awaitParent(ctx)
	}

	if err == nil {
		err = t.execute(ctx)
		if err != nil {
			logger.Error("Task work failed.", "error", err)
		}
	} else {
		logger.Warn("Skipping task work due to upstream failure.", "error", err)
	}

	t.mu.Lock()
	t.workErr = err
	t.mu.Unlock()
	if err == nil {
		t.permission.Store(true)
	}
	close(t.gate)

	t.state.Store(int32(Completing))
	if serr := t.awaitSiblings(ctx); serr != nil && err == nil {
		err = serr
	}

	t.finish(ctx, err)
	if err != nil {
		logger.Debug("Task failed.", "error", err)
	} else {
		logger.Debug("Task finished.")
	}
}

// awaitRelatives launches every relative and then joins them in order.
func (t *Task) awaitRelatives(ctx context.Context) error {
	relatives := t.Relatives()
	for _, r := range relatives {
		r.Start(ctx)
	}
	var first error
	for _, r := range relatives {
		if err := r.Wait(); err != nil && first == nil {
			first = &UpstreamError{Task: t.String(), Upstream: r.String(), Err: err}
		}
	}
	return first
}

// awaitParent blocks until the parent's work outcome is known. The parent is
// launched if nothing else launched it yet.
func (t *Task) awaitParent(ctx context.Context) error {
	p := t.Parent()
	if p == nil {
		return nil
	}
	t.state.Store(int32(Gated))
	p.Start(ctx)
	<-p.gate
	if p.permission.Load() {
		return nil
	}

	p.mu.Lock()
	cause := p.workErr
	p.mu.Unlock()
	if cause == nil {
		cause = ErrParentFailed
	}
	return &UpstreamError{Task: t.String(), Upstream: p.String(), Err: cause}
}

// execute runs the work, holding a payload slot if the scheduler offers them.
func (t *Task) execute(ctx context.Context) (err error) {
	if l, ok := t.Scheduler().(Limiter); ok {
		// Payload slots are never abandoned: in-flight tasks are not cancellable.
		release, aerr := l.Acquire(context.WithoutCancel(ctx))
		if aerr != nil {
			return fmt.Errorf("acquire payload slot: %w", aerr)
		}
		defer release()
	}

	t.mu.Lock()
	t.startedAt = time.Now()
	t.mu.Unlock()
	t.started.Store(true)
	t.state.Store(int32(Running))

	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return t.work.Run(ctx, t)
}

// awaitSiblings launches every sibling and then joins them in order.
func (t *Task) awaitSiblings(ctx context.Context) error {
	siblings := t.Siblings()
	for _, s := range siblings {
		s.Start(ctx)
	}
	var first error
	for _, s := range siblings {
		if err := s.Wait(); err != nil && first == nil {
			first = &SiblingError{Task: t.String(), Sibling: s.String(), Err: err}
		}
	}
	return first
}

func (t *Task) finish(ctx context.Context, err error) {
	t.mu.Lock()
	t.finishedAt = time.Now()
	t.err = err
	t.mu.Unlock()

	if err != nil {
		t.state.Store(int32(Failed))
	} else {
		t.state.Store(int32(Finished))
	}

	if s := t.Scheduler(); s != nil {
		s.NotifyExecution(ctx, t)
	}
	t.finished.Store(true)
	close(t.done)
}

func (t *Task) mustBeUnlaunched(op string) {
	if t.launched.Load() {
		panic(fmt.Sprintf("task: %s called on %s after it was launched", op, t))
	}
}

func nodesOf(tasks []*Task) []*graph.Node[*Task] {
	out := make([]*graph.Node[*Task], 0, len(tasks))
	for _, t := range tasks {
		if t != nil {
			out = append(out, t.node)
		}
	}
	return out
}

func ownersOf(nodes []*graph.Node[*Task]) []*Task {
	out := make([]*Task, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Owner())
	}
	return out
}
