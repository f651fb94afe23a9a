package scheduler

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/vk/taskgrid/internal/ctxlog"
	"github.com/vk/taskgrid/internal/graph"
	"github.com/vk/taskgrid/internal/task"
	"golang.org/x/sync/semaphore"
)

// Scheduler registers tasks, launches a graph of them and records every
// completion it is notified about.
type Scheduler struct {
	runID    string
	workers  int
	sem      *semaphore.Weighted
	recorder Recorder

	mu      sync.Mutex
	tasks   map[uint64]*task.Task
	records []Record
	seen    map[uint64]int
}

var (
	_ task.Scheduler = (*Scheduler)(nil)
	_ task.Limiter   = (*Scheduler)(nil)
)

// New creates a scheduler.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		runID: uuid.NewString(),
		tasks: make(map[uint64]*task.Task),
		seen:  make(map[uint64]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.workers > 0 {
		s.sem = semaphore.NewWeighted(int64(s.workers))
	}
	return s
}

// RunID identifies this scheduler's run in logs and history.
func (s *Scheduler) RunID() string { return s.runID }

// Register makes s the scheduler of every given task. Registering a task
// twice is a no-op. Either every task is registered or, on error, none is.
func (s *Scheduler) Register(tasks ...*task.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending := make([]*task.Task, 0, len(tasks))
	for _, t := range tasks {
		if t == nil {
			continue
		}
		switch owner := t.Scheduler(); {
		case owner == task.Scheduler(s):
		case owner != nil:
			return fmt.Errorf("register %s: %w", t, ErrForeignTask)
		case t.Launched():
			return fmt.Errorf("register %s: %w", t, ErrAlreadyLaunched)
		}
		pending = append(pending, t)
	}

	for _, t := range pending {
		if t.Scheduler() == nil {
			t.SetScheduler(s)
		}
		s.tasks[t.ID()] = t
	}
	return nil
}

// NotifyExecution records that t reached a terminal state. Only the first
// notification per task is kept.
func (s *Scheduler) NotifyExecution(ctx context.Context, t *task.Task) {
	logger := ctxlog.FromContext(ctx)

	s.mu.Lock()
	if _, dup := s.seen[t.ID()]; dup {
		s.mu.Unlock()
		logger.Warn("Ignoring duplicate execution notification.", "task", t.String(), "task_id", t.ID())
		return
	}
	rec := Record{
		Order:      len(s.records) + 1,
		TaskID:     t.ID(),
		Name:       t.String(),
		StartedAt:  t.StartedAt(),
		FinishedAt: t.FinishedAt(),
		Err:        t.Err(),
	}
	s.seen[t.ID()] = len(s.records)
	s.records = append(s.records, rec)
	s.mu.Unlock()

	logger.Debug("Task reported.", "task", rec.Name, "task_id", rec.TaskID, "order", rec.Order, "status", rec.Status())

	if s.recorder != nil {
		// Tasks keep running after cancellation, so their records must still land.
		if err := s.recorder.Record(context.WithoutCancel(ctx), s.runID, rec); err != nil {
			logger.Error("Failed to persist task record.", "task", rec.Name, "error", err)
		}
	}
}

// Acquire takes a payload slot. Without a worker bound it never blocks.
func (s *Scheduler) Acquire(ctx context.Context) (func(), error) {
	if s.sem == nil {
		return func() {}, nil
	}
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	return func() { s.sem.Release(1) }, nil
}

// Run executes the graph reachable from roots, or from every registered
// task when no roots are given, and blocks until all of it is done.
//
// The graph is validated before anything is launched. The returned error
// names the tasks whose own work failed; tasks that were only skipped
// because of them are not listed.
func (s *Scheduler) Run(ctx context.Context, roots ...*task.Task) error {
	logger := ctxlog.FromContext(ctx).With("run_id", s.runID)
	ctx = ctxlog.WithLogger(ctx, logger)

	if len(roots) == 0 {
		roots = s.Tasks()
	}
	nodes := make([]*graph.Node[*task.Task], 0, len(roots))
	for _, r := range roots {
		if r != nil {
			nodes = append(nodes, r.Node())
		}
	}

	reachable := graph.Reachable(nodes...)
	if err := graph.Validate(reachable...); err != nil {
		return fmt.Errorf("invalid task graph: %w", err)
	}

	all := make([]*task.Task, 0, len(reachable))
	for _, n := range reachable {
		all = append(all, n.Owner())
	}
	if err := s.Register(all...); err != nil {
		return err
	}

	var entries []*task.Task
	for _, n := range reachable {
		if !n.References(reachable) {
			entries = append(entries, n.Owner())
		}
	}
	// Every reachable task is launched transitively from an entry point; a
	// graph without any is a pure cycle and was rejected above.
	logger.Info("🚀 Starting concurrent execution...", "tasks", len(all), "entry_points", len(entries), "workers", s.workers)

	for _, t := range entries {
		t.Start(ctx)
	}
	for _, t := range all {
		<-t.Done()
	}
	logger.Info("🏁 Execution finished.")

	return rootCause(all)
}

func rootCause(tasks []*task.Task) error {
	sorted := slices.Clone(tasks)
	slices.SortFunc(sorted, (*task.Task).Compare)

	var (
		failed []string
		cause  error
	)
	for _, t := range sorted {
		err := t.Err()
		if !task.IsRootCause(err) {
			continue
		}
		failed = append(failed, t.String())
		if cause == nil {
			cause = err
		}
	}
	if cause == nil {
		return nil
	}
	return fmt.Errorf("execution failed for %s: %w", strings.Join(failed, ", "), cause)
}

// Records returns a copy of the records in the order tasks were reported.
func (s *Scheduler) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.records)
}

// Lookup returns the registered task with the given id.
func (s *Scheduler) Lookup(id uint64) (*task.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	return t, ok
}

// Finished reports whether the task with the given id was reported.
func (s *Scheduler) Finished(id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.seen[id]
	return ok
}

// Tasks returns the registered tasks ordered by id.
func (s *Scheduler) Tasks() []*task.Task {
	s.mu.Lock()
	out := make([]*task.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t)
	}
	s.mu.Unlock()
	slices.SortFunc(out, (*task.Task).Compare)
	return out
}

// Summary counts outcomes across registered tasks.
func (s *Scheduler) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum := Summary{RunID: s.runID, Total: len(s.tasks)}
	for _, rec := range s.records {
		switch rec.Status() {
		case StatusFinished:
			sum.Succeeded++
		case StatusFailed:
			sum.Failed++
		case StatusIncomplete:
			sum.Incomplete++
		default:
			sum.Skipped++
		}
	}
	sum.Pending = sum.Total - len(s.records)
	if sum.Pending < 0 {
		sum.Pending = 0
	}
	return sum
}
