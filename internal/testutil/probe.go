package testutil

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vk/taskgrid/internal/task"
)

// Probe hands out task work that records when it ran and how often. It is
// the shared fixture for ordering and concurrency tests.
type Probe struct {
	mu      sync.Mutex
	records map[string]ExecutionRecord
	calls   map[string]int
	order   []string

	running    atomic.Int32
	maxRunning atomic.Int32
}

// NewProbe creates an empty probe.
func NewProbe() *Probe {
	return &Probe{
		records: make(map[string]ExecutionRecord),
		calls:   make(map[string]int),
	}
}

// Work returns task work registered under id that sleeps for d and then
// returns err.
func (p *Probe) Work(id string, d time.Duration, err error) task.Work {
	return task.WorkFunc(func(ctx context.Context, _ *task.Task) error {
		n := p.running.Add(1)
		for {
			prev := p.maxRunning.Load()
			if n <= prev || p.maxRunning.CompareAndSwap(prev, n) {
				break
			}
		}

		start := time.Now()
		if d > 0 {
			time.Sleep(d)
		}
		end := time.Now()
		p.running.Add(-1)

		p.mu.Lock()
		p.records[id] = ExecutionRecord{Start: start, End: end}
		p.calls[id]++
		p.order = append(p.order, id)
		p.mu.Unlock()
		return err
	})
}

// Record returns the execution record for id.
func (p *Probe) Record(id string) (ExecutionRecord, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	r, ok := p.records[id]
	return r, ok
}

// Calls returns how many times the work registered under id ran.
func (p *Probe) Calls(id string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[id]
}

// Order returns ids in the order their work finished.
func (p *Probe) Order() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.order...)
}

// MaxConcurrent returns the highest number of probe works seen running at once.
func (p *Probe) MaxConcurrent() int {
	return int(p.maxRunning.Load())
}
