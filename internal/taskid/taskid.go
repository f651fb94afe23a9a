// Package taskid allocates task identities.
//
// Ids are strictly increasing and never reused within an Allocator. They order
// tasks for comparison and sorting; they say nothing about execution order.
package taskid

import "sync/atomic"

// Allocator hands out increasing ids. The zero value is ready to use and the
// first id it returns is 1. It is safe for concurrent use.
type Allocator struct {
	last atomic.Uint64
}

// Default is the process-wide allocator used when a task is constructed
// without an explicit one. It is safe for concurrent use.
var Default = &Allocator{}

// New returns an allocator whose first id is 1.
func New() *Allocator {
	return &Allocator{}
}

// Next returns the next id.
func (a *Allocator) Next() uint64 {
	return a.last.Add(1)
}

// Last returns the most recently allocated id, or 0 if none was allocated.
func (a *Allocator) Last() uint64 {
	return a.last.Load()
}
