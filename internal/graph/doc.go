// Package graph holds the relationship bookkeeping for a task graph.
//
// # Why Graph Package Exists
//
// The runtime in package task needs to know, for every task, which tasks must
// finish before it runs and which tasks it releases once its own work is done.
// Keeping that bookkeeping here, free of goroutines and locks, lets the
// structure be built, inspected and validated without running anything.
//
// # Relationships
//
// Every Node wraps exactly one owner value and records three relationships:
//
//   - **Relatives:** nodes that must fully finish (including their own
//     siblings) before the owner's work starts. Added with Depends or Then.
//   - **Siblings:** nodes that may only start after the owner's work has
//     finished, and that must all finish before the owner is considered
//     complete. Added with Add.
//   - **Parent:** the node a sibling was added under. Nil for roots.
//
// # Validation
//
// DetectCycles models every node as two events, the end of its work
// ("payload") and its full completion ("done"):
//
//	payload(n) waits for done(r) for every relative r, and payload(parent)
//	done(n)    waits for payload(n), and done(s) for every sibling s
//
// A cycle among these events is exactly a set of tasks that would wait on
// each other forever, so it is rejected before anything is launched.
//
// # Thread-Safety
//
// Nodes are not safe for concurrent mutation. Relationships are added while
// the graph is being built and are read-only once execution starts.
package graph
