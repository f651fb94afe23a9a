// Package task implements the runtime for a single schedulable unit of work.
//
// A Task owns a graph.Node that records its relatives (dependencies), its
// siblings and its parent. Starting a task launches one goroutine that drives
// the task through its lifecycle:
//
//  1. Pending: every relative is started, then joined in list order.
//  2. Gated: a task with a parent waits until the parent's work has
//     succeeded (or failed) before going further.
//  3. Running: the task's Work runs.
//  4. Completing: the sibling gate opens, every sibling is started and
//     joined in list order.
//  5. Finished or Failed: the finish time is recorded and the scheduler is
//     notified exactly once.
//
// Start is idempotent: a task reachable from several relatives still runs
// its work at most once.
//
// A failed task never blocks the graph. Tasks that wait on it fail with an
// *UpstreamError without running their own work, so every launched task
// reaches a terminal state and is reported to the scheduler.
package task
