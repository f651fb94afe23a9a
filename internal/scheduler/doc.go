// Package scheduler is the boundary between a graph of tasks and the code
// that runs it.
//
// Tasks drive their own lifecycle; the scheduler registers them, checks the
// graph before anything is launched, starts the entry points and collects a
// record for every task that reaches a terminal state. It also bounds how
// many payloads may run at once when configured with WithWorkers.
package scheduler
