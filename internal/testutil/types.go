package testutil

import "time"

// ExecutionRecord holds the start and end times for a single task's work.
type ExecutionRecord struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether the two records' time ranges intersect.
func (r ExecutionRecord) Overlaps(other ExecutionRecord) bool {
	return !r.Start.After(other.End) && !other.Start.After(r.End)
}
