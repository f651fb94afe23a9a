package scheduler

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithWorkers bounds how many task payloads may run at the same time.
// Zero or a negative value means no bound.
func WithWorkers(n int) Option {
	return func(s *Scheduler) { s.workers = n }
}

// WithRecorder forwards every record to r.
func WithRecorder(r Recorder) Option {
	return func(s *Scheduler) { s.recorder = r }
}

// WithRunID overrides the generated run id.
func WithRunID(id string) Option {
	return func(s *Scheduler) {
		if id != "" {
			s.runID = id
		}
	}
}
