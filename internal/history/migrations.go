package history

var migrations = []struct {
	version int
	sql     string
}{
	{1, migrationV1TaskRuns},
}

const migrationV1TaskRuns = `
CREATE TABLE IF NOT EXISTS task_runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	seq INTEGER NOT NULL,
	task_id INTEGER NOT NULL,
	name TEXT NOT NULL,
	status TEXT NOT NULL,
	error TEXT,
	started_at TEXT,
	finished_at TEXT NOT NULL,
	UNIQUE (run_id, task_id)
);

CREATE INDEX IF NOT EXISTS idx_task_runs_run_id ON task_runs(run_id);
`
