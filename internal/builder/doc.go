/*
Package builder is responsible for the construction of the task graph. It acts
as the bridge between the static configuration model (defined in the 'config'
package) and the task runtime (the 'task' and 'scheduler' packages).

The primary artifact produced by this package is a validated, ready-to-run *Plan.

The construction is a multi-phase process:

 1. Task Creation: every `task` block becomes a *task.Task bound to its
    registered runner. Arguments are decoded here, so a bad argument fails
    the build instead of the run.

 2. Relationship Linking: `depends_on`, `then` and `add` are resolved by
    task name and recorded on the tasks.

 3. Validation: the linked graph is checked for cycles and for tasks added
    under more than one parent.
*/
package builder
