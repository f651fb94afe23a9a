package config

import (
	"github.com/hashicorp/hcl/v2"
)

// Model is the unified, format-agnostic representation of a task grid.
type Model struct {
	Tasks []*Task
}

// Task is the format-agnostic representation of a `task` block.
type Task struct {
	// Runner names the registered runner that performs the work.
	Runner string
	// Name is unique across the grid and is what other tasks refer to.
	Name      string
	Arguments map[string]hcl.Expression
	// DependsOn and Then name tasks that must fully finish first.
	DependsOn []string
	Then      []string
	// Add names tasks that start once this task's work succeeded.
	Add []string
	// Source is the file the block was read from.
	Source string
}

// TaskNames returns the names of every task in declaration order.
func (m *Model) TaskNames() []string {
	names := make([]string, 0, len(m.Tasks))
	for _, t := range m.Tasks {
		names = append(names, t.Name)
	}
	return names
}
