package hcl

import "github.com/hashicorp/hcl/v2"

// fileRoot is a struct used to decode all top-level blocks from any file.
type fileRoot struct {
	Tasks  []*taskBlock `hcl:"task,block"`
	Remain hcl.Body     `hcl:",remain"`
}

// taskBlock represents a `task` block from a user's grid file.
type taskBlock struct {
	Runner    string     `hcl:"runner,label"`
	Name      string     `hcl:"name,label"`
	Arguments *argsBlock `hcl:"arguments,block"`
	DependsOn []string   `hcl:"depends_on,optional"`
	Then      []string   `hcl:"then,optional"`
	Add       []string   `hcl:"add,optional"`
}

// argsBlock represents the content of the 'arguments' block within a task.
type argsBlock struct {
	Body hcl.Body `hcl:",remain"`
}
