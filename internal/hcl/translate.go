package hcl

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/taskgrid/internal/config"
)

// translateTask converts the HCL-specific task schema into the agnostic model.
func translateTask(b *taskBlock, file string) (*config.Task, error) {
	args, err := extractBodyAttributes(b.Arguments)
	if err != nil {
		return nil, fmt.Errorf("invalid arguments for task %q in %s: %w", b.Name, file, err)
	}
	return &config.Task{
		Runner:    b.Runner,
		Name:      b.Name,
		Arguments: args,
		DependsOn: b.DependsOn,
		Then:      b.Then,
		Add:       b.Add,
		Source:    file,
	}, nil
}

func extractBodyAttributes(block *argsBlock) (map[string]hcl.Expression, error) {
	if block == nil || block.Body == nil {
		return nil, nil
	}
	attrs, diags := block.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, diags
	}
	exprMap := make(map[string]hcl.Expression, len(attrs))
	for name, attr := range attrs {
		exprMap[name] = attr.Expr
	}
	return exprMap, nil
}
