package app

import (
	"io"

	"github.com/vk/taskgrid/internal/registry"
	"github.com/vk/taskgrid/modules/env_vars"
	"github.com/vk/taskgrid/modules/print"
	"github.com/vk/taskgrid/modules/sleep"
	"github.com/vk/taskgrid/modules/socketio"
)

// coreModules is the definitive list of all modules that are compiled into
// the taskgrid binary. Printed output goes to outW.
func coreModules(outW io.Writer) []registry.Module {
	return []registry.Module{
		&env_vars.Module{},
		&print.Module{Out: outW},
		&sleep.Module{},
		&socketio.Module{},
	}
}
