// Package registry provides the central "glue" for the module system.
//
// The Registry stores the mapping between the runner names used in grid
// files (e.g. `task "print" "hello"`) and the compiled Go functions that
// implement them. It is populated once at startup by every Module and then
// validated, so a malformed runner is caught before any grid is built.
package registry
