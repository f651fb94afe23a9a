package graph

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCycle reports relationships that would make tasks wait on each other forever.
	ErrCycle = errors.New("cycle detected")
	// ErrInvalid reports a structurally invalid graph.
	ErrInvalid = errors.New("invalid task graph")
)

// Error wraps a structural validation failure. Kind is one of the package
// sentinel errors and can be matched with errors.Is.
type Error struct {
	Kind error
	Path []string
	Msg  string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case len(e.Path) > 0:
		return fmt.Sprintf("%s: %s", e.Kind.Error(), strings.Join(e.Path, " -> "))
	case e.Msg != "":
		return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Msg)
	default:
		return e.Kind.Error()
	}
}

func (e *Error) Unwrap() error { return e.Kind }

func invalidf(format string, args ...any) error {
	return &Error{Kind: ErrInvalid, Msg: fmt.Sprintf(format, args...)}
}

func cycleError(path []string) error {
	return &Error{Kind: ErrCycle, Path: path}
}
