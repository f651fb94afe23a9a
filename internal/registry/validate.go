package registry

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/vk/taskgrid/internal/ctxlog"
)

// ValidateRegistry checks that every runner can actually be called: it has
// a function, and its input factory yields a pointer to a struct.
func (r *Registry) ValidateRegistry(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for _, name := range r.Names() {
		h, _ := r.Lookup(name)
		if h == nil || h.Fn == nil {
			errs = append(errs, fmt.Sprintf("runner '%s': no handler function", name))
			continue
		}
		if h.NewInput == nil {
			logger.Debug("Runner takes no arguments.", "runner", name)
			continue
		}

		in := h.NewInput()
		t := reflect.TypeOf(in)
		if t == nil || t.Kind() != reflect.Ptr || t.Elem().Kind() != reflect.Struct {
			errs = append(errs, fmt.Sprintf("runner '%s': input must be a pointer to a struct, got %T", name, in))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}
