package config

import (
	"context"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// Load reads configuration from the given paths, translates it into the
	// format-agnostic model, and returns a matching Converter.
	Load(ctx context.Context, paths ...string) (*Model, Converter, error)
}

// Converter is the interface for a format-specific data binding and type
// conversion implementation. It acts as the bridge between the raw configuration
// and the Go types used by runners.
type Converter interface {
	// DecodeArguments evaluates a task's raw arguments and decodes them into
	// the runner's input struct, applying its required/optional rules.
	DecodeArguments(ctx context.Context, target any, args map[string]hcl.Expression) error

	// ToCtyValue converts a native Go value into its equivalent cty.Value.
	ToCtyValue(v any) (cty.Value, error)
}
