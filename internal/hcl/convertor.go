package hcl

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/taskgrid/internal/config"
	"github.com/vk/taskgrid/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Converter is the HCL-specific implementation of the config.Converter interface.
type Converter struct {
	env map[string]string
}

var _ config.Converter = (*Converter)(nil)

// NewConverter creates a converter whose expressions can read env as `env.NAME`.
func NewConverter(env map[string]string) *Converter {
	if env == nil {
		env = map[string]string{}
	}
	return &Converter{env: env}
}

// EvalContext returns the variables and functions available to grid expressions.
func (c *Converter) EvalContext() (*hcl.EvalContext, error) {
	env, err := c.ToCtyValue(c.env)
	if err != nil {
		return nil, fmt.Errorf("failed to build env variables: %w", err)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"env": env},
	}, nil
}

// DecodeArguments evaluates HCL expressions and populates the provided Go
// struct using reflection. Fields are matched by their `grid` tag, falling
// back to the field name; a tag option of "optional" allows the argument to
// be omitted. Arguments that match no field are rejected.
func (c *Converter) DecodeArguments(ctx context.Context, target any, args map[string]hcl.Expression) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Starting HCL argument decoding.", "arguments", len(args))

	structVal := reflect.ValueOf(target)
	if structVal.Kind() != reflect.Ptr || structVal.IsNil() {
		return fmt.Errorf("target must be a non-nil pointer")
	}
	structVal = structVal.Elem()
	if structVal.Kind() != reflect.Struct {
		return fmt.Errorf("target must point to a struct, got %s", structVal.Kind())
	}
	structType := structVal.Type()

	evalCtx, err := c.EvalContext()
	if err != nil {
		return err
	}

	used := make(map[string]struct{}, len(args))
	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		fieldVal := structVal.Field(i)
		if !fieldVal.CanSet() {
			continue
		}

		name, optional := field.Name, false
		if tag := field.Tag.Get("grid"); tag != "" {
			parts := strings.Split(tag, ",")
			if parts[0] == "-" {
				continue
			}
			if parts[0] != "" {
				name = parts[0]
			}
			optional = slices.Contains(parts[1:], "optional")
		}

		expr, provided := args[name]
		if !provided {
			if !optional {
				return fmt.Errorf("missing required argument %q", name)
			}
			continue
		}
		used[name] = struct{}{}

		val, diags := expr.Value(evalCtx)
		if diags.HasErrors() {
			return diags
		}
		if err := c.decode(ctx, val, fieldVal.Addr().Interface()); err != nil {
			return fmt.Errorf("failed to decode argument '%s': %w", name, err)
		}
	}

	var unknown []string
	for name := range args {
		if _, ok := used[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		slices.Sort(unknown)
		return fmt.Errorf("unsupported argument(s): %s", strings.Join(unknown, ", "))
	}

	logger.Debug("Finished HCL argument decoding successfully.")
	return nil
}

// decode handles the conversion and decoding of a cty.Value into a Go pointer.
func (c *Converter) decode(ctx context.Context, val cty.Value, goVal any) error {
	logger := ctxlog.FromContext(ctx)
	valPtr := reflect.ValueOf(goVal)
	if valPtr.Kind() != reflect.Ptr {
		return fmt.Errorf("target for decoding must be a pointer, got %T", goVal)
	}

	impliedType, err := gocty.ImpliedType(valPtr.Elem().Interface())
	if err != nil {
		logger.Debug("Could not imply cty.Type from Go type, attempting direct decoding.", "go_type", valPtr.Elem().Type().String(), "error", err)
		return gocty.FromCtyValue(val, goVal)
	}

	convertedVal, err := convert.Convert(val, impliedType)
	if err != nil {
		return fmt.Errorf("cannot convert %s to required type %s: %w", val.Type().FriendlyName(), impliedType.FriendlyName(), err)
	}

	if !val.Type().Equals(convertedVal.Type()) {
		logger.Debug("Implicitly converted value type.",
			"from", val.Type().FriendlyName(),
			"to", convertedVal.Type().FriendlyName(),
		)
	}

	return gocty.FromCtyValue(convertedVal, goVal)
}

// ToCtyValue converts a native Go value into its corresponding cty.Value.
func (c *Converter) ToCtyValue(v any) (cty.Value, error) {
	if v == nil {
		return cty.NilVal, nil
	}
	ty, err := gocty.ImpliedType(v)
	if err != nil {
		return cty.NilVal, fmt.Errorf("unable to infer cty.Type: %w", err)
	}
	return gocty.ToCtyValue(v, ty)
}
