package hcl

import (
	"context"
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

// parseArgs turns `name = expr` source into the argument map the loader produces.
func parseArgs(t *testing.T, src string) map[string]hcl.Expression {
	t.Helper()
	file, diags := hclsyntax.ParseConfig([]byte(src), "test.hcl", hcl.InitialPos)
	require.False(t, diags.HasErrors(), diags.Error())
	attrs, diags := file.Body.JustAttributes()
	require.False(t, diags.HasErrors(), diags.Error())
	out := make(map[string]hcl.Expression, len(attrs))
	for name, attr := range attrs {
		out[name] = attr.Expr
	}
	return out
}

type sampleInput struct {
	Message string   `grid:"message"`
	Count   int      `grid:"count,optional"`
	Tags    []string `grid:"tags,optional"`
	Fail    bool     `grid:"fail,optional"`
	Ignored string   `grid:"-"`
}

func TestConverter_DecodeArguments(t *testing.T) {
	conv := NewConverter(map[string]string{"GREETING": "hello"})
	ctx := context.Background()

	t.Run("decodes and converts values", func(t *testing.T) {
		var in sampleInput
		args := parseArgs(t, `
message = "${env.GREETING} world"
count   = "3"
tags    = ["a", "b"]
`)
		require.NoError(t, conv.DecodeArguments(ctx, &in, args))
		assert.Equal(t, "hello world", in.Message)
		assert.Equal(t, 3, in.Count, "strings convert to numbers")
		assert.Equal(t, []string{"a", "b"}, in.Tags)
		assert.False(t, in.Fail)
	})

	t.Run("missing required argument", func(t *testing.T) {
		var in sampleInput
		err := conv.DecodeArguments(ctx, &in, nil)
		assert.EqualError(t, err, `missing required argument "message"`)
	})

	t.Run("unsupported argument", func(t *testing.T) {
		var in sampleInput
		err := conv.DecodeArguments(ctx, &in, parseArgs(t, `
message = "x"
zeta    = 1
alpha   = 2
`))
		assert.EqualError(t, err, "unsupported argument(s): alpha, zeta")
	})

	t.Run("type mismatch", func(t *testing.T) {
		var in sampleInput
		err := conv.DecodeArguments(ctx, &in, parseArgs(t, `
message = "x"
count   = "many"
`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to decode argument 'count'")
	})

	t.Run("unknown env variable", func(t *testing.T) {
		var in sampleInput
		err := conv.DecodeArguments(ctx, &in, parseArgs(t, `message = env.NOPE`))
		assert.Error(t, err)
	})

	t.Run("target must be a struct pointer", func(t *testing.T) {
		var s string
		assert.Error(t, conv.DecodeArguments(ctx, s, nil))
		assert.Error(t, conv.DecodeArguments(ctx, &s, nil))
	})
}

func TestConverter_ToCtyValue(t *testing.T) {
	conv := NewConverter(nil)

	v, err := conv.ToCtyValue(map[string]string{"A": "1"})
	require.NoError(t, err)
	assert.True(t, v.Type().Equals(cty.Map(cty.String)))
	assert.Equal(t, cty.StringVal("1"), v.Index(cty.StringVal("A")))

	v, err = conv.ToCtyValue(nil)
	require.NoError(t, err)
	assert.Equal(t, cty.NilVal, v)
}
