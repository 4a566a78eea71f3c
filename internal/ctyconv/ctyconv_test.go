package ctyconv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestToCty_Scalars(t *testing.T) {
	testCases := []struct {
		name string
		in   any
		want cty.Value
	}{
		{"string", "bar", cty.StringVal("bar")},
		{"bool", true, cty.True},
		{"int", 3, cty.NumberIntVal(3)},
		{"int64", int64(-7), cty.NumberIntVal(-7)},
		{"uint8", uint8(9), cty.NumberUIntVal(9)},
		{"float", 5.5, cty.NumberFloatVal(5.5)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ToCty(tc.in)
			require.NoError(t, err)
			assert.True(t, got.RawEquals(tc.want), "got %#v, want %#v", got, tc.want)
		})
	}
}

func TestToCty_Nil(t *testing.T) {
	got, err := ToCty(nil)
	require.NoError(t, err)
	assert.True(t, got.IsNull())
}

func TestToCty_RejectsCollectionsAndNaN(t *testing.T) {
	_, err := ToCty([]any{"a"})
	require.Error(t, err)

	_, err = ToCty(map[string]any{"a": 1})
	require.Error(t, err)

	_, err = ToCty(math.NaN())
	require.Error(t, err)
}

func TestToNative(t *testing.T) {
	val := cty.ObjectVal(map[string]cty.Value{
		"name":    cty.StringVal("x"),
		"whole":   cty.NumberIntVal(3),
		"decimal": cty.NumberFloatVal(5.5),
		"flag":    cty.False,
		"list":    cty.TupleVal([]cty.Value{cty.StringVal("a"), cty.NumberIntVal(1)}),
		"missing": cty.NullVal(cty.String),
	})

	got, err := ToNative(val)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"name":    "x",
		"whole":   3,
		"decimal": 5.5,
		"flag":    false,
		"list":    []any{"a", 1},
		"missing": nil,
	}, got)
}

func TestIsScalar(t *testing.T) {
	assert.True(t, IsScalar("a"))
	assert.True(t, IsScalar(1))
	assert.True(t, IsScalar(1.5))
	assert.True(t, IsScalar(false))
	assert.False(t, IsScalar(nil))
	assert.False(t, IsScalar([]any{}))
	assert.False(t, IsScalar(map[string]any{}))
}
