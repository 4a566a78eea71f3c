package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTree_Accessors(t *testing.T) {
	tree := Tree{
		"metadata": map[string]any{
			"cache": "file",
			"debug": true,
			"file_cache": map[string]any{
				"dir": "/tmp/x",
			},
		},
	}

	v, ok := tree.Lookup("metadata.file_cache.dir")
	assert.True(t, ok)
	assert.Equal(t, "/tmp/x", v)

	_, ok = tree.Lookup("metadata.cache.deeper")
	assert.False(t, ok)

	_, ok = tree.Lookup("missing")
	assert.False(t, ok)

	assert.Equal(t, Tree{"dir": "/tmp/x"}, tree.Sub("metadata.file_cache"))
	assert.Nil(t, tree.Sub("metadata.cache"))
	assert.Nil(t, tree.Sub("nope"))

	assert.Equal(t, "file", tree.StringAt("metadata.cache"))
	assert.Equal(t, "", tree.StringAt("metadata.debug"))
	assert.True(t, tree.BoolAt("metadata.debug"))
	assert.False(t, tree.BoolAt("metadata.cache"))
}

func TestLookup_ThreeStates(t *testing.T) {
	m := map[string]any{"a": nil, "b": 0}

	assert.Equal(t, Field{State: Null}, lookup(m, "a"))
	assert.Equal(t, Field{State: Set, Value: 0}, lookup(m, "b"))
	assert.Equal(t, Field{State: Unset}, lookup(m, "c"))
	assert.Equal(t, Field{State: Unset}, lookup(nil, "a"))

	assert.Equal(t, "unset", Unset.String())
	assert.Equal(t, "null", Null.String())
	assert.Equal(t, "set", Set.String())
}

func TestAsMapAndList(t *testing.T) {
	m, ok := asMap(map[any]any{"k": 1, 2: "two"})
	assert.True(t, ok)
	assert.Equal(t, map[string]any{"k": 1, "2": "two"}, m)

	m, ok = asMap(map[string]string{"k": "v"})
	assert.True(t, ok)
	assert.Equal(t, map[string]any{"k": "v"}, m)

	_, ok = asMap([]any{})
	assert.False(t, ok)

	l, ok := asList([]string{"a", "b"})
	assert.True(t, ok)
	assert.Equal(t, []any{"a", "b"}, l)

	_, ok = asList("a")
	assert.False(t, ok)
	_, ok = asList(nil)
	assert.False(t, ok)
}
