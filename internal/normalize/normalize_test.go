package normalize

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/serializerconf/internal/schema"
)

var contextKeys = []string{"serialization", "deserialization"}

// assertEmptyContext checks the shape every default_context block has when
// nothing (or only nulls) was configured.
func assertEmptyContext(t *testing.T, tree Tree) {
	t.Helper()

	dc := tree.Sub("default_context")
	require.NotNil(t, dc, "default_context must always be present")

	for _, key := range contextKeys {
		ctxTree := dc.Sub(key)
		require.NotNil(t, ctxTree, "default_context.%s must always be present", key)

		assert.Equal(t, map[string]any{}, ctxTree["attributes"])
		assert.Equal(t, []any{}, ctxTree["groups"])

		assert.NotContains(t, ctxTree, "version")
		assert.NotContains(t, ctxTree, "serialize_null")
		assert.NotContains(t, ctxTree, "enable_max_depth_checks")
	}
}

func TestNormalize_ContextDefaults(t *testing.T) {
	for _, debug := range []bool{true, false} {
		s := schema.Serializer(debug)

		tree, err := Process(context.Background(), s)
		require.NoError(t, err)
		assertEmptyContext(t, tree)

		tree, err = Normalize(context.Background(), s, nil)
		require.NoError(t, err)
		assertEmptyContext(t, tree)
	}
}

func TestNormalize_ContextValues(t *testing.T) {
	raw := Raw{
		"default_context": map[string]any{
			"serialization": map[string]any{
				"version":        3,
				"serialize_null": true,
				"attributes":     map[string]any{"foo": "bar"},
				"groups":         []any{"Baz"},
			},
			"deserialization": map[string]any{
				"version":        "5.5",
				"serialize_null": false,
				"attributes":     map[string]any{"foo": "bar"},
				"groups":         []any{"Baz"},
			},
		},
	}

	tree, err := Normalize(context.Background(), schema.Serializer(true), raw)
	require.NoError(t, err)

	want := map[string]any{
		"serialization": map[string]any{
			"version":        3,
			"serialize_null": true,
			"attributes":     map[string]any{"foo": "bar"},
			"groups":         []any{"Baz"},
		},
		"deserialization": map[string]any{
			"version":        5.5,
			"serialize_null": false,
			"attributes":     map[string]any{"foo": "bar"},
			"groups":         []any{"Baz"},
		},
	}
	if diff := cmp.Diff(want, map[string]any(tree.Sub("default_context"))); diff != "" {
		t.Errorf("default_context mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize_ContextNullValues(t *testing.T) {
	nulls := map[string]any{
		"version":                 nil,
		"serialize_null":          nil,
		"enable_max_depth_checks": nil,
		"attributes":              nil,
		"groups":                  nil,
	}
	raw := Raw{
		"default_context": map[string]any{
			"serialization":   nulls,
			"deserialization": nulls,
		},
	}

	s := schema.Serializer(true)
	tree, err := Normalize(context.Background(), s, raw)
	require.NoError(t, err)
	assertEmptyContext(t, tree)

	// Null everywhere must be indistinguishable from not configuring anything.
	defaults, err := Normalize(context.Background(), s, nil)
	require.NoError(t, err)
	if diff := cmp.Diff(defaults, tree); diff != "" {
		t.Errorf("null config differs from defaults (-defaults +nulls):\n%s", diff)
	}
}

func TestNormalize_NullNodeTakesDefaults(t *testing.T) {
	s := schema.Serializer(false)

	tree, err := Normalize(context.Background(), s, Raw{"default_context": nil, "metadata": nil})
	require.NoError(t, err)

	defaults, err := Normalize(context.Background(), s, nil)
	require.NoError(t, err)
	assert.Equal(t, defaults, tree)
}

func TestNormalize_FullDefaults(t *testing.T) {
	tree, err := Normalize(context.Background(), schema.Serializer(true), Raw{})
	require.NoError(t, err)

	emptyContext := map[string]any{"attributes": map[string]any{}, "groups": []any{}}
	want := Tree{
		"handlers": map[string]any{
			"datetime": map[string]any{
				"default_format":   "2006-01-02T15:04:05Z07:00",
				"default_timezone": "UTC",
				"cdata":            true,
			},
			"array_collection": map[string]any{"initialize_excluded": false},
		},
		"property_naming": map[string]any{
			"separator":    "_",
			"lower_case":   true,
			"enable_cache": true,
		},
		"metadata": map[string]any{
			"cache":          "file",
			"debug":          true,
			"file_cache":     map[string]any{},
			"auto_detection": true,
			"infer_types":    true,
			"directories":    []any{},
		},
		"visitors": map[string]any{
			"json": map[string]any{"options": 0, "depth": 512},
			"xml":  map[string]any{"doctype_whitelist": []any{}, "format_output": true},
		},
		"default_context": map[string]any{
			"serialization":   emptyContext,
			"deserialization": emptyContext,
		},
	}
	if diff := cmp.Diff(want, tree); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize_Coercion(t *testing.T) {
	raw := Raw{
		"metadata": map[string]any{
			"debug": "false",
			"directories": []map[string]any{
				{"namespace_prefix": "App", "path": "/srv/meta"},
			},
		},
		"visitors": map[string]any{
			"json": map[string]any{"depth": "64", "options": 3.0},
		},
		"default_context": map[string]any{
			"serialization": map[string]any{
				"version": 2.0,
				"groups":  []any{1, "two"},
			},
		},
	}

	tree, err := Normalize(context.Background(), schema.Serializer(true), raw)
	require.NoError(t, err)

	v, _ := tree.Lookup("metadata.debug")
	assert.Equal(t, false, v)
	v, _ = tree.Lookup("visitors.json.depth")
	assert.Equal(t, 64, v)
	v, _ = tree.Lookup("visitors.json.options")
	assert.Equal(t, 3, v)
	v, _ = tree.Lookup("default_context.serialization.version")
	assert.Equal(t, 2, v)
	v, _ = tree.Lookup("default_context.serialization.groups")
	assert.Equal(t, []any{"1", "two"}, v)
	v, _ = tree.Lookup("metadata.directories")
	assert.Equal(t, []any{map[string]any{"namespace_prefix": "App", "path": "/srv/meta"}}, v)
}

func TestNormalize_DashedKeys(t *testing.T) {
	raw := Raw{
		"default-context": map[string]any{
			"serialization": map[string]any{"serialize-null": true},
		},
	}

	tree, err := Normalize(context.Background(), schema.Serializer(true), raw)
	require.NoError(t, err)

	v, ok := tree.Lookup("default_context.serialization.serialize_null")
	require.True(t, ok)
	assert.Equal(t, true, v)

	// The caller's tree is left untouched.
	assert.Contains(t, raw, "default-context")
}

func TestNormalize_AttributeKeysKeepTheirSpelling(t *testing.T) {
	raw := Raw{
		"default_context": map[string]any{
			"serialization": map[string]any{
				"attributes": map[string]any{"max-depth": 4, "flag": true},
			},
		},
	}

	tree, err := Normalize(context.Background(), schema.Serializer(true), raw)
	require.NoError(t, err)

	v, _ := tree.Lookup("default_context.serialization.attributes")
	assert.Equal(t, map[string]any{"max-depth": 4, "flag": true}, v)
}

func TestNormalize_Violations(t *testing.T) {
	testCases := []struct {
		name     string
		raw      Raw
		wantPath string
		wantMsg  string
	}{
		{
			name:     "unknown top-level key",
			raw:      Raw{"nope": 1},
			wantPath: "nope",
			wantMsg:  "unrecognized option",
		},
		{
			name:     "unknown nested key",
			raw:      Raw{"default_context": map[string]any{"serialization": map[string]any{"depth": 1}}},
			wantPath: "default_context.serialization.depth",
			wantMsg:  "unrecognized option",
		},
		{
			name:     "version not numeric",
			raw:      Raw{"default_context": map[string]any{"serialization": map[string]any{"version": "abc"}}},
			wantPath: "default_context.serialization.version",
			wantMsg:  "cannot convert string to number",
		},
		{
			name:     "serialize_null not boolean",
			raw:      Raw{"default_context": map[string]any{"deserialization": map[string]any{"serialize_null": "maybe"}}},
			wantPath: "default_context.deserialization.serialize_null",
			wantMsg:  "cannot convert string to bool",
		},
		{
			name:     "version is a list",
			raw:      Raw{"default_context": map[string]any{"serialization": map[string]any{"version": []any{1}}}},
			wantPath: "default_context.serialization.version",
			wantMsg:  "expected number, got a list",
		},
		{
			name:     "groups is a scalar",
			raw:      Raw{"default_context": map[string]any{"serialization": map[string]any{"groups": "Baz"}}},
			wantPath: "default_context.serialization.groups",
			wantMsg:  "expected a list",
		},
		{
			name:     "attributes is a list",
			raw:      Raw{"default_context": map[string]any{"serialization": map[string]any{"attributes": []any{"x"}}}},
			wantPath: "default_context.serialization.attributes",
			wantMsg:  "expected a mapping",
		},
		{
			name:     "nested attribute value",
			raw:      Raw{"default_context": map[string]any{"serialization": map[string]any{"attributes": map[string]any{"a": map[string]any{}}}}},
			wantPath: "default_context.serialization.attributes.a",
			wantMsg:  "expected a scalar",
		},
		{
			name:     "null group entry",
			raw:      Raw{"default_context": map[string]any{"serialization": map[string]any{"groups": []any{"a", nil}}}},
			wantPath: "default_context.serialization.groups[1]",
			wantMsg:  "null entries are not allowed",
		},
		{
			name:     "node given a scalar",
			raw:      Raw{"metadata": "yes"},
			wantPath: "metadata",
			wantMsg:  "expected a mapping",
		},
		{
			name:     "value outside enumeration",
			raw:      Raw{"metadata": map[string]any{"cache": "redis"}},
			wantPath: "metadata.cache",
			wantMsg:  "is not allowed",
		},
		{
			name:     "null for non-nullable scalar",
			raw:      Raw{"metadata": map[string]any{"cache": nil}},
			wantPath: "metadata.cache",
			wantMsg:  "option cannot be null",
		},
		{
			name:     "directory without path",
			raw:      Raw{"metadata": map[string]any{"directories": []any{map[string]any{"namespace_prefix": "A"}}}},
			wantPath: "metadata.directories[0].path",
			wantMsg:  "required option is missing",
		},
		{
			name:     "directory with null path",
			raw:      Raw{"metadata": map[string]any{"directories": []any{map[string]any{"path": nil}}}},
			wantPath: "metadata.directories[0].path",
			wantMsg:  "required option cannot be null",
		},
		{
			name:     "null directory entry",
			raw:      Raw{"metadata": map[string]any{"directories": []any{nil}}},
			wantPath: "metadata.directories[0]",
			wantMsg:  "null entries are not allowed",
		},
		{
			name:     "fractional json depth",
			raw:      Raw{"visitors": map[string]any{"json": map[string]any{"depth": "5.5"}}},
			wantPath: "visitors.json.depth",
			wantMsg:  "value 5.5 is not a whole number",
		},
		{
			name:     "fractional json options",
			raw:      Raw{"visitors": map[string]any{"json": map[string]any{"options": 1.9}}},
			wantPath: "visitors.json.options",
			wantMsg:  "value 1.9 is not a whole number",
		},
		{
			name:     "both spellings of a key",
			raw:      Raw{"default_context": map[string]any{"serialization": map[string]any{"serialize_null": true, "serialize-null": false}}},
			wantPath: "default_context.serialization.serialize_null",
			wantMsg:  "key given twice",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Normalize(context.Background(), schema.Serializer(true), tc.raw)
			require.Error(t, err)
			require.ErrorIs(t, err, ErrSchemaViolation)

			var sv *SchemaViolation
			require.True(t, errors.As(err, &sv))
			assert.Equal(t, tc.wantPath, sv.Path)
			assert.Contains(t, err.Error(), tc.wantMsg)
		})
	}
}

func TestProcess_MergesInOrder(t *testing.T) {
	first := Raw{
		"metadata": map[string]any{
			"cache":       "file",
			"directories": []any{map[string]any{"namespace_prefix": "A", "path": "/a"}},
		},
		"default_context": map[string]any{
			"serialization": map[string]any{
				"version":    2,
				"groups":     []any{"a"},
				"attributes": map[string]any{"foo": "bar", "keep": 1},
			},
		},
	}
	second := Raw{
		"metadata": map[string]any{
			"cache":       "none",
			"directories": []any{map[string]any{"namespace_prefix": "B", "path": "/b"}},
		},
		"default_context": map[string]any{
			"serialization": map[string]any{
				"version":        nil,
				"serialize-null": false,
				"groups":         []any{"b"},
				"attributes":     map[string]any{"foo": "baz"},
			},
		},
	}

	tree, err := Process(context.Background(), schema.Serializer(true), first, nil, second)
	require.NoError(t, err)

	v, _ := tree.Lookup("metadata.cache")
	assert.Equal(t, "none", v)

	v, _ = tree.Lookup("metadata.directories")
	assert.Equal(t, []any{
		map[string]any{"namespace_prefix": "A", "path": "/a"},
		map[string]any{"namespace_prefix": "B", "path": "/b"},
	}, v)

	ser := tree.Sub("default_context.serialization")
	assert.Equal(t, 2, ser["version"], "a later null must not erase an earlier value")
	assert.Equal(t, false, ser["serialize_null"])
	assert.Equal(t, []any{"a", "b"}, ser["groups"])
	assert.Equal(t, map[string]any{"foo": "baz", "keep": 1}, ser["attributes"])
}

func TestProcess_NullOnlyInLaterLayerStaysAbsent(t *testing.T) {
	tree, err := Process(context.Background(), schema.Serializer(true),
		Raw{"default_context": map[string]any{"serialization": map[string]any{"groups": []any{"x"}}}},
		Raw{"default_context": map[string]any{"serialization": map[string]any{"version": nil, "groups": nil}}},
	)
	require.NoError(t, err)

	ser := tree.Sub("default_context.serialization")
	assert.NotContains(t, ser, "version")
	assert.Equal(t, []any{"x"}, ser["groups"])
}

func TestProcess_ReportsUnknownKeysFromAnyLayer(t *testing.T) {
	_, err := Process(context.Background(), schema.Serializer(true),
		Raw{"metadata": map[string]any{"cache": "file"}},
		Raw{"metadata": map[string]any{"bogus": true}},
	)
	require.ErrorIs(t, err, ErrSchemaViolation)
	assert.Contains(t, err.Error(), `"metadata.bogus"`)
}

func TestNormalize_ConcurrentCalls(t *testing.T) {
	s := schema.Serializer(true)
	raw := Raw{
		"default_context": map[string]any{
			"serialization": map[string]any{"version": "5.5", "groups": []any{"a"}},
		},
	}
	want, err := Normalize(context.Background(), s, raw)
	require.NoError(t, err)

	const workers = 32
	var wg sync.WaitGroup
	results := make([]Tree, workers)
	errs := make([]error, workers)

	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = Normalize(context.Background(), s, raw)
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, want, results[i])
	}
}
