package normalize

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// State says whether, and how, a key was written in the raw input.
type State uint8

const (
	// Unset means the key does not appear at all.
	Unset State = iota
	// Null means the key appears with an explicit null value.
	Null
	// Set means the key appears with a non-null value.
	Set
)

func (s State) String() string {
	switch s {
	case Unset:
		return "unset"
	case Null:
		return "null"
	case Set:
		return "set"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// Field is a raw value together with its presence state.
type Field struct {
	State State
	Value any
}

// lookup reads key from a raw mapping. A nil mapping has every key Unset.
func lookup(m map[string]any, key string) Field {
	v, ok := m[key]
	switch {
	case !ok:
		return Field{State: Unset}
	case v == nil:
		return Field{State: Null}
	default:
		return Field{State: Set, Value: v}
	}
}

// asMap accepts the mapping shapes decoders produce and returns a plain
// map[string]any. The returned map must not be mutated by callers.
func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Raw:
		return m, true
	case Tree:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

// asList accepts any slice or array, e.g. []any from YAML or
// []map[string]any from TOML arrays of tables.
func asList(v any) ([]any, bool) {
	if l, ok := v.([]any); ok {
		return l, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// canonicalKeys returns a copy of m where dashes in keys are replaced by
// underscores. Writing both spellings of the same key is rejected.
func canonicalKeys(path string, m map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(m))
	spelling := make(map[string]string, len(m))
	for _, k := range sortedKeys(m) {
		ck := strings.ReplaceAll(k, "-", "_")
		if prev, dup := spelling[ck]; dup {
			return nil, violation(joinPath(path, ck), fmt.Sprintf("key given twice as %q and %q", prev, k), nil)
		}
		spelling[ck] = k
		out[ck] = m[k]
	}
	return out, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

// describeRaw names the shape of a raw value for error messages.
func describeRaw(v any) string {
	if v == nil {
		return "null"
	}
	if _, ok := asMap(v); ok {
		return "a mapping"
	}
	if _, ok := asList(v); ok {
		return "a list"
	}
	return fmt.Sprintf("%T", v)
}
