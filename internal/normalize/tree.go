package normalize

import "strings"

// Tree is a normalized configuration. Nested nodes are map[string]any, lists
// are []any, and scalars are string, bool, int or float64. Keys without a
// default that were not given are absent, never nil.
type Tree map[string]any

// Lookup returns the value at a dotted path such as
// "default_context.serialization.groups".
func (t Tree) Lookup(path string) (any, bool) {
	var cur any = map[string]any(t)
	for _, seg := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[seg]; !ok {
			return nil, false
		}
	}
	return cur, true
}

// Sub returns the nested node at path as a Tree, or nil when path does not
// lead to a node.
func (t Tree) Sub(path string) Tree {
	v, ok := t.Lookup(path)
	if !ok {
		return nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	return Tree(m)
}

// StringAt returns the string at path, or "" if it is absent or not a string.
func (t Tree) StringAt(path string) string {
	v, _ := t.Lookup(path)
	s, _ := v.(string)
	return s
}

// BoolAt returns the bool at path, or false if it is absent or not a bool.
func (t Tree) BoolAt(path string) bool {
	v, _ := t.Lookup(path)
	b, _ := v.(bool)
	return b
}
