package schema

import (
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Kind classifies a schema node by the shape of value it accepts.
type Kind int

const (
	// KindScalar accepts a single primitive value (string, number or bool).
	KindScalar Kind = iota
	// KindList accepts a sequence whose elements match the node's Prototype.
	KindList
	// KindMap accepts string-keyed entries whose values match the Prototype.
	KindMap
	// KindNode is a nested block with a fixed set of Children.
	KindNode
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	case KindNode:
		return "node"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Node declares one configuration key.
//
// Scalars carry a primitive cty.Type (cty.DynamicPseudoType accepts any
// primitive as-is) and an optional Default. Lists and maps always default to
// an empty collection and describe their elements through Prototype. Nested
// nodes are always materialized, with every child defaulted.
type Node struct {
	Name     string
	Kind     Kind
	Type     cty.Type
	Default  *cty.Value
	Required bool
	// Nullable scalars accept an explicit null, which then behaves as if the
	// key had not been written at all.
	Nullable bool
	// Integer restricts a number scalar to whole values.
	Integer bool
	// Allowed restricts a scalar to an enumeration.
	Allowed []cty.Value
	Info    string

	Children  []*Node
	Prototype *Node
}

// Child returns the direct child with the given name.
func (n *Node) Child(name string) (*Node, bool) {
	for _, c := range n.Children {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// Default is a small helper for declaring scalar defaults inline.
func Default(v cty.Value) *cty.Value {
	return &v
}

// Schema is an immutable, validated tree of nodes. It is safe for concurrent
// use once constructed.
type Schema struct {
	Root *Node
}

// New validates the tree rooted at root and wraps it in a Schema.
func New(root *Node) (*Schema, error) {
	if root == nil {
		return nil, fmt.Errorf("schema validation failed: root node is nil")
	}
	if root.Kind != KindNode {
		return nil, fmt.Errorf("schema validation failed: root %q must be a node, got %s", root.Name, root.Kind)
	}

	var errs []string
	validateNode(root, root.Name, &errs)
	if len(errs) > 0 {
		return nil, fmt.Errorf("schema validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return &Schema{Root: root}, nil
}

// MustNew is like New but panics on an invalid tree. Schemas are declared in
// code, so a failure here is a programming error.
func MustNew(root *Node) *Schema {
	s, err := New(root)
	if err != nil {
		panic(err)
	}
	return s
}

// Lookup finds a node by its dotted path, relative to the root. A "*"
// segment steps into a list or map prototype.
func (s *Schema) Lookup(path string) (*Node, bool) {
	node := s.Root
	if path == "" {
		return node, true
	}
	for _, seg := range strings.Split(path, ".") {
		switch {
		case seg == "*" && (node.Kind == KindList || node.Kind == KindMap):
			node = node.Prototype
		case node.Kind == KindNode:
			child, ok := node.Child(seg)
			if !ok {
				return nil, false
			}
			node = child
		default:
			return nil, false
		}
	}
	return node, true
}

func validateNode(n *Node, path string, errs *[]string) {
	fail := func(format string, args ...any) {
		*errs = append(*errs, fmt.Sprintf("%s: %s", path, fmt.Sprintf(format, args...)))
	}

	if n.Required && n.Kind != KindScalar {
		fail("only scalars can be required")
	}

	switch n.Kind {
	case KindScalar:
		validateScalar(n, fail)

	case KindList, KindMap:
		if n.Default != nil {
			fail("collections default to empty and cannot declare a default")
		}
		if n.Prototype == nil {
			fail("%s has no prototype", n.Kind)
			return
		}
		validateNode(n.Prototype, path+".*", errs)

	case KindNode:
		if n.Default != nil {
			fail("nodes cannot declare a default")
		}
		seen := make(map[string]struct{}, len(n.Children))
		for _, c := range n.Children {
			if c == nil || c.Name == "" {
				fail("child without a name")
				continue
			}
			if _, dup := seen[c.Name]; dup {
				fail("duplicate child %q", c.Name)
				continue
			}
			seen[c.Name] = struct{}{}
			validateNode(c, path+"."+c.Name, errs)
		}

	default:
		fail("unknown kind %s", n.Kind)
	}
}

func validateScalar(n *Node, fail func(string, ...any)) {
	if n.Type == cty.NilType {
		fail("scalar has no type")
		return
	}
	if !n.Type.IsPrimitiveType() && n.Type != cty.DynamicPseudoType {
		fail("scalar type must be primitive, got %s", n.Type.FriendlyName())
		return
	}
	if n.Required && n.Default != nil {
		fail("a required key cannot have a default")
	}
	if n.Integer && n.Type != cty.Number {
		fail("only numbers can be restricted to whole values")
	}

	for i, a := range n.Allowed {
		conv, err := convert.Convert(a, n.Type)
		if err != nil {
			fail("allowed value %d does not match type %s: %v", i, n.Type.FriendlyName(), err)
			continue
		}
		n.Allowed[i] = conv
	}

	if n.Default == nil {
		return
	}
	def, err := convert.Convert(*n.Default, n.Type)
	if err != nil {
		fail("default does not match type %s: %v", n.Type.FriendlyName(), err)
		return
	}
	if def.IsNull() {
		fail("default cannot be null; leave it unset instead")
		return
	}
	if !IsWhole(n, def) {
		fail("default %s is not a whole number", def.GoString())
		return
	}
	if !IsAllowed(n, def) {
		fail("default %s is not one of the allowed values", def.GoString())
		return
	}
	n.Default = &def
}

// IsAllowed reports whether v satisfies the node's enumeration. Nodes without
// an enumeration accept everything.
func IsAllowed(n *Node, v cty.Value) bool {
	if len(n.Allowed) == 0 {
		return true
	}
	for _, a := range n.Allowed {
		if a.Type().Equals(v.Type()) && a.Equals(v).True() {
			return true
		}
	}
	return false
}

// IsWhole reports whether v satisfies the node's whole-number restriction.
// Nodes without the restriction accept everything.
func IsWhole(n *Node, v cty.Value) bool {
	if !n.Integer || v.IsNull() || !v.IsKnown() || v.Type() != cty.Number {
		return true
	}
	return v.AsBigFloat().IsInt()
}
