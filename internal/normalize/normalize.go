package normalize

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/serializerconf/internal/ctxlog"
	"github.com/vk/serializerconf/internal/ctyconv"
	"github.com/vk/serializerconf/internal/schema"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Raw is an untyped configuration tree as produced by a file decoder.
type Raw map[string]any

// Normalize checks raw against s and returns the normalized tree. The input
// is never modified; every call returns a fresh Tree.
func Normalize(ctx context.Context, s *schema.Schema, raw Raw) (Tree, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Normalizing configuration.", "root", s.Root.Name, "top_level_keys", len(raw))

	var in any
	if raw != nil {
		in = map[string]any(raw)
	}
	out, err := normalizeNode(s.Root, "", in)
	if err != nil {
		logger.Debug("Configuration rejected.", "error", err)
		return nil, err
	}

	logger.Debug("Configuration normalized.", "root", s.Root.Name)
	return Tree(out), nil
}

func normalizeNode(n *schema.Node, path string, raw any) (map[string]any, error) {
	var m map[string]any
	if raw != nil {
		rm, ok := asMap(raw)
		if !ok {
			return nil, violation(path, "expected a mapping, got "+describeRaw(raw), nil)
		}
		var err error
		if m, err = canonicalKeys(path, rm); err != nil {
			return nil, err
		}
	}

	for _, k := range sortedKeys(m) {
		if _, ok := n.Child(k); !ok {
			return nil, violation(joinPath(path, k), "unrecognized option; available options are "+childNames(n), nil)
		}
	}

	out := make(map[string]any, len(n.Children))
	for _, c := range n.Children {
		v, present, err := normalizeField(c, joinPath(path, c.Name), lookup(m, c.Name))
		if err != nil {
			return nil, err
		}
		if present {
			out[c.Name] = v
		}
	}
	return out, nil
}

// normalizeField applies the per-kind rules for a key in one of its three
// states. The boolean result is false when the key must be left out.
func normalizeField(n *schema.Node, path string, f Field) (any, bool, error) {
	switch n.Kind {
	case schema.KindScalar:
		return normalizeScalar(n, path, f)

	case schema.KindList:
		if f.State != Set {
			return []any{}, true, nil
		}
		v, err := normalizeList(n, path, f.Value)
		return v, err == nil, err

	case schema.KindMap:
		if f.State != Set {
			return map[string]any{}, true, nil
		}
		v, err := normalizeMap(n, path, f.Value)
		return v, err == nil, err

	case schema.KindNode:
		v, err := normalizeNode(n, path, f.Value)
		return v, err == nil, err

	default:
		return nil, false, violation(path, "unsupported schema kind "+n.Kind.String(), nil)
	}
}

func normalizeScalar(n *schema.Node, path string, f Field) (any, bool, error) {
	switch f.State {
	case Null:
		if n.Required {
			return nil, false, violation(path, "required option cannot be null", nil)
		}
		if !n.Nullable {
			return nil, false, violation(path, "option cannot be null", nil)
		}
		fallthrough
	case Unset:
		if n.Required {
			return nil, false, violation(path, "required option is missing", nil)
		}
		if n.Default == nil {
			return nil, false, nil
		}
		v, err := ctyconv.ToNative(*n.Default)
		if err != nil {
			return nil, false, violation(path, "invalid default", err)
		}
		return v, true, nil
	}

	v, err := coerceScalar(n, path, f.Value)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// coerceScalar converts a raw scalar to the node's declared type, e.g. the
// string "5.5" to the number 5.5. Values that cannot be converted are
// rejected; nothing is clamped or rounded.
func coerceScalar(n *schema.Node, path string, raw any) (any, error) {
	if !ctyconv.IsScalar(raw) {
		return nil, violation(path, fmt.Sprintf("expected %s, got %s", typeName(n.Type), describeRaw(raw)), nil)
	}
	val, err := ctyconv.ToCty(raw)
	if err != nil {
		return nil, violation(path, "invalid value", err)
	}

	if n.Type != cty.DynamicPseudoType {
		conv, err := convert.Convert(val, n.Type)
		if err != nil {
			return nil, violation(path, fmt.Sprintf("cannot convert %s to %s", typeName(val.Type()), typeName(n.Type)), err)
		}
		val = conv
	}

	if !schema.IsWhole(n, val) {
		return nil, violation(path, fmt.Sprintf("value %v is not a whole number", raw), nil)
	}

	if !schema.IsAllowed(n, val) {
		return nil, violation(path, fmt.Sprintf("value %v is not allowed; permissible values are %s", raw, allowedNames(n)), nil)
	}

	return ctyconv.ToNative(val)
}

func normalizeList(n *schema.Node, path string, raw any) ([]any, error) {
	items, ok := asList(raw)
	if !ok {
		return nil, violation(path, "expected a list, got "+describeRaw(raw), nil)
	}
	out := make([]any, 0, len(items))
	for i, item := range items {
		v, err := normalizeElement(n.Prototype, fmt.Sprintf("%s[%d]", path, i), item)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func normalizeMap(n *schema.Node, path string, raw any) (map[string]any, error) {
	m, ok := asMap(raw)
	if !ok {
		return nil, violation(path, "expected a mapping, got "+describeRaw(raw), nil)
	}
	out := make(map[string]any, len(m))
	for _, k := range sortedKeys(m) {
		v, err := normalizeElement(n.Prototype, joinPath(path, k), m[k])
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

func normalizeElement(proto *schema.Node, path string, raw any) (any, error) {
	if raw == nil {
		return nil, violation(path, "null entries are not allowed", nil)
	}
	v, _, err := normalizeField(proto, path, Field{State: Set, Value: raw})
	return v, err
}

func childNames(n *schema.Node) string {
	names := make([]string, 0, len(n.Children))
	for _, c := range n.Children {
		names = append(names, fmt.Sprintf("%q", c.Name))
	}
	return strings.Join(names, ", ")
}

func allowedNames(n *schema.Node) string {
	names := make([]string, 0, len(n.Allowed))
	for _, a := range n.Allowed {
		v, _ := ctyconv.ToNative(a)
		names = append(names, fmt.Sprintf("%v", v))
	}
	return strings.Join(names, ", ")
}

func typeName(ty cty.Type) string {
	if ty == cty.DynamicPseudoType {
		return "a scalar"
	}
	return ty.FriendlyName()
}
