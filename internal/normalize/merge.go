package normalize

import (
	"context"
	"fmt"

	"github.com/vk/serializerconf/internal/ctxlog"
	"github.com/vk/serializerconf/internal/schema"
)

// Process merges several raw configurations, in order, and normalizes the
// result. With no input at all it returns the pure defaults.
func Process(ctx context.Context, s *schema.Schema, raws ...Raw) (Tree, error) {
	merged, err := Merge(s, raws...)
	if err != nil {
		return nil, err
	}
	ctxlog.FromContext(ctx).Debug("Merged raw configurations.", "count", len(raws))
	return Normalize(ctx, s, merged)
}

// Merge folds raws into one raw tree, guided by the schema:
//   - nodes merge key by key;
//   - lists are concatenated;
//   - maps merge key by key, later entries winning;
//   - scalars are replaced by later values.
//
// A later null, or a later absent key, never erases an earlier value: null
// means "not specified" everywhere. Keys unknown to the schema are carried
// through untouched so that Normalize can report them.
func Merge(s *schema.Schema, raws ...Raw) (Raw, error) {
	var acc any = map[string]any{}
	for i, r := range raws {
		if r == nil {
			continue
		}
		merged, err := mergeValue(s.Root, "", acc, map[string]any(r))
		if err != nil {
			return nil, fmt.Errorf("merging configuration %d: %w", i, err)
		}
		acc = merged
	}
	m, _ := asMap(acc)
	return Raw(m), nil
}

func mergeValue(n *schema.Node, path string, left, right any) (any, error) {
	if right == nil {
		return left, nil
	}
	if n == nil {
		return right, nil
	}

	switch n.Kind {
	case schema.KindNode:
		rm, ok := asMap(right)
		if !ok {
			return right, nil
		}
		rm, err := canonicalKeys(path, rm)
		if err != nil {
			return nil, err
		}
		out := make(map[string]any)
		if lm, ok := asMap(left); ok {
			for k, v := range lm {
				out[k] = v
			}
		}
		for _, k := range sortedKeys(rm) {
			child, _ := n.Child(k)
			v, err := mergeValue(child, joinPath(path, k), out[k], rm[k])
			if err != nil {
				return nil, err
			}
			out[k] = v
		}
		return out, nil

	case schema.KindList:
		rl, ok := asList(right)
		if !ok {
			return right, nil
		}
		ll, _ := asList(left)
		out := make([]any, 0, len(ll)+len(rl))
		out = append(out, ll...)
		return append(out, rl...), nil

	case schema.KindMap:
		rm, ok := asMap(right)
		if !ok {
			return right, nil
		}
		out := make(map[string]any)
		if lm, ok := asMap(left); ok {
			for k, v := range lm {
				out[k] = v
			}
		}
		for _, k := range sortedKeys(rm) {
			v, err := mergeValue(n.Prototype, joinPath(path, k), out[k], rm[k])
			if err != nil {
				return nil, err
			}
			out[k] = v
		}
		return out, nil

	default:
		return right, nil
	}
}
