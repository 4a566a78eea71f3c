package schema

import (
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"
)

// Reference renders the schema as a commented YAML document showing every
// key with its default value.
func (s *Schema) Reference() ([]byte, error) {
	doc := &yaml.Node{Kind: yaml.MappingNode}
	key, val := referenceEntry(s.Root)
	doc.Content = append(doc.Content, key, val)

	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("rendering schema reference: %w", err)
	}
	return out, nil
}

func referenceEntry(n *Node) (*yaml.Node, *yaml.Node) {
	key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: n.Name, HeadComment: n.Info}
	return key, referenceValue(n)
}

func referenceValue(n *Node) *yaml.Node {
	switch n.Kind {
	case KindNode:
		m := &yaml.Node{Kind: yaml.MappingNode}
		for _, c := range n.Children {
			k, v := referenceEntry(c)
			m.Content = append(m.Content, k, v)
		}
		return m

	case KindList:
		seq := &yaml.Node{Kind: yaml.SequenceNode, LineComment: "list of " + describe(n.Prototype)}
		if n.Prototype.Kind == KindNode {
			// Show the element shape as a single example entry.
			seq.Content = append(seq.Content, referenceValue(n.Prototype))
		} else {
			seq.Style = yaml.FlowStyle
		}
		return seq

	case KindMap:
		return &yaml.Node{Kind: yaml.MappingNode, Style: yaml.FlowStyle, LineComment: "map of " + describe(n.Prototype)}

	default:
		v := scalarNode(n.Default)
		v.LineComment = describe(n)
		return v
	}
}

func describe(n *Node) string {
	if n.Kind != KindScalar {
		return n.Kind.String()
	}
	var parts []string
	switch {
	case n.Type == cty.DynamicPseudoType:
		parts = append(parts, "scalar")
	case n.Integer:
		parts = append(parts, "whole number")
	default:
		parts = append(parts, n.Type.FriendlyName())
	}
	if n.Required {
		parts = append(parts, "required")
	}
	if n.Nullable {
		parts = append(parts, "nullable")
	}
	if len(n.Allowed) > 0 {
		allowed := make([]string, 0, len(n.Allowed))
		for _, a := range n.Allowed {
			allowed = append(allowed, scalarNode(&a).Value)
		}
		parts = append(parts, "one of "+strings.Join(allowed, "|"))
	}
	return strings.Join(parts, ", ")
}

func scalarNode(v *cty.Value) *yaml.Node {
	if v == nil || v.IsNull() {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "~"}
	}
	switch v.Type() {
	case cty.String:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.AsString()}
	case cty.Bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: fmt.Sprint(v.True())}
	case cty.Number:
		bf := v.AsBigFloat()
		if bf.IsInt() {
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: bf.Text('f', 0)}
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: bf.Text('g', -1)}
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.GoString()}
	}
}
