package schema

import (
	"github.com/zclconf/go-cty/cty"
)

// RootName is the key a configuration document may be wrapped in.
const RootName = "serializer"

// Serializer builds the configuration tree of the serializer bundle. The
// debug flag only affects the default of metadata.debug.
func Serializer(debug bool) *Schema {
	return MustNew(&Node{
		Name: RootName,
		Kind: KindNode,
		Children: []*Node{
			handlersNode(),
			propertyNamingNode(),
			metadataNode(debug),
			visitorsNode(),
			{
				Name: "default_context",
				Kind: KindNode,
				Info: "Context applied to every (de)serialization call unless overridden.",
				Children: []*Node{
					contextNode("serialization"),
					contextNode("deserialization"),
				},
			},
		},
	})
}

func handlersNode() *Node {
	return &Node{
		Name: "handlers",
		Kind: KindNode,
		Children: []*Node{
			{
				Name: "datetime",
				Kind: KindNode,
				Children: []*Node{
					{Name: "default_format", Kind: KindScalar, Type: cty.String, Default: Default(cty.StringVal("2006-01-02T15:04:05Z07:00")), Info: "Go time layout used when no format is given."},
					{Name: "default_timezone", Kind: KindScalar, Type: cty.String, Default: Default(cty.StringVal("UTC"))},
					{Name: "cdata", Kind: KindScalar, Type: cty.Bool, Default: Default(cty.True)},
				},
			},
			{
				Name: "array_collection",
				Kind: KindNode,
				Children: []*Node{
					{Name: "initialize_excluded", Kind: KindScalar, Type: cty.Bool, Default: Default(cty.False)},
				},
			},
		},
	}
}

func propertyNamingNode() *Node {
	return &Node{
		Name: "property_naming",
		Kind: KindNode,
		Children: []*Node{
			{Name: "id", Kind: KindScalar, Type: cty.String, Nullable: true, Info: "Service id of a custom naming strategy."},
			{Name: "separator", Kind: KindScalar, Type: cty.String, Default: Default(cty.StringVal("_"))},
			{Name: "lower_case", Kind: KindScalar, Type: cty.Bool, Default: Default(cty.True)},
			{Name: "enable_cache", Kind: KindScalar, Type: cty.Bool, Default: Default(cty.True)},
		},
	}
}

func metadataNode(debug bool) *Node {
	return &Node{
		Name: "metadata",
		Kind: KindNode,
		Children: []*Node{
			{
				Name:    "cache",
				Kind:    KindScalar,
				Type:    cty.String,
				Default: Default(cty.StringVal("file")),
				Allowed: []cty.Value{cty.StringVal("file"), cty.StringVal("none")},
			},
			{Name: "debug", Kind: KindScalar, Type: cty.Bool, Default: Default(cty.BoolVal(debug)), Nullable: true},
			{
				Name: "file_cache",
				Kind: KindNode,
				Children: []*Node{
					{Name: "dir", Kind: KindScalar, Type: cty.String, Nullable: true, Info: "Defaults to <cache dir>/serializer."},
				},
			},
			{Name: "auto_detection", Kind: KindScalar, Type: cty.Bool, Default: Default(cty.True), Nullable: true},
			{Name: "infer_types", Kind: KindScalar, Type: cty.Bool, Default: Default(cty.True), Nullable: true},
			{
				Name: "directories",
				Kind: KindList,
				Info: "Metadata directories keyed by namespace prefix. A path may start with @BundleName.",
				Prototype: &Node{
					Kind: KindNode,
					Children: []*Node{
						{Name: "namespace_prefix", Kind: KindScalar, Type: cty.String, Default: Default(cty.StringVal(""))},
						{Name: "path", Kind: KindScalar, Type: cty.String, Required: true},
					},
				},
			},
		},
	}
}

func visitorsNode() *Node {
	return &Node{
		Name: "visitors",
		Kind: KindNode,
		Children: []*Node{
			{
				Name: "json",
				Kind: KindNode,
				Children: []*Node{
					{Name: "options", Kind: KindScalar, Type: cty.Number, Integer: true, Default: Default(cty.NumberIntVal(0)), Info: "Bit mask of encoder options."},
					{Name: "depth", Kind: KindScalar, Type: cty.Number, Integer: true, Default: Default(cty.NumberIntVal(512))},
				},
			},
			{
				Name: "xml",
				Kind: KindNode,
				Children: []*Node{
					{
						Name:      "doctype_whitelist",
						Kind:      KindList,
						Prototype: &Node{Kind: KindScalar, Type: cty.String},
					},
					{Name: "format_output", Kind: KindScalar, Type: cty.Bool, Default: Default(cty.True)},
				},
			},
		},
	}
}

// contextNode declares one of the default_context blocks. version,
// serialize_null and enable_max_depth_checks have no default: when they are
// not given (or given as null) they are left out of the result entirely.
// version is numeric, so the string "5.5" comes out as the number 5.5.
func contextNode(name string) *Node {
	return &Node{
		Name: name,
		Kind: KindNode,
		Children: []*Node{
			{Name: "version", Kind: KindScalar, Type: cty.Number, Nullable: true},
			{Name: "serialize_null", Kind: KindScalar, Type: cty.Bool, Nullable: true},
			{Name: "enable_max_depth_checks", Kind: KindScalar, Type: cty.Bool, Nullable: true},
			{
				Name:      "attributes",
				Kind:      KindMap,
				Prototype: &Node{Kind: KindScalar, Type: cty.DynamicPseudoType},
			},
			{
				Name:      "groups",
				Kind:      KindList,
				Prototype: &Node{Kind: KindScalar, Type: cty.String},
			},
		},
	}
}
