package loader

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/serializerconf/internal/ctyconv"
)

// parseHCL turns a native-syntax HCL document into a plain tree. Unlabeled
// blocks become nested mappings and attributes are evaluated without
// variables or functions, so `null` stays a null.
func parseHCL(name string, data []byte) (map[string]any, error) {
	file, diags := hclparse.NewParser().ParseHCL(data, name)
	if diags.HasErrors() {
		return nil, diags
	}
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("unexpected HCL body type %T", file.Body)
	}
	return bodyToMap(body)
}

func bodyToMap(body *hclsyntax.Body) (map[string]any, error) {
	out := make(map[string]any, len(body.Attributes)+len(body.Blocks))

	for name, attr := range body.Attributes {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, diags
		}
		native, err := ctyconv.ToNative(val)
		if err != nil {
			return nil, fmt.Errorf("%s: attribute %q: %w", attr.SrcRange, name, err)
		}
		out[name] = native
	}

	for _, block := range body.Blocks {
		if len(block.Labels) > 0 {
			return nil, fmt.Errorf("%s: block %q must not have labels", block.DefRange(), block.Type)
		}
		if _, dup := out[block.Type]; dup {
			return nil, fmt.Errorf("%s: %q is defined more than once", block.DefRange(), block.Type)
		}
		nested, err := bodyToMap(block.Body)
		if err != nil {
			return nil, err
		}
		out[block.Type] = nested
	}

	return out, nil
}
