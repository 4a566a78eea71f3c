// Package wiring turns a normalized serializer configuration and its resolved
// metadata directories into named definitions for the host container.
package wiring

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"math"
	"path/filepath"

	"github.com/vk/serializerconf/internal/container"
	"github.com/vk/serializerconf/internal/ctxlog"
	"github.com/vk/serializerconf/internal/normalize"
)

// CacheSubdir is appended to Options.CacheDir when the file cache has no
// explicit directory.
const CacheSubdir = "serializer"

// Options carries host settings that are not part of the configuration tree.
type Options struct {
	// CacheDir is the host's cache root.
	CacheDir string
}

// Wire registers every definition derived from tree and dirs with r.
func Wire(ctx context.Context, r container.Registrar, tree normalize.Tree, dirs map[string]string, opts Options) error {
	logger := ctxlog.FromContext(ctx)

	cache, err := metadataCache(tree, opts)
	if err != nil {
		return err
	}
	serialization, err := contextFactory(tree, "default_context.serialization")
	if err != nil {
		return err
	}
	deserialization, err := contextFactory(tree, "default_context.deserialization")
	if err != nil {
		return err
	}
	whitelist, err := stringsAt(tree, "visitors.xml.doctype_whitelist")
	if err != nil {
		return err
	}
	jsonOptions, err := intAt(tree, "visitors.json.options")
	if err != nil {
		return err
	}
	jsonDepth, err := intAt(tree, "visitors.json.depth")
	if err != nil {
		return err
	}

	resolved := maps.Clone(dirs)
	if resolved == nil {
		resolved = map[string]string{}
	}

	defs := map[string]any{
		DefConfig:        tree,
		DefDirectories:   resolved,
		DefMetadataCache: cache,
		DefNamingStrategy: NamingStrategy{
			ID:          tree.StringAt("property_naming.id"),
			Separator:   tree.StringAt("property_naming.separator"),
			LowerCase:   tree.BoolAt("property_naming.lower_case"),
			EnableCache: tree.BoolAt("property_naming.enable_cache"),
		},
		DefDateTimeHandler: DateTimeHandler{
			Format:   tree.StringAt("handlers.datetime.default_format"),
			Timezone: tree.StringAt("handlers.datetime.default_timezone"),
			CData:    tree.BoolAt("handlers.datetime.cdata"),
		},
		DefArrayCollectionHandler: ArrayCollectionHandler{
			InitializeExcluded: tree.BoolAt("handlers.array_collection.initialize_excluded"),
		},
		DefJSONVisitor: JSONVisitor{
			Options: jsonOptions,
			Depth:   jsonDepth,
		},
		DefXMLVisitor: XMLVisitor{
			DoctypeWhitelist: whitelist,
			FormatOutput:     tree.BoolAt("visitors.xml.format_output"),
		},
		DefSerializationContext:   serialization,
		DefDeserializationContext: deserialization,
	}
	for name, value := range defs {
		r.Register(name, value)
	}
	logger.Debug("Registered serializer definitions.", "count", len(defs), "directories", len(dirs), "cache", cache.Kind)
	return nil
}

func metadataCache(tree normalize.Tree, opts Options) (MetadataCache, error) {
	c := MetadataCache{
		Kind:          tree.StringAt("metadata.cache"),
		Debug:         tree.BoolAt("metadata.debug"),
		AutoDetection: tree.BoolAt("metadata.auto_detection"),
		InferTypes:    tree.BoolAt("metadata.infer_types"),
	}
	if c.Kind != "file" {
		return c, nil
	}

	c.Dir = tree.StringAt("metadata.file_cache.dir")
	if c.Dir == "" {
		if opts.CacheDir == "" {
			return c, errors.New("metadata.file_cache.dir is not set and no cache directory was given")
		}
		c.Dir = filepath.Join(opts.CacheDir, CacheSubdir)
	}
	return c, nil
}

func contextFactory(tree normalize.Tree, path string) (ContextFactory, error) {
	sub := tree.Sub(path)
	f := ContextFactory{
		Attributes: map[string]any{},
		Groups:     []string{},
	}

	if v, ok := sub["version"]; ok {
		n, ok := toFloat(v)
		if !ok {
			return f, fmt.Errorf("%s.version: expected a number, got %T", path, v)
		}
		f.Version = &n
	}
	if v, ok := sub["serialize_null"].(bool); ok {
		f.SerializeNull = &v
	}
	if v, ok := sub["enable_max_depth_checks"].(bool); ok {
		f.EnableMaxDepthChecks = &v
	}
	if attrs, ok := sub["attributes"].(map[string]any); ok {
		f.Attributes = maps.Clone(attrs)
	}
	groups, err := stringsAt(sub, "groups")
	if err != nil {
		return f, fmt.Errorf("%s: %w", path, err)
	}
	f.Groups = groups
	return f, nil
}

func stringsAt(tree normalize.Tree, path string) ([]string, error) {
	v, _ := tree.Lookup(path)
	items, _ := v.([]any)
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%s[%d]: expected a string, got %T", path, i, item)
		}
		out = append(out, s)
	}
	return out, nil
}

// intAt reads a whole number. Fractions are rejected, never truncated.
func intAt(tree normalize.Tree, path string) (int, error) {
	v, ok := tree.Lookup(path)
	if !ok {
		return 0, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case float64:
		if n == math.Trunc(n) && n >= math.MinInt && n < math.MaxInt {
			return int(n), nil
		}
		return 0, fmt.Errorf("%s: %v is not a whole number", path, n)
	}
	return 0, fmt.Errorf("%s: expected a number, got %T", path, v)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
