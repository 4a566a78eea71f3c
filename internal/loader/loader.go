// Package loader reads raw serializer configuration from HCL, YAML, TOML and
// JSON files. It does not validate anything beyond syntax; that is left to
// the normalize package.
package loader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/vk/serializerconf/internal/ctxlog"
	"github.com/vk/serializerconf/internal/fsutil"
	"github.com/vk/serializerconf/internal/normalize"
	"github.com/vk/serializerconf/internal/schema"
	"gopkg.in/yaml.v3"
)

// Format is a configuration file syntax.
type Format string

const (
	FormatHCL  Format = "hcl"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

var extensions = map[string]Format{
	".hcl":  FormatHCL,
	".yaml": FormatYAML,
	".yml":  FormatYAML,
	".toml": FormatTOML,
	".json": FormatJSON,
}

// FormatOf returns the format implied by a file name's extension.
func FormatOf(path string) (Format, bool) {
	f, ok := extensions[strings.ToLower(filepath.Ext(path))]
	return f, ok
}

func knownExtensions() []string {
	exts := make([]string, 0, len(extensions))
	for ext := range extensions {
		exts = append(exts, ext)
	}
	return exts
}

// Load reads every configuration file under paths and returns one Raw per
// file, in order. Directories are walked recursively and files with an
// unknown extension inside them are ignored; a file named explicitly must
// have a known extension.
func Load(ctx context.Context, paths ...string) ([]normalize.Raw, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Config loader started.", "path_count", len(paths))

	files, err := fsutil.ExpandPaths(paths, knownExtensions()...)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered config files.", "count", len(files))

	raws := make([]normalize.Raw, 0, len(files))
	for _, file := range files {
		format, ok := FormatOf(file)
		if !ok {
			return nil, fmt.Errorf("unsupported config file %s: extension must be one of .hcl, .yaml, .yml, .toml, .json", file)
		}
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
		raw, err := Parse(format, file, data)
		if err != nil {
			return nil, err
		}
		logger.Debug("Parsed config file.", "file", file, "format", format, "top_level_keys", len(raw))
		raws = append(raws, raw)
	}

	logger.Debug("Config loading complete.", "files", len(raws))
	return raws, nil
}

// Parse decodes a single document. name is only used in error messages. A
// document whose only top-level key is the serializer root is unwrapped.
func Parse(format Format, name string, data []byte) (normalize.Raw, error) {
	var (
		raw map[string]any
		err error
	)
	switch format {
	case FormatHCL:
		raw, err = parseHCL(name, data)
	case FormatYAML:
		err = yaml.Unmarshal(data, &raw)
	case FormatTOML:
		err = toml.Unmarshal(data, &raw)
	case FormatJSON:
		if len(bytes.TrimSpace(data)) > 0 {
			err = json.Unmarshal(data, &raw)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s file %s: %w", format, name, err)
	}

	return unwrap(raw), nil
}

func unwrap(raw map[string]any) normalize.Raw {
	if len(raw) != 1 {
		return normalize.Raw(raw)
	}
	inner, ok := raw[schema.RootName]
	if !ok {
		return normalize.Raw(raw)
	}
	if inner == nil {
		return normalize.Raw{}
	}
	if m, ok := inner.(map[string]any); ok {
		return normalize.Raw(m)
	}
	return normalize.Raw(raw)
}
