package resolve

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vk/serializerconf/internal/ctxlog"
	"github.com/vk/serializerconf/internal/normalize"
)

// DirectoriesPath is where the directory list lives in a normalized tree.
const DirectoriesPath = "metadata.directories"

// DirectoryEntry is one element of metadata.directories.
type DirectoryEntry struct {
	NamespacePrefix string
	Path            string
}

// Entries extracts the directory list from a normalized tree.
func Entries(tree normalize.Tree) ([]DirectoryEntry, error) {
	raw, ok := tree.Lookup(DirectoriesPath)
	if !ok {
		return nil, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%s: expected a list, got %T", DirectoriesPath, raw)
	}

	entries := make([]DirectoryEntry, 0, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s[%d]: expected a mapping, got %T", DirectoriesPath, i, item)
		}
		prefix, _ := m["namespace_prefix"].(string)
		path, _ := m["path"].(string)
		entries = append(entries, DirectoryEntry{NamespacePrefix: prefix, Path: path})
	}
	return entries, nil
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithProjectDir anchors relative paths, including relative alias roots.
func WithProjectDir(dir string) Option {
	return func(r *Resolver) { r.projectDir = dir }
}

// WithExistenceCheck makes Resolve fail with ErrMissingDirectory when a
// resolved path is not an existing directory.
func WithExistenceCheck() Option {
	return func(r *Resolver) { r.checkExists = true }
}

// WithAutoDetection seeds the result with every alias whose subdir exists,
// provided the alias table implements Detector. Explicit entries override
// detected ones.
func WithAutoDetection(subdir string) Option {
	return func(r *Resolver) { r.autoDetect = subdir }
}

// Resolver maps directory entries to filesystem paths. It holds no mutable
// state and may be shared.
type Resolver struct {
	aliases     AliasResolver
	projectDir  string
	checkExists bool
	autoDetect  string
}

// New creates a Resolver for the given alias table. aliases may be nil, in
// which case every alias token is unknown.
func New(aliases AliasResolver, opts ...Option) *Resolver {
	r := &Resolver{aliases: aliases}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve is a shorthand for New(aliases, opts...).Resolve(ctx, entries).
func Resolve(ctx context.Context, entries []DirectoryEntry, aliases AliasResolver, opts ...Option) (map[string]string, error) {
	return New(aliases, opts...).Resolve(ctx, entries)
}

// Resolve returns namespace prefix -> directory. When two entries share a
// prefix, the later one wins.
func (r *Resolver) Resolve(ctx context.Context, entries []DirectoryEntry) (map[string]string, error) {
	logger := ctxlog.FromContext(ctx)
	dirs := make(map[string]string, len(entries))

	if r.autoDetect != "" {
		if d, ok := r.aliases.(Detector); ok {
			found, err := d.Detect(r.autoDetect)
			if err != nil {
				return nil, fmt.Errorf("auto-detecting metadata directories: %w", err)
			}
			for ns, dir := range found {
				dirs[ns] = r.anchor(dir)
			}
			logger.Debug("Auto-detected metadata directories.", "count", len(found), "subdir", r.autoDetect)
		} else {
			logger.Debug("Alias table cannot detect directories, skipping auto-detection.")
		}
	}

	for _, e := range entries {
		path, err := r.resolvePath(e.Path)
		if err != nil {
			return nil, fmt.Errorf("resolving directory for namespace %q: %w", e.NamespacePrefix, err)
		}

		if r.checkExists {
			info, err := os.Stat(path)
			if err != nil || !info.IsDir() {
				return nil, fmt.Errorf("%w: %q for namespace %q", ErrMissingDirectory, path, e.NamespacePrefix)
			}
		}

		prefix := strings.TrimRight(e.NamespacePrefix, `\/`)
		if prev, dup := dirs[prefix]; dup {
			logger.Debug("Overriding metadata directory.", "namespace_prefix", prefix, "previous", prev, "path", path)
		}
		dirs[prefix] = path
		logger.Debug("Resolved metadata directory.", "namespace_prefix", prefix, "path", path)
	}

	return dirs, nil
}

func (r *Resolver) resolvePath(p string) (string, error) {
	p = strings.ReplaceAll(p, `\`, "/")
	if trimmed := strings.TrimRight(p, "/"); trimmed != "" || p == "" {
		p = trimmed
	} else {
		p = "/"
	}
	if p == "" {
		return "", fmt.Errorf("empty path")
	}

	if !strings.HasPrefix(p, "@") {
		return r.anchor(filepath.FromSlash(p)), nil
	}

	token, rest, _ := strings.Cut(p[1:], "/")
	var root string
	var ok bool
	if r.aliases != nil {
		root, ok = r.aliases.Lookup(token)
	}
	if !ok {
		var known []string
		if r.aliases != nil {
			known = r.aliases.Names()
		}
		return "", &UnknownAlias{Alias: token, Known: known}
	}

	root = r.anchor(root)
	if rest == "" {
		return root, nil
	}
	// Joined lexically: symlinks below the alias root are kept as written.
	rel := filepath.FromSlash(rest)
	if !filepath.IsLocal(rel) {
		return "", fmt.Errorf("%w: %q under alias %q", ErrOutsideAlias, rest, token)
	}
	return filepath.Join(root, rel), nil
}

// anchor makes a relative path relative to the project directory.
func (r *Resolver) anchor(p string) string {
	if !filepath.IsAbs(p) && r.projectDir != "" {
		p = filepath.Join(r.projectDir, p)
	}
	return filepath.Clean(p)
}
