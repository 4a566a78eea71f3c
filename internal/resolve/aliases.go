package resolve

import (
	"os"
	"path/filepath"
	"sort"
)

// AliasResolver is the host-provided table of alias tokens.
type AliasResolver interface {
	// Lookup returns the directory registered for name (without the
	// leading "@").
	Lookup(name string) (string, bool)
	// Names lists every registered alias.
	Names() []string
}

// Detector is implemented by alias tables that can discover metadata
// directories on their own.
type Detector interface {
	// Detect returns namespace -> directory for every entry whose subdir
	// exists on disk.
	Detect(subdir string) (map[string]string, error)
}

// Bundle is one registered alias: a named directory, optionally tied to a
// namespace used for auto-detection.
type Bundle struct {
	Name      string
	Namespace string
	Path      string
}

// Bundles is an AliasResolver backed by a list of bundles. When a name is
// registered twice, the last registration wins.
type Bundles []Bundle

var (
	_ AliasResolver = Bundles(nil)
	_ Detector      = Bundles(nil)
)

// Lookup implements AliasResolver.
func (b Bundles) Lookup(name string) (string, bool) {
	for i := len(b) - 1; i >= 0; i-- {
		if b[i].Name == name {
			return b[i].Path, true
		}
	}
	return "", false
}

// Names implements AliasResolver.
func (b Bundles) Names() []string {
	seen := make(map[string]struct{}, len(b))
	names := make([]string, 0, len(b))
	for _, bundle := range b {
		if _, dup := seen[bundle.Name]; dup {
			continue
		}
		seen[bundle.Name] = struct{}{}
		names = append(names, bundle.Name)
	}
	sort.Strings(names)
	return names
}

// Detect implements Detector. A bundle without a namespace is keyed by its
// name.
func (b Bundles) Detect(subdir string) (map[string]string, error) {
	found := make(map[string]string)
	for _, bundle := range b {
		dir := filepath.Join(bundle.Path, filepath.FromSlash(subdir))
		info, err := os.Stat(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		if !info.IsDir() {
			continue
		}
		ns := bundle.Namespace
		if ns == "" {
			ns = bundle.Name
		}
		found[ns] = dir
	}
	return found, nil
}

// Anchor returns a copy of b with relative bundle paths joined to dir, so
// Lookup and Detect agree on where a relative bundle lives.
func (b Bundles) Anchor(dir string) Bundles {
	out := make(Bundles, len(b))
	for i, bundle := range b {
		if dir != "" && !filepath.IsAbs(bundle.Path) {
			bundle.Path = filepath.Join(dir, bundle.Path)
		}
		out[i] = bundle
	}
	return out
}
