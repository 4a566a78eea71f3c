package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/caarlos0/env/v11"
	"github.com/vk/serializerconf/internal/resolve"
)

// EnvPrefix is prepended to every environment variable read by LoadConfig.
const EnvPrefix = "SERIALIZERCONF_"

// DefaultMetadataSubdir is where auto-detection looks inside each bundle.
const DefaultMetadataSubdir = "Resources/config/serializer"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ConfigPaths []string `env:"CONFIG"`  // config files or directories
	Bundles     []string `env:"BUNDLES"` // NAME[:NAMESPACE]=PATH

	Debug           bool   `env:"DEBUG"`
	CacheDir        string `env:"CACHE_DIR"`
	ProjectDir      string `env:"PROJECT_DIR"`
	MetadataSubdir  string `env:"METADATA_SUBDIR"`
	RequireExisting bool   `env:"REQUIRE_EXISTING"`

	OutputFormat string `env:"OUTPUT"`
	LogFormat    string `env:"LOG_FORMAT"`
	LogLevel     string `env:"LOG_LEVEL"`

	bundles resolve.Bundles
}

// Defaults returns the built-in settings, the lowest configuration layer.
func Defaults() Config {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		cacheDir = os.TempDir()
	}
	return Config{
		CacheDir:       filepath.Join(cacheDir, "serializerconf"),
		ProjectDir:     ".",
		MetadataSubdir: DefaultMetadataSubdir,
		OutputFormat:   "yaml",
		LogFormat:      "text",
		LogLevel:       "info",
	}
}

// LoadConfig layers flags over SERIALIZERCONF_* environment variables over
// Defaults and validates the result. Only non-zero values of a higher layer
// take precedence.
func LoadConfig(flags Config) (*Config, error) {
	var fromEnv Config
	if err := env.ParseWithOptions(&fromEnv, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("error getting env configs: %w", err)
	}

	merged := flags
	for _, layer := range []Config{fromEnv, Defaults()} {
		if err := mergo.Merge(&merged, layer); err != nil {
			return nil, fmt.Errorf("error merging configs: %w", err)
		}
	}
	return NewConfig(merged)
}

// NewConfig validates cfg and returns a copy ready for NewApp.
func NewConfig(cfg Config) (*Config, error) {
	var errs []error

	switch cfg.OutputFormat {
	case "yaml", "json":
	default:
		errs = append(errs, fmt.Errorf("invalid output format %q: must be 'yaml' or 'json'", cfg.OutputFormat))
	}
	switch cfg.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("invalid log-format %q: must be 'text' or 'json'", cfg.LogFormat))
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("invalid log-level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel))
	}

	bundles, err := ParseBundles(cfg.Bundles)
	if err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	cfg.bundles = bundles
	return &cfg, nil
}

// ParseBundles parses NAME[:NAMESPACE]=PATH values into an alias table.
func ParseBundles(values []string) (resolve.Bundles, error) {
	bundles := make(resolve.Bundles, 0, len(values))
	for _, value := range values {
		ref, path, ok := strings.Cut(value, "=")
		name, namespace, _ := strings.Cut(ref, ":")
		name = strings.TrimPrefix(strings.TrimSpace(name), "@")
		path = strings.TrimSpace(path)
		if !ok || name == "" || path == "" {
			return nil, fmt.Errorf("invalid bundle %q: expected NAME[:NAMESPACE]=PATH", value)
		}
		bundles = append(bundles, resolve.Bundle{
			Name:      name,
			Namespace: strings.TrimSpace(namespace),
			Path:      path,
		})
	}
	return bundles, nil
}
