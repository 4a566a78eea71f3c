package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/vk/serializerconf/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(err error) error {
	return &ExitError{Code: 2, Message: err.Error()}
}

func failure(err error) error {
	return &ExitError{Code: 1, Message: err.Error()}
}

// Execute runs the command line in args. Every returned error is an
// *ExitError.
func Execute(ctx context.Context, args []string, outW, errW io.Writer) error {
	root := NewRootCommand(outW, errW)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	// Anything cobra rejects before RunE is a usage problem.
	return usageError(err)
}

// NewRootCommand builds the command tree. outW receives results and help
// text, errW receives logs.
func NewRootCommand(outW, errW io.Writer) *cobra.Command {
	var flags app.Config

	root := &cobra.Command{
		Use:   "serializerconf",
		Short: "Validate and normalize serializer bundle configuration",
		Long: `serializerconf merges serializer configuration files (HCL, YAML, TOML or
JSON), applies the schema defaults, resolves metadata directories against
registered bundle aliases and prints the result.

Settings may also come from SERIALIZERCONF_* environment variables; flags win.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(outW)
	root.SetErr(outW)
	root.CompletionOptions.DisableDefaultCmd = true

	pf := root.PersistentFlags()
	pf.StringVar(&flags.LogLevel, "log-level", "", "Logging level: 'debug', 'info', 'warn' or 'error' (default \"info\").")
	pf.StringVar(&flags.LogFormat, "log-format", "", "Log output format: 'text' or 'json' (default \"text\").")
	pf.BoolVar(&flags.Debug, "debug", false, "Use debug defaults (metadata.debug = true).")

	newApp := func() (*app.App, error) {
		cfg, err := app.LoadConfig(flags)
		if err != nil {
			return nil, usageError(err)
		}
		slog.Debug("CLI configuration resolved.", "config_paths", cfg.ConfigPaths, "output", cfg.OutputFormat)
		return app.NewApp(outW, errW, cfg), nil
	}

	process := &cobra.Command{
		Use:   "process [CONFIG_PATH]...",
		Short: "Normalize configuration and print the result",
		Long: `Load every CONFIG_PATH (files, or directories searched recursively), merge
them in order, normalize against the serializer schema and print the
normalized tree together with the resolved metadata directories.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.ConfigPaths = append(flags.ConfigPaths, args...)
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.Run(cmd.Context()); err != nil {
				return failure(err)
			}
			return nil
		},
	}
	f := process.Flags()
	f.StringArrayVarP(&flags.ConfigPaths, "config", "c", nil, "Config file or directory; repeatable.")
	f.StringArrayVar(&flags.Bundles, "bundle", nil, "Register an alias as NAME[:NAMESPACE]=PATH; repeatable.")
	f.StringVar(&flags.CacheDir, "cache-dir", "", "Cache root used when metadata.file_cache.dir is unset.")
	f.StringVar(&flags.ProjectDir, "project-dir", "", "Directory relative metadata paths are resolved against (default \".\").")
	f.StringVar(&flags.MetadataSubdir, "metadata-subdir", "", "Bundle subdirectory probed by auto-detection (default \""+app.DefaultMetadataSubdir+"\").")
	f.BoolVar(&flags.RequireExisting, "require-existing", false, "Fail when a resolved metadata directory does not exist.")
	f.StringVarP(&flags.OutputFormat, "output", "o", "", "Output format: 'yaml' or 'json' (default \"yaml\").")

	reference := &cobra.Command{
		Use:   "reference",
		Short: "Print every configuration key with its default",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.Reference(cmd.Context()); err != nil {
				return failure(err)
			}
			return nil
		},
	}

	root.AddCommand(process, reference)
	return root
}
