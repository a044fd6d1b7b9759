package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string

	// Variables is the default pattern variable list for documents that
	// declare none. Set from the config file.
	Variables []string

	// TraceIDs generates trace ids for JSON responses. Defaults to UUIDv7.
	TraceIDs TraceIDGenerator

	// Logger receives debug output of the rewriter. Set from --verbose.
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the tpgm CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tpgm",
		Short: "tpgm - temporal graph query predicates",
		Long: `Rewrite, compile and evaluate temporal predicates of TPGM graph queries.

Predicates referring to the global time of a query pattern are unfolded
into predicates over the pattern's variables, then compiled to SQL or
matched against a store of temporal graph elements.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.configure(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default: tpgm.yaml in $TPGM_CONFIG_DIR or the working directory)")

	// Add subcommands
	cmd.AddCommand(NewUnfoldCommand(opts))
	cmd.AddCommand(NewSQLCommand(opts))
	cmd.AddCommand(NewEvalCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewMatchCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// configure merges the config file under the flags. Flags set on the
// command line win.
func (o *RootOptions) configure(cmd *cobra.Command) error {
	v, err := loadConfig(o.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	flags := cmd.Flags()
	if !flags.Changed("format") {
		o.Format = v.GetString(cfgKeyFormat)
	}
	if !flags.Changed("verbose") {
		o.Verbose = v.GetBool(cfgKeyVerbose)
	}
	o.Variables = v.GetStringSlice(cfgKeyVariables)

	if !isValidFormat(o.Format) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats))
	}

	if o.Verbose {
		o.Logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return nil
}

// logger returns the configured logger, discarding output by default.
func (o *RootOptions) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o.Logger
}

// traceID returns a new trace id for a JSON response.
func (o *RootOptions) traceID() string {
	if o.TraceIDs == nil {
		return UUIDv7Generator{}.Generate()
	}
	return o.TraceIDs.Generate()
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
