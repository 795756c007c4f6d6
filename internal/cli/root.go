package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/srcid/internal/config"
	"github.com/roach88/srcid/internal/session"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose   bool
	Format    string // "json" | "text"
	ConfigDir string

	// Config is filled in by the root command before any subcommand runs.
	// Nil when a subcommand is executed on its own, as in tests.
	Config *config.Config

	// SessionIDs names sessions created by ingest. Nil means UUIDv7.
	SessionIDs session.IDGenerator
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the srcid CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "srcid",
		Short: "srcid - source identity resolution",
		Long: `Resolve which representation of a script a debugger should show.

srcid reads batches of source announcements (bundles, HTML documents,
inline scripts, source-mapped originals and pretty-printed copies), links
them into relationship graphs and reports the canonical id of every
source along with the alternates a user may switch to.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return applyConfig(cmd, opts)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigDir, "config-dir", config.DefaultDir(), "directory holding srcid.yaml and .env")

	// Add subcommands
	cmd.AddCommand(NewResolveCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewAlternatesCommand(opts))
	cmd.AddCommand(NewIngestCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewSessionsCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewVersionCommand(opts))

	return cmd
}

// applyConfig loads the config directory and fills in every global flag
// the user did not set explicitly.
func applyConfig(cmd *cobra.Command, opts *RootOptions) error {
	cfg, err := config.Load(opts.ConfigDir)
	if err != nil {
		return opts.formatter(cmd).Fail(ExitCommandError, ErrCodeConfig, fmt.Sprintf("failed to load config: %v", err), nil)
	}
	opts.Config = cfg

	flags := cmd.Flags()
	if !flags.Changed("format") {
		opts.Format = cfg.Format
	}
	if !flags.Changed("verbose") {
		opts.Verbose = cfg.Verbose
	}

	// Validate format flag
	if !isValidFormat(opts.Format) {
		msg := fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
		opts.Format = "text"
		return opts.formatter(cmd).Fail(ExitCommandError, ErrCodeConfig, msg, nil)
	}
	return nil
}

// database picks the SQLite path: the command's --db flag, then config,
// then the built-in default.
func (o *RootOptions) database(flag string) string {
	if flag != "" {
		return flag
	}
	if o.Config != nil && o.Config.Database != "" {
		return o.Config.Database
	}
	return config.DefaultDatabase
}

// newSessionID names a session created without --session.
func (o *RootOptions) newSessionID() string {
	if o.SessionIDs == nil {
		return session.UUIDv7Generator{}.Generate()
	}
	return o.SessionIDs.Generate()
}

// logger returns the diagnostics logger. Debug lines from the engine and
// session only appear with --verbose.
func (o *RootOptions) logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if o.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// formatter builds the output formatter for a command.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
