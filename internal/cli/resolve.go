package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/srcid/internal/engine"
)

// ResolveOptions holds flags for the resolve command.
type ResolveOptions struct {
	*RootOptions
	ID string // optional - print one source only
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ResolveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "resolve <file>",
		Short: "Resolve a batch of source announcements",
		Long: `Resolve every source in a batch file and print its canonical id and
relationships. Canonical sources are marked with *.

The batch may be JSON, NDJSON, YAML or CUE (chosen by extension).

Exit codes:
  0 - Batch resolved
  1 - Batch rejected (malformed record or cyclic relationship)
  2 - Command error (unreadable file, unknown --id, etc.)

Examples:
  srcid resolve batch.json
  srcid resolve batch.yaml --id o1
  srcid resolve batch.ndjson --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ID, "id", "", "print only this source")

	return cmd
}

func runResolve(opts *ResolveOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	anns, err := loadBatch(formatter, path)
	if err != nil {
		return err
	}

	eng := engine.New(engine.WithLogger(opts.logger(cmd.ErrOrStderr())))
	res, err := eng.ResolveAnnouncements(anns)
	if err != nil {
		return rejectBatch(formatter, err)
	}
	return outputResolution(formatter, "", res, opts.ID)
}

// AlternatesResult is the JSON payload of the alternates command.
type AlternatesResult struct {
	ID          string   `json:"id"`
	CanonicalID string   `json:"canonical_id"`
	Alternates  []string `json:"alternates"`
}

// NewAlternatesCommand creates the alternates command.
func NewAlternatesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alternates <file> <id>",
		Short: "List the representations a source can be switched to",
		Long: `List the other representations of one source: its pretty-printed
twin or base, the sources it was generated from, the sources it generated,
sources with identical content, and its canonical source.

Examples:
  srcid alternates batch.json 1
  srcid alternates batch.json pp1 --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAlternates(rootOpts, args[0], args[1], cmd)
		},
	}
	return cmd
}

func runAlternates(opts *RootOptions, path, id string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	anns, err := loadBatch(formatter, path)
	if err != nil {
		return err
	}

	eng := engine.New(engine.WithLogger(opts.logger(cmd.ErrOrStderr())))
	res, err := eng.ResolveAnnouncements(anns)
	if err != nil {
		return rejectBatch(formatter, err)
	}

	canonical, ok := res.CanonicalID(id)
	if !ok {
		return formatter.Fail(ExitCommandError, ErrCodeUnknownID, fmt.Sprintf("source %q not found", id), nil)
	}

	result := AlternatesResult{
		ID:          id,
		CanonicalID: canonical,
		Alternates:  res.Alternates(id),
	}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "%s (canonical: %s)\n", id, canonical)
	if len(result.Alternates) == 0 {
		fmt.Fprintln(w, "  no alternates")
		return nil
	}
	for _, alt := range result.Alternates {
		fmt.Fprintf(w, "  %s\n", alt)
	}
	return nil
}
