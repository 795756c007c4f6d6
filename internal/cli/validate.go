package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/srcid/internal/engine"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid   bool `json:"valid"`
	Sources int  `json:"sources"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a batch without resolving it",
		Long: `Validate a batch file without running resolution.

Checks that every announcement decodes, that every record has the shape
its kind requires, that ids are unique and that every referenced id is
part of the batch. Cycles are only detected by resolve.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	anns, err := loadBatch(formatter, path)
	if err != nil {
		return err
	}

	sources, err := engine.Convert(anns)
	if err != nil {
		return rejectBatch(formatter, err)
	}
	if err := engine.Validate(sources); err != nil {
		return rejectBatch(formatter, err)
	}

	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Sources: len(sources)})
	}
	fmt.Fprintf(formatter.Writer, "✓ %d source(s) valid\n", len(sources))
	return nil
}
