package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/srcid/internal/ir"
)

// VersionResult is the JSON payload of the version command.
type VersionResult struct {
	Engine string `json:"engine"`
	IR     string `json:"ir"`
}

// NewVersionCommand creates the version command.
func NewVersionCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "version",
		Short:         "Print engine and record format versions",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := rootOpts.formatter(cmd)
			if formatter.Format == "json" {
				return formatter.Success(VersionResult{Engine: ir.EngineVersion, IR: ir.IRVersion})
			}
			fmt.Fprintf(formatter.Writer, "srcid %s (ir %s)\n", ir.EngineVersion, ir.IRVersion)
			return nil
		},
	}
}
