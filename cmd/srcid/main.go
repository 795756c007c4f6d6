// Command srcid resolves the canonical identity of debugger sources.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/srcid/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		// Commands print their own error envelopes; only stray errors
		// (flag parsing, missing args) still need reporting here.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
