package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// printResult renders data as indented JSON when --json is set, otherwise
// calls textFn to print the human-readable form. Every subcommand funnels
// its output through here so JSON rendering never has to be reimplemented
// per verb.
func printResult(cmd *cobra.Command, data any, textFn func()) error {
	if jsonOutput(cmd) {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	}
	textFn()
	return nil
}

func printf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
