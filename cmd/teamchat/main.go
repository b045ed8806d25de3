// Command teamchat is the CLI front end for the file-backed messaging
// control plane implemented under internal/. It is a thin wrapper: the
// subcommands delegate to internal/messaging (init to internal/store), and
// this file only wires the cobra root command to the process exit code.
package main

import (
	"fmt"
	"os"

	"github.com/fractalmind/teamchat-go/internal/cli"
)

func main() {
	root := cli.NewRootCommand()
	err := root.Execute()
	if err != nil && cli.ExitCodeForError(err) != cli.ExitUnhealthy {
		fmt.Fprintln(os.Stderr, "error:", err)
	}
	os.Exit(cli.ExitCodeForError(err))
}
