package cli

import (
	"path/filepath"

	"github.com/fractalmind/teamchat-go/internal/messaging"
	"github.com/spf13/cobra"
)

var readCmd = &cobra.Command{
	Use:   "read",
	Short: "List a page of an agent's inbox, oldest first",
	Long: `read returns a page of one agent's inbox messages via cursor-based
reverse pagination: each page holds the newest messages older than the
cursor, listed oldest first. --watch re-runs the same read every time
the team's inboxes change, instead of exiting after one page.`,
	Args: cobra.NoArgs,
	RunE: runRead,
}

var readFlags struct {
	team       string
	agent      string
	unreadOnly bool
	limit      int
	cursor     string
	watch      bool
}

func init() {
	readCmd.Flags().StringVar(&readFlags.team, "team", "", "team name (required)")
	readCmd.Flags().StringVar(&readFlags.agent, "agent", "", "agent id (required)")
	readCmd.Flags().BoolVar(&readFlags.unreadOnly, "unread", false, "only return unacked messages")
	readCmd.Flags().IntVar(&readFlags.limit, "limit", 20, "page size")
	readCmd.Flags().StringVar(&readFlags.cursor, "cursor", "", "pagination cursor from a previous read")
	readCmd.Flags().BoolVar(&readFlags.watch, "watch", false, "re-run on every inbox change instead of exiting")

	_ = readCmd.MarkFlagRequired("team")
	_ = readCmd.MarkFlagRequired("agent")
}

// RegisterReadCmd registers the read command with the given parent command.
func RegisterReadCmd(parent *cobra.Command) {
	parent.AddCommand(readCmd)
}

func runRead(cmd *cobra.Command, args []string) error {
	dataRoot, err := dataRootOrErr()
	if err != nil {
		return err
	}
	svc := messaging.New(dataRoot)

	doRead := func() error {
		result, err := svc.Read(readFlags.team, readFlags.agent, readFlags.unreadOnly, readFlags.limit, readFlags.cursor)
		if err != nil {
			return err
		}
		return printResult(cmd, result, func() {
			printf(cmd, "%d message(s) for %s\n", result.Count, result.Agent)
			for _, m := range result.Messages {
				printf(cmd, "  %s  %s  from=%s  %s\n", m.CreatedAt, m.ID, m.From, m.Type)
			}
		})
	}

	if !readFlags.watch {
		return doRead()
	}

	inboxesDir := filepath.Join(dataRoot, "teams", readFlags.team, "inboxes")
	return watchLoop(inboxesDir, doRead)
}
