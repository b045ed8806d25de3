package cli

import (
	"path/filepath"

	"github.com/fractalmind/teamchat-go/internal/messaging"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report a team's health: members, unread counts, blocked/stale tasks",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

var statusFlags struct {
	team         string
	staleMinutes int
	watch        bool
}

func init() {
	statusCmd.Flags().StringVar(&statusFlags.team, "team", "", "team name (required)")
	statusCmd.Flags().IntVar(&statusFlags.staleMinutes, "stale-minutes", 90, "age threshold for stale tasks/messages")
	statusCmd.Flags().BoolVar(&statusFlags.watch, "watch", false, "re-run on every inbox change instead of exiting")

	_ = statusCmd.MarkFlagRequired("team")
}

// RegisterStatusCmd registers the status command with the given parent
// command.
func RegisterStatusCmd(parent *cobra.Command) {
	parent.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	dataRoot, err := dataRootOrErr()
	if err != nil {
		return err
	}
	svc := messaging.New(dataRoot)

	doStatus := func() error {
		result, err := svc.Status(statusFlags.team, statusFlags.staleMinutes)
		if err != nil {
			return err
		}
		return printResult(cmd, result, func() {
			printf(cmd, "team %s: %d member(s), %d task(s)\n", result.Team, len(result.Members), result.TaskCount)
			printf(cmd, "  blocked tasks: %d\n", len(result.BlockedTasks))
			printf(cmd, "  stale tasks:   %d\n", len(result.StaleTasks))
			printf(cmd, "  stale msgs:    %d\n", len(result.StaleMessages))
			for agent, count := range result.UnreadCounts {
				printf(cmd, "  %-20s unread=%d\n", agent, count)
			}
		})
	}

	if !statusFlags.watch {
		return doStatus()
	}

	inboxesDir := filepath.Join(dataRoot, "teams", statusFlags.team, "inboxes")
	return watchLoop(inboxesDir, doStatus)
}
