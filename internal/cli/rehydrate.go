package cli

import (
	"github.com/fractalmind/teamchat-go/internal/messaging"
	"github.com/spf13/cobra"
)

var rehydrateCmd = &cobra.Command{
	Use:   "rehydrate",
	Short: "Rebuild a team's derived indexes from the authoritative logs",
	Long: `rehydrate replays every inbox and event log to rebuild the message
index, event index, ack index, and task-state snapshots from scratch,
discarding whatever those indexes currently hold. Use this after manual
repair or when doctor check reports index drift.`,
	Args: cobra.NoArgs,
	RunE: runRehydrate,
}

var rehydrateFlags struct {
	team string
}

func init() {
	rehydrateCmd.Flags().StringVar(&rehydrateFlags.team, "team", "", "team name (required)")
	_ = rehydrateCmd.MarkFlagRequired("team")
}

// RegisterRehydrateCmd registers the rehydrate command with the given
// parent command.
func RegisterRehydrateCmd(parent *cobra.Command) {
	parent.AddCommand(rehydrateCmd)
}

func runRehydrate(cmd *cobra.Command, args []string) error {
	dataRoot, err := dataRootOrErr()
	if err != nil {
		return err
	}

	logger, err := openLogger(dataRoot)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Close() }()
	log := logger.WithTeam(rehydrateFlags.team).WithOp("rehydrate")

	svc := messaging.New(dataRoot)
	result, err := svc.Rehydrate(rehydrateFlags.team)
	if err != nil {
		log.Error("rehydrate failed", "error", err)
		return err
	}
	log.Info("rehydrate completed", "messages", result.Messages, "events", result.Events,
		"acks", result.Acks, "tasks", result.TaskCount)

	return printResult(cmd, result, func() {
		printf(cmd, "rehydrated team %s: %d message(s), %d event(s), %d ack(s), %d task(s)\n",
			result.Team, result.Messages, result.Events, result.Acks, result.TaskCount)
	})
}
