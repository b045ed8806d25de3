package cli

import (
	"github.com/fractalmind/teamchat-go/internal/messaging"
	"github.com/spf13/cobra"
)

var ackCmd = &cobra.Command{
	Use:   "ack",
	Short: "Acknowledge a message",
	Long: `ack idempotently records that agent received message id. Acking an
already-acked message, a message addressed to a different agent, or an
unknown message id all return a status rather than an error.`,
	Args: cobra.NoArgs,
	RunE: runAck,
}

var ackFlags struct {
	team  string
	agent string
	id    string
}

func init() {
	ackCmd.Flags().StringVar(&ackFlags.team, "team", "", "team name (required)")
	ackCmd.Flags().StringVar(&ackFlags.agent, "agent", "", "acknowledging agent id (required)")
	ackCmd.Flags().StringVar(&ackFlags.id, "id", "", "message id (required)")

	_ = ackCmd.MarkFlagRequired("team")
	_ = ackCmd.MarkFlagRequired("agent")
	_ = ackCmd.MarkFlagRequired("id")
}

// RegisterAckCmd registers the ack command with the given parent command.
func RegisterAckCmd(parent *cobra.Command) {
	parent.AddCommand(ackCmd)
}

func runAck(cmd *cobra.Command, args []string) error {
	dataRoot, err := dataRootOrErr()
	if err != nil {
		return err
	}

	logger, err := openLogger(dataRoot)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Close() }()
	log := logger.WithTeam(ackFlags.team).WithAgent(ackFlags.agent).WithOp("ack")

	svc := messaging.New(dataRoot)
	result, err := svc.Ack(ackFlags.team, ackFlags.agent, ackFlags.id)
	if err != nil {
		log.Error("ack failed", "message_id", ackFlags.id, "error", err)
		return err
	}
	log.Info("ack completed", "status", result.Status, "message_id", ackFlags.id)

	return printResult(cmd, result, func() {
		printf(cmd, "%s\n", result.Status)
	})
}
