package cli

import (
	"github.com/fractalmind/teamchat-go/internal/envelope"
	"github.com/spf13/cobra"
)

var taskUpdateCmd = &cobra.Command{
	Use:   "task-update",
	Short: "Send a task_update message (send, pinned to that type)",
	Args:  cobra.NoArgs,
	RunE:  runTaskUpdate,
}

var taskUpdateFlags struct {
	team              string
	id                string
	from              string
	to                string
	taskID            string
	traceID           string
	priority          string
	payload           string
	requireAck        bool
	ackTimeoutSeconds int
	maxRetries        int
	cooldownSeconds   int
}

func init() {
	taskUpdateCmd.Flags().StringVar(&taskUpdateFlags.team, "team", "", "team name (required)")
	taskUpdateCmd.Flags().StringVar(&taskUpdateFlags.id, "id", "", "message id (default: generated)")
	taskUpdateCmd.Flags().StringVar(&taskUpdateFlags.from, "from", "", "sender agent id (required)")
	taskUpdateCmd.Flags().StringVar(&taskUpdateFlags.to, "to", "", "recipient agent id (required)")
	taskUpdateCmd.Flags().StringVar(&taskUpdateFlags.taskID, "task-id", "", "task id (required)")
	taskUpdateCmd.Flags().StringVar(&taskUpdateFlags.traceID, "trace-id", "", "trace id for cross-message correlation")
	taskUpdateCmd.Flags().StringVar(&taskUpdateFlags.priority, "priority", "", "priority: low, normal, high, critical")
	taskUpdateCmd.Flags().StringVar(&taskUpdateFlags.payload, "payload", "{}", `JSON object payload (e.g. {"status":"blocked"})`)
	taskUpdateCmd.Flags().BoolVar(&taskUpdateFlags.requireAck, "require-ack", false, "wait for acknowledgement, retrying on timeout")
	taskUpdateCmd.Flags().IntVar(&taskUpdateFlags.ackTimeoutSeconds, "ack-timeout", 0, "ack wait timeout in seconds")
	taskUpdateCmd.Flags().IntVar(&taskUpdateFlags.maxRetries, "max-retries", 0, "ack retry attempts")
	taskUpdateCmd.Flags().IntVar(&taskUpdateFlags.cooldownSeconds, "cooldown", 0, "suppress a duplicate within this window")

	_ = taskUpdateCmd.MarkFlagRequired("team")
	_ = taskUpdateCmd.MarkFlagRequired("from")
	_ = taskUpdateCmd.MarkFlagRequired("to")
	_ = taskUpdateCmd.MarkFlagRequired("task-id")
}

// RegisterTaskUpdateCmd registers the task-update command with the given
// parent command.
func RegisterTaskUpdateCmd(parent *cobra.Command) {
	parent.AddCommand(taskUpdateCmd)
}

func runTaskUpdate(cmd *cobra.Command, args []string) error {
	f := taskUpdateFlags
	return send(cmd, f.team, envelope.TypeTaskUpdate, f.from, f.to, f.id, f.taskID, f.traceID, f.priority, f.payload,
		f.requireAck, f.ackTimeoutSeconds, f.maxRetries, f.cooldownSeconds)
}
