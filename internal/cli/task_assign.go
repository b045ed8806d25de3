package cli

import (
	"github.com/fractalmind/teamchat-go/internal/envelope"
	"github.com/spf13/cobra"
)

var taskAssignCmd = &cobra.Command{
	Use:   "task-assign",
	Short: "Send a task_assign message (send, pinned to that type)",
	Args:  cobra.NoArgs,
	RunE:  runTaskAssign,
}

var taskAssignFlags struct {
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
	taskAssignCmd.Flags().StringVar(&taskAssignFlags.team, "team", "", "team name (required)")
	taskAssignCmd.Flags().StringVar(&taskAssignFlags.id, "id", "", "message id (default: generated)")
	taskAssignCmd.Flags().StringVar(&taskAssignFlags.from, "from", "", "sender agent id (required)")
	taskAssignCmd.Flags().StringVar(&taskAssignFlags.to, "to", "", "recipient agent id (required)")
	taskAssignCmd.Flags().StringVar(&taskAssignFlags.taskID, "task-id", "", "task id (required)")
	taskAssignCmd.Flags().StringVar(&taskAssignFlags.traceID, "trace-id", "", "trace id for cross-message correlation")
	taskAssignCmd.Flags().StringVar(&taskAssignFlags.priority, "priority", "", "priority: low, normal, high, critical")
	taskAssignCmd.Flags().StringVar(&taskAssignFlags.payload, "payload", "{}", "JSON object payload")
	taskAssignCmd.Flags().BoolVar(&taskAssignFlags.requireAck, "require-ack", false, "wait for acknowledgement, retrying on timeout")
	taskAssignCmd.Flags().IntVar(&taskAssignFlags.ackTimeoutSeconds, "ack-timeout", 0, "ack wait timeout in seconds")
	taskAssignCmd.Flags().IntVar(&taskAssignFlags.maxRetries, "max-retries", 0, "ack retry attempts")
	taskAssignCmd.Flags().IntVar(&taskAssignFlags.cooldownSeconds, "cooldown", 0, "suppress a duplicate within this window")

	_ = taskAssignCmd.MarkFlagRequired("team")
	_ = taskAssignCmd.MarkFlagRequired("from")
	_ = taskAssignCmd.MarkFlagRequired("to")
	_ = taskAssignCmd.MarkFlagRequired("task-id")
}

// RegisterTaskAssignCmd registers the task-assign command with the given
// parent command.
func RegisterTaskAssignCmd(parent *cobra.Command) {
	parent.AddCommand(taskAssignCmd)
}

func runTaskAssign(cmd *cobra.Command, args []string) error {
	f := taskAssignFlags
	return send(cmd, f.team, envelope.TypeTaskAssign, f.from, f.to, f.id, f.taskID, f.traceID, f.priority, f.payload,
		f.requireAck, f.ackTimeoutSeconds, f.maxRetries, f.cooldownSeconds)
}
