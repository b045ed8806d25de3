package cli

import (
	"encoding/json"

	"github.com/fractalmind/teamchat-go/internal/envelope"
	"github.com/fractalmind/teamchat-go/internal/messaging"
	"github.com/spf13/cobra"
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send a message to one agent",
	Long: `send normalizes and validates a message envelope, applies the
per-recipient/type/task cooldown gate, appends it to the recipient's inbox,
and — with --require-ack — waits for acknowledgement, retrying and finally
dead-lettering the message on timeout.`,
	Args: cobra.NoArgs,
	RunE: runSend,
}

var sendFlags struct {
	team              string
	id                string
	msgType           string
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
	sendCmd.Flags().StringVar(&sendFlags.team, "team", "", "team name (required)")
	sendCmd.Flags().StringVar(&sendFlags.id, "id", "", "message id (default: generated)")
	sendCmd.Flags().StringVar(&sendFlags.msgType, "type", "", "message type (required)")
	sendCmd.Flags().StringVar(&sendFlags.from, "from", "", "sender agent id (required)")
	sendCmd.Flags().StringVar(&sendFlags.to, "to", "", "recipient agent id (required)")
	sendCmd.Flags().StringVar(&sendFlags.taskID, "task-id", "", "associated task id")
	sendCmd.Flags().StringVar(&sendFlags.traceID, "trace-id", "", "trace id for cross-message correlation")
	sendCmd.Flags().StringVar(&sendFlags.priority, "priority", "", "priority: low, normal, high, critical")
	sendCmd.Flags().StringVar(&sendFlags.payload, "payload", "{}", "JSON object payload")
	sendCmd.Flags().BoolVar(&sendFlags.requireAck, "require-ack", false, "wait for acknowledgement, retrying on timeout")
	sendCmd.Flags().IntVar(&sendFlags.ackTimeoutSeconds, "ack-timeout", 0, "ack wait timeout in seconds (0: use the resolved policy default)")
	sendCmd.Flags().IntVar(&sendFlags.maxRetries, "max-retries", 0, "ack retry attempts (0: use the resolved policy default)")
	sendCmd.Flags().IntVar(&sendFlags.cooldownSeconds, "cooldown", 0, "suppress a duplicate to the same recipient/type/task within this window")

	_ = sendCmd.MarkFlagRequired("team")
	_ = sendCmd.MarkFlagRequired("type")
	_ = sendCmd.MarkFlagRequired("from")
	_ = sendCmd.MarkFlagRequired("to")
}

// RegisterSendCmd registers the send command with the given parent command.
func RegisterSendCmd(parent *cobra.Command) {
	parent.AddCommand(sendCmd)
}

func runSend(cmd *cobra.Command, args []string) error {
	return send(cmd, sendFlags.team, envelope.Type(sendFlags.msgType), sendFlags.from, sendFlags.to,
		sendFlags.id, sendFlags.taskID, sendFlags.traceID, sendFlags.priority, sendFlags.payload,
		sendFlags.requireAck, sendFlags.ackTimeoutSeconds, sendFlags.maxRetries, sendFlags.cooldownSeconds)
}

// send is the shared implementation behind `send`, `task-assign`, and
// `task-update`: the latter two simply pin msgType and require --task-id.
func send(cmd *cobra.Command, team string, msgType envelope.Type, from, to, id, taskID, traceID, priority, payloadJSON string,
	requireAck bool, ackTimeoutSeconds, maxRetries, cooldownSeconds int) error {

	var payload map[string]any
	if err := json.Unmarshal([]byte(payloadJSON), &payload); err != nil {
		return newCallerError("invalid --payload JSON: " + err.Error())
	}

	env := envelope.Envelope{
		ID:       id,
		Type:     msgType,
		From:     from,
		To:       to,
		TaskID:   taskID,
		TraceID:  traceID,
		Priority: envelope.Priority(priority),
		Payload:  payload,
	}

	opts := messaging.SendOptions{
		RequireAck:      requireAck,
		CooldownSeconds: cooldownSeconds,
	}
	if ackTimeoutSeconds > 0 {
		opts.AckTimeoutSeconds = &ackTimeoutSeconds
	}
	if maxRetries > 0 {
		opts.MaxRetries = &maxRetries
	}

	dataRoot, err := dataRootOrErr()
	if err != nil {
		return err
	}

	logger, err := openLogger(dataRoot)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Close() }()
	log := logger.WithTeam(team).WithOp(string(msgType))

	svc := messaging.New(dataRoot)
	result, err := svc.Send(team, env, opts)
	if err != nil {
		log.Error("send failed", "from", from, "to", to, "error", err)
		return err
	}
	log.Info("send completed", "status", result.Status, "message_id", result.Message.ID)

	return printResult(cmd, result, func() {
		printf(cmd, "%s %s\n", result.Status, result.Message.ID)
	})
}
