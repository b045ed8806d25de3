package cli

import (
	"github.com/fractalmind/teamchat-go/internal/messaging"
	"github.com/spf13/cobra"
)

var traceCmd = &cobra.Command{
	Use:   "trace",
	Short: "List every event carrying a given trace id",
	Long: `trace scans the event log for entries matching trace_id, either at the
event's own top level or within its payload. limit <= 0 performs a forward
scan of every match; limit > 0 reverse-paginates, same as read.`,
	Args: cobra.NoArgs,
	RunE: runTrace,
}

var traceFlags struct {
	team    string
	traceID string
	limit   int
	cursor  string
}

func init() {
	traceCmd.Flags().StringVar(&traceFlags.team, "team", "", "team name (required)")
	traceCmd.Flags().StringVar(&traceFlags.traceID, "trace-id", "", "trace id to match (required)")
	traceCmd.Flags().IntVar(&traceFlags.limit, "limit", 0, "page size (<= 0: return every match unpaginated)")
	traceCmd.Flags().StringVar(&traceFlags.cursor, "cursor", "", "pagination cursor from a previous trace")

	_ = traceCmd.MarkFlagRequired("team")
	_ = traceCmd.MarkFlagRequired("trace-id")
}

// RegisterTraceCmd registers the trace command with the given parent
// command.
func RegisterTraceCmd(parent *cobra.Command) {
	parent.AddCommand(traceCmd)
}

func runTrace(cmd *cobra.Command, args []string) error {
	dataRoot, err := dataRootOrErr()
	if err != nil {
		return err
	}

	svc := messaging.New(dataRoot)
	result, err := svc.Trace(traceFlags.team, traceFlags.traceID, traceFlags.limit, traceFlags.cursor)
	if err != nil {
		return err
	}

	return printResult(cmd, result, func() {
		printf(cmd, "%d event(s) for trace %s\n", len(result.Events), traceFlags.traceID)
		for _, e := range result.Events {
			printf(cmd, "  %s  %s  %s\n", e.CreatedAt, e.ID, e.Kind)
		}
	})
}
