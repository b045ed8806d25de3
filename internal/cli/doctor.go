package cli

import (
	"github.com/fractalmind/teamchat-go/internal/diagnostics"
	"github.com/fractalmind/teamchat-go/internal/messaging"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnostic commands",
}

var doctorCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Run the consistency checks: index integrity, malformed JSONL, snapshot monotonicity, ack consistency",
	Long: `doctor check samples a team's indexes against its authoritative logs and
reports index_integrity, malformed_jsonl, snapshot_monotonicity,
index_inbox_sample_consistency, and ack_index_consistency. The process
exits 2 when the overall status is not healthy, distinct from the 1 used
for ordinary caller errors.`,
	Args: cobra.NoArgs,
	RunE: runDoctorCheck,
}

var doctorCheckFlags struct {
	team       string
	sampleSize int
}

func init() {
	doctorCheckCmd.Flags().StringVar(&doctorCheckFlags.team, "team", "", "team name (required)")
	doctorCheckCmd.Flags().IntVar(&doctorCheckFlags.sampleSize, "sample-size", 100, "inbox sample size for index_inbox_sample_consistency")
	_ = doctorCheckCmd.MarkFlagRequired("team")
}

// RegisterDoctorCmd registers the doctor command, and its check
// subcommand, with the given parent command.
func RegisterDoctorCmd(parent *cobra.Command) {
	doctorCmd.AddCommand(doctorCheckCmd)
	parent.AddCommand(doctorCmd)
}

func runDoctorCheck(cmd *cobra.Command, args []string) error {
	dataRoot, err := dataRootOrErr()
	if err != nil {
		return err
	}

	svc := messaging.New(dataRoot)
	report, err := svc.DoctorCheck(doctorCheckFlags.team, doctorCheckFlags.sampleSize)
	if err != nil {
		return err
	}

	if printErr := printResult(cmd, report, func() {
		printf(cmd, "team %s: %s\n", report.Team, report.OverallStatus)
		for _, check := range report.Checks {
			printf(cmd, "  %-32s %-10s %s\n", check.Name, check.Status, check.Summary)
		}
		for _, rec := range report.Recommendations {
			printf(cmd, "  -> %s\n", rec)
		}
	}); printErr != nil {
		return printErr
	}

	if report.OverallStatus != diagnostics.StatusHealthy {
		return &unhealthyError{}
	}
	return nil
}
