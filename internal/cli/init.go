package cli

import (
	"github.com/fractalmind/teamchat-go/internal/store"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init <team> [member...]",
	Short: "Create a team's on-disk layout and register its initial members",
	Long: `init creates the directory layout for a team under the data root and
writes an empty inbox for each named member, so status and read report the
full membership even before any message has been sent.

A team that already exists is left untouched; init is safe to re-run.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInit,
}

// RegisterInitCmd registers the init command with the given parent command.
func RegisterInitCmd(parent *cobra.Command) {
	parent.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	dataRoot, err := dataRootOrErr()
	if err != nil {
		return err
	}

	team := args[0]
	members := args[1:]

	logger, err := openLogger(dataRoot)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Close() }()
	log := logger.WithTeam(team).WithOp("init")

	st, err := store.Open(dataRoot, team)
	if err != nil {
		return err
	}
	if err := st.EnsureLayout(); err != nil {
		return err
	}

	registered := make([]string, 0, len(members))
	for _, member := range members {
		name, err := st.EnsureAgent(member)
		if err != nil {
			log.Error("init failed registering member", "member", member, "error", err)
			return err
		}
		registered = append(registered, name)
	}
	log.Info("init completed", "members", registered)

	return printResult(cmd, map[string]any{
		"team":    st.Team(),
		"members": registered,
	}, func() {
		printf(cmd, "initialized team %q with %d member(s)\n", st.Team(), len(registered))
	})
}
