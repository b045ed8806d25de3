// Package cli provides the teamchat command-line surface: a cobra root
// command plus one file per verb (init, send, task-assign, task-update,
// read, ack, status, trace, rehydrate, doctor check). Each subcommand is a
// thin wrapper around internal/messaging, except init, which opens the
// team's internal/store Store directly to create its layout and member
// inboxes.
package cli

import (
	"strings"

	appconfig "github.com/fractalmind/teamchat-go/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "teamchat",
	Short: "File-backed messaging control plane for multi-agent teams",
	Long: `teamchat coordinates message delivery, acknowledgement, and task state
across a team of agents using an append-only, file-backed store — no
database, no daemon. Every subcommand operates against a single data root,
supplied via --data-root or TEAMCHAT_DATA_ROOT.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// NewRootCommand builds the teamchat root command with all subcommands
// registered.
func NewRootCommand() *cobra.Command {
	return rootCmd
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("data-root", "", "data root directory (required; also settable via TEAMCHAT_DATA_ROOT)")
	rootCmd.PersistentFlags().Bool("json", false, "emit machine-readable JSON output")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")

	_ = viper.BindPFlag("data_root", rootCmd.PersistentFlags().Lookup("data-root"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))

	RegisterInitCmd(rootCmd)
	RegisterSendCmd(rootCmd)
	RegisterTaskAssignCmd(rootCmd)
	RegisterTaskUpdateCmd(rootCmd)
	RegisterReadCmd(rootCmd)
	RegisterAckCmd(rootCmd)
	RegisterStatusCmd(rootCmd)
	RegisterTraceCmd(rootCmd)
	RegisterRehydrateCmd(rootCmd)
	RegisterDoctorCmd(rootCmd)
}

// initConfig wires viper's defaults, config file search path, and
// TEAMCHAT_-prefixed environment variables. It never walks the filesystem
// looking for a data root — an unset --data-root/TEAMCHAT_DATA_ROOT is left
// empty and surfaced as a caller error by the commands that need one.
func initConfig() {
	appconfig.SetDefaults()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(appconfig.ConfigDir())

	viper.AutomaticEnv()
	viper.SetEnvPrefix("TEAMCHAT")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	_ = viper.ReadInConfig()
}

// dataRootOrErr returns the configured data root or a caller error if it
// was never supplied. This is the sole gate enforcing the "refuse to
// guess" data-root contract at the CLI boundary.
func dataRootOrErr() (string, error) {
	root := viper.GetString("data_root")
	if strings.TrimSpace(root) == "" {
		return "", newCallerError("--data-root (or TEAMCHAT_DATA_ROOT) is required")
	}
	return root, nil
}

func jsonOutput(cmd *cobra.Command) bool {
	if v, err := cmd.Flags().GetBool("json"); err == nil && v {
		return true
	}
	return viper.GetBool("json")
}
