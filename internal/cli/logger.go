package cli

import (
	appconfig "github.com/fractalmind/teamchat-go/internal/config"
	"github.com/fractalmind/teamchat-go/internal/logging"
	"github.com/spf13/viper"
)

// openLogger builds a *logging.Logger for dataRoot from the process
// configuration, converting the loaded config.LoggingConfig into a
// logging.RotationConfig. Every state-mutating subcommand opens one of
// these around its work and defers Close so teamchat.log captures the same
// operations doctor check and rehydrate reason about.
func openLogger(dataRoot string) (*logging.Logger, error) {
	cfg, err := appconfig.Load()
	if err != nil {
		cfg = appconfig.Default()
	}

	rotation := logging.RotationConfig{
		MaxSizeMB:   cfg.Logging.MaxSizeMB,
		MaxBackups:  cfg.Logging.MaxBackups,
		Compress:    cfg.Logging.Compress,
		RotateDaily: cfg.Logging.RotateDaily,
	}

	level := cfg.LogLevel
	if v := viper.GetString("log_level"); v != "" {
		level = v
	}

	return logging.NewLoggerWithRotation(dataRoot, level, rotation)
}
