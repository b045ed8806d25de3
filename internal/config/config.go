package config

import (
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/viper"
)

// Config represents the complete teamchat-go CLI configuration. It carries
// only process-level defaults: the engine's on-disk state format, ack
// policies, and wire protocol are governed by the data root itself (see
// internal/store), not by this file.
type Config struct {
	// DataRoot is the default data root directory, used when neither
	// --data-root nor TEAMCHAT_DATA_ROOT is supplied. Per the data-root
	// discovery contract, an empty DataRoot is not resolved by guessing —
	// callers must supply one explicitly.
	DataRoot string `mapstructure:"data_root"`

	// LogLevel is the default log level: "debug", "info", "warn", or "error".
	LogLevel string `mapstructure:"log_level"`

	// JSON controls whether CLI output defaults to JSON rendering.
	JSON bool `mapstructure:"json"`

	// WarnMalformed is the settings-file counterpart of
	// TEAM_CHAT_WARN_MALFORMED. It is loaded but not consulted: the
	// malformed-JSONL stderr warnings are switched on only by the
	// environment variable itself (see internal/diagnostics).
	WarnMalformed bool `mapstructure:"warn_malformed"`

	Send SendConfig `mapstructure:"send"`

	// Logging controls rotation of the engine's own {data-root}/teamchat.log,
	// independent of the JSONL state the engine manages.
	Logging LoggingConfig `mapstructure:"logging"`
}

// LoggingConfig controls rotation of the process log file. It carries the
// same shape as internal/logging.RotationConfig; kept separate so the
// logging package has no dependency on the config package, and the CLI
// layer is the only place that converts one into the other.
type LoggingConfig struct {
	// MaxSizeMB is the size, in megabytes, at which teamchat.log rotates.
	// 0 disables size-based rotation.
	MaxSizeMB int `mapstructure:"max_size_mb"`

	// MaxBackups is how many rotated log files are kept.
	MaxBackups int `mapstructure:"max_backups"`

	// Compress gzips rotated log files once they're no longer the active one.
	Compress bool `mapstructure:"compress"`

	// RotateDaily additionally rotates teamchat.log whenever the wall-clock
	// UTC day advances, so the process log's backups line up with the
	// per-day shards the engine already uses for its event and dead-letter
	// logs (see internal/store's dateShardOf).
	RotateDaily bool `mapstructure:"rotate_daily"`
}

// SendConfig holds process-level defaults for `send`. The values are
// loaded and validated, but the send, task-assign and task-update commands
// do not read them: they pass only their own flags to the engine, which
// falls back to its built-in ack policy and to no cooldown.
type SendConfig struct {
	// CooldownSeconds is a per-recipient/type/task cooldown default
	// (0 = no cooldown). Not applied by the CLI.
	CooldownSeconds int `mapstructure:"cooldown_seconds"`

	// DefaultAckPolicy holds ack timeout and retry count fallbacks, keyed
	// by message type with a "default" entry. Not applied by the CLI; a
	// team's own config.json ack_policy overrides are what the engine
	// consults.
	DefaultAckPolicy map[string]AckPolicyOverride `mapstructure:"default_ack_policy"`
}

// AckPolicyOverride is a partial {timeout, retries} override. A zero field
// means "don't override this part of the policy."
type AckPolicyOverride struct {
	AckTimeoutSeconds int `mapstructure:"ack_timeout_seconds"`
	MaxRetries        int `mapstructure:"max_retries"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		DataRoot:      "",
		LogLevel:      "info",
		JSON:          false,
		WarnMalformed: false,
		Send: SendConfig{
			CooldownSeconds:  0,
			DefaultAckPolicy: map[string]AckPolicyOverride{},
		},
		Logging: LoggingConfig{
			MaxSizeMB:   10,
			MaxBackups:  3,
			Compress:    false,
			RotateDaily: true,
		},
	}
}

// SetDefaults registers default values with viper.
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("data_root", defaults.DataRoot)
	viper.SetDefault("log_level", defaults.LogLevel)
	viper.SetDefault("json", defaults.JSON)
	viper.SetDefault("warn_malformed", defaults.WarnMalformed)

	viper.SetDefault("send.cooldown_seconds", defaults.Send.CooldownSeconds)
	viper.SetDefault("send.default_ack_policy", defaults.Send.DefaultAckPolicy)

	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
	viper.SetDefault("logging.compress", defaults.Logging.Compress)
	viper.SetDefault("logging.rotate_daily", defaults.Logging.RotateDaily)
}

// Load reads the configuration from viper into a Config struct.
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Get returns the current configuration (convenience function). Falls back
// to defaults if unmarshaling fails, mirroring Get()'s teacher counterpart.
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory, honoring
// XDG_CONFIG_HOME. This is the settings file's home, distinct from the
// engine's data root.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "teamchat")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".teamchat"
	}
	return filepath.Join(home, ".config", "teamchat")
}

// ConfigFile returns the path to the CLI settings file.
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// ValidLogLevels returns the list of valid log level strings.
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// IsValidLogLevel checks if the given log level is valid.
func IsValidLogLevel(level string) bool {
	return slices.Contains(ValidLogLevels(), level)
}
