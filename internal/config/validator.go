package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a single validation failure.
type ValidationError struct {
	Field   string // The config field path (e.g., "send.cooldown_seconds")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError.
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// Validate checks the Config for invalid values and returns all validation
// errors found.
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateLogLevel()...)
	errors = append(errors, c.validateSend()...)
	errors = append(errors, c.validateLogging()...)

	return errors
}

// validateLogLevel validates the LogLevel field.
func (c *Config) validateLogLevel() []ValidationError {
	var errors []ValidationError

	if c.LogLevel != "" && !IsValidLogLevel(c.LogLevel) {
		errors = append(errors, ValidationError{
			Field:   "log_level",
			Value:   c.LogLevel,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	return errors
}

// validateLogging validates the LoggingConfig.
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if c.Logging.MaxSizeMB < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must be non-negative (0 disables size-based rotation)",
		})
	}
	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}

	return errors
}

// validateSend validates the SendConfig.
func (c *Config) validateSend() []ValidationError {
	var errors []ValidationError

	if c.Send.CooldownSeconds < 0 {
		errors = append(errors, ValidationError{
			Field:   "send.cooldown_seconds",
			Value:   c.Send.CooldownSeconds,
			Message: "must be non-negative",
		})
	}

	for msgType, override := range c.Send.DefaultAckPolicy {
		field := fmt.Sprintf("send.default_ack_policy.%s", msgType)

		if override.AckTimeoutSeconds < 0 {
			errors = append(errors, ValidationError{
				Field:   field + ".ack_timeout_seconds",
				Value:   override.AckTimeoutSeconds,
				Message: "must be non-negative",
			})
		}
		if override.MaxRetries < 0 {
			errors = append(errors, ValidationError{
				Field:   field + ".max_retries",
				Value:   override.MaxRetries,
				Message: "must be non-negative",
			})
		}
	}

	return errors
}
