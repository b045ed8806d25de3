package config

import (
	"strings"
	"testing"
)

func TestValidationError_Error(t *testing.T) {
	err := ValidationError{
		Field:   "log_level",
		Value:   "verbose",
		Message: "must be one of: debug, info, warn, error",
	}

	got := err.Error()
	want := "log_level: must be one of: debug, info, warn, error (got: verbose)"
	if got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestValidationErrors_Error(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		var errs ValidationErrors
		if got := errs.Error(); got != "" {
			t.Errorf("Error() = %q, want empty string", got)
		}
	})

	t.Run("single error", func(t *testing.T) {
		errs := ValidationErrors{
			{Field: "log_level", Value: "x", Message: "bad"},
		}
		got := errs.Error()
		want := "log_level: bad (got: x)"
		if got != want {
			t.Errorf("Error() = %q, want %q", got, want)
		}
	})

	t.Run("multiple errors", func(t *testing.T) {
		errs := ValidationErrors{
			{Field: "log_level", Value: "x", Message: "bad"},
			{Field: "send.cooldown_seconds", Value: -1, Message: "must be non-negative"},
		}
		got := errs.Error()
		if !strings.Contains(got, "2 validation errors:") {
			t.Errorf("Error() = %q, expected a count header", got)
		}
		if !strings.Contains(got, "1. log_level") || !strings.Contains(got, "2. send.cooldown_seconds") {
			t.Errorf("Error() = %q, expected numbered entries", got)
		}
	})
}

func TestConfig_Validate_Valid(t *testing.T) {
	cfg := Default()
	errs := cfg.Validate()
	if len(errs) != 0 {
		t.Errorf("Validate() on default config = %v, want no errors", errs)
	}
}

func TestConfig_Validate_LogLevel(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		wantErr bool
	}{
		{"empty is valid (unset)", "", false},
		{"debug", "debug", false},
		{"info", "info", false},
		{"warn", "warn", false},
		{"error", "error", false},
		{"invalid", "verbose", true},
		{"case sensitive", "DEBUG", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.LogLevel = tt.level
			errs := cfg.Validate()

			hasLogLevelErr := false
			for _, e := range errs {
				if e.Field == "log_level" {
					hasLogLevelErr = true
				}
			}
			if hasLogLevelErr != tt.wantErr {
				t.Errorf("Validate() log_level error presence = %v, want %v (errs: %v)", hasLogLevelErr, tt.wantErr, errs)
			}
		})
	}
}

func TestConfig_Validate_SendCooldown(t *testing.T) {
	cfg := Default()
	cfg.Send.CooldownSeconds = -5

	errs := cfg.Validate()
	found := false
	for _, e := range errs {
		if e.Field == "send.cooldown_seconds" {
			found = true
		}
	}
	if !found {
		t.Errorf("Validate() should flag negative cooldown_seconds, got %v", errs)
	}
}

func TestConfig_Validate_SendAckPolicyOverrides(t *testing.T) {
	cfg := Default()
	cfg.Send.DefaultAckPolicy = map[string]AckPolicyOverride{
		"decision_required": {AckTimeoutSeconds: -1, MaxRetries: -2},
	}

	errs := cfg.Validate()
	if len(errs) != 2 {
		t.Fatalf("Validate() = %v, want 2 errors for negative ack timeout and retries", errs)
	}

	wantFields := map[string]bool{
		"send.default_ack_policy.decision_required.ack_timeout_seconds": false,
		"send.default_ack_policy.decision_required.max_retries":         false,
	}
	for _, e := range errs {
		if _, ok := wantFields[e.Field]; ok {
			wantFields[e.Field] = true
		}
	}
	for field, seen := range wantFields {
		if !seen {
			t.Errorf("expected a validation error for field %q", field)
		}
	}
}

func TestConfig_Validate_LoggingRotation(t *testing.T) {
	cfg := Default()
	cfg.Logging.MaxSizeMB = -1
	cfg.Logging.MaxBackups = -1

	errs := cfg.Validate()
	wantFields := map[string]bool{
		"logging.max_size_mb": false,
		"logging.max_backups": false,
	}
	for _, e := range errs {
		if _, ok := wantFields[e.Field]; ok {
			wantFields[e.Field] = true
		}
	}
	for field, seen := range wantFields {
		if !seen {
			t.Errorf("expected a validation error for field %q, got %v", field, errs)
		}
	}
}

func TestConfig_Validate_MultipleErrors(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "bogus"
	cfg.Send.CooldownSeconds = -1

	errs := cfg.Validate()
	if len(errs) != 2 {
		t.Errorf("Validate() = %v, want 2 errors", errs)
	}
}
