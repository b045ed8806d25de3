package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func logPathFor(dir string) string {
	return filepath.Join(dir, "teamchat.log")
}

func TestNewLogger(t *testing.T) {
	t.Run("creates log file under data root", func(t *testing.T) {
		dir := t.TempDir()

		logger, err := NewLogger(dir, LevelDebug)
		if err != nil {
			t.Fatalf("NewLogger failed: %v", err)
		}
		defer func() { _ = logger.Close() }()

		logPath := logPathFor(dir)
		if _, err := os.Stat(logPath); os.IsNotExist(err) {
			t.Errorf("log file was not created at %s", logPath)
		}
	})

	t.Run("writes to stderr when dataRoot is empty", func(t *testing.T) {
		logger, err := NewLogger("", LevelInfo)
		if err != nil {
			t.Fatalf("NewLogger failed: %v", err)
		}
		defer func() { _ = logger.Close() }()

		if logger.file != nil {
			t.Error("expected file to be nil when dataRoot is empty")
		}
	})

	t.Run("defaults to INFO level for invalid level string", func(t *testing.T) {
		dir := t.TempDir()

		logger, err := NewLogger(dir, "invalid")
		if err != nil {
			t.Fatalf("NewLogger failed: %v", err)
		}
		defer func() { _ = logger.Close() }()

		if logger.logger == nil {
			t.Error("expected logger to be created")
		}
	})
}

func TestLogLevels(t *testing.T) {
	dir := t.TempDir()

	logger, err := NewLogger(dir, LevelDebug)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	logger.Debug("debug message", "key", "value")
	logger.Info("info message", "key", "value")
	logger.Warn("warn message", "key", "value")
	logger.Error("error message", "key", "value")

	_ = logger.Close()

	content, err := os.ReadFile(logPathFor(dir))
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 log lines, got %d", len(lines))
	}

	expectedLevels := []string{"DEBUG", "INFO", "WARN", "ERROR"}
	expectedMsgs := []string{"debug message", "info message", "warn message", "error message"}

	for i, line := range lines {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Errorf("line %d is not valid JSON: %v", i, err)
			continue
		}

		if entry["level"] != expectedLevels[i] {
			t.Errorf("line %d: expected level %s, got %v", i, expectedLevels[i], entry["level"])
		}
		if entry["msg"] != expectedMsgs[i] {
			t.Errorf("line %d: expected msg %s, got %v", i, expectedMsgs[i], entry["msg"])
		}
		if entry["key"] != "value" {
			t.Errorf("line %d: expected key=value, got key=%v", i, entry["key"])
		}
	}
}

func TestLogLevelFiltering(t *testing.T) {
	dir := t.TempDir()

	logger, err := NewLogger(dir, LevelWarn)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	_ = logger.Close()

	content, err := os.ReadFile(logPathFor(dir))
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines (WARN and ERROR only), got %d: %s", len(lines), string(content))
	}
}

func TestContextPropagation(t *testing.T) {
	dir := t.TempDir()

	logger, err := NewLogger(dir, LevelInfo)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	childLogger := logger.WithTeam("demo").WithAgent("dev").WithOp("send")

	childLogger.Info("test message", "extra", "data")

	_ = logger.Close()

	content, err := os.ReadFile(logPathFor(dir))
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}

	var entry map[string]any
	if err := json.Unmarshal(content, &entry); err != nil {
		t.Fatalf("failed to parse log entry: %v", err)
	}

	if entry["team"] != "demo" {
		t.Errorf("expected team=demo, got %v", entry["team"])
	}
	if entry["agent"] != "dev" {
		t.Errorf("expected agent=dev, got %v", entry["agent"])
	}
	if entry["op"] != "send" {
		t.Errorf("expected op=send, got %v", entry["op"])
	}
	if entry["extra"] != "data" {
		t.Errorf("expected extra=data, got %v", entry["extra"])
	}
}

func TestWith(t *testing.T) {
	dir := t.TempDir()

	logger, err := NewLogger(dir, LevelInfo)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	childLogger := logger.With("foo", "bar", "count", 42)
	childLogger.Info("test message")

	_ = logger.Close()

	content, err := os.ReadFile(logPathFor(dir))
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}

	var entry map[string]any
	if err := json.Unmarshal(content, &entry); err != nil {
		t.Fatalf("failed to parse log entry: %v", err)
	}

	if entry["foo"] != "bar" {
		t.Errorf("expected foo=bar, got %v", entry["foo"])
	}
	if entry["count"] != float64(42) {
		t.Errorf("expected count=42, got %v", entry["count"])
	}
}

func TestNopLogger(t *testing.T) {
	logger := NopLogger()

	logger.Debug("debug")
	logger.Info("info")
	logger.Warn("warn")
	logger.Error("error")

	if err := logger.Close(); err != nil {
		t.Errorf("NopLogger.Close() returned error: %v", err)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"DEBUG", LevelDebug},
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"info", LevelInfo},
		{"WARN", LevelWarn},
		{"warn", LevelWarn},
		{"ERROR", LevelError},
		{"error", LevelError},
		{"invalid", LevelInfo},
		{"", LevelInfo},
	}

	for _, tc := range tests {
		result := ParseLevel(tc.input)
		if result != tc.expected {
			t.Errorf("ParseLevel(%q) = %q, expected %q", tc.input, result, tc.expected)
		}
	}
}

func TestValidLevels(t *testing.T) {
	levels := ValidLevels()

	expected := []string{"DEBUG", "INFO", "WARN", "ERROR"}
	if len(levels) != len(expected) {
		t.Fatalf("expected %d levels, got %d", len(expected), len(levels))
	}

	for i, level := range levels {
		if level != expected[i] {
			t.Errorf("ValidLevels()[%d] = %q, expected %q", i, level, expected[i])
		}
	}
}

func TestClose(t *testing.T) {
	dir := t.TempDir()

	logger, err := NewLogger(dir, LevelInfo)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	logger.Info("test message")

	if err := logger.Close(); err != nil {
		t.Errorf("Close() returned error: %v", err)
	}

	if err := logger.Close(); err != nil {
		t.Errorf("Second Close() returned error: %v", err)
	}

	content, err := os.ReadFile(logPathFor(dir))
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}

	if len(content) == 0 {
		t.Error("log file is empty, expected content")
	}
}

func TestConcurrentWrites(t *testing.T) {
	dir := t.TempDir()

	logger, err := NewLogger(dir, LevelInfo)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	done := make(chan bool, 10)
	for i := 0; i < 10; i++ {
		go func(n int) {
			for j := 0; j < 100; j++ {
				logger.Info("concurrent write", "goroutine", n, "iteration", j)
			}
			done <- true
		}(i)
	}

	for i := 0; i < 10; i++ {
		<-done
	}

	_ = logger.Close()

	content, err := os.ReadFile(logPathFor(dir))
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	if len(lines) != 1000 {
		t.Errorf("expected 1000 log lines, got %d", len(lines))
	}

	for i, line := range lines {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Errorf("line %d is not valid JSON: %v", i, err)
		}
	}
}

func TestNewLoggerInvalidPath(t *testing.T) {
	t.Run("fails with invalid directory path", func(t *testing.T) {
		invalidPath := "/nonexistent\x00directory/logs"

		_, err := NewLogger(invalidPath, LevelInfo)
		if err == nil {
			t.Error("expected error for invalid path containing null byte")
		}
	})

	t.Run("fails when directory creation is not possible", func(t *testing.T) {
		tempDir := t.TempDir()
		filePath := filepath.Join(tempDir, "blocking_file")
		if err := os.WriteFile(filePath, []byte("content"), 0644); err != nil {
			t.Fatalf("failed to create blocking file: %v", err)
		}

		invalidPath := filepath.Join(filePath, "subdir")
		_, err := NewLogger(invalidPath, LevelInfo)
		if err == nil {
			t.Error("expected error when directory creation fails")
		}
	})
}

func TestFilePermissions(t *testing.T) {
	dir := t.TempDir()

	logger, err := NewLogger(dir, LevelInfo)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	defer func() { _ = logger.Close() }()

	info, err := os.Stat(logPathFor(dir))
	if err != nil {
		t.Fatalf("failed to stat log file: %v", err)
	}

	mode := info.Mode()
	if mode.Perm()&0600 != 0600 {
		t.Errorf("log file should be readable/writable by owner, got %o", mode.Perm())
	}
}

func TestLogLevelFilteringINFO(t *testing.T) {
	dir := t.TempDir()

	logger, err := NewLogger(dir, LevelInfo)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	_ = logger.Close()

	content, err := os.ReadFile(logPathFor(dir))
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")

	if len(lines) != 3 {
		t.Fatalf("expected 3 log lines (INFO, WARN, ERROR), got %d: %s", len(lines), string(content))
	}

	expectedLevels := []string{"INFO", "WARN", "ERROR"}
	for i, line := range lines {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Errorf("line %d is not valid JSON: %v", i, err)
			continue
		}
		if entry["level"] != expectedLevels[i] {
			t.Errorf("line %d: expected level %s, got %v", i, expectedLevels[i], entry["level"])
		}
	}
}

func TestLogLevelFilteringERROR(t *testing.T) {
	dir := t.TempDir()

	logger, err := NewLogger(dir, LevelError)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	_ = logger.Close()

	content, err := os.ReadFile(logPathFor(dir))
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")

	if len(lines) != 1 {
		t.Fatalf("expected 1 log line (ERROR only), got %d: %s", len(lines), string(content))
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not valid JSON: %v", err)
	}
	if entry["level"] != "ERROR" {
		t.Errorf("expected level ERROR, got %v", entry["level"])
	}
}

func TestJSONFormatValidation(t *testing.T) {
	dir := t.TempDir()

	logger, err := NewLogger(dir, LevelDebug)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	logger.Info("test message",
		"string_key", "string_value",
		"int_key", 42,
		"float_key", 3.14,
		"bool_key", true,
		"nil_key", nil,
	)

	_ = logger.Close()

	content, err := os.ReadFile(logPathFor(dir))
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}

	var entry map[string]any
	if err := json.Unmarshal(content, &entry); err != nil {
		t.Fatalf("failed to parse JSON log entry: %v", err)
	}

	if _, ok := entry["time"]; !ok {
		t.Error("JSON log entry missing 'time' field")
	}
	if _, ok := entry["level"]; !ok {
		t.Error("JSON log entry missing 'level' field")
	}
	if _, ok := entry["msg"]; !ok {
		t.Error("JSON log entry missing 'msg' field")
	}

	if entry["string_key"] != "string_value" {
		t.Errorf("string_key = %v, want 'string_value'", entry["string_key"])
	}
	if entry["int_key"] != float64(42) {
		t.Errorf("int_key = %v, want 42", entry["int_key"])
	}
	if entry["float_key"] != 3.14 {
		t.Errorf("float_key = %v, want 3.14", entry["float_key"])
	}
	if entry["bool_key"] != true {
		t.Errorf("bool_key = %v, want true", entry["bool_key"])
	}
	if entry["nil_key"] != nil {
		t.Errorf("nil_key = %v, want nil", entry["nil_key"])
	}
}

func TestWithEmptyArgs(t *testing.T) {
	dir := t.TempDir()

	logger, err := NewLogger(dir, LevelInfo)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	sameLogger := logger.With()

	sameLogger.Info("test message")
	_ = logger.Close()

	content, err := os.ReadFile(logPathFor(dir))
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}

	if len(content) == 0 {
		t.Error("log file is empty")
	}
}

func TestWithNonStringKey(t *testing.T) {
	dir := t.TempDir()

	logger, err := NewLogger(dir, LevelInfo)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	childLogger := logger.With(42, "value", "valid_key", "valid_value")

	childLogger.Info("test message")
	_ = logger.Close()

	content, err := os.ReadFile(logPathFor(dir))
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}

	var entry map[string]any
	if err := json.Unmarshal(content, &entry); err != nil {
		t.Fatalf("failed to parse log entry: %v", err)
	}

	if entry["valid_key"] != "valid_value" {
		t.Errorf("expected valid_key=valid_value, got %v", entry["valid_key"])
	}
}

func TestChildLoggerInheritance(t *testing.T) {
	dir := t.TempDir()

	logger, err := NewLogger(dir, LevelInfo)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	child1 := logger.WithTeam("demo")
	child2 := child1.WithAgent("dev")
	child3 := child2.WithOp("send")

	child3.Info("test message", "extra", "data")

	logger.Info("parent message")

	_ = logger.Close()

	content, err := os.ReadFile(logPathFor(dir))
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d", len(lines))
	}

	var child3Entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &child3Entry); err != nil {
		t.Fatalf("failed to parse child3 log entry: %v", err)
	}

	if child3Entry["team"] != "demo" {
		t.Errorf("child3 missing team")
	}
	if child3Entry["agent"] != "dev" {
		t.Errorf("child3 missing agent")
	}
	if child3Entry["op"] != "send" {
		t.Errorf("child3 missing op")
	}

	var parentEntry map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &parentEntry); err != nil {
		t.Fatalf("failed to parse parent log entry: %v", err)
	}

	if _, ok := parentEntry["team"]; ok {
		t.Error("parent should not have team")
	}
	if _, ok := parentEntry["agent"]; ok {
		t.Error("parent should not have agent")
	}
	if _, ok := parentEntry["op"]; ok {
		t.Error("parent should not have op")
	}
}

func TestConcurrentChildLoggers(t *testing.T) {
	dir := t.TempDir()

	logger, err := NewLogger(dir, LevelInfo)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	done := make(chan bool, 5)
	for i := 0; i < 5; i++ {
		go func(n int) {
			childLogger := logger.WithAgent(string(rune('A' + n)))
			for j := 0; j < 20; j++ {
				childLogger.Info("message", "iteration", j)
			}
			done <- true
		}(i)
	}

	for i := 0; i < 5; i++ {
		<-done
	}

	_ = logger.Close()

	content, err := os.ReadFile(logPathFor(dir))
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	if len(lines) != 100 {
		t.Errorf("expected 100 log lines, got %d", len(lines))
	}

	for i, line := range lines {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Errorf("line %d is not valid JSON: %v", i, err)
			continue
		}
		if _, ok := entry["agent"]; !ok {
			t.Errorf("line %d missing agent", i)
		}
	}
}

func TestDirectoryCreation(t *testing.T) {
	tempDir := t.TempDir()
	nestedRoot := filepath.Join(tempDir, "nested", "deep", "directory")

	logger, err := NewLogger(nestedRoot, LevelInfo)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	defer func() { _ = logger.Close() }()

	info, err := os.Stat(nestedRoot)
	if err != nil {
		t.Fatalf("nested directory was not created: %v", err)
	}
	if !info.IsDir() {
		t.Error("expected directory, got file")
	}

	if _, err := os.Stat(logPathFor(nestedRoot)); os.IsNotExist(err) {
		t.Errorf("log file was not created at %s", logPathFor(nestedRoot))
	}
}

func TestAppendToExistingLog(t *testing.T) {
	dir := t.TempDir()

	logger1, err := NewLogger(dir, LevelInfo)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	logger1.Info("first message")
	_ = logger1.Close()

	logger2, err := NewLogger(dir, LevelInfo)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	logger2.Info("second message")
	_ = logger2.Close()

	content, err := os.ReadFile(logPathFor(dir))
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d", len(lines))
	}

	var entry1, entry2 map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry1); err != nil {
		t.Fatalf("failed to parse first log entry: %v", err)
	}
	if err := json.Unmarshal([]byte(lines[1]), &entry2); err != nil {
		t.Fatalf("failed to parse second log entry: %v", err)
	}

	if entry1["msg"] != "first message" {
		t.Errorf("first message = %v, want 'first message'", entry1["msg"])
	}
	if entry2["msg"] != "second message" {
		t.Errorf("second message = %v, want 'second message'", entry2["msg"])
	}
}
