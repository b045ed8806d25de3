// Package logging provides structured logging for the teamchat engine.
// This file contains utilities for aggregating and exporting logs
// for post-hoc debugging and analysis.
package logging

import (
	"bufio"
	"compress/gzip"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// LogEntry represents a parsed log entry with all structured fields.
type LogEntry struct {
	Timestamp time.Time      `json:"time"`
	Level     string         `json:"level"`
	Message   string         `json:"msg"`
	Team      string         `json:"team,omitempty"`
	Agent     string         `json:"agent,omitempty"`
	Op        string         `json:"op,omitempty"`
	Attrs     map[string]any `json:"attrs,omitempty"`
}

// LogFilter defines criteria for filtering log entries.
type LogFilter struct {
	// Level filters to entries at or above this level (DEBUG < INFO < WARN < ERROR)
	// Empty string means no level filtering.
	Level string

	// StartTime filters to entries at or after this time.
	// Zero value means no start time filtering.
	StartTime time.Time

	// EndTime filters to entries at or before this time.
	// Zero value means no end time filtering.
	EndTime time.Time

	// Agent filters to entries from this specific agent.
	// Empty string means no agent filtering.
	Agent string

	// Op filters to entries from this specific operation.
	// Empty string means no op filtering.
	Op string

	// Team filters to entries from this specific team.
	// Empty string means no team filtering.
	Team string

	// MessageContains filters to entries whose message contains this substring.
	// Empty string means no message filtering.
	MessageContains string
}

// levelOrder defines the ordering of log levels for filtering.
var levelOrder = map[string]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// AggregateLogs reads and parses all log entries from a data root.
// It reads {dataRoot}/teamchat.log plus any rotated backups a RotatingWriter
// has produced alongside it (teamchat.log.1, .2, ..., and their .gz forms),
// so a backup that has already rolled off the live file still shows up in
// aggregation and export. Entries are returned sorted by timestamp ascending.
func AggregateLogs(dataRoot string) ([]LogEntry, error) {
	logPath := filepath.Join(dataRoot, "teamchat.log")

	paths, err := logFileSet(logPath)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no log file found under data root: %s", logPath)
	}

	var entries []LogEntry
	for _, path := range paths {
		lines, err := readLogLines(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read log file %s: %w", path, err)
		}
		for _, line := range lines {
			if strings.TrimSpace(line) == "" {
				continue
			}
			entry, err := parseLogEntry(line)
			if err != nil {
				// Malformed lines are skipped so a single corrupted line
				// doesn't prevent aggregation of the rest of the log.
				continue
			}
			entries = append(entries, entry)
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Timestamp.Before(entries[j].Timestamp)
	})

	return entries, nil
}

// logFileSet returns the live log file (if present) followed by its rotated
// backups (teamchat.log.1[.gz] .. teamchat.log.N[.gz]). Callers sort entries
// by timestamp afterward, so this only needs to cover every file that might
// hold entries, not return them in any particular order.
func logFileSet(logPath string) ([]string, error) {
	var paths []string
	if _, err := os.Stat(logPath); err == nil {
		paths = append(paths, logPath)
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to stat log file: %w", err)
	}

	matches, err := filepath.Glob(logPath + ".*")
	if err != nil {
		return nil, fmt.Errorf("failed to glob rotated log backups: %w", err)
	}
	sort.Strings(matches)
	paths = append(paths, matches...)

	return paths, nil
}

// readLogLines returns every line of a log file, empty ones included, transparently
// decompressing it first if it's a gzip-compressed rotated backup.
func readLogLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	var r io.Reader = file
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(file)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip backup: %w", err)
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}

	var lines []string
	scanner := bufio.NewScanner(r)

	const maxScanTokenSize = 1024 * 1024 // 1MB
	buf := make([]byte, maxScanTokenSize)
	scanner.Buffer(buf, maxScanTokenSize)

	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// parseLogEntry parses a single JSON log line into a LogEntry.
func parseLogEntry(line string) (LogEntry, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return LogEntry{}, fmt.Errorf("invalid JSON: %w", err)
	}

	entry := LogEntry{
		Attrs: make(map[string]any),
	}

	if timeStr, ok := raw["time"].(string); ok {
		if t, err := time.Parse(time.RFC3339Nano, timeStr); err == nil {
			entry.Timestamp = t
		}
	}

	if level, ok := raw["level"].(string); ok {
		entry.Level = level
	}

	if msg, ok := raw["msg"].(string); ok {
		entry.Message = msg
	}

	if team, ok := raw["team"].(string); ok {
		entry.Team = team
	}

	if agent, ok := raw["agent"].(string); ok {
		entry.Agent = agent
	}

	if op, ok := raw["op"].(string); ok {
		entry.Op = op
	}

	standardFields := map[string]bool{
		"time":  true,
		"level": true,
		"msg":   true,
		"team":  true,
		"agent": true,
		"op":    true,
	}

	for k, v := range raw {
		if !standardFields[k] {
			entry.Attrs[k] = v
		}
	}

	return entry, nil
}

// FilterLogs filters log entries based on the provided filter criteria.
// Multiple filter criteria are combined with AND logic.
func FilterLogs(entries []LogEntry, filter LogFilter) []LogEntry {
	if isEmptyFilter(filter) {
		return entries
	}

	var filtered []LogEntry
	for _, entry := range entries {
		if matchesFilter(entry, filter) {
			filtered = append(filtered, entry)
		}
	}

	return filtered
}

// isEmptyFilter checks if no filter criteria are set.
func isEmptyFilter(f LogFilter) bool {
	return f.Level == "" &&
		f.StartTime.IsZero() &&
		f.EndTime.IsZero() &&
		f.Agent == "" &&
		f.Op == "" &&
		f.Team == "" &&
		f.MessageContains == ""
}

// matchesFilter checks if an entry matches all filter criteria.
func matchesFilter(entry LogEntry, filter LogFilter) bool {
	if filter.Level != "" {
		filterLevelOrder, filterOk := levelOrder[strings.ToUpper(filter.Level)]
		entryLevelOrder, entryOk := levelOrder[entry.Level]
		if filterOk && entryOk && entryLevelOrder < filterLevelOrder {
			return false
		}
	}

	if !filter.StartTime.IsZero() && entry.Timestamp.Before(filter.StartTime) {
		return false
	}
	if !filter.EndTime.IsZero() && entry.Timestamp.After(filter.EndTime) {
		return false
	}

	if filter.Agent != "" && entry.Agent != filter.Agent {
		return false
	}

	if filter.Op != "" && entry.Op != filter.Op {
		return false
	}

	if filter.Team != "" && entry.Team != filter.Team {
		return false
	}

	if filter.MessageContains != "" && !strings.Contains(entry.Message, filter.MessageContains) {
		return false
	}

	return true
}

// ExportLogs exports log entries to a file in the specified format.
// Supported formats: "json", "text", "csv".
func ExportLogs(dataRoot, outputPath string, format string) error {
	entries, err := AggregateLogs(dataRoot)
	if err != nil {
		return fmt.Errorf("failed to aggregate logs: %w", err)
	}

	return ExportLogEntries(entries, outputPath, format)
}

// ExportLogEntries exports the given log entries to a file in the specified format.
// This allows exporting filtered logs that have already been aggregated.
// Supported formats: "json", "text", "csv".
func ExportLogEntries(entries []LogEntry, outputPath string, format string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	switch strings.ToLower(format) {
	case "json":
		return exportJSON(file, entries)
	case "text":
		return exportText(file, entries)
	case "csv":
		return exportCSV(file, entries)
	default:
		return fmt.Errorf("unsupported export format: %s (supported: json, text, csv)", format)
	}
}

// exportJSON writes entries as a JSON array.
func exportJSON(file *os.File, entries []LogEntry) error {
	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(entries)
}

// exportText writes entries in a human-readable text format.
func exportText(file *os.File, entries []LogEntry) error {
	for _, entry := range entries {
		var parts []string

		ts := entry.Timestamp.Format("2006-01-02 15:04:05.000")
		parts = append(parts, fmt.Sprintf("[%s]", ts))
		parts = append(parts, entry.Level)
		parts = append(parts, "-", entry.Message)

		var context []string
		if entry.Team != "" {
			context = append(context, fmt.Sprintf("team=%s", entry.Team))
		}
		if entry.Agent != "" {
			context = append(context, fmt.Sprintf("agent=%s", entry.Agent))
		}
		if entry.Op != "" {
			context = append(context, fmt.Sprintf("op=%s", entry.Op))
		}
		if len(context) > 0 {
			parts = append(parts, fmt.Sprintf("(%s)", strings.Join(context, ", ")))
		}

		if len(entry.Attrs) > 0 {
			attrsJSON, _ := json.Marshal(entry.Attrs)
			parts = append(parts, string(attrsJSON))
		}

		line := strings.Join(parts, " ") + "\n"
		if _, err := file.WriteString(line); err != nil {
			return fmt.Errorf("failed to write text entry: %w", err)
		}
	}

	return nil
}

// exportCSV writes entries as CSV with headers.
func exportCSV(file *os.File, entries []LogEntry) error {
	writer := csv.NewWriter(file)
	defer writer.Flush()

	headers := []string{"timestamp", "level", "message", "team", "agent", "op", "attrs"}
	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, entry := range entries {
		attrsJSON := ""
		if len(entry.Attrs) > 0 {
			if b, err := json.Marshal(entry.Attrs); err == nil {
				attrsJSON = string(b)
			}
		}

		record := []string{
			entry.Timestamp.Format(time.RFC3339Nano),
			entry.Level,
			entry.Message,
			entry.Team,
			entry.Agent,
			entry.Op,
			attrsJSON,
		}

		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	return nil
}
