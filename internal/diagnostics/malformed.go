// Package diagnostics aggregates malformed-JSONL counters and runs the
// doctor_check battery against a team's store.
package diagnostics

import (
	"fmt"
	"os"

	"github.com/fractalmind/teamchat-go/internal/fsutil"
)

// MalformedStat summarizes the malformed lines observed in one file.
type MalformedStat struct {
	Path           string `json:"path"`
	Count          int    `json:"count"`
	LastLineNumber int    `json:"last_line_number"`
	LastReason     string `json:"last_reason"`
}

// AggregateMalformed groups raw fsutil.MalformedLine records by path. If
// TEAM_CHAT_WARN_MALFORMED=1 is set, it writes one human-readable warning
// per distinct path to stderr.
func AggregateMalformed(lines []fsutil.MalformedLine) map[string]MalformedStat {
	stats := map[string]MalformedStat{}
	warn := os.Getenv("TEAM_CHAT_WARN_MALFORMED") == "1"
	warned := map[string]bool{}

	for _, l := range lines {
		s := stats[l.Path]
		s.Path = l.Path
		s.Count++
		s.LastLineNumber = l.LineNumber
		s.LastReason = l.Reason
		stats[l.Path] = s

		if warn && !warned[l.Path] {
			fmt.Fprintf(os.Stderr, "warning: malformed line %d in %s: %s\n", l.LineNumber, l.Path, l.Reason)
			warned[l.Path] = true
		}
	}
	return stats
}
