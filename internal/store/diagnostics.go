package store

import (
	"encoding/json"
	"path/filepath"

	"github.com/fractalmind/teamchat-go/internal/fsutil"
)

// ScanMalformed scans every inbox and event log file in this team, silently
// skipping records that fail to parse while recording one fsutil.MalformedLine
// per bad line. Used by status and doctor_check to surface malformed-JSONL
// diagnostics without disturbing the normal read paths.
func (s *Store) ScanMalformed() ([]fsutil.MalformedLine, error) {
	var malformed []fsutil.MalformedLine
	onMalformed := func(m fsutil.MalformedLine) { malformed = append(malformed, m) }

	agents, err := s.ListAgents()
	if err != nil {
		return nil, err
	}
	for _, agent := range agents {
		if err := fsutil.ScanJSONL(s.inboxPath(agent), discardLine, onMalformed); err != nil {
			return nil, err
		}
	}

	files, err := s.eventLogFiles()
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		if err := fsutil.ScanJSONL(filepath.Join(s.eventsDir(), f), discardLine, onMalformed); err != nil {
			return nil, err
		}
	}

	return malformed, nil
}

func discardLine(line []byte) error {
	var v map[string]any
	return json.Unmarshal(line, &v)
}
