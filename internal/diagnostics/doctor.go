package diagnostics

import (
	"github.com/fractalmind/teamchat-go/internal/envelope"
	"github.com/fractalmind/teamchat-go/internal/store"
)

const (
	StatusHealthy   = "healthy"
	StatusWarn      = "warn"
	StatusUnhealthy = "unhealthy"
)

// CheckResult is the outcome of one named doctor check.
type CheckResult struct {
	Name    string         `json:"name"`
	Status  string         `json:"status"`
	Summary string         `json:"summary"`
	Details map[string]any `json:"details"`
}

// Report is the full doctor_check output for one team.
type Report struct {
	Team            string         `json:"team"`
	OverallStatus   string         `json:"overall_status"`
	GeneratedAt     string         `json:"generated_at"`
	ExitCode        int            `json:"exit_code"`
	Checks          []CheckResult  `json:"checks"`
	Stats           map[string]any `json:"stats"`
	Recommendations []string       `json:"recommendations"`
}

func worstOf(a, b string) string {
	rank := map[string]int{StatusHealthy: 0, StatusWarn: 1, StatusUnhealthy: 2}
	if rank[b] > rank[a] {
		return b
	}
	return a
}

func exitCodeFor(status string) int {
	switch status {
	case StatusHealthy:
		return 0
	case StatusWarn:
		return 1
	default:
		return 2
	}
}

// RunDoctorChecks runs the fixed battery of named checks against st.
func RunDoctorChecks(st *store.Store, sampleSize int) (Report, error) {
	checks := []CheckResult{}

	indexIntegrity, err := checkIndexIntegrity(st)
	if err != nil {
		return Report{}, err
	}
	checks = append(checks, indexIntegrity)

	malformedCheck, malformedStats, err := checkMalformedJSONL(st)
	if err != nil {
		return Report{}, err
	}
	checks = append(checks, malformedCheck)

	snapshotCheck, err := checkSnapshotMonotonicity(st)
	if err != nil {
		return Report{}, err
	}
	checks = append(checks, snapshotCheck)

	sampleCheck, err := checkIndexInboxSampleConsistency(st, sampleSize)
	if err != nil {
		return Report{}, err
	}
	checks = append(checks, sampleCheck)

	ackCheck, err := checkAckIndexConsistency(st)
	if err != nil {
		return Report{}, err
	}
	checks = append(checks, ackCheck)

	overall := StatusHealthy
	var recommendations []string
	for _, c := range checks {
		overall = worstOf(overall, c.Status)
		if c.Status != StatusHealthy {
			recommendations = append(recommendations, "run rehydrate to restore "+c.Name)
		}
	}

	return Report{
		Team:          st.Team(),
		OverallStatus: overall,
		GeneratedAt:   envelope.NowUTC(),
		ExitCode:      exitCodeFor(overall),
		Checks:        checks,
		Stats: map[string]any{
			"malformed_jsonl": malformedStats,
		},
		Recommendations: recommendations,
	}, nil
}

func checkIndexIntegrity(st *store.Store) (CheckResult, error) {
	entries, err := st.AllMessageIndexEntries()
	if err != nil {
		return CheckResult{}, err
	}

	broken := 0
	for id, entry := range entries {
		if entry.Offset == nil {
			continue
		}
		env, err := st.InboxLineAt(entry.Inbox, *entry.Offset)
		if err != nil || env == nil || env.ID != id {
			broken++
		}
	}

	status := StatusHealthy
	summary := "all indexed offsets agree with their inbox lines"
	if broken > 0 {
		status = StatusUnhealthy
		summary = "some indexed offsets no longer match their inbox lines"
	}
	return CheckResult{
		Name: "index_integrity", Status: status, Summary: summary,
		Details: map[string]any{"checked": len(entries), "broken": broken},
	}, nil
}

func checkMalformedJSONL(st *store.Store) (CheckResult, map[string]MalformedStat, error) {
	raw, err := st.ScanMalformed()
	if err != nil {
		return CheckResult{}, nil, err
	}
	stats := AggregateMalformed(raw)

	status := StatusHealthy
	if len(stats) > 0 {
		status = StatusWarn
	}
	return CheckResult{
		Name: "malformed_jsonl", Status: status,
		Summary: "malformed line counters across inboxes and events",
		Details: map[string]any{"files_with_malformed_lines": len(stats)},
	}, stats, nil
}

func checkSnapshotMonotonicity(st *store.Store) (CheckResult, error) {
	snaps, err := st.ListTaskSnapshots()
	if err != nil {
		return CheckResult{}, err
	}

	violations := 0
	for _, snap := range snaps {
		if snap.CreatedAt == "" || snap.UpdatedAt == "" {
			continue
		}
		created, err1 := envelope.ParseUTC(snap.CreatedAt)
		updated, err2 := envelope.ParseUTC(snap.UpdatedAt)
		if err1 != nil || err2 != nil {
			continue
		}
		if updated.Before(created) {
			violations++
		}
	}

	status := StatusHealthy
	if violations > 0 {
		status = StatusUnhealthy
	}
	return CheckResult{
		Name: "snapshot_monotonicity", Status: status,
		Summary: "task snapshot updated_at must never precede created_at",
		Details: map[string]any{"checked": len(snaps), "violations": violations},
	}, nil
}

func checkIndexInboxSampleConsistency(st *store.Store, sampleSize int) (CheckResult, error) {
	if sampleSize <= 0 {
		sampleSize = 100
	}
	agents, err := st.ListAgents()
	if err != nil {
		return CheckResult{}, err
	}

	sampled := 0
	missing := 0
	err = st.ScanAllInboxes(func(_ string, _ int64, env envelope.Envelope) error {
		if sampled >= sampleSize {
			return nil
		}
		sampled++
		got, err := st.GetMessage(env.ID)
		if err != nil {
			return err
		}
		if got == nil {
			missing++
		}
		return nil
	})
	if err != nil {
		return CheckResult{}, err
	}

	status := StatusHealthy
	if missing > 0 {
		status = StatusWarn
	}
	return CheckResult{
		Name: "index_inbox_sample_consistency", Status: status,
		Summary: "sampled inbox ids must resolve through the message index",
		Details: map[string]any{"agents": len(agents), "sampled": sampled, "missing": missing},
	}, nil
}

func checkAckIndexConsistency(st *store.Store) (CheckResult, error) {
	acks, err := st.AllAcks()
	if err != nil {
		return CheckResult{}, err
	}

	events, err := st.IterEvents()
	if err != nil {
		return CheckResult{}, err
	}
	ackedEvents := map[string]bool{}
	for _, evt := range events {
		if evt.Kind != "message_acked" {
			continue
		}
		if id, ok := evt.Payload["message_id"].(string); ok {
			ackedEvents[id] = true
		}
	}

	missingMessage := 0
	missingEvent := 0
	for id := range acks {
		env, err := st.GetMessage(id)
		if err != nil {
			return CheckResult{}, err
		}
		if env == nil {
			missingMessage++
		}
		if !ackedEvents[id] {
			missingEvent++
		}
	}

	status := StatusHealthy
	if missingMessage > 0 || missingEvent > 0 {
		status = StatusUnhealthy
	}
	return CheckResult{
		Name: "ack_index_consistency", Status: status,
		Summary: "every ack must reference a known message and a message_acked event",
		Details: map[string]any{"acks": len(acks), "missing_message": missingMessage, "missing_event": missingEvent},
	}, nil
}
