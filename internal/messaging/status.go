package messaging

import (
	"strings"
	"time"

	"github.com/fractalmind/teamchat-go/internal/diagnostics"
	"github.com/fractalmind/teamchat-go/internal/envelope"
	"github.com/fractalmind/teamchat-go/internal/store"
)

// StatusResult is a team-wide health snapshot.
type StatusResult struct {
	Team           string                               `json:"team"`
	Members        []string                             `json:"members"`
	UnreadCounts   map[string]int                       `json:"unread_counts"`
	TaskCount      int                                  `json:"task_count"`
	BlockedTasks   []store.TaskSnapshot                 `json:"blocked_tasks"`
	StaleTasks     []store.TaskSnapshot                 `json:"stale_tasks"`
	StaleMessages  []envelope.Envelope                  `json:"stale_messages"`
	MalformedJSONL map[string]diagnostics.MalformedStat `json:"malformed_jsonl"`
}

// Status enumerates agents from inbox filenames, computes unread counts,
// reads all task snapshots, and flags blocked/stale tasks and stale
// unacked messages relative to staleMinutes.
func (s *Service) Status(team string, staleMinutes int) (StatusResult, error) {
	if staleMinutes <= 0 {
		staleMinutes = 90
	}
	st, err := s.openTeam(team)
	if err != nil {
		return StatusResult{}, err
	}

	members, err := st.ListAgents()
	if err != nil {
		return StatusResult{}, err
	}

	unreadCounts := map[string]int{}
	for _, agent := range members {
		count, err := st.UnreadCount(agent)
		if err != nil {
			return StatusResult{}, err
		}
		unreadCounts[agent] = count
	}

	snapshots, err := st.ListTaskSnapshots()
	if err != nil {
		return StatusResult{}, err
	}

	staleWindow := time.Duration(staleMinutes) * time.Minute
	now := time.Now().UTC()

	var blocked, stale []store.TaskSnapshot
	for _, snap := range snapshots {
		if strings.EqualFold(snap.Status, "blocked") || snap.Blocked {
			blocked = append(blocked, snap)
		}
		if snap.UpdatedAt != "" {
			if updated, err := envelope.ParseUTC(snap.UpdatedAt); err == nil {
				if now.Sub(updated) > staleWindow {
					stale = append(stale, snap)
				}
			}
		}
	}

	staleMessages, err := st.StaleUnreadMessages(staleMinutes * 60)
	if err != nil {
		return StatusResult{}, err
	}

	malformedRaw, err := st.ScanMalformed()
	if err != nil {
		return StatusResult{}, err
	}

	return StatusResult{
		Team: team, Members: members, UnreadCounts: unreadCounts, TaskCount: len(snapshots),
		BlockedTasks: blocked, StaleTasks: stale, StaleMessages: staleMessages,
		MalformedJSONL: diagnostics.AggregateMalformed(malformedRaw),
	}, nil
}
