package messaging

import (
	"sort"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/fractalmind/teamchat-go/internal/envelope"
	"github.com/fractalmind/teamchat-go/internal/identifier"
	"github.com/fractalmind/teamchat-go/internal/store"
)

// RehydrateResult reports how many records were rebuilt.
type RehydrateResult struct {
	Team      string `json:"team"`
	Messages  int    `json:"messages"`
	Events    int    `json:"events"`
	Acks      int    `json:"acks"`
	TaskCount int    `json:"task_count"`
}

// Rehydrate rebuilds the message, event, ack, and task-snapshot indexes
// from the authoritative inbox and event logs, scanning each agent's
// inbox concurrently (bounded by a worker pool), and replaces all derived
// state atomically.
func (s *Service) Rehydrate(team string) (RehydrateResult, error) {
	st, err := s.openTeam(team)
	if err != nil {
		return RehydrateResult{}, err
	}

	agents, err := st.ListAgents()
	if err != nil {
		return RehydrateResult{}, err
	}

	var mu sync.Mutex
	messageIndex := map[string]store.MessageIndexEntry{}
	var taskEnvelopes []envelope.Envelope

	p := pool.New().WithMaxGoroutines(8).WithErrors()
	for _, agent := range agents {
		agent := agent
		p.Go(func() error {
			return scanInboxForRehydrate(st, agent, &mu, messageIndex, &taskEnvelopes)
		})
	}
	if err := p.Wait(); err != nil {
		return RehydrateResult{}, err
	}

	// Inbox scans finish in whatever order the worker pool schedules them,
	// so task-touching envelopes must be folded in a fixed order rather than
	// goroutine-completion order, or two rehydrates of the same data could
	// fold a later task_update before an earlier task_assign and produce
	// different snapshots. Break ties on id, matching trace's tie-break.
	sort.Slice(taskEnvelopes, func(i, j int) bool {
		if taskEnvelopes[i].CreatedAt != taskEnvelopes[j].CreatedAt {
			return taskEnvelopes[i].CreatedAt < taskEnvelopes[j].CreatedAt
		}
		return taskEnvelopes[i].ID < taskEnvelopes[j].ID
	})
	taskState := map[string]store.TaskSnapshot{}
	for _, env := range taskEnvelopes {
		prev := taskState[env.TaskID]
		var prevPtr *store.TaskSnapshot
		if prev.TaskID != "" {
			prevPtr = &prev
		}
		taskState[env.TaskID] = store.DeriveTaskSnapshot(prevPtr, env)
	}

	eventIndex := map[string]store.EventIndexEntry{}
	ackIndex := map[string]store.AckIndexEntry{}
	var eventCount int
	err = st.ScanAllEvents(func(file string, evt envelope.Event) error {
		eventCount++
		eventIndex[evt.ID] = store.EventIndexEntry{File: file, CreatedAt: evt.CreatedAt}
		if evt.Kind == "message_acked" {
			messageID, _ := evt.Payload["message_id"].(string)
			agent, _ := evt.Payload["agent"].(string)
			if messageID != "" {
				ackIndex[messageID] = store.AckIndexEntry{MessageID: messageID, Agent: agent, AckedAt: evt.CreatedAt}
			}
		}
		return nil
	})
	if err != nil {
		return RehydrateResult{}, err
	}

	if err := st.ReplaceStateIndexes(messageIndex, eventIndex, ackIndex, taskState); err != nil {
		return RehydrateResult{}, err
	}

	completedEvt := envelope.NewEvent("rehydrate_completed", team, map[string]any{
		"messages": len(messageIndex), "events": len(eventIndex), "acks": len(ackIndex), "tasks": len(taskState),
	}, "", "")
	if _, err := st.AppendEvent(completedEvt); err != nil {
		return RehydrateResult{}, err
	}

	return RehydrateResult{
		Team: team, Messages: len(messageIndex), Events: len(eventIndex),
		Acks: len(ackIndex), TaskCount: len(taskState),
	}, nil
}

func scanInboxForRehydrate(st *store.Store, agent string, mu *sync.Mutex, messageIndex map[string]store.MessageIndexEntry, taskEnvelopes *[]envelope.Envelope) error {
	type found struct {
		offset int64
		env    envelope.Envelope
	}
	var local []found
	err := st.ScanAllInboxesForAgent(agent, func(offset int64, env envelope.Envelope) error {
		local = append(local, found{offset: offset, env: env})
		return nil
	})
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()
	for _, f := range local {
		off := f.offset
		messageIndex[f.env.ID] = store.MessageIndexEntry{Inbox: agent, CreatedAt: f.env.CreatedAt, To: agent, Offset: &off}

		if f.env.TaskID == "" {
			continue
		}
		if _, err := identifier.Validate("task_id", f.env.TaskID); err != nil {
			continue // malformed task ids are silently skipped during rehydrate
		}
		*taskEnvelopes = append(*taskEnvelopes, f.env)
	}
	return nil
}
