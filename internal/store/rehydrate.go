package store

import (
	"encoding/json"
	"path/filepath"

	"github.com/fractalmind/teamchat-go/internal/envelope"
	"github.com/fractalmind/teamchat-go/internal/errors"
	"github.com/fractalmind/teamchat-go/internal/fsutil"
	"github.com/fractalmind/teamchat-go/internal/lock"
)

// ScanAllInboxesForAgent visits every envelope in agent's inbox file, along
// with the byte offset at which its line begins. Exposed separately from
// ScanAllInboxes so callers (notably rehydrate) can scan distinct agents'
// inboxes concurrently.
func (s *Store) ScanAllInboxesForAgent(agent string, visit func(offset int64, env envelope.Envelope) error) error {
	path := s.inboxPath(agent)
	var offset int64
	err := fsutil.ScanJSONL(path, func(line []byte) error {
		lineOffset := offset
		offset += int64(len(line)) + 1
		var env envelope.Envelope
		if err := json.Unmarshal(line, &env); err != nil {
			return err
		}
		return visit(lineOffset, env)
	}, nil)
	if err != nil {
		return errors.NewStoreError("scan inbox", err).WithTeam(s.team).WithOp("rehydrate")
	}
	return nil
}

// ScanAllInboxes visits every envelope in every inbox file, along with the
// agent (inbox basename) and byte offset at which its line begins, one
// inbox after another. Used by the doctor checks in internal/diagnostics;
// rehydrate scans per agent through ScanAllInboxesForAgent instead.
func (s *Store) ScanAllInboxes(visit func(agent string, offset int64, env envelope.Envelope) error) error {
	agents, err := s.ListAgents()
	if err != nil {
		return err
	}
	for _, agent := range agents {
		err := s.ScanAllInboxesForAgent(agent, func(offset int64, env envelope.Envelope) error {
			return visit(agent, offset, env)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// ScanAllEvents visits every event in every date-sharded event log file,
// along with the file name it came from.
func (s *Store) ScanAllEvents(visit func(file string, evt envelope.Event) error) error {
	files, err := s.eventLogFiles()
	if err != nil {
		return errors.NewStoreError("list event logs", err).WithTeam(s.team).WithOp("rehydrate")
	}
	for _, f := range files {
		err := fsutil.ScanJSONL(filepath.Join(s.eventsDir(), f), func(line []byte) error {
			var evt envelope.Event
			if err := json.Unmarshal(line, &evt); err != nil {
				return err
			}
			return visit(f, evt)
		}, nil)
		if err != nil {
			return errors.NewStoreError("scan event log", err).WithTeam(s.team).WithOp("rehydrate")
		}
	}
	return nil
}

// ReplaceStateIndexes atomically replaces the message, event, and ack
// indexes together with the full task snapshot set, under a single
// state-rehydrate lock acquisition, so a rehydrate call commits every
// derived structure as one critical section.
func (s *Store) ReplaceStateIndexes(messages map[string]MessageIndexEntry, events map[string]EventIndexEntry, acks map[string]AckIndexEntry, snapshots map[string]TaskSnapshot) error {
	return s.locks.With(lock.StateRehydrate, func() error {
		if err := s.messages.ReplaceAll(messages); err != nil {
			return errors.NewStoreError("replace message index", err).WithTeam(s.team).WithOp("rehydrate")
		}
		if err := s.events.ReplaceAll(events); err != nil {
			return errors.NewStoreError("replace event index", err).WithTeam(s.team).WithOp("rehydrate")
		}
		if err := s.acks.ReplaceAll(acks); err != nil {
			return errors.NewStoreError("replace ack index", err).WithTeam(s.team).WithOp("rehydrate")
		}
		if err := s.ReplaceTaskSnapshots(snapshots); err != nil {
			return err
		}
		return nil
	})
}
