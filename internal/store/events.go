package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fractalmind/teamchat-go/internal/envelope"
	"github.com/fractalmind/teamchat-go/internal/errors"
	"github.com/fractalmind/teamchat-go/internal/fsutil"
	"github.com/fractalmind/teamchat-go/internal/lock"
)

func dateShardOf(createdAt string) string {
	if len(createdAt) >= 10 {
		return createdAt[:10]
	}
	return envelope.NowUTC()[:10]
}

// AppendEvent appends evt to its date-sharded log and indexes it, unless an
// entry with the same id already exists (no-op).
func (s *Store) AppendEvent(evt envelope.Event) (bool, error) {
	var inserted bool
	err := s.locks.With(lock.Events, func() error {
		if has, err := s.events.Has(evt.ID); err != nil {
			return errors.NewStoreError("check event index", err).WithTeam(s.team).WithOp("append_event")
		} else if has {
			inserted = false
			return nil
		}

		shard := dateShardOf(evt.CreatedAt)
		if _, err := fsutil.AppendJSONL(s.eventLogPath(shard), evt); err != nil {
			return errors.NewStoreError("append event line", err).WithTeam(s.team).WithOp("append_event")
		}

		entry := EventIndexEntry{File: shard + ".jsonl", CreatedAt: evt.CreatedAt}
		if err := s.events.Put(evt.ID, entry); err != nil {
			return errors.NewStoreError("update event index", err).WithTeam(s.team).WithOp("append_event")
		}
		inserted = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return inserted, nil
}

func (s *Store) eventLogFiles() ([]string, error) {
	entries, err := os.ReadDir(s.eventsDir())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".jsonl") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// IterEvents returns every event in this team's log, sorted by
// (created_at, id) ascending, breaking ties lexically by id.
func (s *Store) IterEvents() ([]envelope.Event, error) {
	files, err := s.eventLogFiles()
	if err != nil {
		return nil, errors.NewStoreError("list event logs", err).WithTeam(s.team).WithOp("iter_events")
	}

	var all []envelope.Event
	for _, f := range files {
		err := fsutil.ScanJSONL(filepath.Join(s.eventsDir(), f), func(line []byte) error {
			var evt envelope.Event
			if err := json.Unmarshal(line, &evt); err != nil {
				return err
			}
			all = append(all, evt)
			return nil
		}, nil)
		if err != nil {
			return nil, errors.NewStoreError("scan event log", err).WithTeam(s.team).WithOp("iter_events")
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].CreatedAt != all[j].CreatedAt {
			return all[i].CreatedAt < all[j].CreatedAt
		}
		return all[i].ID < all[j].ID
	})
	return all, nil
}

// IterEventsReverse visits events from the newest log file to the oldest,
// newest line first within each file, stopping early when visit returns
// false.
func (s *Store) IterEventsReverse(visit func(envelope.Event) (bool, error)) error {
	files, err := s.eventLogFiles()
	if err != nil {
		return errors.NewStoreError("list event logs", err).WithTeam(s.team).WithOp("iter_events_reverse")
	}

	for i := len(files) - 1; i >= 0; i-- {
		path := filepath.Join(s.eventsDir(), files[i])
		stop := false
		err := fsutil.ReverseLines(path, func(line []byte) (bool, error) {
			var evt envelope.Event
			if err := json.Unmarshal(line, &evt); err != nil {
				return true, nil
			}
			cont, err := visit(evt)
			if !cont {
				stop = true
			}
			return cont, err
		})
		if err != nil {
			return errors.NewStoreError("reverse scan event log", err).WithTeam(s.team).WithOp("iter_events_reverse")
		}
		if stop {
			return nil
		}
	}
	return nil
}
