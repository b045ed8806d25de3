package store

import (
	"encoding/json"

	"github.com/fractalmind/teamchat-go/internal/envelope"
	"github.com/fractalmind/teamchat-go/internal/errors"
	"github.com/fractalmind/teamchat-go/internal/fsutil"
	"github.com/fractalmind/teamchat-go/internal/identifier"
	"github.com/fractalmind/teamchat-go/internal/lock"
)

// UpsertMessage appends env to its recipient's inbox and indexes it, unless
// an entry with the same id already exists. Returns true on first insert,
// false on a duplicate. Guarantees id uniqueness across every inbox in this
// team.
func (s *Store) UpsertMessage(env envelope.Envelope) (bool, error) {
	to, err := identifier.Validate("to", env.To)
	if err != nil {
		return false, err
	}

	var inserted bool
	err = s.locks.With(lock.Messages, func() error {
		if has, err := s.messages.Has(env.ID); err != nil {
			return errors.NewStoreError("check message index", err).WithTeam(s.team).WithOp("upsert_message")
		} else if has {
			inserted = false
			return nil
		}

		offset, err := fsutil.AppendJSONL(s.inboxPath(to), env)
		if err != nil {
			return errors.NewStoreError("append inbox line", err).WithTeam(s.team).WithOp("upsert_message")
		}

		entry := MessageIndexEntry{Inbox: to, CreatedAt: env.CreatedAt, To: to, Offset: &offset}
		if err := s.messages.Put(env.ID, entry); err != nil {
			return errors.NewStoreError("update message index", err).WithTeam(s.team).WithOp("upsert_message")
		}
		inserted = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return inserted, nil
}

// GetMessage looks up an envelope by id, preferring the index's
// {inbox, offset} fast path and falling back to a linear scan of the
// named inbox when the offset is absent, stale, or the index entry is
// missing entirely.
func (s *Store) GetMessage(id string) (*envelope.Envelope, error) {
	entry, ok, err := s.messages.Get(id)
	if err != nil {
		return nil, errors.NewStoreError("read message index", err).WithTeam(s.team).WithOp("get_message")
	}
	if ok {
		if entry.Offset != nil {
			if env, err := s.readMessageAtOffset(entry.Inbox, *entry.Offset, id); err == nil && env != nil {
				return env, nil
			}
		}
		if env, err := s.scanInboxForID(entry.Inbox, id); err != nil {
			return nil, err
		} else if env != nil {
			return env, nil
		}
	}

	agents, err := s.ListAgents()
	if err != nil {
		return nil, err
	}
	for _, agent := range agents {
		env, err := s.scanInboxForID(agent, id)
		if err != nil {
			return nil, err
		}
		if env != nil {
			return env, nil
		}
	}
	return nil, nil
}

// InboxLineAt reads the raw envelope stored at offset in agent's inbox,
// without falling back to a scan. Used by diagnostics to verify that a
// stored offset still points at the line it claims to.
func (s *Store) InboxLineAt(agent string, offset int64) (*envelope.Envelope, error) {
	line, err := fsutil.ReadAtOffset(s.inboxPath(agent), offset)
	if err != nil {
		return nil, err
	}
	var env envelope.Envelope
	if err := json.Unmarshal(line, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

func (s *Store) readMessageAtOffset(agent string, offset int64, id string) (*envelope.Envelope, error) {
	line, err := fsutil.ReadAtOffset(s.inboxPath(agent), offset)
	if err != nil {
		return nil, nil // stale offset, let caller fall back
	}
	var env envelope.Envelope
	if err := json.Unmarshal(line, &env); err != nil {
		return nil, nil
	}
	if env.ID != id {
		return nil, nil
	}
	return &env, nil
}

func (s *Store) scanInboxForID(agent, id string) (*envelope.Envelope, error) {
	var found *envelope.Envelope
	err := fsutil.ScanJSONL(s.inboxPath(agent), func(line []byte) error {
		var env envelope.Envelope
		if err := json.Unmarshal(line, &env); err != nil {
			return err
		}
		if env.ID == id {
			found = &env
		}
		return nil
	}, nil)
	if err != nil {
		return nil, errors.NewStoreError("scan inbox", err).WithTeam(s.team).WithOp("get_message")
	}
	return found, nil
}

// ListMessagesWindowForAgent reverse-paginates an agent's inbox newest-first.
// The caller sees records strictly older than the record whose id equals
// cursor; if cursor is not found, an empty page is returned with a nil
// next cursor. limit <= 0 means no limit. When unreadOnly, ids present in
// the ack index are skipped. The page itself is returned oldest-first.
func (s *Store) ListMessagesWindowForAgent(agent string, unreadOnly bool, limit int, cursor string) ([]envelope.Envelope, *string, error) {
	validAgent, err := identifier.Validate("agent", agent)
	if err != nil {
		return nil, nil, err
	}

	// Collect up to limit+1 matching records newest-first so we can tell
	// whether an older record exists beyond the page without a second pass.
	var newestFirst []envelope.Envelope
	skipping := cursor != ""
	cursorSeen := false

	err = fsutil.ReverseLines(s.inboxPath(validAgent), func(line []byte) (bool, error) {
		var env envelope.Envelope
		if err := json.Unmarshal(line, &env); err != nil {
			return true, nil // malformed lines are silently skipped here; counted in diagnostics scans
		}

		if skipping {
			if env.ID == cursor {
				cursorSeen = true
				skipping = false
			}
			return true, nil
		}

		if unreadOnly {
			acked, err := s.acks.Has(env.ID)
			if err != nil {
				return false, err
			}
			if acked {
				return true, nil
			}
		}

		newestFirst = append(newestFirst, env)
		if limit > 0 && len(newestFirst) > limit {
			return false, nil
		}
		return true, nil
	})
	if err != nil {
		return nil, nil, errors.NewStoreError("paginate inbox", err).WithTeam(s.team).WithOp("list_messages_window_for_agent")
	}

	if cursor != "" && !cursorSeen {
		return []envelope.Envelope{}, nil, nil
	}

	var nextCursor *string
	if limit > 0 && len(newestFirst) > limit {
		next := newestFirst[limit-1].ID
		nextCursor = &next
		newestFirst = newestFirst[:limit]
	}

	page := make([]envelope.Envelope, len(newestFirst))
	for i, e := range newestFirst {
		page[len(newestFirst)-1-i] = e
	}
	return page, nextCursor, nil
}
