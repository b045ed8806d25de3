package store

import (
	"encoding/json"
	"time"

	"github.com/fractalmind/teamchat-go/internal/envelope"
	"github.com/fractalmind/teamchat-go/internal/errors"
	"github.com/fractalmind/teamchat-go/internal/fsutil"
)

// UnreadCount returns the number of messages in agent's inbox that have no
// entry in the ack index. Supplements the core operation set; grounded on
// the original store's unread-count helper.
func (s *Store) UnreadCount(agent string) (int, error) {
	count := 0
	err := fsutil.ScanJSONL(s.inboxPath(agent), func(line []byte) error {
		var env envelope.Envelope
		if err := json.Unmarshal(line, &env); err != nil {
			return err
		}
		acked, err := s.acks.Has(env.ID)
		if err != nil {
			return err
		}
		if !acked {
			count++
		}
		return nil
	}, nil)
	if err != nil {
		return 0, errors.NewStoreError("count unread", err).WithTeam(s.team).WithOp("unread_count")
	}
	return count, nil
}

// StaleUnreadMessages returns every unacknowledged message, across every
// agent's inbox, whose created_at is older than olderThanSeconds.
func (s *Store) StaleUnreadMessages(olderThanSeconds int) ([]envelope.Envelope, error) {
	agents, err := s.ListAgents()
	if err != nil {
		return nil, err
	}

	cutoff, err := envelope.ParseUTC(envelope.NowUTC())
	if err != nil {
		return nil, err
	}
	cutoff = cutoff.Add(-time.Duration(olderThanSeconds) * time.Second)

	var stale []envelope.Envelope
	for _, agent := range agents {
		err := fsutil.ScanJSONL(s.inboxPath(agent), func(line []byte) error {
			var env envelope.Envelope
			if err := json.Unmarshal(line, &env); err != nil {
				return err
			}
			acked, err := s.acks.Has(env.ID)
			if err != nil {
				return err
			}
			if acked {
				return nil
			}
			createdAt, err := envelope.ParseUTC(env.CreatedAt)
			if err != nil {
				return nil // malformed timestamps are not a rehydrate-time concern here
			}
			if createdAt.Before(cutoff) {
				stale = append(stale, env)
			}
			return nil
		}, nil)
		if err != nil {
			return nil, errors.NewStoreError("scan inbox for stale messages", err).WithTeam(s.team).WithOp("stale_unread_messages")
		}
	}
	return stale, nil
}
