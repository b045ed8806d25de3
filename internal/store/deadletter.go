package store

import (
	"github.com/fractalmind/teamchat-go/internal/envelope"
	"github.com/fractalmind/teamchat-go/internal/errors"
	"github.com/fractalmind/teamchat-go/internal/fsutil"
	"github.com/fractalmind/teamchat-go/internal/lock"
)

// DeadLetterEntry is a failed-delivery record.
type DeadLetterEntry struct {
	ID            string            `json:"id"`
	MessageID     string            `json:"message_id"`
	TaskID        string            `json:"task_id,omitempty"`
	TraceID       string            `json:"trace_id,omitempty"`
	Reason        string            `json:"reason"`
	Attempts      int               `json:"attempts"`
	CreatedAt     string            `json:"created_at"`
	Message       envelope.Envelope `json:"message"`
	SchemaVersion int               `json:"schema_version"`
	Team          string            `json:"team"`
}

// WriteDeadLetter appends entry to today's dead-letter log under the
// dead-letter lock.
func (s *Store) WriteDeadLetter(entry DeadLetterEntry) error {
	return s.locks.With(lock.DeadLetter, func() error {
		shard := dateShardOf(entry.CreatedAt)
		if _, err := fsutil.AppendJSONL(s.deadLetterPath(shard), entry); err != nil {
			return errors.NewStoreError("append dead-letter entry", err).WithTeam(s.team).WithOp("write_dead_letter")
		}
		return nil
	})
}
