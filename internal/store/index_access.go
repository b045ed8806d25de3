package store

import "github.com/fractalmind/teamchat-go/internal/errors"

// AllMessageIndexEntries returns every message-index entry, keyed by id.
func (s *Store) AllMessageIndexEntries() (map[string]MessageIndexEntry, error) {
	m, err := s.messages.All()
	if err != nil {
		return nil, errors.NewStoreError("read message index", err).WithTeam(s.team).WithOp("all_message_index")
	}
	return m, nil
}

// AllEventIndexEntries returns every event-index entry, keyed by id.
func (s *Store) AllEventIndexEntries() (map[string]EventIndexEntry, error) {
	m, err := s.events.All()
	if err != nil {
		return nil, errors.NewStoreError("read event index", err).WithTeam(s.team).WithOp("all_event_index")
	}
	return m, nil
}
