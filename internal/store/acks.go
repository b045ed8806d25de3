package store

import (
	"github.com/fractalmind/teamchat-go/internal/errors"
	"github.com/fractalmind/teamchat-go/internal/lock"
)

// RecordAck inserts an ack for id under the acks lock. Returns true on
// first insert, false if id was already acknowledged.
func (s *Store) RecordAck(id, agent, ackedAt, deliveryID string) (bool, error) {
	var inserted bool
	err := s.locks.With(lock.Acks, func() error {
		if has, err := s.acks.Has(id); err != nil {
			return errors.NewStoreError("check ack index", err).WithTeam(s.team).WithOp("record_ack")
		} else if has {
			inserted = false
			return nil
		}
		entry := AckIndexEntry{MessageID: id, Agent: agent, AckedAt: ackedAt, DeliveryID: deliveryID}
		if err := s.acks.Put(id, entry); err != nil {
			return errors.NewStoreError("update ack index", err).WithTeam(s.team).WithOp("record_ack")
		}
		inserted = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return inserted, nil
}

// GetAck returns the ack entry for id, if any.
func (s *Store) GetAck(id string) (AckIndexEntry, bool, error) {
	entry, ok, err := s.acks.Get(id)
	if err != nil {
		return AckIndexEntry{}, false, errors.NewStoreError("read ack index", err).WithTeam(s.team).WithOp("get_ack")
	}
	return entry, ok, nil
}

// AllAcks returns every ack index entry, keyed by message id. Used by
// rehydrate and by diagnostics.
func (s *Store) AllAcks() (map[string]AckIndexEntry, error) {
	m, err := s.acks.All()
	if err != nil {
		return nil, errors.NewStoreError("read ack index", err).WithTeam(s.team).WithOp("all_acks")
	}
	return m, nil
}
