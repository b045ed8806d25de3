// Package messaging implements the orchestration layer above the team
// store: send (with cooldown, dedup, ack-wait and retry, dead-lettering),
// read, ack, status, trace, rehydrate, and doctor_check. It is the only
// package that emits events as a side effect of caller-facing operations.
package messaging

import (
	"github.com/fractalmind/teamchat-go/internal/store"
)

// Service is the messaging engine bound to a single data root. One team's
// worth of state is opened lazily per call.
type Service struct {
	dataRoot string
}

// New returns a Service rooted at dataRoot.
func New(dataRoot string) *Service {
	return &Service{dataRoot: dataRoot}
}

func (s *Service) openTeam(team string) (*store.Store, error) {
	st, err := store.Open(s.dataRoot, team)
	if err != nil {
		return nil, err
	}
	if err := st.EnsureLayout(); err != nil {
		return nil, err
	}
	return st, nil
}
