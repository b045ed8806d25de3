package messaging

import (
	"github.com/fractalmind/teamchat-go/internal/envelope"
)

// TraceResult is the outcome of a trace call.
type TraceResult struct {
	Events     []envelope.Event `json:"events"`
	NextCursor *string          `json:"next_cursor,omitempty"`
}

// Trace returns every event matching traceID. With limit <= 0 it performs a
// forward scan of the whole team, sorted by (created_at, id). With limit
// > 0 it reverse-paginates using the same cursor semantics as inbox
// pagination: the paginated traversal over a fixed match set is
// duplicate-free and covers the same set as the unpaginated call.
func (s *Service) Trace(team, traceID string, limit int, cursor string) (TraceResult, error) {
	st, err := s.openTeam(team)
	if err != nil {
		return TraceResult{}, err
	}

	if limit <= 0 {
		all, err := st.IterEvents()
		if err != nil {
			return TraceResult{}, err
		}
		var matches []envelope.Event
		for _, evt := range all {
			if envelope.TraceMatches(evt, traceID) {
				matches = append(matches, evt)
			}
		}
		return TraceResult{Events: matches}, nil
	}

	var newestFirst []envelope.Event
	skipping := cursor != ""
	cursorSeen := false

	err = st.IterEventsReverse(func(evt envelope.Event) (bool, error) {
		if !envelope.TraceMatches(evt, traceID) {
			return true, nil
		}

		if skipping {
			if evt.ID == cursor {
				cursorSeen = true
				skipping = false
			}
			return true, nil
		}

		newestFirst = append(newestFirst, evt)
		return !(len(newestFirst) > limit), nil
	})
	if err != nil {
		return TraceResult{}, err
	}

	if cursor != "" && !cursorSeen {
		return TraceResult{Events: []envelope.Event{}}, nil
	}

	var nextCursor *string
	if len(newestFirst) > limit {
		next := newestFirst[limit-1].ID
		nextCursor = &next
		newestFirst = newestFirst[:limit]
	}

	page := make([]envelope.Event, len(newestFirst))
	for i, e := range newestFirst {
		page[len(newestFirst)-1-i] = e
	}
	return TraceResult{Events: page, NextCursor: nextCursor}, nil
}
