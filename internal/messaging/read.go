package messaging

import (
	"github.com/fractalmind/teamchat-go/internal/envelope"
)

// ReadResult is the outcome of a read call.
type ReadResult struct {
	Team       string              `json:"team"`
	Agent      string              `json:"agent"`
	Messages   []envelope.Envelope `json:"messages"`
	Count      int                 `json:"count"`
	NextCursor *string             `json:"next_cursor,omitempty"`
}

// Read delegates to the store's windowed inbox pagination and emits an
// inbox_read event describing the page that was returned.
func (s *Service) Read(team, agent string, unreadOnly bool, limit int, cursor string) (ReadResult, error) {
	st, err := s.openTeam(team)
	if err != nil {
		return ReadResult{}, err
	}

	messages, next, err := st.ListMessagesWindowForAgent(agent, unreadOnly, limit, cursor)
	if err != nil {
		return ReadResult{}, err
	}

	evt := envelope.NewEvent("inbox_read", team, map[string]any{
		"agent": agent, "count": len(messages), "unread_only": unreadOnly,
		"cursor": cursor, "next_cursor": nextCursorPayload(next),
	}, "", "")
	if _, err := st.AppendEvent(evt); err != nil {
		return ReadResult{}, err
	}

	return ReadResult{Team: team, Agent: agent, Messages: messages, Count: len(messages), NextCursor: next}, nil
}

func nextCursorPayload(next *string) any {
	if next == nil {
		return nil
	}
	return *next
}
