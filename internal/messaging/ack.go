package messaging

import "github.com/fractalmind/teamchat-go/internal/envelope"

// AckResult is the outcome of an ack call.
type AckResult struct {
	Status   string `json:"status"`
	Expected string `json:"expected,omitempty"`
}

// Ack loads the target envelope and, if agent is its recipient, records
// the acknowledgement. Unknown ids and wrong-recipient attempts are
// reported as structured statuses, not errors, each paired with an
// ack_rejected event.
func (s *Service) Ack(team, agent, messageID string) (AckResult, error) {
	st, err := s.openTeam(team)
	if err != nil {
		return AckResult{}, err
	}

	env, err := st.GetMessage(messageID)
	if err != nil {
		return AckResult{}, err
	}
	if env == nil {
		evt := envelope.NewEvent("ack_rejected", team, map[string]any{
			"reason": "message_not_found", "message_id": messageID, "agent": agent,
		}, "", "")
		if _, err := st.AppendEvent(evt); err != nil {
			return AckResult{}, err
		}
		return AckResult{Status: "not_found"}, nil
	}

	if env.To != agent {
		evt := envelope.NewEvent("ack_rejected", team, map[string]any{
			"reason": "wrong_recipient", "message_id": messageID, "agent": agent, "expected": env.To,
		}, env.TraceID, env.TaskID)
		if _, err := st.AppendEvent(evt); err != nil {
			return AckResult{}, err
		}
		return AckResult{Status: "wrong_recipient", Expected: env.To}, nil
	}

	inserted, err := st.RecordAck(messageID, agent, envelope.NowUTC(), "")
	if err != nil {
		return AckResult{}, err
	}

	kind := "message_ack_duplicate"
	status := "already_acked"
	if inserted {
		kind = "message_acked"
		status = "acked"
	}
	evt := envelope.NewEvent(kind, team, map[string]any{
		"message_id": messageID, "agent": agent,
	}, env.TraceID, env.TaskID)
	if _, err := st.AppendEvent(evt); err != nil {
		return AckResult{}, err
	}

	return AckResult{Status: status}, nil
}
