package messaging

import (
	"github.com/fractalmind/teamchat-go/internal/envelope"
	"github.com/fractalmind/teamchat-go/internal/store"
)

// SendResult is the outcome of a send call.
type SendResult struct {
	Status                   string                 `json:"status"`
	Reason                   string                 `json:"reason,omitempty"`
	CooldownRemainingSeconds int                    `json:"cooldown_remaining_seconds,omitempty"`
	Message                  envelope.Envelope      `json:"message"`
	Event                    *envelope.Event        `json:"event,omitempty"`
	Attempt                  int                    `json:"attempt,omitempty"`
	Ack                      *store.AckIndexEntry   `json:"ack,omitempty"`
	DeadLetter               *store.DeadLetterEntry `json:"dead_letter,omitempty"`
}

// SendOptions carries the optional, nullable call-site parameters to Send.
type SendOptions struct {
	RequireAck        bool
	AckTimeoutSeconds *int
	MaxRetries        *int
	CooldownSeconds   int
}

func cooldownKey(to, taskID, msgType string) string {
	if taskID == "" {
		taskID = "-"
	}
	return to + "::" + taskID + "::" + msgType
}

// Send normalizes and validates env, applies the cooldown gate, upserts
// it into the recipient's inbox, derives a task-snapshot delta on first
// insert, and — if requested — waits for an acknowledgement with retry,
// dead-lettering the message on exhaustion.
func (s *Service) Send(team string, env envelope.Envelope, opts SendOptions) (SendResult, error) {
	st, err := s.openTeam(team)
	if err != nil {
		return SendResult{}, err
	}

	env, err = envelope.Normalize(env)
	if err != nil {
		return SendResult{}, err
	}

	key := cooldownKey(env.To, env.TaskID, string(env.Type))
	remaining, err := st.CheckAndRecordCooldown(key, opts.CooldownSeconds)
	if err != nil {
		return SendResult{}, err
	}
	if remaining > 0 {
		evt := envelope.NewEvent("message_suppressed", team, map[string]any{
			"message": env, "reason": "cooldown", "cooldown_remaining_seconds": remaining,
		}, env.TraceID, env.TaskID)
		if _, err := st.AppendEvent(evt); err != nil {
			return SendResult{}, err
		}
		return SendResult{
			Status: "suppressed", Reason: "cooldown",
			CooldownRemainingSeconds: remaining, Message: env, Event: &evt,
		}, nil
	}

	inserted, err := st.UpsertMessage(env)
	if err != nil {
		return SendResult{}, err
	}

	kind := "message_duplicate"
	if inserted {
		kind = "message_sent"
	}
	evt := envelope.NewEvent(kind, team, map[string]any{"message": env}, env.TraceID, env.TaskID)
	if _, err := st.AppendEvent(evt); err != nil {
		return SendResult{}, err
	}

	if inserted && env.TaskID != "" {
		prev, err := st.ReadTaskSnapshot(env.TaskID)
		if err != nil {
			return SendResult{}, err
		}
		snap := store.DeriveTaskSnapshot(prev, env)
		if err := st.WriteTaskSnapshot(snap); err != nil {
			return SendResult{}, err
		}
	}

	status := "sent"
	if !inserted {
		status = "duplicate"
	}
	if !opts.RequireAck {
		return SendResult{Status: status, Message: env, Event: &evt}, nil
	}

	cfg, err := st.ReadConfig()
	if err != nil {
		return SendResult{}, err
	}
	policy := resolveAckPolicy(cfg, string(env.Type), opts.AckTimeoutSeconds, opts.MaxRetries)

	maxAttempts := policy.MaxRetries + 1
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		ack, err := waitForAck(st, env.ID, policy.AckTimeoutSeconds)
		if err != nil {
			return SendResult{}, err
		}
		if ack != nil {
			ackedEvt := envelope.NewEvent("delivery_acked", team, map[string]any{
				"attempt": attempt, "acked_at": ack.AckedAt, "agent": ack.Agent, "message_id": env.ID,
			}, env.TraceID, env.TaskID)
			if _, err := st.AppendEvent(ackedEvt); err != nil {
				return SendResult{}, err
			}
			return SendResult{Status: "acked", Attempt: attempt, Ack: ack, Message: env}, nil
		}

		if attempt < maxAttempts {
			retryEvt := envelope.NewEvent("delivery_retry", team, map[string]any{
				"attempt": attempt, "timeout_seconds": policy.AckTimeoutSeconds, "message_id": env.ID,
			}, env.TraceID, env.TaskID)
			if _, err := st.AppendEvent(retryEvt); err != nil {
				return SendResult{}, err
			}
		}
	}

	dlq := store.DeadLetterEntry{
		ID:            envelope.NewDeadLetterID(),
		MessageID:     env.ID,
		TaskID:        env.TaskID,
		TraceID:       env.TraceID,
		Reason:        "ack_timeout",
		Attempts:      maxAttempts,
		CreatedAt:     envelope.NowUTC(),
		Message:       env,
		SchemaVersion: envelope.SchemaVersion,
		Team:          team,
	}
	if err := st.WriteDeadLetter(dlq); err != nil {
		return SendResult{}, err
	}
	dlqEvt := envelope.NewEvent("delivery_dead_letter", team, map[string]any{
		"dead_letter": dlq, "message_id": env.ID,
	}, env.TraceID, env.TaskID)
	if _, err := st.AppendEvent(dlqEvt); err != nil {
		return SendResult{}, err
	}

	return SendResult{Status: "dead_letter", DeadLetter: &dlq, Message: env}, nil
}
