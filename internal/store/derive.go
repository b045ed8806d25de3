package store

import (
	"github.com/fractalmind/teamchat-go/internal/envelope"
)

// DeriveTaskSnapshot applies the projection rules for a single envelope
// mentioning a task id onto the previous snapshot (nil if none existed),
// returning the new snapshot. updated_at is always set to the message's
// created_at.
func DeriveTaskSnapshot(prev *TaskSnapshot, env envelope.Envelope) TaskSnapshot {
	var snap TaskSnapshot
	if prev != nil {
		snap = *prev
	}
	snap.TaskID = env.TaskID

	switch env.Type {
	case envelope.TypeTaskAssign:
		snap.Status = "assigned"
		snap.Owner = env.To
		snap.AssignedBy = env.From
		if v, ok := env.Payload["subject"].(string); ok {
			snap.Subject = v
		}
		if v, ok := env.Payload["details"].(string); ok {
			snap.Details = v
		}
		if snap.CreatedAt == "" {
			snap.CreatedAt = env.CreatedAt
		}
	case envelope.TypeTaskUpdate:
		if v, ok := env.Payload["status"].(string); ok {
			snap.Status = v
		}
		if v, ok := env.Payload["progress"]; ok {
			snap.Progress = v
		}
		if v, ok := env.Payload["eta"].(string); ok {
			snap.ETA = v
		}
		if v, ok := env.Payload["blocked"]; ok {
			snap.Blocked = coerceBool(v)
		}
		if v, ok := env.Payload["note"].(string); ok {
			snap.Note = v
		}
		snap.LastUpdateFrom = env.From
	default:
		if snap.Owner == "" {
			snap.Owner = env.To
		}
		if snap.TraceID == "" {
			snap.TraceID = env.TraceID
		}
		if snap.CreatedAt == "" {
			snap.CreatedAt = env.CreatedAt
		}
	}

	snap.UpdatedAt = env.CreatedAt
	return snap
}

func coerceBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t == "true" || t == "1" || t == "yes"
	case float64:
		return t != 0
	default:
		return false
	}
}
