// Package envelope defines the wire record exchanged through the team
// store — the envelope (message) and event shapes — plus the normalize and
// validate steps that gate every write, the event factory, and the ISO-8601
// UTC time helpers shared across the engine.
package envelope

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/fractalmind/teamchat-go/internal/errors"
	"github.com/fractalmind/teamchat-go/internal/identifier"
	"github.com/google/uuid"
)

// SchemaVersion is the only schema version this engine understands.
const SchemaVersion = 1

// Type is the closed set of recognized message types.
type Type string

const (
	TypeTaskAssign            Type = "task_assign"
	TypeTaskUpdate            Type = "task_update"
	TypeIdleNotification      Type = "idle_notification"
	TypeHandoff               Type = "handoff"
	TypeDecisionRequired      Type = "decision_required"
	TypeShutdownRequest       Type = "shutdown_request"
	TypeShutdownApproved      Type = "shutdown_approved"
	TypeAgentWakeupRequired   Type = "agent_wakeup_required"
	TypeAgentShutdownRequired Type = "agent_shutdown_required"
	TypeAgentStarted          Type = "agent_started"
	TypeAgentStopped          Type = "agent_stopped"
	TypeAgentError            Type = "agent_error"
	TypeAgentTimeout          Type = "agent_timeout"
)

var validTypes = map[Type]bool{
	TypeTaskAssign:            true,
	TypeTaskUpdate:            true,
	TypeIdleNotification:      true,
	TypeHandoff:               true,
	TypeDecisionRequired:      true,
	TypeShutdownRequest:       true,
	TypeShutdownApproved:      true,
	TypeAgentWakeupRequired:   true,
	TypeAgentShutdownRequired: true,
	TypeAgentStarted:          true,
	TypeAgentStopped:          true,
	TypeAgentError:            true,
	TypeAgentTimeout:          true,
}

// ValidType reports whether t is a recognized message type.
func ValidType(t Type) bool { return validTypes[t] }

// Priority is the closed set of envelope priorities.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityNormal   Priority = "normal"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

var validPriorities = map[Priority]bool{
	PriorityLow:      true,
	PriorityNormal:   true,
	PriorityHigh:     true,
	PriorityCritical: true,
}

// ValidPriority reports whether p is a recognized priority.
func ValidPriority(p Priority) bool { return validPriorities[p] }

// Envelope is a single immutable delivery record targeted at one agent. It
// is written once, byte-for-byte, and never mutated.
type Envelope struct {
	ID            string         `json:"id"`
	SchemaVersion int            `json:"schema_version"`
	Type          Type           `json:"type"`
	From          string         `json:"from"`
	To            string         `json:"to"`
	Payload       map[string]any `json:"payload"`
	CreatedAt     string         `json:"created_at"`
	TaskID        string         `json:"task_id,omitempty"`
	TraceID       string         `json:"trace_id,omitempty"`
	Priority      Priority       `json:"priority,omitempty"`
	DeliveryID    string         `json:"delivery_id,omitempty"`
}

// Event is the durable audit record emitted as a side effect of every
// send/ack/suppress/retry/dead-letter/read/rehydrate outcome.
type Event struct {
	ID            string         `json:"id"`
	SchemaVersion int            `json:"schema_version"`
	Kind          string         `json:"kind"`
	Team          string         `json:"team"`
	Payload       map[string]any `json:"payload"`
	CreatedAt     string         `json:"created_at"`
	TraceID       string         `json:"trace_id,omitempty"`
	TaskID        string         `json:"task_id,omitempty"`
}

// NowUTC formats the current time as YYYY-MM-DDTHH:MM:SSZ (second
// precision, UTC), the only timestamp format the engine ever writes.
func NowUTC() string {
	return FormatUTC(time.Now())
}

// FormatUTC formats t as YYYY-MM-DDTHH:MM:SSZ.
func FormatUTC(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format("2006-01-02T15:04:05Z")
}

// ParseUTC parses a timestamp produced by FormatUTC/NowUTC.
func ParseUTC(s string) (time.Time, error) {
	return time.Parse("2006-01-02T15:04:05Z", s)
}

// randomHex12 returns a 12-character lowercase hex string drawn from a
// uniform random source.
func randomHex12() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])[:12]
}

// Normalize fills in defaults for a caller-supplied envelope (id, created_at,
// schema_version, priority, payload) and then validates it.
func Normalize(e Envelope) (Envelope, error) {
	if e.ID == "" {
		e.ID = "msg_" + randomHex12()
	}
	if e.CreatedAt == "" {
		e.CreatedAt = NowUTC()
	}
	if e.SchemaVersion == 0 {
		e.SchemaVersion = SchemaVersion
	}
	if e.Priority == "" {
		e.Priority = PriorityNormal
	}
	if e.Payload == nil {
		e.Payload = map[string]any{}
	}
	if err := Validate(e); err != nil {
		return e, err
	}
	return e, nil
}

// Validate enforces every structural rule in the wire format: presence of
// required fields, schema version, closed type/priority sets, non-empty
// from/to, an object payload, and a parseable created_at.
func Validate(e Envelope) error {
	if e.SchemaVersion != SchemaVersion {
		return errors.NewEnvelopeError(fmt.Sprintf("unsupported schema_version %d", e.SchemaVersion), nil).WithMessageID(e.ID)
	}
	if !ValidType(e.Type) {
		return errors.NewEnvelopeError(fmt.Sprintf("unrecognized type %q", e.Type), nil).WithMessageID(e.ID)
	}
	if e.From == "" {
		return errors.NewEnvelopeError("from must not be empty", nil).WithMessageID(e.ID)
	}
	if e.To == "" {
		return errors.NewEnvelopeError("to must not be empty", nil).WithMessageID(e.ID)
	}
	if e.Payload == nil {
		return errors.NewEnvelopeError("payload must be an object", nil).WithMessageID(e.ID)
	}
	if e.Priority != "" && !ValidPriority(e.Priority) {
		return errors.NewEnvelopeError(fmt.Sprintf("unrecognized priority %q", e.Priority), nil).WithMessageID(e.ID)
	}
	if _, err := ParseUTC(e.CreatedAt); err != nil {
		return errors.NewEnvelopeError("created_at must be ISO-8601 UTC", err).WithMessageID(e.ID)
	}
	if e.TaskID != "" {
		if _, err := identifier.Validate("task_id", e.TaskID); err != nil {
			return err
		}
	}
	return nil
}

// NewEvent assigns a fresh id and created_at to a new audit record.
func NewEvent(kind, team string, payload map[string]any, traceID, taskID string) Event {
	if payload == nil {
		payload = map[string]any{}
	}
	return Event{
		ID:            "evt_" + randomHex12(),
		SchemaVersion: SchemaVersion,
		Kind:          kind,
		Team:          team,
		Payload:       payload,
		CreatedAt:     NowUTC(),
		TraceID:       traceID,
		TaskID:        taskID,
	}
}

// NewDeadLetterID returns a fresh dead-letter entry id.
func NewDeadLetterID() string {
	return "dlq_" + randomHex12()
}

// TraceMatches reports whether an event belongs to the given trace, checking
// event.trace_id, event.payload.trace_id, and event.payload.message.trace_id
// in that order.
func TraceMatches(e Event, traceID string) bool {
	if e.TraceID == traceID {
		return true
	}
	if v, ok := e.Payload["trace_id"].(string); ok && v == traceID {
		return true
	}
	if msg, ok := e.Payload["message"].(map[string]any); ok {
		if v, ok := msg["trace_id"].(string); ok && v == traceID {
			return true
		}
	}
	return false
}
