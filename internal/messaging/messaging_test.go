package messaging

import (
	"strconv"
	"testing"

	"github.com/fractalmind/teamchat-go/internal/envelope"
	"github.com/fractalmind/teamchat-go/internal/store"
)

func intPtr(v int) *int { return &v }

// TestScenario_SendReadAckFlow mirrors S1: send a task_assign, read it
// unread, ack it, and confirm the unread count drops to zero.
func TestScenario_SendReadAckFlow(t *testing.T) {
	svc := New(t.TempDir())

	result, err := svc.Send("demo", envelope.Envelope{
		ID: "msg_flow_1", Type: envelope.TypeTaskAssign, From: "lead", To: "dev",
		TaskID: "task_1", TraceID: "trace_1", Payload: map[string]any{"subject": "Build endpoint"},
	}, SendOptions{})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if result.Status != "sent" {
		t.Fatalf("Send() status = %q, want sent", result.Status)
	}

	read, err := svc.Read("demo", "dev", true, 20, "")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if read.Count != 1 || read.Messages[0].ID != "msg_flow_1" {
		t.Fatalf("Read() = %+v", read)
	}

	ack, err := svc.Ack("demo", "dev", "msg_flow_1")
	if err != nil {
		t.Fatalf("Ack() error = %v", err)
	}
	if ack.Status != "acked" {
		t.Fatalf("Ack() status = %q, want acked", ack.Status)
	}

	read2, err := svc.Read("demo", "dev", true, 20, "")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if read2.Count != 0 {
		t.Fatalf("Read() after ack count = %d, want 0", read2.Count)
	}
}

// TestScenario_DuplicateSend mirrors S2: two identical sends of the same id
// yield sent then duplicate, with exactly one inbox line for the recipient.
func TestScenario_DuplicateSend(t *testing.T) {
	svc := New(t.TempDir())
	env := envelope.Envelope{ID: "msg_duplicate_1", Type: envelope.TypeIdleNotification, From: "dev", To: "lead"}

	first, err := svc.Send("demo", env, SendOptions{})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	second, err := svc.Send("demo", env, SendOptions{})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if first.Status != "sent" || second.Status != "duplicate" {
		t.Fatalf("statuses = %q, %q, want sent, duplicate", first.Status, second.Status)
	}

	read, err := svc.Read("demo", "lead", false, 0, "")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if read.Count != 1 {
		t.Fatalf("inbox size for lead = %d, want 1", read.Count)
	}
}

// TestScenario_AckTimeoutDeadLetters mirrors S3: a required ack that never
// arrives exhausts its retry budget and lands in the dead-letter log.
func TestScenario_AckTimeoutDeadLetters(t *testing.T) {
	svc := New(t.TempDir())

	result, err := svc.Send("demo", envelope.Envelope{
		ID: "msg_ack_timeout_1", Type: envelope.TypeDecisionRequired, From: "lead", To: "qa",
	}, SendOptions{RequireAck: true, AckTimeoutSeconds: intPtr(1), MaxRetries: intPtr(1)})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if result.Status != "dead_letter" {
		t.Fatalf("Send() status = %q, want dead_letter", result.Status)
	}
	if result.DeadLetter == nil || result.DeadLetter.MessageID != "msg_ack_timeout_1" {
		t.Fatalf("DeadLetter = %+v", result.DeadLetter)
	}
}

// TestScenario_CooldownSuppression mirrors S4: a second idle_notification to
// the same recipient within the cooldown window is suppressed.
func TestScenario_CooldownSuppression(t *testing.T) {
	svc := New(t.TempDir())

	first, err := svc.Send("demo", envelope.Envelope{ID: "msg_cool_1", Type: envelope.TypeIdleNotification, From: "dev", To: "lead"}, SendOptions{CooldownSeconds: 120})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	second, err := svc.Send("demo", envelope.Envelope{ID: "msg_cool_2", Type: envelope.TypeIdleNotification, From: "dev", To: "lead"}, SendOptions{CooldownSeconds: 120})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if first.Status != "sent" {
		t.Fatalf("first status = %q, want sent", first.Status)
	}
	if second.Status != "suppressed" || second.Reason != "cooldown" {
		t.Fatalf("second = %+v, want suppressed/cooldown", second)
	}

	read, err := svc.Read("demo", "lead", false, 0, "")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if read.Count != 1 {
		t.Fatalf("lead inbox size = %d, want 1", read.Count)
	}
}

func TestAck_UnknownMessageReturnsNotFound(t *testing.T) {
	svc := New(t.TempDir())
	result, err := svc.Ack("demo", "dev", "msg_nonexistent")
	if err != nil {
		t.Fatalf("Ack() error = %v", err)
	}
	if result.Status != "not_found" {
		t.Fatalf("Ack() status = %q, want not_found", result.Status)
	}
}

func TestAck_WrongRecipientIsRejected(t *testing.T) {
	svc := New(t.TempDir())
	if _, err := svc.Send("demo", envelope.Envelope{ID: "msg_wr1", Type: envelope.TypeHandoff, From: "lead", To: "dev"}, SendOptions{}); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	result, err := svc.Ack("demo", "qa", "msg_wr1")
	if err != nil {
		t.Fatalf("Ack() error = %v", err)
	}
	if result.Status != "wrong_recipient" || result.Expected != "dev" {
		t.Fatalf("Ack() = %+v, want wrong_recipient/dev", result)
	}
}

func TestTrace_PaginationEquivalesForwardScan(t *testing.T) {
	svc := New(t.TempDir())
	for i := 0; i < 30; i++ {
		id := "msg_regression_" + strconv.Itoa(i)
		if _, err := svc.Send("demo", envelope.Envelope{
			ID: id, Type: envelope.TypeHandoff, From: "lead", To: "dev", TraceID: "trace_regression",
		}, SendOptions{}); err != nil {
			t.Fatalf("Send(%s) error = %v", id, err)
		}
	}

	full, err := svc.Trace("demo", "trace_regression", 0, "")
	if err != nil {
		t.Fatalf("Trace(limit=0) error = %v", err)
	}

	seen := map[string]bool{}
	var paginated []string
	cursor := ""
	for {
		page, err := svc.Trace("demo", "trace_regression", 7, cursor)
		if err != nil {
			t.Fatalf("Trace(limit=7) error = %v", err)
		}
		for _, evt := range page.Events {
			if seen[evt.ID] {
				t.Fatalf("duplicate event %s across pages", evt.ID)
			}
			seen[evt.ID] = true
			paginated = append(paginated, evt.ID)
		}
		if page.NextCursor == nil {
			break
		}
		cursor = *page.NextCursor
	}

	if len(paginated) != len(full.Events) {
		t.Fatalf("paginated count = %d, full count = %d", len(paginated), len(full.Events))
	}
	fullIDs := map[string]bool{}
	for _, evt := range full.Events {
		fullIDs[evt.ID] = true
	}
	for _, id := range paginated {
		if !fullIDs[id] {
			t.Errorf("paginated id %s not present in full scan", id)
		}
	}
}

func TestRehydrate_Fixpoint(t *testing.T) {
	svc := New(t.TempDir())
	if _, err := svc.Send("demo", envelope.Envelope{ID: "msg_rh1", Type: envelope.TypeHandoff, From: "lead", To: "dev"}, SendOptions{}); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if _, err := svc.Ack("demo", "dev", "msg_rh1"); err != nil {
		t.Fatalf("Ack() error = %v", err)
	}

	first, err := svc.Rehydrate("demo")
	if err != nil {
		t.Fatalf("Rehydrate() error = %v", err)
	}
	second, err := svc.Rehydrate("demo")
	if err != nil {
		t.Fatalf("Rehydrate() second call error = %v", err)
	}

	if first.Messages != second.Messages || first.Acks != second.Acks || first.TaskCount != second.TaskCount {
		t.Fatalf("rehydrate not a fixpoint: first=%+v second=%+v", first, second)
	}
}

// TestRehydrate_TaskSplitAcrossInboxesIsDeterministic assigns a task to one
// agent and replies from that agent back to the sender, so the task's two
// envelopes land in two different inboxes. Rehydrate scans inboxes
// concurrently, so repeated calls must still fold task_assign and
// task_update in chronological order regardless of which goroutine finishes
// first, or the update could be overwritten back to the stale assign state.
func TestRehydrate_TaskSplitAcrossInboxesIsDeterministic(t *testing.T) {
	dataRoot := t.TempDir()
	svc := New(dataRoot)

	if _, err := svc.Send("demo", envelope.Envelope{
		ID: "msg_split_assign", Type: envelope.TypeTaskAssign, From: "lead", To: "dev",
		TaskID: "task_split", Payload: map[string]any{"subject": "Build endpoint"},
	}, SendOptions{}); err != nil {
		t.Fatalf("Send(task_assign) error = %v", err)
	}
	if _, err := svc.Send("demo", envelope.Envelope{
		ID: "msg_split_update", Type: envelope.TypeTaskUpdate, From: "dev", To: "lead",
		TaskID: "task_split", Payload: map[string]any{"status": "blocked", "blocked": true, "note": "waiting on schema"},
	}, SendOptions{}); err != nil {
		t.Fatalf("Send(task_update) error = %v", err)
	}

	var snapshots []*store.TaskSnapshot
	for i := 0; i < 5; i++ {
		if _, err := svc.Rehydrate("demo"); err != nil {
			t.Fatalf("Rehydrate() call %d error = %v", i, err)
		}
		st, err := store.Open(dataRoot, "demo")
		if err != nil {
			t.Fatalf("store.Open() error = %v", err)
		}
		snap, err := st.ReadTaskSnapshot("task_split")
		if err != nil {
			t.Fatalf("ReadTaskSnapshot() error = %v", err)
		}
		snapshots = append(snapshots, snap)
	}

	for i, snap := range snapshots {
		if snap == nil {
			t.Fatalf("call %d: task_split snapshot missing", i)
		}
		if snap.Status != "blocked" {
			t.Errorf("call %d: status = %q, want blocked (task_update must win over the earlier task_assign)", i, snap.Status)
		}
		if !snap.Blocked {
			t.Errorf("call %d: blocked = false, want true", i)
		}
		if snap.Note != "waiting on schema" {
			t.Errorf("call %d: note = %q, want %q", i, snap.Note, "waiting on schema")
		}
		if snap.Owner != "dev" {
			t.Errorf("call %d: owner = %q, want dev", i, snap.Owner)
		}
		if *snap != *snapshots[0] {
			t.Fatalf("rehydrate not a fixpoint: call 0=%+v call %d=%+v", *snapshots[0], i, *snap)
		}
	}
}

func TestDoctorCheck_HealthyByDefault(t *testing.T) {
	svc := New(t.TempDir())
	if _, err := svc.Send("demo", envelope.Envelope{ID: "msg_dc1", Type: envelope.TypeHandoff, From: "lead", To: "dev"}, SendOptions{}); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	report, err := svc.DoctorCheck("demo", 100)
	if err != nil {
		t.Fatalf("DoctorCheck() error = %v", err)
	}
	if report.OverallStatus != "healthy" {
		t.Fatalf("DoctorCheck() overall = %q, want healthy: %+v", report.OverallStatus, report.Checks)
	}
	if report.ExitCode != 0 {
		t.Errorf("DoctorCheck() exit code = %d, want 0", report.ExitCode)
	}
}
