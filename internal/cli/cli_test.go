package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

// runCLI executes the root command with args against a fresh output
// buffer and returns (stdout, error). It resets viper between runs so one
// test's flags can't leak into the next.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	viper.Reset()

	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), err
}

func TestSendReadAckStatusFlow(t *testing.T) {
	dataRoot := t.TempDir()

	if _, err := runCLI(t, "init", "--data-root", dataRoot, "demo", "lead", "dev", "qa"); err != nil {
		t.Fatalf("init: %v", err)
	}

	out, err := runCLI(t, "send", "--data-root", dataRoot, "--json",
		"--team", "demo", "--type", "task_assign", "--from", "lead", "--to", "dev",
		"--task-id", "task_1", "--trace-id", "trace_1", "--payload", `{"subject":"Build endpoint"}`)
	if err != nil {
		t.Fatalf("send: %v (%s)", err, out)
	}
	var sendOut struct {
		Status  string `json:"status"`
		Message struct {
			ID string `json:"id"`
		} `json:"message"`
	}
	if err := json.Unmarshal([]byte(out), &sendOut); err != nil {
		t.Fatalf("send output not JSON: %v (%s)", err, out)
	}
	if sendOut.Status != "sent" {
		t.Fatalf("send status = %q, want sent", sendOut.Status)
	}

	out, err = runCLI(t, "read", "--data-root", dataRoot, "--json", "--team", "demo", "--agent", "dev", "--unread", "--limit", "20")
	if err != nil {
		t.Fatalf("read: %v (%s)", err, out)
	}
	var readOut struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal([]byte(out), &readOut); err != nil {
		t.Fatalf("read output not JSON: %v (%s)", err, out)
	}
	if readOut.Count != 1 {
		t.Fatalf("read count = %d, want 1", readOut.Count)
	}

	out, err = runCLI(t, "ack", "--data-root", dataRoot, "--json", "--team", "demo", "--agent", "dev", "--id", sendOut.Message.ID)
	if err != nil {
		t.Fatalf("ack: %v (%s)", err, out)
	}
	var ackOut struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal([]byte(out), &ackOut); err != nil {
		t.Fatalf("ack output not JSON: %v (%s)", err, out)
	}
	if ackOut.Status != "acked" {
		t.Fatalf("ack status = %q, want acked", ackOut.Status)
	}

	out, err = runCLI(t, "read", "--data-root", dataRoot, "--json", "--team", "demo", "--agent", "dev", "--unread")
	if err != nil {
		t.Fatalf("read after ack: %v (%s)", err, out)
	}
	if err := json.Unmarshal([]byte(out), &readOut); err != nil {
		t.Fatalf("read output not JSON: %v (%s)", err, out)
	}
	if readOut.Count != 0 {
		t.Fatalf("unread count after ack = %d, want 0", readOut.Count)
	}

	out, err = runCLI(t, "status", "--data-root", dataRoot, "--json", "--team", "demo")
	if err != nil {
		t.Fatalf("status: %v (%s)", err, out)
	}
	var statusOut struct {
		Members []string `json:"members"`
	}
	if err := json.Unmarshal([]byte(out), &statusOut); err != nil {
		t.Fatalf("status output not JSON: %v (%s)", err, out)
	}
	if len(statusOut.Members) != 3 {
		t.Fatalf("status members = %v, want 3 entries", statusOut.Members)
	}
}

func TestSend_MissingDataRoot(t *testing.T) {
	_, err := runCLI(t, "send", "--team", "demo", "--type", "handoff", "--from", "a", "--to", "b")
	if err == nil {
		t.Fatal("expected error when --data-root is not supplied")
	}
	if ExitCodeForError(err) != ExitCallerError {
		t.Errorf("ExitCodeForError() = %d, want %d", ExitCodeForError(err), ExitCallerError)
	}
}

func TestInit_RejectsPathTraversal(t *testing.T) {
	dataRoot := t.TempDir()
	_, err := runCLI(t, "init", "--data-root", dataRoot, "../escape")
	if err == nil {
		t.Fatal("expected error for path-traversing team name")
	}
}

func TestDoctorCheck_HealthyTeamExitsSuccess(t *testing.T) {
	dataRoot := t.TempDir()
	if _, err := runCLI(t, "init", "--data-root", dataRoot, "demo", "dev"); err != nil {
		t.Fatalf("init: %v", err)
	}

	out, err := runCLI(t, "doctor", "check", "--data-root", dataRoot, "--json", "--team", "demo")
	if err != nil {
		t.Fatalf("doctor check on a healthy team: %v (%s)", err, out)
	}
	if ExitCodeForError(err) != ExitSuccess {
		t.Errorf("ExitCodeForError() = %d, want %d", ExitCodeForError(err), ExitSuccess)
	}
	if !strings.Contains(out, `"overall_status": "healthy"`) {
		t.Errorf("doctor check output = %s, want overall_status healthy", out)
	}
}

func TestRehydrateAndTrace(t *testing.T) {
	dataRoot := t.TempDir()
	if _, err := runCLI(t, "init", "--data-root", dataRoot, "demo", "lead", "dev"); err != nil {
		t.Fatalf("init: %v", err)
	}
	if _, err := runCLI(t, "task-assign", "--data-root", dataRoot, "--team", "demo",
		"--from", "lead", "--to", "dev", "--task-id", "task_1", "--trace-id", "trace_1"); err != nil {
		t.Fatalf("task-assign: %v", err)
	}

	out, err := runCLI(t, "rehydrate", "--data-root", dataRoot, "--json", "--team", "demo")
	if err != nil {
		t.Fatalf("rehydrate: %v (%s)", err, out)
	}
	var rehydrateOut struct {
		Messages int `json:"messages"`
	}
	if err := json.Unmarshal([]byte(out), &rehydrateOut); err != nil {
		t.Fatalf("rehydrate output not JSON: %v (%s)", err, out)
	}
	if rehydrateOut.Messages != 1 {
		t.Fatalf("rehydrate messages = %d, want 1", rehydrateOut.Messages)
	}

	out, err = runCLI(t, "trace", "--data-root", dataRoot, "--json", "--team", "demo", "--trace-id", "trace_1")
	if err != nil {
		t.Fatalf("trace: %v (%s)", err, out)
	}
	var traceOut struct {
		Events []map[string]any `json:"events"`
	}
	if err := json.Unmarshal([]byte(out), &traceOut); err != nil {
		t.Fatalf("trace output not JSON: %v (%s)", err, out)
	}
	if len(traceOut.Events) == 0 {
		t.Fatal("expected at least one event for trace_1")
	}
}
