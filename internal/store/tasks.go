package store

import (
	"os"

	"github.com/fractalmind/teamchat-go/internal/errors"
	"github.com/fractalmind/teamchat-go/internal/fsutil"
	"github.com/fractalmind/teamchat-go/internal/identifier"
)

// TaskSnapshot is the last-writer-wins projection of task_assign/task_update
// traffic for one task.
type TaskSnapshot struct {
	TaskID         string `json:"task_id"`
	Owner          string `json:"owner,omitempty"`
	Status         string `json:"status,omitempty"`
	AssignedBy     string `json:"assigned_by,omitempty"`
	Subject        string `json:"subject,omitempty"`
	Details        string `json:"details,omitempty"`
	Progress       any    `json:"progress,omitempty"`
	ETA            string `json:"eta,omitempty"`
	Blocked        bool   `json:"blocked,omitempty"`
	Note           string `json:"note,omitempty"`
	TraceID        string `json:"trace_id,omitempty"`
	CreatedAt      string `json:"created_at,omitempty"`
	UpdatedAt      string `json:"updated_at,omitempty"`
	LastUpdateFrom string `json:"last_update_from,omitempty"`
}

// WriteTaskSnapshot atomically persists snap under its validated task id.
// There is no lock protecting this write: concurrent updates for the same
// task may race on the final JSON file, a tolerated race because the
// inbox log remains authoritative and rehydrate restores canonical state.
func (s *Store) WriteTaskSnapshot(snap TaskSnapshot) error {
	taskID, err := identifier.Validate("task_id", snap.TaskID)
	if err != nil {
		return err
	}
	snap.TaskID = taskID
	if err := fsutil.WriteJSONAtomic(s.taskSnapshotPath(taskID), snap); err != nil {
		return errors.NewStoreError("write task snapshot", err).WithTeam(s.team).WithOp("write_task_snapshot")
	}
	return nil
}

// ReadTaskSnapshot loads the snapshot for taskID, if it exists.
func (s *Store) ReadTaskSnapshot(taskID string) (*TaskSnapshot, error) {
	validID, err := identifier.Validate("task_id", taskID)
	if err != nil {
		return nil, err
	}
	path := s.taskSnapshotPath(validID)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	var snap TaskSnapshot
	if err := fsutil.ReadJSON(path, &snap); err != nil {
		return nil, errors.NewStoreError("read task snapshot", err).WithTeam(s.team).WithOp("read_task_snapshot")
	}
	return &snap, nil
}

// ListTaskSnapshots loads every task snapshot in this team.
func (s *Store) ListTaskSnapshots() ([]TaskSnapshot, error) {
	entries, err := os.ReadDir(s.tasksDir())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewStoreError("list task snapshots", err).WithTeam(s.team).WithOp("list_task_snapshots")
	}
	var snaps []TaskSnapshot
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		var snap TaskSnapshot
		if err := fsutil.ReadJSON(s.tasksDir()+"/"+e.Name(), &snap); err != nil {
			return nil, errors.NewStoreError("read task snapshot", err).WithTeam(s.team).WithOp("list_task_snapshots")
		}
		snaps = append(snaps, snap)
	}
	return snaps, nil
}

// ReplaceTaskSnapshots replaces the whole set of task snapshots, deleting
// any snapshot not present in snapshots and then writing each snapshot
// file atomically, one file at a time. Used by rehydrate.
func (s *Store) ReplaceTaskSnapshots(snapshots map[string]TaskSnapshot) error {
	existing, err := os.ReadDir(s.tasksDir())
	if err != nil && !os.IsNotExist(err) {
		return errors.NewStoreError("list task snapshots", err).WithTeam(s.team).WithOp("replace_task_snapshots")
	}
	keep := map[string]bool{}
	for id := range snapshots {
		keep[id+".json"] = true
	}
	for _, e := range existing {
		if e.IsDir() || keep[e.Name()] {
			continue
		}
		if err := os.Remove(s.tasksDir() + "/" + e.Name()); err != nil {
			return errors.NewStoreError("remove stale task snapshot", err).WithTeam(s.team).WithOp("replace_task_snapshots")
		}
	}
	for _, snap := range snapshots {
		if err := s.WriteTaskSnapshot(snap); err != nil {
			return err
		}
	}
	return nil
}
