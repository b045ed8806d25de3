// Package fsutil provides the low-level, lock-free file primitives the team
// store is built on: atomic JSON writes (temp file + rename), JSONL append
// with offset capture, a chunked reverse JSONL reader for cursor-based
// pagination, and a byte-offset reader for the index fast path.
//
// None of these primitives serialize concurrent writers themselves — that is
// the named lock manager's job (internal/lock). fsutil only guarantees that
// a single writer's operation is atomic and that readers never observe a
// partially written file.
package fsutil

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/fractalmind/teamchat-go/internal/errors"
)

// sortedJSON round-trips v through an untyped representation so that object
// keys are serialized in sorted order regardless of struct field order, as
// required by the wire format (§6: "keys sorted").
func sortedJSON(v any, indent string) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}
	if indent == "" {
		return json.Marshal(generic)
	}
	return json.MarshalIndent(generic, "", indent)
}

// WriteJSONAtomic writes v to path as pretty-printed (indent 2), key-sorted
// JSON with a trailing newline, via a temp file in the same directory
// followed by a rename. The temp file name carries the process PID and a
// random token so concurrent writers never collide.
func WriteJSONAtomic(path string, v any) error {
	data, err := sortedJSON(v, "  ")
	if err != nil {
		return errors.NewStoreError("marshal json", err).WithOp("write_json_atomic")
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.NewStoreError("create directory", err).WithOp("write_json_atomic")
	}

	tmp := filepath.Join(dir, fmt.Sprintf(".%s.tmp.%d.%x", filepath.Base(path), os.Getpid(), rand.Uint64()))
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.NewStoreError("write temp file", err).WithOp("write_json_atomic")
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return errors.NewStoreError("rename temp file", err).WithOp("write_json_atomic")
	}
	return nil
}

// ReadJSON reads and unmarshals the JSON file at path into v. It returns
// os.ErrNotExist (wrapped) if the file does not exist so callers can use
// errors.Is(err, os.ErrNotExist).
func ReadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
