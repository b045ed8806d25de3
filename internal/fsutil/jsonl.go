package fsutil

import (
	"bufio"
	"os"
	"path/filepath"

	"github.com/fractalmind/teamchat-go/internal/errors"
)

// AppendJSONL marshals v as a single compact, key-sorted JSON line and
// appends it to path in a single write call, creating the file and its
// parent directory if necessary. It returns the byte offset at which the
// line begins, so callers can record it in an index for O(1) re-reads.
func AppendJSONL(path string, v any) (offset int64, err error) {
	data, err := sortedJSON(v, "")
	if err != nil {
		return 0, errors.NewStoreError("marshal jsonl line", err).WithOp("append_jsonl")
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, errors.NewStoreError("create directory", err).WithOp("append_jsonl")
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, errors.NewStoreError("open for append", err).WithOp("append_jsonl")
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return 0, errors.NewStoreError("stat before append", err).WithOp("append_jsonl")
	}
	offset = info.Size()

	if _, err := f.Write(data); err != nil {
		return 0, errors.NewStoreError("write jsonl line", err).WithOp("append_jsonl")
	}
	return offset, nil
}

// MalformedLine describes a line that failed to parse, for diagnostics.
type MalformedLine struct {
	Path       string
	LineNumber int
	Reason     string
}

// ScanJSONL reads path line by line in forward order, calling visit for
// each successfully parsed line via unmarshalAndVisit. Malformed lines are
// skipped and reported through onMalformed (which may be nil). Returns nil,
// not an error, if the file does not exist.
func ScanJSONL(path string, unmarshalAndVisit func(line []byte) error, onMalformed func(MalformedLine)) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.NewStoreError("open jsonl", err).WithOp("scan_jsonl")
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := unmarshalAndVisit(line); err != nil {
			if onMalformed != nil {
				onMalformed(MalformedLine{Path: path, LineNumber: lineNo, Reason: err.Error()})
			}
			continue
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.NewStoreError("scan jsonl", err).WithOp("scan_jsonl")
	}
	return nil
}

// ReadAtOffset seeks to offset and reads a single line, returning its bytes
// without the trailing newline. Callers MUST verify the parsed record
// matches their expectation (e.g. its "id" field) and fall back to a linear
// scan otherwise, since offsets recorded by older index formats may be
// stale or absent.
func ReadAtOffset(path string, offset int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Seek(offset, 0); err != nil {
		return nil, errors.NewStoreError("seek to offset", err).WithOp("read_at_offset")
	}
	reader := bufio.NewReader(f)
	line, err := reader.ReadBytes('\n')
	if err != nil && len(line) == 0 {
		return nil, err
	}
	if n := len(line); n > 0 && line[n-1] == '\n' {
		line = line[:n-1]
	}
	return line, nil
}
