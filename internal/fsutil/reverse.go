package fsutil

import (
	"bytes"
	"io"
	"os"

	"github.com/fractalmind/teamchat-go/internal/errors"
)

// reverseChunkSize is the amount read per backward seek. Chosen to cover a
// few hundred typical envelope lines per chunk without reading whole
// multi-megabyte logs into memory up front.
const reverseChunkSize = 64 * 1024

// ReverseLines reads path from the end backward, yielding complete lines
// newest-first. visit is called once per line (without its trailing
// newline); returning false from visit stops iteration early. Malformed
// lines are not filtered here — that is the caller's job via its own
// unmarshal step, since this reader only knows about bytes.
func ReverseLines(path string, visit func(line []byte) (cont bool, err error)) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.NewStoreError("open for reverse read", err).WithOp("reverse_lines")
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return errors.NewStoreError("stat for reverse read", err).WithOp("reverse_lines")
	}

	pos := info.Size()
	var pending []byte // bytes read so far that haven't yet formed a complete line, prefix side

	for pos > 0 {
		chunkLen := int64(reverseChunkSize)
		if chunkLen > pos {
			chunkLen = pos
		}
		start := pos - chunkLen

		buf := make([]byte, chunkLen)
		if _, err := f.ReadAt(buf, start); err != nil && err != io.EOF {
			return errors.NewStoreError("read chunk", err).WithOp("reverse_lines")
		}
		pos = start

		// Prepend this chunk to whatever partial line we were carrying.
		buf = append(buf, pending...)
		pending = nil

		// The chunk may begin mid-line; only the first split-off fragment
		// (before the first newline we encounter) is incomplete UNLESS
		// pos == 0, in which case it is a complete final fragment.
		lines := bytes.Split(buf, []byte("\n"))

		// lines[0] is a prefix fragment that continues into the previous
		// (earlier) chunk, unless we've reached the start of the file.
		firstComplete := 0
		if pos > 0 {
			pending = lines[0]
			firstComplete = 1
		}

		for i := len(lines) - 1; i >= firstComplete; i-- {
			line := lines[i]
			if len(line) == 0 {
				continue
			}
			cont, err := visit(line)
			if err != nil {
				return err
			}
			if !cont {
				return nil
			}
		}
	}

	return nil
}
