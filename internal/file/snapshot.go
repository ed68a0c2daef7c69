// Package file loads files into buffers: immutable snapshots, open and
// reload operations, and an external-modification watcher.
package file

import (
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Snapshot is an immutable capture of a file: decoded content plus the
// modification time observed at read. It is consumed once to seed or
// refresh a buffer and never retained.
type Snapshot struct {
	Data    []byte
	ModTime time.Time
}

// AccessError reports a file that could not be opened or read.
type AccessError struct {
	Path string
	Err  error
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("cannot access %q: %v", e.Path, e.Err)
}

func (e *AccessError) Unwrap() error { return e.Err }

// ReadSnapshot reads path fully into a Snapshot. Content with a UTF-8 or
// UTF-16 byte order mark is decoded to plain UTF-8.
func ReadSnapshot(path string) (Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return Snapshot{}, &AccessError{Path: path, Err: err}
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return Snapshot{}, &AccessError{Path: path, Err: err}
	}

	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	data, err := io.ReadAll(transform.NewReader(f, decoder))
	if err != nil {
		return Snapshot{}, &AccessError{Path: path, Err: err}
	}

	return Snapshot{Data: data, ModTime: st.ModTime()}, nil
}
