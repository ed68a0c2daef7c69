package file

import (
	"os"
	"time"

	"github.com/asdlei99/kakoune/internal/buffer"
	"github.com/asdlei99/kakoune/internal/hook"
)

// Open reads path into a snapshot and registers a new buffer tagged
// FlagFile plus flags, seeded with the snapshot's content and modification
// time. Returns an AccessError if the file cannot be read.
func Open(mgr *buffer.Manager, path string, flags buffer.Flags) (*buffer.Buffer, error) {
	snap, err := ReadSnapshot(path)
	if err != nil {
		return nil, err
	}

	buf, err := mgr.Create(path, buffer.FlagFile|flags, snap.Data, snap.ModTime)
	if err != nil {
		return nil, err
	}
	buf.RunHook(hook.BufOpenFile, path)
	return buf, nil
}

// OpenOrCreate behaves like Open when path exists. A nonexistent path is a
// normal branch, not an error: the buffer is registered empty, tagged
// FlagFile|FlagNew, with no modification time.
func OpenOrCreate(mgr *buffer.Manager, path string, flags buffer.Flags) (*buffer.Buffer, error) {
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return nil, &AccessError{Path: path, Err: err}
		}
		buf, err := mgr.Create(path, buffer.FlagFile|buffer.FlagNew|flags, nil, time.Time{})
		if err != nil {
			return nil, err
		}
		buf.RunHook(hook.BufNewFile, path)
		return buf, nil
	}
	return Open(mgr, path, flags)
}

// Reload re-reads the buffer's backing file, replacing content and
// modification time and clearing FlagNew. Calling it on a buffer without
// FlagFile is a programming error and panics.
func Reload(buf *buffer.Buffer) error {
	if !buf.Flags().Has(buffer.FlagFile) {
		panic("reload on a non-file buffer")
	}

	snap, err := ReadSnapshot(buf.Name())
	if err != nil {
		return err
	}

	buf.Reload(snap.Data, snap.ModTime)
	buf.SetFlags(buf.Flags().Without(buffer.FlagNew))
	buf.RunHook(hook.BufReload, buf.Name())
	return nil
}
