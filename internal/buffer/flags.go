package buffer

import "strings"

// Flags is a bitset of independent buffer attributes.
type Flags uint8

const (
	// FlagFile marks a buffer backed by a file on disk.
	FlagFile Flags = 1 << iota
	// FlagNew marks a file buffer whose path does not exist yet.
	FlagNew
	// FlagFifo marks a buffer fed by a fifo watcher.
	FlagFifo
	// FlagNoUndo marks a buffer whose edits are not undoable.
	FlagNoUndo
	// FlagReadOnly marks a buffer that refuses user edits.
	FlagReadOnly
	// FlagDebug marks the diagnostics buffer.
	FlagDebug

	// FlagNone is the empty flag set.
	FlagNone Flags = 0
)

// Has reports whether all bits in f are set.
func (fl Flags) Has(f Flags) bool {
	return fl&f == f
}

// With returns fl with the bits in f set.
func (fl Flags) With(f Flags) Flags {
	return fl | f
}

// Without returns fl with the bits in f cleared.
func (fl Flags) Without(f Flags) Flags {
	return fl &^ f
}

// String returns a pipe-separated list of set flag names.
func (fl Flags) String() string {
	if fl == FlagNone {
		return "none"
	}

	var names []string
	for _, f := range []struct {
		flag Flags
		name string
	}{
		{FlagFile, "file"},
		{FlagNew, "new"},
		{FlagFifo, "fifo"},
		{FlagNoUndo, "noundo"},
		{FlagReadOnly, "readonly"},
		{FlagDebug, "debug"},
	} {
		if fl.Has(f.flag) {
			names = append(names, f.name)
		}
	}
	return strings.Join(names, "|")
}
