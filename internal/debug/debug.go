// Package debug collects diagnostics into a process-wide read-only buffer,
// falling back to raw stream output while the buffer registry is not up.
package debug

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/asdlei99/kakoune/internal/buffer"
)

// BufferName is the diagnostics buffer's registry name.
const BufferName = "*debug*"

// Sink writes diagnostics. The registry handle is optional: with a nil
// manager every write goes unbuffered to the raw stream, so diagnostics
// emitted before (or after) the registry's lifetime still reach the user.
type Sink struct {
	mgr *buffer.Manager
	raw io.Writer
}

// NewSink creates a sink over an optional registry handle.
func NewSink(mgr *buffer.Manager) *Sink {
	return &Sink{mgr: mgr, raw: os.Stderr}
}

// SetRaw replaces the fallback stream. Intended for tests.
func (s *Sink) SetRaw(w io.Writer) { s.raw = w }

// Write appends text to the debug buffer, creating it on first use. The
// buffer keeps a trailing empty line so a cursor parked at the end keeps
// scrolling with new messages. Never fails visibly: without a registry the
// text goes to the raw stream instead.
func (s *Sink) Write(text string) {
	if s.mgr == nil {
		io.WriteString(s.raw, text)
		io.WriteString(s.raw, "\n")
		return
	}

	eolBack := strings.HasSuffix(text, "\n")
	if buf, ok := s.mgr.Get(BufferName); ok {
		buf.SetFlags(buf.Flags().Without(buffer.FlagReadOnly))
		defer func() {
			buf.SetFlags(buf.Flags().With(buffer.FlagReadOnly))
		}()

		if !eolBack {
			text += "\n"
		}
		buf.Insert(buf.BackCoord(), text)
		return
	}

	line := text + "\n"
	if !eolBack {
		line = text + "\n\n"
	}
	// Created read-only up front; no flag toggling needed on this path.
	if _, err := s.mgr.Create(BufferName,
		buffer.FlagNoUndo|buffer.FlagDebug|buffer.FlagReadOnly,
		[]byte(line), time.Time{}); err != nil {
		io.WriteString(s.raw, text)
		io.WriteString(s.raw, "\n")
	}
}
