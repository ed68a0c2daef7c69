// Package fifo ingests continuously-appending streams into buffers.
//
// A fifo buffer owns exactly one Watcher, stored in its value store; the
// key's presence is the watcher's lifetime signal. The watcher drains the
// descriptor in bounded chunks on each readiness notification, so a fast
// producer cannot starve other event sources, and destroys itself by
// erasing its own key at end of stream.
package fifo

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sys/unix"

	"github.com/asdlei99/kakoune/internal/buffer"
	"github.com/asdlei99/kakoune/internal/event"
	"github.com/asdlei99/kakoune/internal/hook"
	"github.com/asdlei99/kakoune/internal/logging"
)

const (
	// defaultChunkSize is the read size per attempt.
	defaultChunkSize = 2048
	// defaultMaxReads bounds read attempts per readiness notification.
	// If data arrives faster than it is consumed, stopping after this
	// many reads returns control to the event loop so other sources
	// (such as user input) are still serviced.
	defaultMaxReads = 16
)

// WatcherKey locates a buffer's fifo watcher in its value store.
var WatcherKey = buffer.NewValueID()

// Option adjusts ingestion limits.
type Option func(*Watcher)

// WithChunkSize sets the per-read chunk size.
func WithChunkSize(n int) Option {
	return func(w *Watcher) {
		if n > 0 {
			w.chunkSize = n
		}
	}
}

// WithMaxReads sets the read-attempt bound per readiness notification.
func WithMaxReads(n int) Option {
	return func(w *Watcher) {
		if n > 0 {
			w.maxReads = n
		}
	}
}

// Watcher owns a readable descriptor bound to a buffer. It is stored in
// the buffer's value store under WatcherKey and destroyed by erasing that
// key.
type Watcher struct {
	buf       *buffer.Buffer
	fd        int
	scroll    bool
	fdw       *event.FDWatcher
	chunkSize int
	maxReads  int
	log       *log.Logger
}

// Start binds fd to the buffer named name and begins ingesting.
//
// If a buffer with that name already exists it is reused: its content is
// reset and Fifo|NoUndo set, instead of creating a duplicate. Either way a
// Watcher is attached, replacing (and destroying) any previous one, and
// the BufOpenFifo hook fires in the buffer's context.
func Start(mgr *buffer.Manager, loop *event.Loop, name string, fd int, flags buffer.Flags, scroll bool, opts ...Option) *buffer.Buffer {
	buf, ok := mgr.Get(name)
	if ok {
		buf.SetFlags(buf.Flags() | buffer.FlagNoUndo | flags)
		buf.Reload(nil, time.Time{})
	} else {
		var err error
		buf, err = mgr.Create(name, flags|buffer.FlagFifo|buffer.FlagNoUndo, nil, time.Time{})
		if err != nil {
			// Unreachable: existence was checked above, and the loop
			// goroutine is the only creator.
			panic(err)
		}
	}

	w := &Watcher{
		buf:       buf,
		fd:        fd,
		scroll:    scroll,
		chunkSize: defaultChunkSize,
		maxReads:  defaultMaxReads,
		log:       logging.Component("fifo").With("buffer", name),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.fdw = loop.Watch(fd, func(_ *event.FDWatcher, mode event.Mode) {
		// Nested dispatch would re-enter the read loop from inside a
		// hook handler and corrupt its bookkeeping.
		if mode == event.ModeNormal {
			w.read()
		}
	})

	buf.Values().Set(WatcherKey, w)
	buf.SetFlags(flags | buffer.FlagFifo | buffer.FlagNoUndo)
	buf.RunHook(hook.BufOpenFifo, buf.Name())

	return buf
}

// read drains the descriptor, bounded to maxReads chunks of chunkSize
// bytes, and fires BufReadFifo if anything was appended.
func (w *Watcher) read() {
	if !w.buf.Flags().Has(buffer.FlagFifo) {
		panic("fifo read on a buffer without the fifo flag")
	}

	closed := false
	insertCoord := w.buf.BackCoord()
	data := make([]byte, w.chunkSize)

	for loop := 0; ; {
		n, err := unix.Read(w.fd, data)
		if err == unix.EINTR || err == unix.EAGAIN {
			break
		}
		if n <= 0 || err != nil {
			closed = true
			break
		}

		pos := w.buf.BackCoord()
		// When the insertion point is the very first position and
		// auto-scroll is off, insert after a synthetic first position
		// and drop the original first line, keeping line one visible.
		preventScroll := pos == (buffer.Coord{}) && !w.scroll
		if preventScroll {
			pos = w.buf.Next(pos)
		}

		w.buf.Insert(pos, string(data[:n]))

		if preventScroll {
			w.buf.Erase(buffer.Coord{}, w.buf.Next(buffer.Coord{}))
			// In the other case the buffer has already inserted a
			// newline to keep its trailing-newline invariant.
			if data[n-1] == '\n' {
				w.buf.Insert(w.buf.EndCoord(), "\n")
			}
		}

		loop++
		if loop >= w.maxReads || !event.Readable(w.fd) {
			break
		}
	}

	if back := w.buf.BackCoord(); insertCoord != back {
		w.buf.RunHook(hook.BufReadFifo, rangeDesc(insertCoord, back))
	}

	if closed {
		w.log.Debug("end of stream")
		w.buf.Values().Erase(WatcherKey) // destroys this watcher
	}
}

// Destroy releases the descriptor, fires BufCloseFifo and clears the fifo
// flags. Called by the value store when the WatcherKey entry is erased;
// the event-loop watcher is detached and pruned after the current dispatch
// returns.
func (w *Watcher) Destroy() {
	if !w.buf.Flags().Has(buffer.FlagFifo) {
		panic("fifo watcher destroyed on a buffer without the fifo flag")
	}

	w.fdw.Close()
	unix.Close(w.fd)
	w.buf.RunHook(hook.BufCloseFifo, "")
	w.buf.SetFlags(w.buf.Flags().Without(buffer.FlagFifo | buffer.FlagNoUndo))
}

// rangeDesc renders a coordinate range in the 1-based "line.col,line.col"
// byte-selection notation used for hook payloads.
func rangeDesc(anchor, cursor buffer.Coord) string {
	return fmt.Sprintf("%s,%s", anchor, cursor)
}
