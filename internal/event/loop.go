// Package event implements the process-wide single-threaded event loop:
// a poll(2) based readiness multiplexer over file-descriptor watchers.
package event

import (
	"sync"

	"golang.org/x/sys/unix"
)

// Mode describes the dispatch mode a watcher callback is invoked under.
type Mode int

const (
	// ModeNormal is top-level dispatch from the loop.
	ModeNormal Mode = iota
	// ModeNested is dispatch occurring while another dispatch is still on
	// the stack, e.g. the loop being pumped from inside a hook handler.
	// Handlers that mutate state they also read across iterations must
	// ignore nested invocations.
	ModeNested
)

// Callback is invoked when a watched descriptor becomes readable.
type Callback func(w *FDWatcher, mode Mode)

// FDWatcher observes a file descriptor for read-readiness.
// The watcher does not own the descriptor; closing the descriptor is the
// registrant's responsibility.
type FDWatcher struct {
	fd      int
	onEvent Callback
	closed  bool
}

// FD returns the watched descriptor.
func (w *FDWatcher) FD() int { return w.fd }

// Close detaches the watcher from the loop. Safe to call from inside the
// watcher's own callback: the loop defers actual removal until the current
// dispatch pass returns, so nothing references the watcher afterwards.
func (w *FDWatcher) Close() { w.closed = true }

// Loop multiplexes FD watchers on a single goroutine. All Watch/RunOnce
// calls must happen on that goroutine; Post is the only cross-goroutine
// entry point.
type Loop struct {
	watchers []*FDWatcher
	depth    int

	// wakeR/wakeW form the self-pipe that makes Post interrupt a poll.
	wakeR, wakeW int

	postMu sync.Mutex
	posted []func()
	closed bool
}

// NewLoop creates a loop with its wakeup pipe.
func NewLoop() (*Loop, error) {
	var fds [2]int
	if err := unix.Pipe(fds[:]); err != nil {
		return nil, err
	}
	for _, fd := range fds {
		if err := unix.SetNonblock(fd, true); err != nil {
			unix.Close(fds[0])
			unix.Close(fds[1])
			return nil, err
		}
	}
	return &Loop{wakeR: fds[0], wakeW: fds[1]}, nil
}

// Watch registers fd for read-readiness callbacks.
func (l *Loop) Watch(fd int, cb Callback) *FDWatcher {
	w := &FDWatcher{fd: fd, onEvent: cb}
	l.watchers = append(l.watchers, w)
	return w
}

// Post schedules fn to run on the loop goroutine during the next RunOnce.
// Safe to call from any goroutine.
func (l *Loop) Post(fn func()) {
	l.postMu.Lock()
	if l.closed {
		l.postMu.Unlock()
		return
	}
	l.posted = append(l.posted, fn)
	l.postMu.Unlock()

	// Wake a blocked poll. A full pipe already guarantees wakeup.
	_, _ = unix.Write(l.wakeW, []byte{0})
}

// RunOnce waits up to timeoutMs (-1 blocks indefinitely) for readiness,
// dispatches ready watchers and posted functions, then prunes watchers
// closed during dispatch. Returns the number of callbacks dispatched.
func (l *Loop) RunOnce(timeoutMs int) (int, error) {
	pollfds := make([]unix.PollFd, 0, len(l.watchers)+1)
	pollfds = append(pollfds, unix.PollFd{Fd: int32(l.wakeR), Events: unix.POLLIN})
	live := make([]*FDWatcher, 0, len(l.watchers))
	for _, w := range l.watchers {
		if w.closed {
			continue
		}
		live = append(live, w)
		pollfds = append(pollfds, unix.PollFd{Fd: int32(w.fd), Events: unix.POLLIN})
	}

	n, err := unix.Poll(pollfds, timeoutMs)
	for err == unix.EINTR {
		n, err = unix.Poll(pollfds, timeoutMs)
	}
	if err != nil {
		return 0, err
	}
	if n == 0 {
		l.prune()
		return 0, nil
	}

	dispatched := 0
	if pollfds[0].Revents != 0 {
		l.drainWake()
		dispatched += l.runPosted()
	}
	for i, w := range live {
		if pollfds[i+1].Revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) == 0 {
			continue
		}
		if w.closed {
			continue
		}
		l.dispatch(w)
		dispatched++
	}

	l.prune()
	return dispatched, nil
}

// Readable reports whether fd is immediately readable, without blocking.
func Readable(fd int) bool {
	pollfds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
	n, err := unix.Poll(pollfds, 0)
	for err == unix.EINTR {
		n, err = unix.Poll(pollfds, 0)
	}
	if err != nil || n == 0 {
		return false
	}
	return pollfds[0].Revents&(unix.POLLIN|unix.POLLHUP) != 0
}

// Close releases the wakeup pipe. Watchers still registered are dropped;
// their descriptors are left to their owners.
func (l *Loop) Close() {
	l.postMu.Lock()
	l.closed = true
	l.posted = nil
	l.postMu.Unlock()

	unix.Close(l.wakeR)
	unix.Close(l.wakeW)
	l.watchers = nil
}

func (l *Loop) dispatch(w *FDWatcher) {
	mode := ModeNormal
	if l.depth > 0 {
		mode = ModeNested
	}
	l.depth++
	defer func() { l.depth-- }()
	w.onEvent(w, mode)
}

func (l *Loop) runPosted() int {
	l.postMu.Lock()
	fns := l.posted
	l.posted = nil
	l.postMu.Unlock()

	for _, fn := range fns {
		l.depth++
		fn()
		l.depth--
	}
	return len(fns)
}

func (l *Loop) drainWake() {
	var buf [64]byte
	for {
		n, err := unix.Read(l.wakeR, buf[:])
		if n <= 0 || err != nil {
			return
		}
	}
}

func (l *Loop) prune() {
	kept := l.watchers[:0]
	for _, w := range l.watchers {
		if !w.closed {
			kept = append(kept, w)
		}
	}
	l.watchers = kept
}
