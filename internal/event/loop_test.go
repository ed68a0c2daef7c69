package event

import (
	"testing"

	"golang.org/x/sys/unix"
)

func makePipe(t *testing.T) (r, w int) {
	t.Helper()
	var fds [2]int
	if err := unix.Pipe(fds[:]); err != nil {
		t.Fatalf("pipe: %v", err)
	}
	if err := unix.SetNonblock(fds[0], true); err != nil {
		t.Fatalf("nonblock: %v", err)
	}
	t.Cleanup(func() {
		unix.Close(fds[0])
		unix.Close(fds[1])
	})
	return fds[0], fds[1]
}

func newTestLoop(t *testing.T) *Loop {
	t.Helper()
	l, err := NewLoop()
	if err != nil {
		t.Fatalf("NewLoop: %v", err)
	}
	t.Cleanup(l.Close)
	return l
}

func TestWatcherFiresOnReadable(t *testing.T) {
	l := newTestLoop(t)
	r, w := makePipe(t)

	fired := 0
	l.Watch(r, func(fw *FDWatcher, mode Mode) {
		fired++
		if mode != ModeNormal {
			t.Errorf("expected normal mode, got %v", mode)
		}
		var buf [16]byte
		unix.Read(fw.FD(), buf[:])
	})

	unix.Write(w, []byte("hi"))

	if _, err := l.RunOnce(1000); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if fired != 1 {
		t.Errorf("watcher fired %d times, want 1", fired)
	}
}

func TestRunOnceTimeout(t *testing.T) {
	l := newTestLoop(t)
	r, _ := makePipe(t)
	l.Watch(r, func(*FDWatcher, Mode) { t.Error("no data, should not fire") })

	n, err := l.RunOnce(0)
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if n != 0 {
		t.Errorf("dispatched %d, want 0", n)
	}
}

func TestNestedDispatchMode(t *testing.T) {
	l := newTestLoop(t)
	r, w := makePipe(t)

	var modes []Mode
	l.Watch(r, func(fw *FDWatcher, mode Mode) {
		modes = append(modes, mode)
		var buf [16]byte
		unix.Read(fw.FD(), buf[:])
		if len(modes) == 1 {
			// Pump the loop from inside the handler; the next dispatch
			// must be flagged as nested.
			unix.Write(w, []byte("y"))
			l.RunOnce(1000)
		}
	})

	unix.Write(w, []byte("x"))
	if _, err := l.RunOnce(1000); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	if len(modes) != 2 {
		t.Fatalf("expected 2 dispatches, got %d", len(modes))
	}
	if modes[0] != ModeNormal || modes[1] != ModeNested {
		t.Errorf("modes = %v, want [normal nested]", modes)
	}
}

func TestCloseFromOwnCallbackDefersRemoval(t *testing.T) {
	l := newTestLoop(t)
	r, w := makePipe(t)

	fired := 0
	l.Watch(r, func(fw *FDWatcher, _ Mode) {
		fired++
		var buf [16]byte
		unix.Read(fw.FD(), buf[:])
		fw.Close()
	})

	unix.Write(w, []byte("x"))
	if _, err := l.RunOnce(1000); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	// Watcher is gone; further data must not fire it.
	unix.Write(w, []byte("y"))
	if _, err := l.RunOnce(0); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if fired != 1 {
		t.Errorf("watcher fired %d times after close, want 1", fired)
	}
}

func TestPostRunsOnLoop(t *testing.T) {
	l := newTestLoop(t)

	done := make(chan struct{})
	ran := false
	go func() {
		l.Post(func() { ran = true })
		close(done)
	}()
	<-done

	if _, err := l.RunOnce(1000); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if !ran {
		t.Error("posted function did not run")
	}
}

func TestReadable(t *testing.T) {
	r, w := makePipe(t)

	if Readable(r) {
		t.Error("empty pipe reported readable")
	}
	unix.Write(w, []byte("x"))
	if !Readable(r) {
		t.Error("pipe with data reported not readable")
	}
}

func TestReadableAfterWriterClose(t *testing.T) {
	var fds [2]int
	if err := unix.Pipe(fds[:]); err != nil {
		t.Fatalf("pipe: %v", err)
	}
	defer unix.Close(fds[0])

	unix.Close(fds[1])
	// EOF counts as readable so the reader can observe the close.
	if !Readable(fds[0]) {
		t.Error("pipe at EOF reported not readable")
	}
}
