package file

import (
	"os"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/asdlei99/kakoune/internal/buffer"
	"github.com/asdlei99/kakoune/internal/event"
	"github.com/asdlei99/kakoune/internal/hook"
	"github.com/asdlei99/kakoune/internal/logging"
)

// Watcher observes the on-disk files backing buffers and fires a
// BufFileChanged hook when a file is newer than the buffer's recorded
// modification time. fsnotify delivers on its own goroutine; events are
// posted onto the event loop so hooks run in loop context.
type Watcher struct {
	mu      sync.Mutex
	fw      *fsnotify.Watcher
	mgr     *buffer.Manager
	loop    *event.Loop
	watched map[string]bool
	closed  bool
	log     *log.Logger
}

// NewWatcher starts a watcher delivering into loop.
func NewWatcher(mgr *buffer.Manager, loop *event.Loop) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fw:      fw,
		mgr:     mgr,
		loop:    loop,
		watched: make(map[string]bool),
		log:     logging.Component("filewatch"),
	}
	go w.run()
	return w, nil
}

// Add watches the file backing buf. The buffer must carry FlagFile.
func (w *Watcher) Add(buf *buffer.Buffer) error {
	if !buf.Flags().Has(buffer.FlagFile) {
		panic("watching a non-file buffer")
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed || w.watched[buf.Name()] {
		return nil
	}
	if err := w.fw.Add(buf.Name()); err != nil {
		return err
	}
	w.watched[buf.Name()] = true
	return nil
}

// Remove stops watching the file backing buf.
func (w *Watcher) Remove(buf *buffer.Buffer) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.watched[buf.Name()] {
		return
	}
	delete(w.watched, buf.Name())
	_ = w.fw.Remove(buf.Name())
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
	return w.fw.Close()
}

func (w *Watcher) run() {
	for {
		select {
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			path := ev.Name
			w.loop.Post(func() { w.check(path) })
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", "err", err)
		}
	}
}

// check runs on the loop goroutine.
func (w *Watcher) check(path string) {
	buf, ok := w.mgr.Get(path)
	if !ok {
		return
	}

	st, err := os.Stat(path)
	if err != nil || buf.ModTime().IsZero() || st.ModTime().After(buf.ModTime()) {
		w.log.Debug("file changed on disk", "path", path)
		buf.RunHook(hook.BufFileChanged, path)
	}
}
