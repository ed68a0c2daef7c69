// Package hook provides the named-notification registry buffers dispatch
// into. A hook is a name plus a string parameter; handlers are registered
// per hook name and run synchronously, ordered by priority.
package hook

import (
	"sort"
	"sync"
)

// Hook names fired by the buffer core.
const (
	// BufOpenFifo fires when a fifo is attached to a buffer.
	// Param is the buffer name.
	BufOpenFifo = "BufOpenFifo"

	// BufReadFifo fires after a fifo drain appended content.
	// Param is the appended range as "line.col,line.col" (1-based bytes).
	BufReadFifo = "BufReadFifo"

	// BufCloseFifo fires when the fifo reaches end of stream.
	// Param is empty.
	BufCloseFifo = "BufCloseFifo"

	// BufNewFile fires when open-or-create registers a buffer for a
	// path that does not exist yet. Param is the path.
	BufNewFile = "BufNewFile"

	// BufOpenFile fires when a file is read into a new buffer.
	// Param is the path.
	BufOpenFile = "BufOpenFile"

	// BufReload fires after a file buffer is re-read from disk.
	// Param is the path.
	BufReload = "BufReload"

	// BufFileChanged fires when the on-disk file backing a buffer is
	// newer than the buffer's recorded modification time.
	// Param is the path.
	BufFileChanged = "BufFileChanged"
)

// Event carries a hook invocation to handlers.
type Event struct {
	// Hook is the hook name (one of the Buf* constants).
	Hook string

	// Param is the hook payload.
	Param string

	// Buffer is the name of the buffer the hook ran in.
	Buffer string
}

// Func handles a hook event.
type Func func(Event)

type entry struct {
	name     string
	priority int
	fn       Func
}

// Registry manages hook handlers with priority-based ordering.
// Handlers with higher priority run first.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string][]entry
}

// NewRegistry creates an empty hook registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string][]entry)}
}

// Add registers a handler for the given hook name. Registering the same
// handler name again replaces the previous handler.
func (r *Registry) Add(hookName, handlerName string, priority int, fn Func) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.handlers[hookName]
	for i, e := range list {
		if e.name == handlerName {
			list[i] = entry{name: handlerName, priority: priority, fn: fn}
			r.sortLocked(hookName, list)
			return
		}
	}

	list = append(list, entry{name: handlerName, priority: priority, fn: fn})
	r.sortLocked(hookName, list)
}

// Remove unregisters a handler by name. Returns true if it existed.
func (r *Registry) Remove(hookName, handlerName string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.handlers[hookName]
	for i, e := range list {
		if e.name == handlerName {
			r.handlers[hookName] = append(list[:i], list[i+1:]...)
			return true
		}
	}
	return false
}

// Run dispatches ev to every handler registered for ev.Hook, in priority
// order. Handlers run synchronously on the caller's goroutine.
func (r *Registry) Run(ev Event) {
	r.mu.RLock()
	list := make([]entry, len(r.handlers[ev.Hook]))
	copy(list, r.handlers[ev.Hook])
	r.mu.RUnlock()

	for _, e := range list {
		e.fn(ev)
	}
}

// Count returns the number of handlers registered for a hook name.
func (r *Registry) Count(hookName string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers[hookName])
}

// Clear removes all handlers.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers = make(map[string][]entry)
}

func (r *Registry) sortLocked(hookName string, list []entry) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].priority > list[j].priority
	})
	r.handlers[hookName] = list
}
