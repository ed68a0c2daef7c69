package buffer

import (
	"time"

	"github.com/asdlei99/kakoune/internal/hook"
)

// Manager is the buffer registry: buffers are created through it, looked up
// by name, and share its hook registry.
type Manager struct {
	buffers []*Buffer
	byName  map[string]*Buffer
	hooks   *hook.Registry
}

// NewManager creates an empty registry with a fresh hook registry.
func NewManager() *Manager {
	return &Manager{
		byName: make(map[string]*Buffer),
		hooks:  hook.NewRegistry(),
	}
}

// Hooks returns the registry shared by all managed buffers.
func (m *Manager) Hooks() *hook.Registry { return m.hooks }

// Create registers a new buffer seeded with data.
// Names are unique; creating a duplicate returns ErrBufferExists.
func (m *Manager) Create(name string, flags Flags, data []byte, modTime time.Time) (*Buffer, error) {
	if _, ok := m.byName[name]; ok {
		return nil, ErrBufferExists
	}

	b := New(name, flags, data, modTime)
	b.SetHooks(m.hooks)
	m.buffers = append(m.buffers, b)
	m.byName[name] = b
	return b, nil
}

// Get returns the buffer registered under name, if present.
func (m *Manager) Get(name string) (*Buffer, bool) {
	b, ok := m.byName[name]
	return b, ok
}

// Exists reports whether a buffer is registered under name.
func (m *Manager) Exists(name string) bool {
	_, ok := m.byName[name]
	return ok
}

// Remove unregisters a buffer and clears its value store, destroying any
// owned resources (such as an attached fifo watcher).
func (m *Manager) Remove(name string) bool {
	b, ok := m.byName[name]
	if !ok {
		return false
	}
	delete(m.byName, name)
	for i, cur := range m.buffers {
		if cur == b {
			m.buffers = append(m.buffers[:i], m.buffers[i+1:]...)
			break
		}
	}
	b.Values().Clear()
	return true
}

// List returns the managed buffers in creation order.
func (m *Manager) List() []*Buffer {
	out := make([]*Buffer, len(m.buffers))
	copy(out, m.buffers)
	return out
}
