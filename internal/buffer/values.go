package buffer

import "sync/atomic"

// ValueID is a small stable key into a buffer's value store.
// Allocate with NewValueID at package init time.
type ValueID int32

var nextValueID atomic.Int32

// NewValueID allocates a fresh value store key.
func NewValueID() ValueID {
	return ValueID(nextValueID.Add(1))
}

// Destroyer is implemented by owned resources stored in a value store.
// Destroy is called exactly once, when the value is erased or replaced.
type Destroyer interface {
	Destroy()
}

// ValueStore maps ValueIDs to owned values. Erasing a key destroys the
// value it held; key presence is the resource's sole lifetime signal.
type ValueStore struct {
	values map[ValueID]any
}

// Get returns the value stored under id.
func (s *ValueStore) Get(id ValueID) (any, bool) {
	v, ok := s.values[id]
	return v, ok
}

// Has reports whether a value is stored under id.
func (s *ValueStore) Has(id ValueID) bool {
	_, ok := s.values[id]
	return ok
}

// Set stores v under id, destroying any previous value held there.
func (s *ValueStore) Set(id ValueID, v any) {
	if prev, ok := s.values[id]; ok {
		destroy(prev)
	}
	if s.values == nil {
		s.values = make(map[ValueID]any)
	}
	s.values[id] = v
}

// Erase removes the value under id, destroying it.
// Returns true if a value was present.
func (s *ValueStore) Erase(id ValueID) bool {
	v, ok := s.values[id]
	if !ok {
		return false
	}
	// Remove the key before destroying so teardown code observing the
	// store sees the key already gone.
	delete(s.values, id)
	destroy(v)
	return true
}

// Clear erases every value in the store.
func (s *ValueStore) Clear() {
	for id, v := range s.values {
		delete(s.values, id)
		destroy(v)
	}
}

func destroy(v any) {
	if d, ok := v.(Destroyer); ok {
		d.Destroy()
	}
}
