// Package buffer implements line-oriented text buffers and their registry.
//
// A buffer holds content as a slice of lines, each ending with a newline;
// the trailing-newline invariant is preserved across every mutation.
// Positions are Coords: a zero-based line index plus a byte offset within
// the line. Each buffer carries a flag bitset, an optional file modification
// time, a keyed value store for owned resources, and a reference to the
// registry-wide hook registry.
//
// Buffers are intentionally not goroutine-safe. All mutation is driven by
// the single-threaded event loop; the value store's erase-triggers-destroy
// semantics give deterministic teardown of attached resources.
package buffer
