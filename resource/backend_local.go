package resource

import (
	"sync"

	"github.com/wippyai/screeps-wasm/errors"
)

var (
	ErrClosed     = errors.New(errors.PhaseHandle, errors.KindNotInitialized).Detail("handle table closed").Build()
	ErrZeroHandle = errors.New(errors.PhaseHandle, errors.KindZeroHandle).Detail("handle 0 is never valid").Build()
	ErrReleased   = errors.New(errors.PhaseHandle, errors.KindReleased).Detail("handle released or never issued").Build()
	ErrNilValue   = errors.New(errors.PhaseHandle, errors.KindInvalidInput).Detail("cannot store nil").Build()
)

// LocalBackend is an in-memory handle store. Handle numbers grow
// monotonically and are never reused, so a stale handle cannot alias a
// value created later, even across Reset.
type LocalBackend struct {
	entries map[Handle]entry
	next    Handle
	mu      sync.RWMutex
	closed  bool
}

type entry struct {
	value  any
	typeID uint32
}

// NewLocalBackend creates a new in-memory backend.
func NewLocalBackend() *LocalBackend {
	return &LocalBackend{
		entries: make(map[Handle]entry, 16),
	}
}

// Create stores a value and returns a fresh non-zero handle.
func (b *LocalBackend) Create(typeID uint32, value any) (Handle, error) {
	if value == nil {
		return 0, ErrNilValue
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, ErrClosed
	}

	b.next++
	if b.next == 0 {
		// Wrapped after 2^32 handles; 0 stays reserved.
		b.next++
	}
	h := b.next
	b.entries[h] = entry{typeID: typeID, value: value}
	return h, nil
}

// Get retrieves a value by handle.
func (b *LocalBackend) Get(handle Handle) (any, uint32, error) {
	if handle == 0 {
		return nil, 0, ErrZeroHandle
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	e, ok := b.entries[handle]
	if !ok {
		return nil, 0, ErrReleased
	}
	return e.value, e.typeID, nil
}

// Release removes a handle and returns its value.
func (b *LocalBackend) Release(handle Handle) (any, uint32, error) {
	if handle == 0 {
		return nil, 0, ErrZeroHandle
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := b.entries[handle]
	if !ok {
		return nil, 0, ErrReleased
	}
	delete(b.entries, handle)
	return e.value, e.typeID, nil
}

// drain removes every live handle and returns them for cleanup.
func (b *LocalBackend) drain() map[Handle]entry {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := b.entries
	b.entries = make(map[Handle]entry, 16)
	return out
}

// Close releases all values and rejects further Create calls.
func (b *LocalBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	for h, e := range b.entries {
		if d, ok := e.value.(Dropper); ok {
			d.Drop()
		}
		delete(b.entries, h)
	}
	return nil
}

// Len returns the number of live handles.
func (b *LocalBackend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}
