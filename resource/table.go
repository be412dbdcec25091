package resource

import (
	"sort"
	"sync"
)

// Table keeps host values alive for guest code that refers to them by handle.
type Table struct {
	backend   *LocalBackend
	observers map[int]Observer
	nextObs   int
	obsMu     sync.RWMutex
}

// NewTable creates a new table with a LocalBackend.
func NewTable() *Table {
	return &Table{
		backend:   NewLocalBackend(),
		observers: make(map[int]Observer),
	}
}

// Create inserts value and returns its handle.
func (t *Table) Create(typeID uint32, value any) (Handle, error) {
	handle, err := t.backend.Create(typeID, value)
	if err != nil {
		return 0, err
	}

	t.notify(Event{
		Type:   EventCreated,
		Handle: handle,
		TypeID: typeID,
		Value:  value,
	})
	return handle, nil
}

// Get retrieves the value of a live handle.
func (t *Table) Get(handle Handle) (any, error) {
	v, _, err := t.backend.Get(handle)
	return v, err
}

// GetTyped retrieves a value only if it was created with typeID.
func (t *Table) GetTyped(handle Handle, typeID uint32) (any, error) {
	v, actual, err := t.backend.Get(handle)
	if err != nil {
		return nil, err
	}
	if actual != typeID {
		return nil, ErrReleased
	}
	return v, nil
}

// Release drops a handle. Releasing twice, or releasing 0, is an error.
func (t *Table) Release(handle Handle) error {
	value, typeID, err := t.backend.Release(handle)
	if err != nil {
		return err
	}

	if d, ok := value.(Dropper); ok {
		d.Drop()
	}

	t.notify(Event{
		Type:   EventReleased,
		Handle: handle,
		TypeID: typeID,
		Value:  value,
	})
	return nil
}

// Reset releases every live handle. The host calls it at tick boundaries;
// handles issued earlier stay invalid forever.
func (t *Table) Reset() int {
	drained := t.backend.drain()

	handles := make([]Handle, 0, len(drained))
	for h := range drained {
		handles = append(handles, h)
	}
	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })

	for _, h := range handles {
		e := drained[h]
		if d, ok := e.value.(Dropper); ok {
			d.Drop()
		}
		t.notify(Event{
			Type:   EventReset,
			Handle: h,
			TypeID: e.typeID,
			Value:  e.value,
		})
	}
	return len(handles)
}

// Subscribe adds an observer for lifecycle events and returns a function
// that removes it.
func (t *Table) Subscribe(o Observer) (unsubscribe func()) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	id := t.nextObs
	t.nextObs++
	t.observers[id] = o
	return func() {
		t.obsMu.Lock()
		defer t.obsMu.Unlock()
		delete(t.observers, id)
	}
}

// Len returns the number of live handles.
func (t *Table) Len() int {
	return t.backend.Len()
}

// Close releases all values and stops accepting new ones.
func (t *Table) Close() error {
	return t.backend.Close()
}

func (t *Table) notify(e Event) {
	t.obsMu.RLock()
	defer t.obsMu.RUnlock()
	ids := make([]int, 0, len(t.observers))
	for id := range t.observers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		t.observers[id].OnResourceEvent(e)
	}
}
